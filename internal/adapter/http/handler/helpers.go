package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/finkit/glcore/internal/adapter/http/dto"
	"github.com/finkit/glcore/internal/adapter/http/middleware"
	"github.com/finkit/glcore/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrPeriodNotFound),
		errors.Is(err, domain.ErrStatementNotFound),
		errors.Is(err, domain.ErrReconciliationNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPeriodCloseInProgress),
		errors.Is(err, domain.ErrPeriodClosed),
		errors.Is(err, domain.ErrPeriodLocked),
		errors.Is(err, domain.ErrPeriodOverlap),
		errors.Is(err, domain.ErrUnpostedEntriesExist),
		errors.Is(err, domain.ErrReconciliationVariance):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnbalancedEntry),
		errors.Is(err, domain.ErrImportNoValidRows),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTransientStorage):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// actorFromRequest extracts the acting tenant and user placed on the
// context by the tenant middleware.
func actorFromRequest(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing tenant context", "")
		return domain.Actor{}, false
	}
	return actor, true
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseDateQuery parses a date query parameter, accepting both RFC3339
// timestamps and plain dates.
func parseDateQuery(r *http.Request, key string) (time.Time, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return time.Time{}, errors.New("missing '" + key + "' parameter")
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", val)
}
