package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/finkit/glcore/internal/adapter/http/dto"
	"github.com/finkit/glcore/internal/infrastructure/metrics"
	"github.com/finkit/glcore/internal/usecase"
)

// PeriodHandler handles financial period HTTP requests.
type PeriodHandler struct {
	periodUC *usecase.PeriodUseCase
}

// NewPeriodHandler creates a new PeriodHandler.
func NewPeriodHandler(periodUC *usecase.PeriodUseCase) *PeriodHandler {
	return &PeriodHandler{periodUC: periodUC}
}

// Create creates a new financial period.
func (h *PeriodHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	period, err := h.periodUC.CreatePeriod(r.Context(), actor, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create period", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PeriodFromDomain(period))
}

// Get retrieves a period by ID.
func (h *PeriodHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	period, err := h.periodUC.GetPeriod(r.Context(), actor.TenantID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get period", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodFromDomain(period))
}

// List lists the periods of a fiscal year.
func (h *PeriodHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	fiscalYear := parseIntQuery(r, "fiscal_year", time.Now().UTC().Year())

	periods, err := h.periodUC.ListPeriods(r.Context(), actor.TenantID, fiscalYear)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list periods", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodsFromDomain(periods))
}

// Close closes an open period and reports the closing summary.
func (h *PeriodHandler) Close(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	summary, err := h.periodUC.ClosePeriod(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to close period", err.Error())
		return
	}

	metrics.PeriodsClosed.Inc()
	writeJSON(w, http.StatusOK, dto.ClosingSummaryFromDomain(summary))
}

// Reopen reopens a closed period. A reason is mandatory and lands in the
// audit trail.
func (h *PeriodHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.ReopenPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	period, err := h.periodUC.ReopenPeriod(r.Context(), actor, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reopen period", err.Error())
		return
	}

	metrics.PeriodsReopened.Inc()
	writeJSON(w, http.StatusOK, dto.PeriodFromDomain(period))
}

// Lock permanently locks a closed period.
func (h *PeriodHandler) Lock(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	period, err := h.periodUC.LockPeriod(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to lock period", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PeriodFromDomain(period))
}
