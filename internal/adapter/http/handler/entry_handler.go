package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finkit/glcore/internal/adapter/http/dto"
	"github.com/finkit/glcore/internal/infrastructure/metrics"
	"github.com/finkit/glcore/internal/usecase"
)

// EntryHandler handles journal entry HTTP requests.
type EntryHandler struct {
	postingUC *usecase.PostingUseCase
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(postingUC *usecase.PostingUseCase) *EntryHandler {
	return &EntryHandler{postingUC: postingUC}
}

// Post posts a balanced journal entry.
func (h *EntryHandler) Post(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.PostEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.postingUC.PostEntry(r.Context(), actor, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post entry", err.Error())
		return
	}

	metrics.EntriesPosted.Inc()
	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Reverse posts a reversing entry against a posted entry.
func (h *EntryHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	var req dto.ReverseEntryRequest
	if r.Body != nil {
		// Body is optional; a bare POST reverses with a default description
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	reversal, err := h.postingUC.ReverseEntry(r.Context(), actor, id, req.Description)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reverse entry", err.Error())
		return
	}

	metrics.EntriesReversed.Inc()
	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(reversal))
}

// Get retrieves a journal entry with its lines.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	entry, err := h.postingUC.GetEntry(r.Context(), actor.TenantID, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get entry", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// List lists the entries of a period.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	periodID := r.URL.Query().Get("period_id")
	if periodID == "" {
		writeError(w, http.StatusBadRequest, "missing 'period_id' parameter", "")
		return
	}

	limit := parseIntQuery(r, "limit", usecase.DefaultPageSize)
	offset := parseIntQuery(r, "offset", 0)

	entries, err := h.postingUC.ListEntries(r.Context(), actor.TenantID, periodID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEntriesResponse{
		Entries: dto.EntriesFromDomain(entries),
		Total:   int64(len(entries)),
	})
}
