package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finkit/glcore/internal/adapter/http/dto"
	"github.com/finkit/glcore/internal/infrastructure/metrics"
	"github.com/finkit/glcore/internal/usecase"
)

// ReconciliationHandler handles bank reconciliation HTTP requests.
type ReconciliationHandler struct {
	reconUC *usecase.ReconciliationUseCase
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconUC *usecase.ReconciliationUseCase) *ReconciliationHandler {
	return &ReconciliationHandler{reconUC: reconUC}
}

// Run executes a matching pass over a statement and opens a session.
func (h *ReconciliationHandler) Run(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	statementID := chi.URLParam(r, "id")
	if statementID == "" {
		writeError(w, http.StatusBadRequest, "missing statement ID", "")
		return
	}

	result, err := h.reconUC.RunMatching(r.Context(), actor, statementID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to run matching", err.Error())
		return
	}

	metrics.MatchingRuns.Inc()
	metrics.LinesMatched.Add(float64(result.MatchedLines))
	metrics.LinesUnmatched.Add(float64(result.UnmatchedLines))
	writeJSON(w, http.StatusCreated, dto.RunMatchingResponse{
		Reconciliation: dto.ReconciliationFromDomain(result.Reconciliation),
		MatchedLines:   result.MatchedLines,
		UnmatchedLines: result.UnmatchedLines,
	})
}

// Get retrieves a reconciliation session with its items.
func (h *ReconciliationHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	recon, err := h.reconUC.GetReconciliation(r.Context(), actor.TenantID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get reconciliation", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromDomain(recon))
}

// AddItem records a manual reconciling item.
func (h *ReconciliationHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	recon, err := h.reconUC.AddItem(r.Context(), actor, chi.URLParam(r, "id"), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to add item", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromDomain(recon))
}

// Approve finalizes a reconciliation session.
func (h *ReconciliationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	recon, err := h.reconUC.Approve(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to approve reconciliation", err.Error())
		return
	}

	metrics.ReconciliationsApproved.Inc()
	writeJSON(w, http.StatusOK, dto.ReconciliationFromDomain(recon))
}
