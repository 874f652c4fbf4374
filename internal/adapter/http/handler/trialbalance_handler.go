package handler

import (
	"net/http"

	"github.com/finkit/glcore/internal/adapter/http/dto"
	"github.com/finkit/glcore/internal/usecase"
)

// TrialBalanceHandler handles trial balance report requests.
type TrialBalanceHandler struct {
	trialBalanceUC *usecase.TrialBalanceUseCase
}

// NewTrialBalanceHandler creates a new TrialBalanceHandler.
func NewTrialBalanceHandler(trialBalanceUC *usecase.TrialBalanceUseCase) *TrialBalanceHandler {
	return &TrialBalanceHandler{trialBalanceUC: trialBalanceUC}
}

// Get builds the trial balance for a date range.
func (h *TrialBalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	start, err := parseDateQuery(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'start' parameter", err.Error())
		return
	}
	end, err := parseDateQuery(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid 'end' parameter", err.Error())
		return
	}

	tb, err := h.trialBalanceUC.Build(r.Context(), actor.TenantID, usecase.TrialBalanceInput{
		StartDate:           start,
		EndDate:             end,
		IncludeZeroBalances: r.URL.Query().Get("include_zero") == "true",
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to build trial balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TrialBalanceFromUseCase(tb))
}
