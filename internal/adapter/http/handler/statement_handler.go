package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finkit/glcore/internal/adapter/http/dto"
	"github.com/finkit/glcore/internal/infrastructure/metrics"
	"github.com/finkit/glcore/internal/usecase"
)

// StatementHandler handles bank statement HTTP requests.
type StatementHandler struct {
	statementUC *usecase.StatementUseCase
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statementUC *usecase.StatementUseCase) *StatementHandler {
	return &StatementHandler{statementUC: statementUC}
}

// Import parses and stores a bank statement.
func (h *StatementHandler) Import(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.ImportStatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.statementUC.ImportStatement(r.Context(), actor, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to import statement", err.Error())
		return
	}

	metrics.StatementsImported.Inc()
	writeJSON(w, http.StatusCreated, dto.ImportStatementResponse{
		Statement:   dto.StatementFromDomain(result.Statement),
		SkippedRows: result.SkippedRows,
		Diagnostics: result.Diagnostics,
	})
}

// Get retrieves a statement with its lines.
func (h *StatementHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	statement, err := h.statementUC.GetStatement(r.Context(), actor.TenantID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get statement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.StatementFromDomain(statement))
}
