package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finkit/glcore/internal/adapter/http/dto"
	"github.com/finkit/glcore/internal/domain"
	"github.com/finkit/glcore/internal/infrastructure/metrics"
	"github.com/finkit/glcore/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, actor domain.Actor, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, tenantID, code string) (*domain.Account, error)
	ListSubtree(ctx context.Context, tenantID, code string) ([]*domain.Account, error)
	ListAccounts(ctx context.Context, tenantID string, input usecase.ListAccountsInput) ([]*domain.Account, error)
	UpdateAccount(ctx context.Context, actor domain.Actor, code string, input usecase.UpdateAccountInput) (*domain.Account, error)
	DeactivateAccount(ctx context.Context, actor domain.Actor, code string) (*domain.Account, error)
}

// AccountHandler handles chart-of-accounts HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create creates a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), actor, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create account", err.Error())
		return
	}

	metrics.AccountsCreated.Inc()
	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by code.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing account code", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), actor.TenantID, code)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Subtree lists an account and all its descendants.
func (h *AccountHandler) Subtree(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing account code", "")
		return
	}

	accounts, err := h.accountUC.ListSubtree(r.Context(), actor.TenantID, code)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list subtree", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// List lists accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	limit := parseIntQuery(r, "limit", usecase.DefaultPageSize)
	offset := parseIntQuery(r, "offset", 0)

	accounts, err := h.accountUC.ListAccounts(r.Context(), actor.TenantID, usecase.ListAccountsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}

// Update changes an account's name, category or type.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing account code", "")
		return
	}

	var req dto.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.UpdateAccount(r.Context(), actor, code, req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Deactivate deactivates an account so it no longer accepts postings.
func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "missing account code", "")
		return
	}

	account, err := h.accountUC.DeactivateAccount(r.Context(), actor, code)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to deactivate account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}
