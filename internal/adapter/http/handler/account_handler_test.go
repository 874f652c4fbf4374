package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/finkit/glcore/internal/adapter/http/dto"
	"github.com/finkit/glcore/internal/adapter/http/middleware"
	"github.com/finkit/glcore/internal/domain"
	"github.com/finkit/glcore/internal/usecase"
)

type accountServiceStub struct {
	createFn     func(ctx context.Context, actor domain.Actor, input usecase.CreateAccountInput) (*domain.Account, error)
	getFn        func(ctx context.Context, tenantID, code string) (*domain.Account, error)
	subtreeFn    func(ctx context.Context, tenantID, code string) ([]*domain.Account, error)
	listFn       func(ctx context.Context, tenantID string, input usecase.ListAccountsInput) ([]*domain.Account, error)
	updateFn     func(ctx context.Context, actor domain.Actor, code string, input usecase.UpdateAccountInput) (*domain.Account, error)
	deactivateFn func(ctx context.Context, actor domain.Actor, code string) (*domain.Account, error)
}

func (s *accountServiceStub) CreateAccount(ctx context.Context, actor domain.Actor, input usecase.CreateAccountInput) (*domain.Account, error) {
	return s.createFn(ctx, actor, input)
}

func (s *accountServiceStub) GetAccount(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	return s.getFn(ctx, tenantID, code)
}

func (s *accountServiceStub) ListSubtree(ctx context.Context, tenantID, code string) ([]*domain.Account, error) {
	return s.subtreeFn(ctx, tenantID, code)
}

func (s *accountServiceStub) ListAccounts(ctx context.Context, tenantID string, input usecase.ListAccountsInput) ([]*domain.Account, error) {
	return s.listFn(ctx, tenantID, input)
}

func (s *accountServiceStub) UpdateAccount(ctx context.Context, actor domain.Actor, code string, input usecase.UpdateAccountInput) (*domain.Account, error) {
	return s.updateFn(ctx, actor, code, input)
}

func (s *accountServiceStub) DeactivateAccount(ctx context.Context, actor domain.Actor, code string) (*domain.Account, error) {
	return s.deactivateFn(ctx, actor, code)
}

// withActor simulates the tenant middleware.
func withActor(req *http.Request) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ActorContextKey, domain.Actor{
		TenantID: "tenant-1",
		UserID:   "user-1",
	})
	return req.WithContext(ctx)
}

// withURLParam attaches a chi route parameter to the request context.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestAccountHandler_Create_Success(t *testing.T) {
	account := &domain.Account{
		ID:       "acc-1",
		Code:     "1000",
		Name:     "Cash",
		Type:     domain.AccountTypeAsset,
		Currency: "USD",
		IsActive: true,
	}

	var captured usecase.CreateAccountInput
	var capturedActor domain.Actor
	h := NewAccountHandler(&accountServiceStub{
		createFn: func(ctx context.Context, actor domain.Actor, input usecase.CreateAccountInput) (*domain.Account, error) {
			captured = input
			capturedActor = actor
			return account, nil
		},
	})

	body, _ := json.Marshal(dto.CreateAccountRequest{
		Code:     "1000",
		Name:     "Cash",
		Type:     "ASSET",
		Currency: "USD",
	})

	req := withActor(httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader(body)))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.Code != "1000" || captured.Type != domain.AccountTypeAsset {
		t.Fatalf("expected input to match request, got %+v", captured)
	}
	if capturedActor.TenantID != "tenant-1" {
		t.Fatalf("expected actor from context, got %+v", capturedActor)
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "acc-1" || resp.Code != "1000" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAccountHandler_Create_MissingActor(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{})

	req := httptest.NewRequest(http.MethodPost, "/accounts", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without tenant context, got %d", rec.Code)
	}
}

func TestAccountHandler_Get_NotFound(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		getFn: func(ctx context.Context, tenantID, code string) (*domain.Account, error) {
			return nil, domain.ErrAccountNotFound
		},
	})

	req := withActor(httptest.NewRequest(http.MethodGet, "/accounts/9999", nil))
	req = withURLParam(req, "code", "9999")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAccountHandler_Update(t *testing.T) {
	var capturedCode string
	var captured usecase.UpdateAccountInput
	h := NewAccountHandler(&accountServiceStub{
		updateFn: func(ctx context.Context, actor domain.Actor, code string, input usecase.UpdateAccountInput) (*domain.Account, error) {
			capturedCode = code
			captured = input
			return &domain.Account{ID: "acc-1", Code: code, Name: input.Name, Type: domain.AccountTypeAsset}, nil
		},
	})

	body, _ := json.Marshal(dto.UpdateAccountRequest{Name: "Cash on Hand"})
	req := withActor(httptest.NewRequest(http.MethodPut, "/accounts/1010", bytes.NewReader(body)))
	req = withURLParam(req, "code", "1010")
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if capturedCode != "1010" || captured.Name != "Cash on Hand" {
		t.Fatalf("expected input to match request, got %s %+v", capturedCode, captured)
	}
}

func TestAccountHandler_Deactivate(t *testing.T) {
	h := NewAccountHandler(&accountServiceStub{
		deactivateFn: func(ctx context.Context, actor domain.Actor, code string) (*domain.Account, error) {
			return &domain.Account{ID: "acc-1", Code: code, IsActive: false}, nil
		},
	})

	req := withActor(httptest.NewRequest(http.MethodPost, "/accounts/1000/deactivate", nil))
	req = withURLParam(req, "code", "1000")
	rec := httptest.NewRecorder()

	h.Deactivate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.IsActive {
		t.Fatalf("expected account to be inactive")
	}
}
