package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/finkit/glcore/internal/adapter/http/handler"
	apimiddleware "github.com/finkit/glcore/internal/adapter/http/middleware"
	"github.com/finkit/glcore/internal/matching"
	"github.com/finkit/glcore/internal/usecase"
	"github.com/finkit/glcore/internal/usecase/mocks"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_APIRequiresTenant(t *testing.T) {
	router := NewRouter(newRouterConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without tenant header, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/accounts/", nil)
	req.Header.Set(apimiddleware.TenantIDHeader, "tenant-1")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with tenant header, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"code":"1000","name":"Cash","type":"ASSET","currency":"USD"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.TenantIDHeader, "tenant-1")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/",
		"GET /api/v1/accounts/{code}",
		"POST /api/v1/entries/",
		"POST /api/v1/entries/{id}/reverse",
		"POST /api/v1/periods/{id}/close",
		"POST /api/v1/periods/{id}/reopen",
		"GET /api/v1/trial-balance",
		"POST /api/v1/statements/import",
		"POST /api/v1/statements/{id}/reconcile",
		"POST /api/v1/reconciliations/{id}/approve",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	accountRepo := mocks.NewMockAccountRepository()
	journalRepo := mocks.NewMockJournalRepository()
	periodRepo := mocks.NewMockPeriodRepository()
	statementRepo := mocks.NewMockStatementRepository()
	reconRepo := mocks.NewMockReconciliationRepository()
	outboxRepo := mocks.NewMockOutboxRepository()
	auditRepo := mocks.NewMockAuditRepository()
	txManager := mocks.NewMockTransactionManager()
	idGen := mocks.NewMockIDGenerator()

	accountUC := usecase.NewAccountUseCase(accountRepo, auditRepo, idGen)
	postingUC := usecase.NewPostingUseCase(txManager, mocks.NewMockRetrier(), accountRepo, journalRepo, periodRepo, outboxRepo, auditRepo, idGen)
	periodUC := usecase.NewPeriodUseCase(periodRepo, journalRepo, outboxRepo, auditRepo, txManager, idGen)
	trialBalanceUC := usecase.NewTrialBalanceUseCase(accountRepo, journalRepo)
	statementUC := usecase.NewStatementUseCase(txManager, statementRepo, accountRepo, outboxRepo, auditRepo, idGen)
	reconUC := usecase.NewReconciliationUseCase(txManager, reconRepo, statementRepo, journalRepo, outboxRepo, auditRepo, idGen, nil, matching.DefaultConfig())

	cfg := RouterConfig{
		AccountHandler:        handler.NewAccountHandler(accountUC),
		EntryHandler:          handler.NewEntryHandler(postingUC),
		PeriodHandler:         handler.NewPeriodHandler(periodUC),
		TrialBalanceHandler:   handler.NewTrialBalanceHandler(trialBalanceUC),
		StatementHandler:      handler.NewStatementHandler(statementUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconUC),
		HealthHandler:         handler.NewHealthHandler(nil, nil),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, tenantID, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, tenantID, key string, response []byte, ttl time.Duration) error {
	return nil
}
