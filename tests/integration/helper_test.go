package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"

	adaptershttp "github.com/finkit/glcore/internal/adapter/http"
	"github.com/finkit/glcore/internal/adapter/http/handler"
	"github.com/finkit/glcore/internal/adapter/repository/postgres"
	redisrepo "github.com/finkit/glcore/internal/adapter/repository/redis"
	"github.com/finkit/glcore/internal/matching"
	"github.com/finkit/glcore/internal/usecase"
)

const (
	testTenant = "tenant-integration"
	testUser   = "user-integration"
)

// newTestServer wires the full HTTP stack over a real database. Redis is
// backed by miniredis so the suite needs nothing beyond PostgreSQL.
func newTestServer(t *testing.T, pool *pgxpool.Pool) http.Handler {
	t.Helper()

	srv := miniredis.RunT(t)
	redisClient := redislib.NewClient(&redislib.Options{Addr: srv.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	txManager := postgres.NewTxManager(pool)
	retrier := postgres.NewRetrier()
	accountRepo := postgres.NewAccountRepository(pool)
	journalRepo := postgres.NewJournalRepository(pool)
	periodRepo := postgres.NewPeriodRepository(pool)
	statementRepo := postgres.NewStatementRepository(pool)
	reconRepo := postgres.NewReconciliationRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	idGen := postgres.NewULIDGenerator()
	cache := redisrepo.NewCache(redisClient)

	accountUC := usecase.NewAccountUseCase(accountRepo, auditRepo, idGen)
	postingUC := usecase.NewPostingUseCase(txManager, retrier, accountRepo, journalRepo, periodRepo, outboxRepo, auditRepo, idGen)
	periodUC := usecase.NewPeriodUseCase(periodRepo, journalRepo, outboxRepo, auditRepo, txManager, idGen)
	trialBalanceUC := usecase.NewTrialBalanceUseCase(accountRepo, journalRepo)
	statementUC := usecase.NewStatementUseCase(txManager, statementRepo, accountRepo, outboxRepo, auditRepo, idGen)
	reconUC := usecase.NewReconciliationUseCase(txManager, reconRepo, statementRepo, journalRepo, outboxRepo, auditRepo, idGen, cache, matching.DefaultConfig())

	return adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AccountHandler:        handler.NewAccountHandler(accountUC),
		EntryHandler:          handler.NewEntryHandler(postingUC),
		PeriodHandler:         handler.NewPeriodHandler(periodUC),
		TrialBalanceHandler:   handler.NewTrialBalanceHandler(trialBalanceUC),
		StatementHandler:      handler.NewStatementHandler(statementUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconUC),
		HealthHandler:         handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:      redisrepo.NewIdempotencyStore(redisClient),
	})
}

// doJSON performs a request against the router with tenant headers set and
// decodes the JSON response into out (when out is non-nil).
func doJSON(t *testing.T, router http.Handler, method, path string, body any, wantStatus int, out any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("X-Tenant-ID", testTenant)
	r.Header.Set("X-User-ID", testUser)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, r)

	if w.Code != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d: %s", method, path, wantStatus, w.Code, w.Body.String())
	}

	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
	}
}
