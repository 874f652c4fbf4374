package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finkit/glcore/internal/adapter/http/handler"
	"github.com/finkit/glcore/internal/adapter/http/middleware"
	"github.com/finkit/glcore/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler        *handler.AccountHandler
	EntryHandler          *handler.EntryHandler
	PeriodHandler         *handler.PeriodHandler
	TrialBalanceHandler   *handler.TrialBalanceHandler
	StatementHandler      *handler.StatementHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler
	IdempotencyStore      usecase.IdempotencyStore
	RateLimiter           *middleware.RateLimiter
	RequestLogger         *middleware.LoggingMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)
	if cfg.RequestLogger != nil {
		r.Use(cfg.RequestLogger.Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.TenantContext)

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Chart of accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{code}", cfg.AccountHandler.Get)
			r.Put("/{code}", cfg.AccountHandler.Update)
			r.Get("/{code}/subtree", cfg.AccountHandler.Subtree)
			r.Post("/{code}/deactivate", cfg.AccountHandler.Deactivate)
		})

		// Journal entries
		r.Route("/entries", func(r chi.Router) {
			r.Post("/", cfg.EntryHandler.Post)
			r.Get("/", cfg.EntryHandler.List)
			r.Get("/{id}", cfg.EntryHandler.Get)
			r.Post("/{id}/reverse", cfg.EntryHandler.Reverse)
		})

		// Financial periods
		r.Route("/periods", func(r chi.Router) {
			r.Post("/", cfg.PeriodHandler.Create)
			r.Get("/", cfg.PeriodHandler.List)
			r.Get("/{id}", cfg.PeriodHandler.Get)
			r.Post("/{id}/close", cfg.PeriodHandler.Close)
			r.Post("/{id}/reopen", cfg.PeriodHandler.Reopen)
			r.Post("/{id}/lock", cfg.PeriodHandler.Lock)
		})

		// Reports
		r.Get("/trial-balance", cfg.TrialBalanceHandler.Get)

		// Bank statements and reconciliation
		r.Route("/statements", func(r chi.Router) {
			r.Post("/import", cfg.StatementHandler.Import)
			r.Get("/{id}", cfg.StatementHandler.Get)
			r.Post("/{id}/reconcile", cfg.ReconciliationHandler.Run)
		})

		r.Route("/reconciliations", func(r chi.Router) {
			r.Get("/{id}", cfg.ReconciliationHandler.Get)
			r.Post("/{id}/items", cfg.ReconciliationHandler.AddItem)
			r.Post("/{id}/approve", cfg.ReconciliationHandler.Approve)
		})
	})

	return r
}
