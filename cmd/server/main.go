package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	httpAdapter "github.com/finkit/glcore/internal/adapter/http"
	"github.com/finkit/glcore/internal/adapter/http/handler"
	"github.com/finkit/glcore/internal/adapter/http/middleware"
	postgresRepo "github.com/finkit/glcore/internal/adapter/repository/postgres"
	redisRepo "github.com/finkit/glcore/internal/adapter/repository/redis"
	"github.com/finkit/glcore/internal/infrastructure/config"
	"github.com/finkit/glcore/internal/infrastructure/eventpublisher"
	"github.com/finkit/glcore/internal/infrastructure/logger"
	"github.com/finkit/glcore/internal/infrastructure/postgres"
	"github.com/finkit/glcore/internal/infrastructure/redis"
	"github.com/finkit/glcore/internal/matching"
	"github.com/finkit/glcore/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Connect to PostgreSQL and apply migrations
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns, cfg.DatabaseTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier()
	accountRepo := postgresRepo.NewAccountRepository(pool)
	journalRepo := postgresRepo.NewJournalRepository(pool)
	periodRepo := postgresRepo.NewPeriodRepository(pool)
	statementRepo := postgresRepo.NewStatementRepository(pool)
	reconRepo := postgresRepo.NewReconciliationRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)

	// Use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, auditRepo, idGen)
	postingUC := usecase.NewPostingUseCase(txManager, retrier, accountRepo, journalRepo, periodRepo, outboxRepo, auditRepo, idGen)
	periodUC := usecase.NewPeriodUseCase(periodRepo, journalRepo, outboxRepo, auditRepo, txManager, idGen)
	trialBalanceUC := usecase.NewTrialBalanceUseCase(accountRepo, journalRepo)
	statementUC := usecase.NewStatementUseCase(txManager, statementRepo, accountRepo, outboxRepo, auditRepo, idGen)
	reconUC := usecase.NewReconciliationUseCase(txManager, reconRepo, statementRepo, journalRepo, outboxRepo, auditRepo, idGen, cache, matchingConfig(cfg))

	// Router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:        handler.NewAccountHandler(accountUC),
		EntryHandler:          handler.NewEntryHandler(postingUC),
		PeriodHandler:         handler.NewPeriodHandler(periodUC),
		TrialBalanceHandler:   handler.NewTrialBalanceHandler(trialBalanceUC),
		StatementHandler:      handler.NewStatementHandler(statementUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconUC),
		HealthHandler:         handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:      idempotencyStore,
		RateLimiter:           middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		RequestLogger:         middleware.NewLoggingMiddleware(log.Logger),
	})

	// Outbox publisher worker
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(log.Logger),
		Logger:     log.Logger,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopPublisher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// matchingConfig builds the matcher tuning from configuration, falling
// back to defaults when the tolerance does not parse as a decimal.
func matchingConfig(cfg *config.Config) matching.Config {
	mc := matching.DefaultConfig()

	if tol, err := decimal.NewFromString(cfg.MatchAmountTolerance); err == nil && !tol.IsNegative() {
		mc.AmountTolerance = tol
	} else {
		log.Warn().Str("value", cfg.MatchAmountTolerance).Msg("invalid amount tolerance, using default")
	}

	if cfg.MatchDateWindowDays > 0 {
		mc.DateWindowDays = cfg.MatchDateWindowDays
	}
	if cfg.MatchMinConfidence > 0 {
		mc.MinConfidence = cfg.MatchMinConfidence
	}
	if cfg.MatchStaleAfterDays > 0 {
		mc.StaleAfterDays = cfg.MatchStaleAfterDays
	}

	return mc
}
