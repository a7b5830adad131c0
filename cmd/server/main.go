package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/balancechain/internal/adapter/http"
	"github.com/iho/balancechain/internal/adapter/http/handler"
	postgresRepo "github.com/iho/balancechain/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/balancechain/internal/adapter/repository/redis"
	"github.com/iho/balancechain/internal/infrastructure/config"
	"github.com/iho/balancechain/internal/infrastructure/logger"
	"github.com/iho/balancechain/internal/infrastructure/metrics"
	"github.com/iho/balancechain/internal/infrastructure/policy"
	"github.com/iho/balancechain/internal/infrastructure/postgres"
	"github.com/iho/balancechain/internal/infrastructure/redis"
	"github.com/iho/balancechain/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "balancechain"})
	log.Logger = appLogger

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		URL:            cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
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

	// Sign policy for pending transaction deltas
	signPolicy, err := policy.Load(cfg.SignPolicyPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load sign policy")
	}

	appMetrics := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	itemRepo := postgresRepo.NewItemRepository(pool)
	companyRepo := postgresRepo.NewCompanyRepository(pool)
	monthlyRepo := postgresRepo.NewMonthlyBalanceRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerEntryRepository(pool)
	adjustmentRepo := postgresRepo.NewAdjustmentRepository(pool)
	pendingRepo := postgresRepo.NewPendingAdjustmentRepository(pool)
	historyRepo := postgresRepo.NewHistoryRepository(pool)
	outstandingRepo := postgresRepo.NewOutstandingRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	clock := usecase.SystemClock{}

	// Initialize use cases
	chainUC := usecase.NewChainUseCase(
		accountRepo, itemRepo, companyRepo, monthlyRepo,
		adjustmentRepo, pendingRepo, cache, clock, signPolicy,
	)
	impactUC := usecase.NewImpactUseCase(accountRepo, companyRepo, monthlyRepo, ledgerRepo)
	recalcUC := usecase.NewRecalcUseCase(
		txManager, accountRepo, companyRepo, monthlyRepo, ledgerRepo,
		outstandingRepo, historyRepo, idGen, cache, clock, appMetrics,
	)
	adjustmentUC := usecase.NewAdjustmentUseCase(
		txManager, accountRepo, companyRepo, monthlyRepo, ledgerRepo,
		adjustmentRepo, outstandingRepo, idGen, cache, clock,
	)
	historyUC := usecase.NewHistoryUseCase(historyRepo)

	// Initialize handlers
	chainHandler := handler.NewChainHandler(chainUC)
	recalcHandler := handler.NewRecalcHandler(impactUC, recalcUC)
	adjustmentHandler := handler.NewAdjustmentHandler(adjustmentUC)
	historyHandler := handler.NewHistoryHandler(historyUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ChainHandler:      chainHandler,
		RecalcHandler:     recalcHandler,
		AdjustmentHandler: adjustmentHandler,
		HistoryHandler:    historyHandler,
		HealthHandler:     healthHandler,
		IdempotencyStore:  idempotencyStore,
		Logger:            appLogger,
		AllowedOrigins:    cfg.AllowedOrigins,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
