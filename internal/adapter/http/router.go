package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/balancechain/internal/adapter/http/handler"
	"github.com/iho/balancechain/internal/adapter/http/middleware"
	"github.com/iho/balancechain/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ChainHandler      *handler.ChainHandler
	RecalcHandler     *handler.RecalcHandler
	AdjustmentHandler *handler.AdjustmentHandler
	HistoryHandler    *handler.HistoryHandler
	HealthHandler     *handler.HealthHandler
	IdempotencyStore  usecase.IdempotencyStore
	Logger            zerolog.Logger
	AllowedOrigins    []string
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", middleware.IdempotencyKeyHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health and observability endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Opening balance chain, impact analysis, execution, adjustments,
		// audit trail
		r.Route("/opening-balance", func(r chi.Router) {
			r.Post("/analyze", cfg.RecalcHandler.Analyze)
			r.Post("/execute", cfg.RecalcHandler.Execute)
			r.Post("/adjustments", cfg.AdjustmentHandler.Upsert)
			r.Delete("/adjustments/{id}", cfg.AdjustmentHandler.Cancel)
			r.Get("/{entityType}/{entityId}/years", cfg.ChainHandler.Get)
			r.Get("/{entityType}/{entityId}/history", cfg.HistoryHandler.List)
		})
	})

	return r
}
