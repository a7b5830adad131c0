package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Recalculation metrics
	RecalculationsExecuted prometheus.Counter
	RecalculationsFailed   prometheus.Counter
	RecalculationDuration  prometheus.Histogram
	TransactionsRewritten  prometheus.Counter
	MonthlyBalancesUpdated prometheus.Counter

	// Impact analysis metrics
	ImpactAnalyses   prometheus.Counter
	ImpactRejections *prometheus.CounterVec

	// Adjustment metrics
	AdjustmentsCreated   prometheus.Counter
	AdjustmentsCancelled prometheus.Counter

	// Chain metrics
	ChainRequests   prometheus.Counter
	ChainCacheHits  prometheus.Counter
	ChainYearsBuilt prometheus.Histogram
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		RecalculationsExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "balancechain_recalculations_executed_total",
			Help: "Total number of committed opening balance recalculations",
		}),
		RecalculationsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "balancechain_recalculations_failed_total",
			Help: "Total number of recalculations that rolled back",
		}),
		RecalculationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "balancechain_recalculation_duration_seconds",
			Help:    "Duration of recalculation executions",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		TransactionsRewritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "balancechain_transactions_rewritten_total",
			Help: "Total ledger entries whose running balance was rewritten",
		}),
		MonthlyBalancesUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "balancechain_monthly_balances_updated_total",
			Help: "Total monthly balance rows rebuilt by recalculations",
		}),

		ImpactAnalyses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "balancechain_impact_analyses_total",
			Help: "Total number of impact analyses performed",
		}),
		ImpactRejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "balancechain_impact_rejections_total",
				Help: "Total impact analyses rejected, by rejection code",
			},
			[]string{"code"},
		),

		AdjustmentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "balancechain_adjustments_created_total",
			Help: "Total year opening adjustments created or replaced",
		}),
		AdjustmentsCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "balancechain_adjustments_cancelled_total",
			Help: "Total year opening adjustments cancelled",
		}),

		ChainRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "balancechain_chain_requests_total",
			Help: "Total balance chain page requests",
		}),
		ChainCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "balancechain_chain_cache_hits_total",
			Help: "Total balance chain requests served from cache",
		}),
		ChainYearsBuilt: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "balancechain_chain_years_built",
			Help:    "Number of financial years walked per chain build",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		}),
	}
}
