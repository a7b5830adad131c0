package usecase

import "time"

const (
	// Recalculation throughput used for user-facing time estimates.
	transactionsPerSecond = 150

	// Chain pagination.
	chainPageSize = 10

	// Chain read cache.
	chainCacheTTL       = 5 * time.Minute
	chainCacheKeyPrefix = "chain:"
)
