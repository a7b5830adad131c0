package usecase

import (
	"context"

	"github.com/iho/balancechain/internal/domain"
)

const (
	historyDefaultLimit = 20
	historyMaxLimit     = 100
)

// HistoryUseCase reads the opening balance audit trail.
type HistoryUseCase struct {
	historyRepo HistoryRepository
}

// NewHistoryUseCase creates a new HistoryUseCase.
func NewHistoryUseCase(historyRepo HistoryRepository) *HistoryUseCase {
	return &HistoryUseCase{historyRepo: historyRepo}
}

// ListHistoryInput identifies the entity and page being read.
type ListHistoryInput struct {
	EntityID   string
	EntityType domain.EntityType
	Limit      int
	Offset     int
}

// ListHistory returns the entity's recalculation attempts, newest first.
// Failed attempts are part of the record and are never filtered out.
func (uc *HistoryUseCase) ListHistory(ctx context.Context, input ListHistoryInput) ([]*domain.OpeningBalanceHistory, error) {
	if !input.EntityType.Valid() {
		return nil, domain.ErrUnsupportedEntityType
	}

	limit := input.Limit
	if limit <= 0 {
		limit = historyDefaultLimit
	}

	if limit > historyMaxLimit {
		limit = historyMaxLimit
	}

	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	return uc.historyRepo.ListByEntity(ctx, input.EntityID, input.EntityType, limit, offset)
}
