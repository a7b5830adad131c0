package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/balancechain/internal/domain"
	"github.com/iho/balancechain/internal/usecase"
)

// HistoryRepository implements usecase.HistoryRepository. The affected-years
// snapshot is stored as JSONB.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

const historyInsert = `
	INSERT INTO opening_balance_history (
		id, company_id, entity_id, entity_type, financial_year_start,
		previous_balance, previous_balance_type, new_balance, new_balance_type,
		delta_amount, affected_years, total_transactions, estimated_seconds,
		status, error_message, triggered_by, reason, triggered_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
`

// Create inserts a history row inside the caller's transaction.
func (r *HistoryRepository) Create(ctx context.Context, tx usecase.Transaction, history *domain.OpeningBalanceHistory) error {
	return r.insert(ctx, txQuerier(tx), history)
}

// CreateStandalone persists a row outside any transaction. Used after a
// rollback, so the failed attempt still reaches the audit trail.
func (r *HistoryRepository) CreateStandalone(ctx context.Context, history *domain.OpeningBalanceHistory) error {
	return r.insert(ctx, r.pool, history)
}

func (r *HistoryRepository) insert(ctx context.Context, q querier, history *domain.OpeningBalanceHistory) error {
	affected, err := json.Marshal(history.AffectedYears)
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, historyInsert,
		history.ID, history.CompanyID, history.EntityID, string(history.EntityType),
		history.FinancialYearStart,
		decimalToNumeric(history.PreviousBalance), string(history.PreviousBalanceType),
		decimalToNumeric(history.NewBalance), string(history.NewBalanceType),
		decimalToNumeric(history.DeltaAmount), affected,
		history.TotalTransactions, history.EstimatedSeconds,
		string(history.Status), history.ErrorMessage, history.TriggeredBy,
		history.Reason, timeToPgTimestamptz(history.TriggeredAt),
	)

	return err
}

// UpdateStatus flips a history row's status inside the caller's transaction.
func (r *HistoryRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.HistoryStatus, errorMessage string) error {
	_, err := txQuerier(tx).Exec(ctx, `
		UPDATE opening_balance_history
		SET status = $2, error_message = $3
		WHERE id = $1
	`, id, string(status), errorMessage)

	return err
}

// ListByEntity returns the entity's history rows, newest first.
func (r *HistoryRepository) ListByEntity(ctx context.Context, entityID string, entityType domain.EntityType, limit, offset int) ([]*domain.OpeningBalanceHistory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, entity_id, entity_type, financial_year_start,
		       previous_balance, previous_balance_type, new_balance, new_balance_type,
		       delta_amount, affected_years, total_transactions, estimated_seconds,
		       status, error_message, triggered_by, reason, triggered_at
		FROM opening_balance_history
		WHERE entity_id = $1 AND entity_type = $2
		ORDER BY triggered_at DESC
		LIMIT $3 OFFSET $4
	`, entityID, string(entityType), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var histories []*domain.OpeningBalanceHistory

	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}

		histories = append(histories, h)
	}

	return histories, rows.Err()
}

func scanHistory(row pgx.Row) (*domain.OpeningBalanceHistory, error) {
	var (
		h                  domain.OpeningBalanceHistory
		entityType, status string
		prevType, newType  string
		prev, next, delta  pgtype.Numeric
		affected           []byte
		errorMessage       pgtype.Text
		triggeredAt        pgtype.Timestamptz
	)

	err := row.Scan(
		&h.ID, &h.CompanyID, &h.EntityID, &entityType, &h.FinancialYearStart,
		&prev, &prevType, &next, &newType,
		&delta, &affected, &h.TotalTransactions, &h.EstimatedSeconds,
		&status, &errorMessage, &h.TriggeredBy, &h.Reason, &triggeredAt,
	)
	if err != nil {
		return nil, err
	}

	h.EntityType = domain.EntityType(entityType)
	h.PreviousBalance = numericToDecimal(prev)
	h.PreviousBalanceType = domain.BalanceType(prevType)
	h.NewBalance = numericToDecimal(next)
	h.NewBalanceType = domain.BalanceType(newType)
	h.DeltaAmount = numericToDecimal(delta)
	h.Status = domain.HistoryStatus(status)
	h.ErrorMessage = errorMessage.String
	h.TriggeredAt = triggeredAt.Time

	if len(affected) > 0 {
		if err := json.Unmarshal(affected, &h.AffectedYears); err != nil {
			return nil, err
		}
	}

	return &h, nil
}
