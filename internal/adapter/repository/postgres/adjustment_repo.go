package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/balancechain/internal/domain"
	"github.com/iho/balancechain/internal/usecase"
)

// AdjustmentRepository implements usecase.AdjustmentRepository. A partial
// unique index on (entity_id, entity_type, financial_year) WHERE state =
// 'active' backs the one-active-row invariant at the storage level.
type AdjustmentRepository struct {
	pool *pgxpool.Pool
}

// NewAdjustmentRepository creates a new AdjustmentRepository.
func NewAdjustmentRepository(pool *pgxpool.Pool) *AdjustmentRepository {
	return &AdjustmentRepository{pool: pool}
}

const adjustmentColumns = `
	id, number, entity_id, entity_type, financial_year, adjustment_amount,
	reason, created_by, updated_by, state,
	cancelled_at, cancelled_by, cancel_reason, created_at, updated_at
`

// GetByID retrieves an adjustment by ID.
func (r *AdjustmentRepository) GetByID(ctx context.Context, id string) (*domain.YearOpeningAdjustment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+adjustmentColumns+` FROM year_opening_adjustments WHERE id = $1`, id)

	adj, err := scanAdjustment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAdjustmentNotFound
		}

		return nil, err
	}

	return adj, nil
}

// GetActive returns the single active row for (entity, type, fy), or nil.
// It locks the row so a concurrent upsert waits instead of duplicating.
func (r *AdjustmentRepository) GetActive(ctx context.Context, tx usecase.Transaction, entityID string, entityType domain.EntityType, financialYear int) (*domain.YearOpeningAdjustment, error) {
	row := txQuerier(tx).QueryRow(ctx, `
		SELECT `+adjustmentColumns+`
		FROM year_opening_adjustments
		WHERE entity_id = $1 AND entity_type = $2 AND financial_year = $3 AND state = 'active'
		FOR UPDATE
	`, entityID, string(entityType), financialYear)

	adj, err := scanAdjustment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return adj, nil
}

// ListActiveByEntity returns the entity's active adjustments ordered by
// financial year.
func (r *AdjustmentRepository) ListActiveByEntity(ctx context.Context, entityID string, entityType domain.EntityType) ([]*domain.YearOpeningAdjustment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+adjustmentColumns+`
		FROM year_opening_adjustments
		WHERE entity_id = $1 AND entity_type = $2 AND state = 'active'
		ORDER BY financial_year
	`, entityID, string(entityType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var adjustments []*domain.YearOpeningAdjustment

	for rows.Next() {
		adj, err := scanAdjustment(rows)
		if err != nil {
			return nil, err
		}

		adjustments = append(adjustments, adj)
	}

	return adjustments, rows.Err()
}

// Create inserts a new adjustment inside the caller's transaction.
func (r *AdjustmentRepository) Create(ctx context.Context, tx usecase.Transaction, adj *domain.YearOpeningAdjustment) error {
	_, err := txQuerier(tx).Exec(ctx, `
		INSERT INTO year_opening_adjustments (
			id, number, entity_id, entity_type, financial_year, adjustment_amount,
			reason, created_by, updated_by, state, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		adj.ID, adj.Number, adj.EntityID, string(adj.EntityType), adj.FinancialYear,
		decimalToNumeric(adj.AdjustmentAmount), adj.Reason, adj.CreatedBy, adj.UpdatedBy,
		string(adj.State), timeToPgTimestamptz(adj.CreatedAt), timeToPgTimestamptz(adj.UpdatedAt),
	)

	return err
}

// Update rewrites the mutable fields of an adjustment, cancellation
// metadata included.
func (r *AdjustmentRepository) Update(ctx context.Context, tx usecase.Transaction, adj *domain.YearOpeningAdjustment) error {
	var cancelledAt pgtype.Timestamptz
	if adj.CancelledAt != nil {
		cancelledAt = timeToPgTimestamptz(*adj.CancelledAt)
	}

	tag, err := txQuerier(tx).Exec(ctx, `
		UPDATE year_opening_adjustments
		SET adjustment_amount = $2, reason = $3, updated_by = $4, state = $5,
		    cancelled_at = $6, cancelled_by = $7, cancel_reason = $8, updated_at = $9
		WHERE id = $1
	`,
		adj.ID, decimalToNumeric(adj.AdjustmentAmount), adj.Reason, adj.UpdatedBy,
		string(adj.State), cancelledAt, adj.CancelledBy, adj.CancelReason,
		timeToPgTimestamptz(adj.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAdjustmentNotFound
	}

	return nil
}

func scanAdjustment(row pgx.Row) (*domain.YearOpeningAdjustment, error) {
	var (
		adj                  domain.YearOpeningAdjustment
		entityType, state    string
		amount               pgtype.Numeric
		cancelledAt          pgtype.Timestamptz
		cancelledBy, reason  pgtype.Text
		createdAt, updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&adj.ID, &adj.Number, &adj.EntityID, &entityType, &adj.FinancialYear, &amount,
		&adj.Reason, &adj.CreatedBy, &adj.UpdatedBy, &state,
		&cancelledAt, &cancelledBy, &reason, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	adj.EntityType = domain.EntityType(entityType)
	adj.AdjustmentAmount = numericToDecimal(amount)
	adj.State = domain.AdjustmentState(state)
	if cancelledAt.Valid {
		adj.CancelledAt = &cancelledAt.Time
	}
	adj.CancelledBy = cancelledBy.String
	adj.CancelReason = reason.String
	adj.CreatedAt = createdAt.Time
	adj.UpdatedAt = updatedAt.Time

	return &adj, nil
}
