package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/balancechain/internal/domain"
)

// PendingAdjustmentRepository implements usecase.PendingAdjustmentRepository.
type PendingAdjustmentRepository struct {
	pool *pgxpool.Pool
}

// NewPendingAdjustmentRepository creates a new PendingAdjustmentRepository.
func NewPendingAdjustmentRepository(pool *pgxpool.Pool) *PendingAdjustmentRepository {
	return &PendingAdjustmentRepository{pool: pool}
}

// ListActive returns the account's not-yet-posted deltas for one branch.
func (r *PendingAdjustmentRepository) ListActive(ctx context.Context, accountID, branchID string) ([]*domain.PendingAdjustment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, branch_id, voucher_type, transaction_date,
		       amount_delta, reversed, created_at
		FROM pending_adjustments
		WHERE account_id = $1 AND branch_id = $2 AND NOT reversed
		ORDER BY transaction_date
	`, accountID, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []*domain.PendingAdjustment

	for rows.Next() {
		var (
			p               domain.PendingAdjustment
			delta           pgtype.Numeric
			txDate, created pgtype.Timestamptz
		)

		err := rows.Scan(
			&p.ID, &p.AccountID, &p.BranchID, &p.VoucherType, &txDate,
			&delta, &p.Reversed, &created,
		)
		if err != nil {
			return nil, err
		}

		p.TransactionDate = txDate.Time
		p.AmountDelta = numericToDecimal(delta)
		p.CreatedAt = created.Time

		pending = append(pending, &p)
	}

	return pending, rows.Err()
}
