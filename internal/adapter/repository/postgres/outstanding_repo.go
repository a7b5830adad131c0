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

// OutstandingRepository implements usecase.OutstandingRepository against the
// receivables tables owned by the transaction subsystem. Only rows linked to
// an opening balance or a year adjustment are ever touched here.
type OutstandingRepository struct {
	pool *pgxpool.Pool
}

// NewOutstandingRepository creates a new OutstandingRepository.
func NewOutstandingRepository(pool *pgxpool.Pool) *OutstandingRepository {
	return &OutstandingRepository{pool: pool}
}

const outstandingColumns = `
	id, account_id, link_type, COALESCE(adjustment_id, ''),
	total_amount, closing_balance_amount, closing_balance_type, updated_at
`

// GetByOpeningBalance returns the row derived from the account's master
// opening, or nil when no such link exists.
func (r *OutstandingRepository) GetByOpeningBalance(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.Outstanding, error) {
	row := txQuerier(tx).QueryRow(ctx, `
		SELECT `+outstandingColumns+`
		FROM outstandings
		WHERE account_id = $1 AND link_type = $2
		FOR UPDATE
	`, accountID, string(domain.LinkOpeningBalance))

	return scanOutstanding(row)
}

// GetByAdjustment returns the row derived from a year adjustment, or nil.
func (r *OutstandingRepository) GetByAdjustment(ctx context.Context, tx usecase.Transaction, adjustmentID string) (*domain.Outstanding, error) {
	row := txQuerier(tx).QueryRow(ctx, `
		SELECT `+outstandingColumns+`
		FROM outstandings
		WHERE adjustment_id = $1 AND link_type = $2
		FOR UPDATE
	`, adjustmentID, string(domain.LinkAdjustment))

	return scanOutstanding(row)
}

// ReceiptPaymentTotals sums the settlements already applied against an
// outstanding row.
func (r *OutstandingRepository) ReceiptPaymentTotals(ctx context.Context, tx usecase.Transaction, outstandingID string) (domain.ReceiptPaymentTotals, error) {
	var receipts, payments pgtype.Numeric

	err := txQuerier(tx).QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE kind = 'receipt'), 0),
			COALESCE(SUM(amount) FILTER (WHERE kind = 'payment'), 0)
		FROM outstanding_settlements
		WHERE outstanding_id = $1
	`, outstandingID).Scan(&receipts, &payments)
	if err != nil {
		return domain.ReceiptPaymentTotals{}, err
	}

	return domain.ReceiptPaymentTotals{
		Receipts: numericToDecimal(receipts),
		Payments: numericToDecimal(payments),
	}, nil
}

// Update rewrites the derived amounts of an outstanding row.
func (r *OutstandingRepository) Update(ctx context.Context, tx usecase.Transaction, outstanding *domain.Outstanding) error {
	tag, err := txQuerier(tx).Exec(ctx, `
		UPDATE outstandings
		SET total_amount = $2, closing_balance_amount = $3,
		    closing_balance_type = $4, updated_at = $5
		WHERE id = $1
	`,
		outstanding.ID, decimalToNumeric(outstanding.TotalAmount),
		decimalToNumeric(outstanding.ClosingBalanceAmount),
		string(outstanding.ClosingBalanceType),
		timeToPgTimestamptz(outstanding.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrOutstandingNotFound
	}

	return nil
}

func scanOutstanding(row pgx.Row) (*domain.Outstanding, error) {
	var (
		o             domain.Outstanding
		link, balType string
		total, amount pgtype.Numeric
		updatedAt     pgtype.Timestamptz
	)

	err := row.Scan(
		&o.ID, &o.AccountID, &link, &o.AdjustmentID,
		&total, &amount, &balType, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	o.Link = domain.OutstandingLink(link)
	o.TotalAmount = numericToDecimal(total)
	o.ClosingBalanceAmount = numericToDecimal(amount)
	o.ClosingBalanceType = domain.BalanceType(balType)
	o.UpdatedAt = updatedAt.Time

	return &o, nil
}
