package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/balancechain/internal/domain"
	"github.com/iho/balancechain/internal/usecase"
)

// LedgerEntryRepository implements usecase.LedgerEntryRepository. Entries
// are written by the posting subsystem; this repository only reads them and
// rewrites running balances during recalculation.
type LedgerEntryRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerEntryRepository creates a new LedgerEntryRepository.
func NewLedgerEntryRepository(pool *pgxpool.Pool) *LedgerEntryRepository {
	return &LedgerEntryRepository{pool: pool}
}

// ListRange returns entries in [from, to] in deterministic replay order.
func (r *LedgerEntryRepository) ListRange(ctx context.Context, tx usecase.Transaction, accountID, branchID string, from, to time.Time) ([]*domain.LedgerEntry, error) {
	rows, err := txQuerier(tx).Query(ctx, `
		SELECT id, company_id, branch_id, account_id, transaction_date,
		       side, amount, running_balance, voucher_type, created_at
		FROM ledger_entries
		WHERE account_id = $1 AND branch_id = $2
		  AND transaction_date BETWEEN $3 AND $4
		ORDER BY transaction_date, created_at, id
	`, accountID, branchID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.LedgerEntry

	for rows.Next() {
		var (
			e               domain.LedgerEntry
			side            string
			amount, running pgtype.Numeric
			txDate, created pgtype.Timestamptz
		)

		err := rows.Scan(
			&e.ID, &e.CompanyID, &e.BranchID, &e.AccountID, &txDate,
			&side, &amount, &running, &e.VoucherType, &created,
		)
		if err != nil {
			return nil, err
		}

		e.TransactionDate = txDate.Time
		e.Side = domain.EntrySide(side)
		e.Amount = numericToDecimal(amount)
		e.RunningBalance = numericToDecimal(running)
		e.CreatedAt = created.Time

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// CountRange counts entries in [from, to].
func (r *LedgerEntryRepository) CountRange(ctx context.Context, accountID, branchID string, from, to time.Time) (int, error) {
	var count int

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM ledger_entries
		WHERE account_id = $1 AND branch_id = $2
		  AND transaction_date BETWEEN $3 AND $4
	`, accountID, branchID, from, to).Scan(&count)

	return count, err
}

// LatestDate returns the most recent transaction date, or nil when the
// branch has no ledger activity for the account.
func (r *LedgerEntryRepository) LatestDate(ctx context.Context, accountID, branchID string) (*time.Time, error) {
	var latest pgtype.Timestamptz

	err := r.pool.QueryRow(ctx, `
		SELECT MAX(transaction_date)
		FROM ledger_entries
		WHERE account_id = $1 AND branch_id = $2
	`, accountID, branchID).Scan(&latest)
	if err != nil {
		return nil, err
	}

	if !latest.Valid {
		return nil, nil
	}

	return &latest.Time, nil
}

// UpdateRunningBalances rewrites running balances in one batch and returns
// the number of rows touched.
func (r *LedgerEntryRepository) UpdateRunningBalances(ctx context.Context, tx usecase.Transaction, updates []usecase.RunningBalanceUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(
			`UPDATE ledger_entries SET running_balance = $2 WHERE id = $1`,
			u.EntryID, decimalToNumeric(u.RunningBalance),
		)
	}

	results := tx.(*Tx).PgxTx().SendBatch(ctx, batch)
	defer results.Close()

	updated := 0

	for range updates {
		tag, err := results.Exec()
		if err != nil {
			return updated, err
		}

		updated += int(tag.RowsAffected())
	}

	return updated, results.Close()
}
