package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/iho/balancechain/internal/domain"
	"github.com/iho/balancechain/internal/usecase"
)

// MonthlyBalanceRepository implements usecase.MonthlyBalanceRepository.
type MonthlyBalanceRepository struct {
	pool *pgxpool.Pool
}

// NewMonthlyBalanceRepository creates a new MonthlyBalanceRepository.
func NewMonthlyBalanceRepository(pool *pgxpool.Pool) *MonthlyBalanceRepository {
	return &MonthlyBalanceRepository{pool: pool}
}

const monthlyColumns = `
	id, company_id, branch_id, account_id, year, month, period_key,
	opening_balance, total_debit, total_credit, closing_balance,
	transaction_count, needs_recalculation, updated_at
`

// ListByAccountBranch returns the account's monthly rows for one branch in
// chronological order.
func (r *MonthlyBalanceRepository) ListByAccountBranch(ctx context.Context, companyID, branchID, accountID string) ([]*domain.MonthlyBalance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+monthlyColumns+`
		FROM monthly_balances
		WHERE company_id = $1 AND branch_id = $2 AND account_id = $3
		ORDER BY year, month
	`, companyID, branchID, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMonthlyRows(rows)
}

// FindDirty returns every period flagged for recalculation across the given
// branches, with branch names resolved for display.
func (r *MonthlyBalanceRepository) FindDirty(ctx context.Context, accountID string, branchIDs []string) ([]domain.DirtyPeriod, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT mb.branch_id, COALESCE(b.name, ''), mb.period_key
		FROM monthly_balances mb
		LEFT JOIN branches b ON b.id = mb.branch_id
		WHERE mb.account_id = $1 AND mb.branch_id = ANY($2) AND mb.needs_recalculation
		ORDER BY mb.branch_id, mb.period_key
	`, accountID, branchIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dirty []domain.DirtyPeriod

	for rows.Next() {
		var p domain.DirtyPeriod
		if err := rows.Scan(&p.BranchID, &p.BranchName, &p.PeriodKey); err != nil {
			return nil, err
		}

		dirty = append(dirty, p)
	}

	return dirty, rows.Err()
}

// LatestBefore returns the most recent row strictly before (year, month), or
// nil when the account has no earlier activity in the branch.
func (r *MonthlyBalanceRepository) LatestBefore(ctx context.Context, tx usecase.Transaction, companyID, branchID, accountID string, year, month int) (*domain.MonthlyBalance, error) {
	rows, err := txQuerier(tx).Query(ctx, `
		SELECT `+monthlyColumns+`
		FROM monthly_balances
		WHERE company_id = $1 AND branch_id = $2 AND account_id = $3
		  AND (year * 100 + month) < $4
		ORDER BY year DESC, month DESC
		LIMIT 1
	`, companyID, branchID, accountID, year*100+month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances, err := scanMonthlyRows(rows)
	if err != nil {
		return nil, err
	}

	if len(balances) == 0 {
		return nil, nil
	}

	return balances[0], nil
}

// Upsert inserts or rewrites the (branch, account, year, month) row.
func (r *MonthlyBalanceRepository) Upsert(ctx context.Context, tx usecase.Transaction, balance *domain.MonthlyBalance) error {
	if balance.ID == "" {
		balance.ID = ulid.Make().String()
	}

	_, err := txQuerier(tx).Exec(ctx, `
		INSERT INTO monthly_balances (
			id, company_id, branch_id, account_id, year, month, period_key,
			opening_balance, total_debit, total_credit, closing_balance,
			transaction_count, needs_recalculation, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (branch_id, account_id, year, month) DO UPDATE SET
			opening_balance = EXCLUDED.opening_balance,
			total_debit = EXCLUDED.total_debit,
			total_credit = EXCLUDED.total_credit,
			closing_balance = EXCLUDED.closing_balance,
			transaction_count = EXCLUDED.transaction_count,
			needs_recalculation = EXCLUDED.needs_recalculation,
			updated_at = EXCLUDED.updated_at
	`,
		balance.ID, balance.CompanyID, balance.BranchID, balance.AccountID,
		balance.Year, balance.Month, balance.PeriodKey,
		decimalToNumeric(balance.OpeningBalance), decimalToNumeric(balance.TotalDebit),
		decimalToNumeric(balance.TotalCredit), decimalToNumeric(balance.ClosingBalance),
		balance.TransactionCount, balance.NeedsRecalculation,
		timeToPgTimestamptz(balance.UpdatedAt),
	)

	return err
}

func scanMonthlyRows(rows pgx.Rows) ([]*domain.MonthlyBalance, error) {
	var balances []*domain.MonthlyBalance

	for rows.Next() {
		var (
			mb                                        domain.MonthlyBalance
			opening, totalDebit, totalCredit, closing pgtype.Numeric
			updatedAt                                 pgtype.Timestamptz
		)

		err := rows.Scan(
			&mb.ID, &mb.CompanyID, &mb.BranchID, &mb.AccountID,
			&mb.Year, &mb.Month, &mb.PeriodKey,
			&opening, &totalDebit, &totalCredit, &closing,
			&mb.TransactionCount, &mb.NeedsRecalculation, &updatedAt,
		)
		if err != nil {
			return nil, err
		}

		mb.OpeningBalance = numericToDecimal(opening)
		mb.TotalDebit = numericToDecimal(totalDebit)
		mb.TotalCredit = numericToDecimal(totalCredit)
		mb.ClosingBalance = numericToDecimal(closing)
		mb.UpdatedAt = updatedAt.Time

		balances = append(balances, &mb)
	}

	return balances, rows.Err()
}
