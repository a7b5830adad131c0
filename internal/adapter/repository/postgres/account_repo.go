package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/balancechain/internal/domain"
	"github.com/iho/balancechain/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `
	id, company_id, name, branch_ids,
	opening_balance, opening_balance_type, created_at, updated_at
`

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)

	return scanAccount(row)
}

// GetByCompany retrieves an account scoped to its owning company.
func (r *AccountRepository) GetByCompany(ctx context.Context, companyID, accountID string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND company_id = $2`,
		accountID, companyID)

	return scanAccount(row)
}

// UpdateOpeningBalance rewrites the master opening balance inside the
// caller's transaction.
func (r *AccountRepository) UpdateOpeningBalance(ctx context.Context, tx usecase.Transaction, accountID string, balance decimal.Decimal, balanceType domain.BalanceType, updatedAt time.Time) error {
	tag, err := txQuerier(tx).Exec(ctx, `
		UPDATE accounts
		SET opening_balance = $2, opening_balance_type = $3, updated_at = $4
		WHERE id = $1
	`, accountID, decimalToNumeric(balance), string(balanceType), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account     domain.Account
		opening     pgtype.Numeric
		balanceType string
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&account.ID, &account.CompanyID, &account.Name, &account.BranchIDs,
		&opening, &balanceType, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	account.OpeningBalance = numericToDecimal(opening)
	account.OpeningBalanceType = domain.BalanceType(balanceType)
	account.CreatedAt = createdAt.Time
	account.UpdatedAt = updatedAt.Time

	return &account, nil
}
