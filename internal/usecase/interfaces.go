package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/balancechain/internal/domain"
)

// AccountRepository defines data access for the account master.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByCompany(ctx context.Context, companyID, accountID string) (*domain.Account, error)
	UpdateOpeningBalance(ctx context.Context, tx Transaction, accountID string, balance decimal.Decimal, balanceType domain.BalanceType, updatedAt time.Time) error
}

// ItemRepository defines data access for the item master.
type ItemRepository interface {
	GetByCompany(ctx context.Context, companyID, itemID string) (*domain.Item, error)
}

// CompanyRepository defines data access for companies, branches and the
// financial year configuration owned by settings management.
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	GetFYConfig(ctx context.Context, companyID string) (*domain.FYConfig, error)
	GetBranches(ctx context.Context, companyID string, branchIDs []string) ([]*domain.Branch, error)
}

// MonthlyBalanceRepository defines data access for monthly aggregates.
type MonthlyBalanceRepository interface {
	// ListByAccountBranch returns rows ordered by (year, month) ascending.
	ListByAccountBranch(ctx context.Context, companyID, branchID, accountID string) ([]*domain.MonthlyBalance, error)
	// FindDirty returns periods flagged for recalculation across branches.
	FindDirty(ctx context.Context, accountID string, branchIDs []string) ([]domain.DirtyPeriod, error)
	// LatestBefore returns the most recent row strictly before (year, month),
	// or nil when none exists.
	LatestBefore(ctx context.Context, tx Transaction, companyID, branchID, accountID string, year, month int) (*domain.MonthlyBalance, error)
	Upsert(ctx context.Context, tx Transaction, balance *domain.MonthlyBalance) error
}

// RunningBalanceUpdate rewrites one ledger entry's running balance.
type RunningBalanceUpdate struct {
	EntryID        string
	RunningBalance decimal.Decimal
}

// LedgerEntryRepository defines data access for posted ledger entries. The
// recalculation executor is the only writer besides the posting subsystem,
// and only of running balances.
type LedgerEntryRepository interface {
	// ListRange returns entries in [from, to] ordered by
	// (transaction date, created_at, id) ascending.
	ListRange(ctx context.Context, tx Transaction, accountID, branchID string, from, to time.Time) ([]*domain.LedgerEntry, error)
	CountRange(ctx context.Context, accountID, branchID string, from, to time.Time) (int, error)
	// LatestDate returns the most recent transaction date for the branch, or
	// nil when the branch has no ledger activity.
	LatestDate(ctx context.Context, accountID, branchID string) (*time.Time, error)
	UpdateRunningBalances(ctx context.Context, tx Transaction, updates []RunningBalanceUpdate) (int, error)
}

// AdjustmentRepository defines data access for year opening adjustments.
type AdjustmentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.YearOpeningAdjustment, error)
	// GetActive returns the single active row for (entity, type, fy), or nil.
	GetActive(ctx context.Context, tx Transaction, entityID string, entityType domain.EntityType, financialYear int) (*domain.YearOpeningAdjustment, error)
	ListActiveByEntity(ctx context.Context, entityID string, entityType domain.EntityType) ([]*domain.YearOpeningAdjustment, error)
	Create(ctx context.Context, tx Transaction, adj *domain.YearOpeningAdjustment) error
	Update(ctx context.Context, tx Transaction, adj *domain.YearOpeningAdjustment) error
}

// PendingAdjustmentRepository defines data access for not-yet-posted deltas.
type PendingAdjustmentRepository interface {
	ListActive(ctx context.Context, accountID, branchID string) ([]*domain.PendingAdjustment, error)
}

// HistoryRepository defines data access for the opening balance audit trail.
type HistoryRepository interface {
	Create(ctx context.Context, tx Transaction, history *domain.OpeningBalanceHistory) error
	// CreateStandalone persists a row outside any transaction; used to record
	// failed attempts after the atomic unit has rolled back.
	CreateStandalone(ctx context.Context, history *domain.OpeningBalanceHistory) error
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.HistoryStatus, errorMessage string) error
	ListByEntity(ctx context.Context, entityID string, entityType domain.EntityType, limit, offset int) ([]*domain.OpeningBalanceHistory, error)
}

// OutstandingRepository defines the narrow contract with the
// accounts-receivable collaborator.
type OutstandingRepository interface {
	// GetByOpeningBalance returns the row linked to the account's master
	// opening, or nil when no such link exists.
	GetByOpeningBalance(ctx context.Context, tx Transaction, accountID string) (*domain.Outstanding, error)
	GetByAdjustment(ctx context.Context, tx Transaction, adjustmentID string) (*domain.Outstanding, error)
	ReceiptPaymentTotals(ctx context.Context, tx Transaction, outstandingID string) (domain.ReceiptPaymentTotals, error)
	Update(ctx context.Context, tx Transaction, outstanding *domain.Outstanding) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock supplies the current time; injected so "the current financial year"
// is deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Cache defines caching operations for chain reads.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
