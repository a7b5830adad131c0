package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/balancechain/internal/domain"
	"github.com/iho/balancechain/internal/fiscal"
)

var (
	// ErrReasonRequired is returned when an adjustment mutation carries no
	// reason; every adjustment write is audited.
	ErrReasonRequired = errors.New("a reason is required")

	// ErrInvalidFinancialYear is returned for a non-positive target year.
	ErrInvalidFinancialYear = errors.New("invalid financial year")
)

// AdjustmentUseCase manages year opening adjustments: audited, per-year
// corrections layered on top of the carry-forward chain. Creating, changing
// or cancelling one invalidates every later year, so each mutation replays
// the affected branch forward inside the same transaction.
type AdjustmentUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	companyRepo     CompanyRepository
	monthlyRepo     MonthlyBalanceRepository
	ledgerRepo      LedgerEntryRepository
	adjustmentRepo  AdjustmentRepository
	outstandingRepo OutstandingRepository
	idGen           IDGenerator
	cache           Cache
	clock           Clock
	replayer        chainReplayer
}

// NewAdjustmentUseCase creates a new AdjustmentUseCase. cache may be nil.
func NewAdjustmentUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	companyRepo CompanyRepository,
	monthlyRepo MonthlyBalanceRepository,
	ledgerRepo LedgerEntryRepository,
	adjustmentRepo AdjustmentRepository,
	outstandingRepo OutstandingRepository,
	idGen IDGenerator,
	cache Cache,
	clock Clock,
) *AdjustmentUseCase {
	return &AdjustmentUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		companyRepo:     companyRepo,
		monthlyRepo:     monthlyRepo,
		ledgerRepo:      ledgerRepo,
		adjustmentRepo:  adjustmentRepo,
		outstandingRepo: outstandingRepo,
		idGen:           idGen,
		cache:           cache,
		clock:           clock,
		replayer: chainReplayer{
			monthlyRepo: monthlyRepo,
			ledgerRepo:  ledgerRepo,
			clock:       clock,
		},
	}
}

// UpsertAdjustmentInput creates or replaces the active adjustment for one
// (entity, financial year).
type UpsertAdjustmentInput struct {
	CompanyID     string
	BranchID      string
	EntityID      string
	EntityType    domain.EntityType
	FinancialYear int
	Amount        decimal.Decimal
	Reason        string
	UserID        string
}

// UpsertAdjustment creates the adjustment, or updates the existing active
// one in place: at most one active row ever exists per (entity, type, fy).
// For party entities the branch ledger is replayed forward from the adjusted
// year before commit.
func (uc *AdjustmentUseCase) UpsertAdjustment(ctx context.Context, input UpsertAdjustmentInput) (*domain.YearOpeningAdjustment, error) {
	if !input.EntityType.Valid() {
		return nil, domain.ErrUnsupportedEntityType
	}

	if input.FinancialYear <= 0 {
		return nil, ErrInvalidFinancialYear
	}

	if input.Reason == "" {
		return nil, ErrReasonRequired
	}

	cal, err := uc.calendar(ctx, input.CompanyID)
	if err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := uc.clock.Now()

	adj, err := uc.adjustmentRepo.GetActive(ctx, tx, input.EntityID, input.EntityType, input.FinancialYear)
	if err != nil {
		return nil, err
	}

	if adj != nil {
		adj.AdjustmentAmount = input.Amount
		adj.Reason = input.Reason
		adj.UpdatedBy = input.UserID
		adj.UpdatedAt = now

		if err := uc.adjustmentRepo.Update(ctx, tx, adj); err != nil {
			return nil, fmt.Errorf("update adjustment: %w", err)
		}
	} else {
		adj = &domain.YearOpeningAdjustment{
			ID:               uc.idGen.Generate(),
			Number:           "ADJ-" + uc.idGen.Generate(),
			EntityID:         input.EntityID,
			EntityType:       input.EntityType,
			FinancialYear:    input.FinancialYear,
			AdjustmentAmount: input.Amount,
			Reason:           input.Reason,
			CreatedBy:        input.UserID,
			UpdatedBy:        input.UserID,
			State:            domain.AdjustmentActive,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		if err := uc.adjustmentRepo.Create(ctx, tx, adj); err != nil {
			return nil, fmt.Errorf("create adjustment: %w", err)
		}
	}

	if err := uc.replayForward(ctx, tx, cal, input.CompanyID, input.BranchID, adj); err != nil {
		return nil, err
	}

	if err := uc.rederiveOutstanding(ctx, tx, adj); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.invalidateChain(ctx, adj)

	return adj, nil
}

// CancelAdjustmentInput cancels an active adjustment.
type CancelAdjustmentInput struct {
	CompanyID    string
	BranchID     string
	AdjustmentID string
	UserID       string
	Reason       string
}

// CancelAdjustment soft-cancels the adjustment, preserving the row with
// cancellation metadata, and replays the branch forward so the chain behaves
// as if the adjustment no longer exists.
func (uc *AdjustmentUseCase) CancelAdjustment(ctx context.Context, input CancelAdjustmentInput) (*domain.YearOpeningAdjustment, error) {
	if input.Reason == "" {
		return nil, ErrReasonRequired
	}

	adj, err := uc.adjustmentRepo.GetByID(ctx, input.AdjustmentID)
	if err != nil {
		return nil, err
	}

	if err := adj.Cancel(input.UserID, input.Reason, uc.clock.Now()); err != nil {
		return nil, err
	}

	adj.UpdatedBy = input.UserID
	adj.UpdatedAt = uc.clock.Now()

	cal, err := uc.calendar(ctx, input.CompanyID)
	if err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.adjustmentRepo.Update(ctx, tx, adj); err != nil {
		return nil, fmt.Errorf("cancel adjustment: %w", err)
	}

	if err := uc.replayForward(ctx, tx, cal, input.CompanyID, input.BranchID, adj); err != nil {
		return nil, err
	}

	if err := uc.rederiveOutstanding(ctx, tx, adj); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.invalidateChain(ctx, adj)

	return adj, nil
}

func (uc *AdjustmentUseCase) calendar(ctx context.Context, companyID string) (fiscal.Calendar, error) {
	cfg, err := uc.companyRepo.GetFYConfig(ctx, companyID)
	if err != nil {
		return fiscal.Calendar{}, err
	}

	return fiscal.New(*cfg)
}

// replayForward rebuilds the branch ledger from the adjusted year through
// the latest year with activity. Items carry no ledger here, so only party
// entities replay.
func (uc *AdjustmentUseCase) replayForward(ctx context.Context, tx Transaction, cal fiscal.Calendar, companyID, branchID string, adj *domain.YearOpeningAdjustment) error {
	if adj.EntityType != domain.EntityParty {
		return nil
	}

	last, err := uc.ledgerRepo.LatestDate(ctx, adj.EntityID, branchID)
	if err != nil {
		return err
	}

	if last == nil {
		return nil
	}

	endFY := cal.YearOf(*last)
	if endFY < adj.FinancialYear {
		endFY = adj.FinancialYear
	}

	seed, err := uc.openingSeed(ctx, tx, cal, companyID, branchID, adj.EntityID, adj.FinancialYear)
	if err != nil {
		return err
	}

	seed = seed.Add(adj.EffectiveAmount())

	years := fiscal.Years(adj.FinancialYear, endFY)

	_, err = uc.replayer.replayBranch(ctx, tx, cal, companyID, branchID, adj.EntityID, years, seed)
	if err != nil {
		return fmt.Errorf("replay branch %s: %w", branchID, err)
	}

	return nil
}

// openingSeed resolves the carry-forward opening of a financial year: the
// closing of the latest monthly row before the year starts, falling back to
// the master signed opening when no prior activity exists.
func (uc *AdjustmentUseCase) openingSeed(ctx context.Context, tx Transaction, cal fiscal.Calendar, companyID, branchID, accountID string, financialYear int) (decimal.Decimal, error) {
	first := cal.Months(financialYear)[0]

	prior, err := uc.monthlyRepo.LatestBefore(ctx, tx, companyID, branchID, accountID, first.Year, first.Month)
	if err != nil {
		return decimal.Decimal{}, err
	}

	if prior != nil {
		return prior.ClosingBalance, nil
	}

	account, err := uc.accountRepo.GetByCompany(ctx, companyID, accountID)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return account.SignedOpening(), nil
}

// rederiveOutstanding recomputes the adjustment-linked outstanding row. A
// cancelled adjustment contributes zero, which collapses the outstanding to
// whatever receipts and payments have already settled against it.
func (uc *AdjustmentUseCase) rederiveOutstanding(ctx context.Context, tx Transaction, adj *domain.YearOpeningAdjustment) error {
	outstanding, err := uc.outstandingRepo.GetByAdjustment(ctx, tx, adj.ID)
	if err != nil {
		if errors.Is(err, domain.ErrOutstandingNotFound) {
			return nil
		}

		return err
	}

	if outstanding == nil {
		return nil
	}

	totals, err := uc.outstandingRepo.ReceiptPaymentTotals(ctx, tx, outstanding.ID)
	if err != nil {
		return err
	}

	outstanding.Rederive(adj.EffectiveAmount(), totals, uc.clock.Now())

	return uc.outstandingRepo.Update(ctx, tx, outstanding)
}

func (uc *AdjustmentUseCase) invalidateChain(ctx context.Context, adj *domain.YearOpeningAdjustment) {
	if uc.cache == nil {
		return
	}

	_ = uc.cache.DeletePrefix(ctx, chainCachePrefix(adj.EntityType, adj.EntityID))
}
