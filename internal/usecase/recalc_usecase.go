package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/balancechain/internal/domain"
	"github.com/iho/balancechain/internal/fiscal"
	"github.com/iho/balancechain/internal/infrastructure/metrics"
)

var (
	// ErrImpactRequired is returned when execution is attempted without a
	// prior impact analysis; the report is the proof of user confirmation.
	ErrImpactRequired = errors.New("impact report is required before execution")
)

// RecalcUseCase is the only write path allowed to mutate the account
// master's opening balance, ledger running balances and monthly aggregates.
// Everything it does happens inside one transaction: commit or nothing.
type RecalcUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	companyRepo     CompanyRepository
	outstandingRepo OutstandingRepository
	historyRepo     HistoryRepository
	idGen           IDGenerator
	cache           Cache
	clock           Clock
	metrics         *metrics.Metrics
	replayer        chainReplayer
}

// NewRecalcUseCase creates a new RecalcUseCase. cache may be nil.
func NewRecalcUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	companyRepo CompanyRepository,
	monthlyRepo MonthlyBalanceRepository,
	ledgerRepo LedgerEntryRepository,
	outstandingRepo OutstandingRepository,
	historyRepo HistoryRepository,
	idGen IDGenerator,
	cache Cache,
	clock Clock,
	metrics *metrics.Metrics,
) *RecalcUseCase {
	return &RecalcUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		companyRepo:     companyRepo,
		outstandingRepo: outstandingRepo,
		historyRepo:     historyRepo,
		idGen:           idGen,
		cache:           cache,
		clock:           clock,
		metrics:         metrics,
		replayer: chainReplayer{
			monthlyRepo: monthlyRepo,
			ledgerRepo:  ledgerRepo,
			clock:       clock,
		},
	}
}

// ExecuteRecalculationInput is a confirmed opening-balance change plus the
// impact report that authorized it.
type ExecuteRecalculationInput struct {
	CompanyID          string
	AccountID          string
	NewOpeningBalance  decimal.Decimal
	OpeningBalanceType domain.BalanceType
	Impact             *ImpactReport
	TriggeredBy        string
	Reason             string
}

// BranchResult summarizes what one branch's replay rewrote.
type BranchResult struct {
	BranchID               string `json:"branchId"`
	BranchName             string `json:"branchName"`
	RecalculatedYears      []int  `json:"recalculatedYears"`
	TransactionsUpdated    int    `json:"transactionsUpdated"`
	MonthlyBalancesUpdated int    `json:"monthlyBalancesUpdated"`
}

// ExecutionSummary is the result of a committed recalculation.
type ExecutionSummary struct {
	HistoryID                   string             `json:"historyId"`
	OldOpeningBalance           decimal.Decimal    `json:"oldOpeningBalance"`
	OldBalanceType              domain.BalanceType `json:"oldBalanceType"`
	NewOpeningBalance           decimal.Decimal    `json:"newOpeningBalance"`
	NewBalanceType              domain.BalanceType `json:"newBalanceType"`
	AffectedBranches            []BranchResult     `json:"affectedBranches"`
	TotalTransactionsUpdated    int                `json:"totalTransactionsUpdated"`
	TotalMonthlyBalancesUpdated int                `json:"totalMonthlyBalancesUpdated"`
	ExecutionTime               string             `json:"executionTime"`
}

// ExecuteRecalculation applies the new master opening balance and re-walks
// every affected branch month by month, rebuilding running balances and
// monthly aggregates from the new seed. The master write, every rewritten
// row, the outstanding re-derivation and the audit row commit together or
// not at all. Nothing is retried: a transient database failure rolls back
// and surfaces to the caller, who may resubmit the same input unchanged.
func (uc *RecalcUseCase) ExecuteRecalculation(ctx context.Context, input ExecuteRecalculationInput) (*ExecutionSummary, error) {
	if !input.OpeningBalanceType.Valid() {
		return nil, domain.ErrInvalidBalanceType
	}

	if input.NewOpeningBalance.IsNegative() {
		return nil, domain.ErrNegativeAmount
	}

	if input.Impact == nil || len(input.Impact.AffectedBranches) == 0 {
		return nil, ErrImpactRequired
	}

	account, err := uc.accountRepo.GetByCompany(ctx, input.CompanyID, input.AccountID)
	if err != nil {
		return nil, err
	}

	cfg, err := uc.companyRepo.GetFYConfig(ctx, input.CompanyID)
	if err != nil {
		return nil, err
	}

	cal, err := fiscal.New(*cfg)
	if err != nil {
		return nil, err
	}

	started := uc.clock.Now()
	history := uc.buildHistory(account, input, started)

	summary, err := uc.execute(ctx, cal, account, input, history)
	if err != nil {
		// The transaction is gone; record the failed attempt durably.
		history.Status = domain.HistoryFailed
		history.ErrorMessage = err.Error()
		_ = uc.historyRepo.CreateStandalone(ctx, history)

		if uc.metrics != nil {
			uc.metrics.RecalculationsFailed.Inc()
		}

		return nil, err
	}

	if uc.cache != nil {
		_ = uc.cache.DeletePrefix(ctx, chainCachePrefix(domain.EntityParty, account.ID))
	}

	summary.ExecutionTime = uc.clock.Now().Sub(started).Round(10 * time.Millisecond).String()

	if uc.metrics != nil {
		uc.metrics.RecalculationsExecuted.Inc()
		uc.metrics.RecalculationDuration.Observe(uc.clock.Now().Sub(started).Seconds())
		uc.metrics.TransactionsRewritten.Add(float64(summary.TotalTransactionsUpdated))
		uc.metrics.MonthlyBalancesUpdated.Add(float64(summary.TotalMonthlyBalancesUpdated))
	}

	return summary, nil
}

func (uc *RecalcUseCase) execute(
	ctx context.Context,
	cal fiscal.Calendar,
	account *domain.Account,
	input ExecuteRecalculationInput,
	history *domain.OpeningBalanceHistory,
) (*ExecutionSummary, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	summary := &ExecutionSummary{
		HistoryID:         history.ID,
		OldOpeningBalance: account.OpeningBalance,
		OldBalanceType:    account.OpeningBalanceType,
		NewOpeningBalance: input.NewOpeningBalance,
		NewBalanceType:    input.OpeningBalanceType,
	}

	err = uc.accountRepo.UpdateOpeningBalance(ctx, tx, account.ID, input.NewOpeningBalance, input.OpeningBalanceType, uc.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("update master opening balance: %w", err)
	}

	seed := domain.Normalize(input.NewOpeningBalance, input.OpeningBalanceType)

	for _, branch := range input.Impact.AffectedBranches {
		years := make([]int, 0, len(branch.Years))
		for _, y := range branch.Years {
			years = append(years, y.FinancialYear)
		}

		stats, err := uc.replayer.replayBranch(ctx, tx, cal, account.CompanyID, branch.BranchID, account.ID, years, seed)
		if err != nil {
			return nil, fmt.Errorf("recalculate branch %s: %w", branch.BranchID, err)
		}

		summary.AffectedBranches = append(summary.AffectedBranches, BranchResult{
			BranchID:               branch.BranchID,
			BranchName:             branch.BranchName,
			RecalculatedYears:      years,
			TransactionsUpdated:    stats.TransactionsUpdated,
			MonthlyBalancesUpdated: stats.MonthlyBalancesUpdated,
		})
		summary.TotalTransactionsUpdated += stats.TransactionsUpdated
		summary.TotalMonthlyBalancesUpdated += stats.MonthlyBalancesUpdated
	}

	err = uc.rederiveOutstanding(ctx, tx, account.ID, seed)
	if err != nil {
		return nil, fmt.Errorf("rederive outstanding: %w", err)
	}

	err = uc.historyRepo.Create(ctx, tx, history)
	if err != nil {
		return nil, fmt.Errorf("write history: %w", err)
	}

	err = uc.historyRepo.UpdateStatus(ctx, tx, history.ID, domain.HistoryCompleted, "")
	if err != nil {
		return nil, fmt.Errorf("complete history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return summary, nil
}

// rederiveOutstanding recomputes the opening-linked outstanding row from the
// new signed opening net of receipts and payments already applied to it.
func (uc *RecalcUseCase) rederiveOutstanding(ctx context.Context, tx Transaction, accountID string, signedOpening decimal.Decimal) error {
	outstanding, err := uc.outstandingRepo.GetByOpeningBalance(ctx, tx, accountID)
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

	outstanding.Rederive(signedOpening, totals, uc.clock.Now())

	return uc.outstandingRepo.Update(ctx, tx, outstanding)
}

func (uc *RecalcUseCase) buildHistory(account *domain.Account, input ExecuteRecalculationInput, at time.Time) *domain.OpeningBalanceHistory {
	oldSigned := account.SignedOpening()
	newSigned := domain.Normalize(input.NewOpeningBalance, input.OpeningBalanceType)

	return &domain.OpeningBalanceHistory{
		ID:                  uc.idGen.Generate(),
		CompanyID:           account.CompanyID,
		EntityID:            account.ID,
		EntityType:          domain.EntityParty,
		FinancialYearStart:  input.Impact.StartingYear,
		PreviousBalance:     account.OpeningBalance,
		PreviousBalanceType: account.OpeningBalanceType,
		NewBalance:          input.NewOpeningBalance,
		NewBalanceType:      input.OpeningBalanceType,
		DeltaAmount:         newSigned.Sub(oldSigned),
		AffectedYears:       mergeAffectedYears(input.Impact.AffectedBranches),
		TotalTransactions:   input.Impact.TotalTransactions,
		EstimatedSeconds:    input.Impact.EstimatedSeconds,
		Status:              domain.HistoryInProgress,
		TriggeredBy:         input.TriggeredBy,
		Reason:              input.Reason,
		TriggeredAt:         at,
	}
}

// mergeAffectedYears folds per-branch year counts into one per-FY snapshot,
// ascending by financial year.
func mergeAffectedYears(branches []BranchImpact) []domain.AffectedYear {
	byFY := make(map[int]*domain.AffectedYear)

	for _, b := range branches {
		for _, y := range b.Years {
			existing, ok := byFY[y.FinancialYear]
			if !ok {
				copied := y
				byFY[y.FinancialYear] = &copied

				continue
			}

			existing.Transactions += y.Transactions
		}
	}

	merged := make([]domain.AffectedYear, 0, len(byFY))
	for _, y := range byFY {
		merged = append(merged, *y)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].FinancialYear < merged[j].FinancialYear
	})

	return merged
}

// branchReplayStats counts what one branch replay rewrote.
type branchReplayStats struct {
	TransactionsUpdated    int
	MonthlyBalancesUpdated int
}

// chainReplayer re-walks a branch's ledger month by month, rebuilding the
// running-balance chain from a seed. Shared by the opening-balance executor
// and the adjustment ledger.
type chainReplayer struct {
	monthlyRepo MonthlyBalanceRepository
	ledgerRepo  LedgerEntryRepository
	clock       Clock
}

// replayBranch replays years (ascending) for one (account, branch). Each
// month's entries are refetched in chronological order and replayed onto the
// running balance; the month's aggregate row is rewritten with its dirty
// flag cleared and the closing carried forward as the next opening. This
// rebuilds the whole chain rather than patching deltas, so no gap or
// compounded sign error can survive.
func (r chainReplayer) replayBranch(
	ctx context.Context,
	tx Transaction,
	cal fiscal.Calendar,
	companyID, branchID, accountID string,
	years []int,
	seed decimal.Decimal,
) (branchReplayStats, error) {
	var stats branchReplayStats

	running := seed

	for _, fy := range years {
		for _, ym := range cal.Months(fy) {
			from, to := fiscal.MonthRange(ym.Year, ym.Month)

			entries, err := r.ledgerRepo.ListRange(ctx, tx, accountID, branchID, from, to)
			if err != nil {
				return stats, err
			}

			if len(entries) == 0 {
				continue
			}

			monthOpening := running

			var totalDebit, totalCredit decimal.Decimal

			updates := make([]RunningBalanceUpdate, 0, len(entries))

			for _, entry := range entries {
				running = running.Add(entry.SignedEffect())

				if entry.Side == domain.SideDebit {
					totalDebit = totalDebit.Add(entry.Amount)
				} else {
					totalCredit = totalCredit.Add(entry.Amount)
				}

				updates = append(updates, RunningBalanceUpdate{
					EntryID:        entry.ID,
					RunningBalance: running,
				})
			}

			updated, err := r.ledgerRepo.UpdateRunningBalances(ctx, tx, updates)
			if err != nil {
				return stats, err
			}

			stats.TransactionsUpdated += updated

			err = r.monthlyRepo.Upsert(ctx, tx, &domain.MonthlyBalance{
				CompanyID:          companyID,
				BranchID:           branchID,
				AccountID:          accountID,
				Year:               ym.Year,
				Month:              ym.Month,
				PeriodKey:          domain.PeriodKeyFor(ym.Year, ym.Month),
				OpeningBalance:     monthOpening,
				TotalDebit:         totalDebit,
				TotalCredit:        totalCredit,
				ClosingBalance:     running,
				TransactionCount:   len(entries),
				NeedsRecalculation: false,
				UpdatedAt:          r.clock.Now(),
			})
			if err != nil {
				return stats, err
			}

			stats.MonthlyBalancesUpdated++
		}
	}

	return stats, nil
}
