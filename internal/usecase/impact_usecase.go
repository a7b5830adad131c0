package usecase

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/balancechain/internal/domain"
	"github.com/iho/balancechain/internal/fiscal"
)

// ImpactUseCase determines what a proposed master opening-balance change
// would touch. It is read-only: the report it produces is the authoritative
// work list the executor later consumes.
type ImpactUseCase struct {
	accountRepo AccountRepository
	companyRepo CompanyRepository
	monthlyRepo MonthlyBalanceRepository
	ledgerRepo  LedgerEntryRepository
}

// NewImpactUseCase creates a new ImpactUseCase.
func NewImpactUseCase(
	accountRepo AccountRepository,
	companyRepo CompanyRepository,
	monthlyRepo MonthlyBalanceRepository,
	ledgerRepo LedgerEntryRepository,
) *ImpactUseCase {
	return &ImpactUseCase{
		accountRepo: accountRepo,
		companyRepo: companyRepo,
		monthlyRepo: monthlyRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// AnalyzeImpactInput is a proposed change to the master opening balance.
type AnalyzeImpactInput struct {
	CompanyID          string
	AccountID          string
	NewOpeningBalance  decimal.Decimal
	OpeningBalanceType domain.BalanceType
}

// BranchImpact is the recalculation scope of one branch.
type BranchImpact struct {
	BranchID         string                `json:"branchId"`
	BranchName       string                `json:"branchName"`
	Years            []domain.AffectedYear `json:"years"`
	TransactionCount int                   `json:"transactionCount"`
}

// ImpactReport is the per-branch recalculation scope plus totals.
type ImpactReport struct {
	AccountID         string             `json:"accountId"`
	AccountName       string             `json:"accountName"`
	OldOpeningBalance decimal.Decimal    `json:"oldOpeningBalance"`
	OldBalanceType    domain.BalanceType `json:"oldBalanceType"`
	NewOpeningBalance decimal.Decimal    `json:"newOpeningBalance"`
	NewBalanceType    domain.BalanceType `json:"newBalanceType"`
	StartingYear      int                `json:"startingYear"`
	AffectedBranches  []BranchImpact     `json:"affectedBranches"`
	TotalTransactions int                `json:"totalTransactions"`
	EstimatedSeconds  int                `json:"estimatedSeconds"`
}

// AnalyzeImpact checks the preconditions in order (first failure wins) and
// reports, per branch, which financial years a recalculation would re-walk
// and how many ledger entries that touches. Precondition failures come back
// as *Rejection.
func (uc *ImpactUseCase) AnalyzeImpact(ctx context.Context, input AnalyzeImpactInput) (*ImpactReport, error) {
	if !input.OpeningBalanceType.Valid() {
		return nil, domain.ErrInvalidBalanceType
	}

	if input.NewOpeningBalance.IsNegative() {
		return nil, domain.ErrNegativeAmount
	}

	account, err := uc.accountRepo.GetByCompany(ctx, input.CompanyID, input.AccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, &Rejection{Code: RejectAccountNotFound, Message: "account not found under company"}
		}

		return nil, err
	}

	// Hard gate: never analyze on top of aggregates the posting path has
	// flagged as stale.
	dirty, err := uc.monthlyRepo.FindDirty(ctx, account.ID, account.BranchIDs)
	if err != nil {
		return nil, err
	}

	if len(dirty) > 0 {
		return nil, &Rejection{
			Code:          RejectDirtyData,
			Message:       "monthly balances are marked for recalculation; resolve them before editing the opening balance",
			DirtyBranches: groupDirty(dirty),
		}
	}

	if _, err := uc.companyRepo.GetByID(ctx, input.CompanyID); err != nil {
		if errors.Is(err, domain.ErrCompanyNotFound) {
			return nil, &Rejection{Code: RejectCompanyNotFound, Message: "company not found"}
		}

		return nil, err
	}

	cfg, err := uc.companyRepo.GetFYConfig(ctx, input.CompanyID)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			return nil, &Rejection{Code: RejectSettingsNotFound, Message: "company settings not found"}
		}

		return nil, err
	}

	cal, err := fiscal.New(*cfg)
	if err != nil {
		return nil, &Rejection{Code: RejectInvalidFYConfig, Message: err.Error()}
	}

	branches, err := uc.companyRepo.GetBranches(ctx, input.CompanyID, account.BranchIDs)
	if err != nil {
		return nil, err
	}

	var (
		affected []BranchImpact
		total    int
	)

	for _, branch := range branches {
		impact, err := uc.branchImpact(ctx, cal, account.ID, branch)
		if err != nil {
			return nil, err
		}

		if impact == nil {
			continue
		}

		affected = append(affected, *impact)
		total += impact.TransactionCount
	}

	if len(affected) == 0 {
		return nil, &Rejection{
			Code:    RejectNoRecalculation,
			Message: "no ledger activity found for this account in any branch",
		}
	}

	estimated := (total + transactionsPerSecond - 1) / transactionsPerSecond

	return &ImpactReport{
		AccountID:         account.ID,
		AccountName:       account.Name,
		OldOpeningBalance: account.OpeningBalance,
		OldBalanceType:    account.OpeningBalanceType,
		NewOpeningBalance: input.NewOpeningBalance,
		NewBalanceType:    input.OpeningBalanceType,
		StartingYear:      cal.StartingYear,
		AffectedBranches:  affected,
		TotalTransactions: total,
		EstimatedSeconds:  estimated,
	}, nil
}

// branchImpact returns nil for branches with no ledger activity; they
// contribute nothing and are dropped from the report.
func (uc *ImpactUseCase) branchImpact(ctx context.Context, cal fiscal.Calendar, accountID string, branch *domain.Branch) (*BranchImpact, error) {
	last, err := uc.ledgerRepo.LatestDate(ctx, accountID, branch.ID)
	if err != nil {
		return nil, err
	}

	if last == nil {
		return nil, nil
	}

	// The range runs through the FY of the latest entry, not the calendar
	// current FY: future-dated postings must be included.
	endFY := cal.YearOf(*last)

	years := fiscal.Years(cal.StartingYear, endFY)
	if len(years) == 0 {
		years = []int{endFY}
	}

	impact := &BranchImpact{BranchID: branch.ID, BranchName: branch.Name}

	for _, fy := range years {
		from, to := cal.YearRange(fy)

		count, err := uc.ledgerRepo.CountRange(ctx, accountID, branch.ID, from, to)
		if err != nil {
			return nil, err
		}

		impact.Years = append(impact.Years, domain.AffectedYear{
			FinancialYear: fy,
			Label:         fiscal.Label(fy),
			Transactions:  count,
		})
		impact.TransactionCount += count
	}

	if impact.TransactionCount == 0 {
		return nil, nil
	}

	return impact, nil
}

func groupDirty(periods []domain.DirtyPeriod) []DirtyBranch {
	byBranch := make(map[string]*DirtyBranch)

	for _, p := range periods {
		b, ok := byBranch[p.BranchID]
		if !ok {
			b = &DirtyBranch{BranchID: p.BranchID, BranchName: p.BranchName}
			byBranch[p.BranchID] = b
		}

		b.DirtyMonths = append(b.DirtyMonths, p.PeriodKey)
	}

	out := make([]DirtyBranch, 0, len(byBranch))
	for _, b := range byBranch {
		sort.Strings(b.DirtyMonths)
		out = append(out, *b)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].BranchID < out[j].BranchID })

	return out
}
