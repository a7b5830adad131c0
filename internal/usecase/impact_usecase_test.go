package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/balancechain/internal/domain"
	"github.com/iho/balancechain/internal/usecase"
	"github.com/iho/balancechain/internal/usecase/mocks"
)

type impactMocks struct {
	accounts  *mocks.MockAccountRepository
	companies *mocks.MockCompanyRepository
	monthly   *mocks.MockMonthlyBalanceRepository
	ledger    *mocks.MockLedgerEntryRepository
}

func newImpactMocks() *impactMocks {
	m := &impactMocks{
		accounts:  mocks.NewMockAccountRepository(),
		companies: mocks.NewMockCompanyRepository(),
		monthly:   mocks.NewMockMonthlyBalanceRepository(),
		ledger:    mocks.NewMockLedgerEntryRepository(),
	}
	m.companies.Add(
		&domain.Company{ID: testCompanyID, Name: "Test Co"},
		&domain.FYConfig{Format: "april-march", StartingYear: 2023},
		&domain.Branch{ID: testBranchID, CompanyID: testCompanyID, Name: "Main"},
	)
	m.accounts.Add(&domain.Account{
		ID:                 testAccountID,
		CompanyID:          testCompanyID,
		Name:               "Acme Traders",
		BranchIDs:          []string{testBranchID},
		OpeningBalance:     decimal.NewFromInt(10000),
		OpeningBalanceType: domain.BalanceDebit,
	})
	return m
}

func (m *impactMocks) usecase() *usecase.ImpactUseCase {
	return usecase.NewImpactUseCase(m.accounts, m.companies, m.monthly, m.ledger)
}

func impactInput() usecase.AnalyzeImpactInput {
	return usecase.AnalyzeImpactInput{
		CompanyID:          testCompanyID,
		AccountID:          testAccountID,
		NewOpeningBalance:  decimal.NewFromInt(2000),
		OpeningBalanceType: domain.BalanceDebit,
	}
}

func entryAt(id string, date time.Time, side domain.EntrySide, amount int64) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:              id,
		CompanyID:       testCompanyID,
		BranchID:        testBranchID,
		AccountID:       testAccountID,
		TransactionDate: date,
		Side:            side,
		Amount:          decimal.NewFromInt(amount),
		CreatedAt:       date,
	}
}

func TestImpactUseCase_AnalyzeImpact(t *testing.T) {
	m := newImpactMocks()
	// Activity in FY 2023 and FY 2024; the range must cover both.
	m.ledger.Add(
		entryAt("e1", time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC), domain.SideDebit, 100),
		entryAt("e2", time.Date(2023, time.July, 1, 0, 0, 0, 0, time.UTC), domain.SideCredit, 50),
		entryAt("e3", time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), domain.SideDebit, 200),
	)

	report, err := m.usecase().AnalyzeImpact(context.Background(), impactInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.AccountName != "Acme Traders" {
		t.Errorf("expected account name, got %s", report.AccountName)
	}
	if !report.OldOpeningBalance.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("expected old balance 10000, got %s", report.OldOpeningBalance)
	}
	if report.StartingYear != 2023 {
		t.Errorf("expected starting year 2023, got %d", report.StartingYear)
	}

	if len(report.AffectedBranches) != 1 {
		t.Fatalf("expected 1 affected branch, got %d", len(report.AffectedBranches))
	}

	branch := report.AffectedBranches[0]
	if len(branch.Years) != 2 {
		t.Fatalf("expected FY 2023 and FY 2024, got %d years", len(branch.Years))
	}
	if branch.Years[0].FinancialYear != 2023 || branch.Years[0].Transactions != 2 {
		t.Errorf("expected FY 2023 with 2 transactions, got %+v", branch.Years[0])
	}
	if branch.Years[1].FinancialYear != 2024 || branch.Years[1].Transactions != 1 {
		t.Errorf("expected FY 2024 with 1 transaction, got %+v", branch.Years[1])
	}

	if report.TotalTransactions != 3 {
		t.Errorf("expected 3 total transactions, got %d", report.TotalTransactions)
	}
	if report.EstimatedSeconds != 1 {
		t.Errorf("expected estimate rounded up to 1s, got %d", report.EstimatedSeconds)
	}
}

func TestImpactUseCase_AnalyzeImpact_EstimateRoundsUp(t *testing.T) {
	m := newImpactMocks()
	m.ledger.Add(entryAt("e1", time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), domain.SideDebit, 10))
	m.ledger.CountRangeFunc = func(ctx context.Context, accountID, branchID string, from, to time.Time) (int, error) {
		return 151, nil
	}

	report, err := m.usecase().AnalyzeImpact(context.Background(), impactInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 151 per FY over FY 2023..2024 = 302 entries at 150/s.
	if report.EstimatedSeconds != 3 {
		t.Errorf("expected 3s estimate for 302 transactions, got %d", report.EstimatedSeconds)
	}
}

func TestImpactUseCase_AnalyzeImpact_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(*impactMocks)
		input     func() usecase.AnalyzeImpactInput
		wantCode  string
		wantDirty int
	}{
		{
			name:  "account not found",
			setup: func(m *impactMocks) {},
			input: func() usecase.AnalyzeImpactInput {
				in := impactInput()
				in.AccountID = "missing"
				return in
			},
			wantCode: usecase.RejectAccountNotFound,
		},
		{
			name: "dirty data blocks analysis",
			setup: func(m *impactMocks) {
				m.monthly.BranchNames[testBranchID] = "Main"
				m.monthly.Add(
					&domain.MonthlyBalance{
						CompanyID: testCompanyID, BranchID: testBranchID, AccountID: testAccountID,
						Year: 2024, Month: 6, PeriodKey: "2024-06", NeedsRecalculation: true,
					},
					&domain.MonthlyBalance{
						CompanyID: testCompanyID, BranchID: testBranchID, AccountID: testAccountID,
						Year: 2024, Month: 5, PeriodKey: "2024-05", NeedsRecalculation: true,
					},
				)
			},
			input:     impactInput,
			wantCode:  usecase.RejectDirtyData,
			wantDirty: 1,
		},
		{
			// The account row exists but its company does not: stale data
			// must surface as a company rejection, not a crash.
			name: "company not found",
			setup: func(m *impactMocks) {
				m.companies.GetByIDFunc = func(ctx context.Context, id string) (*domain.Company, error) {
					return nil, domain.ErrCompanyNotFound
				}
			},
			input:    impactInput,
			wantCode: usecase.RejectCompanyNotFound,
		},
		{
			name: "settings not found",
			setup: func(m *impactMocks) {
				m.companies.GetFYConfigFunc = func(ctx context.Context, companyID string) (*domain.FYConfig, error) {
					return nil, domain.ErrSettingsNotFound
				}
			},
			input:    impactInput,
			wantCode: usecase.RejectSettingsNotFound,
		},
		{
			name: "invalid fy format",
			setup: func(m *impactMocks) {
				m.companies.GetFYConfigFunc = func(ctx context.Context, companyID string) (*domain.FYConfig, error) {
					return &domain.FYConfig{Format: "fiscal-weirdness"}, nil
				}
			},
			input:    impactInput,
			wantCode: usecase.RejectInvalidFYConfig,
		},
		{
			name:     "no ledger activity",
			setup:    func(m *impactMocks) {},
			input:    impactInput,
			wantCode: usecase.RejectNoRecalculation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newImpactMocks()
			tt.setup(m)

			_, err := m.usecase().AnalyzeImpact(context.Background(), tt.input())

			var rejection *usecase.Rejection
			if !errors.As(err, &rejection) {
				t.Fatalf("expected a rejection, got %v", err)
			}
			if rejection.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, rejection.Code)
			}
			if tt.wantDirty > 0 {
				if len(rejection.DirtyBranches) != tt.wantDirty {
					t.Fatalf("expected %d dirty branches, got %d", tt.wantDirty, len(rejection.DirtyBranches))
				}
				months := rejection.DirtyBranches[0].DirtyMonths
				if len(months) != 2 || months[0] != "2024-05" || months[1] != "2024-06" {
					t.Errorf("expected sorted dirty months, got %v", months)
				}
			}
		})
	}
}

func TestImpactUseCase_AnalyzeImpact_InputValidation(t *testing.T) {
	m := newImpactMocks()

	in := impactInput()
	in.OpeningBalanceType = "both"
	if _, err := m.usecase().AnalyzeImpact(context.Background(), in); !errors.Is(err, domain.ErrInvalidBalanceType) {
		t.Errorf("expected ErrInvalidBalanceType, got %v", err)
	}

	in = impactInput()
	in.NewOpeningBalance = decimal.NewFromInt(-5)
	if _, err := m.usecase().AnalyzeImpact(context.Background(), in); !errors.Is(err, domain.ErrNegativeAmount) {
		t.Errorf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestImpactUseCase_AnalyzeImpact_DropsInactiveBranches(t *testing.T) {
	m := newImpactMocks()
	m.companies.Add(
		&domain.Company{ID: testCompanyID, Name: "Test Co"},
		&domain.FYConfig{Format: "april-march", StartingYear: 2023},
		&domain.Branch{ID: testBranchID, CompanyID: testCompanyID, Name: "Main"},
		&domain.Branch{ID: "branch-2", CompanyID: testCompanyID, Name: "Quiet"},
	)
	m.accounts.Add(&domain.Account{
		ID:                 testAccountID,
		CompanyID:          testCompanyID,
		Name:               "Acme Traders",
		BranchIDs:          []string{testBranchID, "branch-2"},
		OpeningBalance:     decimal.NewFromInt(10000),
		OpeningBalanceType: domain.BalanceDebit,
	})
	m.ledger.Add(entryAt("e1", time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), domain.SideDebit, 100))

	report, err := m.usecase().AnalyzeImpact(context.Background(), impactInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.AffectedBranches) != 1 || report.AffectedBranches[0].BranchID != testBranchID {
		t.Errorf("expected only the active branch, got %+v", report.AffectedBranches)
	}
}
