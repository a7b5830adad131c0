package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/iho/balancechain/internal/domain"
	"github.com/iho/balancechain/internal/usecase"
	"github.com/iho/balancechain/internal/usecase/mocks"
)

type recalcMocks struct {
	txMgr       *mocks.MockTransactionManager
	accounts    *mocks.MockAccountRepository
	companies   *mocks.MockCompanyRepository
	monthly     *mocks.MockMonthlyBalanceRepository
	ledger      *mocks.MockLedgerEntryRepository
	outstanding *mocks.MockOutstandingRepository
	history     *mocks.MockHistoryRepository
	cache       *mocks.MockCache
}

func newRecalcMocks() *recalcMocks {
	m := &recalcMocks{
		txMgr:       mocks.NewMockTransactionManager(),
		accounts:    mocks.NewMockAccountRepository(),
		companies:   mocks.NewMockCompanyRepository(),
		monthly:     mocks.NewMockMonthlyBalanceRepository(),
		ledger:      mocks.NewMockLedgerEntryRepository(),
		outstanding: mocks.NewMockOutstandingRepository(),
		history:     mocks.NewMockHistoryRepository(),
		cache:       mocks.NewMockCache(),
	}
	m.companies.Add(
		&domain.Company{ID: testCompanyID, Name: "Test Co"},
		&domain.FYConfig{Format: "april-march", StartingYear: 2024},
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

func (m *recalcMocks) usecase() *usecase.RecalcUseCase {
	return usecase.NewRecalcUseCase(
		m.txMgr, m.accounts, m.companies, m.monthly, m.ledger,
		m.outstanding, m.history, mocks.NewMockIDGenerator(), m.cache, testClock(), nil,
	)
}

// seedLedger posts 20 debits of 10 in May and 20 credits of 5 in June 2024.
func (m *recalcMocks) seedLedger() {
	for i := 0; i < 20; i++ {
		date := time.Date(2024, time.May, 1+i, 0, 0, 0, 0, time.UTC)
		m.ledger.Add(&domain.LedgerEntry{
			ID: "may-" + string(rune('a'+i)), CompanyID: testCompanyID,
			BranchID: testBranchID, AccountID: testAccountID,
			TransactionDate: date, Side: domain.SideDebit,
			Amount: decimal.NewFromInt(10), CreatedAt: date,
		})
	}
	for i := 0; i < 20; i++ {
		date := time.Date(2024, time.June, 1+i, 0, 0, 0, 0, time.UTC)
		m.ledger.Add(&domain.LedgerEntry{
			ID: "jun-" + string(rune('a'+i)), CompanyID: testCompanyID,
			BranchID: testBranchID, AccountID: testAccountID,
			TransactionDate: date, Side: domain.SideCredit,
			Amount: decimal.NewFromInt(5), CreatedAt: date,
		})
	}
}

func testImpact(years ...int) *usecase.ImpactReport {
	branch := usecase.BranchImpact{BranchID: testBranchID, BranchName: "Main"}
	for _, y := range years {
		branch.Years = append(branch.Years, domain.AffectedYear{FinancialYear: y, Transactions: 20})
		branch.TransactionCount += 20
	}
	return &usecase.ImpactReport{
		AccountID:        testAccountID,
		StartingYear:     2024,
		AffectedBranches: []usecase.BranchImpact{branch},
	}
}

func executeInput(impact *usecase.ImpactReport) usecase.ExecuteRecalculationInput {
	return usecase.ExecuteRecalculationInput{
		CompanyID:          testCompanyID,
		AccountID:          testAccountID,
		NewOpeningBalance:  decimal.NewFromInt(2000),
		OpeningBalanceType: domain.BalanceDebit,
		Impact:             impact,
		TriggeredBy:        "user-1",
		Reason:             "opening balance correction",
	}
}

func TestRecalcUseCase_ExecuteRecalculation(t *testing.T) {
	m := newRecalcMocks()
	m.seedLedger()

	summary, err := m.usecase().ExecuteRecalculation(context.Background(), executeInput(testImpact(2024)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.TotalTransactionsUpdated != 40 {
		t.Errorf("expected 40 transactions updated, got %d", summary.TotalTransactionsUpdated)
	}
	if summary.TotalMonthlyBalancesUpdated != 2 {
		t.Errorf("expected 2 monthly balances updated, got %d", summary.TotalMonthlyBalancesUpdated)
	}
	if !summary.OldOpeningBalance.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("expected old balance 10000, got %s", summary.OldOpeningBalance)
	}

	// Master opening updated.
	account, _ := m.accounts.GetByID(context.Background(), testAccountID)
	if !account.OpeningBalance.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("expected master opening 2000, got %s", account.OpeningBalance)
	}

	// Every running balance re-seeded from 2000: May climbs by 10s to 2200,
	// June falls by 5s to 2100.
	entries := m.ledger.Entries()
	if !entries[0].RunningBalance.Equal(decimal.NewFromInt(2010)) {
		t.Errorf("expected first running balance 2010, got %s", entries[0].RunningBalance)
	}
	if !entries[19].RunningBalance.Equal(decimal.NewFromInt(2200)) {
		t.Errorf("expected May closing running balance 2200, got %s", entries[19].RunningBalance)
	}
	if !entries[39].RunningBalance.Equal(decimal.NewFromInt(2100)) {
		t.Errorf("expected final running balance 2100, got %s", entries[39].RunningBalance)
	}

	// Monthly rows chain: June opens on May's close.
	rows := m.monthly.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 monthly rows, got %d", len(rows))
	}
	may, june := rows[0], rows[1]
	if !may.OpeningBalance.Equal(decimal.NewFromInt(2000)) || !may.ClosingBalance.Equal(decimal.NewFromInt(2200)) {
		t.Errorf("expected May 2000 -> 2200, got %s -> %s", may.OpeningBalance, may.ClosingBalance)
	}
	if !may.TotalDebit.Equal(decimal.NewFromInt(200)) || may.TransactionCount != 20 {
		t.Errorf("unexpected May aggregates: %+v", may)
	}
	if !june.OpeningBalance.Equal(may.ClosingBalance) {
		t.Errorf("expected June opening to equal May closing, got %s vs %s", june.OpeningBalance, may.ClosingBalance)
	}
	if !june.ClosingBalance.Equal(decimal.NewFromInt(2100)) {
		t.Errorf("expected June closing 2100, got %s", june.ClosingBalance)
	}
	if may.NeedsRecalculation || june.NeedsRecalculation {
		t.Error("expected dirty flags cleared")
	}

	// One completed history row with the signed delta.
	histories := m.history.Rows()
	if len(histories) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(histories))
	}
	h := histories[0]
	if h.Status != domain.HistoryCompleted {
		t.Errorf("expected completed history, got %s", h.Status)
	}
	if !h.DeltaAmount.Equal(decimal.NewFromInt(-8000)) {
		t.Errorf("expected delta -8000, got %s", h.DeltaAmount)
	}
	if h.TriggeredBy != "user-1" {
		t.Errorf("expected triggeredBy user-1, got %s", h.TriggeredBy)
	}
}

func TestRecalcUseCase_ExecuteRecalculation_Idempotent(t *testing.T) {
	m := newRecalcMocks()
	m.seedLedger()
	uc := m.usecase()

	if _, err := uc.ExecuteRecalculation(context.Background(), executeInput(testImpact(2024))); err != nil {
		t.Fatalf("first run: %v", err)
	}
	firstRows := m.monthly.Rows()

	summary, err := uc.ExecuteRecalculation(context.Background(), executeInput(testImpact(2024)))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if summary.TotalTransactionsUpdated != 40 {
		t.Errorf("expected full rewrite on rerun, got %d", summary.TotalTransactionsUpdated)
	}

	secondRows := m.monthly.Rows()
	if len(secondRows) != len(firstRows) {
		t.Fatalf("rerun changed the monthly row count: %d vs %d", len(secondRows), len(firstRows))
	}
	for i := range firstRows {
		if !firstRows[i].ClosingBalance.Equal(secondRows[i].ClosingBalance) ||
			!firstRows[i].OpeningBalance.Equal(secondRows[i].OpeningBalance) {
			t.Errorf("rerun changed row %d: %+v vs %+v", i, firstRows[i], secondRows[i])
		}
	}
}

func TestRecalcUseCase_ExecuteRecalculation_RederivesOutstanding(t *testing.T) {
	m := newRecalcMocks()
	m.seedLedger()
	m.outstanding.LinkOpening(testAccountID,
		&domain.Outstanding{ID: "out-1", AccountID: testAccountID, Link: domain.LinkOpeningBalance},
		domain.ReceiptPaymentTotals{Receipts: decimal.NewFromInt(100), Payments: decimal.NewFromInt(300)},
	)

	if _, err := m.usecase().ExecuteRecalculation(context.Background(), executeInput(testImpact(2024))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated := m.outstanding.Updated()
	if len(updated) != 1 {
		t.Fatalf("expected 1 outstanding update, got %d", len(updated))
	}
	// 2000 + 300 payments - 100 receipts.
	if !updated[0].ClosingBalanceAmount.Equal(decimal.NewFromInt(2200)) || updated[0].ClosingBalanceType != domain.BalanceDebit {
		t.Errorf("expected closing 2200 dr, got %s %s", updated[0].ClosingBalanceAmount, updated[0].ClosingBalanceType)
	}
	if !updated[0].TotalAmount.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("expected total 2000, got %s", updated[0].TotalAmount)
	}
}

func TestRecalcUseCase_ExecuteRecalculation_InvalidatesChainCache(t *testing.T) {
	m := newRecalcMocks()
	m.seedLedger()
	m.cache.Set(context.Background(), "chain:party:"+testAccountID+":"+testBranchID+":1", "{}", time.Minute)
	m.cache.Set(context.Background(), "chain:party:other:branch:1", "{}", time.Minute)

	if _, err := m.usecase().ExecuteRecalculation(context.Background(), executeInput(testImpact(2024))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.cache.Len() != 1 {
		t.Errorf("expected only the other entity's cache to survive, got %d keys", m.cache.Len())
	}
}

func TestRecalcUseCase_ExecuteRecalculation_FailureRollsBack(t *testing.T) {
	m := newRecalcMocks()
	m.seedLedger()

	var tx *mocks.MockTransaction
	m.txMgr.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) {
		tx = &mocks.MockTransaction{}
		return tx, nil
	}
	m.monthly.UpsertFunc = func(ctx context.Context, _ usecase.Transaction, balance *domain.MonthlyBalance) error {
		return errors.New("disk full")
	}

	_, err := m.usecase().ExecuteRecalculation(context.Background(), executeInput(testImpact(2024)))
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if tx == nil || tx.Committed || !tx.RolledBack {
		t.Error("expected the transaction to roll back")
	}

	// The failed attempt is still recorded, outside the rolled-back unit.
	histories := m.history.Rows()
	if len(histories) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(histories))
	}
	if histories[0].Status != domain.HistoryFailed {
		t.Errorf("expected failed history, got %s", histories[0].Status)
	}
	if histories[0].ErrorMessage == "" {
		t.Error("expected an error message on the failed history row")
	}
}

func TestRecalcUseCase_ExecuteRecalculation_NoAutomaticRetry(t *testing.T) {
	m := newRecalcMocks()
	m.seedLedger()

	begins := 0
	m.txMgr.BeginFunc = func(ctx context.Context) (usecase.Transaction, error) {
		begins++
		return &mocks.MockTransaction{}, nil
	}
	m.monthly.UpsertFunc = func(ctx context.Context, _ usecase.Transaction, _ *domain.MonthlyBalance) error {
		return &pgconn.PgError{Code: "40P01", Message: "deadlock detected"}
	}

	_, err := m.usecase().ExecuteRecalculation(context.Background(), executeInput(testImpact(2024)))

	// Even a deadlock surfaces unchanged; the caller decides whether to
	// resubmit.
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "40P01" {
		t.Fatalf("expected the deadlock error to surface, got %v", err)
	}
	if begins != 1 {
		t.Fatalf("expected exactly one attempt per submission, got %d", begins)
	}

	histories := m.history.Rows()
	if len(histories) != 1 || histories[0].Status != domain.HistoryFailed {
		t.Fatalf("expected one failed history row, got %d rows", len(histories))
	}
}

func TestRecalcUseCase_ExecuteRecalculation_AffectedYearsSorted(t *testing.T) {
	m := newRecalcMocks()
	m.seedLedger()

	late := usecase.BranchImpact{
		BranchID: testBranchID, BranchName: "Main",
		Years: []domain.AffectedYear{{FinancialYear: 2024, Transactions: 40}},
	}
	early := usecase.BranchImpact{
		BranchID: "branch-2", BranchName: "North",
		Years: []domain.AffectedYear{{FinancialYear: 2023}, {FinancialYear: 2024}},
	}
	impact := &usecase.ImpactReport{
		AccountID:        testAccountID,
		StartingYear:     2023,
		AffectedBranches: []usecase.BranchImpact{late, early},
	}

	if _, err := m.usecase().ExecuteRecalculation(context.Background(), executeInput(impact)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h := m.history.Rows()[0]
	years := make([]int, 0, len(h.AffectedYears))
	for _, y := range h.AffectedYears {
		years = append(years, y.FinancialYear)
	}
	if len(years) != 2 || years[0] != 2023 || years[1] != 2024 {
		t.Fatalf("expected ascending affected years [2023 2024], got %v", years)
	}
	if h.AffectedYears[1].Transactions != 40 {
		t.Errorf("expected merged 2024 count 40, got %d", h.AffectedYears[1].Transactions)
	}
}

func TestRecalcUseCase_ExecuteRecalculation_InputValidation(t *testing.T) {
	m := newRecalcMocks()
	uc := m.usecase()

	in := executeInput(nil)
	if _, err := uc.ExecuteRecalculation(context.Background(), in); !errors.Is(err, usecase.ErrImpactRequired) {
		t.Errorf("expected ErrImpactRequired, got %v", err)
	}

	in = executeInput(testImpact(2024))
	in.OpeningBalanceType = "xx"
	if _, err := uc.ExecuteRecalculation(context.Background(), in); !errors.Is(err, domain.ErrInvalidBalanceType) {
		t.Errorf("expected ErrInvalidBalanceType, got %v", err)
	}

	in = executeInput(testImpact(2024))
	in.NewOpeningBalance = decimal.NewFromInt(-1)
	if _, err := uc.ExecuteRecalculation(context.Background(), in); !errors.Is(err, domain.ErrNegativeAmount) {
		t.Errorf("expected ErrNegativeAmount, got %v", err)
	}

	in = executeInput(testImpact(2024))
	in.AccountID = "missing"
	if _, err := uc.ExecuteRecalculation(context.Background(), in); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
	if len(m.history.Rows()) != 0 {
		t.Error("validation failures must not write history rows")
	}
}
