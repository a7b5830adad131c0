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

type adjustmentMocks struct {
	txMgr       *mocks.MockTransactionManager
	accounts    *mocks.MockAccountRepository
	companies   *mocks.MockCompanyRepository
	monthly     *mocks.MockMonthlyBalanceRepository
	ledger      *mocks.MockLedgerEntryRepository
	adjustments *mocks.MockAdjustmentRepository
	outstanding *mocks.MockOutstandingRepository
	cache       *mocks.MockCache
}

func newAdjustmentMocks() *adjustmentMocks {
	m := &adjustmentMocks{
		txMgr:       mocks.NewMockTransactionManager(),
		accounts:    mocks.NewMockAccountRepository(),
		companies:   mocks.NewMockCompanyRepository(),
		monthly:     mocks.NewMockMonthlyBalanceRepository(),
		ledger:      mocks.NewMockLedgerEntryRepository(),
		adjustments: mocks.NewMockAdjustmentRepository(),
		outstanding: mocks.NewMockOutstandingRepository(),
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
	// One debit of 1000 in May 2024.
	may := time.Date(2024, time.May, 5, 0, 0, 0, 0, time.UTC)
	m.ledger.Add(&domain.LedgerEntry{
		ID: "e1", CompanyID: testCompanyID, BranchID: testBranchID,
		AccountID: testAccountID, TransactionDate: may,
		Side: domain.SideDebit, Amount: decimal.NewFromInt(1000), CreatedAt: may,
	})
	return m
}

func (m *adjustmentMocks) usecase() *usecase.AdjustmentUseCase {
	return usecase.NewAdjustmentUseCase(
		m.txMgr, m.accounts, m.companies, m.monthly, m.ledger,
		m.adjustments, m.outstanding, mocks.NewMockIDGenerator(), m.cache, testClock(),
	)
}

func upsertInput() usecase.UpsertAdjustmentInput {
	return usecase.UpsertAdjustmentInput{
		CompanyID:     testCompanyID,
		BranchID:      testBranchID,
		EntityID:      testAccountID,
		EntityType:    domain.EntityParty,
		FinancialYear: 2024,
		Amount:        decimal.NewFromInt(500),
		Reason:        "migration correction",
		UserID:        "user-1",
	}
}

func TestAdjustmentUseCase_UpsertAdjustment_Create(t *testing.T) {
	m := newAdjustmentMocks()

	adj, err := m.usecase().UpsertAdjustment(context.Background(), upsertInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if adj.State != domain.AdjustmentActive {
		t.Errorf("expected active state, got %s", adj.State)
	}
	if adj.Number == "" || adj.Number[:4] != "ADJ-" {
		t.Errorf("expected ADJ- number, got %q", adj.Number)
	}
	if adj.CreatedBy != "user-1" {
		t.Errorf("expected createdBy user-1, got %s", adj.CreatedBy)
	}

	// The branch replays with the adjustment folded into the seed:
	// 10000 + 500 + 1000 debit.
	rows := m.monthly.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 monthly row after replay, got %d", len(rows))
	}
	if !rows[0].OpeningBalance.Equal(decimal.NewFromInt(10500)) {
		t.Errorf("expected replayed opening 10500, got %s", rows[0].OpeningBalance)
	}
	if !rows[0].ClosingBalance.Equal(decimal.NewFromInt(11500)) {
		t.Errorf("expected replayed closing 11500, got %s", rows[0].ClosingBalance)
	}
}

func TestAdjustmentUseCase_UpsertAdjustment_UpdatesInPlace(t *testing.T) {
	m := newAdjustmentMocks()
	uc := m.usecase()

	first, err := uc.UpsertAdjustment(context.Background(), upsertInput())
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	in := upsertInput()
	in.Amount = decimal.NewFromInt(800)
	in.UserID = "user-2"
	second, err := uc.UpsertAdjustment(context.Background(), in)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	// One active row per (entity, type, fy): the second write replaces the
	// first in place.
	if second.ID != first.ID {
		t.Errorf("expected the same row, got %s and %s", first.ID, second.ID)
	}
	if !second.AdjustmentAmount.Equal(decimal.NewFromInt(800)) {
		t.Errorf("expected amount 800, got %s", second.AdjustmentAmount)
	}
	if second.UpdatedBy != "user-2" {
		t.Errorf("expected updatedBy user-2, got %s", second.UpdatedBy)
	}

	active, _ := m.adjustments.ListActiveByEntity(context.Background(), testAccountID, domain.EntityParty)
	if len(active) != 1 {
		t.Fatalf("expected 1 active adjustment, got %d", len(active))
	}

	rows := m.monthly.Rows()
	if !rows[0].OpeningBalance.Equal(decimal.NewFromInt(10800)) {
		t.Errorf("expected replayed opening 10800, got %s", rows[0].OpeningBalance)
	}
}

func TestAdjustmentUseCase_UpsertAdjustment_Validation(t *testing.T) {
	m := newAdjustmentMocks()
	uc := m.usecase()

	in := upsertInput()
	in.Reason = ""
	if _, err := uc.UpsertAdjustment(context.Background(), in); !errors.Is(err, usecase.ErrReasonRequired) {
		t.Errorf("expected ErrReasonRequired, got %v", err)
	}

	in = upsertInput()
	in.FinancialYear = 0
	if _, err := uc.UpsertAdjustment(context.Background(), in); !errors.Is(err, usecase.ErrInvalidFinancialYear) {
		t.Errorf("expected ErrInvalidFinancialYear, got %v", err)
	}

	in = upsertInput()
	in.EntityType = "warehouse"
	if _, err := uc.UpsertAdjustment(context.Background(), in); !errors.Is(err, domain.ErrUnsupportedEntityType) {
		t.Errorf("expected ErrUnsupportedEntityType, got %v", err)
	}
}

func TestAdjustmentUseCase_UpsertAdjustment_ItemSkipsReplay(t *testing.T) {
	m := newAdjustmentMocks()

	in := upsertInput()
	in.EntityID = "item-1"
	in.EntityType = domain.EntityItem

	if _, err := m.usecase().UpsertAdjustment(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(m.monthly.Rows()) != 0 {
		t.Error("item adjustments must not touch the party ledger")
	}
}

func TestAdjustmentUseCase_CancelAdjustment(t *testing.T) {
	m := newAdjustmentMocks()
	uc := m.usecase()

	adj, err := uc.UpsertAdjustment(context.Background(), upsertInput())
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	cancelled, err := uc.CancelAdjustment(context.Background(), usecase.CancelAdjustmentInput{
		CompanyID:    testCompanyID,
		BranchID:     testBranchID,
		AdjustmentID: adj.ID,
		UserID:       "user-9",
		Reason:       "entered against the wrong year",
	})
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if cancelled.State != domain.AdjustmentCancelled {
		t.Errorf("expected cancelled state, got %s", cancelled.State)
	}
	if cancelled.CancelledBy != "user-9" || cancelled.CancelledAt == nil {
		t.Errorf("expected cancellation metadata, got %+v", cancelled)
	}
	if cancelled.CancelReason != "entered against the wrong year" {
		t.Errorf("unexpected cancel reason %q", cancelled.CancelReason)
	}

	// The replay now excludes the adjustment: back to 10000 + 1000.
	rows := m.monthly.Rows()
	if !rows[0].OpeningBalance.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("expected opening restored to 10000, got %s", rows[0].OpeningBalance)
	}
	if !rows[0].ClosingBalance.Equal(decimal.NewFromInt(11000)) {
		t.Errorf("expected closing restored to 11000, got %s", rows[0].ClosingBalance)
	}

	// Cancelling twice is rejected; the row is preserved, not deleted.
	_, err = uc.CancelAdjustment(context.Background(), usecase.CancelAdjustmentInput{
		CompanyID:    testCompanyID,
		BranchID:     testBranchID,
		AdjustmentID: adj.ID,
		UserID:       "user-9",
		Reason:       "again",
	})
	if !errors.Is(err, domain.ErrAdjustmentCancelled) {
		t.Errorf("expected ErrAdjustmentCancelled, got %v", err)
	}
}

func TestAdjustmentUseCase_CancelAdjustment_Errors(t *testing.T) {
	m := newAdjustmentMocks()
	uc := m.usecase()

	_, err := uc.CancelAdjustment(context.Background(), usecase.CancelAdjustmentInput{
		CompanyID:    testCompanyID,
		AdjustmentID: "missing",
		UserID:       "user-1",
		Reason:       "cleanup",
	})
	if !errors.Is(err, domain.ErrAdjustmentNotFound) {
		t.Errorf("expected ErrAdjustmentNotFound, got %v", err)
	}

	_, err = uc.CancelAdjustment(context.Background(), usecase.CancelAdjustmentInput{
		CompanyID:    testCompanyID,
		AdjustmentID: "adj-1",
		UserID:       "user-1",
	})
	if !errors.Is(err, usecase.ErrReasonRequired) {
		t.Errorf("expected ErrReasonRequired, got %v", err)
	}
}

func TestAdjustmentUseCase_OutstandingFollowsAdjustment(t *testing.T) {
	m := newAdjustmentMocks()
	uc := m.usecase()

	adj, err := uc.UpsertAdjustment(context.Background(), upsertInput())
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	m.outstanding.LinkAdjustment(adj.ID,
		&domain.Outstanding{ID: "out-9", AccountID: testAccountID, Link: domain.LinkAdjustment, AdjustmentID: adj.ID},
		domain.ReceiptPaymentTotals{},
	)

	in := upsertInput()
	in.Amount = decimal.NewFromInt(700)
	if _, err := uc.UpsertAdjustment(context.Background(), in); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	updated := m.outstanding.Updated()
	if len(updated) != 1 {
		t.Fatalf("expected 1 outstanding update, got %d", len(updated))
	}
	if !updated[0].ClosingBalanceAmount.Equal(decimal.NewFromInt(700)) {
		t.Errorf("expected outstanding closing 700, got %s", updated[0].ClosingBalanceAmount)
	}

	// Cancellation collapses the contribution to zero.
	if _, err := uc.CancelAdjustment(context.Background(), usecase.CancelAdjustmentInput{
		CompanyID:    testCompanyID,
		BranchID:     testBranchID,
		AdjustmentID: adj.ID,
		UserID:       "user-1",
		Reason:       "cancelled",
	}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	updated = m.outstanding.Updated()
	last := updated[len(updated)-1]
	if !last.ClosingBalanceAmount.IsZero() || !last.TotalAmount.IsZero() {
		t.Errorf("expected zeroed outstanding after cancel, got %+v", last)
	}
}

func TestAdjustmentUseCase_UpsertAdjustment_InvalidatesChainCache(t *testing.T) {
	m := newAdjustmentMocks()
	m.cache.Set(context.Background(), "chain:party:"+testAccountID+":"+testBranchID+":1", "{}", time.Minute)

	if _, err := m.usecase().UpsertAdjustment(context.Background(), upsertInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.cache.Len() != 0 {
		t.Errorf("expected chain cache invalidated, got %d keys", m.cache.Len())
	}
}
