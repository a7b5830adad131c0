package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/balancechain/internal/domain"
	"github.com/iho/balancechain/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	GetByIDFunc              func(ctx context.Context, id string) (*domain.Account, error)
	GetByCompanyFunc         func(ctx context.Context, companyID, accountID string) (*domain.Account, error)
	UpdateOpeningBalanceFunc func(ctx context.Context, tx usecase.Transaction, accountID string, balance decimal.Decimal, balanceType domain.BalanceType, updatedAt time.Time) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (m *MockAccountRepository) Add(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByCompany(ctx context.Context, companyID, accountID string) (*domain.Account, error) {
	if m.GetByCompanyFunc != nil {
		return m.GetByCompanyFunc(ctx, companyID, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[accountID]; ok && acc.CompanyID == companyID {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) UpdateOpeningBalance(ctx context.Context, tx usecase.Transaction, accountID string, balance decimal.Decimal, balanceType domain.BalanceType, updatedAt time.Time) error {
	if m.UpdateOpeningBalanceFunc != nil {
		return m.UpdateOpeningBalanceFunc(ctx, tx, accountID, balance, balanceType, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if acc, ok := m.accounts[accountID]; ok {
		acc.OpeningBalance = balance
		acc.OpeningBalanceType = balanceType
		acc.UpdatedAt = updatedAt
		return nil
	}
	return domain.ErrAccountNotFound
}

// MockItemRepository is a mock implementation of ItemRepository.
type MockItemRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.Item

	GetByCompanyFunc func(ctx context.Context, companyID, itemID string) (*domain.Item, error)
}

func NewMockItemRepository() *MockItemRepository {
	return &MockItemRepository{
		items: make(map[string]*domain.Item),
	}
}

func (m *MockItemRepository) Add(item *domain.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
}

func (m *MockItemRepository) GetByCompany(ctx context.Context, companyID, itemID string) (*domain.Item, error) {
	if m.GetByCompanyFunc != nil {
		return m.GetByCompanyFunc(ctx, companyID, itemID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if item, ok := m.items[itemID]; ok && item.CompanyID == companyID {
		return item, nil
	}
	return nil, domain.ErrItemNotFound
}

// MockCompanyRepository is a mock implementation of CompanyRepository.
type MockCompanyRepository struct {
	mu        sync.RWMutex
	companies map[string]*domain.Company
	fyConfigs map[string]*domain.FYConfig
	branches  map[string][]*domain.Branch

	GetByIDFunc     func(ctx context.Context, id string) (*domain.Company, error)
	GetFYConfigFunc func(ctx context.Context, companyID string) (*domain.FYConfig, error)
	GetBranchesFunc func(ctx context.Context, companyID string, branchIDs []string) ([]*domain.Branch, error)
}

func NewMockCompanyRepository() *MockCompanyRepository {
	return &MockCompanyRepository{
		companies: make(map[string]*domain.Company),
		fyConfigs: make(map[string]*domain.FYConfig),
		branches:  make(map[string][]*domain.Branch),
	}
}

func (m *MockCompanyRepository) Add(company *domain.Company, cfg *domain.FYConfig, branches ...*domain.Branch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies[company.ID] = company
	if cfg != nil {
		m.fyConfigs[company.ID] = cfg
	}
	m.branches[company.ID] = branches
}

func (m *MockCompanyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.companies[id]; ok {
		return c, nil
	}
	return nil, domain.ErrCompanyNotFound
}

func (m *MockCompanyRepository) GetFYConfig(ctx context.Context, companyID string) (*domain.FYConfig, error) {
	if m.GetFYConfigFunc != nil {
		return m.GetFYConfigFunc(ctx, companyID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if cfg, ok := m.fyConfigs[companyID]; ok {
		return cfg, nil
	}
	return nil, domain.ErrSettingsNotFound
}

func (m *MockCompanyRepository) GetBranches(ctx context.Context, companyID string, branchIDs []string) ([]*domain.Branch, error) {
	if m.GetBranchesFunc != nil {
		return m.GetBranchesFunc(ctx, companyID, branchIDs)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[string]bool, len(branchIDs))
	for _, id := range branchIDs {
		wanted[id] = true
	}
	var out []*domain.Branch
	for _, b := range m.branches[companyID] {
		if wanted[b.ID] {
			out = append(out, b)
		}
	}
	return out, nil
}

// MockMonthlyBalanceRepository is a mock implementation of
// MonthlyBalanceRepository backed by an in-memory row set.
type MockMonthlyBalanceRepository struct {
	mu   sync.RWMutex
	rows []*domain.MonthlyBalance

	// BranchNames resolves branch display names for dirty periods.
	BranchNames map[string]string

	ListByAccountBranchFunc func(ctx context.Context, companyID, branchID, accountID string) ([]*domain.MonthlyBalance, error)
	FindDirtyFunc           func(ctx context.Context, accountID string, branchIDs []string) ([]domain.DirtyPeriod, error)
	LatestBeforeFunc        func(ctx context.Context, tx usecase.Transaction, companyID, branchID, accountID string, year, month int) (*domain.MonthlyBalance, error)
	UpsertFunc              func(ctx context.Context, tx usecase.Transaction, balance *domain.MonthlyBalance) error
}

func NewMockMonthlyBalanceRepository() *MockMonthlyBalanceRepository {
	return &MockMonthlyBalanceRepository{
		BranchNames: make(map[string]string),
	}
}

func (m *MockMonthlyBalanceRepository) Add(rows ...*domain.MonthlyBalance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, rows...)
}

// Rows returns a snapshot sorted by (branch, year, month).
func (m *MockMonthlyBalanceRepository) Rows() []*domain.MonthlyBalance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.MonthlyBalance, len(m.rows))
	copy(out, m.rows)
	sort.Slice(out, func(i, j int) bool {
		if out[i].BranchID != out[j].BranchID {
			return out[i].BranchID < out[j].BranchID
		}
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

func (m *MockMonthlyBalanceRepository) ListByAccountBranch(ctx context.Context, companyID, branchID, accountID string) ([]*domain.MonthlyBalance, error) {
	if m.ListByAccountBranchFunc != nil {
		return m.ListByAccountBranchFunc(ctx, companyID, branchID, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.MonthlyBalance
	for _, r := range m.rows {
		if r.CompanyID == companyID && r.BranchID == branchID && r.AccountID == accountID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

func (m *MockMonthlyBalanceRepository) FindDirty(ctx context.Context, accountID string, branchIDs []string) ([]domain.DirtyPeriod, error) {
	if m.FindDirtyFunc != nil {
		return m.FindDirtyFunc(ctx, accountID, branchIDs)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[string]bool, len(branchIDs))
	for _, id := range branchIDs {
		wanted[id] = true
	}
	var out []domain.DirtyPeriod
	for _, r := range m.rows {
		if r.AccountID == accountID && wanted[r.BranchID] && r.NeedsRecalculation {
			out = append(out, domain.DirtyPeriod{
				BranchID:   r.BranchID,
				BranchName: m.BranchNames[r.BranchID],
				PeriodKey:  r.PeriodKey,
			})
		}
	}
	return out, nil
}

func (m *MockMonthlyBalanceRepository) LatestBefore(ctx context.Context, tx usecase.Transaction, companyID, branchID, accountID string, year, month int) (*domain.MonthlyBalance, error) {
	if m.LatestBeforeFunc != nil {
		return m.LatestBeforeFunc(ctx, tx, companyID, branchID, accountID, year, month)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.MonthlyBalance
	cutoff := year*100 + month
	for _, r := range m.rows {
		if r.CompanyID != companyID || r.BranchID != branchID || r.AccountID != accountID {
			continue
		}
		key := r.Year*100 + r.Month
		if key >= cutoff {
			continue
		}
		if latest == nil || key > latest.Year*100+latest.Month {
			latest = r
		}
	}
	return latest, nil
}

func (m *MockMonthlyBalanceRepository) Upsert(ctx context.Context, tx usecase.Transaction, balance *domain.MonthlyBalance) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, tx, balance)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.BranchID == balance.BranchID && r.AccountID == balance.AccountID && r.Year == balance.Year && r.Month == balance.Month {
			copied := *balance
			if copied.ID == "" {
				copied.ID = r.ID
			}
			m.rows[i] = &copied
			return nil
		}
	}
	copied := *balance
	m.rows = append(m.rows, &copied)
	return nil
}

// MockLedgerEntryRepository is a mock implementation of LedgerEntryRepository
// backed by an in-memory entry set.
type MockLedgerEntryRepository struct {
	mu      sync.RWMutex
	entries []*domain.LedgerEntry

	ListRangeFunc             func(ctx context.Context, tx usecase.Transaction, accountID, branchID string, from, to time.Time) ([]*domain.LedgerEntry, error)
	CountRangeFunc            func(ctx context.Context, accountID, branchID string, from, to time.Time) (int, error)
	LatestDateFunc            func(ctx context.Context, accountID, branchID string) (*time.Time, error)
	UpdateRunningBalancesFunc func(ctx context.Context, tx usecase.Transaction, updates []usecase.RunningBalanceUpdate) (int, error)
}

func NewMockLedgerEntryRepository() *MockLedgerEntryRepository {
	return &MockLedgerEntryRepository{}
}

func (m *MockLedgerEntryRepository) Add(entries ...*domain.LedgerEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
}

// Entries returns a snapshot in replay order.
func (m *MockLedgerEntryRepository) Entries() []*domain.LedgerEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.LedgerEntry, len(m.entries))
	copy(out, m.entries)
	sortEntries(out)
	return out
}

func sortEntries(entries []*domain.LedgerEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].TransactionDate.Equal(entries[j].TransactionDate) {
			return entries[i].TransactionDate.Before(entries[j].TransactionDate)
		}
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
}

func (m *MockLedgerEntryRepository) ListRange(ctx context.Context, tx usecase.Transaction, accountID, branchID string, from, to time.Time) ([]*domain.LedgerEntry, error) {
	if m.ListRangeFunc != nil {
		return m.ListRangeFunc(ctx, tx, accountID, branchID, from, to)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.LedgerEntry
	for _, e := range m.entries {
		if e.AccountID == accountID && e.BranchID == branchID &&
			!e.TransactionDate.Before(from) && !e.TransactionDate.After(to) {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out, nil
}

func (m *MockLedgerEntryRepository) CountRange(ctx context.Context, accountID, branchID string, from, to time.Time) (int, error) {
	if m.CountRangeFunc != nil {
		return m.CountRangeFunc(ctx, accountID, branchID, from, to)
	}
	entries, _ := m.ListRange(ctx, nil, accountID, branchID, from, to)
	return len(entries), nil
}

func (m *MockLedgerEntryRepository) LatestDate(ctx context.Context, accountID, branchID string) (*time.Time, error) {
	if m.LatestDateFunc != nil {
		return m.LatestDateFunc(ctx, accountID, branchID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *time.Time
	for _, e := range m.entries {
		if e.AccountID != accountID || e.BranchID != branchID {
			continue
		}
		if latest == nil || e.TransactionDate.After(*latest) {
			d := e.TransactionDate
			latest = &d
		}
	}
	return latest, nil
}

func (m *MockLedgerEntryRepository) UpdateRunningBalances(ctx context.Context, tx usecase.Transaction, updates []usecase.RunningBalanceUpdate) (int, error) {
	if m.UpdateRunningBalancesFunc != nil {
		return m.UpdateRunningBalancesFunc(ctx, tx, updates)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	byID := make(map[string]*domain.LedgerEntry, len(m.entries))
	for _, e := range m.entries {
		byID[e.ID] = e
	}
	updated := 0
	for _, u := range updates {
		if e, ok := byID[u.EntryID]; ok {
			e.RunningBalance = u.RunningBalance
			updated++
		}
	}
	return updated, nil
}

// MockAdjustmentRepository is a mock implementation of AdjustmentRepository.
type MockAdjustmentRepository struct {
	mu          sync.RWMutex
	adjustments map[string]*domain.YearOpeningAdjustment

	GetByIDFunc            func(ctx context.Context, id string) (*domain.YearOpeningAdjustment, error)
	GetActiveFunc          func(ctx context.Context, tx usecase.Transaction, entityID string, entityType domain.EntityType, financialYear int) (*domain.YearOpeningAdjustment, error)
	ListActiveByEntityFunc func(ctx context.Context, entityID string, entityType domain.EntityType) ([]*domain.YearOpeningAdjustment, error)
	CreateFunc             func(ctx context.Context, tx usecase.Transaction, adj *domain.YearOpeningAdjustment) error
	UpdateFunc             func(ctx context.Context, tx usecase.Transaction, adj *domain.YearOpeningAdjustment) error
}

func NewMockAdjustmentRepository() *MockAdjustmentRepository {
	return &MockAdjustmentRepository{
		adjustments: make(map[string]*domain.YearOpeningAdjustment),
	}
}

func (m *MockAdjustmentRepository) Add(adj *domain.YearOpeningAdjustment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjustments[adj.ID] = adj
}

func (m *MockAdjustmentRepository) GetByID(ctx context.Context, id string) (*domain.YearOpeningAdjustment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if adj, ok := m.adjustments[id]; ok {
		return adj, nil
	}
	return nil, domain.ErrAdjustmentNotFound
}

func (m *MockAdjustmentRepository) GetActive(ctx context.Context, tx usecase.Transaction, entityID string, entityType domain.EntityType, financialYear int) (*domain.YearOpeningAdjustment, error) {
	if m.GetActiveFunc != nil {
		return m.GetActiveFunc(ctx, tx, entityID, entityType, financialYear)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, adj := range m.adjustments {
		if adj.EntityID == entityID && adj.EntityType == entityType &&
			adj.FinancialYear == financialYear && adj.State == domain.AdjustmentActive {
			return adj, nil
		}
	}
	return nil, nil
}

func (m *MockAdjustmentRepository) ListActiveByEntity(ctx context.Context, entityID string, entityType domain.EntityType) ([]*domain.YearOpeningAdjustment, error) {
	if m.ListActiveByEntityFunc != nil {
		return m.ListActiveByEntityFunc(ctx, entityID, entityType)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.YearOpeningAdjustment
	for _, adj := range m.adjustments {
		if adj.EntityID == entityID && adj.EntityType == entityType && adj.State == domain.AdjustmentActive {
			out = append(out, adj)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FinancialYear < out[j].FinancialYear })
	return out, nil
}

func (m *MockAdjustmentRepository) Create(ctx context.Context, tx usecase.Transaction, adj *domain.YearOpeningAdjustment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, adj)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjustments[adj.ID] = adj
	return nil
}

func (m *MockAdjustmentRepository) Update(ctx context.Context, tx usecase.Transaction, adj *domain.YearOpeningAdjustment) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, adj)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjustments[adj.ID] = adj
	return nil
}

// MockPendingAdjustmentRepository is a mock implementation of
// PendingAdjustmentRepository.
type MockPendingAdjustmentRepository struct {
	mu      sync.RWMutex
	pending []*domain.PendingAdjustment

	ListActiveFunc func(ctx context.Context, accountID, branchID string) ([]*domain.PendingAdjustment, error)
}

func NewMockPendingAdjustmentRepository() *MockPendingAdjustmentRepository {
	return &MockPendingAdjustmentRepository{}
}

func (m *MockPendingAdjustmentRepository) Add(pending ...*domain.PendingAdjustment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, pending...)
}

func (m *MockPendingAdjustmentRepository) ListActive(ctx context.Context, accountID, branchID string) ([]*domain.PendingAdjustment, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, accountID, branchID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.PendingAdjustment
	for _, p := range m.pending {
		if p.AccountID == accountID && p.BranchID == branchID {
			out = append(out, p)
		}
	}
	return out, nil
}

// MockHistoryRepository is a mock implementation of HistoryRepository.
type MockHistoryRepository struct {
	mu   sync.RWMutex
	rows []*domain.OpeningBalanceHistory

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, history *domain.OpeningBalanceHistory) error
	CreateStandaloneFunc func(ctx context.Context, history *domain.OpeningBalanceHistory) error
	UpdateStatusFunc     func(ctx context.Context, tx usecase.Transaction, id string, status domain.HistoryStatus, errorMessage string) error
	ListByEntityFunc     func(ctx context.Context, entityID string, entityType domain.EntityType, limit, offset int) ([]*domain.OpeningBalanceHistory, error)
}

func NewMockHistoryRepository() *MockHistoryRepository {
	return &MockHistoryRepository{}
}

// Rows returns a snapshot in insertion order.
func (m *MockHistoryRepository) Rows() []*domain.OpeningBalanceHistory {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OpeningBalanceHistory, len(m.rows))
	copy(out, m.rows)
	return out
}

func (m *MockHistoryRepository) Create(ctx context.Context, tx usecase.Transaction, history *domain.OpeningBalanceHistory) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, history)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, history)
	return nil
}

func (m *MockHistoryRepository) CreateStandalone(ctx context.Context, history *domain.OpeningBalanceHistory) error {
	if m.CreateStandaloneFunc != nil {
		return m.CreateStandaloneFunc(ctx, history)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, history)
	return nil
}

func (m *MockHistoryRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.HistoryStatus, errorMessage string) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, errorMessage)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.rows {
		if h.ID == id {
			h.Status = status
			h.ErrorMessage = errorMessage
			return nil
		}
	}
	return fmt.Errorf("history %s not found", id)
}

func (m *MockHistoryRepository) ListByEntity(ctx context.Context, entityID string, entityType domain.EntityType, limit, offset int) ([]*domain.OpeningBalanceHistory, error) {
	if m.ListByEntityFunc != nil {
		return m.ListByEntityFunc(ctx, entityID, entityType, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []*domain.OpeningBalanceHistory
	for _, h := range m.rows {
		if h.EntityID == entityID && h.EntityType == entityType {
			all = append(all, h)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].TriggeredAt.After(all[j].TriggeredAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// MockOutstandingRepository is a mock implementation of OutstandingRepository.
type MockOutstandingRepository struct {
	mu             sync.RWMutex
	byOpening    map[string]*domain.Outstanding
	byAdjustment map[string]*domain.Outstanding
	totals       map[string]domain.ReceiptPaymentTotals
	updated      []*domain.Outstanding

	GetByOpeningBalanceFunc  func(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.Outstanding, error)
	GetByAdjustmentFunc      func(ctx context.Context, tx usecase.Transaction, adjustmentID string) (*domain.Outstanding, error)
	ReceiptPaymentTotalsFunc func(ctx context.Context, tx usecase.Transaction, outstandingID string) (domain.ReceiptPaymentTotals, error)
	UpdateFunc               func(ctx context.Context, tx usecase.Transaction, outstanding *domain.Outstanding) error
}

func NewMockOutstandingRepository() *MockOutstandingRepository {
	return &MockOutstandingRepository{
		byOpening:    make(map[string]*domain.Outstanding),
		byAdjustment: make(map[string]*domain.Outstanding),
		totals:       make(map[string]domain.ReceiptPaymentTotals),
	}
}

func (m *MockOutstandingRepository) LinkOpening(accountID string, outstanding *domain.Outstanding, totals domain.ReceiptPaymentTotals) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byOpening[accountID] = outstanding
	m.totals[outstanding.ID] = totals
}

func (m *MockOutstandingRepository) LinkAdjustment(adjustmentID string, outstanding *domain.Outstanding, totals domain.ReceiptPaymentTotals) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byAdjustment[adjustmentID] = outstanding
	m.totals[outstanding.ID] = totals
}

// Updated returns the rows written through Update, in order.
func (m *MockOutstandingRepository) Updated() []*domain.Outstanding {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Outstanding, len(m.updated))
	copy(out, m.updated)
	return out
}

func (m *MockOutstandingRepository) GetByOpeningBalance(ctx context.Context, tx usecase.Transaction, accountID string) (*domain.Outstanding, error) {
	if m.GetByOpeningBalanceFunc != nil {
		return m.GetByOpeningBalanceFunc(ctx, tx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byOpening[accountID], nil
}

func (m *MockOutstandingRepository) GetByAdjustment(ctx context.Context, tx usecase.Transaction, adjustmentID string) (*domain.Outstanding, error) {
	if m.GetByAdjustmentFunc != nil {
		return m.GetByAdjustmentFunc(ctx, tx, adjustmentID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byAdjustment[adjustmentID], nil
}

func (m *MockOutstandingRepository) ReceiptPaymentTotals(ctx context.Context, tx usecase.Transaction, outstandingID string) (domain.ReceiptPaymentTotals, error) {
	if m.ReceiptPaymentTotalsFunc != nil {
		return m.ReceiptPaymentTotalsFunc(ctx, tx, outstandingID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.totals[outstandingID], nil
}

func (m *MockOutstandingRepository) Update(ctx context.Context, tx usecase.Transaction, outstanding *domain.Outstanding) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, outstanding)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, outstanding)
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%d", m.counter)
}

// MockClock is a mock implementation of Clock.
type MockClock struct {
	NowFunc func() time.Time
	Time    time.Time
}

func (m *MockClock) Now() time.Time {
	if m.NowFunc != nil {
		return m.NowFunc()
	}
	if !m.Time.IsZero() {
		return m.Time
	}
	return time.Now().UTC()
}

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu   sync.RWMutex
	data map[string]string

	GetFunc          func(ctx context.Context, key string) (string, error)
	SetFunc          func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc       func(ctx context.Context, key string) error
	DeletePrefixFunc func(ctx context.Context, prefix string) error
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string]string),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("cache miss: %s", key)
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCache) DeletePrefix(ctx context.Context, prefix string) error {
	if m.DeletePrefixFunc != nil {
		return m.DeletePrefixFunc(ctx, prefix)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

// Len returns the number of cached keys.
func (m *MockCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
