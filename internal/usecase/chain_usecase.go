package usecase

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/balancechain/internal/domain"
	"github.com/iho/balancechain/internal/fiscal"
)

// ChainUseCase builds the year-by-year opening balance chain for display.
// Reads are independent and idempotent; nothing here mutates state.
type ChainUseCase struct {
	accountRepo    AccountRepository
	itemRepo       ItemRepository
	companyRepo    CompanyRepository
	monthlyRepo    MonthlyBalanceRepository
	adjustmentRepo AdjustmentRepository
	pendingRepo    PendingAdjustmentRepository
	cache          Cache
	clock          Clock
	signPolicy     domain.SignPolicy
}

// NewChainUseCase creates a new ChainUseCase. cache may be nil.
func NewChainUseCase(
	accountRepo AccountRepository,
	itemRepo ItemRepository,
	companyRepo CompanyRepository,
	monthlyRepo MonthlyBalanceRepository,
	adjustmentRepo AdjustmentRepository,
	pendingRepo PendingAdjustmentRepository,
	cache Cache,
	clock Clock,
	signPolicy domain.SignPolicy,
) *ChainUseCase {
	return &ChainUseCase{
		accountRepo:    accountRepo,
		itemRepo:       itemRepo,
		companyRepo:    companyRepo,
		monthlyRepo:    monthlyRepo,
		adjustmentRepo: adjustmentRepo,
		pendingRepo:    pendingRepo,
		cache:          cache,
		clock:          clock,
		signPolicy:     signPolicy,
	}
}

// GetBalanceChainInput identifies the entity and page being read.
type GetBalanceChainInput struct {
	EntityID   string
	EntityType domain.EntityType
	CompanyID  string
	BranchID   string
	Page       int
}

// ChainYear is one financial year node of the chain.
type ChainYear struct {
	FinancialYear     int              `json:"financialYear"`
	Label             string           `json:"label"`
	Source            string           `json:"source"`
	OpeningBalance    decimal.Decimal  `json:"openingBalance"`
	Adjustment        *decimal.Decimal `json:"adjustment,omitempty"`
	EffectiveOpening  decimal.Decimal  `json:"effectiveOpening"`
	YearMovement      decimal.Decimal  `json:"yearMovement"`
	PendingAdjustment decimal.Decimal  `json:"pendingAdjustment"`
	ClosingBalance    decimal.Decimal  `json:"closingBalance"`
	IsLocked          bool             `json:"isLocked"`
	IsCurrent         bool             `json:"isCurrent"`
}

// Chain year sources.
const (
	SourceMaster       = "master"
	SourceCarryForward = "carryForward"
)

// Pagination describes one page of the descending chain view.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalYears int `json:"totalYears"`
	TotalPages int `json:"totalPages"`
}

// BalanceChain is the paginated chain, newest year first.
type BalanceChain struct {
	Years      []ChainYear `json:"years"`
	Pagination Pagination  `json:"pagination"`
}

// GetBalanceChain walks every financial year from the entity's first year to
// the current one and returns the requested page. The full prefix is always
// recomputed before slicing: each year's opening is the previous year's
// closing, so no page can be derived in isolation.
func (uc *ChainUseCase) GetBalanceChain(ctx context.Context, input GetBalanceChainInput) (*BalanceChain, error) {
	if !input.EntityType.Valid() {
		return nil, domain.ErrUnsupportedEntityType
	}

	page := input.Page
	if page < 1 {
		page = 1
	}

	cacheKey := chainCacheKey(input.EntityType, input.EntityID, input.BranchID, page)
	if uc.cache != nil {
		if raw, err := uc.cache.Get(ctx, cacheKey); err == nil {
			var cached BalanceChain
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	if _, err := uc.companyRepo.GetByID(ctx, input.CompanyID); err != nil {
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

	master, err := uc.resolveMaster(ctx, input.EntityType, input.CompanyID, input.EntityID)
	if err != nil {
		return nil, err
	}

	monthly, err := uc.monthlyRepo.ListByAccountBranch(ctx, input.CompanyID, input.BranchID, input.EntityID)
	if err != nil {
		return nil, err
	}

	adjustments, err := uc.adjustmentRepo.ListActiveByEntity(ctx, input.EntityID, input.EntityType)
	if err != nil {
		return nil, err
	}

	pending, err := uc.pendingRepo.ListActive(ctx, input.EntityID, input.BranchID)
	if err != nil {
		return nil, err
	}

	chain := uc.buildChain(cal, master, monthly, adjustments, pending)

	// Display order is newest first; the ascending pass above is what makes
	// the carry-forward openings correct.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	total := len(chain)
	totalPages := (total + chainPageSize - 1) / chainPageSize

	start := (page - 1) * chainPageSize
	if start > total {
		start = total
	}

	end := start + chainPageSize
	if end > total {
		end = total
	}

	result := &BalanceChain{
		Years: chain[start:end],
		Pagination: Pagination{
			Page:       page,
			PageSize:   chainPageSize,
			TotalYears: total,
			TotalPages: totalPages,
		},
	}

	if uc.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			_ = uc.cache.Set(ctx, cacheKey, string(raw), chainCacheTTL)
		}
	}

	return result, nil
}

// resolveMaster dispatches on the closed entity type set.
func (uc *ChainUseCase) resolveMaster(ctx context.Context, entityType domain.EntityType, companyID, entityID string) (domain.MasterOpening, error) {
	switch entityType {
	case domain.EntityParty:
		account, err := uc.accountRepo.GetByCompany(ctx, companyID, entityID)
		if err != nil {
			return domain.MasterOpening{}, err
		}

		return domain.MasterOpening{SignedBalance: account.SignedOpening(), CreatedAt: account.CreatedAt}, nil

	case domain.EntityItem:
		item, err := uc.itemRepo.GetByCompany(ctx, companyID, entityID)
		if err != nil {
			return domain.MasterOpening{}, err
		}

		return domain.MasterOpening{SignedBalance: item.SignedOpening(), CreatedAt: item.CreatedAt}, nil

	default:
		return domain.MasterOpening{}, domain.ErrUnsupportedEntityType
	}
}

func (uc *ChainUseCase) buildChain(
	cal fiscal.Calendar,
	master domain.MasterOpening,
	monthly []*domain.MonthlyBalance,
	adjustments []*domain.YearOpeningAdjustment,
	pending []*domain.PendingAdjustment,
) []ChainYear {
	adjByFY := make(map[int]decimal.Decimal, len(adjustments))
	for _, adj := range adjustments {
		adjByFY[adj.FinancialYear] = adj.EffectiveAmount()
	}

	pendingByFY := make(map[int]decimal.Decimal)
	for _, p := range pending {
		if p.Reversed {
			continue
		}

		fy := cal.YearOf(p.TransactionDate)
		pendingByFY[fy] = pendingByFY[fy].Add(uc.signPolicy.SignedDelta(p))
	}

	monthlyByFY := make(map[int][]*domain.MonthlyBalance)
	for _, mb := range monthly {
		fy := cal.YearOf(time.Date(mb.Year, time.Month(mb.Month), 1, 0, 0, 0, 0, time.UTC))
		monthlyByFY[fy] = append(monthlyByFY[fy], mb)
	}

	minYear := cal.YearOf(master.CreatedAt)
	if len(monthly) > 0 {
		first := monthly[0]
		minYear = cal.YearOf(time.Date(first.Year, time.Month(first.Month), 1, 0, 0, 0, 0, time.UTC))
	}

	currentFY := cal.YearOf(uc.clock.Now())

	maxYear := currentFY
	if minYear > maxYear {
		maxYear = minYear
	}

	chain := make([]ChainYear, 0, maxYear-minYear+1)

	for y := minYear; y <= maxYear; y++ {
		node := ChainYear{
			FinancialYear: y,
			Label:         fiscal.Label(y),
			Source:        SourceCarryForward,
			IsLocked:      y < currentFY-1,
			IsCurrent:     y == currentFY,
		}

		if y == minYear {
			node.Source = SourceMaster
			node.OpeningBalance = master.SignedBalance
		} else {
			node.OpeningBalance = chain[len(chain)-1].ClosingBalance
		}

		node.EffectiveOpening = node.OpeningBalance
		if adj, ok := adjByFY[y]; ok {
			amount := adj
			node.Adjustment = &amount
			node.EffectiveOpening = node.OpeningBalance.Add(adj)
		}

		if rows := monthlyByFY[y]; len(rows) > 0 {
			node.YearMovement = rows[len(rows)-1].ClosingBalance.Sub(rows[0].OpeningBalance)
		}

		node.PendingAdjustment = pendingByFY[y]
		node.ClosingBalance = node.EffectiveOpening.Add(node.YearMovement).Add(node.PendingAdjustment)

		chain = append(chain, node)
	}

	return chain
}

func chainCacheKey(entityType domain.EntityType, entityID, branchID string, page int) string {
	return chainCacheKeyPrefix + string(entityType) + ":" + entityID + ":" + branchID + ":" + strconv.Itoa(page)
}

// chainCachePrefix is the invalidation prefix covering every page and branch
// of one entity's chain.
func chainCachePrefix(entityType domain.EntityType, entityID string) string {
	return chainCacheKeyPrefix + string(entityType) + ":" + entityID + ":"
}
