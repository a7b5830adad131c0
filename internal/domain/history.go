package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryStatus tracks whether an attempted opening-balance change landed.
type HistoryStatus string

const (
	HistoryInProgress HistoryStatus = "in_progress"
	HistoryCompleted  HistoryStatus = "completed"
	HistoryFailed     HistoryStatus = "failed"
)

// AffectedYear is the per-FY impact snapshot embedded in a history row.
type AffectedYear struct {
	FinancialYear int    `json:"financialYear"`
	Label         string `json:"label"`
	Transactions  int    `json:"transactions"`
}

// OpeningBalanceHistory is the append-only audit record of a master
// opening-balance change. Rows are never mutated except to flip Status at
// the end of an execution.
type OpeningBalanceHistory struct {
	ID                  string
	CompanyID           string
	EntityID            string
	EntityType          EntityType
	FinancialYearStart  int
	PreviousBalance     decimal.Decimal
	PreviousBalanceType BalanceType
	NewBalance          decimal.Decimal
	NewBalanceType      BalanceType
	DeltaAmount         decimal.Decimal
	AffectedYears       []AffectedYear
	TotalTransactions   int
	EstimatedSeconds    int
	Status              HistoryStatus
	ErrorMessage        string
	TriggeredBy         string
	Reason              string
	TriggeredAt         time.Time
}
