package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyBalance is the per-(account, branch, period) aggregate. Amounts are
// stored in the signed debit-positive convention; for consecutive months of
// one (account, branch), each opening equals the previous closing.
type MonthlyBalance struct {
	ID                 string
	CompanyID          string
	BranchID           string
	AccountID          string
	Year               int
	Month              int
	PeriodKey          string
	OpeningBalance     decimal.Decimal
	TotalDebit         decimal.Decimal
	TotalCredit        decimal.Decimal
	ClosingBalance     decimal.Decimal
	TransactionCount   int
	NeedsRecalculation bool
	UpdatedAt          time.Time
}

// PeriodKeyFor formats the canonical "YYYY-MM" period key.
func PeriodKeyFor(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// CalculateClosing derives the closing balance from opening and movement.
func (m *MonthlyBalance) CalculateClosing() decimal.Decimal {
	m.ClosingBalance = m.OpeningBalance.Add(m.TotalDebit).Sub(m.TotalCredit)
	return m.ClosingBalance
}

// DirtyPeriod identifies a monthly balance flagged for recalculation.
type DirtyPeriod struct {
	BranchID   string
	BranchName string
	PeriodKey  string
}
