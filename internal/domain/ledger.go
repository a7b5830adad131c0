package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntrySide is the side a ledger entry posts to.
type EntrySide string

const (
	SideDebit  EntrySide = "debit"
	SideCredit EntrySide = "credit"
)

// Valid reports whether s is a known entry side.
func (s EntrySide) Valid() bool {
	return s == SideDebit || s == SideCredit
}

// LedgerEntry is one posted transaction effect on an account. RunningBalance
// is the signed debit-positive cumulative balance immediately after this
// entry in (TransactionDate, CreatedAt, ID) order. It is written by the
// posting subsystem and rewritten only by the recalculation executor.
type LedgerEntry struct {
	ID              string
	CompanyID       string
	BranchID        string
	AccountID       string
	TransactionDate time.Time
	Side            EntrySide
	Amount          decimal.Decimal
	RunningBalance  decimal.Decimal
	VoucherType     string
	CreatedAt       time.Time
}

// SignedEffect returns the entry's contribution to a signed debit-positive
// running balance: debits add, credits subtract.
func (e *LedgerEntry) SignedEffect() decimal.Decimal {
	if e.Side == SideCredit {
		return e.Amount.Neg()
	}

	return e.Amount
}
