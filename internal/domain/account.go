package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceType is the debit/credit orientation of a stored amount.
type BalanceType string

const (
	BalanceDebit  BalanceType = "dr"
	BalanceCredit BalanceType = "cr"
)

// Valid reports whether t is a known balance type.
func (t BalanceType) Valid() bool {
	return t == BalanceDebit || t == BalanceCredit
}

// Account is the account master. The opening balance fields are only ever
// written by the recalculation executor.
type Account struct {
	ID                 string
	CompanyID          string
	Name               string
	BranchIDs          []string
	OpeningBalance     decimal.Decimal
	OpeningBalanceType BalanceType
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SignedOpening returns the master opening balance in the signed
// debit-positive convention.
func (a *Account) SignedOpening() decimal.Decimal {
	return Normalize(a.OpeningBalance, a.OpeningBalanceType)
}

// Normalize converts a magnitude plus balance type into a signed amount in
// the debit-positive convention (dr = positive, cr = negative).
func Normalize(amount decimal.Decimal, t BalanceType) decimal.Decimal {
	if t == BalanceCredit {
		return amount.Abs().Neg()
	}

	return amount.Abs()
}

// Denormalize converts a signed debit-positive amount back into a magnitude
// and balance type.
func Denormalize(value decimal.Decimal) (decimal.Decimal, BalanceType) {
	if value.IsNegative() {
		return value.Abs(), BalanceCredit
	}

	return value, BalanceDebit
}
