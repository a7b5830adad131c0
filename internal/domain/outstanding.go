package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OutstandingLink says what an outstanding row is derived from.
type OutstandingLink string

const (
	LinkOpeningBalance OutstandingLink = "opening_balance"
	LinkAdjustment     OutstandingLink = "year_adjustment"
)

// Outstanding is the accounts-receivable summary row owned by an external
// collaborator. The engine only re-derives its closing amount when the
// linked opening value or adjustment changes.
type Outstanding struct {
	ID                   string
	AccountID            string
	Link                 OutstandingLink
	AdjustmentID         string
	TotalAmount          decimal.Decimal
	ClosingBalanceAmount decimal.Decimal
	ClosingBalanceType   BalanceType
	UpdatedAt            time.Time
}

// ReceiptPaymentTotals are the already-applied settlements against an
// outstanding row, supplied by the transaction subsystem.
type ReceiptPaymentTotals struct {
	Receipts decimal.Decimal
	Payments decimal.Decimal
}

// Rederive recomputes the closing amount/type from a signed opening value
// net of settlements: payments increase the receivable, receipts reduce it.
func (o *Outstanding) Rederive(signedOpening decimal.Decimal, totals ReceiptPaymentTotals, at time.Time) {
	closing := signedOpening.Add(totals.Payments).Sub(totals.Receipts)

	o.ClosingBalanceAmount, o.ClosingBalanceType = Denormalize(closing)
	o.TotalAmount = signedOpening.Abs()
	o.UpdatedAt = at
}
