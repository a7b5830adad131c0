package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingAdjustment is a transaction delta that has been recorded against an
// account but not yet posted to the ledger. Until the posting path reverses
// it, the chain builder folds it into the affected year's closing balance.
type PendingAdjustment struct {
	ID              string
	AccountID       string
	BranchID        string
	VoucherType     string
	TransactionDate time.Time
	AmountDelta     decimal.Decimal
	Reversed        bool
	CreatedAt       time.Time
}

// SignPolicy maps voucher types to the side their pending deltas settle on.
// The mapping is configuration, not hard-coded posting policy.
type SignPolicy struct {
	creditVouchers map[string]bool
}

// NewSignPolicy builds a policy from the voucher types that settle on the
// credit side; every other voucher type settles on the debit side.
func NewSignPolicy(creditVouchers []string) SignPolicy {
	m := make(map[string]bool, len(creditVouchers))
	for _, v := range creditVouchers {
		m[v] = true
	}

	return SignPolicy{creditVouchers: m}
}

// DefaultSignPolicy mirrors the posting rules in production use: purchase,
// sales return and receipt vouchers settle on the credit side.
func DefaultSignPolicy() SignPolicy {
	return NewSignPolicy([]string{"purchase", "sales_return", "receipt"})
}

// SignedDelta returns the pending adjustment's signed debit-positive
// contribution under the policy.
func (p SignPolicy) SignedDelta(adj *PendingAdjustment) decimal.Decimal {
	if p.creditVouchers[adj.VoucherType] {
		return adj.AmountDelta.Neg()
	}

	return adj.AmountDelta
}
