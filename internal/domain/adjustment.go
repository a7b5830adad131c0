package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentState is the lifecycle state of a year opening adjustment.
// Cancellation is a state transition with metadata, never a row delete.
type AdjustmentState string

const (
	AdjustmentActive    AdjustmentState = "active"
	AdjustmentCancelled AdjustmentState = "cancelled"
)

// YearOpeningAdjustment is a manual, audited correction to a specific
// financial year's opening balance. At most one active row exists per
// (entity, entityType, financialYear).
type YearOpeningAdjustment struct {
	ID               string
	Number           string
	EntityID         string
	EntityType       EntityType
	FinancialYear    int
	AdjustmentAmount decimal.Decimal
	Reason           string
	CreatedBy        string
	UpdatedBy        string
	State            AdjustmentState
	CancelledAt      *time.Time
	CancelledBy      string
	CancelReason     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Cancel transitions the adjustment to the cancelled state.
func (a *YearOpeningAdjustment) Cancel(userID, reason string, at time.Time) error {
	if a.State == AdjustmentCancelled {
		return ErrAdjustmentCancelled
	}

	a.State = AdjustmentCancelled
	a.CancelledAt = &at
	a.CancelledBy = userID
	a.CancelReason = reason

	return nil
}

// EffectiveAmount is the adjustment's contribution to the chain. Cancelled
// adjustments contribute zero to every downstream consumer.
func (a *YearOpeningAdjustment) EffectiveAmount() decimal.Decimal {
	if a.State == AdjustmentCancelled {
		return decimal.Zero
	}

	return a.AdjustmentAmount
}
