package domain

import "errors"

var (
	// Master lookups
	ErrAccountNotFound  = errors.New("account not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrCompanyNotFound  = errors.New("company not found")
	ErrSettingsNotFound = errors.New("company settings not found")

	// Adjustments
	ErrAdjustmentNotFound  = errors.New("adjustment not found")
	ErrAdjustmentCancelled = errors.New("adjustment is already cancelled")

	// Preconditions
	ErrUnsupportedEntityType = errors.New("unsupported entity type")
	ErrInvalidBalanceType    = errors.New("balance type must be dr or cr")
	ErrNegativeAmount        = errors.New("amount must not be negative")
	ErrInvalidFYFormat       = errors.New("unsupported financial year format")

	// Outstanding
	ErrOutstandingNotFound = errors.New("outstanding record not found")
)
