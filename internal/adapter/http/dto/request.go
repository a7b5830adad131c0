package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/balancechain/internal/domain"
	"github.com/iho/balancechain/internal/usecase"
)

// AnalyzeImpactRequest proposes a master opening-balance change for
// analysis. Amounts travel as strings so no precision is lost in transit.
type AnalyzeImpactRequest struct {
	CompanyID          string `json:"companyId"`
	AccountID          string `json:"accountId"`
	NewOpeningBalance  string `json:"newOpeningBalance"`
	OpeningBalanceType string `json:"openingBalanceType"`
}

// ToUseCaseInput converts to use case input.
func (r *AnalyzeImpactRequest) ToUseCaseInput() (usecase.AnalyzeImpactInput, error) {
	amount, err := decimal.NewFromString(r.NewOpeningBalance)
	if err != nil {
		return usecase.AnalyzeImpactInput{}, err
	}

	return usecase.AnalyzeImpactInput{
		CompanyID:          r.CompanyID,
		AccountID:          r.AccountID,
		NewOpeningBalance:  amount,
		OpeningBalanceType: domain.BalanceType(r.OpeningBalanceType),
	}, nil
}

// ExecuteRecalculationRequest confirms a change. The client echoes back the
// impact report it was shown; execution without one is refused.
type ExecuteRecalculationRequest struct {
	CompanyID          string                `json:"companyId"`
	AccountID          string                `json:"accountId"`
	NewOpeningBalance  string                `json:"newOpeningBalance"`
	OpeningBalanceType string                `json:"openingBalanceType"`
	Impact             *usecase.ImpactReport `json:"impact"`
	TriggeredBy        string                `json:"triggeredBy"`
	Reason             string                `json:"reason"`
}

// ToUseCaseInput converts to use case input.
func (r *ExecuteRecalculationRequest) ToUseCaseInput() (usecase.ExecuteRecalculationInput, error) {
	amount, err := decimal.NewFromString(r.NewOpeningBalance)
	if err != nil {
		return usecase.ExecuteRecalculationInput{}, err
	}

	return usecase.ExecuteRecalculationInput{
		CompanyID:          r.CompanyID,
		AccountID:          r.AccountID,
		NewOpeningBalance:  amount,
		OpeningBalanceType: domain.BalanceType(r.OpeningBalanceType),
		Impact:             r.Impact,
		TriggeredBy:        r.TriggeredBy,
		Reason:             r.Reason,
	}, nil
}

// UpsertAdjustmentRequest creates or replaces the active adjustment for one
// financial year. The amount is signed: negative reduces the opening.
type UpsertAdjustmentRequest struct {
	CompanyID     string `json:"companyId"`
	BranchID      string `json:"branchId"`
	EntityID      string `json:"entityId"`
	EntityType    string `json:"entityType"`
	FinancialYear int    `json:"financialYear"`
	Amount        string `json:"amount"`
	Reason        string `json:"reason"`
	UserID        string `json:"userId"`
}

// ToUseCaseInput converts to use case input.
func (r *UpsertAdjustmentRequest) ToUseCaseInput() (usecase.UpsertAdjustmentInput, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return usecase.UpsertAdjustmentInput{}, err
	}

	return usecase.UpsertAdjustmentInput{
		CompanyID:     r.CompanyID,
		BranchID:      r.BranchID,
		EntityID:      r.EntityID,
		EntityType:    domain.EntityType(r.EntityType),
		FinancialYear: r.FinancialYear,
		Amount:        amount,
		Reason:        r.Reason,
		UserID:        r.UserID,
	}, nil
}

// CancelAdjustmentRequest cancels an active adjustment. The adjustment ID
// comes from the URL.
type CancelAdjustmentRequest struct {
	CompanyID string `json:"companyId"`
	BranchID  string `json:"branchId"`
	UserID    string `json:"userId"`
	Reason    string `json:"reason"`
}

// ToUseCaseInput converts to use case input.
func (r *CancelAdjustmentRequest) ToUseCaseInput(adjustmentID string) usecase.CancelAdjustmentInput {
	return usecase.CancelAdjustmentInput{
		CompanyID:    r.CompanyID,
		BranchID:     r.BranchID,
		AdjustmentID: adjustmentID,
		UserID:       r.UserID,
		Reason:       r.Reason,
	}
}
