package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/balancechain/internal/domain"
	"github.com/iho/balancechain/internal/usecase"
)

// AdjustmentResponse represents a year opening adjustment in API responses.
type AdjustmentResponse struct {
	ID            string          `json:"id"`
	Number        string          `json:"number"`
	EntityID      string          `json:"entityId"`
	EntityType    string          `json:"entityType"`
	FinancialYear int             `json:"financialYear"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
	State         string          `json:"state"`
	CreatedBy     string          `json:"createdBy"`
	UpdatedBy     string          `json:"updatedBy,omitempty"`
	CancelledAt   *time.Time      `json:"cancelledAt,omitempty"`
	CancelledBy   string          `json:"cancelledBy,omitempty"`
	CancelReason  string          `json:"cancelReason,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// AdjustmentFromDomain converts a domain adjustment to a response.
func AdjustmentFromDomain(a *domain.YearOpeningAdjustment) *AdjustmentResponse {
	return &AdjustmentResponse{
		ID:            a.ID,
		Number:        a.Number,
		EntityID:      a.EntityID,
		EntityType:    string(a.EntityType),
		FinancialYear: a.FinancialYear,
		Amount:        a.AdjustmentAmount,
		Reason:        a.Reason,
		State:         string(a.State),
		CreatedBy:     a.CreatedBy,
		UpdatedBy:     a.UpdatedBy,
		CancelledAt:   a.CancelledAt,
		CancelledBy:   a.CancelledBy,
		CancelReason:  a.CancelReason,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// HistoryResponse represents one audit trail row in API responses.
type HistoryResponse struct {
	ID                  string                `json:"id"`
	EntityID            string                `json:"entityId"`
	EntityType          string                `json:"entityType"`
	FinancialYearStart  int                   `json:"financialYearStart"`
	PreviousBalance     decimal.Decimal       `json:"previousBalance"`
	PreviousBalanceType string                `json:"previousBalanceType"`
	NewBalance          decimal.Decimal       `json:"newBalance"`
	NewBalanceType      string                `json:"newBalanceType"`
	DeltaAmount         decimal.Decimal       `json:"deltaAmount"`
	AffectedYears       []domain.AffectedYear `json:"affectedYears"`
	TotalTransactions   int                   `json:"totalTransactions"`
	Status              string                `json:"status"`
	ErrorMessage        string                `json:"errorMessage,omitempty"`
	TriggeredBy         string                `json:"triggeredBy"`
	Reason              string                `json:"reason,omitempty"`
	TriggeredAt         time.Time             `json:"triggeredAt"`
}

// HistoryFromDomain converts a domain history row to a response.
func HistoryFromDomain(h *domain.OpeningBalanceHistory) *HistoryResponse {
	return &HistoryResponse{
		ID:                  h.ID,
		EntityID:            h.EntityID,
		EntityType:          string(h.EntityType),
		FinancialYearStart:  h.FinancialYearStart,
		PreviousBalance:     h.PreviousBalance,
		PreviousBalanceType: string(h.PreviousBalanceType),
		NewBalance:          h.NewBalance,
		NewBalanceType:      string(h.NewBalanceType),
		DeltaAmount:         h.DeltaAmount,
		AffectedYears:       h.AffectedYears,
		TotalTransactions:   h.TotalTransactions,
		Status:              string(h.Status),
		ErrorMessage:        h.ErrorMessage,
		TriggeredBy:         h.TriggeredBy,
		Reason:              h.Reason,
		TriggeredAt:         h.TriggeredAt,
	}
}

// HistoriesFromDomain converts domain history rows to responses.
func HistoriesFromDomain(rows []*domain.OpeningBalanceHistory) []*HistoryResponse {
	result := make([]*HistoryResponse, len(rows))
	for i, h := range rows {
		result[i] = HistoryFromDomain(h)
	}
	return result
}

// RejectionResponse is the structured body of a refused impact analysis.
type RejectionResponse struct {
	Error         string                `json:"error"`
	Code          string                `json:"code"`
	Message       string                `json:"message"`
	DirtyBranches []usecase.DirtyBranch `json:"dirtyBranches,omitempty"`
}

// RejectionFromUseCase converts a use case rejection to a response.
func RejectionFromUseCase(rej *usecase.Rejection) *RejectionResponse {
	return &RejectionResponse{
		Error:         "precondition failed",
		Code:          rej.Code,
		Message:       rej.Message,
		DirtyBranches: rej.DirtyBranches,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
