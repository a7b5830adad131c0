package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/balancechain/internal/adapter/http/dto"
	"github.com/iho/balancechain/internal/domain"
	"github.com/iho/balancechain/internal/usecase"
)

type adjustmentServiceStub struct {
	upsertFn func(ctx context.Context, input usecase.UpsertAdjustmentInput) (*domain.YearOpeningAdjustment, error)
	cancelFn func(ctx context.Context, input usecase.CancelAdjustmentInput) (*domain.YearOpeningAdjustment, error)
}

func (s *adjustmentServiceStub) UpsertAdjustment(ctx context.Context, input usecase.UpsertAdjustmentInput) (*domain.YearOpeningAdjustment, error) {
	return s.upsertFn(ctx, input)
}

func (s *adjustmentServiceStub) CancelAdjustment(ctx context.Context, input usecase.CancelAdjustmentInput) (*domain.YearOpeningAdjustment, error) {
	return s.cancelFn(ctx, input)
}

func TestAdjustmentHandler_Upsert_Success(t *testing.T) {
	adj := &domain.YearOpeningAdjustment{
		ID:               "adj-1",
		Number:           "ADJ-001",
		EntityID:         "acc-1",
		EntityType:       domain.EntityParty,
		FinancialYear:    2025,
		AdjustmentAmount: decimal.NewFromInt(-3000),
		State:            domain.AdjustmentActive,
	}

	var captured usecase.UpsertAdjustmentInput

	handler := NewAdjustmentHandler(&adjustmentServiceStub{
		upsertFn: func(ctx context.Context, input usecase.UpsertAdjustmentInput) (*domain.YearOpeningAdjustment, error) {
			captured = input
			return adj, nil
		},
	})

	body, _ := json.Marshal(dto.UpsertAdjustmentRequest{
		CompanyID:     "comp-1",
		BranchID:      "branch-1",
		EntityID:      "acc-1",
		EntityType:    "party",
		FinancialYear: 2025,
		Amount:        "-3000",
		Reason:        "audit correction",
		UserID:        "user-1",
	})

	req := httptest.NewRequest(http.MethodPost, "/adjustments", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Upsert(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if !captured.Amount.Equal(decimal.NewFromInt(-3000)) {
		t.Fatalf("expected amount -3000, got %s", captured.Amount)
	}

	var resp dto.AdjustmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "adj-1" || resp.State != "active" {
		t.Fatalf("unexpected adjustment payload: %+v", resp)
	}
}

func TestAdjustmentHandler_Upsert_ReasonRequired(t *testing.T) {
	handler := NewAdjustmentHandler(&adjustmentServiceStub{
		upsertFn: func(ctx context.Context, input usecase.UpsertAdjustmentInput) (*domain.YearOpeningAdjustment, error) {
			return nil, usecase.ErrReasonRequired
		},
	})

	body, _ := json.Marshal(dto.UpsertAdjustmentRequest{
		CompanyID:     "comp-1",
		EntityID:      "acc-1",
		EntityType:    "party",
		FinancialYear: 2025,
		Amount:        "100",
	})

	req := httptest.NewRequest(http.MethodPost, "/adjustments", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Upsert(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAdjustmentHandler_Cancel_Success(t *testing.T) {
	adj := &domain.YearOpeningAdjustment{
		ID:           "adj-1",
		State:        domain.AdjustmentCancelled,
		CancelledBy:  "user-1",
		CancelReason: "entered twice",
	}

	var captured usecase.CancelAdjustmentInput

	handler := NewAdjustmentHandler(&adjustmentServiceStub{
		cancelFn: func(ctx context.Context, input usecase.CancelAdjustmentInput) (*domain.YearOpeningAdjustment, error) {
			captured = input
			return adj, nil
		},
	})

	body, _ := json.Marshal(dto.CancelAdjustmentRequest{
		CompanyID: "comp-1",
		BranchID:  "branch-1",
		UserID:    "user-1",
		Reason:    "entered twice",
	})

	req := httptest.NewRequest(http.MethodDelete, "/adjustments/adj-1", bytes.NewReader(body))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "adj-1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()

	handler.Cancel(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if captured.AdjustmentID != "adj-1" {
		t.Fatalf("expected adjustment ID from URL, got %s", captured.AdjustmentID)
	}

	var resp dto.AdjustmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.State != "cancelled" || resp.CancelReason != "entered twice" {
		t.Fatalf("unexpected cancellation payload: %+v", resp)
	}
}

func TestAdjustmentHandler_Cancel_AlreadyCancelled(t *testing.T) {
	handler := NewAdjustmentHandler(&adjustmentServiceStub{
		cancelFn: func(ctx context.Context, input usecase.CancelAdjustmentInput) (*domain.YearOpeningAdjustment, error) {
			return nil, domain.ErrAdjustmentCancelled
		},
	})

	body, _ := json.Marshal(dto.CancelAdjustmentRequest{UserID: "user-1", Reason: "again"})

	req := httptest.NewRequest(http.MethodDelete, "/adjustments/adj-1", bytes.NewReader(body))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "adj-1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()

	handler.Cancel(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}
