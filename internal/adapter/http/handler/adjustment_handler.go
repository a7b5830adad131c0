package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/balancechain/internal/adapter/http/dto"
	"github.com/iho/balancechain/internal/domain"
	"github.com/iho/balancechain/internal/usecase"
)

// AdjustmentService defines the behavior needed by AdjustmentHandler.
type AdjustmentService interface {
	UpsertAdjustment(ctx context.Context, input usecase.UpsertAdjustmentInput) (*domain.YearOpeningAdjustment, error)
	CancelAdjustment(ctx context.Context, input usecase.CancelAdjustmentInput) (*domain.YearOpeningAdjustment, error)
}

// AdjustmentHandler handles year opening adjustment requests.
type AdjustmentHandler struct {
	adjustmentUC AdjustmentService
}

// NewAdjustmentHandler creates a new AdjustmentHandler.
func NewAdjustmentHandler(adjustmentUC AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{adjustmentUC: adjustmentUC}
}

// Upsert creates or replaces the active adjustment for one financial year.
func (h *AdjustmentHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req dto.UpsertAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	adj, err := h.adjustmentUC.UpsertAdjustment(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AdjustmentFromDomain(adj))
}

// Cancel soft-cancels an adjustment. The row survives with cancellation
// metadata; the chain behaves as if the adjustment never existed.
func (h *AdjustmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing adjustment ID", "")
		return
	}

	var req dto.CancelAdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	adj, err := h.adjustmentUC.CancelAdjustment(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AdjustmentFromDomain(adj))
}
