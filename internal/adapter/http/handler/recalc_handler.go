package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/balancechain/internal/adapter/http/dto"
	"github.com/iho/balancechain/internal/usecase"
)

// ImpactService defines the analysis behavior needed by RecalcHandler.
type ImpactService interface {
	AnalyzeImpact(ctx context.Context, input usecase.AnalyzeImpactInput) (*usecase.ImpactReport, error)
}

// RecalcService defines the execution behavior needed by RecalcHandler.
type RecalcService interface {
	ExecuteRecalculation(ctx context.Context, input usecase.ExecuteRecalculationInput) (*usecase.ExecutionSummary, error)
}

// RecalcHandler handles the two-phase opening-balance change flow:
// analyze first, then execute with the report the analysis produced.
type RecalcHandler struct {
	impactUC ImpactService
	recalcUC RecalcService
}

// NewRecalcHandler creates a new RecalcHandler.
func NewRecalcHandler(impactUC ImpactService, recalcUC RecalcService) *RecalcHandler {
	return &RecalcHandler{
		impactUC: impactUC,
		recalcUC: recalcUC,
	}
}

// Analyze reports what a proposed opening-balance change would touch.
func (h *RecalcHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req dto.AnalyzeImpactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	report, err := h.impactUC.AnalyzeImpact(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Execute applies a confirmed opening-balance change and rebuilds every
// affected branch. The body must carry the impact report from Analyze.
func (h *RecalcHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req dto.ExecuteRecalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	summary, err := h.recalcUC.ExecuteRecalculation(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
