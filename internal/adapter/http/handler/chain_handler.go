package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/balancechain/internal/domain"
	"github.com/iho/balancechain/internal/usecase"
)

// ChainService defines the behavior needed by ChainHandler.
type ChainService interface {
	GetBalanceChain(ctx context.Context, input usecase.GetBalanceChainInput) (*usecase.BalanceChain, error)
}

// ChainHandler serves the year-by-year opening balance chain.
type ChainHandler struct {
	chainUC ChainService
}

// NewChainHandler creates a new ChainHandler.
func NewChainHandler(chainUC ChainService) *ChainHandler {
	return &ChainHandler{chainUC: chainUC}
}

// Get returns one page of the entity's balance chain, newest year first.
func (h *ChainHandler) Get(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	entityID := chi.URLParam(r, "entityId")
	companyID := r.URL.Query().Get("companyId")
	branchID := r.URL.Query().Get("branchId")

	if entityID == "" {
		writeError(w, http.StatusBadRequest, "missing entity ID", "")
		return
	}

	if companyID == "" {
		writeError(w, http.StatusBadRequest, "missing companyId query parameter", "")
		return
	}

	chain, err := h.chainUC.GetBalanceChain(r.Context(), usecase.GetBalanceChainInput{
		EntityID:   entityID,
		EntityType: domain.EntityType(entityType),
		CompanyID:  companyID,
		BranchID:   branchID,
		Page:       parseIntQuery(r, "page", 1),
	})
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chain)
}
