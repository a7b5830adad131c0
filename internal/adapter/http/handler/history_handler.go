package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/balancechain/internal/adapter/http/dto"
	"github.com/iho/balancechain/internal/domain"
	"github.com/iho/balancechain/internal/usecase"
)

// HistoryService defines the behavior needed by HistoryHandler.
type HistoryService interface {
	ListHistory(ctx context.Context, input usecase.ListHistoryInput) ([]*domain.OpeningBalanceHistory, error)
}

// HistoryHandler serves the opening balance audit trail.
type HistoryHandler struct {
	historyUC HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyUC HistoryService) *HistoryHandler {
	return &HistoryHandler{historyUC: historyUC}
}

// List returns the entity's recalculation attempts, newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	entityType := chi.URLParam(r, "entityType")
	entityID := chi.URLParam(r, "entityId")

	if entityID == "" {
		writeError(w, http.StatusBadRequest, "missing entity ID", "")
		return
	}

	rows, err := h.historyUC.ListHistory(r.Context(), usecase.ListHistoryInput{
		EntityID:   entityID,
		EntityType: domain.EntityType(entityType),
		Limit:      parseIntQuery(r, "limit", 0),
		Offset:     parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.HistoriesFromDomain(rows))
}
