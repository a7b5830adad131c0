package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/iho/balancechain/internal/adapter/http/dto"
	"github.com/iho/balancechain/internal/domain"
	"github.com/iho/balancechain/internal/usecase"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeUseCaseError routes use case failures. A *usecase.Rejection keeps its
// structured payload; everything else is mapped to a status by error value.
func writeUseCaseError(w http.ResponseWriter, err error) {
	var rejection *usecase.Rejection
	if errors.As(err, &rejection) {
		writeJSON(w, http.StatusUnprocessableEntity, dto.RejectionFromUseCase(rejection))
		return
	}

	writeError(w, mapDomainError(err), "request failed", err.Error())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrCompanyNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSettingsNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAdjustmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOutstandingNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAdjustmentCancelled):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnsupportedEntityType):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidBalanceType):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNegativeAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidFYFormat):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrImpactRequired):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrReasonRequired):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrInvalidFinancialYear):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
