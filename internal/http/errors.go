package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_storefront/internal/auth"
	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/sheets"
	"github.com/fjod/go_storefront/pkg/logger"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError maps domain errors to HTTP statuses.
func handleError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var (
		ve  *domain.ValidationError
		rse *sheets.RemoteStoreError
	)

	switch {
	case errors.Is(err, sheets.ErrAuthRequired):
		respondError(w, http.StatusUnauthorized, "auth_required", err.Error())
	case errors.Is(err, sheets.ErrNotConfigured), errors.Is(err, auth.ErrNotConfigured):
		respondError(w, http.StatusPreconditionFailed, "not_configured", err.Error())
	case errors.Is(err, auth.ErrConsentPending):
		respondError(w, http.StatusConflict, "consent_pending", err.Error())
	case errors.Is(err, auth.ErrConsentDenied):
		respondError(w, http.StatusForbidden, "consent_denied", err.Error())
	case errors.Is(err, sheets.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, sheets.ErrUnsupportedOperation):
		respondError(w, http.StatusNotImplemented, "unsupported_operation", err.Error())
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, "validation_failed", ve.Error())
	case errors.Is(err, cart.ErrUnavailable):
		logger.FromContext(r.Context(), log).Warn("cart unavailable", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "cart_unavailable", "cart is temporarily unavailable")
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.As(err, &rse):
		respondError(w, http.StatusBadGateway, "remote_store_error", rse.Message)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		logger.FromContext(r.Context(), log).Error("unhandled error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
