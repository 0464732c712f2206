package http

import (
	"net/http"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	carts *cart.Registry
	phone string
	log   *zap.Logger
}

func NewCheckoutHandler(carts *cart.Registry, phone string, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		carts: carts,
		phone: phone,
		log:   logger.OrNop(log),
	}
}

type CheckoutResponseDTO struct {
	Message     string          `json:"message"`
	WhatsAppURL string          `json:"whatsappUrl"`
	Total       decimal.Decimal `json:"total"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) InitiateCheckout(w http.ResponseWriter, r *http.Request) {
	store, err := h.carts.Get(r.Context(), getSession(r.Context()))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	snap := store.Snapshot()

	text, err := checkout.Compose(snap.Lines, snap.Subtotal)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	logger.FromContext(r.Context(), h.log).Info("checkout composed",
		zap.Int("items", snap.Count),
		zap.String("total", snap.Subtotal.StringFixed(2)))

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		Message:     text,
		WhatsAppURL: checkout.WhatsAppURL(h.phone, text),
		Total:       snap.Subtotal,
	})
}
