package http

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxLineQuantity = 99

type CartHandler struct {
	carts   *cart.Registry
	catalog CatalogFetcher
	timeout time.Duration
	log     *zap.Logger
}

func NewCartHandler(carts *cart.Registry, catalog CatalogFetcher, timeout time.Duration, log *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalog,
		timeout: timeout,
		log:     logger.OrNop(log),
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

type CartResponseDTO struct {
	domain.CartSnapshot
	// Warning is set when the change applied but could not be saved.
	Warning string `json:"warning,omitempty"`
}

type ToggleResponseDTO struct {
	IsOpen bool `json:"isOpen"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store, err := h.carts.Get(ctx, getSession(r.Context()))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, CartResponseDTO{CartSnapshot: store.Snapshot()})
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 || req.Quantity > maxLineQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, ok := findProduct(h.catalog.Fetch(ctx), req.ProductID)
	if !ok {
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
		return
	}
	if req.Size != "" && !slices.Contains(product.Sizes, req.Size) {
		respondError(w, http.StatusBadRequest, "invalid_size", "size is not offered for this product")
		return
	}
	if req.Color != "" && !slices.Contains(product.Colors, req.Color) {
		respondError(w, http.StatusBadRequest, "invalid_color", "color is not offered for this product")
		return
	}

	store, err := h.carts.Get(ctx, getSession(r.Context()))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	err = store.AddLine(ctx, product, req.Quantity, req.Size, req.Color)
	h.respondMutation(w, r, http.StatusCreated, store, err)
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	store, err := h.carts.Get(ctx, getSession(r.Context()))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	err = store.RemoveLine(ctx, productID)
	h.respondMutation(w, r, http.StatusOK, store, err)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store, err := h.carts.Get(ctx, getSession(r.Context()))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	err = store.Clear(ctx)
	h.respondMutation(w, r, http.StatusOK, store, err)
}

// POST /api/v1/cart/toggle
func (h *CartHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	store, err := h.carts.Get(ctx, getSession(r.Context()))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, ToggleResponseDTO{IsOpen: store.ToggleVisibility()})
}

// respondMutation reports the cart after a change. A failed save keeps the
// change, so the caller still gets the new cart plus a warning.
func (h *CartHandler) respondMutation(w http.ResponseWriter, r *http.Request, status int, store *cart.Store, err error) {
	resp := CartResponseDTO{CartSnapshot: store.Snapshot()}
	if err != nil {
		logger.FromContext(r.Context(), h.log).Warn("cart change not persisted", zap.Error(err))
		resp.Warning = "cart could not be saved"
	}
	respondJSON(w, status, resp)
}
