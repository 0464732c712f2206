package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/go-chi/chi/v5"
)

type CatalogFetcher interface {
	Fetch(ctx context.Context) []domain.Product
}

type ProductHandler struct {
	catalog CatalogFetcher
	timeout time.Duration
}

func NewProductHandler(catalog CatalogFetcher, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
}

// GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: h.catalog.Fetch(ctx)})
}

// GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	p, ok := findProduct(h.catalog.Fetch(ctx), chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func findProduct(products []domain.Product, id string) (domain.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}
