// Package http is the storefront's HTTP gateway: shopper catalog and cart
// endpoints plus the admin catalog editor.
package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Deps struct {
	Catalog  CatalogFetcher
	Carts    *cart.Registry
	Auth     AdminAuth
	Remote   RemoteCatalog
	Settings SheetSettings
	// Prompts receives consent URLs; nil when consent needs no browser.
	Prompts <-chan string
	// OAuthCallback completes the browser consent; nil disables the route.
	OAuthCallback http.HandlerFunc

	AdminCode          string
	WhatsAppPhone      string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	Logger             *zap.Logger
}

func NewRouter(d Deps) http.Handler {
	products := NewProductHandler(d.Catalog, d.RequestTimeout)
	carts := NewCartHandler(d.Carts, d.Catalog, d.RequestTimeout, d.Logger)
	checkout := NewCheckoutHandler(d.Carts, d.WhatsAppPhone, d.Logger)
	admin := NewAdminHandler(d.Auth, d.Remote, d.Settings, d.Prompts, d.RequestTimeout, d.Logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware(d.Logger))
	r.Use(AccessLog(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(d.RequestTimeout))
	if d.MaxRequestBodySize > 0 {
		r.Use(middleware.RequestSize(d.MaxRequestBodySize))
	}
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.List)
			r.Get("/{id}", products.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", carts.GetCart)
				r.Delete("/", carts.ClearCart)
				r.Post("/items", carts.AddItem)
				r.Delete("/items/{product_id}", carts.RemoveItem)
				r.Post("/toggle", carts.Toggle)
			})
			r.Post("/checkout", checkout.InitiateCheckout)
		})

		r.Route("/admin", func(r chi.Router) {
			// The consent redirect carries no admin code.
			if d.OAuthCallback != nil {
				r.Get("/oauth/callback", d.OAuthCallback)
			}

			r.Group(func(r chi.Router) {
				r.Use(AdminCodeMiddleware(d.AdminCode))

				r.Get("/status", admin.Status)
				r.Post("/connect", admin.Connect)
				r.Get("/sheet", admin.GetSheet)
				r.Put("/sheet", admin.SetSheet)
				r.Post("/products", admin.CreateProduct)
				r.Put("/products/{id}", admin.UpdateProduct)
				r.Delete("/products/{id}", admin.DeleteProduct)
			})
		})
	})

	return r
}
