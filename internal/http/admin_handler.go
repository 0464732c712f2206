package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/auth"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultConnectWait bounds how long a connect request waits for either a
// consent URL or an immediate grant.
const DefaultConnectWait = 3 * time.Second

type AdminAuth interface {
	Connect(ctx context.Context) (<-chan auth.Grant, error)
	State() auth.State
}

type RemoteCatalog interface {
	CreateRemote(ctx context.Context, p domain.Product) error
	UpdateRemote(ctx context.Context, id string, p domain.Product) (int, error)
	DeleteRemote(ctx context.Context, id string) error
}

type SheetSettings interface {
	SpreadsheetID(ctx context.Context) (string, error)
	SetSpreadsheetID(ctx context.Context, id string) error
}

type AdminHandler struct {
	auth     AdminAuth
	remote   RemoteCatalog
	settings SheetSettings
	// prompts carries consent URLs from the OAuth provider; nil when consent
	// needs no browser.
	prompts     <-chan string
	timeout     time.Duration
	connectWait time.Duration
	log         *zap.Logger
}

func NewAdminHandler(a AdminAuth, remote RemoteCatalog, settings SheetSettings, prompts <-chan string, timeout time.Duration, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		auth:        a,
		remote:      remote,
		settings:    settings,
		prompts:     prompts,
		timeout:     timeout,
		connectWait: DefaultConnectWait,
		log:         logger.OrNop(log),
	}
}

type AuthStatusDTO struct {
	State      string `json:"state"`
	ConsentURL string `json:"consentUrl,omitempty"`
}

type SheetDTO struct {
	SpreadsheetID string `json:"spreadsheetId"`
}

type ProductWriteResponseDTO struct {
	Product domain.Product `json:"product"`
	Row     int            `json:"row,omitempty"`
}

// GET /api/v1/admin/status
func (h *AdminHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, AuthStatusDTO{State: h.auth.State().String()})
}

// POST /api/v1/admin/connect
func (h *AdminHandler) Connect(w http.ResponseWriter, r *http.Request) {
	h.drainPrompts()

	// The flow outlives this request: the grant arrives via the OAuth callback.
	grant, err := h.auth.Connect(context.WithoutCancel(r.Context()))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	wait := time.NewTimer(h.connectWait)
	defer wait.Stop()

	select {
	case url := <-h.prompts:
		respondJSON(w, http.StatusAccepted, AuthStatusDTO{State: auth.StateAwaitingConsent.String(), ConsentURL: url})
	case g := <-grant:
		if g.Err != nil {
			handleError(w, r, h.log, g.Err)
			return
		}
		respondJSON(w, http.StatusOK, AuthStatusDTO{State: auth.StateAuthorized.String()})
	case <-wait.C:
		respondJSON(w, http.StatusAccepted, AuthStatusDTO{State: h.auth.State().String()})
	}
}

func (h *AdminHandler) drainPrompts() {
	for {
		select {
		case <-h.prompts:
		default:
			return
		}
	}
}

// GET /api/v1/admin/sheet
func (h *AdminHandler) GetSheet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := h.settings.SpreadsheetID(ctx)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, SheetDTO{SpreadsheetID: id})
}

// PUT /api/v1/admin/sheet
func (h *AdminHandler) SetSheet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req SheetDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	req.SpreadsheetID = strings.TrimSpace(req.SpreadsheetID)

	if err := h.settings.SetSpreadsheetID(ctx, req.SpreadsheetID); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	logger.FromContext(r.Context(), h.log).Info("spreadsheet id updated", zap.Bool("cleared", req.SpreadsheetID == ""))
	respondJSON(w, http.StatusOK, req)
}

// POST /api/v1/admin/products
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var p domain.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if strings.TrimSpace(p.ID) == "" {
		p.ID = uuid.NewString()
	}
	p.Normalize()

	if err := h.remote.CreateRemote(ctx, p); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, ProductWriteResponseDTO{Product: p})
}

// PUT /api/v1/admin/products/{id}
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing_product_id", "product id is required")
		return
	}

	var p domain.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	row, err := h.remote.UpdateRemote(ctx, id, p)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if strings.TrimSpace(p.ID) == "" {
		p.ID = id
	}
	p.Normalize()
	respondJSON(w, http.StatusOK, ProductWriteResponseDTO{Product: p, Row: row})
}

// DELETE /api/v1/admin/products/{id}
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	handleError(w, r, h.log, h.remote.DeleteRemote(r.Context(), chi.URLParam(r, "id")))
}
