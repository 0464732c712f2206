package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_storefront/internal/auth"
	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/fjod/go_storefront/internal/sheets"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testAdminCode = "2024"

type memRepository struct {
	mu      sync.RWMutex
	data    map[string][]byte
	failGet bool
	failPut bool
}

func newMemRepository() *memRepository {
	return &memRepository{data: make(map[string][]byte)}
}

func (m *memRepository) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failGet {
		return nil, errors.New("connection refused")
	}
	v, ok := m.data[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return v, nil
}

func (m *memRepository) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut {
		return context.DeadlineExceeded
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memRepository) Close() error { return nil }

func (m *memRepository) setFailGet(fail bool) {
	m.mu.Lock()
	m.failGet = fail
	m.mu.Unlock()
}

type staticCatalog []domain.Product

func (c staticCatalog) Fetch(context.Context) []domain.Product {
	out := make([]domain.Product, len(c))
	for i, p := range c {
		out[i] = p.Clone()
	}
	return out
}

func testCatalog() staticCatalog {
	return staticCatalog{
		{
			ID:       "1",
			Name:     "Linen Shirt",
			Price:    decimal.RequireFromString("45.00"),
			Category: "Men",
			Image:    "https://img/1.jpg",
			Sizes:    []string{"S", "M"},
			Colors:   []string{"White", "Blue"},
		},
		{
			ID:       "2",
			Name:     "Canvas Bag",
			Price:    decimal.RequireFromString("19.90"),
			Category: "Accessories",
			Image:    "https://img/2.jpg",
		},
	}
}

type testGateway struct {
	handler  http.Handler
	repo     *memRepository
	backend  *sheets.MemoryBackend
	session  *auth.Session
	settings *repository.Settings
}

func setupGateway(t *testing.T) *testGateway {
	t.Helper()

	repo := newMemRepository()
	session := auth.NewSession(auth.StaticProvider{AccessToken: "dev-token"}, nil)
	session.Init()
	settings := repository.NewSettings(repo, "sheet-1")
	backend := sheets.NewMemoryBackend()

	h := NewRouter(Deps{
		Catalog:            testCatalog(),
		Carts:              cart.NewRegistry(repo, nil),
		Auth:               session,
		Remote:             sheets.NewClient(backend, session, settings),
		Settings:           settings,
		AdminCode:          testAdminCode,
		WhatsAppPhone:      "+1 (234) 567-890",
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: 1 << 20,
	})

	return &testGateway{
		handler:  h,
		repo:     repo,
		backend:  backend,
		session:  session,
		settings: settings,
	}
}

type client struct {
	t       *testing.T
	h       http.Handler
	cookies []*http.Cookie
	header  http.Header
}

func newClient(t *testing.T, h http.Handler) *client {
	return &client{t: t, h: h, header: make(http.Header)}
}

func (c *client) admin() *client {
	c.header.Set(AdminCodeHeader, testAdminCode)
	return c
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.header {
		req.Header[k] = v
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)

	if set := rec.Result().Cookies(); len(set) > 0 {
		c.cookies = set
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}
