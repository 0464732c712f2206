package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ADMIN_ACCESS_CODE", "8642")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, StoreBolt, cfg.CartStore)
	assert.Equal(t, 800*time.Millisecond, cfg.PlaceholderDelay)
	assert.Contains(t, cfg.FeedURL, "PLACEHOLDER")
	assert.Equal(t, "Sheet1", cfg.SheetName)
	assert.Equal(t, int64(1<<20), cfg.MaxRequestBodySize)
	assert.Empty(t, cfg.GoogleScopes)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, 10000, cfg.CartCacheSize)
	assert.Equal(t, 30*time.Minute, cfg.CartCacheTTL)
	assert.Equal(t, "8642", cfg.AdminCode)
}

func TestLoadRequiresAdminCode(t *testing.T) {
	t.Setenv("ADMIN_ACCESS_CODE", "")

	_, err := Load()
	assert.ErrorContains(t, err, "ADMIN_ACCESS_CODE")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ADMIN_ACCESS_CODE", "8642")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CART_STORE", " Redis ")
	t.Setenv("CATALOG_FEED_URL", "https://example.com/feed.csv")
	t.Setenv("CATALOG_PLACEHOLDER_DELAY", "10ms")
	t.Setenv("GOOGLE_SCOPES", "a,b")
	t.Setenv("DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, StoreRedis, cfg.CartStore)
	assert.Equal(t, "https://example.com/feed.csv", cfg.FeedURL)
	assert.Equal(t, 10*time.Millisecond, cfg.PlaceholderDelay)
	assert.Equal(t, []string{"a", "b"}, cfg.GoogleScopes)
	assert.True(t, cfg.DevMode)
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestLoadInvalidStore(t *testing.T) {
	t.Setenv("ADMIN_ACCESS_CODE", "8642")
	t.Setenv("CART_STORE", "postgres")

	_, err := Load()
	assert.ErrorContains(t, err, "invalid CART_STORE")
}

func TestValidate(t *testing.T) {
	cfg := Config{CartStore: StoreMongo, AdminCode: " ", MaxRequestBodySize: 1}
	assert.ErrorContains(t, cfg.Validate(), "ADMIN_ACCESS_CODE")

	cfg.AdminCode = "1234"
	assert.NoError(t, cfg.Validate())
}
