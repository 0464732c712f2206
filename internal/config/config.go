package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Cart store backends.
const (
	StoreBolt  = "bolt"
	StoreRedis = "redis"
	StoreMongo = "mongo"
)

type Config struct {
	HTTPPort           string        `env:"HTTP_PORT" envDefault:"8080"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxRequestBodySize int64         `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	FeedURL          string        `env:"CATALOG_FEED_URL" envDefault:"https://docs.google.com/spreadsheets/d/e/PLACEHOLDER/pub?output=csv"`
	PlaceholderDelay time.Duration `env:"CATALOG_PLACEHOLDER_DELAY" envDefault:"800ms"`
	FeedMaxFailures  uint32        `env:"CATALOG_BREAKER_MAX_FAILURES" envDefault:"3"`
	FeedOpenTimeout  time.Duration `env:"CATALOG_BREAKER_OPEN_TIMEOUT" envDefault:"30s"`

	CartStore     string        `env:"CART_STORE" envDefault:"bolt"`
	BoltPath      string        `env:"BOLT_PATH" envDefault:"storefront.db"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CartTTL       time.Duration `env:"CART_TTL" envDefault:"720h"`
	CartCacheSize int           `env:"CART_CACHE_SIZE" envDefault:"10000"`
	CartCacheTTL  time.Duration `env:"CART_CACHE_TTL" envDefault:"30m"`
	MongoURI      string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string        `env:"MONGO_DATABASE" envDefault:"storefront"`

	SheetsBaseURL      string `env:"SHEETS_BASE_URL" envDefault:"https://sheets.googleapis.com/v4"`
	SheetName          string `env:"SHEET_NAME" envDefault:"Sheet1"`
	SeedSpreadsheetID  string `env:"SPREADSHEET_ID"`
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL" envDefault:"http://localhost:8080/api/v1/admin/oauth/callback"`
	// GoogleScopes overrides the default spreadsheets + drive.file scopes.
	GoogleScopes   []string      `env:"GOOGLE_SCOPES" envSeparator:","`
	ConsentTimeout time.Duration `env:"CONSENT_TIMEOUT" envDefault:"5m"`

	// AdminCode has no default; Load fails when it is unset.
	AdminCode     string `env:"ADMIN_ACCESS_CODE"`
	WhatsAppPhone string `env:"WHATSAPP_PHONE" envDefault:"1234567890"`

	// DevMode swaps the Sheets API for an in-memory spreadsheet and grants a
	// fixed admin token.
	DevMode bool `env:"DEV_MODE" envDefault:"false"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.CartStore = strings.ToLower(strings.TrimSpace(cfg.CartStore))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.CartStore {
	case StoreBolt, StoreRedis, StoreMongo:
	default:
		return fmt.Errorf("invalid CART_STORE %q: want bolt, redis or mongo", c.CartStore)
	}
	if strings.TrimSpace(c.AdminCode) == "" {
		return fmt.Errorf("ADMIN_ACCESS_CODE must not be empty")
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be positive")
	}
	return nil
}
