package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_storefront/internal/auth"
	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/config"
	h "github.com/fjod/go_storefront/internal/http"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/fjod/go_storefront/internal/sheets"
	"github.com/fjod/go_storefront/pkg/circuitbreaker"
	"github.com/fjod/go_storefront/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const devToken = "dev-token"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	ctx := context.Background()

	repo, err := openRepository(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to open repository", zap.String("store", cfg.CartStore), zap.Error(err))
	}
	defer repo.Close()

	reports := make(chan catalog.Report, 4)
	source := catalog.NewSource(cfg.FeedURL,
		catalog.WithPlaceholderDelay(cfg.PlaceholderDelay),
		catalog.WithReports(reports),
		catalog.WithLogger(zl),
		catalog.WithBreaker(circuitbreaker.Settings{
			Name:        "catalog-feed",
			MaxFailures: cfg.FeedMaxFailures,
			OpenTimeout: cfg.FeedOpenTimeout,
			Logger:      zl,
		}),
	)
	go logReports(zl, reports)

	var (
		provider auth.ConsentProvider
		backend  sheets.Backend
		prompts  chan string
		callback http.HandlerFunc
	)
	if cfg.DevMode {
		zl.Warn("dev mode: in-memory spreadsheet and static admin token")
		provider = auth.StaticProvider{AccessToken: devToken}
		backend = sheets.NewMemoryBackend()
	} else {
		prompts = make(chan string, 1)
		oauth := auth.NewOAuthProvider(auth.OAuthConfig{
			ClientID:       cfg.GoogleClientID,
			ClientSecret:   cfg.GoogleClientSecret,
			RedirectURL:    cfg.GoogleRedirectURL,
			Scopes:         cfg.GoogleScopes,
			ConsentTimeout: cfg.ConsentTimeout,
		}, func(url string) {
			select {
			case prompts <- url:
			default:
			}
		}, zl)
		provider = oauth
		callback = oauth.HandleCallback
		backend = sheets.NewHTTPBackend(cfg.SheetsBaseURL, nil)
	}

	session := auth.NewSession(provider, zl)
	session.Init()
	session.OnGranted(func(auth.Grant) {
		zl.Info("admin access granted, remote catalog writes enabled")
	})

	settings := repository.NewSettings(repo, cfg.SeedSpreadsheetID)
	remote := sheets.NewClient(backend, session, settings,
		sheets.WithSheetName(cfg.SheetName),
		sheets.WithLogger(zl),
	)

	router := h.NewRouter(h.Deps{
		Catalog:            source,
		Carts: cart.NewRegistry(repo, zl,
			cart.WithCapacity(cfg.CartCacheSize),
			cart.WithIdleTTL(cfg.CartCacheTTL),
		),
		Auth:               session,
		Remote:             remote,
		Settings:           settings,
		Prompts:            prompts,
		OAuthCallback:      callback,
		AdminCode:          cfg.AdminCode,
		WhatsAppPhone:      cfg.WhatsAppPhone,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		Logger:             zl,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("storefront starting",
			zap.String("port", cfg.HTTPPort),
			zap.String("store", cfg.CartStore),
			zap.Bool("feed_configured", source.Configured()),
			zap.String("admin_auth", session.State().String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}
	zl.Info("server exited")
}

func openRepository(ctx context.Context, cfg *config.Config, zl *zap.Logger) (repository.Repository, error) {
	switch cfg.CartStore {
	case config.StoreRedis:
		client, err := repository.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		zl.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		return repository.NewRedisRepository(client, cfg.CartTTL), nil
	case config.StoreMongo:
		db, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		repo := repository.NewMongoRepository(db)
		if err := repo.CreateIndexes(ctx); err != nil {
			_ = repo.Close()
			return nil, err
		}
		zl.Info("connected to mongodb", zap.String("database", cfg.MongoDatabase))
		return repo, nil
	case config.StoreBolt:
		repo, err := repository.NewBoltRepository(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		zl.Info("opened bolt store", zap.String("path", cfg.BoltPath))
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown cart store %q", cfg.CartStore)
	}
}

func logReports(zl *zap.Logger, reports <-chan catalog.Report) {
	for r := range reports {
		fields := []zap.Field{
			zap.String("origin", string(r.Origin)),
			zap.Int("accepted", r.Accepted),
			zap.Int("skipped", len(r.Skipped)),
		}
		if r.Err != nil {
			zl.Warn("catalog served from baseline", append(fields, zap.Error(r.Err))...)
			continue
		}
		zl.Debug("catalog loaded", fields...)
	}
}
