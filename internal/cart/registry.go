package cart

import (
	"context"
	"time"

	"github.com/fjod/go_storefront/internal/repository"
	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCapacity = 10000
	DefaultIdleTTL  = 30 * time.Minute
)

type RegistryOption func(*registryConfig)

type registryConfig struct {
	capacity int
	ttl      time.Duration
}

// WithCapacity bounds the number of carts kept in memory.
func WithCapacity(n int) RegistryOption {
	return func(c *registryConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithIdleTTL drops a cart from memory this long after it was loaded.
func WithIdleTTL(d time.Duration) RegistryOption {
	return func(c *registryConfig) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// Registry hands out one Store per shopper session. Stores are cached in a
// bounded LRU; an evicted cart is reloaded from the repository on next use.
type Registry struct {
	repo   repository.Repository
	log    *zap.Logger
	sfg    singleflight.Group // one load per session
	stores *expirable.LRU[string, *Store]
}

func NewRegistry(repo repository.Repository, log *zap.Logger, opts ...RegistryOption) *Registry {
	cfg := registryConfig{capacity: DefaultCapacity, ttl: DefaultIdleTTL}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{
		repo:   repo,
		log:    logger.OrNop(log),
		stores: expirable.NewLRU[string, *Store](cfg.capacity, nil, cfg.ttl),
	}
}

// Get returns the session's store, loading it from the repository on first
// use. A failed read is returned as ErrUnavailable and nothing is cached, so
// the next call retries.
func (r *Registry) Get(ctx context.Context, session string) (*Store, error) {
	if s, ok := r.stores.Get(session); ok {
		return s, nil
	}

	v, err, _ := r.sfg.Do(session, func() (interface{}, error) {
		if s, ok := r.stores.Get(session); ok {
			return s, nil
		}

		s, err := openStore(ctx, r.repo, repository.CartKeyFor(session), r.log)
		if err != nil {
			return nil, err
		}
		r.stores.Add(session, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

// Len reports the number of carts held in memory.
func (r *Registry) Len() int {
	return r.stores.Len()
}
