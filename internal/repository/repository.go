package repository

import (
	"context"
	"errors"
)

// Well-known keys.
const (
	CartKey    = "agg_cart"
	SheetIDKey = "agg_sheet_id"
)

var ErrNotFound = errors.New("key not found")

// Repository is the local key/value persistence behind the cart and the
// operator settings. Consumers depend on this interface, not on a backend.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// CartKeyFor scopes the cart key to one shopper session.
func CartKeyFor(session string) string {
	if session == "" {
		return CartKey
	}
	return CartKey + ":" + session
}
