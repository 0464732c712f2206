package cart

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrUnavailable means the saved cart could not be read.
	ErrUnavailable = errors.New("cart storage unavailable")
)
