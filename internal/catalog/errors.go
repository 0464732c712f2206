package catalog

import (
	"errors"
	"fmt"
)

// ErrNoValidRows is recorded when the feed parsed but every row was skipped.
var ErrNoValidRows = errors.New("feed produced no valid rows")

// FetchError wraps a failed feed retrieval.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch feed %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch feed %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError wraps a feed document that could not be read as CSV.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse feed: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
