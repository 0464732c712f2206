package sheets

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/fjod/go_storefront/internal/auth"
)

var (
	// ErrAuthRequired is shared with the auth session so either side matches.
	ErrAuthRequired         = auth.ErrAuthRequired
	ErrNotFound             = errors.New("product row not found")
	ErrNotConfigured        = errors.New("spreadsheet id not configured")
	ErrUnsupportedOperation = errors.New("operation not supported")
)

// RemoteStoreError is a non-2xx answer from the spreadsheet API.
type RemoteStoreError struct {
	StatusCode int
	Message    string
}

func (e *RemoteStoreError) Error() string {
	return fmt.Sprintf("remote store error (%d): %s", e.StatusCode, e.Message)
}

// Is makes a rejected token match ErrAuthRequired.
func (e *RemoteStoreError) Is(target error) bool {
	return target == ErrAuthRequired && e.StatusCode == http.StatusUnauthorized
}
