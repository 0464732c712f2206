package auth

import "errors"

var (
	// ErrAuthRequired means no access token has been granted yet.
	ErrAuthRequired = errors.New("authorization required: connect the admin account first")
	// ErrNotConfigured means the consent provider is missing or unusable.
	ErrNotConfigured = errors.New("auth provider not configured")
	// ErrConsentPending means a consent flow is already waiting for the operator.
	ErrConsentPending = errors.New("consent already pending")
	ErrConsentDenied  = errors.New("consent denied")
	ErrUnknownState   = errors.New("unknown or expired oauth state")
)
