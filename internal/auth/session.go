// Package auth owns the admin's access token and the consent flow that
// produces it.
package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/fjod/go_storefront/pkg/logger"
	"go.uber.org/zap"
)

type State int

const (
	StateUninitialized State = iota
	StateReady
	StateAwaitingConsent
	StateAuthorized
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateAwaitingConsent:
		return "awaiting_consent"
	case StateAuthorized:
		return "authorized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Grant is the outcome of one consent flow. Exactly one of Token and Err is set.
type Grant struct {
	Token string
	Err   error
}

// ConsentProvider runs an interactive consent flow and returns an access token.
type ConsentProvider interface {
	Available() bool
	RequestConsent(ctx context.Context) (string, error)
}

// Session holds the admin token. It is the TokenSource handed to the sheets
// client.
type Session struct {
	provider ConsentProvider
	log      *zap.Logger

	mu          sync.RWMutex
	initialized bool
	state       State
	token       string
	onGranted   []func(Grant)
}

func NewSession(provider ConsentProvider, log *zap.Logger) *Session {
	return &Session{
		provider: provider,
		log:      logger.OrNop(log),
	}
}

// Init moves the session to Ready when the provider can be used. Without a
// provider the session stays Uninitialized for good; only the first call
// has any effect.
func (s *Session) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return
	}
	s.initialized = true
	if s.provider == nil || !s.provider.Available() {
		s.log.Warn("admin auth provider unavailable, remote writes disabled")
		return
	}
	s.state = StateReady
}

// Connect starts a consent flow. The returned channel receives exactly one
// Grant and is then closed. A failed flow restores the previous state and
// keeps any earlier token.
func (s *Session) Connect(ctx context.Context) (<-chan Grant, error) {
	s.mu.Lock()
	switch s.state {
	case StateUninitialized:
		s.mu.Unlock()
		return nil, ErrNotConfigured
	case StateAwaitingConsent:
		s.mu.Unlock()
		return nil, ErrConsentPending
	}
	prev := s.state
	s.state = StateAwaitingConsent
	s.mu.Unlock()

	result := make(chan Grant, 1)
	go func() {
		defer close(result)

		token, err := s.provider.RequestConsent(ctx)
		if err == nil && token == "" {
			err = ErrConsentDenied
		}
		log := logger.FromContext(ctx, s.log)

		s.mu.Lock()
		if err != nil {
			s.state = prev
			s.mu.Unlock()
			log.Warn("admin consent failed", zap.Error(err))
			result <- Grant{Err: err}
			return
		}
		s.token = token
		s.state = StateAuthorized
		callbacks := append([](func(Grant))(nil), s.onGranted...)
		s.mu.Unlock()

		log.Info("admin consent granted")
		g := Grant{Token: token}
		for _, fn := range callbacks {
			fn(g)
		}
		result <- g
	}()
	return result, nil
}

// OnGranted registers fn to run once for every successful grant after the
// call. Callbacks run in registration order on the flow's goroutine, outside
// the session lock, before the Connect channel receives the grant.
func (s *Session) OnGranted(fn func(Grant)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.onGranted = append(s.onGranted, fn)
	s.mu.Unlock()
}

// Token returns the current access token.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrAuthRequired
	}
	return s.token, nil
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
