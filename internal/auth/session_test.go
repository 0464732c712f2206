package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProvider struct {
	m         sync.RWMutex
	available bool
	tokens    []string
	errs      []error
	calls     int
	release   chan struct{}
}

func (m *mockProvider) Available() bool {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.available
}

func (m *mockProvider) RequestConsent(ctx context.Context) (string, error) {
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	m.m.Lock()
	defer m.m.Unlock()
	i := m.calls
	m.calls++
	var tok string
	var err error
	if i < len(m.tokens) {
		tok = m.tokens[i]
	}
	if i < len(m.errs) {
		err = m.errs[i]
	}
	return tok, err
}

func receive(t *testing.T, ch <-chan Grant) Grant {
	t.Helper()
	select {
	case g, ok := <-ch:
		require.True(t, ok, "grant channel closed without a grant")
		return g
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for grant")
		return Grant{}
	}
}

func TestInit_WithoutProviderStaysUninitialized(t *testing.T) {
	s := NewSession(nil, nil)
	s.Init()
	assert.Equal(t, StateUninitialized, s.State())

	ch, err := s.Connect(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Nil(t, ch)
}

func TestInit_UnavailableProvider(t *testing.T) {
	s := NewSession(&mockProvider{available: false}, nil)
	s.Init()
	assert.Equal(t, StateUninitialized, s.State())

	_, err := s.Connect(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestConnect_GrantAuthorizes(t *testing.T) {
	s := NewSession(&mockProvider{available: true, tokens: []string{"tok-1"}}, nil)
	s.Init()
	require.Equal(t, StateReady, s.State())

	_, err := s.Token()
	require.ErrorIs(t, err, ErrAuthRequired)

	ch, err := s.Connect(context.Background())
	require.NoError(t, err)

	g := receive(t, ch)
	require.NoError(t, g.Err)
	assert.Equal(t, "tok-1", g.Token)

	_, open := <-ch
	assert.False(t, open, "grant channel must be closed after one grant")

	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.Equal(t, StateAuthorized, s.State())
}

func TestConnect_ReplacesTokenOnReconnect(t *testing.T) {
	s := NewSession(&mockProvider{available: true, tokens: []string{"tok-1", "tok-2"}}, nil)
	s.Init()

	ch, err := s.Connect(context.Background())
	require.NoError(t, err)
	receive(t, ch)

	ch, err = s.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", receive(t, ch).Token)

	tok, _ := s.Token()
	assert.Equal(t, "tok-2", tok)
}

func TestConnect_FailureRestoresPreviousState(t *testing.T) {
	denied := errors.New("user closed the popup")
	s := NewSession(&mockProvider{
		available: true,
		tokens:    []string{"tok-1", ""},
		errs:      []error{nil, denied},
	}, nil)
	s.Init()

	ch, _ := s.Connect(context.Background())
	receive(t, ch)

	ch, err := s.Connect(context.Background())
	require.NoError(t, err)
	g := receive(t, ch)
	assert.ErrorIs(t, g.Err, denied)
	assert.Empty(t, g.Token)

	assert.Equal(t, StateAuthorized, s.State())
	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
}

func TestConnect_EmptyTokenIsDenied(t *testing.T) {
	s := NewSession(&mockProvider{available: true, tokens: []string{""}}, nil)
	s.Init()

	ch, err := s.Connect(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, receive(t, ch).Err, ErrConsentDenied)
	assert.Equal(t, StateReady, s.State())
}

func TestConnect_RejectsSecondFlowWhilePending(t *testing.T) {
	p := &mockProvider{available: true, tokens: []string{"tok-1"}, release: make(chan struct{})}
	s := NewSession(p, nil)
	s.Init()

	ch, err := s.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingConsent, s.State())

	_, err = s.Connect(context.Background())
	assert.ErrorIs(t, err, ErrConsentPending)

	close(p.release)
	assert.Equal(t, "tok-1", receive(t, ch).Token)
}

func TestConnect_CancelledContext(t *testing.T) {
	p := &mockProvider{available: true, release: make(chan struct{})}
	s := NewSession(p, nil)
	s.Init()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := s.Connect(ctx)
	require.NoError(t, err)
	cancel()

	assert.ErrorIs(t, receive(t, ch).Err, context.Canceled)
	assert.Equal(t, StateReady, s.State())
}

type grantLog struct {
	m      sync.Mutex
	tokens []string
}

func (l *grantLog) record(g Grant) {
	l.m.Lock()
	defer l.m.Unlock()
	l.tokens = append(l.tokens, g.Token)
}

func (l *grantLog) all() []string {
	l.m.Lock()
	defer l.m.Unlock()
	return append([]string(nil), l.tokens...)
}

func TestOnGranted_OneCallPerGrant(t *testing.T) {
	s := NewSession(&mockProvider{
		available: true,
		tokens:    []string{"tok-1", "", "tok-3"},
		errs:      []error{nil, errors.New("denied"), nil},
	}, nil)
	s.Init()
	var got grantLog
	s.OnGranted(got.record)

	for i := 0; i < 3; i++ {
		ch, err := s.Connect(context.Background())
		require.NoError(t, err)
		receive(t, ch)
	}

	assert.Equal(t, []string{"tok-1", "tok-3"}, got.all())
}

func TestOnGranted_NoGrantIsLost(t *testing.T) {
	const grants = 50
	tokens := make([]string, grants)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("tok-%d", i)
	}
	s := NewSession(&mockProvider{available: true, tokens: tokens}, nil)
	s.Init()

	var first, second grantLog
	s.OnGranted(first.record)
	s.OnGranted(second.record)

	for i := 0; i < grants; i++ {
		ch, err := s.Connect(context.Background())
		require.NoError(t, err)
		require.NoError(t, receive(t, ch).Err)
	}

	assert.Equal(t, tokens, first.all())
	assert.Equal(t, tokens, second.all())
}

func TestInit_OnlyFirstCallCounts(t *testing.T) {
	p := &mockProvider{available: false, tokens: []string{"tok"}}
	s := NewSession(p, nil)
	s.Init()
	require.Equal(t, StateUninitialized, s.State())

	p.m.Lock()
	p.available = true
	p.m.Unlock()
	s.Init()

	assert.Equal(t, StateUninitialized, s.State())
	_, err := s.Connect(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "awaiting_consent", StateAwaitingConsent.String())
	assert.Equal(t, "authorized", StateAuthorized.String())
}

func TestStaticProvider(t *testing.T) {
	s := NewSession(StaticProvider{}, nil)
	s.Init()
	assert.Equal(t, StateUninitialized, s.State())

	s = NewSession(StaticProvider{AccessToken: "dev"}, nil)
	s.Init()
	ch, err := s.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dev", receive(t, ch).Token)
}
