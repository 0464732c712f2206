package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func setupOAuth(t *testing.T, timeout time.Duration) (*OAuthProvider, chan string) {
	t.Helper()
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"ya29.token","token_type":"Bearer","expires_in":3599}`))
	}))
	t.Cleanup(tokenSrv.Close)

	prompts := make(chan string, 1)
	p := NewOAuthProvider(OAuthConfig{
		ClientID:       "client",
		ClientSecret:   "secret",
		RedirectURL:    "http://localhost:8080/api/v1/admin/oauth/callback",
		Endpoint:       oauth2.Endpoint{AuthURL: tokenSrv.URL + "/auth", TokenURL: tokenSrv.URL + "/token"},
		ConsentTimeout: timeout,
	}, func(u string) { prompts <- u }, nil)
	return p, prompts
}

func consentState(t *testing.T, prompts chan string) string {
	t.Helper()
	select {
	case raw := <-prompts:
		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "client", u.Query().Get("client_id"))
		assert.Equal(t, "offline", u.Query().Get("access_type"))
		assert.Contains(t, u.Query().Get("scope"), "auth/spreadsheets")
		return u.Query().Get("state")
	case <-time.After(2 * time.Second):
		t.Fatal("no consent prompt")
		return ""
	}
}

func callbackRequest(p *OAuthProvider, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/oauth/callback?"+query, nil)
	rec := httptest.NewRecorder()
	p.HandleCallback(rec, req)
	return rec
}

func TestOAuth_Available(t *testing.T) {
	assert.False(t, NewOAuthProvider(OAuthConfig{}, nil, nil).Available())
	assert.False(t, NewOAuthProvider(OAuthConfig{ClientID: "x", ClientSecret: "y"}, nil, nil).Available())

	p, _ := setupOAuth(t, time.Second)
	assert.True(t, p.Available())
}

func TestOAuth_UnavailableRequestConsent(t *testing.T) {
	_, err := NewOAuthProvider(OAuthConfig{}, nil, nil).RequestConsent(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestOAuth_CodeExchange(t *testing.T) {
	p, prompts := setupOAuth(t, 2*time.Second)

	type result struct {
		tok string
		err error
	}
	done := make(chan result, 1)
	go func() {
		tok, err := p.RequestConsent(context.Background())
		done <- result{tok, err}
	}()

	state := consentState(t, prompts)
	rec := callbackRequest(p, url.Values{"state": {state}, "code": {"good-code"}}.Encode())
	assert.Equal(t, http.StatusOK, rec.Code)

	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, "ya29.token", r.tok)
}

func TestOAuth_Denied(t *testing.T) {
	p, prompts := setupOAuth(t, 2*time.Second)

	done := make(chan error, 1)
	go func() {
		_, err := p.RequestConsent(context.Background())
		done <- err
	}()

	state := consentState(t, prompts)
	rec := callbackRequest(p, url.Values{"state": {state}, "error": {"access_denied"}}.Encode())
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.ErrorIs(t, <-done, ErrConsentDenied)
}

func TestOAuth_UnknownState(t *testing.T) {
	p, _ := setupOAuth(t, time.Second)

	rec := callbackRequest(p, "state=forged&code=good-code")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOAuth_ConsentTimeout(t *testing.T) {
	p, prompts := setupOAuth(t, 20*time.Millisecond)

	_, err := p.RequestConsent(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// the abandoned state is no longer accepted
	state := consentState(t, prompts)
	rec := callbackRequest(p, "state="+state+"&code=good-code")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOAuth_WithSession(t *testing.T) {
	p, prompts := setupOAuth(t, 2*time.Second)
	s := NewSession(p, nil)
	s.Init()
	require.Equal(t, StateReady, s.State())

	ch, err := s.Connect(context.Background())
	require.NoError(t, err)

	state := consentState(t, prompts)
	callbackRequest(p, "state="+state+"&code=good-code")

	g := receive(t, ch)
	require.NoError(t, g.Err)
	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "ya29.token", tok)
}
