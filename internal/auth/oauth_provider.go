package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultScopes grant spreadsheet edits plus access to files the app created.
var DefaultScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive.file",
}

const DefaultConsentTimeout = 5 * time.Minute

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	// Endpoint defaults to Google's.
	Endpoint oauth2.Endpoint
	// ConsentTimeout bounds how long RequestConsent waits for the callback.
	ConsentTimeout time.Duration
}

type callback struct {
	code string
	err  error
}

// OAuthProvider runs the authorization-code flow. The consent URL goes to
// prompt; the browser comes back through HandleCallback.
type OAuthProvider struct {
	cfg     *oauth2.Config
	prompt  func(consentURL string)
	timeout time.Duration
	log     *zap.Logger

	mu      sync.Mutex
	pending map[string]chan callback
}

func NewOAuthProvider(c OAuthConfig, prompt func(consentURL string), log *zap.Logger) *OAuthProvider {
	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	endpoint := c.Endpoint
	if endpoint.AuthURL == "" && endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	timeout := c.ConsentTimeout
	if timeout <= 0 {
		timeout = DefaultConsentTimeout
	}
	if prompt == nil {
		prompt = func(string) {}
	}

	return &OAuthProvider{
		cfg: &oauth2.Config{
			ClientID:     strings.TrimSpace(c.ClientID),
			ClientSecret: strings.TrimSpace(c.ClientSecret),
			RedirectURL:  strings.TrimSpace(c.RedirectURL),
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		prompt:  prompt,
		timeout: timeout,
		log:     logger.OrNop(log),
		pending: make(map[string]chan callback),
	}
}

// Available reports whether client credentials and a redirect URL are set.
func (p *OAuthProvider) Available() bool {
	return p.cfg.ClientID != "" && p.cfg.ClientSecret != "" && p.cfg.RedirectURL != ""
}

// RequestConsent prompts for consent and blocks until the callback arrives,
// the consent timeout passes or ctx is done.
func (p *OAuthProvider) RequestConsent(ctx context.Context) (string, error) {
	if !p.Available() {
		return "", ErrNotConfigured
	}

	state := uuid.NewString()
	ch := make(chan callback, 1)
	p.mu.Lock()
	p.pending[state] = ch
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.pending, state)
		p.mu.Unlock()
	}()

	p.prompt(p.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline))

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var cb callback
	select {
	case cb = <-ch:
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for consent: %w", ctx.Err())
	}
	if cb.err != nil {
		return "", cb.err
	}

	tok, err := p.cfg.Exchange(ctx, cb.code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return tok.AccessToken, nil
}

// HandleCallback is the redirect target of the consent page.
func (p *OAuthProvider) HandleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := q.Get("state")

	p.mu.Lock()
	ch, ok := p.pending[state]
	p.mu.Unlock()
	if !ok {
		http.Error(w, ErrUnknownState.Error(), http.StatusBadRequest)
		return
	}

	cb := callback{code: q.Get("code")}
	if e := q.Get("error"); e != "" {
		cb = callback{err: fmt.Errorf("%w: %s", ErrConsentDenied, e)}
	} else if cb.code == "" {
		cb = callback{err: fmt.Errorf("%w: missing authorization code", ErrConsentDenied)}
	}

	select {
	case ch <- cb:
	default:
		// a callback for this state was already delivered
	}

	logger.FromContext(r.Context(), p.log).Info("oauth callback received", zap.Bool("denied", cb.err != nil))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if cb.err != nil {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprintln(w, "Authorization was not granted. You can close this window.")
		return
	}
	fmt.Fprintln(w, "Authorization complete. You can close this window.")
}
