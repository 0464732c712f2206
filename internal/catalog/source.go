// Package catalog reads the public product feed. Fetch never fails: any
// problem with the feed degrades to the bundled baseline catalog.
package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/pkg/circuitbreaker"
	"github.com/fjod/go_storefront/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// PlaceholderMarker in the feed URL means no feed has been set up yet.
	PlaceholderMarker = "PLACEHOLDER"

	DefaultPlaceholderDelay = 800 * time.Millisecond

	maxFeedBytes = 10 << 20
)

type Origin string

const (
	OriginFeed     Origin = "feed"
	OriginBaseline Origin = "baseline"
)

// Report describes how one Fetch was answered.
type Report struct {
	Origin   Origin
	Accepted int
	Skipped  []RowResult
	// Err is the absorbed failure when the baseline was served.
	Err error
	At  time.Time
}

// Fetcher is the read side used by the gateway.
type Fetcher interface {
	Fetch(ctx context.Context) []domain.Product
}

type Option func(*Source)

func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) { s.client = c }
}

func WithPlaceholderDelay(d time.Duration) Option {
	return func(s *Source) { s.placeholderDelay = d }
}

// WithReports delivers a Report per fetch. Sends never block: a full channel
// drops the report.
func WithReports(ch chan<- Report) Option {
	return func(s *Source) { s.reports = ch }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Source) { s.log = logger.OrNop(l) }
}

func WithBreaker(settings circuitbreaker.Settings) Option {
	return func(s *Source) { s.breakerSettings = settings }
}

type Source struct {
	feedURL          string
	client           *http.Client
	placeholderDelay time.Duration
	reports          chan<- Report
	log              *zap.Logger
	breakerSettings  circuitbreaker.Settings
	breaker          *circuitbreaker.Breaker[[]byte]
	group            singleflight.Group

	mu   sync.RWMutex
	last Report
}

func NewSource(feedURL string, opts ...Option) *Source {
	s := &Source{
		feedURL:          strings.TrimSpace(feedURL),
		placeholderDelay: DefaultPlaceholderDelay,
		log:              zap.NewNop(),
		breakerSettings:  circuitbreaker.Settings{Name: "catalog-feed"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	if s.breakerSettings.Logger == nil {
		s.breakerSettings.Logger = s.log
	}
	s.breaker = circuitbreaker.New[[]byte](s.breakerSettings)
	return s
}

// Configured reports whether a real feed URL is set.
func (s *Source) Configured() bool {
	return s.feedURL != "" && !strings.Contains(s.feedURL, PlaceholderMarker)
}

// Fetch returns the current catalog in feed order. It never returns an empty
// slice; the caller owns the result.
func (s *Source) Fetch(ctx context.Context) []domain.Product {
	v, _, _ := s.group.Do("catalog", func() (interface{}, error) {
		return s.fetch(ctx), nil
	})
	shared := v.([]domain.Product)

	out := make([]domain.Product, len(shared))
	for i, p := range shared {
		out[i] = p.Clone()
	}
	return out
}

// LastReport returns the report of the most recent completed fetch.
func (s *Source) LastReport() Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *Source) fetch(ctx context.Context) []domain.Product {
	log := logger.FromContext(ctx, s.log)

	if !s.Configured() {
		select {
		case <-time.After(s.placeholderDelay):
		case <-ctx.Done():
		}
		s.record(Report{Origin: OriginBaseline, At: time.Now()})
		return Baseline()
	}

	body, err := s.breaker.Execute(func() ([]byte, error) {
		return s.download(ctx)
	})
	if err != nil {
		return s.fallback(log, err, nil)
	}

	results, err := Parse(bytes.NewReader(body))
	if err != nil {
		return s.fallback(log, err, nil)
	}

	skipped := Skipped(results)
	for _, r := range skipped {
		log.Warn("skipping catalog row", zap.Int("line", r.Line), zap.String("reason", r.Reason))
	}

	products := Accepted(results)
	if len(products) == 0 {
		return s.fallback(log, ErrNoValidRows, skipped)
	}

	s.record(Report{Origin: OriginFeed, Accepted: len(products), Skipped: skipped, At: time.Now()})
	return products
}

func (s *Source) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, &FetchError{URL: s.feedURL, Err: err}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: s.feedURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        s.feedURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, &FetchError{URL: s.feedURL, Err: err}
	}
	return body, nil
}

func (s *Source) fallback(log *zap.Logger, err error, skipped []RowResult) []domain.Product {
	if errors.Is(err, circuitbreaker.ErrOpen) {
		log.Debug("catalog feed breaker open, serving baseline")
	} else {
		log.Warn("catalog feed unavailable, serving baseline", zap.Error(err))
	}
	s.record(Report{Origin: OriginBaseline, Skipped: skipped, Err: err, At: time.Now()})
	return Baseline()
}

func (s *Source) record(r Report) {
	s.mu.Lock()
	s.last = r
	s.mu.Unlock()

	if s.reports == nil {
		return
	}
	select {
	case s.reports <- r:
	default:
	}
}
