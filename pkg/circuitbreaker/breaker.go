package circuitbreaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ErrOpen is returned when the breaker rejects a call without running it.
var ErrOpen = errors.New("circuit breaker is open")

// Settings configures a Breaker.
type Settings struct {
	Name string
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before letting a probe through.
	OpenTimeout time.Duration
	Logger      *zap.Logger
}

// Breaker guards calls to a flaky dependency.
type Breaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

func New[T any](s Settings) *Breaker[T] {
	if s.MaxFailures == 0 {
		s.MaxFailures = 3
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	maxFailures := s.MaxFailures

	cb := gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// a caller giving up is not a dependency failure
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &Breaker[T]{cb: cb}
}

// Execute runs fn through the breaker. Rejections are reported as ErrOpen.
func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	v, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, ErrOpen
	}
	return v, err
}

// State reports "closed", "half-open" or "open".
func (b *Breaker[T]) State() string {
	return b.cb.State().String()
}
