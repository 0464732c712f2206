package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b := New[string](Settings{Name: "test", MaxFailures: 2, OpenTimeout: time.Minute})

	calls := 0
	fail := func() (string, error) {
		calls++
		return "", errBoom
	}

	_, err := b.Execute(fail)
	require.ErrorIs(t, err, errBoom)
	_, err = b.Execute(fail)
	require.ErrorIs(t, err, errBoom)

	_, err = b.Execute(fail)
	require.ErrorIs(t, err, ErrOpen)
	assert.Equal(t, 2, calls, "open breaker must not run the call")
	assert.Equal(t, "open", b.State())
}

func TestBreaker_SuccessPassesThrough(t *testing.T) {
	b := New[int](Settings{Name: "ok"})

	v, err := b.Execute(func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, "closed", b.State())
}

func TestBreaker_CancellationDoesNotTrip(t *testing.T) {
	b := New[int](Settings{Name: "cancel", MaxFailures: 1})

	_, err := b.Execute(func() (int, error) { return 0, context.Canceled })
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "closed", b.State())
}

func TestBreaker_HalfOpenAfterTimeout(t *testing.T) {
	b := New[int](Settings{Name: "recover", MaxFailures: 1, OpenTimeout: 20 * time.Millisecond})

	_, err := b.Execute(func() (int, error) { return 0, errBoom })
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, "open", b.State())

	time.Sleep(40 * time.Millisecond)

	v, err := b.Execute(func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, "closed", b.State())
}
