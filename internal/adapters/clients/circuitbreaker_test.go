package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-catalog/internal/platform/config"
)

var errDownstream = errors.New("downstream failed")

func fail() (*http.Response, error)    { return nil, errDownstream }
func succeed() (*http.Response, error) { return &http.Response{StatusCode: http.StatusOK}, nil }

func testBreaker(maxFailures, halfOpen int, timeout time.Duration) *gobreaker.CircuitBreaker[*http.Response] {
	return newCircuitBreaker("test", config.CircuitBreakerConfig{
		MaxFailures:   maxFailures,
		Timeout:       timeout,
		HalfOpenLimit: halfOpen,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := testBreaker(3, 1, time.Minute)

	for range 2 {
		_, _ = cb.Execute(fail)
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())

	_, _ = cb.Execute(fail)
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Execute(succeed)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := testBreaker(3, 1, time.Minute)

	_, _ = cb.Execute(fail)
	_, _ = cb.Execute(fail)
	_, err := cb.Execute(succeed)
	require.NoError(t, err)

	_, _ = cb.Execute(fail)
	_, _ = cb.Execute(fail)

	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	tests := []struct {
		name  string
		probe []func() (*http.Response, error)
		want  gobreaker.State
	}{
		{name: "successes close", probe: []func() (*http.Response, error){succeed, succeed}, want: gobreaker.StateClosed},
		{name: "failure reopens", probe: []func() (*http.Response, error){fail}, want: gobreaker.StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := testBreaker(1, 2, 20*time.Millisecond)

			_, _ = cb.Execute(fail)
			require.Equal(t, gobreaker.StateOpen, cb.State())

			time.Sleep(30 * time.Millisecond)
			assert.Equal(t, gobreaker.StateHalfOpen, cb.State())

			for _, req := range tt.probe {
				_, _ = cb.Execute(req)
			}

			assert.Equal(t, tt.want, cb.State())
		})
	}
}

func TestCircuitBreaker_ZeroConfigStillTrips(t *testing.T) {
	cb := testBreaker(0, 0, time.Minute)

	_, _ = cb.Execute(fail)

	assert.Equal(t, gobreaker.StateOpen, cb.State())
}

func TestCountsAsSuccess(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: true},
		{name: "rate limited", err: fmt.Errorf("%w: slow down", ErrRateLimited), want: true},
		{name: "caller canceled", err: fmt.Errorf("abandoned: %w", context.Canceled), want: true},
		{name: "retries exhausted", err: fmt.Errorf("%w: boom", ErrMaxRetriesExceeded), want: false},
		{name: "transport", err: errDownstream, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countsAsSuccess(tt.err))
		})
	}
}
