package clients

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sony/gobreaker/v2"

	"github.com/jsamuelsen/quote-catalog/internal/platform/config"
)

// newCircuitBreaker maps the circuit breaker config onto gobreaker.
//
// State transitions:
//   - Closed → Open: after MaxFailures consecutive failed deliveries
//   - Open → HalfOpen: after Timeout has passed
//   - HalfOpen → Closed: after HalfOpenLimit consecutive successes
//   - HalfOpen → Open: on any failure
//
// One call is a whole retry sequence, so a delivery that succeeds on its
// second attempt counts as a success. Rate limiting and caller cancellation
// say nothing about the receiver's health and never count as failures.
func newCircuitBreaker(name string, cfg config.CircuitBreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[*http.Response] {
	maxFailures := uint32(max(cfg.MaxFailures, 1)) //nolint:gosec // bounded by config validation
	halfOpen := uint32(max(cfg.HalfOpenLimit, 1))  //nolint:gosec // bounded by config validation

	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:         name,
		MaxRequests:  halfOpen,
		Timeout:      cfg.Timeout,
		IsSuccessful: countsAsSuccess,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
}

func countsAsSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
