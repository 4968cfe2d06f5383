// Package clients provides the outbound HTTP client used for webhook delivery.
package clients

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrCircuitOpen means the breaker refused the call without contacting
	// the receiver.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last attempt's error once the retry
	// budget is spent.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrRateLimited wraps a 429 the client stopped retrying, either because
	// the budget ran out or the receiver asked for a longer wait than
	// Retry.MaxInterval.
	ErrRateLimited = errors.New("rate limited")
)

// StatusError is a response the client treats as a failed attempt:
// any 5xx, or a 429.
type StatusError struct {
	StatusCode int

	// RetryAfter is the receiver's requested delay, zero when absent.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	if e.StatusCode == http.StatusTooManyRequests {
		return fmt.Sprintf("rate limited: %d (retry after %s)", e.StatusCode, e.RetryAfter)
	}

	return fmt.Sprintf("server error: %d", e.StatusCode)
}
