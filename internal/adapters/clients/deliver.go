package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-catalog/internal/platform/logging"
)

// Outcome labels on http.client.request.total.
const (
	outcomeDelivered   = "delivered"
	outcomeRejected    = "rejected"
	outcomeRateLimited = "rate_limited"
	outcomeFailed      = "failed"
	outcomeCanceled    = "canceled"
	outcomeCircuitOpen = "circuit_open"
)

// Do delivers req. A 2xx or a 4xx other than 429 comes back as a response
// for the caller to interpret. Everything else is retried until the budget
// runs out and then reported as an error wrapping ErrMaxRetriesExceeded or
// ErrRateLimited. Requests with a body must set GetBody; Post does.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()

	ctx, span := c.tracer.Start(ctx, "deliver "+c.serviceName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("peer.service", c.serviceName),
		),
	)
	defer span.End()

	c.stampHeaders(ctx, req)

	logger := logging.FromContextOr(ctx, c.logger).With(
		slog.String("downstream", c.serviceName),
		slog.String("method", req.Method),
	)

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.retryLoop(ctx, req, logger)
	})

	outcome := c.outcome(resp, err)
	c.outcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("peer.service", c.serviceName),
		attribute.String("outcome", outcome),
	))
	c.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("peer.service", c.serviceName),
		attribute.String("outcome", outcome),
	))

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		span.SetStatus(codes.Error, ErrCircuitOpen.Error())
		logger.WarnContext(ctx, "delivery blocked by circuit breaker")

		return nil, ErrCircuitOpen

	case err != nil:
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "delivery failed",
			slog.String("outcome", outcome),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)

		return nil, err
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(resp.StatusCode))
	}

	logger.Log(ctx, logging.LevelTrace, "delivery complete",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	return resp, nil
}

// retryLoop runs the attempts for one delivery and wraps a final failure
// in the sentinel the caller matches on.
func (c *Client) retryLoop(ctx context.Context, req *http.Request, logger *slog.Logger) (*http.Response, error) {
	attempt := 0

	resp, err := backoff.Retry(ctx, func() (*http.Response, error) {
		attempt++

		return c.attempt(ctx, req, attempt)
	},
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(uint(max(c.retry.MaxAttempts, 1))), //nolint:gosec // bounded by config validation
		backoff.WithNotify(func(err error, wait time.Duration) {
			logger.DebugContext(ctx, "retrying delivery",
				slog.Int("attempt", attempt+1),
				slog.Duration("wait", wait),
				slog.Any("error", err),
			)
		}),
	)
	if err == nil {
		return resp, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("delivery abandoned after %d attempts: %w", attempt, ctxErr)
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: %w", ErrRateLimited, err)
	}

	return nil, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, err)
}

// attempt sends req once and sorts the result into success, retryable
// failure or permanent failure for backoff.Retry.
func (c *Client) attempt(ctx context.Context, req *http.Request, n int) (*http.Response, error) {
	if n > 1 {
		if err := rewind(req); err != nil {
			return nil, backoff.Permanent(err)
		}
	}

	if c.sign != nil {
		c.sign(req)
	}

	resp, err := c.http.Do(req.WithContext(ctx))

	result := "error"
	if resp != nil {
		result = strconv.Itoa(resp.StatusCode)
	}

	c.attempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("peer.service", c.serviceName),
		attribute.String("result", result),
	))

	if err != nil {
		if isRetryableError(err) {
			return nil, err
		}

		return nil, backoff.Permanent(err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		_ = resp.Body.Close()
		return nil, c.rateLimited(resp)

	case resp.StatusCode >= http.StatusInternalServerError:
		_ = resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	return resp, nil
}

// rateLimited honours a Retry-After in seconds when it fits within
// Retry.MaxInterval and gives up at once when it does not.
func (c *Client) rateLimited(resp *http.Response) error {
	statusErr := &StatusError{StatusCode: resp.StatusCode}

	seconds, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || seconds < 0 {
		return statusErr
	}

	statusErr.RetryAfter = time.Duration(seconds) * time.Second

	if c.retry.MaxInterval > 0 && statusErr.RetryAfter > c.retry.MaxInterval {
		return backoff.Permanent(statusErr)
	}

	return errors.Join(statusErr, backoff.RetryAfter(seconds))
}

func (c *Client) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.RandomizationFactor = c.retry.JitterFactor

	if c.retry.InitialInterval > 0 {
		b.InitialInterval = c.retry.InitialInterval
	}

	if c.retry.MaxInterval > 0 {
		b.MaxInterval = c.retry.MaxInterval
	}

	if c.retry.Multiplier > 1 {
		b.Multiplier = c.retry.Multiplier
	}

	return b
}

// stampHeaders carries request, correlation and trace identity to the
// receiver.
func (c *Client) stampHeaders(ctx context.Context, req *http.Request) {
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}

	if id := middleware.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderCorrelationID, id)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
}

func (c *Client) outcome(resp *http.Response, err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return outcomeCircuitOpen
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeCanceled
	case errors.Is(err, ErrRateLimited):
		return outcomeRateLimited
	case err != nil:
		return outcomeFailed
	case resp.StatusCode >= http.StatusBadRequest:
		return outcomeRejected
	default:
		return outcomeDelivered
	}
}

func rewind(req *http.Request) error {
	if req.GetBody == nil {
		return nil
	}

	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("rewinding request body: %w", err)
	}

	req.Body = body

	return nil
}

// isRetryableError reports whether a transport error is worth another
// attempt: timeouts and connection level failures are, cancellation is not.
func isRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}
