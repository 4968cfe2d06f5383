package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/clients"
	"github.com/jsamuelsen/quote-catalog/internal/domain"
)

// maxErrorBody bounds how much of a rejection is read for its message.
const maxErrorBody = 4 << 10

// deliveryFailure maps an error from the client, where no usable response
// came back, to domain.ErrUnavailable. The event is never the caller's fault.
func deliveryFailure(receiver, eventType string, err error) error {
	var reason string

	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		reason = "circuit breaker open during publish " + eventType
	case errors.Is(err, clients.ErrRateLimited):
		reason = "rate limit exceeded"
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		reason = "max retries exceeded during publish " + eventType
	default:
		reason = fmt.Sprintf("publish %s failed: %v", eventType, err)
	}

	return domain.NewUnavailableError(receiver, reason)
}

// rejection maps a non-2xx answer from the receiver to a domain error and
// returns nil for success. The receiver's own message is preferred when its
// body carries one.
func rejection(receiver, eventType string, resp *http.Response) error {
	if resp == nil {
		return domain.NewUnavailableError(receiver, "no response received")
	}

	code := resp.StatusCode
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	message := receiverMessage(resp.Body)
	if message == "" {
		message = fmt.Sprintf("publish %s failed with status %d", eventType, code)
	}

	switch {
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return domain.NewForbiddenError("publish "+eventType, message)
	case code == http.StatusTooManyRequests:
		return domain.NewUnavailableError(receiver, "rate limit exceeded")
	case code >= http.StatusInternalServerError:
		return domain.NewUnavailableError(receiver, message)
	default:
		return domain.NewValidationError("event", message)
	}
}

// receiverMessage reads {"error":{"message":...}} or {"message":...}.
// Anything else yields "".
func receiverMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}

	if err := json.NewDecoder(io.LimitReader(body, maxErrorBody)).Decode(&payload); err != nil {
		return ""
	}

	if payload.Error.Message != "" {
		return payload.Error.Message
	}

	return payload.Message
}
