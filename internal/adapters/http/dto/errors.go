// Package dto holds the JSON shapes of the catalog API and the mapping from
// domain errors onto its error envelope.
package dto

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/platform/logging"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail carries a stable Code for clients to branch on and a Message
// for people. Details maps field names to problems on validation failures.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Error codes. Each maps to exactly one HTTP status, see HTTPStatusFromCode.
const (
	// ErrorCodeNotFound indicates the requested resource was not found.
	ErrorCodeNotFound = "NOT_FOUND"

	// ErrorCodeEmptyCollection indicates a pick was requested from an empty catalog.
	ErrorCodeEmptyCollection = "EMPTY_COLLECTION"

	// ErrorCodeInvalidReference indicates a write referenced a missing author or topic.
	ErrorCodeInvalidReference = "INVALID_REFERENCE"

	// ErrorCodeInvalidSortKey indicates an unknown ordering was requested.
	ErrorCodeInvalidSortKey = "INVALID_SORT_KEY"

	// ErrorCodeConflict indicates a state conflict (duplicate, still referenced).
	ErrorCodeConflict = "CONFLICT"

	// ErrorCodeValidation indicates request validation failed.
	ErrorCodeValidation = "VALIDATION_ERROR"

	// ErrorCodeForbidden indicates the operation is not permitted.
	ErrorCodeForbidden = "FORBIDDEN"

	// ErrorCodeUnauthorized indicates authentication is required.
	ErrorCodeUnauthorized = "UNAUTHORIZED"

	// ErrorCodeUnavailable indicates a dependency is unavailable.
	ErrorCodeUnavailable = "SERVICE_UNAVAILABLE"

	// ErrorCodeInternal indicates an internal server error.
	ErrorCodeInternal = "INTERNAL_ERROR"

	// ErrorCodeTimeout indicates the request timed out.
	ErrorCodeTimeout = "TIMEOUT"

	// ErrorCodeBadRequest indicates the request was malformed.
	ErrorCodeBadRequest = "BAD_REQUEST"

	// ErrorCodePayloadTooLarge indicates the request body exceeds the server limit.
	ErrorCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

var statusByCode = map[string]int{
	ErrorCodeNotFound:         http.StatusNotFound,
	ErrorCodeEmptyCollection:  http.StatusNotFound,
	ErrorCodeConflict:         http.StatusConflict,
	ErrorCodeInvalidReference: http.StatusUnprocessableEntity,
	ErrorCodeValidation:       http.StatusBadRequest,
	ErrorCodeBadRequest:       http.StatusBadRequest,
	ErrorCodeInvalidSortKey:   http.StatusBadRequest,
	ErrorCodeForbidden:        http.StatusForbidden,
	ErrorCodeUnauthorized:     http.StatusUnauthorized,
	ErrorCodeUnavailable:      http.StatusServiceUnavailable,
	ErrorCodeTimeout:          http.StatusGatewayTimeout,
	ErrorCodePayloadTooLarge:  http.StatusRequestEntityTooLarge,
}

// domainCodes is checked in order. The catalog specific sentinels come
// before the generic ones they might also wrap.
var domainCodes = []struct {
	target error
	code   string
}{
	{domain.ErrEmptyCollection, ErrorCodeEmptyCollection},
	{domain.ErrInvalidReference, ErrorCodeInvalidReference},
	{domain.ErrInvalidSortKey, ErrorCodeInvalidSortKey},
	{domain.ErrNotFound, ErrorCodeNotFound},
	{domain.ErrConflict, ErrorCodeConflict},
	{domain.ErrValidation, ErrorCodeValidation},
	{domain.ErrForbidden, ErrorCodeForbidden},
	{domain.ErrUnavailable, ErrorCodeUnavailable},
}

// NewErrorResponse builds an envelope without details.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// NewErrorResponseWithDetails builds an envelope with per-field details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}}
}

// WithTraceID sets TraceID and returns e.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode returns the status for code, 500 for unknown codes.
func HTTPStatusFromCode(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}

	return http.StatusInternalServerError
}

// MapDomainError picks the status and envelope for err. Errors outside the
// domain vocabulary become a 500 with a generic message so internals never
// leak to clients.
func MapDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	for _, m := range domainCodes {
		if !errors.Is(err, m.target) {
			continue
		}

		resp := NewErrorResponse(m.code, err.Error())

		var fieldErr *domain.ValidationError
		if m.code == ErrorCodeValidation && errors.As(err, &fieldErr) && fieldErr.Field != "" {
			resp.Error.Details = map[string]string{fieldErr.Field: fieldErr.Message}
		}

		return HTTPStatusFromCode(m.code), resp
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, NewErrorResponse(ErrorCodeTimeout, "request timeout exceeded")
	}

	return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
}

// TraceID returns the OpenTelemetry trace ID of the request, or "".
func TraceID(c *gin.Context) string {
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return ""
}

// HandleError writes the envelope for err. A 500 is logged with the error
// the client does not get to see.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	resp.TraceID = TraceID(c)

	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "internal error",
			slog.Any("error", err),
			slog.String("trace_id", resp.TraceID),
		)
	}

	c.JSON(status, resp)
}

// RespondWithErrorCode writes an envelope for failures the adapter detects
// itself, such as a malformed path parameter.
func RespondWithErrorCode(c *gin.Context, code, message string) {
	c.JSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(TraceID(c)))
}

// RespondWithBindingError answers 400 for a body or query that failed to
// bind, with field details when the validator produced them.
func RespondWithBindingError(c *gin.Context, err error) {
	details := ValidationErrors(err)
	if len(details) == 0 {
		RespondWithErrorCode(c, ErrorCodeBadRequest, err.Error())
		return
	}

	resp := NewErrorResponseWithDetails(ErrorCodeValidation, "request validation failed", details)
	c.JSON(http.StatusBadRequest, resp.WithTraceID(TraceID(c)))
}

// AbortWithErrorCode writes the envelope and stops the handler chain.
func AbortWithErrorCode(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(TraceID(c)))
}
