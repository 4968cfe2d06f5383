// Package middleware provides the gin middleware shared by the public and
// admin APIs.
package middleware

import (
	"context"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/quote-catalog/internal/platform/logging"
)

// Trace headers. A request ID names one hop; a correlation ID follows a
// whole interaction, such as a share, out to the webhook receiver.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

// Gin context keys.
const (
	ContextKeyRequestID     = "request_id"
	ContextKeyCorrelationID = "correlation_id"
)

// validID bounds what a caller may send as an ID. Anything else is replaced
// so it never reaches logs or the webhook verbatim.
var validID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

type idKey int

const (
	requestIDKey idKey = iota
	correlationIDKey
)

type traceID struct {
	header  string
	ginKey  string
	ctxKey  idKey
	tagLogs func(context.Context, string) context.Context
}

// RequestID accepts a well-formed X-Request-ID or generates a UUID. The ID
// is echoed on the response, stored under ContextKeyRequestID, placed in the
// request context for outbound clients and added to the request logger.
func RequestID() gin.HandlerFunc {
	return traceID{
		header:  HeaderRequestID,
		ginKey:  ContextKeyRequestID,
		ctxKey:  requestIDKey,
		tagLogs: logging.WithRequestID,
	}.middleware()
}

// CorrelationID is RequestID for X-Correlation-ID. An upstream value is kept
// so one interaction can be followed across services.
func CorrelationID() gin.HandlerFunc {
	return traceID{
		header:  HeaderCorrelationID,
		ginKey:  ContextKeyCorrelationID,
		ctxKey:  correlationIDKey,
		tagLogs: logging.WithCorrelationID,
	}.middleware()
}

func (t traceID) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(t.header)
		if !validID.MatchString(id) {
			id = uuid.NewString()
		}

		c.Set(t.ginKey, id)
		c.Header(t.header, id)

		ctx := context.WithValue(c.Request.Context(), t.ctxKey, id)
		c.Request = c.Request.WithContext(t.tagLogs(ctx, id))

		c.Next()
	}
}

// GetRequestID returns the request ID set by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(ContextKeyRequestID)
}

// GetCorrelationID returns the correlation ID set by CorrelationID, or "".
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(ContextKeyCorrelationID)
}

// RequestIDFromContext returns the request ID carried by ctx. Outbound
// clients forward it. A nil ctx yields "".
func RequestIDFromContext(ctx context.Context) string {
	return idFrom(ctx, requestIDKey)
}

// CorrelationIDFromContext returns the correlation ID carried by ctx.
func CorrelationIDFromContext(ctx context.Context) string {
	return idFrom(ctx, correlationIDKey)
}

// ContextWithRequestID stores a request ID in ctx.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ContextWithCorrelationID stores a correlation ID in ctx.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

func idFrom(ctx context.Context, key idKey) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(key).(string)

	return id
}
