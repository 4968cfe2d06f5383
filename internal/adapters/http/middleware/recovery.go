package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-catalog/internal/platform/logging"
)

// Recovery turns a handler panic into a 500 INTERNAL_ERROR carrying the
// trace ID, and logs the panic value with its stack. It must be the first
// middleware so it covers the rest of the chain.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				recovered(c, logger, r)
			}
		}()

		c.Next()
	}
}

func recovered(c *gin.Context, logger *slog.Logger, r any) {
	ctx := c.Request.Context()
	traceID := dto.TraceID(c)

	logging.FromContextOr(ctx, logger).ErrorContext(ctx, "panic recovered",
		slog.String("panic", fmt.Sprint(r)),
		slog.String("route", c.FullPath()),
		slog.String("method", c.Request.Method),
		slog.String("trace_id", traceID),
		slog.String("stack", string(debug.Stack())),
	)

	// Status and headers may already be on the wire.
	if c.Writer.Written() {
		c.Abort()
		return
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrorCodeInternal, "an internal error occurred").WithTraceID(traceID))
}
