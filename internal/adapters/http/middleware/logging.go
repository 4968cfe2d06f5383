package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-catalog/internal/platform/logging"
)

// healthPrefix is where the probes and metrics live.
const healthPrefix = "/-/"

// Logging writes one access record per request once the handler returns.
// 5xx responses log at error, 4xx at warn and the rest at info. The record
// goes through the request logger, so it carries the request, correlation
// and session tags added by earlier middleware. Probe paths and any
// skipPrefixes are not logged.
func Logging(logger *slog.Logger, skipPrefixes ...string) gin.HandlerFunc {
	skip := append([]string{healthPrefix}, skipPrefixes...)

	return func(c *gin.Context) {
		if hasAnyPrefix(c.Request.URL.Path, skip) {
			c.Next()
			return
		}

		start := time.Now()

		c.Next()

		ctx := c.Request.Context()
		status := c.Writer.Status()
		elapsed := time.Since(start)

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", elapsed),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("client_ip", c.ClientIP()),
		}

		if q := c.Request.URL.RawQuery; q != "" {
			attrs = append(attrs, slog.String("query", q))
		}

		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		logging.FromContextOr(ctx, logger).LogAttrs(ctx, accessLevel(status), "request completed", attrs...)
	}
}

func accessLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
