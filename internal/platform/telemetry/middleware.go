package telemetry

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-catalog/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/quote-catalog/internal/platform/telemetry"

	// HeaderTraceID echoes the active trace on every response.
	HeaderTraceID = "X-Trace-ID"

	// unmatchedRoute labels requests gin could not route, keeping raw
	// paths such as /api/v1/quotes/12345 out of metric labels.
	unmatchedRoute = "unmatched"
)

// Metrics holds HTTP server instruments.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
}

// NewMetrics creates HTTP server instruments on the global meter.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	var (
		m   Metrics
		err error
	)

	m.requestDuration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5),
	)
	if err != nil {
		return nil, err
	}

	m.requestTotal, err = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	m.activeRequests, err = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// TracingMiddleware starts a server span per request.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// Middleware records request metrics, echoes the trace ID in X-Trace-ID
// and adds it to the request logger. It must run after TracingMiddleware.
func Middleware(_ string) gin.HandlerFunc {
	metrics, err := NewMetrics()
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		start := time.Now()
		ctx := c.Request.Context()

		if sc := trace.SpanFromContext(ctx).SpanContext(); sc.HasTraceID() {
			traceID := sc.TraceID().String()
			c.Header(HeaderTraceID, traceID)
			c.Request = c.Request.WithContext(logging.With(ctx, slog.String(logging.KeyTraceID, traceID)))
		}

		route := routeLabel(c)
		base := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
		}

		if metrics != nil {
			metrics.activeRequests.Add(ctx, 1, metric.WithAttributes(base...))
			defer metrics.activeRequests.Add(ctx, -1, metric.WithAttributes(base...))
		}

		c.Next()

		if metrics == nil {
			return
		}

		attrs := metric.WithAttributes(append(base,
			attribute.Int("http.status_code", c.Writer.Status()),
			attribute.String("api.surface", surface(route)),
		)...)

		metrics.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		metrics.requestTotal.Add(ctx, 1, attrs)
	}
}

func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}

	return unmatchedRoute
}

// surface groups routes into public, admin and internal traffic.
func surface(route string) string {
	switch {
	case strings.HasPrefix(route, "/api/v1/admin"):
		return "admin"
	case strings.HasPrefix(route, "/api/"):
		return "public"
	case strings.HasPrefix(route, "/-/"):
		return "internal"
	default:
		return unmatchedRoute
	}
}
