package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/jsamuelsen/quote-catalog/internal/platform/config"
	"github.com/jsamuelsen/quote-catalog/internal/platform/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddleware_TraceIDOnResponseAndLogger(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), base))
		c.Next()
	})
	r.Use(otelgin.Middleware("quote-catalog", otelgin.WithTracerProvider(tp)))
	r.Use(Middleware("quote-catalog"))
	r.GET("/api/v1/quotes/:id", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info("served quote")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/quotes/2", nil))

	require.Equal(t, http.StatusOK, w.Code)

	traceID := w.Header().Get(HeaderTraceID)
	require.Len(t, traceID, 32)
	assert.Contains(t, buf.String(), `"trace_id":"`+traceID+`"`)
}

func TestMiddleware_NoSpanNoHeader(t *testing.T) {
	r := gin.New()
	r.Use(Middleware("quote-catalog"))
	r.GET("/-/live", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/-/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(HeaderTraceID))
}

func TestSurface(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{route: "/api/v1/quotes", want: "public"},
		{route: "/api/v1/quotes/:id/like", want: "public"},
		{route: "/api/v1/admin/quotes/:id", want: "admin"},
		{route: "/-/ready", want: "internal"},
		{route: unmatchedRoute, want: unmatchedRoute},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			assert.Equal(t, tt.want, surface(tt.route))
		})
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{rate: 1, want: "ParentBased{root:AlwaysOnSampler,"},
		{rate: 0, want: "ParentBased{root:AlwaysOffSampler,"},
		{rate: 0.25, want: "ParentBased{root:TraceIDRatioBased{0.25},"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(sampler(tt.rate).Description(), tt.want), sampler(tt.rate).Description())
		})
	}
}

func TestNew_DisabledIsNoop(t *testing.T) {
	cfg := FromConfig(
		config.TelemetryConfig{Enabled: false, ServiceName: "quote-catalog", SamplingRate: 1},
		config.AppConfig{Version: "1.2.3", Environment: "test"},
	)

	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "test", cfg.Environment)

	p, err := New(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, p.Shutdown(context.Background()))
}
