package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-catalog/internal/mocks"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

func newChecker(t *testing.T, name string, err error) *mocks.MockHealthChecker {
	t.Helper()

	checker := mocks.NewMockHealthChecker(t)
	checker.EXPECT().Name().Return(name).Maybe()
	checker.EXPECT().Check(mock.Anything).Return(err).Maybe()

	return checker
}

func healthRouter(h *HealthHandler) *gin.Engine {
	router := gin.New()
	h.RegisterOpsRoutes(router.Group("/-"))

	return router
}

func TestNewBuildInfo(t *testing.T) {
	bi := NewBuildInfo("quote-catalog", "test", "1.0.0", "abc123", "2024-01-15T10:00:00Z")

	assert.Equal(t, "quote-catalog", bi.Service)
	assert.Equal(t, "test", bi.Environment)
	assert.Equal(t, "1.0.0", bi.Version)
	assert.Equal(t, "abc123", bi.Commit)
	assert.Equal(t, runtime.Version(), bi.GoVersion)
}

func TestHealthHandler_Liveness(t *testing.T) {
	handler := NewHealthHandler(ports.NewHealthRegistry(), BuildInfo{}, nil)

	w := do(healthRouter(handler), http.MethodGet, "/-/live", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestHealthHandler_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		store      error
		webhook    error
		wantStatus int
		wantBody   string
	}{
		{name: "store and webhook healthy", wantStatus: http.StatusOK, wantBody: `"status":"healthy"`},
		{
			name:       "webhook down degrades",
			webhook:    errors.New("connection refused"),
			wantStatus: http.StatusOK,
			wantBody:   `"status":"degraded"`,
		},
		{
			name:       "store down",
			store:      errors.New("database is locked"),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "database is locked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := ports.NewHealthRegistry()
			require.NoError(t, registry.Register(newChecker(t, "catalog-store", tt.store)))
			require.NoError(t, registry.Register(newChecker(t, "share-webhook", tt.webhook), ports.Optional()))

			handler := NewHealthHandler(registry, BuildInfo{}, nil)

			w := do(healthRouter(handler), http.MethodGet, "/-/ready", nil, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestHealthHandler_ReadinessWithoutChecks(t *testing.T) {
	handler := NewHealthHandler(ports.NewHealthRegistry(), BuildInfo{}, nil)

	w := do(healthRouter(handler), http.MethodGet, "/-/ready", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestHealthHandler_Build(t *testing.T) {
	buildInfo := BuildInfo{
		Service:   "quote-catalog",
		Version:   "1.2.3",
		Commit:    "def456",
		BuildTime: "2024-02-01T12:00:00Z",
		GoVersion: "go1.25.0",
	}

	handler := NewHealthHandler(ports.NewHealthRegistry(), buildInfo, nil)

	w := do(healthRouter(handler), http.MethodGet, "/-/build", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp buildResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, buildInfo, resp.BuildInfo)
	assert.False(t, resp.StartedAt.IsZero())
	assert.NotEmpty(t, resp.Uptime)
}

func TestHealthHandler_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quote_catalog_test_total",
		Help: "Test counter.",
	})
	reg.MustRegister(counter)
	counter.Inc()

	handler := NewHealthHandler(ports.NewHealthRegistry(), BuildInfo{}, reg)

	w := do(healthRouter(handler), http.MethodGet, "/-/metrics", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "quote_catalog_test_total 1")
}

func TestHealthHandler_RegisterOpsRoutes(t *testing.T) {
	handler := NewHealthHandler(ports.NewHealthRegistry(), BuildInfo{}, nil)

	routes := make(map[string]bool)
	for _, r := range healthRouter(handler).Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, expected := range []string{"GET /-/live", "GET /-/ready", "GET /-/build", "GET /-/metrics"} {
		assert.True(t, routes[expected], "missing route: %s", expected)
	}
}
