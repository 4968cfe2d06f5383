package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/flags"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/memory"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/seed"
	"github.com/jsamuelsen/quote-catalog/internal/app"
	"github.com/jsamuelsen/quote-catalog/internal/platform/config"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func testServerConfig(maxRequestSize int64) *config.ServerConfig {
	return &config.ServerConfig{
		Host:           "127.0.0.1",
		Port:           0,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    30 * time.Second,
		MaxRequestSize: maxRequestSize,
	}
}

// newCatalogRouter builds the production middleware chain and routes over a
// seeded in-memory catalog.
func newCatalogRouter(t *testing.T, timeout time.Duration) *gin.Engine {
	t.Helper()

	store := memory.NewCatalogStore()
	snap, err := seed.Snapshot()
	require.NoError(t, err)
	require.NoError(t, store.Restore(context.Background(), snap))

	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(store))

	ff := flags.NewStatic()

	engine := gin.New()
	SetupRouter(engine, RouterConfig{
		Logger: discardLogger,
		AuthConfig: &config.AuthConfig{
			SubjectHeader: "X-User-ID",
			RolesHeader:   "X-User-Roles",
			SessionHeader: "X-Session-ID",
			AdminRole:     "admin",
		},
		AppConfig:     &config.AppConfig{Name: "quote-catalog", Version: "test", Environment: "test"},
		HealthHandler: handlers.NewHealthHandler(registry, handlers.BuildInfo{Version: "test"}, nil),
		Catalog: handlers.NewCatalogHandler(app.NewCatalogService(app.CatalogServiceConfig{
			Store: store, Flags: ff, Logger: discardLogger,
		})),
		Engagement: handlers.NewEngagementHandler(app.NewEngagementService(app.EngagementServiceConfig{
			Store: store, Logger: discardLogger,
		})),
		Daily: handlers.NewDailyQuoteHandler(app.NewDailyQuoteService(app.DailyQuoteServiceConfig{
			Store: store, Daily: memory.NewDailyQuoteStore(), Logger: discardLogger,
		}), ff),
		Admin: handlers.NewAdminHandler(app.NewAdminService(app.AdminServiceConfig{
			Store: store, Logger: discardLogger,
		})),
		Transfer: handlers.NewTransferHandler(app.NewTransferService(app.TransferServiceConfig{
			Store: store, Logger: discardLogger,
		})),
		Timeout: timeout,
	})

	return engine
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	return w
}

func TestSetupRouter_Routes(t *testing.T) {
	routes := make(map[string]bool)
	for _, r := range newCatalogRouter(t, DefaultRequestTimeout).Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	expected := []string{
		"GET /-/live",
		"GET /-/ready",
		"GET /-/metrics",
		"GET /api/v1/quotes",
		"GET /api/v1/quotes/random",
		"GET /api/v1/quotes/daily",
		"GET /api/v1/quotes/daily/recent",
		"POST /api/v1/quotes/daily/reroll",
		"GET /api/v1/quotes/:id",
		"POST /api/v1/quotes/:id/like",
		"POST /api/v1/quotes/:id/bookmark",
		"POST /api/v1/quotes/:id/share",
		"GET /api/v1/me/engagement",
		"GET /api/v1/authors",
		"GET /api/v1/authors/:id",
		"GET /api/v1/topics",
		"GET /api/v1/topics/:id",
		"GET /api/v1/suggestions",
		"GET /api/v1/home",
		"GET /api/v1/admin/dashboard",
		"GET /api/v1/admin/quotes",
		"POST /api/v1/admin/quotes",
		"PUT /api/v1/admin/quotes/:id",
		"DELETE /api/v1/admin/quotes/:id",
		"POST /api/v1/admin/authors",
		"PUT /api/v1/admin/authors/:id",
		"DELETE /api/v1/admin/authors/:id",
		"POST /api/v1/admin/topics",
		"PUT /api/v1/admin/topics/:id",
		"DELETE /api/v1/admin/topics/:id",
		"POST /api/v1/admin/daily/reroll",
		"POST /api/v1/admin/import",
		"GET /api/v1/admin/export",
	}

	for _, route := range expected {
		assert.True(t, routes[route], "missing route: %s", route)
	}
}

func TestSetupRouter_Middleware(t *testing.T) {
	router := newCatalogRouter(t, DefaultRequestTimeout)

	t.Run("request id echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes/1", nil)
		req.Header.Set(middleware.HeaderRequestID, "req-42")

		w := serve(router, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "req-42", w.Header().Get(middleware.HeaderRequestID))
		assert.NotEmpty(t, w.Header().Get(middleware.HeaderCorrelationID))
	})

	t.Run("session header keys engagement", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/3/like", nil)
		req.Header.Set("X-Session-ID", "s-1")

		w := serve(router, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp dto.EngagementResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Liked)
	})

	t.Run("admin requires identity", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("readiness includes the store", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/-/ready", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "catalog-store")
	})
}

func TestSetupRouter_WithoutTimeout(t *testing.T) {
	router := newCatalogRouter(t, 0)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/home", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetupRouter_NilHandlers(t *testing.T) {
	engine := gin.New()

	require.NotPanics(t, func() {
		SetupRouter(engine, RouterConfig{
			Logger:    discardLogger,
			AppConfig: &config.AppConfig{Name: "quote-catalog"},
			Timeout:   DefaultRequestTimeout,
		})
	})

	w := serve(engine, httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServerNew(t *testing.T) {
	cfg := testServerConfig(1 << 20)

	srv := New(cfg, discardLogger)

	require.NotNil(t, srv)
	assert.NotNil(t, srv.Engine())
	assert.Equal(t, cfg, srv.Config())
	assert.Equal(t, "127.0.0.1:0", srv.Addr())
}

func TestServerRun(t *testing.T) {
	srv := New(testServerConfig(1<<20), discardLogger)
	srv.Engine().GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	ctx, cancel := context.WithCancel(context.Background())
	addrCh := make(chan net.Addr, 1)
	done := make(chan error, 1)

	go func() {
		done <- srv.Run(ctx, func(a net.Addr) { addrCh <- a })
	}()

	var addr net.Addr
	select {
	case addr = <-addrCh:
	case err := <-done:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for listener")
	}

	resp, err := http.Get("http://" + addr.String() + "/ping")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for server to drain")
	}
}

func TestServerRun_ListenError(t *testing.T) {
	cfg := testServerConfig(1 << 20)
	cfg.Host = "256.0.0.1"

	err := New(cfg, discardLogger).Run(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listening on")
}

func TestLimitBody(t *testing.T) {
	srv := New(testServerConfig(100), discardLogger)
	srv.Engine().POST("/api/v1/admin/import", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, err.Error())
			return
		}

		c.JSON(http.StatusOK, gin.H{"received": len(body)})
	})

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "under limit", body: strings.Repeat("a", 50), wantStatus: http.StatusOK},
		{name: "over limit", body: strings.Repeat("a", 500), wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(srv.Engine(), httptest.NewRequest(http.MethodPost, "/api/v1/admin/import", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
