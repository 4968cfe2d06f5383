package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-catalog/internal/platform/config"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return resp
}

func TestIDMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		middleware gin.HandlerFunc
		header     string
		fromGin    func(*gin.Context) string
		fromCtx    func(context.Context) string
		incoming   string
		replaced   bool
	}{
		{
			name:       "request id generated",
			middleware: RequestID(),
			header:     HeaderRequestID,
			fromGin:    GetRequestID,
			fromCtx:    RequestIDFromContext,
		},
		{
			name:       "request id passed through",
			middleware: RequestID(),
			header:     HeaderRequestID,
			fromGin:    GetRequestID,
			fromCtx:    RequestIDFromContext,
			incoming:   "existing-req-123",
		},
		{
			name:       "correlation id generated",
			middleware: CorrelationID(),
			header:     HeaderCorrelationID,
			fromGin:    GetCorrelationID,
			fromCtx:    CorrelationIDFromContext,
		},
		{
			name:       "correlation id passed through",
			middleware: CorrelationID(),
			header:     HeaderCorrelationID,
			fromGin:    GetCorrelationID,
			fromCtx:    CorrelationIDFromContext,
			incoming:   "existing-corr-456",
		},
		{
			name:       "request id with unsafe characters replaced",
			middleware: RequestID(),
			header:     HeaderRequestID,
			fromGin:    GetRequestID,
			fromCtx:    RequestIDFromContext,
			incoming:   "id\" injected=\"true",
			replaced:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var ginID, ctxID string

			router := gin.New()
			router.Use(tt.middleware)
			router.GET("/test", func(c *gin.Context) {
				ginID = tt.fromGin(c)
				ctxID = tt.fromCtx(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.incoming != "" {
				req.Header.Set(tt.header, tt.incoming)
			}

			w := serve(router, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, w.Header().Get(tt.header), ginID)
			assert.Equal(t, ginID, ctxID)

			if tt.incoming != "" && !tt.replaced {
				assert.Equal(t, tt.incoming, ginID)
			} else {
				_, err := uuid.Parse(ginID)
				require.NoError(t, err, "generated id should be a UUID")
			}
		})
	}
}

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestIDFromContext(ctx))
	assert.Empty(t, CorrelationIDFromContext(ctx))

	ctx = ContextWithRequestID(ctx, "request-123")
	ctx = ContextWithCorrelationID(ctx, "correlation-456")

	assert.Equal(t, "request-123", RequestIDFromContext(ctx))
	assert.Equal(t, "correlation-456", CorrelationIDFromContext(ctx))

	//nolint:staticcheck // nil context is part of the contract
	assert.Empty(t, RequestIDFromContext(nil))
}

func TestExtractClaims(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.AuthConfig
		headers map[string]string
		want    *Claims
	}{
		{
			name:    "default headers",
			headers: map[string]string{"X-User-ID": "u-1", "X-User-Roles": "admin, editor,,ADMIN"},
			want:    &Claims{Subject: "u-1", Roles: []string{"admin", "editor"}},
		},
		{
			name:    "anonymous",
			headers: map[string]string{},
			want:    &Claims{},
		},
		{
			name:    "configured headers",
			cfg:     &config.AuthConfig{SubjectHeader: "X-Sub", RolesHeader: "X-Groups"},
			headers: map[string]string{"X-Sub": "u-2", "X-Groups": "admin", "X-User-ID": "ignored"},
			want:    &Claims{Subject: "u-2", Roles: []string{"admin"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}

			assert.Equal(t, tt.want, ExtractClaims(c, tt.cfg))
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	cfg := &config.AuthConfig{SubjectHeader: "X-User-ID", RolesHeader: "X-User-Roles"}

	router := gin.New()
	router.Use(RequireAdmin(cfg))
	router.GET("/admin/dashboard", func(c *gin.Context) {
		assert.Equal(t, "u-1", GetClaims(c).Subject)
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name     string
		subject  string
		roles    string
		want     int
		wantCode string
	}{
		{name: "admin passes", subject: "u-1", roles: "editor,admin", want: http.StatusOK},
		{name: "role match ignores case", subject: "u-1", roles: "Admin", want: http.StatusOK},
		{name: "no subject", roles: "admin", want: http.StatusUnauthorized, wantCode: dto.ErrorCodeUnauthorized},
		{name: "missing role", subject: "u-1", roles: "editor", want: http.StatusForbidden, wantCode: dto.ErrorCodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
			if tt.subject != "" {
				req.Header.Set("X-User-ID", tt.subject)
			}

			req.Header.Set("X-User-Roles", tt.roles)

			w := serve(router, req)

			assert.Equal(t, tt.want, w.Code)

			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Error.Code)
			}
		})
	}
}

func TestSession(t *testing.T) {
	tests := []struct {
		name          string
		headers       map[string]string
		wantSession   string
		wantAnonymous bool
		wantRoles     []string
	}{
		{
			name:        "gateway subject wins",
			headers:     map[string]string{"X-User-ID": "user-7", "X-Session-ID": "anon-1", "X-User-Roles": "admin"},
			wantSession: "user-7",
			wantRoles:   []string{"admin"},
		},
		{
			name:          "anonymous session header",
			headers:       map[string]string{"X-Session-ID": " anon-1 "},
			wantSession:   "anon-1",
			wantAnonymous: true,
		},
		{
			name:          "no identity",
			headers:       map[string]string{},
			wantSession:   "",
			wantAnonymous: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				session string
				user    *ports.FeatureFlagUser
			)

			router := gin.New()
			router.Use(Session(&config.AuthConfig{SessionHeader: "X-Session-ID"}))
			router.POST("/quotes/:id/like", func(c *gin.Context) {
				session = GetSessionID(c)
				user = ports.GetFeatureFlagUser(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/quotes/1/like", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			w := serve(router, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantSession, session)
			require.NotNil(t, user)
			assert.Equal(t, tt.wantSession, user.ID)
			assert.Equal(t, tt.wantAnonymous, user.Anonymous)
			assert.Equal(t, tt.wantRoles, user.Roles)
		})
	}
}

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		path      string
		status    int
		wantLevel string
	}{
		{name: "normal request", path: "/api/v1/quotes?q=life", status: http.StatusOK, wantLevel: "INFO"},
		{name: "health path skipped", path: "/-/live", status: http.StatusOK},
		{name: "extra prefix skipped", path: "/api/v1/admin/import", status: http.StatusOK},
		{name: "client error", path: "/api/v1/quotes/999", status: http.StatusNotFound, wantLevel: "WARN"},
		{name: "server error", path: "/api/v1/boom", status: http.StatusInternalServerError, wantLevel: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			router := gin.New()
			router.Use(Logging(slog.New(slog.NewJSONHandler(&buf, nil)), "/api/v1/admin/import"))
			router.NoRoute(func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := serve(router, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)

			if tt.wantLevel == "" {
				assert.Empty(t, buf.String())
				return
			}

			var record map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
			assert.Equal(t, tt.wantLevel, record["level"])
			assert.Equal(t, "request completed", record["msg"])
			assert.InDelta(t, float64(tt.status), record["status"], 0)
		})
	}
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	router := gin.New()
	router.Use(Recovery(discardLogger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/panic", func(*gin.Context) { panic("something went wrong") })

	assert.Equal(t, http.StatusOK, serve(router, httptest.NewRequest(http.MethodGet, "/ok", nil)).Code)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, dto.ErrorCodeInternal, decodeError(t, w).Error.Code)
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	t.Run("sets context deadline", func(t *testing.T) {
		t.Parallel()

		var hasDeadline bool

		router := gin.New()
		router.Use(Timeout(5 * time.Second))
		router.GET("/test", func(c *gin.Context) {
			_, hasDeadline = c.Request.Context().Deadline()
			c.Status(http.StatusOK)
		})

		w := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, hasDeadline, "request context should have deadline")
	})

	t.Run("skipped prefix has no deadline", func(t *testing.T) {
		t.Parallel()

		hasDeadline := true

		router := gin.New()
		router.Use(Timeout(5*time.Second, "/api/v1/admin/import"))
		router.POST("/api/v1/admin/import", func(c *gin.Context) {
			_, hasDeadline = c.Request.Context().Deadline()
			c.Status(http.StatusOK)
		})

		serve(router, httptest.NewRequest(http.MethodPost, "/api/v1/admin/import", nil))

		assert.False(t, hasDeadline)
	})

	t.Run("expired deadline without a response is a 504", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(Timeout(10 * time.Millisecond))
		router.GET("/slow", func(c *gin.Context) {
			<-c.Request.Context().Done()
		})

		w := serve(router, httptest.NewRequest(http.MethodGet, "/slow", nil))

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
		assert.Equal(t, dto.ErrorCodeTimeout, decodeError(t, w).Error.Code)
	})
}
