package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-catalog/internal/platform/config"
	"github.com/jsamuelsen/quote-catalog/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// ImportPath is the bulk import endpoint. It runs without the request
// timeout and is not access-logged at start.
const ImportPath = "/api/v1/admin/import"

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AuthConfig names the gateway identity headers and the admin role.
	AuthConfig *config.AuthConfig

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// HealthHandler handles the /-/ endpoints.
	HealthHandler *handlers.HealthHandler

	Catalog    *handlers.CatalogHandler
	Engagement *handlers.EngagementHandler
	Daily      *handlers.DailyQuoteHandler
	Admin      *handlers.AdminHandler
	Transfer   *handlers.TransferHandler

	// Timeout is the API request deadline. Zero disables it.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Request ID - generate/extract request ID
//  3. Correlation ID - handle distributed tracing correlation
//  4. OpenTelemetry - tracing and metrics
//  5. Logging - request logging (skips health endpoints)
//  6. Session - resolve the visitor for engagement and flag targeting
//  7. Timeout - API request deadline (skipped for imports)
//
// Route groups:
//   - /-/ (internal): health, build info and metrics, no auth
//   - /api/v1/ (public API): browse, engagement and the daily quote
//   - /api/v1/admin/ (admin API): requires the admin role
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
		telemetry.TracingMiddleware(cfg.AppConfig.Name),
		telemetry.Middleware(cfg.AppConfig.Name),
		middleware.Logging(cfg.Logger),
	)

	// Probes get no session and no timeout
	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterOpsRoutes(engine.Group("/-"))
	}

	apiV1 := engine.Group("/api/v1")
	apiV1.Use(middleware.Session(cfg.AuthConfig))

	if cfg.Timeout > 0 {
		apiV1.Use(middleware.Timeout(cfg.Timeout, ImportPath))
	}

	setupAPIRoutes(apiV1, cfg)
}

// setupAPIRoutes registers the catalog API. Nil handlers are skipped so
// tests can mount a subset.
func setupAPIRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.Catalog != nil {
		cfg.Catalog.RegisterCatalogRoutes(rg)
	}

	if cfg.Engagement != nil {
		cfg.Engagement.RegisterEngagementRoutes(rg)
	}

	if cfg.Daily != nil {
		cfg.Daily.RegisterDailyRoutes(rg)
	}

	admin := rg.Group("/admin", middleware.RequireAdmin(cfg.AuthConfig))

	if cfg.Admin != nil {
		cfg.Admin.RegisterAdminRoutes(admin)
	}

	if cfg.Transfer != nil {
		cfg.Transfer.RegisterTransferRoutes(admin)
	}

	if cfg.Daily != nil {
		admin.POST("/daily/reroll", cfg.Daily.Reroll)
	}
}
