//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/flags"
	apihttp "github.com/jsamuelsen/quote-catalog/internal/adapters/http"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/storage"
	"github.com/jsamuelsen/quote-catalog/internal/app"
	"github.com/jsamuelsen/quote-catalog/internal/platform/config"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func fixedClock() time.Time {
	return time.Date(2024, 1, 20, 15, 30, 0, 0, time.UTC)
}

func init() {
	gin.SetMode(gin.TestMode)
}

// openStores opens a seeded store with the given driver.
func openStores(t *testing.T, driver string) *storage.Stores {
	t.Helper()

	cfg := config.StorageConfig{Driver: driver, Seed: true}
	if driver == storage.DriverSQLite {
		cfg.DSN = filepath.Join(t.TempDir(), "catalog.db")
	}

	stores, err := storage.Open(context.Background(), cfg, discardLogger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	return stores
}

// seededStore returns a seeded in-memory catalog.
func seededStore(t *testing.T) ports.CatalogStore {
	t.Helper()

	return openStores(t, storage.DriverMemory).Catalog
}

// newAPI wires the full router over stores, the way the service does.
func newAPI(t *testing.T, stores *storage.Stores, publicReroll bool) *gin.Engine {
	t.Helper()

	registry := ports.NewHealthRegistry()
	require.NoError(t, registry.Register(stores.Checker))

	ff := flags.FromConfig(config.FeaturesConfig{PublicDailyReroll: publicReroll, HomeFeaturedCount: 4})

	engine := gin.New()
	apihttp.SetupRouter(engine, apihttp.RouterConfig{
		Logger: discardLogger,
		AuthConfig: &config.AuthConfig{
			SubjectHeader: "X-User-ID",
			RolesHeader:   "X-User-Roles",
			SessionHeader: "X-Session-ID",
			AdminRole:     "admin",
		},
		AppConfig:     &config.AppConfig{Name: "quote-catalog", Version: "it", Environment: "test"},
		HealthHandler: handlers.NewHealthHandler(registry, handlers.BuildInfo{Service: "quote-catalog"}, nil),
		Catalog: handlers.NewCatalogHandler(app.NewCatalogService(app.CatalogServiceConfig{
			Store: stores.Catalog, Flags: ff, Clock: fixedClock, Logger: discardLogger,
		})),
		Engagement: handlers.NewEngagementHandler(app.NewEngagementService(app.EngagementServiceConfig{
			Store: stores.Catalog, Clock: fixedClock, Logger: discardLogger,
		})),
		Daily: handlers.NewDailyQuoteHandler(app.NewDailyQuoteService(app.DailyQuoteServiceConfig{
			Store: stores.Catalog, Daily: stores.Daily, Clock: fixedClock, Logger: discardLogger,
		}), ff),
		Admin: handlers.NewAdminHandler(app.NewAdminService(app.AdminServiceConfig{
			Store: stores.Catalog, Clock: fixedClock, Logger: discardLogger,
		})),
		Transfer: handlers.NewTransferHandler(app.NewTransferService(app.TransferServiceConfig{
			Store: stores.Catalog, Clock: fixedClock, Logger: discardLogger,
		})),
		Timeout: apihttp.DefaultRequestTimeout,
	})

	return engine
}
