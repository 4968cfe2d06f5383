// Package main runs the quote catalog API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/clients"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/events"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/flags"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/http"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/storage"
	"github.com/jsamuelsen/quote-catalog/internal/app"
	"github.com/jsamuelsen/quote-catalog/internal/domain/catalog"
	"github.com/jsamuelsen/quote-catalog/internal/platform/config"
	"github.com/jsamuelsen/quote-catalog/internal/platform/logging"
	"github.com/jsamuelsen/quote-catalog/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=... -X main.BuildTime=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run serves the API until ctx is canceled. Resources are released in
// reverse order of acquisition.
func run(ctx context.Context) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := logging.New(logging.FromConfig(cfg.Log, cfg.App))
	logging.SetDefault(logger)

	logger.Info("starting quote catalog",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("storage", cfg.Storage.Driver),
		slog.Bool("share_webhook", cfg.Share.WebhookEnabled),
	)

	tel, err := telemetry.New(ctx, telemetry.FromConfig(cfg.Telemetry, cfg.App))
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		// ctx is already canceled here; the provider applies its own deadline.
		err = errors.Join(err, tel.Shutdown(context.WithoutCancel(ctx)))
	}()

	store, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	defer func() {
		err = errors.Join(err, store.Close())
	}()

	registry := ports.NewHealthRegistry()
	if err := registry.Register(store.Checker); err != nil {
		return fmt.Errorf("registering store health check: %w", err)
	}

	publisher, err := newPublisher(cfg, logger, registry)
	if err != nil {
		return err
	}

	routes, err := newRoutes(cfg, store, publisher, registry, logger)
	if err != nil {
		return err
	}

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), routes)

	if err := server.Run(ctx, nil); err != nil {
		return fmt.Errorf("serving: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}

// loadConfig loads the profile named by APP_ENVIRONMENT, local by default,
// and validates it.
func loadConfig() (*config.Config, error) {
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// newRoutes builds the application services over store and the handlers
// that expose them.
func newRoutes(
	cfg *config.Config,
	store *storage.Stores,
	publisher ports.EventPublisher,
	registry ports.HealthRegistry,
	logger *slog.Logger,
) (http.RouterConfig, error) {
	metrics, err := telemetry.NewCatalogMetrics(nil)
	if err != nil {
		return http.RouterConfig{}, fmt.Errorf("registering catalog metrics: %w", err)
	}

	featureFlags := flags.FromConfig(cfg.Features)
	engine := catalog.Engine{
		PopularThreshold: cfg.Catalog.PopularThreshold,
		RecentWindow:     cfg.Catalog.RecentWindow,
	}

	catalogService := app.NewCatalogService(app.CatalogServiceConfig{
		Store:           store.Catalog,
		Flags:           featureFlags,
		Engine:          engine,
		PageSize:        cfg.Catalog.PageSize,
		SuggestionLimit: cfg.Catalog.SuggestionLimit,
		Logger:          logger,
	})
	adminService := app.NewAdminService(app.AdminServiceConfig{
		Store:    store.Catalog,
		Engine:   engine,
		PageSize: cfg.Catalog.PageSize,
		Logger:   logger,
	})
	engagementService := app.NewEngagementService(app.EngagementServiceConfig{
		Store:     store.Catalog,
		Publisher: publisher,
		Metrics:   metrics,
		Logger:    logger,
	})
	dailyService := app.NewDailyQuoteService(app.DailyQuoteServiceConfig{
		Store:       store.Catalog,
		Daily:       store.Daily,
		HistoryDays: cfg.DailyQuote.HistoryDays,
		Logger:      logger,
	})
	transferService := app.NewTransferService(app.TransferServiceConfig{
		Store:      store.Catalog,
		Publisher:  publisher,
		Metrics:    metrics,
		MaxRecords: cfg.Catalog.MaxImportRecords,
		Logger:     logger,
	})

	buildInfo := handlers.NewBuildInfo(cfg.App.Name, cfg.App.Environment, Version, Commit, BuildTime)

	return http.RouterConfig{
		Logger:        logger,
		AuthConfig:    &cfg.Auth,
		AppConfig:     &cfg.App,
		HealthHandler: handlers.NewHealthHandler(registry, buildInfo, nil),
		Catalog:       handlers.NewCatalogHandler(catalogService),
		Engagement:    handlers.NewEngagementHandler(engagementService),
		Daily:         handlers.NewDailyQuoteHandler(dailyService, featureFlags),
		Admin:         handlers.NewAdminHandler(adminService),
		Transfer:      handlers.NewTransferHandler(transferService),
		Timeout:       http.DefaultRequestTimeout,
	}, nil
}

// newPublisher posts share and import events to the webhook when it is
// enabled and registers it as an optional readiness check. Otherwise events
// are only logged.
func newPublisher(cfg *config.Config, logger *slog.Logger, registry ports.HealthRegistry) (ports.EventPublisher, error) {
	if !cfg.Share.WebhookEnabled {
		return events.NewLogPublisher(logger), nil
	}

	client, err := clients.New(&clients.Config{
		BaseURL:     cfg.Share.WebhookURL,
		ServiceName: cfg.Share.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating webhook client: %w", err)
	}

	publisher := acl.NewWebhookPublisher(acl.WebhookPublisherConfig{
		Client: client,
		Source: cfg.App.Name,
		Logger: logger,
	})

	if err := registry.Register(publisher, ports.Optional()); err != nil {
		return nil, fmt.Errorf("registering webhook health check: %w", err)
	}

	return publisher, nil
}
