// Package storage opens the configured catalog store for the service and the CLI.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/memory"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/seed"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/sqlite"
	"github.com/jsamuelsen/quote-catalog/internal/platform/config"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

// Driver names accepted in config.StorageConfig.Driver.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Stores is an opened catalog store and the daily quote log that goes with it.
type Stores struct {
	Catalog ports.CatalogStore
	Daily   ports.DailyQuoteStore

	// Checker reports store health on /-/ready.
	Checker ports.HealthChecker

	restorer ports.CatalogRestorer
	closer   func() error
}

// Close releases the underlying database, if any.
func (s *Stores) Close() error {
	if s.closer == nil {
		return nil
	}

	return s.closer()
}

// Open opens the store selected by cfg. With cfg.Seed set, the embedded
// catalog is restored into it when it holds no quotes yet.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*Stores, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "storage"), slog.String("driver", cfg.Driver))

	var s *Stores

	switch cfg.Driver {
	case DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}

		s = &Stores{Catalog: db, Daily: db, Checker: db, restorer: db, closer: db.Close}
	case DriverMemory, "":
		mem := memory.NewCatalogStore()
		s = &Stores{Catalog: mem, Daily: memory.NewDailyQuoteStore(), Checker: mem, restorer: mem}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	if !cfg.Seed {
		return s, nil
	}

	if err := s.seed(ctx, logger); err != nil {
		return nil, errors.Join(err, s.Close())
	}

	return s, nil
}

func (s *Stores) seed(ctx context.Context, logger *slog.Logger) error {
	existing, err := s.Catalog.ListQuotes(ctx)
	if err != nil {
		return fmt.Errorf("inspecting store: %w", err)
	}

	if len(existing) > 0 {
		logger.Debug("store already populated, skipping seed", slog.Int("quotes", len(existing)))
		return nil
	}

	snap, err := seed.Snapshot()
	if err != nil {
		return fmt.Errorf("loading seed catalog: %w", err)
	}

	if err := s.restorer.Restore(ctx, snap); err != nil {
		return fmt.Errorf("seeding store: %w", err)
	}

	logger.Info("seeded catalog",
		slog.Int("authors", len(snap.Authors)),
		slog.Int("topics", len(snap.Topics)),
		slog.Int("quotes", len(snap.Quotes)),
	)

	return nil
}
