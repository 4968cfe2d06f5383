// Package cli implements catalogctl, the operator command line for the quote catalog.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/events"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/storage"
	"github.com/jsamuelsen/quote-catalog/internal/app"
	"github.com/jsamuelsen/quote-catalog/internal/domain/catalog"
	"github.com/jsamuelsen/quote-catalog/internal/platform/config"
	"github.com/jsamuelsen/quote-catalog/internal/platform/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format    string // "json" | "text"
	Profile   string
	ConfigDir string
	DB        string
	Verbose   bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the catalogctl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "catalogctl",
		Short: "Operate a quote catalog",
		Long: `catalogctl validates, imports and exports quote catalog files and
reports catalog statistics. It runs the same services as the API server
against the configured store, or against a SQLite database given with --db.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Profile, "config-profile", "", "config profile to load from <config-dir>/<profile>.yaml")
	cmd.PersistentFlags().StringVar(&opts.ConfigDir, "config-dir", config.DefaultDir, "directory holding base.yaml and profile files")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "SQLite database path; overrides the configured storage")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log debug output to stderr")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

// env is the store and services one command runs against.
type env struct {
	stores   *storage.Stores
	transfer *app.TransferService
	admin    *app.AdminService
	logger   *slog.Logger
}

func (e *env) Close() error {
	return e.stores.Close()
}

// openEnv loads config for the selected profile and opens the store.
// Logs go to errOut so they never mix with command output.
func openEnv(ctx context.Context, opts *RootOptions, errOut io.Writer) (*env, error) {
	cfg, err := config.LoadDir(opts.ConfigDir, opts.Profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if opts.DB != "" {
		cfg.Storage.Driver = storage.DriverSQLite
		cfg.Storage.DSN = opts.DB
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logCfg := logging.FromConfig(cfg.Log, cfg.App)
	logCfg.Service = "catalogctl"
	logCfg.Format = "text"
	logCfg.File.Enabled = false

	logCfg.Level = "warn"
	if opts.Verbose {
		logCfg.Level = "debug"
	}

	logger := logging.NewWithWriter(logCfg, errOut)

	stores, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	engine := catalog.Engine{
		PopularThreshold: cfg.Catalog.PopularThreshold,
		RecentWindow:     cfg.Catalog.RecentWindow,
	}

	return &env{
		stores: stores,
		transfer: app.NewTransferService(app.TransferServiceConfig{
			Store:      stores.Catalog,
			Publisher:  events.NewLogPublisher(logger).WithLevel(slog.LevelDebug),
			MaxRecords: cfg.Catalog.MaxImportRecords,
			Logger:     logger,
		}),
		admin: app.NewAdminService(app.AdminServiceConfig{
			Store:    stores.Catalog,
			Engine:   engine,
			PageSize: cfg.Catalog.PageSize,
			Logger:   logger,
		}),
		logger: logger,
	}, nil
}
