//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/storage"
	"github.com/jsamuelsen/quote-catalog/internal/platform/config"
)

// writeConfigs lays out a configs/ directory in a temp working directory.
func writeConfigs(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))

	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", name), []byte(body), 0o600))
	}

	t.Chdir(dir)

	return dir
}

const baseYAML = `
app:
  environment: dev
catalog:
  page_size: 20
  popular_threshold: 1500
daily_quote:
  history_days: 3
`

// TestConfig_Precedence verifies defaults, base file, profile file and
// environment variables layer in that order.
func TestConfig_Precedence(t *testing.T) {
	writeConfigs(t, map[string]string{
		"base.yaml": baseYAML,
		"test.yaml": "app:\n  environment: test\ndaily_quote:\n  history_days: 5\n",
	})

	t.Setenv("APP_DAILY_QUOTE_HISTORY_DAYS", "9")

	cfg, err := config.Load("test")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "test", cfg.App.Environment, "profile overrides base")
	assert.Equal(t, 20, cfg.Catalog.PageSize, "base overrides default")
	assert.Equal(t, int64(1500), cfg.Catalog.PopularThreshold)
	assert.Equal(t, 9, cfg.DailyQuote.HistoryDays, "env overrides profile")
	assert.Equal(t, 720*time.Hour, cfg.Catalog.RecentWindow, "default survives")
	assert.Equal(t, "memory", cfg.Storage.Driver)
}

// TestConfig_OpensConfiguredStore verifies a loaded storage section opens a
// seeded SQLite catalog.
func TestConfig_OpensConfiguredStore(t *testing.T) {
	dir := writeConfigs(t, map[string]string{"base.yaml": baseYAML})

	t.Setenv("APP_STORAGE_DRIVER", "sqlite")
	t.Setenv("APP_STORAGE_DSN", filepath.Join(dir, "catalog.db"))

	cfg, err := config.Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	stores, err := storage.Open(context.Background(), cfg.Storage, discardLogger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	quotes, err := stores.Catalog.ListQuotes(context.Background())
	require.NoError(t, err)
	assert.Len(t, quotes, 6)

	require.NoError(t, stores.Checker.Check(context.Background()))
}

// TestConfig_InvalidConfiguration verifies Validate rejects bad files and
// environment values before anything is opened.
func TestConfig_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown storage driver",
			files:   map[string]string{"base.yaml": "storage:\n  driver: postgres\n"},
			wantErr: "storage.driver must be one of: memory sqlite",
		},
		{
			name:    "sqlite without dsn",
			env:     map[string]string{"APP_STORAGE_DRIVER": "sqlite"},
			wantErr: "storage.dsn is required when storage.driver is sqlite",
		},
		{
			name:    "history out of range",
			env:     map[string]string{"APP_DAILY_QUOTE_HISTORY_DAYS": "60"},
			wantErr: "daily_quote.history_days must be at most 31",
		},
		{
			name:    "webhook enabled without url",
			files:   map[string]string{"base.yaml": "share:\n  webhook_enabled: true\n"},
			wantErr: "share.webhook_url is required when share.webhook_enabled is true",
		},
		{
			name:    "page size out of range",
			files:   map[string]string{"base.yaml": "catalog:\n  page_size: 500\n"},
			wantErr: "catalog.page_size must be at most 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfigs(t, tt.files)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := config.Load("")
			require.NoError(t, err)

			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestConfig_MalformedFile verifies a broken YAML file fails Load.
func TestConfig_MalformedFile(t *testing.T) {
	writeConfigs(t, map[string]string{"local.yaml": "catalog: [unterminated\n"})

	_, err := config.Load("local")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `loading profile config "local"`)
}
