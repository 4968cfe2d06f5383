package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a fully valid configuration for testing.
func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "quote-catalog",
			Version:     "1.0.0",
			Environment: "local",
		},
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxRequestSize:  1048576,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Client: ClientConfig{
			Timeout: 30 * time.Second,
			Retry: RetryConfig{
				MaxAttempts:     3,
				InitialInterval: 100 * time.Millisecond,
				MaxInterval:     5 * time.Second,
				Multiplier:      2.0,
				JitterFactor:    0.25,
			},
			CircuitBreaker: CircuitBreakerConfig{
				MaxFailures:   5,
				Timeout:       30 * time.Second,
				HalfOpenLimit: 3,
			},
			Transport: TransportConfig{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		Catalog: CatalogConfig{
			PageSize:         12,
			PopularThreshold: 1000,
			RecentWindow:     720 * time.Hour,
			MaxImportRecords: 1000,
			SuggestionLimit:  5,
		},
		Storage: StorageConfig{
			Driver: "memory",
			Seed:   true,
		},
		DailyQuote: DailyQuoteConfig{
			HistoryDays: 7,
		},
		Features: FeaturesConfig{
			HomeFeaturedCount: 4,
		},
	}
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	err := cfg.Validate()
	assert.NoError(t, err)
}

// TestConfig_Validate_Fields mutates one field of a valid config and checks
// the reported field path.
func TestConfig_Validate_Fields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
		wantText  string
	}{
		{name: "missing app name", mutate: func(c *Config) { c.App.Name = "" }, wantField: "app.name", wantText: "required"},
		{name: "unknown environment", mutate: func(c *Config) { c.App.Environment = "staging" }, wantField: "app.environment", wantText: "must be one of"},
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }, wantField: "server.port"},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 65536 }, wantField: "server.port", wantText: "at most"},
		{name: "read timeout below 1s", mutate: func(c *Config) { c.Server.ReadTimeout = 500 * time.Millisecond }, wantField: "server.read_timeout"},
		{name: "invalid log level", mutate: func(c *Config) { c.Log.Level = "verbose" }, wantField: "log.level", wantText: "must be one of"},
		{name: "log level is case sensitive", mutate: func(c *Config) { c.Log.Level = "DEBUG" }, wantField: "log.level"},
		{name: "invalid log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantField: "log.format"},
		{
			name:      "log file path required when enabled",
			mutate:    func(c *Config) { c.Log.File = LogFileConfig{Enabled: true} },
			wantField: "log.file.path",
			wantText:  "required when",
		},
		{
			name:      "telemetry endpoint must be a URL",
			mutate:    func(c *Config) { c.Telemetry = TelemetryConfig{Enabled: true, Endpoint: "not a url", ServiceName: "x"} },
			wantField: "telemetry.endpoint",
			wantText:  "valid URL",
		},
		{name: "sampling rate above 1", mutate: func(c *Config) { c.Telemetry.SamplingRate = 1.5 }, wantField: "telemetry.sampling_rate"},
		{name: "client timeout below 100ms", mutate: func(c *Config) { c.Client.Timeout = 50 * time.Millisecond }, wantField: "client.timeout"},
		{name: "retry attempts above 10", mutate: func(c *Config) { c.Client.Retry.MaxAttempts = 11 }, wantField: "client.retry.max_attempts"},
		{name: "retry multiplier below 1.1", mutate: func(c *Config) { c.Client.Retry.Multiplier = 1.0 }, wantField: "client.retry.multiplier"},
		{name: "circuit breaker failures zero", mutate: func(c *Config) { c.Client.CircuitBreaker.MaxFailures = 0 }, wantField: "client.circuit_breaker.max_failures"},
		{name: "page size zero", mutate: func(c *Config) { c.Catalog.PageSize = 0 }, wantField: "catalog.page_size"},
		{name: "page size above 100", mutate: func(c *Config) { c.Catalog.PageSize = 101 }, wantField: "catalog.page_size", wantText: "at most"},
		{name: "negative popular threshold", mutate: func(c *Config) { c.Catalog.PopularThreshold = -1 }, wantField: "catalog.popular_threshold"},
		{name: "recent window below an hour", mutate: func(c *Config) { c.Catalog.RecentWindow = time.Minute }, wantField: "catalog.recent_window"},
		{name: "import cap above 10000", mutate: func(c *Config) { c.Catalog.MaxImportRecords = 10001 }, wantField: "catalog.max_import_records"},
		{name: "unknown storage driver", mutate: func(c *Config) { c.Storage.Driver = "postgres" }, wantField: "storage.driver", wantText: "memory sqlite"},
		{name: "sqlite without dsn", mutate: func(c *Config) { c.Storage.Driver = "sqlite" }, wantField: "storage.dsn", wantText: "required when storage.driver is sqlite"},
		{name: "history days above 31", mutate: func(c *Config) { c.DailyQuote.HistoryDays = 32 }, wantField: "daily_quote.history_days"},
		{
			name:      "webhook url required when enabled",
			mutate:    func(c *Config) { c.Share.WebhookEnabled = true },
			wantField: "share.webhook_url",
			wantText:  "required when",
		},
		{
			name:      "webhook url must be a URL",
			mutate:    func(c *Config) { c.Share = ShareConfig{WebhookEnabled: true, WebhookURL: "hooks"} },
			wantField: "share.webhook_url",
			wantText:  "valid URL",
		},
		{
			name: "retry ceiling below initial interval",
			mutate: func(c *Config) {
				c.Client.Retry.InitialInterval = 2 * time.Second
				c.Client.Retry.MaxInterval = time.Second
			},
			wantField: "client.retry.max_interval",
			wantText:  "must not be below initial_interval",
		},
		{name: "home featured count above 24", mutate: func(c *Config) { c.Features.HomeFeaturedCount = 25 }, wantField: "features.home_featured_count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantField)

			if tt.wantText != "" {
				assert.Contains(t, err.Error(), tt.wantText)
			}
		})
	}
}

func TestConfig_Validate_AcceptedValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "trace level", mutate: func(c *Config) { c.Log.Level = "trace" }},
		{name: "pretty format", mutate: func(c *Config) { c.Log.Format = "pretty" }},
		{name: "prod environment", mutate: func(c *Config) { c.App.Environment = "prod" }},
		{name: "log file with path", mutate: func(c *Config) { c.Log.File = LogFileConfig{Enabled: true, Path: "/tmp/app.log"} }},
		{name: "sqlite with dsn", mutate: func(c *Config) { c.Storage = StorageConfig{Driver: "sqlite", DSN: "file:catalog.db"} }},
		{name: "zero popular threshold", mutate: func(c *Config) { c.Catalog.PopularThreshold = 0 }},
		{
			name: "webhook enabled",
			mutate: func(c *Config) {
				c.Share = ShareConfig{WebhookEnabled: true, WebhookURL: "https://hooks.example.com/share"}
			},
		},
		{name: "home featured disabled", mutate: func(c *Config) { c.Features.HomeFeaturedCount = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestConfig_Validate_MultipleErrors(t *testing.T) {
	cfg := &Config{
		App: AppConfig{
			Name:        "",        // missing
			Version:     "",        // missing
			Environment: "invalid", // invalid
		},
		Server: ServerConfig{
			Port: -1, // invalid
		},
	}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "app.name")
	assert.Contains(t, errStr, "app.version")
	assert.Contains(t, errStr, "storage")
}

func TestKeyPath(t *testing.T) {
	tests := map[string]string{
		"Config.server.port":               "server.port",
		"Config.client.retry.max_attempts": "client.retry.max_attempts",
		"Config.daily_quote.history_days":  "daily_quote.history_days",
		"port":                             "port",
	}

	for namespace, want := range tests {
		t.Run(namespace, func(t *testing.T) {
			assert.Equal(t, want, keyPath(namespace))
		})
	}
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Driver":         "driver",
		"WebhookEnabled": "webhook_enabled",
		"WebhookURL":     "webhook_url",
		"DSN":            "dsn",
		"MaxIdleConns":   "max_idle_conns",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, snakeCase(in))
		})
	}
}

func TestCondition(t *testing.T) {
	assert.Equal(t, "share.webhook_enabled is true", condition("share.webhook_url", "WebhookEnabled true"))
	assert.Equal(t, "enabled is true", condition("path", "Enabled true"))
	assert.Equal(t, "Driver", condition("storage.dsn", "Driver"))
}
