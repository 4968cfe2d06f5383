// Package config loads service configuration with koanf from defaults,
// YAML profiles and APP_ environment variables, and validates it.
package config

import "time"

// Defaults shared with the packages that fall back to them when a value is
// left zero.
const (
	DefaultServerPort     = 8080
	DefaultMaxRequestSize = 1 << 20

	DefaultClientRetryMaxAttempts     = 3
	DefaultClientRetryMultiplier      = 2.0
	DefaultClientRetryJitterFactor    = 0.25
	DefaultClientCircuitMaxFailures   = 5
	DefaultClientCircuitHalfOpenLimit = 3

	DefaultTransportMaxIdleConns        = 100
	DefaultTransportMaxIdleConnsPerHost = 10
	DefaultTransportIdleConnTimeout     = 90 * time.Second

	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28

	// DefaultCatalogPageSize applies to every listing.
	DefaultCatalogPageSize = 12

	// DefaultPopularThreshold is the like count a quote must exceed.
	DefaultPopularThreshold = 1000

	// DefaultRecentWindow is how far back a quote counts as recent.
	DefaultRecentWindow = 30 * 24 * time.Hour

	DefaultMaxImportRecords  = 1000
	DefaultSuggestionLimit   = 5
	DefaultDailyHistoryDays  = 7
	DefaultHomeFeaturedCount = 4
)

// Config is everything the service and catalogctl read at startup. Field
// tags name the koanf key each value is loaded from.
type Config struct {
	App        AppConfig        `koanf:"app"         validate:"required"`
	Server     ServerConfig     `koanf:"server"      validate:"required"`
	Log        LogConfig        `koanf:"log"         validate:"required"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	Auth       AuthConfig       `koanf:"auth"`
	Client     ClientConfig     `koanf:"client"      validate:"required"`
	Catalog    CatalogConfig    `koanf:"catalog"     validate:"required"`
	Storage    StorageConfig    `koanf:"storage"     validate:"required"`
	DailyQuote DailyQuoteConfig `koanf:"daily_quote" validate:"required"`
	Share      ShareConfig      `koanf:"share"`
	Features   FeaturesConfig   `koanf:"features"`
}

// AppConfig identifies the running build.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig bounds the HTTP listener.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig selects level and encoding of the process logger.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig mirrors logs into a lumberjack rolled file.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"       validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"   validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"    validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig points the OTLP exporter at a collector.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// AuthConfig names the trusted gateway headers carrying visitor identity.
// The gateway authenticates; the service only reads what it forwards.
type AuthConfig struct {
	SubjectHeader string `koanf:"subject_header" validate:"required"`
	RolesHeader   string `koanf:"roles_header"   validate:"required"`
	SessionHeader string `koanf:"session_header" validate:"required"`
	AdminRole     string `koanf:"admin_role"     validate:"required"`
}

// ClientConfig governs webhook delivery.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig shapes the exponential backoff between delivery attempts.
// MaxInterval also caps how long a Retry-After is honoured.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig trips delivery after consecutive failures.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig sizes the idle connection pool.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"         validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"      validate:"required,min=1s"`
}

// CatalogConfig contains query engine and import settings.
type CatalogConfig struct {
	PageSize         int           `koanf:"page_size"          validate:"required,min=1,max=100"`
	PopularThreshold int64         `koanf:"popular_threshold"  validate:"min=0"`
	RecentWindow     time.Duration `koanf:"recent_window"      validate:"required,min=1h"`
	MaxImportRecords int           `koanf:"max_import_records" validate:"required,min=1,max=10000"`
	SuggestionLimit  int           `koanf:"suggestion_limit"   validate:"required,min=1,max=50"`
}

// StorageConfig selects the catalog store.
type StorageConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=memory sqlite"`
	DSN    string `koanf:"dsn"    validate:"required_if=Driver sqlite"`

	// Seed loads the embedded catalog into an empty store at startup.
	Seed bool `koanf:"seed"`
}

// DailyQuoteConfig contains quote of the day settings.
type DailyQuoteConfig struct {
	HistoryDays int `koanf:"history_days" validate:"required,min=1,max=31"`
}

// ShareConfig contains the share event webhook settings.
// When disabled, share and import events are only logged.
type ShareConfig struct {
	WebhookEnabled bool   `koanf:"webhook_enabled"`
	WebhookURL     string `koanf:"webhook_url"     validate:"required_if=WebhookEnabled true,omitempty,url"`
	Name           string `koanf:"name"`
}

// FeaturesConfig holds static feature flag values.
type FeaturesConfig struct {
	PublicDailyReroll bool `koanf:"public_daily_reroll"`
	HomeFeaturedCount int  `koanf:"home_featured_count" validate:"min=0,max=24"`
}

// Default is the configuration before any file or variable is applied.
// It validates as is.
func Default() Config {
	return Config{
		App: AppConfig{Name: "quote-catalog", Version: "dev", Environment: "local"},
		Server: ServerConfig{
			Port:            DefaultServerPort,
			Host:            "0.0.0.0",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
			MaxRequestSize:  DefaultMaxRequestSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			File: LogFileConfig{
				Path:       "./logs/quote-catalog.log",
				MaxSizeMB:  DefaultLogFileMaxSizeMB,
				MaxBackups: DefaultLogFileMaxBackups,
				MaxAgeDays: DefaultLogFileMaxAgeDays,
				Compress:   true,
			},
		},
		Telemetry: TelemetryConfig{ServiceName: "quote-catalog", SamplingRate: 1},
		Auth: AuthConfig{
			SubjectHeader: "X-User-ID",
			RolesHeader:   "X-User-Roles",
			SessionHeader: "X-Session-ID",
			AdminRole:     "admin",
		},
		Client: ClientConfig{
			Timeout: 30 * time.Second,
			Retry: RetryConfig{
				MaxAttempts:     DefaultClientRetryMaxAttempts,
				InitialInterval: 100 * time.Millisecond,
				MaxInterval:     5 * time.Second,
				Multiplier:      DefaultClientRetryMultiplier,
				JitterFactor:    DefaultClientRetryJitterFactor,
			},
			CircuitBreaker: CircuitBreakerConfig{
				MaxFailures:   DefaultClientCircuitMaxFailures,
				Timeout:       30 * time.Second,
				HalfOpenLimit: DefaultClientCircuitHalfOpenLimit,
			},
			Transport: TransportConfig{
				MaxIdleConns:        DefaultTransportMaxIdleConns,
				MaxIdleConnsPerHost: DefaultTransportMaxIdleConnsPerHost,
				IdleConnTimeout:     DefaultTransportIdleConnTimeout,
			},
		},
		Catalog: CatalogConfig{
			PageSize:         DefaultCatalogPageSize,
			PopularThreshold: DefaultPopularThreshold,
			RecentWindow:     DefaultRecentWindow,
			MaxImportRecords: DefaultMaxImportRecords,
			SuggestionLimit:  DefaultSuggestionLimit,
		},
		Storage:    StorageConfig{Driver: "memory", Seed: true},
		DailyQuote: DailyQuoteConfig{HistoryDays: DefaultDailyHistoryDays},
		Share:      ShareConfig{Name: "share-webhook"},
		Features:   FeaturesConfig{HomeFeaturedCount: DefaultHomeFeaturedCount},
	}
}
