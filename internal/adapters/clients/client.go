package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-catalog/internal/platform/config"
)

const (
	instrumentationName = "github.com/jsamuelsen/quote-catalog/internal/adapters/clients"

	defaultTimeout = 30 * time.Second
)

// Config configures a Client.
type Config struct {
	// BaseURL is the receiver URL. Post appends its path argument to it.
	BaseURL string

	// ServiceName names the receiver in logs, spans, metrics and errors.
	ServiceName string

	// Timeout bounds a single attempt. Retries and backoff come on top.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// AuthFunc, when set, signs every attempt, retries included.
	AuthFunc func(*http.Request)

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Client delivers requests to one receiver. Each call runs inside a
// circuit breaker and retries 5xx, 429 and transport failures with
// exponential backoff. Request and correlation IDs and the trace context
// travel with every attempt.
type Client struct {
	http        *http.Client
	baseURL     string
	serviceName string
	retry       config.RetryConfig
	sign        func(*http.Request)
	breaker     *gobreaker.CircuitBreaker[*http.Response]
	logger      *slog.Logger

	tracer   trace.Tracer
	duration metric.Float64Histogram
	attempts metric.Int64Counter
	outcomes metric.Int64Counter
}

// New creates a Client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(
		slog.String("component", "clients.Client"),
		slog.String("downstream", cfg.ServiceName),
	)

	c := &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: newTransport(cfg.Transport),
		},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		serviceName: cfg.ServiceName,
		retry:       cfg.Retry,
		sign:        cfg.AuthFunc,
		breaker:     newCircuitBreaker(cfg.ServiceName, cfg.Circuit, logger),
		logger:      logger,
		tracer:      otel.Tracer(instrumentationName),
	}

	if err := c.initMetrics(otel.Meter(instrumentationName)); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Client) initMetrics(meter metric.Meter) error {
	var err error

	c.duration, err = meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("Wall time of a delivery including retries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("creating duration metric: %w", err)
	}

	c.attempts, err = meter.Int64Counter(
		"http.client.attempts",
		metric.WithDescription("Individual HTTP attempts made while delivering"),
	)
	if err != nil {
		return fmt.Errorf("creating attempt counter: %w", err)
	}

	c.outcomes, err = meter.Int64Counter(
		"http.client.request.total",
		metric.WithDescription("Deliveries by final outcome"),
	)
	if err != nil {
		return fmt.Errorf("creating outcome counter: %w", err)
	}

	return nil
}

func newTransport(cfg config.TransportConfig) *http.Transport {
	t := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	}

	if t.MaxIdleConns <= 0 {
		t.MaxIdleConns = config.DefaultTransportMaxIdleConns
	}

	if t.MaxIdleConnsPerHost <= 0 {
		t.MaxIdleConnsPerHost = config.DefaultTransportMaxIdleConnsPerHost
	}

	if t.IdleConnTimeout <= 0 {
		t.IdleConnTimeout = config.DefaultTransportIdleConnTimeout
	}

	return t
}

// Post delivers body to path. The body is held in memory so each retry
// resends it.
func (c *Client) Post(ctx context.Context, path, contentType string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)

	return c.Do(ctx, req)
}

// ServiceName returns the receiver name.
func (c *Client) ServiceName() string {
	return c.serviceName
}

// CircuitState returns the breaker state.
func (c *Client) CircuitState() gobreaker.State {
	return c.breaker.State()
}

func (c *Client) buildURL(path string) string {
	switch {
	case path == "":
		return c.baseURL
	case strings.HasPrefix(path, "/"):
		return c.baseURL + path
	default:
		return c.baseURL + "/" + path
	}
}
