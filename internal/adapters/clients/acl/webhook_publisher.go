package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/clients"
	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/platform/logging"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

const contentTypeJSON = "application/json"

// WebhookPublisherConfig contains configuration for the webhook publisher.
type WebhookPublisherConfig struct {
	// Client posts to the webhook. Its BaseURL is the full webhook URL.
	Client *clients.Client

	// Source is stamped on every envelope. Defaults to "quote-catalog".
	Source string

	// Clock stamps events that carry no timestamp. Defaults to time.Now.
	Clock func() time.Time

	// NewID generates envelope ids. Defaults to random UUIDs.
	NewID func() string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// WebhookPublisher implements ports.EventPublisher by posting translated
// events to the share webhook. It is also a ports.HealthChecker.
type WebhookPublisher struct {
	client *clients.Client
	source string
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

var (
	_ ports.EventPublisher = (*WebhookPublisher)(nil)
	_ ports.HealthChecker  = (*WebhookPublisher)(nil)
)

// NewWebhookPublisher creates a new webhook publisher.
// Panics if Client is nil.
func NewWebhookPublisher(cfg WebhookPublisherConfig) *WebhookPublisher {
	if cfg.Client == nil {
		panic("WebhookPublisher: Client is required")
	}

	p := &WebhookPublisher{
		client: cfg.Client,
		source: cfg.Source,
		now:    cfg.Clock,
		newID:  cfg.NewID,
		logger: cfg.Logger,
	}

	if p.source == "" {
		p.source = "quote-catalog"
	}

	if p.now == nil {
		p.now = time.Now
	}

	if p.newID == nil {
		p.newID = uuid.NewString
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	p.logger = p.logger.With(slog.String("component", "acl.WebhookPublisher"))

	return p
}

// Publish implements ports.EventPublisher.
func (p *WebhookPublisher) Publish(ctx context.Context, event ports.Event) error {
	env := translateEvent(event, p.newID(), p.source, p.now())

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event.EventType(), err)
	}

	logger := logging.FromContextOr(ctx, p.logger)
	logger.Log(ctx, logging.LevelTrace, "translated domain event",
		slog.String("event_type", env.Type),
		slog.String("event_id", env.ID))

	resp, err := p.client.Post(ctx, "", contentTypeJSON, body)
	if err != nil {
		return deliveryFailure(p.client.ServiceName(), event.EventType(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if mapped := rejection(p.client.ServiceName(), event.EventType(), resp); mapped != nil {
		logger.WarnContext(ctx, "webhook rejected event",
			slog.String("event_type", env.Type),
			slog.Int("status_code", resp.StatusCode))

		return mapped
	}

	logger.DebugContext(ctx, "event delivered",
		slog.String("event_type", env.Type),
		slog.String("event_id", env.ID))

	return nil
}

// Name implements ports.HealthChecker.
func (p *WebhookPublisher) Name() string {
	return p.client.ServiceName()
}

// Check reports the webhook unhealthy while its circuit breaker is open.
// It never calls the webhook. Implements ports.HealthChecker.
func (p *WebhookPublisher) Check(context.Context) error {
	if p.client.CircuitState() == gobreaker.StateOpen {
		return domain.NewUnavailableError(p.Name(), "circuit breaker open")
	}

	return nil
}
