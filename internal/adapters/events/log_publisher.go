// Package events provides event publishers that do not leave the process.
package events

import (
	"context"
	"log/slog"

	"github.com/jsamuelsen/quote-catalog/internal/platform/logging"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

// LogPublisher writes every event to the log. It is the publisher used
// when the share webhook is disabled.
type LogPublisher struct {
	logger *slog.Logger
	level  slog.Level
}

var _ ports.EventPublisher = (*LogPublisher)(nil)

// NewLogPublisher creates a publisher logging at Info.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogPublisher{
		logger: logger.With(slog.String("component", "events.LogPublisher")),
		level:  slog.LevelInfo,
	}
}

// WithLevel returns a copy logging at level.
func (p *LogPublisher) WithLevel(level slog.Level) *LogPublisher {
	cp := *p
	cp.level = level

	return &cp
}

// Publish implements ports.EventPublisher. It never fails.
func (p *LogPublisher) Publish(ctx context.Context, event ports.Event) error {
	logging.FromContextOr(ctx, p.logger).Log(ctx, p.level, "domain event",
		slog.String("event_type", event.EventType()),
		slog.Any("payload", event.Payload()),
	)

	return nil
}
