package ports

import "context"

// EventPublisher defines the contract for publishing domain events.
// Implementations may post to a webhook, write to a log, or use a broker.
type EventPublisher interface {
	// Publish sends an event to the configured destination.
	// Returns domain.ErrUnavailable if the destination is unreachable.
	Publish(ctx context.Context, event Event) error
}

// Event represents a domain event that can be published.
type Event interface {
	// EventType returns the type identifier for routing.
	EventType() string

	// Payload returns the event data for serialization.
	Payload() any
}
