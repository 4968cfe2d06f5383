package domain

import "time"

// Event type identifiers.
const (
	EventQuoteShared     = "quote.shared"
	EventCatalogImported = "catalog.imported"
)

// QuoteShared is raised every time a quote is shared.
type QuoteShared struct {
	QuoteID    int64     `json:"quoteId"`
	SessionID  string    `json:"sessionId"`
	Text       string    `json:"text"`
	Shares     int64     `json:"shares"`
	OccurredAt time.Time `json:"occurredAt"`
}

// EventType implements ports.Event.
func (e QuoteShared) EventType() string { return EventQuoteShared }

// Payload implements ports.Event.
func (e QuoteShared) Payload() any { return e }

// CatalogImported is raised when a bulk import writes to the catalog.
type CatalogImported struct {
	Format     string    `json:"format"`
	Imported   int       `json:"imported"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	OccurredAt time.Time `json:"occurredAt"`
}

// EventType implements ports.Event.
func (e CatalogImported) EventType() string { return EventCatalogImported }

// Payload implements ports.Event.
func (e CatalogImported) Payload() any { return e }
