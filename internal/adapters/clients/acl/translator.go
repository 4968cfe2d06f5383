package acl

import (
	"time"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

// envelope is the wire shape the webhook receiver accepts. It never leaves
// this package.
type envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

type sharedData struct {
	QuoteID   string `json:"quoteId"`
	Text      string `json:"text"`
	Shares    int64  `json:"shares"`
	SessionID string `json:"sessionId,omitempty"`
}

type importedData struct {
	Format   string `json:"format,omitempty"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

// translateEvent builds the webhook envelope for event. Events the receiver
// has no dedicated shape for carry their own payload and are stamped with now.
func translateEvent(event ports.Event, id, source string, now time.Time) envelope {
	env := envelope{
		ID:         id,
		Type:       event.EventType(),
		Source:     source,
		OccurredAt: now.UTC(),
	}

	switch e := event.(type) {
	case domain.QuoteShared:
		env.OccurredAt = stamp(e.OccurredAt, now)
		env.Data = sharedData{
			QuoteID:   domain.FormatID(e.QuoteID),
			Text:      e.Text,
			Shares:    e.Shares,
			SessionID: e.SessionID,
		}
	case domain.CatalogImported:
		env.OccurredAt = stamp(e.OccurredAt, now)
		env.Data = importedData{
			Format:   e.Format,
			Imported: e.Imported,
			Skipped:  e.Skipped,
			Failed:   e.Failed,
		}
	default:
		env.Data = event.Payload()
	}

	return env
}

func stamp(occurred, now time.Time) time.Time {
	if occurred.IsZero() {
		return now.UTC()
	}

	return occurred.UTC()
}
