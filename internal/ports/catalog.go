// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrInvalidReference, etc.)
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"
	"fmt"
	"time"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
)

// QuoteReader exposes the read side of the quote collection.
type QuoteReader interface {
	// ListQuotes returns every quote in insertion order.
	ListQuotes(ctx context.Context) ([]domain.Quote, error)

	// GetQuote returns domain.ErrNotFound if the quote does not exist.
	GetQuote(ctx context.Context, id int64) (domain.Quote, error)

	// QuotesByAuthor returns the quotes attributed to authorID, in insertion order.
	QuotesByAuthor(ctx context.Context, authorID int64) ([]domain.Quote, error)

	// QuotesByTopic returns the quotes filed under topicID, in insertion order.
	QuotesByTopic(ctx context.Context, topicID int64) ([]domain.Quote, error)

	// RandomQuote picks uniformly from all quotes.
	// Returns domain.ErrEmptyCollection when the store holds no quotes.
	RandomQuote(ctx context.Context) (domain.Quote, error)
}

// QuoteWriter mutates the quote collection.
// Add and Update return domain.ErrInvalidReference when the author or topic is unknown.
type QuoteWriter interface {
	AddQuote(ctx context.Context, in domain.QuoteInput) (domain.Quote, error)

	// UpdateQuote keeps the quote's id, date added and counters.
	// Returns domain.ErrNotFound if the quote does not exist.
	UpdateQuote(ctx context.Context, id int64, in domain.QuoteInput) (domain.Quote, error)

	// DeleteQuote removes the quote and any session engagement for it.
	// Returns domain.ErrNotFound if the quote does not exist.
	DeleteQuote(ctx context.Context, id int64) error
}

// AuthorStore reads and writes authors.
// DeleteAuthor returns domain.ErrConflict while quotes still reference the author.
type AuthorStore interface {
	ListAuthors(ctx context.Context) ([]domain.Author, error)
	GetAuthor(ctx context.Context, id int64) (domain.Author, error)
	AddAuthor(ctx context.Context, in domain.AuthorInput) (domain.Author, error)
	UpdateAuthor(ctx context.Context, id int64, in domain.AuthorInput) (domain.Author, error)
	DeleteAuthor(ctx context.Context, id int64) error
}

// TopicStore reads and writes topics.
// DeleteTopic returns domain.ErrConflict while quotes still reference the topic.
type TopicStore interface {
	ListTopics(ctx context.Context) ([]domain.Topic, error)
	GetTopic(ctx context.Context, id int64) (domain.Topic, error)
	AddTopic(ctx context.Context, in domain.TopicInput) (domain.Topic, error)
	UpdateTopic(ctx context.Context, id int64, in domain.TopicInput) (domain.Topic, error)
	DeleteTopic(ctx context.Context, id int64) error
}

// EngagementStore applies engagement transitions.
type EngagementStore interface {
	// MutateEngagement loads the quote and sessionID's state for it, applies fn,
	// and stores both results as one atomic step. Calls for the same quote are
	// serialized. Returns domain.ErrNotFound if the quote does not exist.
	MutateEngagement(
		ctx context.Context,
		quoteID int64,
		sessionID string,
		fn domain.EngagementFunc,
	) (domain.EngagementState, domain.Quote, error)

	// SessionEngagement returns sessionID's non-zero states keyed by quote id.
	SessionEngagement(ctx context.Context, sessionID string) (map[int64]domain.EngagementState, error)
}

// CatalogStore is the entity store for quotes, authors and topics.
// It is the single source of truth for the catalog.
type CatalogStore interface {
	QuoteReader
	QuoteWriter
	AuthorStore
	TopicStore
	EngagementStore
}

// DailyQuoteStore remembers which quote was picked for each calendar day.
// Days are UTC midnights as produced by domain.Day.
type DailyQuoteStore interface {
	// GetDaily returns the pick for day and whether one exists.
	GetDaily(ctx context.Context, day time.Time) (int64, bool, error)

	// PutDaily records or replaces the pick for day.
	PutDaily(ctx context.Context, day time.Time, quoteID int64) error
}

// Snapshot is a complete copy of the catalog, ids and counters included.
type Snapshot struct {
	Authors []domain.Author
	Topics  []domain.Topic
	Quotes  []domain.Quote
}

// CatalogRestorer bulk-loads a snapshot into an empty store.
type CatalogRestorer interface {
	// Restore returns domain.ErrConflict if the store already holds data and
	// domain.ErrInvalidReference if a quote points at a missing author or topic.
	Restore(ctx context.Context, snap Snapshot) error
}

// Validate checks that ids are positive and unique and that every quote
// references a known author and topic.
func (s Snapshot) Validate() error {
	authors := make(map[int64]struct{}, len(s.Authors))
	for _, a := range s.Authors {
		if err := uniqueID("author", a.ID, authors); err != nil {
			return err
		}
	}

	topics := make(map[int64]struct{}, len(s.Topics))
	for _, t := range s.Topics {
		if err := uniqueID("topic", t.ID, topics); err != nil {
			return err
		}
	}

	quotes := make(map[int64]struct{}, len(s.Quotes))
	for _, q := range s.Quotes {
		if err := uniqueID("quote", q.ID, quotes); err != nil {
			return err
		}

		if _, ok := authors[q.AuthorID]; !ok {
			return domain.NewInvalidReferenceError("authorId", "author", domain.FormatID(q.AuthorID))
		}

		if _, ok := topics[q.CategoryID]; !ok {
			return domain.NewInvalidReferenceError("categoryId", "topic", domain.FormatID(q.CategoryID))
		}
	}

	return nil
}

func uniqueID(entity string, id int64, seen map[int64]struct{}) error {
	if id <= 0 {
		return domain.NewValidationErrorWithValue(entity+".id", "must be positive", id)
	}

	if _, dup := seen[id]; dup {
		return domain.NewConflictErrorWithDetails(entity, "duplicate id", fmt.Sprint(id))
	}

	seen[id] = struct{}{}

	return nil
}
