// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
//
// Application Layer Responsibilities:
//   - Orchestrate use cases (browse, engage, administer, transfer)
//   - Coordinate between the catalog engine and the stores
//   - Handle cross-cutting concerns (logging, metrics, events)
//   - Enforce business rules that span multiple entities
//
// What does NOT belong here:
//   - HTTP or CLI specifics (that's adapters and cmd)
//   - Database queries (that's store adapters)
//   - Scoring, filtering, sorting and paging (that's domain/catalog)
package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/domain/catalog"
	"github.com/jsamuelsen/quote-catalog/internal/platform/logging"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

// Metrics records catalog business counters.
type Metrics interface {
	// RecordEngagement counts one successful like, bookmark or share.
	RecordEngagement(action domain.EngagementKind)

	// RecordImport counts n import records with the given result
	// (imported, skipped or failed).
	RecordImport(result string, n int)
}

// NoopMetrics discards every measurement.
type NoopMetrics struct{}

// RecordEngagement implements Metrics.
func (NoopMetrics) RecordEngagement(domain.EngagementKind) {}

// RecordImport implements Metrics.
func (NoopMetrics) RecordImport(string, int) {}

// componentLogger returns the request logger from ctx, or fallback when the
// context carries none, tagged with the method name.
func componentLogger(ctx context.Context, fallback *slog.Logger, method string) *slog.Logger {
	return logging.FromContextOr(ctx, fallback).With(slog.String("method", method))
}

func defaultLogger(l *slog.Logger, component string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}

	return l.With(slog.String("component", component))
}

func defaultClock(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}

	return now
}

func pageSize(requested, fallback int) int {
	if requested > 0 {
		return requested
	}

	if fallback > 0 {
		return fallback
	}

	return catalog.DefaultPageSize
}

// snapshot is one consistent-enough read of the whole catalog.
type snapshot struct {
	quotes  []domain.Quote
	authors []domain.Author
	topics  []domain.Topic
	index   *catalog.Index
}

func (s snapshot) views() []domain.QuoteView {
	return s.index.Views(s.quotes)
}

// loadSnapshot reads quotes, authors and topics concurrently.
func loadSnapshot(ctx context.Context, store ports.CatalogStore) (snapshot, error) {
	quotes, authors, topics, err := Parallel3(ctx,
		store.ListQuotes,
		store.ListAuthors,
		store.ListTopics,
	)
	if err != nil {
		return snapshot{}, err
	}

	return snapshot{
		quotes:  quotes,
		authors: authors,
		topics:  topics,
		index:   catalog.NewIndex(authors, topics),
	}, nil
}

// quoteView resolves the author and topic names of q. Dangling references
// resolve to empty names.
func quoteView(ctx context.Context, store ports.CatalogStore, q domain.Quote) (domain.QuoteView, error) {
	author, topic, err := Parallel2(ctx,
		func(ctx context.Context) (string, error) {
			a, err := store.GetAuthor(ctx, q.AuthorID)
			if domain.IsNotFound(err) {
				return "", nil
			}

			return a.Name, err
		},
		func(ctx context.Context) (string, error) {
			t, err := store.GetTopic(ctx, q.CategoryID)
			if domain.IsNotFound(err) {
				return "", nil
			}

			return t.Name, err
		},
	)
	if err != nil {
		return domain.QuoteView{}, err
	}

	return domain.QuoteView{Quote: q, AuthorName: author, CategoryName: topic}, nil
}

// textKey normalizes quote text for duplicate detection.
func textKey(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
