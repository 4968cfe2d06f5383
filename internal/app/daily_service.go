package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

// DefaultHistoryDays is how many previous days Recent returns by default.
const DefaultHistoryDays = 7

// rerollAttempts bounds how often Reroll retries to avoid repeating today's pick.
const rerollAttempts = 3

// DailyQuote is the quote pinned for one UTC day.
type DailyQuote struct {
	Day   time.Time
	Quote domain.QuoteView
}

// DailyQuoteService pins one random quote per UTC day.
type DailyQuoteService struct {
	store       ports.CatalogStore
	daily       ports.DailyQuoteStore
	historyDays int
	now         func() time.Time
	logger      *slog.Logger

	// mu serializes pick-and-pin so concurrent first visits agree on a quote.
	mu sync.Mutex
}

// DailyQuoteServiceConfig contains configuration for the daily quote service.
type DailyQuoteServiceConfig struct {
	Store       ports.CatalogStore
	Daily       ports.DailyQuoteStore
	HistoryDays int
	Clock       func() time.Time
	Logger      *slog.Logger
}

// NewDailyQuoteService creates a daily quote service. It panics without stores.
func NewDailyQuoteService(cfg DailyQuoteServiceConfig) *DailyQuoteService {
	if cfg.Store == nil || cfg.Daily == nil {
		panic("app: DailyQuoteServiceConfig.Store and Daily are required")
	}

	days := cfg.HistoryDays
	if days < 1 {
		days = DefaultHistoryDays
	}

	return &DailyQuoteService{
		store:       cfg.Store,
		daily:       cfg.Daily,
		historyDays: days,
		now:         defaultClock(cfg.Clock),
		logger:      defaultLogger(cfg.Logger, "app.DailyQuoteService"),
	}
}

// Today returns the quote of the current UTC day, picking one if needed.
func (s *DailyQuoteService) Today(ctx context.Context) (DailyQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ensure(ctx, domain.Day(s.now()))
}

// Reroll replaces today's quote with another random one. With a single quote
// in the catalog the pick cannot change.
func (s *DailyQuoteService) Reroll(ctx context.Context) (DailyQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := domain.Day(s.now())

	current, _, err := s.daily.GetDaily(ctx, day)
	if err != nil {
		return DailyQuote{}, fmt.Errorf("reading daily quote: %w", err)
	}

	var q domain.Quote
	for range rerollAttempts {
		if q, err = s.store.RandomQuote(ctx); err != nil {
			return DailyQuote{}, fmt.Errorf("picking daily quote: %w", err)
		}

		if q.ID != current {
			break
		}
	}

	if err := s.daily.PutDaily(ctx, day, q.ID); err != nil {
		return DailyQuote{}, fmt.Errorf("pinning daily quote: %w", err)
	}

	componentLogger(ctx, s.logger, "Reroll").InfoContext(ctx, "daily quote rerolled",
		slog.Int64("quote_id", q.ID),
		slog.Int64("previous_id", current),
	)

	return s.dailyQuote(ctx, day, q)
}

// Recent returns the quotes of the days before today, newest first.
// Days without a pick get one. days < 1 selects the configured history length.
func (s *DailyQuoteService) Recent(ctx context.Context, days int) ([]DailyQuote, error) {
	if days < 1 {
		days = s.historyDays
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	today := domain.Day(s.now())
	out := make([]DailyQuote, 0, days)

	for i := 1; i <= days; i++ {
		dq, err := s.ensure(ctx, today.AddDate(0, 0, -i))
		if err != nil {
			return nil, err
		}

		out = append(out, dq)
	}

	return out, nil
}

// ensure returns the pick for day, choosing and pinning one when the day has
// none or its quote was deleted. Callers hold mu.
func (s *DailyQuoteService) ensure(ctx context.Context, day time.Time) (DailyQuote, error) {
	id, ok, err := s.daily.GetDaily(ctx, day)
	if err != nil {
		return DailyQuote{}, fmt.Errorf("reading daily quote: %w", err)
	}

	if ok {
		q, err := s.store.GetQuote(ctx, id)
		if err == nil {
			return s.dailyQuote(ctx, day, q)
		}

		if !domain.IsNotFound(err) {
			return DailyQuote{}, fmt.Errorf("loading daily quote: %w", err)
		}
	}

	q, err := s.store.RandomQuote(ctx)
	if err != nil {
		return DailyQuote{}, fmt.Errorf("picking daily quote: %w", err)
	}

	if err := s.daily.PutDaily(ctx, day, q.ID); err != nil {
		return DailyQuote{}, fmt.Errorf("pinning daily quote: %w", err)
	}

	componentLogger(ctx, s.logger, "ensure").DebugContext(ctx, "daily quote pinned",
		slog.Time("day", day),
		slog.Int64("quote_id", q.ID),
	)

	return s.dailyQuote(ctx, day, q)
}

func (s *DailyQuoteService) dailyQuote(ctx context.Context, day time.Time, q domain.Quote) (DailyQuote, error) {
	view, err := quoteView(ctx, s.store, q)
	if err != nil {
		return DailyQuote{}, err
	}

	return DailyQuote{Day: day, Quote: view}, nil
}
