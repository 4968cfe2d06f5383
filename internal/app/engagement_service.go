package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

// EngagementService applies likes, bookmarks and shares for a session.
type EngagementService struct {
	store     ports.CatalogStore
	publisher ports.EventPublisher
	metrics   Metrics
	now       func() time.Time
	logger    *slog.Logger
}

// EngagementServiceConfig contains configuration for the engagement service.
type EngagementServiceConfig struct {
	Store ports.CatalogStore

	// Publisher receives QuoteShared events. Optional.
	Publisher ports.EventPublisher

	Metrics Metrics
	Clock   func() time.Time
	Logger  *slog.Logger
}

// NewEngagementService creates an engagement service. It panics without a store.
func NewEngagementService(cfg EngagementServiceConfig) *EngagementService {
	if cfg.Store == nil {
		panic("app: EngagementServiceConfig.Store is required")
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NoopMetrics{}
	}

	return &EngagementService{
		store:     cfg.Store,
		publisher: cfg.Publisher,
		metrics:   metrics,
		now:       defaultClock(cfg.Clock),
		logger:    defaultLogger(cfg.Logger, "app.EngagementService"),
	}
}

// EngagementResult is the session state and counters after a mutation.
type EngagementResult struct {
	State domain.EngagementState
	Quote domain.Quote
}

// ToggleLike flips the session's like on quoteID.
func (s *EngagementService) ToggleLike(ctx context.Context, sessionID string, quoteID int64) (EngagementResult, error) {
	return s.mutate(ctx, domain.EngagementLike, sessionID, quoteID)
}

// ToggleBookmark flips the session's bookmark on quoteID.
func (s *EngagementService) ToggleBookmark(ctx context.Context, sessionID string, quoteID int64) (EngagementResult, error) {
	return s.mutate(ctx, domain.EngagementBookmark, sessionID, quoteID)
}

// ShareResult is a counted share and the text to hand to the share target.
type ShareResult struct {
	Quote domain.QuoteView
	Text  string
}

// Share counts a share of quoteID and announces it. A failing publisher is
// logged and does not fail the share.
func (s *EngagementService) Share(ctx context.Context, sessionID string, quoteID int64) (ShareResult, error) {
	res, err := s.mutate(ctx, domain.EngagementShare, sessionID, quoteID)
	if err != nil {
		return ShareResult{}, err
	}

	view, err := quoteView(ctx, s.store, res.Quote)
	if err != nil {
		return ShareResult{}, fmt.Errorf("resolving shared quote: %w", err)
	}

	out := ShareResult{Quote: view, Text: domain.ShareText(view)}

	if s.publisher != nil {
		event := domain.QuoteShared{
			QuoteID:    quoteID,
			SessionID:  sessionID,
			Text:       out.Text,
			Shares:     view.Shares,
			OccurredAt: s.now().UTC(),
		}

		if err := s.publisher.Publish(ctx, event); err != nil {
			componentLogger(ctx, s.logger, "Share").WarnContext(ctx, "publishing share event failed",
				slog.Int64("quote_id", quoteID),
				slog.Any("error", err),
			)
		}
	}

	return out, nil
}

func (s *EngagementService) mutate(
	ctx context.Context,
	kind domain.EngagementKind,
	sessionID string,
	quoteID int64,
) (EngagementResult, error) {
	if err := validateSession(sessionID); err != nil {
		return EngagementResult{}, err
	}

	fn, ok := domain.TransitionFor(kind)
	if !ok {
		return EngagementResult{}, domain.NewValidationErrorWithValue("action", "unknown engagement action", kind)
	}

	state, q, err := s.store.MutateEngagement(ctx, quoteID, sessionID, fn)
	if err != nil {
		return EngagementResult{}, fmt.Errorf("applying %s: %w", kind, err)
	}

	s.metrics.RecordEngagement(kind)

	componentLogger(ctx, s.logger, "mutate").DebugContext(ctx, "engagement applied",
		slog.String("action", string(kind)),
		slog.Int64("quote_id", quoteID),
		slog.Bool("liked", state.Liked),
		slog.Bool("bookmarked", state.Bookmarked),
	)

	return EngagementResult{State: state, Quote: q}, nil
}

// Favorites lists the quotes a session has liked or bookmarked, in id order.
type Favorites struct {
	Liked      []int64
	Bookmarked []int64
}

// Favorites returns the session's liked and bookmarked quote ids.
func (s *EngagementService) Favorites(ctx context.Context, sessionID string) (Favorites, error) {
	if err := validateSession(sessionID); err != nil {
		return Favorites{}, err
	}

	states, err := s.store.SessionEngagement(ctx, sessionID)
	if err != nil {
		return Favorites{}, fmt.Errorf("loading engagement: %w", err)
	}

	fav := Favorites{Liked: []int64{}, Bookmarked: []int64{}}
	for id, st := range states {
		if st.Liked {
			fav.Liked = append(fav.Liked, id)
		}

		if st.Bookmarked {
			fav.Bookmarked = append(fav.Bookmarked, id)
		}
	}

	slices.Sort(fav.Liked)
	slices.Sort(fav.Bookmarked)

	return fav, nil
}

func validateSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return domain.NewValidationError("session", "is required")
	}

	return nil
}
