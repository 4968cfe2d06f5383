// Package memory provides process-local implementations of the catalog ports.
package memory

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

// Compile-time interface checks.
var (
	_ ports.CatalogStore    = (*CatalogStore)(nil)
	_ ports.CatalogRestorer = (*CatalogStore)(nil)
	_ ports.HealthChecker   = (*CatalogStore)(nil)
)

// Option configures a CatalogStore.
type Option func(*CatalogStore)

// WithClock sets the clock used to stamp DateAdded.
func WithClock(now func() time.Time) Option {
	return func(s *CatalogStore) { s.now = now }
}

// WithRand sets the source used by RandomQuote.
func WithRand(r *rand.Rand) Option {
	var mu sync.Mutex

	return func(s *CatalogStore) {
		s.intN = func(n int) int {
			mu.Lock()
			defer mu.Unlock()

			return r.IntN(n)
		}
	}
}

// CatalogStore keeps the catalog in memory.
//
// Collections are guarded by mu. Every quote mutation also holds the quote's
// key in quoteLocks, acquired before mu, so writes to one quote are serialized
// while reads proceed against a consistent snapshot.
type CatalogStore struct {
	mu         sync.RWMutex
	quoteLocks *keyedMutex

	quotes     map[int64]domain.Quote
	quoteOrder []int64
	authors    map[int64]domain.Author
	authorSeq  []int64
	topics     map[int64]domain.Topic
	topicSeq   []int64

	// engagement[quoteID][sessionID]
	engagement map[int64]map[string]domain.EngagementState

	lastQuoteID  int64
	lastAuthorID int64
	lastTopicID  int64

	now  func() time.Time
	intN func(n int) int
}

// NewCatalogStore creates an empty store.
func NewCatalogStore(opts ...Option) *CatalogStore {
	s := &CatalogStore{
		quoteLocks: newKeyedMutex(),
		quotes:     make(map[int64]domain.Quote),
		authors:    make(map[int64]domain.Author),
		topics:     make(map[int64]domain.Topic),
		engagement: make(map[int64]map[string]domain.EngagementState),
		now:        time.Now,
		intN:       rand.IntN,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name implements ports.HealthChecker.
func (s *CatalogStore) Name() string { return "catalog-store" }

// Check implements ports.HealthChecker. An in-memory store is always reachable.
func (s *CatalogStore) Check(ctx context.Context) error { return ctx.Err() }

// Restore implements ports.CatalogRestorer.
func (s *CatalogStore) Restore(ctx context.Context, snap ports.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := snap.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.quotes)+len(s.authors)+len(s.topics) > 0 {
		return domain.NewConflictError("catalog", "store is not empty")
	}

	for _, a := range snap.Authors {
		s.authors[a.ID] = a.Clone()
		s.authorSeq = append(s.authorSeq, a.ID)
		s.lastAuthorID = max(s.lastAuthorID, a.ID)
	}

	for _, t := range snap.Topics {
		s.topics[t.ID] = t
		s.topicSeq = append(s.topicSeq, t.ID)
		s.lastTopicID = max(s.lastTopicID, t.ID)
	}

	for _, q := range snap.Quotes {
		s.quotes[q.ID] = q.Clone()
		s.quoteOrder = append(s.quoteOrder, q.ID)
		s.lastQuoteID = max(s.lastQuoteID, q.ID)
	}

	return nil
}

// ListQuotes implements ports.QuoteReader.
func (s *CatalogStore) ListQuotes(ctx context.Context) ([]domain.Quote, error) {
	return s.selectQuotes(ctx, func(domain.Quote) bool { return true })
}

// QuotesByAuthor implements ports.QuoteReader.
func (s *CatalogStore) QuotesByAuthor(ctx context.Context, authorID int64) ([]domain.Quote, error) {
	return s.selectQuotes(ctx, func(q domain.Quote) bool { return q.AuthorID == authorID })
}

// QuotesByTopic implements ports.QuoteReader.
func (s *CatalogStore) QuotesByTopic(ctx context.Context, topicID int64) ([]domain.Quote, error) {
	return s.selectQuotes(ctx, func(q domain.Quote) bool { return q.CategoryID == topicID })
}

func (s *CatalogStore) selectQuotes(ctx context.Context, keep func(domain.Quote) bool) ([]domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Quote, 0, len(s.quoteOrder))
	for _, id := range s.quoteOrder {
		if q := s.quotes[id]; keep(q) {
			out = append(out, q.Clone())
		}
	}

	return out, nil
}

// GetQuote implements ports.QuoteReader.
func (s *CatalogStore) GetQuote(ctx context.Context, id int64) (domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return domain.Quote{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.quotes[id]
	if !ok {
		return domain.Quote{}, domain.NewNotFoundError("quote", domain.FormatID(id))
	}

	return q.Clone(), nil
}

// RandomQuote implements ports.QuoteReader.
func (s *CatalogStore) RandomQuote(ctx context.Context) (domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return domain.Quote{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.quoteOrder) == 0 {
		return domain.Quote{}, domain.NewEmptyCollectionError("quotes")
	}

	return s.quotes[s.quoteOrder[s.intN(len(s.quoteOrder))]].Clone(), nil
}

// AddQuote implements ports.QuoteWriter.
func (s *CatalogStore) AddQuote(ctx context.Context, in domain.QuoteInput) (domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return domain.Quote{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRefs(in); err != nil {
		return domain.Quote{}, err
	}

	s.lastQuoteID++
	q := domain.NewQuote(s.lastQuoteID, in, s.now())
	s.quotes[q.ID] = q
	s.quoteOrder = append(s.quoteOrder, q.ID)

	return q.Clone(), nil
}

// UpdateQuote implements ports.QuoteWriter.
func (s *CatalogStore) UpdateQuote(ctx context.Context, id int64, in domain.QuoteInput) (domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return domain.Quote{}, err
	}

	unlock := s.quoteLocks.Lock(id)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.quotes[id]
	if !ok {
		return domain.Quote{}, domain.NewNotFoundError("quote", domain.FormatID(id))
	}

	if err := s.checkRefs(in); err != nil {
		return domain.Quote{}, err
	}

	q = q.Apply(in)
	s.quotes[id] = q

	return q.Clone(), nil
}

// DeleteQuote implements ports.QuoteWriter.
func (s *CatalogStore) DeleteQuote(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	unlock := s.quoteLocks.Lock(id)
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quotes[id]; !ok {
		return domain.NewNotFoundError("quote", domain.FormatID(id))
	}

	delete(s.quotes, id)
	delete(s.engagement, id)
	s.quoteOrder = slices.DeleteFunc(s.quoteOrder, func(v int64) bool { return v == id })

	return nil
}

// checkRefs requires s.mu to be held.
func (s *CatalogStore) checkRefs(in domain.QuoteInput) error {
	if _, ok := s.authors[in.AuthorID]; !ok {
		return domain.NewInvalidReferenceError("authorId", "author", domain.FormatID(in.AuthorID))
	}

	if _, ok := s.topics[in.CategoryID]; !ok {
		return domain.NewInvalidReferenceError("categoryId", "topic", domain.FormatID(in.CategoryID))
	}

	return nil
}

// referenced requires s.mu to be held.
func (s *CatalogStore) referenced(match func(domain.Quote) bool) int {
	n := 0
	for _, q := range s.quotes {
		if match(q) {
			n++
		}
	}

	return n
}

// MutateEngagement implements ports.EngagementStore.
func (s *CatalogStore) MutateEngagement(
	ctx context.Context,
	quoteID int64,
	sessionID string,
	fn domain.EngagementFunc,
) (domain.EngagementState, domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return domain.EngagementState{}, domain.Quote{}, err
	}

	unlock := s.quoteLocks.Lock(quoteID)
	defer unlock()

	s.mu.RLock()
	q, ok := s.quotes[quoteID]
	state := s.engagement[quoteID][sessionID]
	s.mu.RUnlock()

	if !ok {
		return domain.EngagementState{}, domain.Quote{}, domain.NewNotFoundError("quote", domain.FormatID(quoteID))
	}

	// Only counters change; the quote lock keeps every other writer out until we store.
	nextState, next := fn(state, q.Clone())
	q.Likes, q.Shares, q.Bookmarks = max(next.Likes, 0), max(next.Shares, 0), max(next.Bookmarks, 0)

	s.mu.Lock()
	s.quotes[quoteID] = q

	sessions := s.engagement[quoteID]
	if sessions == nil {
		sessions = make(map[string]domain.EngagementState)
		s.engagement[quoteID] = sessions
	}

	if nextState == (domain.EngagementState{}) {
		delete(sessions, sessionID)
	} else {
		sessions[sessionID] = nextState
	}
	s.mu.Unlock()

	return nextState, q.Clone(), nil
}

// SessionEngagement implements ports.EngagementStore.
func (s *CatalogStore) SessionEngagement(ctx context.Context, sessionID string) (map[int64]domain.EngagementState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]domain.EngagementState)
	for quoteID, sessions := range s.engagement {
		if state, ok := sessions[sessionID]; ok {
			out[quoteID] = state
		}
	}

	return out, nil
}
