package app

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/domain/catalog"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

// DashboardTopN is the length of the dashboard leaderboards.
const DashboardTopN = 5

// AdminService is the content management side of the catalog.
type AdminService struct {
	// quoteWrites holds the duplicate check and the write of a quote together.
	quoteWrites sync.Mutex

	store    ports.CatalogStore
	engine   catalog.Engine
	pageSize int
	now      func() time.Time
	logger   *slog.Logger
}

// AdminServiceConfig contains configuration for the admin service.
type AdminServiceConfig struct {
	Store    ports.CatalogStore
	Engine   catalog.Engine
	PageSize int
	Clock    func() time.Time
	Logger   *slog.Logger
}

// NewAdminService creates an admin service. It panics without a store.
func NewAdminService(cfg AdminServiceConfig) *AdminService {
	if cfg.Store == nil {
		panic("app: AdminServiceConfig.Store is required")
	}

	engine := cfg.Engine
	if engine == (catalog.Engine{}) {
		engine = catalog.DefaultEngine()
	}

	return &AdminService{
		store:    cfg.Store,
		engine:   engine,
		pageSize: pageSize(cfg.PageSize, 0),
		now:      defaultClock(cfg.Clock),
		logger:   defaultLogger(cfg.Logger, "app.AdminService"),
	}
}

// AddQuote validates and stores a new quote. A quote whose text matches an
// existing one (ignoring case and spacing) is rejected with a ConflictError.
func (s *AdminService) AddQuote(ctx context.Context, in domain.QuoteInput) (domain.QuoteView, error) {
	if err := in.Validate(); err != nil {
		return domain.QuoteView{}, err
	}

	s.quoteWrites.Lock()
	defer s.quoteWrites.Unlock()

	if err := s.checkDuplicate(ctx, in.Text, 0); err != nil {
		return domain.QuoteView{}, err
	}

	q, err := s.store.AddQuote(ctx, in)
	if err != nil {
		return domain.QuoteView{}, fmt.Errorf("adding quote: %w", err)
	}

	componentLogger(ctx, s.logger, "AddQuote").InfoContext(ctx, "quote added", slog.Int64("quote_id", q.ID))

	return quoteView(ctx, s.store, q)
}

// UpdateQuote replaces the editable fields of quote id. A missing id is
// reported as NotFoundError before the text is compared with other quotes.
func (s *AdminService) UpdateQuote(ctx context.Context, id int64, in domain.QuoteInput) (domain.QuoteView, error) {
	if err := in.Validate(); err != nil {
		return domain.QuoteView{}, err
	}

	s.quoteWrites.Lock()
	defer s.quoteWrites.Unlock()

	if _, err := s.store.GetQuote(ctx, id); err != nil {
		return domain.QuoteView{}, fmt.Errorf("updating quote: %w", err)
	}

	if err := s.checkDuplicate(ctx, in.Text, id); err != nil {
		return domain.QuoteView{}, err
	}

	q, err := s.store.UpdateQuote(ctx, id, in)
	if err != nil {
		return domain.QuoteView{}, fmt.Errorf("updating quote: %w", err)
	}

	componentLogger(ctx, s.logger, "UpdateQuote").InfoContext(ctx, "quote updated", slog.Int64("quote_id", id))

	return quoteView(ctx, s.store, q)
}

// DeleteQuote removes quote id.
func (s *AdminService) DeleteQuote(ctx context.Context, id int64) error {
	if err := s.store.DeleteQuote(ctx, id); err != nil {
		return fmt.Errorf("deleting quote: %w", err)
	}

	componentLogger(ctx, s.logger, "DeleteQuote").InfoContext(ctx, "quote deleted", slog.Int64("quote_id", id))

	return nil
}

func (s *AdminService) checkDuplicate(ctx context.Context, text string, exceptID int64) error {
	quotes, err := s.store.ListQuotes(ctx)
	if err != nil {
		return fmt.Errorf("checking duplicates: %w", err)
	}

	key := textKey(text)
	for _, q := range quotes {
		if q.ID != exceptID && textKey(q.Text) == key {
			return domain.NewConflictErrorWithDetails("quote", "duplicate text", "matches quote "+domain.FormatID(q.ID))
		}
	}

	return nil
}

// AddAuthor validates and stores a new author.
func (s *AdminService) AddAuthor(ctx context.Context, in domain.AuthorInput) (domain.Author, error) {
	if err := in.Validate(); err != nil {
		return domain.Author{}, err
	}

	a, err := s.store.AddAuthor(ctx, in)
	if err != nil {
		return domain.Author{}, fmt.Errorf("adding author: %w", err)
	}

	componentLogger(ctx, s.logger, "AddAuthor").InfoContext(ctx, "author added", slog.Int64("author_id", a.ID))

	return a, nil
}

// UpdateAuthor replaces the editable fields of author id.
func (s *AdminService) UpdateAuthor(ctx context.Context, id int64, in domain.AuthorInput) (domain.Author, error) {
	if err := in.Validate(); err != nil {
		return domain.Author{}, err
	}

	a, err := s.store.UpdateAuthor(ctx, id, in)
	if err != nil {
		return domain.Author{}, fmt.Errorf("updating author: %w", err)
	}

	return a, nil
}

// DeleteAuthor removes author id. Authors with quotes cannot be deleted.
func (s *AdminService) DeleteAuthor(ctx context.Context, id int64) error {
	if err := s.store.DeleteAuthor(ctx, id); err != nil {
		return fmt.Errorf("deleting author: %w", err)
	}

	componentLogger(ctx, s.logger, "DeleteAuthor").InfoContext(ctx, "author deleted", slog.Int64("author_id", id))

	return nil
}

// AddTopic validates and stores a new topic.
func (s *AdminService) AddTopic(ctx context.Context, in domain.TopicInput) (domain.Topic, error) {
	if err := in.Validate(); err != nil {
		return domain.Topic{}, err
	}

	t, err := s.store.AddTopic(ctx, in)
	if err != nil {
		return domain.Topic{}, fmt.Errorf("adding topic: %w", err)
	}

	componentLogger(ctx, s.logger, "AddTopic").InfoContext(ctx, "topic added", slog.Int64("topic_id", t.ID))

	return t, nil
}

// UpdateTopic replaces the editable fields of topic id.
func (s *AdminService) UpdateTopic(ctx context.Context, id int64, in domain.TopicInput) (domain.Topic, error) {
	if err := in.Validate(); err != nil {
		return domain.Topic{}, err
	}

	t, err := s.store.UpdateTopic(ctx, id, in)
	if err != nil {
		return domain.Topic{}, fmt.Errorf("updating topic: %w", err)
	}

	return t, nil
}

// DeleteTopic removes topic id. Topics with quotes cannot be deleted.
func (s *AdminService) DeleteTopic(ctx context.Context, id int64) error {
	if err := s.store.DeleteTopic(ctx, id); err != nil {
		return fmt.Errorf("deleting topic: %w", err)
	}

	componentLogger(ctx, s.logger, "DeleteTopic").InfoContext(ctx, "topic deleted", slog.Int64("topic_id", id))

	return nil
}

// Dashboard is the admin overview.
type Dashboard struct {
	TotalQuotes    int
	TotalAuthors   int
	TotalTopics    int
	TotalLikes     int64
	TotalShares    int64
	TotalBookmarks int64
	TopQuotes      []domain.QuoteView
	TopAuthors     []domain.Author
}

// Dashboard computes catalog totals and leaderboards.
func (s *AdminService) Dashboard(ctx context.Context) (Dashboard, error) {
	snap, err := loadSnapshot(ctx, s.store)
	if err != nil {
		return Dashboard{}, fmt.Errorf("loading dashboard: %w", err)
	}

	d := Dashboard{
		TotalQuotes:  len(snap.quotes),
		TotalAuthors: len(snap.authors),
		TotalTopics:  len(snap.topics),
	}

	for _, q := range snap.quotes {
		d.TotalLikes += q.Likes
		d.TotalShares += q.Shares
		d.TotalBookmarks += q.Bookmarks
	}

	popular, err := catalog.Sort(snap.views(), catalog.SortPopular, "")
	if err != nil {
		return Dashboard{}, err
	}

	d.TopQuotes = firstN(popular, DashboardTopN)

	authors := slices.Clone(snap.authors)
	slices.SortStableFunc(authors, func(a, b domain.Author) int {
		return cmp.Compare(b.TotalQuotes, a.TotalQuotes)
	})

	d.TopAuthors = firstN(authors, DashboardTopN)

	return d, nil
}

// AdminQuoteParams selects one page of the admin quote table.
type AdminQuoteParams struct {
	Query      string
	AuthorID   int64
	CategoryID int64
	Page       int
	PageSize   int
}

// FilterAdminQuotes lists quotes for the admin table, in store order.
func (s *AdminService) FilterAdminQuotes(ctx context.Context, p AdminQuoteParams) (catalog.Page[domain.QuoteView], error) {
	snap, err := loadSnapshot(ctx, s.store)
	if err != nil {
		return catalog.Page[domain.QuoteView]{}, fmt.Errorf("loading quotes: %w", err)
	}

	filtered := s.engine.Filter(snap.views(), catalog.Criteria{
		Query:      p.Query,
		AuthorID:   p.AuthorID,
		CategoryID: p.CategoryID,
	}, s.now())

	return catalog.Paginate(filtered, pageSize(p.PageSize, s.pageSize), p.Page), nil
}
