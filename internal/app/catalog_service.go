package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/domain/catalog"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

// Home page section sizes.
const (
	DefaultHomeFeaturedQuotes = 4
	HomeFeaturedTopics        = 4
	HomeAuthors               = 4
	RelatedLimit              = 6
)

// CatalogService answers the read side of the catalog: search, browse and
// lookups. Every listing runs store → resolve names → filter → sort → page.
type CatalogService struct {
	store           ports.CatalogStore
	flags           ports.FeatureFlags
	engine          catalog.Engine
	pageSize        int
	suggestionLimit int
	now             func() time.Time
	logger          *slog.Logger
}

// CatalogServiceConfig contains configuration for the catalog service.
type CatalogServiceConfig struct {
	Store ports.CatalogStore

	// Flags is optional. Without it every flag takes its default.
	Flags ports.FeatureFlags

	// Engine thresholds; the zero value selects catalog.DefaultEngine.
	Engine catalog.Engine

	PageSize        int
	SuggestionLimit int
	Clock           func() time.Time
	Logger          *slog.Logger
}

// NewCatalogService creates a catalog service. It panics without a store.
func NewCatalogService(cfg CatalogServiceConfig) *CatalogService {
	if cfg.Store == nil {
		panic("app: CatalogServiceConfig.Store is required")
	}

	engine := cfg.Engine
	if engine == (catalog.Engine{}) {
		engine = catalog.DefaultEngine()
	}

	limit := cfg.SuggestionLimit
	if limit < 1 {
		limit = catalog.DefaultSuggestionLimit
	}

	return &CatalogService{
		store:           cfg.Store,
		flags:           cfg.Flags,
		engine:          engine,
		pageSize:        pageSize(cfg.PageSize, 0),
		suggestionLimit: limit,
		now:             defaultClock(cfg.Clock),
		logger:          defaultLogger(cfg.Logger, "app.CatalogService"),
	}
}

// SearchParams selects one page of quotes.
type SearchParams struct {
	Criteria catalog.Criteria
	Sort     string
	Page     int
	PageSize int
}

// SearchQuotes filters, orders and pages the quote collection.
func (s *CatalogService) SearchQuotes(ctx context.Context, p SearchParams) (catalog.Page[domain.QuoteView], error) {
	key, err := catalog.ParseSortKey(p.Sort)
	if err != nil {
		return catalog.Page[domain.QuoteView]{}, err
	}

	snap, err := loadSnapshot(ctx, s.store)
	if err != nil {
		return catalog.Page[domain.QuoteView]{}, fmt.Errorf("loading catalog: %w", err)
	}

	filtered := s.engine.Filter(snap.views(), p.Criteria, s.now())

	sorted, err := catalog.Sort(filtered, key, p.Criteria.Query)
	if err != nil {
		return catalog.Page[domain.QuoteView]{}, err
	}

	page := catalog.Paginate(sorted, pageSize(p.PageSize, s.pageSize), p.Page)

	componentLogger(ctx, s.logger, "SearchQuotes").DebugContext(ctx, "searched quotes",
		slog.String("query", p.Criteria.Query),
		slog.String("sort", string(key)),
		slog.Int("matches", page.TotalItems),
	)

	return page, nil
}

// GetQuote returns one quote with resolved names.
func (s *CatalogService) GetQuote(ctx context.Context, id int64) (domain.QuoteView, error) {
	q, err := s.store.GetQuote(ctx, id)
	if err != nil {
		return domain.QuoteView{}, fmt.Errorf("getting quote: %w", err)
	}

	return quoteView(ctx, s.store, q)
}

// RandomQuote returns a uniformly chosen quote.
func (s *CatalogService) RandomQuote(ctx context.Context) (domain.QuoteView, error) {
	q, err := s.store.RandomQuote(ctx)
	if err != nil {
		return domain.QuoteView{}, fmt.Errorf("picking random quote: %w", err)
	}

	return quoteView(ctx, s.store, q)
}

// AuthorParams selects one page of the author directory.
type AuthorParams struct {
	Query    string
	Sort     string
	Page     int
	PageSize int
}

// ListAuthors filters, orders and pages the author directory.
func (s *CatalogService) ListAuthors(ctx context.Context, p AuthorParams) (catalog.Page[catalog.AuthorView], error) {
	key, err := catalog.ParseAuthorSortKey(p.Sort)
	if err != nil {
		return catalog.Page[catalog.AuthorView]{}, err
	}

	authors, quotes, err := Parallel2(ctx, s.store.ListAuthors, s.store.ListQuotes)
	if err != nil {
		return catalog.Page[catalog.AuthorView]{}, fmt.Errorf("loading authors: %w", err)
	}

	views := catalog.FilterAuthors(catalog.AuthorViews(authors, quotes), p.Query)

	sorted, err := catalog.SortAuthors(views, key)
	if err != nil {
		return catalog.Page[catalog.AuthorView]{}, err
	}

	return catalog.Paginate(sorted, pageSize(p.PageSize, s.pageSize), p.Page), nil
}

// AuthorDetail is an author page: the author, a page of their quotes and
// other authors to explore.
type AuthorDetail struct {
	Author  catalog.AuthorView
	Quotes  catalog.Page[domain.QuoteView]
	Related []catalog.AuthorView
}

// GetAuthor returns the author page for id.
func (s *CatalogService) GetAuthor(ctx context.Context, id int64, page int) (AuthorDetail, error) {
	if _, err := s.store.GetAuthor(ctx, id); err != nil {
		return AuthorDetail{}, fmt.Errorf("getting author: %w", err)
	}

	own, snap, err := Parallel2(ctx,
		func(ctx context.Context) ([]domain.Quote, error) { return s.store.QuotesByAuthor(ctx, id) },
		func(ctx context.Context) (snapshot, error) { return loadSnapshot(ctx, s.store) },
	)
	if err != nil {
		return AuthorDetail{}, fmt.Errorf("loading author page: %w", err)
	}

	views := catalog.AuthorViews(snap.authors, snap.quotes)

	var detail AuthorDetail
	for _, v := range views {
		if v.ID == id {
			detail.Author = v
			break
		}
	}

	if detail.Author.ID == 0 {
		return AuthorDetail{}, domain.NewNotFoundError("author", domain.FormatID(id))
	}

	detail.Quotes = catalog.Paginate(snap.index.Views(own), s.pageSize, page)
	detail.Related = catalog.RelatedAuthors(views, id, RelatedLimit)

	return detail, nil
}

// TopicParams selects one page of the topic directory.
type TopicParams struct {
	Query        string
	OnlyFeatured bool
	Sort         string
	Page         int
	PageSize     int
}

// ListTopics filters, orders and pages the topic directory.
func (s *CatalogService) ListTopics(ctx context.Context, p TopicParams) (catalog.Page[catalog.TopicView], error) {
	key, err := catalog.ParseTopicSortKey(p.Sort)
	if err != nil {
		return catalog.Page[catalog.TopicView]{}, err
	}

	topics, quotes, err := Parallel2(ctx, s.store.ListTopics, s.store.ListQuotes)
	if err != nil {
		return catalog.Page[catalog.TopicView]{}, fmt.Errorf("loading topics: %w", err)
	}

	views := catalog.FilterTopics(catalog.TopicViews(topics, quotes), p.Query, p.OnlyFeatured)

	sorted, err := catalog.SortTopics(views, key)
	if err != nil {
		return catalog.Page[catalog.TopicView]{}, err
	}

	return catalog.Paginate(sorted, pageSize(p.PageSize, s.pageSize), p.Page), nil
}

// TopicDetail is a topic page.
type TopicDetail struct {
	Topic   catalog.TopicView
	Quotes  catalog.Page[domain.QuoteView]
	Related []catalog.TopicView
}

// GetTopic returns the topic page for id.
func (s *CatalogService) GetTopic(ctx context.Context, id int64, page int) (TopicDetail, error) {
	if _, err := s.store.GetTopic(ctx, id); err != nil {
		return TopicDetail{}, fmt.Errorf("getting topic: %w", err)
	}

	own, snap, err := Parallel2(ctx,
		func(ctx context.Context) ([]domain.Quote, error) { return s.store.QuotesByTopic(ctx, id) },
		func(ctx context.Context) (snapshot, error) { return loadSnapshot(ctx, s.store) },
	)
	if err != nil {
		return TopicDetail{}, fmt.Errorf("loading topic page: %w", err)
	}

	views := catalog.TopicViews(snap.topics, snap.quotes)

	var detail TopicDetail
	for _, v := range views {
		if v.ID == id {
			detail.Topic = v
			break
		}
	}

	if detail.Topic.ID == 0 {
		return TopicDetail{}, domain.NewNotFoundError("topic", domain.FormatID(id))
	}

	detail.Quotes = catalog.Paginate(snap.index.Views(own), s.pageSize, page)
	detail.Related = catalog.RelatedTopics(views, id, RelatedLimit)

	return detail, nil
}

// Suggest returns search-as-you-type suggestions, authors first.
func (s *CatalogService) Suggest(ctx context.Context, query string) ([]catalog.Suggestion, error) {
	authors, topics, err := Parallel2(ctx, s.store.ListAuthors, s.store.ListTopics)
	if err != nil {
		return nil, fmt.Errorf("loading suggestions: %w", err)
	}

	return catalog.Suggest(authors, topics, query, s.suggestionLimit), nil
}

// Home is the landing page content.
type Home struct {
	FeaturedQuotes []domain.QuoteView
	FeaturedTopics []catalog.TopicView
	Authors        []catalog.AuthorView
}

// Home assembles the landing page from one catalog snapshot.
func (s *CatalogService) Home(ctx context.Context) (Home, error) {
	snap, err := loadSnapshot(ctx, s.store)
	if err != nil {
		return Home{}, fmt.Errorf("loading home: %w", err)
	}

	featuredCount := DefaultHomeFeaturedQuotes
	if s.flags != nil {
		featuredCount = s.flags.GetInt(ctx, ports.FlagHomeFeaturedCount, DefaultHomeFeaturedQuotes)
	}

	featured := s.engine.Filter(snap.views(), catalog.Criteria{OnlyFeatured: true}, s.now())
	topics := catalog.FilterTopics(catalog.TopicViews(snap.topics, snap.quotes), "", true)

	return Home{
		FeaturedQuotes: firstN(featured, featuredCount),
		FeaturedTopics: firstN(topics, HomeFeaturedTopics),
		Authors:        firstN(catalog.AuthorViews(snap.authors, snap.quotes), HomeAuthors),
	}, nil
}

func firstN[T any](items []T, n int) []T {
	n = max(min(n, len(items)), 0)

	return append(make([]T, 0, n), items[:n]...)
}
