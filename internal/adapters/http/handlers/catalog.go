package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-catalog/internal/app"
)

// CatalogHandler handles the public browse endpoints: quotes, authors,
// topics, suggestions and the home page.
type CatalogHandler struct {
	service *app.CatalogService
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(service *app.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service: service,
	}
}

// SearchQuotes handles GET /api/v1/quotes
// Returns one page of quotes matching the query and filters.
//
// @Summary Search quotes
// @Tags quotes
// @Produce json
// @Param q query string false "Search text (quote, author, topic, tags)"
// @Param author query int false "Author ID"
// @Param category query int false "Topic ID"
// @Param filter query string false "recent, popular or featured"
// @Param sort query string false "Sort key"
// @Param page query int false "Page number"
// @Param pageSize query int false "Items per page"
// @Success 200 {object} dto.PageResponse[dto.QuoteResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/quotes [get]
func (h *CatalogHandler) SearchQuotes(c *gin.Context) {
	var req dto.QuoteSearchRequest
	if !bindQuery(c, &req) {
		return
	}

	page, err := h.service.SearchQuotes(c.Request.Context(), app.SearchParams{
		Criteria: req.Criteria(),
		Sort:     req.Sort,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPageResponse(page, dto.FromQuoteView))
}

// GetQuote handles GET /api/v1/quotes/:id
//
// @Summary Get a quote by ID
// @Tags quotes
// @Produce json
// @Param id path int true "Quote ID"
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id} [get]
func (h *CatalogHandler) GetQuote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	quote, err := h.service.GetQuote(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromQuoteView(quote))
}

// RandomQuote handles GET /api/v1/quotes/random
// Returns 404 EMPTY_COLLECTION when the catalog has no quotes.
//
// @Summary Get a random quote
// @Tags quotes
// @Produce json
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/random [get]
func (h *CatalogHandler) RandomQuote(c *gin.Context) {
	quote, err := h.service.RandomQuote(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromQuoteView(quote))
}

// ListAuthors handles GET /api/v1/authors
//
// @Summary List authors
// @Tags authors
// @Produce json
// @Param q query string false "Name filter"
// @Param sort query string false "name, profession or quotes"
// @Success 200 {object} dto.PageResponse[dto.AuthorResponse]
// @Router /api/v1/authors [get]
func (h *CatalogHandler) ListAuthors(c *gin.Context) {
	var req dto.AuthorListRequest
	if !bindQuery(c, &req) {
		return
	}

	page, err := h.service.ListAuthors(c.Request.Context(), app.AuthorParams{
		Query:    req.Query,
		Sort:     req.Sort,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPageResponse(page, dto.FromAuthorView))
}

// GetAuthor handles GET /api/v1/authors/:id
// The page query parameter pages through the author's quotes.
//
// @Summary Get an author page
// @Tags authors
// @Produce json
// @Param id path int true "Author ID"
// @Param page query int false "Page of the author's quotes"
// @Success 200 {object} dto.AuthorDetailResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/authors/{id} [get]
func (h *CatalogHandler) GetAuthor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.PageRequest
	if !bindQuery(c, &req) {
		return
	}

	detail, err := h.service.GetAuthor(c.Request.Context(), id, req.Page)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthorDetailResponse{
		Author:  dto.FromAuthorView(detail.Author),
		Quotes:  dto.NewPageResponse(detail.Quotes, dto.FromQuoteView),
		Related: dto.MapSlice(detail.Related, dto.FromAuthorView),
	})
}

// ListTopics handles GET /api/v1/topics
//
// @Summary List topics
// @Tags topics
// @Produce json
// @Param q query string false "Name filter"
// @Param featured query bool false "Only featured topics"
// @Param sort query string false "popular, name or newest"
// @Success 200 {object} dto.PageResponse[dto.TopicResponse]
// @Router /api/v1/topics [get]
func (h *CatalogHandler) ListTopics(c *gin.Context) {
	var req dto.TopicListRequest
	if !bindQuery(c, &req) {
		return
	}

	page, err := h.service.ListTopics(c.Request.Context(), app.TopicParams{
		Query:        req.Query,
		OnlyFeatured: req.Featured,
		Sort:         req.Sort,
		Page:         req.Page,
		PageSize:     req.PageSize,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPageResponse(page, dto.FromTopicView))
}

// GetTopic handles GET /api/v1/topics/:id
//
// @Summary Get a topic page
// @Tags topics
// @Produce json
// @Param id path int true "Topic ID"
// @Param page query int false "Page of the topic's quotes"
// @Success 200 {object} dto.TopicDetailResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/topics/{id} [get]
func (h *CatalogHandler) GetTopic(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.PageRequest
	if !bindQuery(c, &req) {
		return
	}

	detail, err := h.service.GetTopic(c.Request.Context(), id, req.Page)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TopicDetailResponse{
		Topic:   dto.FromTopicView(detail.Topic),
		Quotes:  dto.NewPageResponse(detail.Quotes, dto.FromQuoteView),
		Related: dto.MapSlice(detail.Related, dto.FromTopicView),
	})
}

// Suggest handles GET /api/v1/suggestions
// Returns author and topic names matching the typed prefix.
func (h *CatalogHandler) Suggest(c *gin.Context) {
	var req dto.SuggestRequest
	if !bindQuery(c, &req) {
		return
	}

	suggestions, err := h.service.Suggest(c.Request.Context(), req.Query)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": dto.MapSlice(suggestions, dto.FromSuggestion)})
}

// Home handles GET /api/v1/home
func (h *CatalogHandler) Home(c *gin.Context) {
	home, err := h.service.Home(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.HomeResponse{
		FeaturedQuotes: dto.MapSlice(home.FeaturedQuotes, dto.FromQuoteView),
		FeaturedTopics: dto.MapSlice(home.FeaturedTopics, dto.FromTopicView),
		Authors:        dto.MapSlice(home.Authors, dto.FromAuthorView),
	})
}

// RegisterCatalogRoutes registers the browse routes on the given router group.
// Static segments such as /quotes/random are matched before /quotes/:id.
func (h *CatalogHandler) RegisterCatalogRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.SearchQuotes)
	quotes.GET("/random", h.RandomQuote)
	quotes.GET("/:id", h.GetQuote)

	authors := rg.Group("/authors")
	authors.GET("", h.ListAuthors)
	authors.GET("/:id", h.GetAuthor)

	topics := rg.Group("/topics")
	topics.GET("", h.ListTopics)
	topics.GET("/:id", h.GetTopic)

	rg.GET("/suggestions", h.Suggest)
	rg.GET("/home", h.Home)
}
