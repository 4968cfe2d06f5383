package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-catalog/internal/app"
)

// AdminHandler handles the catalog maintenance endpoints. Routes are
// registered behind RequireAdmin by the router.
type AdminHandler struct {
	service *app.AdminService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(service *app.AdminService) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

// Dashboard handles GET /api/v1/admin/dashboard
//
// @Summary Catalog totals and leaderboards
// @Tags admin
// @Produce json
// @Success 200 {object} dto.DashboardResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/v1/admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	d, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DashboardResponse{
		TotalQuotes:    d.TotalQuotes,
		TotalAuthors:   d.TotalAuthors,
		TotalTopics:    d.TotalTopics,
		TotalLikes:     d.TotalLikes,
		TotalShares:    d.TotalShares,
		TotalBookmarks: d.TotalBookmarks,
		TopQuotes:      dto.MapSlice(d.TopQuotes, dto.FromQuoteView),
		TopAuthors:     dto.MapSlice(d.TopAuthors, dto.FromAuthor),
	})
}

// ListQuotes handles GET /api/v1/admin/quotes
// Unlike the public search, results stay in store order.
func (h *AdminHandler) ListQuotes(c *gin.Context) {
	var req dto.AdminQuoteListRequest
	if !bindQuery(c, &req) {
		return
	}

	page, err := h.service.FilterAdminQuotes(c.Request.Context(), app.AdminQuoteParams{
		Query:      req.Query,
		AuthorID:   req.Author,
		CategoryID: req.Category,
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPageResponse(page, dto.FromQuoteView))
}

// CreateQuote handles POST /api/v1/admin/quotes
//
// @Summary Add a quote
// @Tags admin
// @Accept json
// @Produce json
// @Param body body dto.QuoteRequest true "Quote"
// @Success 201 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /api/v1/admin/quotes [post]
func (h *AdminHandler) CreateQuote(c *gin.Context) {
	var req dto.QuoteRequest
	if !bindJSON(c, &req) {
		return
	}

	quote, err := h.service.AddQuote(c.Request.Context(), req.ToInput())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromQuoteView(quote))
}

// UpdateQuote handles PUT /api/v1/admin/quotes/:id
// Engagement counters are kept.
func (h *AdminHandler) UpdateQuote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.QuoteRequest
	if !bindJSON(c, &req) {
		return
	}

	quote, err := h.service.UpdateQuote(c.Request.Context(), id, req.ToInput())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromQuoteView(quote))
}

// DeleteQuote handles DELETE /api/v1/admin/quotes/:id
func (h *AdminHandler) DeleteQuote(c *gin.Context) {
	h.remove(c, h.service.DeleteQuote)
}

// CreateAuthor handles POST /api/v1/admin/authors
func (h *AdminHandler) CreateAuthor(c *gin.Context) {
	var req dto.AuthorRequest
	if !bindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	author, err := h.service.AddAuthor(c.Request.Context(), in)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromAuthor(author))
}

// UpdateAuthor handles PUT /api/v1/admin/authors/:id
func (h *AdminHandler) UpdateAuthor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.AuthorRequest
	if !bindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	author, err := h.service.UpdateAuthor(c.Request.Context(), id, in)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAuthor(author))
}

// DeleteAuthor handles DELETE /api/v1/admin/authors/:id
// Authors that still have quotes are a 409 CONFLICT.
func (h *AdminHandler) DeleteAuthor(c *gin.Context) {
	h.remove(c, h.service.DeleteAuthor)
}

// CreateTopic handles POST /api/v1/admin/topics
func (h *AdminHandler) CreateTopic(c *gin.Context) {
	var req dto.TopicRequest
	if !bindJSON(c, &req) {
		return
	}

	topic, err := h.service.AddTopic(c.Request.Context(), req.ToInput())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromTopic(topic))
}

// UpdateTopic handles PUT /api/v1/admin/topics/:id
func (h *AdminHandler) UpdateTopic(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.TopicRequest
	if !bindJSON(c, &req) {
		return
	}

	topic, err := h.service.UpdateTopic(c.Request.Context(), id, req.ToInput())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTopic(topic))
}

// DeleteTopic handles DELETE /api/v1/admin/topics/:id
func (h *AdminHandler) DeleteTopic(c *gin.Context) {
	h.remove(c, h.service.DeleteTopic)
}

func (h *AdminHandler) remove(c *gin.Context, fn func(ctx context.Context, id int64) error) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := fn(c.Request.Context(), id); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterAdminRoutes registers the catalog maintenance routes on rg, which
// is expected to carry the admin authorization middleware.
func (h *AdminHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.Dashboard)

	quotes := rg.Group("/quotes")
	quotes.GET("", h.ListQuotes)
	quotes.POST("", h.CreateQuote)
	quotes.PUT("/:id", h.UpdateQuote)
	quotes.DELETE("/:id", h.DeleteQuote)

	authors := rg.Group("/authors")
	authors.POST("", h.CreateAuthor)
	authors.PUT("/:id", h.UpdateAuthor)
	authors.DELETE("/:id", h.DeleteAuthor)

	topics := rg.Group("/topics")
	topics.POST("", h.CreateTopic)
	topics.PUT("/:id", h.UpdateTopic)
	topics.DELETE("/:id", h.DeleteTopic)
}
