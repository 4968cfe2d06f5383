package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quote-catalog/internal/app"
)

// EngagementHandler handles likes, bookmarks and shares. Every endpoint acts
// for the session resolved by middleware.Session.
type EngagementHandler struct {
	service *app.EngagementService
}

// NewEngagementHandler creates a new engagement handler.
func NewEngagementHandler(service *app.EngagementService) *EngagementHandler {
	return &EngagementHandler{
		service: service,
	}
}

// ToggleLike handles POST /api/v1/quotes/:id/like
// A second call from the same session removes the like.
//
// @Summary Toggle a like
// @Tags engagement
// @Produce json
// @Param id path int true "Quote ID"
// @Param X-Session-ID header string true "Session identifier"
// @Success 200 {object} dto.EngagementResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id}/like [post]
func (h *EngagementHandler) ToggleLike(c *gin.Context) {
	h.toggle(c, h.service.ToggleLike)
}

// ToggleBookmark handles POST /api/v1/quotes/:id/bookmark
func (h *EngagementHandler) ToggleBookmark(c *gin.Context) {
	h.toggle(c, h.service.ToggleBookmark)
}

type toggleFunc func(ctx context.Context, sessionID string, quoteID int64) (app.EngagementResult, error)

func (h *EngagementHandler) toggle(c *gin.Context, fn toggleFunc) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res, err := fn(c.Request.Context(), middleware.GetSessionID(c), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewEngagementResponse(res.State, res.Quote))
}

// Share handles POST /api/v1/quotes/:id/share
// Counts the share and returns the text for the share target.
//
// @Summary Share a quote
// @Tags engagement
// @Produce json
// @Param id path int true "Quote ID"
// @Success 200 {object} dto.ShareResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{id}/share [post]
func (h *EngagementHandler) Share(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	res, err := h.service.Share(c.Request.Context(), middleware.GetSessionID(c), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ShareResponse{
		Quote: dto.FromQuoteView(res.Quote),
		Text:  res.Text,
	})
}

// Favorites handles GET /api/v1/me/engagement
// Lists the quotes the current session liked and bookmarked.
func (h *EngagementHandler) Favorites(c *gin.Context) {
	favs, err := h.service.Favorites(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FavoritesResponse{
		Liked:      nonNil(favs.Liked),
		Bookmarked: nonNil(favs.Bookmarked),
	})
}

// RegisterEngagementRoutes registers engagement routes on the given router group.
func (h *EngagementHandler) RegisterEngagementRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.POST("/:id/like", h.ToggleLike)
	quotes.POST("/:id/bookmark", h.ToggleBookmark)
	quotes.POST("/:id/share", h.Share)

	rg.GET("/me/engagement", h.Favorites)
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}

	return ids
}
