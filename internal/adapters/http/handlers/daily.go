package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-catalog/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-catalog/internal/app"
	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

// DailyQuoteHandler handles the quote-of-the-day endpoints.
type DailyQuoteHandler struct {
	service *app.DailyQuoteService
	flags   ports.FeatureFlags
}

// NewDailyQuoteHandler creates a new daily quote handler. flags may be nil,
// in which case the public reroll endpoint is always forbidden.
func NewDailyQuoteHandler(service *app.DailyQuoteService, flags ports.FeatureFlags) *DailyQuoteHandler {
	return &DailyQuoteHandler{
		service: service,
		flags:   flags,
	}
}

func toDailyResponse(dq app.DailyQuote) dto.DailyQuoteResponse {
	return dto.NewDailyQuoteResponse(dq.Day, dq.Quote)
}

// Today handles GET /api/v1/quotes/daily
// Every visitor sees the same quote for the whole UTC day.
//
// @Summary Get the quote of the day
// @Tags daily
// @Produce json
// @Success 200 {object} dto.DailyQuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/daily [get]
func (h *DailyQuoteHandler) Today(c *gin.Context) {
	dq, err := h.service.Today(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toDailyResponse(dq))
}

// Recent handles GET /api/v1/quotes/daily/recent
// Returns the picks of the days before today, newest first.
func (h *DailyQuoteHandler) Recent(c *gin.Context) {
	var req dto.RecentDailyRequest
	if !bindQuery(c, &req) {
		return
	}

	recent, err := h.service.Recent(c.Request.Context(), req.Days)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": dto.MapSlice(recent, toDailyResponse)})
}

// Reroll handles POST /api/v1/admin/daily/reroll
// The admin group has already checked the caller's role.
func (h *DailyQuoteHandler) Reroll(c *gin.Context) {
	dq, err := h.service.Reroll(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toDailyResponse(dq))
}

// PublicReroll handles POST /api/v1/quotes/daily/reroll
// It is open to every visitor only while the public-daily-reroll flag is on.
func (h *DailyQuoteHandler) PublicReroll(c *gin.Context) {
	if h.flags == nil || !h.flags.IsEnabled(c.Request.Context(), ports.FlagPublicDailyReroll, false) {
		dto.HandleError(c, domain.NewForbiddenError("reroll daily quote", "rerolling the daily quote is restricted to admins"))
		return
	}

	h.Reroll(c)
}

// RegisterDailyRoutes registers the public daily quote routes.
func (h *DailyQuoteHandler) RegisterDailyRoutes(rg *gin.RouterGroup) {
	daily := rg.Group("/quotes/daily")
	daily.GET("", h.Today)
	daily.GET("/recent", h.Recent)
	daily.POST("/reroll", h.PublicReroll)
}
