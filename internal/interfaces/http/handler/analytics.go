package handler

import (
	"net/http"

	"github.com/autodealer/backend/internal/application/analytics"
	"github.com/autodealer/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandler records website interactions and reports on them
type AnalyticsHandler struct {
	BaseHandler
	analyticsService *analytics.Service
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// TrackEvent godoc
// @ID           trackEvent
// @Summary      Record a website event
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        request body analytics.TrackEventRequest true "Event"
// @Success      202 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /analytics/events [post]
func (h *AnalyticsHandler) TrackEvent(c *gin.Context) {
	var req analytics.TrackEventRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.analyticsService.Track(c.Request.Context(), actor(c), req); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(nil))
}

// Summary godoc
// @ID           getAnalyticsSummary
// @Summary      Event counts
// @Tags         analytics
// @Produce      json
// @Param        days query int false "Reporting window in days" default(30) maximum(365)
// @Success      200 {object} dto.Response{data=analytics.SummaryResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/analytics [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	var filter analytics.SummaryFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	summary, err := h.analyticsService.Summary(c.Request.Context(), actor(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
