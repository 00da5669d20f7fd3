package handler

import (
	appcrm "github.com/autodealer/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
)

// StatsHandler serves dashboards and the manager leaderboard
type StatsHandler struct {
	BaseHandler
	statsService *appcrm.StatsService
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(statsService *appcrm.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// LeadStats godoc
// @ID           getLeadStats
// @Summary      Lead pipeline statistics
// @Description  Counts per stage and the conversion rate (won share of closed leads, in percent)
// @Tags         stats
// @Produce      json
// @Success      200 {object} dto.Response{data=appcrm.LeadStatsResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/stats/leads [get]
func (h *StatsHandler) LeadStats(c *gin.Context) {
	stats, err := h.statsService.LeadStats(c.Request.Context(), actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// CarStats godoc
// @ID           getCarStats
// @Summary      Inventory statistics
// @Tags         stats
// @Produce      json
// @Success      200 {object} dto.Response{data=appcrm.CarStatsResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/stats/cars [get]
func (h *StatsHandler) CarStats(c *gin.Context) {
	stats, err := h.statsService.CarStats(c.Request.Context(), actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Leaderboard godoc
// @ID           getLeaderboard
// @Summary      Manager leaderboard
// @Description  Managers ranked by total points
// @Tags         scores
// @Produce      json
// @Success      200 {object} dto.Response{data=[]appcrm.LeaderboardEntry}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /scores/leaderboard [get]
func (h *StatsHandler) Leaderboard(c *gin.Context) {
	entries, err := h.statsService.Leaderboard(c.Request.Context(), actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// MyScores godoc
// @ID           getMyScores
// @Summary      The caller's score history
// @Tags         scores
// @Produce      json
// @Success      200 {object} dto.Response{data=appcrm.MyScoresResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /scores/me [get]
func (h *StatsHandler) MyScores(c *gin.Context) {
	scores, err := h.statsService.MyScores(c.Request.Context(), actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, scores)
}
