package handler

import (
	appcrm "github.com/autodealer/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
)

// ReviewHandler serves customer ratings and their moderation
type ReviewHandler struct {
	BaseHandler
	reviewService *appcrm.ReviewService
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService *appcrm.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// PublicReviewQuery paginates the public review list
type PublicReviewQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size" binding:"omitempty,max=100"`
}

// GetRateState godoc
// @ID           getRateState
// @Summary      Rating page state
// @Description  Tells the rating page whether the lead can be reviewed
// @Tags         reviews
// @Produce      json
// @Param        token query string true "Tracking token"
// @Success      200 {object} dto.Response{data=appcrm.RateStateResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /rate [get]
func (h *ReviewHandler) GetRateState(c *gin.Context) {
	state, err := h.reviewService.GetRateState(c.Request.Context(), c.Query("token"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, state)
}

// SubmitReview godoc
// @ID           submitReview
// @Summary      Rate the manager
// @Description  One review per lead, only once a manager is assigned. Reviews are published after approval.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Param        token query string true "Tracking token"
// @Param        request body appcrm.SubmitReviewRequest true "Rating"
// @Success      201 {object} dto.Response{data=appcrm.ReviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /rate [post]
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	var req appcrm.SubmitReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.SubmitReview(c.Request.Context(), c.Query("token"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, review)
}

// ListPublicReviews godoc
// @ID           listPublicReviews
// @Summary      Approved reviews
// @Tags         reviews
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]appcrm.PublicReviewResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reviews [get]
func (h *ReviewHandler) ListPublicReviews(c *gin.Context) {
	var q PublicReviewQuery
	if !h.bindQuery(c, &q) {
		return
	}

	reviews, total, err := h.reviewService.ListPublicReviews(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, reviews, total, q.Page, q.PageSize)
}

// ListReviews godoc
// @ID           listReviews
// @Summary      All reviews for moderation
// @Tags         admin
// @Produce      json
// @Param        approved query bool false "Filter by approval"
// @Param        manager_id query string false "Reviewed manager" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]appcrm.ReviewResponse,meta=dto.Meta}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/reviews [get]
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	var filter appcrm.ReviewListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	reviews, total, err := h.reviewService.ListReviews(c.Request.Context(), actor(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, reviews, total, filter.Page, filter.PageSize)
}

// SetApproval godoc
// @ID           setReviewApproval
// @Summary      Approve or reject a review
// @Description  The first approval awards the manager rating x 4 points. Approval state changes are idempotent.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Review ID" format(uuid)
// @Param        request body appcrm.ApproveReviewRequest true "Approval"
// @Success      200 {object} dto.Response{data=appcrm.ReviewResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/reviews/{id}/approval [patch]
func (h *ReviewHandler) SetApproval(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appcrm.ApproveReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.ApproveReview(c.Request.Context(), actor(c), id, *req.Approve)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, review)
}

// DeleteReview godoc
// @ID           deleteReview
// @Summary      Delete a review
// @Tags         admin
// @Param        id path string true "Review ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), actor(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
