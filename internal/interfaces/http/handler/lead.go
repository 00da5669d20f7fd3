package handler

import (
	appcrm "github.com/autodealer/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
)

// LeadHandler serves lead intake, the public status page and the manager workflow
type LeadHandler struct {
	BaseHandler
	leadService *appcrm.LeadService
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(leadService *appcrm.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

// CreateLead godoc
// @ID           createLead
// @Summary      Submit an inquiry
// @Description  Public lead form. A signed-in client is linked to the lead. The response carries the tracking token and the status and rating links built from it.
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        request body appcrm.CreateLeadRequest true "Inquiry"
// @Success      201 {object} dto.Response{data=appcrm.CreateLeadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /leads [post]
func (h *LeadHandler) CreateLead(c *gin.Context) {
	var req appcrm.CreateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.leadService.CreateLead(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetLeadStatus godoc
// @ID           getLeadStatus
// @Summary      Lead status by tracking token
// @Description  What the customer sees through the status link. Contact details and internal ids are never included.
// @Tags         leads
// @Produce      json
// @Param        token query string true "Tracking token"
// @Success      200 {object} dto.Response{data=appcrm.LeadStatusResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /lead-status [get]
func (h *LeadHandler) GetLeadStatus(c *gin.Context) {
	status, err := h.leadService.GetLeadStatus(c.Request.Context(), c.Query("token"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}

// ListLeads godoc
// @ID           listLeads
// @Summary      List leads
// @Description  Managers see unassigned leads and their own. Admins see all.
// @Tags         leads
// @Produce      json
// @Param        search query string false "Search in customer name, phone and email"
// @Param        status query string false "Status" Enums(new, contacted, negotiating, closed_won, closed_lost)
// @Param        assigned_manager_id query string false "Assignee (admin only)" format(uuid)
// @Param        unassigned query bool false "Only unassigned leads"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} dto.Response{data=[]appcrm.LeadResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads [get]
func (h *LeadHandler) ListLeads(c *gin.Context) {
	var filter appcrm.LeadListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	leads, total, err := h.leadService.ListLeads(c.Request.Context(), actor(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, leads, total, filter.Page, filter.PageSize)
}

// GetLead godoc
// @ID           getLead
// @Summary      Get lead by ID
// @Tags         leads
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Success      200 {object} dto.Response{data=appcrm.LeadResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads/{id} [get]
func (h *LeadHandler) GetLead(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	lead, err := h.leadService.GetLead(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lead)
}

// ClaimLead godoc
// @ID           claimLead
// @Summary      Claim a lead
// @Description  Assigns a new, unassigned lead to the caller. When several managers claim at once exactly one wins; the others get 409.
// @Tags         leads
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Success      200 {object} dto.Response{data=appcrm.LeadResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads/{id}/claim [post]
func (h *LeadHandler) ClaimLead(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	lead, err := h.leadService.ClaimLead(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lead)
}

// ChangeStatus godoc
// @ID           changeLeadStatus
// @Summary      Move a lead through the workflow
// @Description  Only the assigned manager may change status. A lead never returns to new. Closing as won awards the sale bonus.
// @Tags         leads
// @Accept       json
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Param        request body appcrm.ChangeStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=appcrm.LeadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /leads/{id}/status [patch]
func (h *LeadHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appcrm.ChangeStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lead, err := h.leadService.ChangeStatus(c.Request.Context(), actor(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lead)
}

// AdminUpdateLead godoc
// @ID           adminUpdateLead
// @Summary      Override lead status or assignee
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Lead ID" format(uuid)
// @Param        request body appcrm.AdminUpdateLeadRequest true "Override"
// @Success      200 {object} dto.Response{data=appcrm.LeadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/leads/{id} [put]
func (h *LeadHandler) AdminUpdateLead(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appcrm.AdminUpdateLeadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lead, err := h.leadService.AdminUpdateLead(c.Request.Context(), actor(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lead)
}

// ListClientLeads godoc
// @ID           listClientLeads
// @Summary      The caller's own inquiries
// @Tags         client
// @Produce      json
// @Success      200 {object} dto.Response{data=[]appcrm.ClientLeadResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /client/leads [get]
func (h *LeadHandler) ListClientLeads(c *gin.Context) {
	leads, err := h.leadService.ListClientLeads(c.Request.Context(), actor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, leads)
}
