package handler

import (
	appidentity "github.com/autodealer/backend/internal/application/identity"
	"github.com/autodealer/backend/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

// AdminHandler serves staff provisioning and role management
type AdminHandler struct {
	BaseHandler
	provisioning *appidentity.ManagerProvisioningService
	roleService  *appidentity.RoleService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(provisioning *appidentity.ManagerProvisioningService, roleService *appidentity.RoleService) *AdminHandler {
	return &AdminHandler{provisioning: provisioning, roleService: roleService}
}

// CreateManager godoc
// @ID           createManager
// @Summary      Create a manager account
// @Description  The caller's admin role is re-read from storage. If granting the role fails the account is removed again.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body appidentity.CreateManagerRequest true "Manager"
// @Success      201 {object} dto.Response{data=appidentity.CreateManagerResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/managers [post]
func (h *AdminHandler) CreateManager(c *gin.Context) {
	var req appidentity.CreateManagerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.provisioning.CreateManager(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListManagers godoc
// @ID           listManagers
// @Summary      List manager accounts
// @Tags         admin
// @Produce      json
// @Success      200 {object} dto.Response{data=[]appidentity.StaffMemberResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/managers [get]
func (h *AdminHandler) ListManagers(c *gin.Context) {
	staff, err := h.roleService.ListStaff(c.Request.Context(), actor(c), identity.RoleManager)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, staff)
}

// AssignRole godoc
// @ID           assignRole
// @Summary      Grant a staff role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Param        request body appidentity.AssignRoleRequest true "Role"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users/{id}/roles [post]
func (h *AdminHandler) AssignRole(c *gin.Context) {
	userID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appidentity.AssignRoleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.roleService.AssignRole(c.Request.Context(), actor(c), userID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RevokeRole godoc
// @ID           revokeRole
// @Summary      Revoke a staff role
// @Description  Also ends the account's active sessions
// @Tags         admin
// @Param        id path string true "User ID" format(uuid)
// @Param        role path string true "Role" Enums(admin, manager)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/users/{id}/roles/{role} [delete]
func (h *AdminHandler) RevokeRole(c *gin.Context) {
	userID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.roleService.RevokeRole(c.Request.Context(), actor(c), userID, c.Param("role")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
