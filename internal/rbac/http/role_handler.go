package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/qacms/internal/httputil"
	"github.com/allisson/qacms/internal/rbac/http/dto"
	"github.com/allisson/qacms/internal/rbac/usecase"
	customValidation "github.com/allisson/qacms/internal/validation"
)

// RoleHandler handles role administration and role permission management.
type RoleHandler struct {
	roleUseCase       usecase.RoleUseCase
	assignmentUseCase usecase.AssignmentUseCase
	logger            *slog.Logger
}

// NewRoleHandler creates a new role handler with required dependencies.
func NewRoleHandler(
	roleUseCase usecase.RoleUseCase,
	assignmentUseCase usecase.AssignmentUseCase,
	logger *slog.Logger,
) *RoleHandler {
	return &RoleHandler{
		roleUseCase:       roleUseCase,
		assignmentUseCase: assignmentUseCase,
		logger:            logger,
	}
}

// ListHandler lists every role ordered by name.
// GET /v1/roles - Requires roles.view.
func (h *RoleHandler) ListHandler(c *gin.Context) {
	roles, err := h.roleUseCase.List(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRolesToListResponse(roles))
}

// GetHandler retrieves a role by ID.
// GET /v1/roles/:id - Requires roles.view.
func (h *RoleHandler) GetHandler(c *gin.Context) {
	roleID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	role, err := h.roleUseCase.Get(c.Request.Context(), roleID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRoleToResponse(role))
}

// CreateHandler creates a custom role.
// POST /v1/roles - Requires roles.create. Returns 201 Created.
func (h *RoleHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateRoleRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	role, err := h.roleUseCase.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapRoleToResponse(role))
}

// UpdateHandler updates a role. Renaming a system role is answered with 409.
// PUT /v1/roles/:id - Requires roles.update.
func (h *RoleHandler) UpdateHandler(c *gin.Context) {
	roleID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.UpdateRoleRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	role, err := h.roleUseCase.Update(c.Request.Context(), roleID, req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRoleToResponse(role))
}

// DeleteHandler deletes a custom role. System roles are answered with 409.
// DELETE /v1/roles/:id - Requires roles.delete. Returns 204 No Content.
func (h *RoleHandler) DeleteHandler(c *gin.Context) {
	roleID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.roleUseCase.Delete(c.Request.Context(), roleID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListPermissionsHandler lists the permissions granted to a role.
// GET /v1/roles/:id/permissions - Requires roles.view.
func (h *RoleHandler) ListPermissionsHandler(c *gin.Context) {
	roleID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	perms, err := h.assignmentUseCase.GetRolePermissions(c.Request.Context(), roleID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPermissionsToListResponse(perms))
}

// SyncPermissionsHandler replaces a role's permission set.
// PUT /v1/roles/:id/permissions - Requires roles.update.
func (h *RoleHandler) SyncPermissionsHandler(c *gin.Context) {
	roleID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.SyncPermissionsRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.assignmentUseCase.SyncPermissions(c.Request.Context(), roleID, req.IDs())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSyncResultToResponse(result))
}

// AssignPermissionHandler grants one permission to a role. Granting a held
// permission is a no-op.
// POST /v1/roles/:id/permissions/:permission_id - Requires roles.update.
func (h *RoleHandler) AssignPermissionHandler(c *gin.Context) {
	roleID, permissionID, ok := h.parsePair(c)
	if !ok {
		return
	}

	if err := h.assignmentUseCase.AssignPermissionToRole(c.Request.Context(), roleID, permissionID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemovePermissionHandler revokes one permission from a role.
// DELETE /v1/roles/:id/permissions/:permission_id - Requires roles.update.
func (h *RoleHandler) RemovePermissionHandler(c *gin.Context) {
	roleID, permissionID, ok := h.parsePair(c)
	if !ok {
		return
	}

	if err := h.assignmentUseCase.RemovePermissionFromRole(c.Request.Context(), roleID, permissionID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RoleHandler) parsePair(c *gin.Context) (roleID, permissionID uuid.UUID, ok bool) {
	rid, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return roleID, permissionID, false
	}
	pid, err := httputil.ParseUUIDParam(c, "permission_id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return roleID, permissionID, false
	}
	return rid, pid, true
}
