package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/qacms/internal/httputil"
	"github.com/allisson/qacms/internal/rbac/http/dto"
	"github.com/allisson/qacms/internal/rbac/usecase"
	customValidation "github.com/allisson/qacms/internal/validation"
)

// UserRoleHandler manages the roles held by a user.
type UserRoleHandler struct {
	assignmentUseCase usecase.AssignmentUseCase
	logger            *slog.Logger
}

// NewUserRoleHandler creates a new user role handler.
func NewUserRoleHandler(assignmentUseCase usecase.AssignmentUseCase, logger *slog.Logger) *UserRoleHandler {
	return &UserRoleHandler{
		assignmentUseCase: assignmentUseCase,
		logger:            logger,
	}
}

// ListHandler returns the ids of the roles held by a user.
// GET /v1/users/:id/roles - Requires users.view.
func (h *UserRoleHandler) ListHandler(c *gin.Context) {
	userID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	roleIDs, err := h.assignmentUseCase.GetUserRoleIDs(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	ids := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		ids = append(ids, id.String())
	}

	c.JSON(http.StatusOK, dto.RoleIDsResponse{
		UserID:  userID.String(),
		RoleIDs: ids,
	})
}

// SyncHandler replaces a user's role set. An empty list revokes every role.
// PUT /v1/users/:id/roles - Requires users.update.
func (h *UserRoleHandler) SyncHandler(c *gin.Context) {
	userID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.SyncRolesRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	result, err := h.assignmentUseCase.SyncRoles(c.Request.Context(), userID, req.IDs())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSyncResultToResponse(result))
}

// AssignHandler grants one role to a user.
// POST /v1/users/:id/roles/:role_id - Requires users.update.
func (h *UserRoleHandler) AssignHandler(c *gin.Context) {
	userID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	roleID, err := httputil.ParseUUIDParam(c, "role_id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.assignmentUseCase.AssignRole(c.Request.Context(), userID, roleID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// RemoveHandler revokes one role from a user.
// DELETE /v1/users/:id/roles/:role_id - Requires users.update.
func (h *UserRoleHandler) RemoveHandler(c *gin.Context) {
	userID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	roleID, err := httputil.ParseUUIDParam(c, "role_id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.assignmentUseCase.RemoveRole(c.Request.Context(), userID, roleID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}
