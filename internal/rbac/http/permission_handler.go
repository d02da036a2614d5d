package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/qacms/internal/httputil"
	"github.com/allisson/qacms/internal/rbac/http/dto"
	"github.com/allisson/qacms/internal/rbac/usecase"
)

// PermissionHandler serves the permission registry.
type PermissionHandler struct {
	roleUseCase usecase.RoleUseCase
	logger      *slog.Logger
}

// NewPermissionHandler creates a new permission handler.
func NewPermissionHandler(roleUseCase usecase.RoleUseCase, logger *slog.Logger) *PermissionHandler {
	return &PermissionHandler{
		roleUseCase: roleUseCase,
		logger:      logger,
	}
}

// ListHandler lists every permission grouped by module.
// GET /v1/permissions - Requires roles.view.
func (h *PermissionHandler) ListHandler(c *gin.Context) {
	perms, err := h.roleUseCase.ListPermissions(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPermissionsToGroupedResponse(perms))
}
