package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/qacms/internal/errors"
	"github.com/allisson/qacms/internal/httputil"
	"github.com/allisson/qacms/internal/rbac/http/dto"
	"github.com/allisson/qacms/internal/rbac/usecase"
)

// MeHandler reports the access of the calling user.
type MeHandler struct {
	authorizationUseCase usecase.AuthorizationUseCase
	logger               *slog.Logger
}

// NewMeHandler creates a new me handler.
func NewMeHandler(authorizationUseCase usecase.AuthorizationUseCase, logger *slog.Logger) *MeHandler {
	return &MeHandler{
		authorizationUseCase: authorizationUseCase,
		logger:               logger,
	}
}

// GetAccessHandler returns the caller's roles and permissions.
// GET /v1/me/access - Any authenticated user.
func (h *MeHandler) GetAccessHandler(c *gin.Context) {
	userID, ok := GetUserID(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	access, err := h.authorizationUseCase.GetUserAccess(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAccessToResponse(access))
}
