package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/allisson/qacms/internal/errors"
	"github.com/allisson/qacms/internal/httputil"
	"github.com/allisson/qacms/internal/rbac/usecase"
)

// PrincipalMiddleware resolves the authenticated user from a trusted header set
// by the session layer in front of this service. A missing or malformed value
// is answered with 401.
//
// Usage:
//
//	v1 := router.Group("/v1", PrincipalMiddleware("X-User-ID", logger))
//	v1.GET("/me/access", meHandler.GetAccessHandler)
func PrincipalMiddleware(header string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(header))
		if raw == "" {
			logger.Debug("principal missing", slog.String("header", header))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil || userID == uuid.Nil {
			logger.Debug("principal malformed", slog.String("header", header))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			return
		}

		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// RequirePermission allows the request only when the principal holds every
// listed permission. Denials are answered with a generic 403 that does not
// name the missing permission.
//
// MUST run after PrincipalMiddleware.
func RequirePermission(
	authz usecase.AuthorizationUseCase,
	logger *slog.Logger,
	permissions ...string,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c.Request.Context())
		if !ok {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			return
		}

		var granted bool
		if len(permissions) == 1 {
			granted = authz.HasPermission(c.Request.Context(), userID, permissions[0])
		} else {
			granted = authz.HasAllPermissions(c.Request.Context(), userID, permissions)
		}

		if !granted {
			logger.Debug("permission denied",
				slog.String("user_id", userID.String()),
				slog.Any("required", permissions))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			return
		}

		c.Next()
	}
}

// RequireAnyRole allows the request when the principal holds at least one of
// the listed roles.
//
// MUST run after PrincipalMiddleware.
func RequireAnyRole(
	authz usecase.AuthorizationUseCase,
	logger *slog.Logger,
	roles ...string,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c.Request.Context())
		if !ok {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			return
		}

		if !authz.HasAnyRole(c.Request.Context(), userID, roles) {
			logger.Debug("role denied",
				slog.String("user_id", userID.String()),
				slog.Any("required", roles))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			return
		}

		c.Next()
	}
}
