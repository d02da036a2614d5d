// Package http provides the HTTP server, router assembly and shared middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/allisson/qacms/internal/metrics"
	"github.com/allisson/qacms/internal/rbac/catalog"
	rbacHTTP "github.com/allisson/qacms/internal/rbac/http"
	rbacUseCase "github.com/allisson/qacms/internal/rbac/usecase"
)

// Server represents the API HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger

	// cancel stops background work started by SetupRouter.
	cancel context.CancelFunc
}

// RouterConfig holds the options that shape the API router.
type RouterConfig struct {
	UserIDHeader            string
	RateLimitEnabled        bool
	RateLimitRequestsPerSec float64
	RateLimitBurst          int
	CORSEnabled             bool
	CORSAllowOrigins        string
	MetricsNamespace        string
}

// RBACHandlers groups the handlers mounted under /v1.
type RBACHandlers struct {
	Roles       *rbacHTTP.RoleHandler
	Permissions *rbacHTTP.PermissionHandler
	UserRoles   *rbacHTTP.UserRoleHandler
	Me          *rbacHTTP.MeHandler
}

// NewServer creates a new HTTP server. The router is assembled by SetupRouter.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine with health checks and the RBAC API.
// A nil meterProvider disables HTTP metrics.
func (s *Server) SetupRouter(
	cfg RouterConfig,
	authz rbacUseCase.AuthorizationUseCase,
	handlers RBACHandlers,
	meterProvider metric.MeterProvider,
) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(
		cfg.CORSEnabled, cfg.CORSAllowOrigins, cfg.UserIDHeader, s.logger,
	); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(meterProvider, cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	v1.Use(rbacHTTP.PrincipalMiddleware(cfg.UserIDHeader, s.logger))
	if cfg.RateLimitEnabled {
		v1.Use(rbacHTTP.RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	perm := func(permissions ...string) gin.HandlerFunc {
		return rbacHTTP.RequirePermission(authz, s.logger, permissions...)
	}

	v1.GET("/me/access", handlers.Me.GetAccessHandler)
	v1.GET("/permissions", perm(catalog.PermRolesView), handlers.Permissions.ListHandler)

	roles := v1.Group("/roles")
	{
		roles.GET("", perm(catalog.PermRolesView), handlers.Roles.ListHandler)
		roles.POST("", perm(catalog.PermRolesCreate), handlers.Roles.CreateHandler)
		roles.GET("/:id", perm(catalog.PermRolesView), handlers.Roles.GetHandler)
		roles.PUT("/:id", perm(catalog.PermRolesUpdate), handlers.Roles.UpdateHandler)
		roles.DELETE("/:id", perm(catalog.PermRolesDelete), handlers.Roles.DeleteHandler)

		roles.GET("/:id/permissions", perm(catalog.PermRolesView), handlers.Roles.ListPermissionsHandler)
		roles.PUT("/:id/permissions", perm(catalog.PermRolesUpdate), handlers.Roles.SyncPermissionsHandler)
		roles.POST("/:id/permissions/:permission_id",
			perm(catalog.PermRolesUpdate), handlers.Roles.AssignPermissionHandler)
		roles.DELETE("/:id/permissions/:permission_id",
			perm(catalog.PermRolesUpdate), handlers.Roles.RemovePermissionHandler)
	}

	users := v1.Group("/users")
	{
		users.GET("/:id/roles", perm(catalog.PermUsersView), handlers.UserRoles.ListHandler)
		users.PUT("/:id/roles", perm(catalog.PermUsersUpdate), handlers.UserRoles.SyncHandler)
		users.POST("/:id/roles/:role_id", perm(catalog.PermUsersUpdate), handlers.UserRoles.AssignHandler)
		users.DELETE("/:id/roles/:role_id", perm(catalog.PermUsersUpdate), handlers.UserRoles.RemoveHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if s.cancel != nil {
		s.cancel()
	}
	return s.server.Shutdown(ctx)
}

// healthHandler reports liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports readiness by pinging the database.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
