package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/allisson/qacms/internal/rbac/domain"
	rbacHTTP "github.com/allisson/qacms/internal/rbac/http"
	"github.com/allisson/qacms/internal/rbac/http/mocks"
)

type routerFixture struct {
	server     *Server
	authz      *mocks.MockAuthorizationUseCase
	roles      *mocks.MockRoleUseCase
	assignment *mocks.MockAssignmentUseCase
}

func newRouterFixture(t *testing.T, cfg RouterConfig) *routerFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &routerFixture{
		server:     NewServer(nil, "localhost", 8080, logger),
		authz:      mocks.NewMockAuthorizationUseCase(t),
		roles:      mocks.NewMockRoleUseCase(t),
		assignment: mocks.NewMockAssignmentUseCase(t),
	}

	if cfg.UserIDHeader == "" {
		cfg.UserIDHeader = "X-User-ID"
	}

	f.server.SetupRouter(cfg, f.authz, RBACHandlers{
		Roles:       rbacHTTP.NewRoleHandler(f.roles, f.assignment, logger),
		Permissions: rbacHTTP.NewPermissionHandler(f.roles, logger),
		UserRoles:   rbacHTTP.NewUserRoleHandler(f.assignment, logger),
		Me:          rbacHTTP.NewMeHandler(f.authz, logger),
	}, sdkmetric.NewMeterProvider())

	t.Cleanup(func() {
		_ = f.server.Shutdown(context.Background())
	})
	return f
}

func (f *routerFixture) do(method, path string, userID *uuid.UUID) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if userID != nil {
		req.Header.Set("X-User-ID", userID.String())
	}
	f.server.GetHandler().ServeHTTP(w, req)
	return w
}

func TestRouter_RequiresPrincipal(t *testing.T) {
	f := newRouterFixture(t, RouterConfig{})

	w := f.do(http.MethodGet, "/v1/roles", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_HealthDoesNotRequirePrincipal(t *testing.T) {
	f := newRouterFixture(t, RouterConfig{})

	w := f.do(http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_DoesNotExposeMetrics(t *testing.T) {
	f := newRouterFixture(t, RouterConfig{})

	w := f.do(http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_DeniedWithoutPermission(t *testing.T) {
	f := newRouterFixture(t, RouterConfig{})
	userID := uuid.Must(uuid.NewV7())
	roleID := uuid.Must(uuid.NewV7())

	f.authz.On("HasPermission", mock.Anything, userID, "roles.delete").Return(false).Once()

	w := f.do(http.MethodDelete, "/v1/roles/"+roleID.String(), &userID)

	assert.Equal(t, http.StatusForbidden, w.Code)
	f.roles.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRouter_ListRolesWithPermission(t *testing.T) {
	f := newRouterFixture(t, RouterConfig{})
	userID := uuid.Must(uuid.NewV7())

	f.authz.On("HasPermission", mock.Anything, userID, "roles.view").Return(true).Once()
	f.roles.On("List", mock.Anything).Return([]*domain.Role{{ID: uuid.Must(uuid.NewV7()), Name: "admin"}}, nil).Once()

	w := f.do(http.MethodGet, "/v1/roles", &userID)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestRouter_UserRoleSyncRequiresUsersUpdate(t *testing.T) {
	f := newRouterFixture(t, RouterConfig{})
	userID := uuid.Must(uuid.NewV7())
	target := uuid.Must(uuid.NewV7())

	f.authz.On("HasPermission", mock.Anything, userID, "users.update").Return(false).Once()

	w := f.do(http.MethodPut, "/v1/users/"+target.String()+"/roles", &userID)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_MeAccessNeedsOnlyPrincipal(t *testing.T) {
	f := newRouterFixture(t, RouterConfig{})
	userID := uuid.Must(uuid.NewV7())

	f.authz.On("GetUserAccess", mock.Anything, userID).Return(&domain.UserAccess{UserID: userID}, nil).Once()

	w := f.do(http.MethodGet, "/v1/me/access", &userID)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RateLimited(t *testing.T) {
	f := newRouterFixture(t, RouterConfig{
		RateLimitEnabled:        true,
		RateLimitRequestsPerSec: 0.5,
		RateLimitBurst:          1,
	})
	userID := uuid.Must(uuid.NewV7())

	f.authz.On("GetUserAccess", mock.Anything, userID).Return(&domain.UserAccess{UserID: userID}, nil).Once()

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/v1/me/access", &userID).Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(http.MethodGet, "/v1/me/access", &userID).Code)
}

func TestReadinessHandler_Ready(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	dbMock.ExpectPing()

	server := NewServer(db, "localhost", 8080, slog.New(slog.NewTextHandler(io.Discard, nil)))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

	server.readinessHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ready", response["status"])
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestReadinessHandler_PingFails(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	dbMock.ExpectPing().WillReturnError(errors.New("connection refused"))

	server := NewServer(db, "localhost", 8080, slog.New(slog.NewTextHandler(io.Discard, nil)))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

	server.readinessHandler(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "not_ready")
}
