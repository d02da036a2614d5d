// Package integration provides end-to-end tests for the role and permission API.
// Tests run against both PostgreSQL and MySQL and are skipped when a database
// is unreachable.
package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/qacms/internal/app"
	"github.com/allisson/qacms/internal/config"
	"github.com/allisson/qacms/internal/rbac/domain"
	"github.com/allisson/qacms/internal/rbac/http/dto"
	"github.com/allisson/qacms/internal/testutil"
)

const userIDHeader = "X-User-ID"

// integrationTestContext holds all dependencies and state for integration testing.
type integrationTestContext struct {
	container *app.Container
	db        *sql.DB
	server    *httptest.Server
	dbDriver  string
	dean      uuid.UUID
	staff     uuid.UUID
}

// makeRequest performs an HTTP request as userID and returns the response and body.
// A nil userID sends no principal header.
func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body interface{},
	userID *uuid.UUID,
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != nil {
		req.Header.Set(userIDHeader, userID.String())
	}

	client := &http.Client{Timeout: 10 * time.Second}
	//nolint:gosec // controlled test environment with localhost URLs
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	if closeErr := resp.Body.Close(); closeErr != nil {
		t.Logf("Warning: failed to close response body: %v", closeErr)
	}

	return resp, respBody
}

// setupIntegrationTest migrates the database, creates two users, bootstraps the
// default catalog and starts the API on an httptest server. The older user
// receives super-admin through the legacy migration.
func setupIntegrationTest(t *testing.T, dbDriver string) *integrationTestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	var db *sql.DB
	var dsn string
	if dbDriver == "postgres" {
		db = testutil.SetupPostgresDB(t)
		dsn = testutil.GetPostgresTestDSN()
	} else {
		db = testutil.SetupMySQLDB(t)
		dsn = testutil.GetMySQLTestDSN()
	}

	now := time.Now().UTC()
	dean := testutil.CreateTestUserAt(t, db, dbDriver, "dean@example.edu", now.Add(-time.Hour))
	staff := testutil.CreateTestUserAt(t, db, dbDriver, "staff@example.edu", now)

	cfg := &config.Config{
		DBDriver:             dbDriver,
		DBConnectionString:   dsn,
		DBMaxOpenConnections: 10,
		DBMaxIdleConnections: 5,
		DBConnMaxLifetime:    time.Hour,
		ServerHost:           "localhost",
		ServerPort:           8080,
		LogLevel:             "error",
		AuthUserIDHeader:     userIDHeader,
	}

	container := app.NewContainer(cfg)

	cat, err := container.Catalog()
	require.NoError(t, err, "failed to load catalog")

	bootstrapUseCase, err := container.BootstrapUseCase()
	require.NoError(t, err, "failed to get bootstrap use case")

	report, err := bootstrapUseCase.Run(context.Background(), cat)
	require.NoError(t, err, "failed to bootstrap catalog")
	require.NotNil(t, report.LegacyUserID, "oldest user should receive super-admin")
	require.Equal(t, dean, *report.LegacyUserID)

	httpSrv, err := container.HTTPServer()
	require.NoError(t, err, "failed to get HTTP server")

	handler := httpSrv.GetHandler()
	require.NotNil(t, handler, "handler should not be nil after SetupRouter")

	return &integrationTestContext{
		container: container,
		db:        db,
		server:    httptest.NewServer(handler),
		dbDriver:  dbDriver,
		dean:      dean,
		staff:     staff,
	}
}

// teardownIntegrationTest cleans up all resources.
func teardownIntegrationTest(t *testing.T, ctx *integrationTestContext) {
	t.Helper()

	if ctx.server != nil {
		ctx.server.Close()
	}

	if ctx.container != nil {
		if err := ctx.container.Shutdown(context.Background()); err != nil {
			t.Logf("Warning: container shutdown error: %v", err)
		}
	}

	if ctx.db != nil {
		testutil.TeardownDB(t, ctx.db)
	}
}

var drivers = []struct {
	name     string
	dbDriver string
}{
	{"PostgreSQL", "postgres"},
	{"MySQL", "mysql"},
}

// TestIntegration_Health_BasicChecks validates the health and readiness endpoints.
func TestIntegration_Health_BasicChecks(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, tc := range drivers {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			resp, body := ctx.makeRequest(t, http.MethodGet, "/health", nil, nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.JSONEq(t, `{"status":"healthy"}`, string(body))

			resp, _ = ctx.makeRequest(t, http.MethodGet, "/ready", nil, nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

// TestIntegration_RBAC_CompleteFlow walks a custom role through creation,
// permission sync, assignment and deletion, checking access at each step.
func TestIntegration_RBAC_CompleteFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, tc := range drivers {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			var reviewer dto.RoleResponse

			t.Run("01_RequiresPrincipal", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/roles", nil, nil)
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			})

			t.Run("02_SuperAdminAccess", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/me/access", nil, &ctx.dean)
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var access dto.AccessResponse
				require.NoError(t, json.Unmarshal(body, &access))
				assert.Equal(t, []string{domain.SuperAdminRole}, access.Roles)
				assert.Contains(t, access.Permissions, "roles.delete")
			})

			t.Run("03_StaffHasNoAccess", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/me/access", nil, &ctx.staff)
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var access dto.AccessResponse
				require.NoError(t, json.Unmarshal(body, &access))
				assert.Empty(t, access.Roles)
				assert.Empty(t, access.Permissions)

				resp, _ = ctx.makeRequest(t, http.MethodGet, "/v1/roles", nil, &ctx.staff)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			})

			t.Run("04_CreateRole", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/roles", dto.CreateRoleRequest{
					Name:        "reviewer",
					DisplayName: "Reviewer",
					Color:       "#7C3AED",
				}, &ctx.dean)
				require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
				require.NoError(t, json.Unmarshal(body, &reviewer))
				assert.False(t, reviewer.IsSystem)

				resp, _ = ctx.makeRequest(t, http.MethodPost, "/v1/roles", dto.CreateRoleRequest{
					Name:        "reviewer",
					DisplayName: "Reviewer again",
				}, &ctx.dean)
				assert.Equal(t, http.StatusConflict, resp.StatusCode)
			})

			t.Run("05_SyncPermissions", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/permissions", nil, &ctx.dean)
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var grouped dto.GroupedPermissionsResponse
				require.NoError(t, json.Unmarshal(body, &grouped))

				var ids []string
				for _, group := range grouped.Data {
					for _, p := range group.Permissions {
						if p.Name == "news.view" || p.Name == "roles.view" {
							ids = append(ids, p.ID)
						}
					}
				}
				require.Len(t, ids, 2)

				resp, body = ctx.makeRequest(t, http.MethodPut, "/v1/roles/"+reviewer.ID+"/permissions",
					dto.SyncPermissionsRequest{PermissionIDs: ids}, &ctx.dean)
				require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

				var result dto.SyncResponse
				require.NoError(t, json.Unmarshal(body, &result))
				assert.Equal(t, 2, result.Added)
				assert.Equal(t, 0, result.Removed)
			})

			t.Run("06_AssignRoleToStaff", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodPost,
					"/v1/users/"+ctx.staff.String()+"/roles/"+reviewer.ID, nil, &ctx.dean)
				require.Equal(t, http.StatusNoContent, resp.StatusCode)

				// Assigning twice is a no-op.
				resp, _ = ctx.makeRequest(t, http.MethodPost,
					"/v1/users/"+ctx.staff.String()+"/roles/"+reviewer.ID, nil, &ctx.dean)
				require.Equal(t, http.StatusNoContent, resp.StatusCode)

				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/me/access", nil, &ctx.staff)
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var access dto.AccessResponse
				require.NoError(t, json.Unmarshal(body, &access))
				assert.Equal(t, []string{"reviewer"}, access.Roles)
				assert.ElementsMatch(t, []string{"news.view", "roles.view"}, access.Permissions)

				resp, _ = ctx.makeRequest(t, http.MethodGet, "/v1/roles", nil, &ctx.staff)
				assert.Equal(t, http.StatusOK, resp.StatusCode)

				resp, _ = ctx.makeRequest(t, http.MethodPost, "/v1/roles", dto.CreateRoleRequest{
					Name:        "intruder",
					DisplayName: "Intruder",
				}, &ctx.staff)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			})

			t.Run("07_SystemRoleProtected", func(t *testing.T) {
				resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/roles", nil, &ctx.dean)
				require.Equal(t, http.StatusOK, resp.StatusCode)

				var roles dto.ListRolesResponse
				require.NoError(t, json.Unmarshal(body, &roles))

				var superAdminID string
				for _, r := range roles.Data {
					if r.Name == domain.SuperAdminRole {
						superAdminID = r.ID
					}
				}
				require.NotEmpty(t, superAdminID)

				resp, _ = ctx.makeRequest(t, http.MethodDelete, "/v1/roles/"+superAdminID, nil, &ctx.dean)
				assert.Equal(t, http.StatusConflict, resp.StatusCode)
			})

			t.Run("08_DeleteRoleRevokesAccess", func(t *testing.T) {
				resp, _ := ctx.makeRequest(t, http.MethodDelete, "/v1/roles/"+reviewer.ID, nil, &ctx.dean)
				require.Equal(t, http.StatusNoContent, resp.StatusCode)

				resp, _ = ctx.makeRequest(t, http.MethodGet, "/v1/roles/"+reviewer.ID, nil, &ctx.dean)
				assert.Equal(t, http.StatusNotFound, resp.StatusCode)

				resp, _ = ctx.makeRequest(t, http.MethodGet, "/v1/roles", nil, &ctx.staff)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			})
		})
	}
}

// sameIDs reports whether a and b hold the same IDs, ignoring order and duplicates.
func sameIDs(a, b []uuid.UUID) bool {
	set := func(ids []uuid.UUID) map[uuid.UUID]struct{} {
		out := make(map[uuid.UUID]struct{}, len(ids))
		for _, id := range ids {
			out[id] = struct{}{}
		}
		return out
	}
	return assert.ObjectsAreEqual(set(a), set(b))
}

// matchesOneInput reports whether final equals one of inputs as a set.
func matchesOneInput(final []uuid.UUID, inputs [][]uuid.UUID) bool {
	for _, in := range inputs {
		if sameIDs(final, in) {
			return true
		}
	}
	return false
}

// TestIntegration_RBAC_ConcurrentSync races replace operations on the same
// user and the same role. Each race must end with exactly one caller's input,
// never a mix of several.
func TestIntegration_RBAC_ConcurrentSync(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	const (
		workers = 8
		rounds  = 5
	)

	for _, tc := range drivers {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			bg := context.Background()

			roleUseCase, err := ctx.container.RoleUseCase()
			require.NoError(t, err)
			assignmentUseCase, err := ctx.container.AssignmentUseCase()
			require.NoError(t, err)

			var roleIDs []uuid.UUID
			for i := 0; i < workers; i++ {
				role, err := roleUseCase.Create(bg, &domain.CreateRoleInput{
					Name:        fmt.Sprintf("race-%d", i),
					DisplayName: fmt.Sprintf("Race %d", i),
				})
				require.NoError(t, err)
				roleIDs = append(roleIDs, role.ID)
			}

			perms, err := roleUseCase.ListPermissions(bg)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(perms), workers+1)

			// Worker i asks for item i and item i+1, so every pair of inputs
			// differs and a mixed result is detectable.
			roleInputs := make([][]uuid.UUID, workers)
			permInputs := make([][]uuid.UUID, workers)
			for i := 0; i < workers; i++ {
				roleInputs[i] = []uuid.UUID{roleIDs[i], roleIDs[(i+1)%workers]}
				permInputs[i] = []uuid.UUID{perms[i].ID, perms[i+1].ID}
			}

			target := roleIDs[0]

			t.Run("01_SyncRolesOfOneUser", func(t *testing.T) {
				for round := 0; round < rounds; round++ {
					var wg sync.WaitGroup
					errs := make(chan error, workers)
					for i := 0; i < workers; i++ {
						wg.Add(1)
						go func(in []uuid.UUID) {
							defer wg.Done()
							if _, err := assignmentUseCase.SyncRoles(bg, ctx.staff, in); err != nil {
								errs <- err
							}
						}(roleInputs[i])
					}
					wg.Wait()
					close(errs)
					for err := range errs {
						require.NoError(t, err)
					}

					final, err := assignmentUseCase.GetUserRoleIDs(bg, ctx.staff)
					require.NoError(t, err)
					assert.True(t, matchesOneInput(final, roleInputs),
						"round %d: role set %v is not one of the inputs", round, final)
				}
			})

			t.Run("02_SyncPermissionsOfOneRole", func(t *testing.T) {
				for round := 0; round < rounds; round++ {
					var wg sync.WaitGroup
					errs := make(chan error, workers)
					for i := 0; i < workers; i++ {
						wg.Add(1)
						go func(in []uuid.UUID) {
							defer wg.Done()
							if _, err := assignmentUseCase.SyncPermissions(bg, target, in); err != nil {
								errs <- err
							}
						}(permInputs[i])
					}
					wg.Wait()
					close(errs)
					for err := range errs {
						require.NoError(t, err)
					}

					granted, err := assignmentUseCase.GetRolePermissions(bg, target)
					require.NoError(t, err)
					final := make([]uuid.UUID, 0, len(granted))
					for _, p := range granted {
						final = append(final, p.ID)
					}
					assert.True(t, matchesOneInput(final, permInputs),
						"round %d: permission set %v is not one of the inputs", round, final)
				}
			})
		})
	}
}
