package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/qacms/internal/metrics"
	"github.com/allisson/qacms/internal/rbac/catalog"
	"github.com/allisson/qacms/internal/rbac/domain"
)

const metricsDomain = "rbac"

func record(ctx context.Context, m metrics.BusinessMetrics, operation string, start time.Time, status string) {
	m.RecordOperation(ctx, metricsDomain, operation, status)
	m.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// authorizationUseCaseWithMetrics decorates AuthorizationUseCase with metrics.
// Boolean checks are labeled granted or denied.
type authorizationUseCaseWithMetrics struct {
	next    AuthorizationUseCase
	metrics metrics.BusinessMetrics
}

// NewAuthorizationUseCaseWithMetrics wraps an AuthorizationUseCase with metrics recording.
func NewAuthorizationUseCaseWithMetrics(useCase AuthorizationUseCase, m metrics.BusinessMetrics) AuthorizationUseCase {
	return &authorizationUseCaseWithMetrics{next: useCase, metrics: m}
}

func (a *authorizationUseCaseWithMetrics) HasRole(ctx context.Context, userID uuid.UUID, roleName string) bool {
	start := time.Now()
	ok := a.next.HasRole(ctx, userID, roleName)
	record(ctx, a.metrics, "has_role", start, metrics.DecisionOf(ok))
	return ok
}

func (a *authorizationUseCaseWithMetrics) HasAnyRole(ctx context.Context, userID uuid.UUID, roleNames []string) bool {
	start := time.Now()
	ok := a.next.HasAnyRole(ctx, userID, roleNames)
	record(ctx, a.metrics, "has_any_role", start, metrics.DecisionOf(ok))
	return ok
}

func (a *authorizationUseCaseWithMetrics) HasPermission(
	ctx context.Context,
	userID uuid.UUID,
	permissionName string,
) bool {
	start := time.Now()
	ok := a.next.HasPermission(ctx, userID, permissionName)
	record(ctx, a.metrics, "has_permission", start, metrics.DecisionOf(ok))
	return ok
}

func (a *authorizationUseCaseWithMetrics) HasAnyPermission(
	ctx context.Context,
	userID uuid.UUID,
	permissionNames []string,
) bool {
	start := time.Now()
	ok := a.next.HasAnyPermission(ctx, userID, permissionNames)
	record(ctx, a.metrics, "has_any_permission", start, metrics.DecisionOf(ok))
	return ok
}

func (a *authorizationUseCaseWithMetrics) HasAllPermissions(
	ctx context.Context,
	userID uuid.UUID,
	permissionNames []string,
) bool {
	start := time.Now()
	ok := a.next.HasAllPermissions(ctx, userID, permissionNames)
	record(ctx, a.metrics, "has_all_permissions", start, metrics.DecisionOf(ok))
	return ok
}

func (a *authorizationUseCaseWithMetrics) GetUserPermissions(
	ctx context.Context,
	userID uuid.UUID,
) (domain.NameSet, error) {
	start := time.Now()
	perms, err := a.next.GetUserPermissions(ctx, userID)
	record(ctx, a.metrics, "get_user_permissions", start, metrics.StatusOf(err))
	return perms, err
}

func (a *authorizationUseCaseWithMetrics) GetUserRoles(ctx context.Context, userID uuid.UUID) (domain.NameSet, error) {
	start := time.Now()
	roles, err := a.next.GetUserRoles(ctx, userID)
	record(ctx, a.metrics, "get_user_roles", start, metrics.StatusOf(err))
	return roles, err
}

func (a *authorizationUseCaseWithMetrics) GetUserAccess(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.UserAccess, error) {
	start := time.Now()
	access, err := a.next.GetUserAccess(ctx, userID)
	record(ctx, a.metrics, "get_user_access", start, metrics.StatusOf(err))
	return access, err
}

func (a *authorizationUseCaseWithMetrics) IsSuperAdmin(ctx context.Context, userID uuid.UUID) bool {
	start := time.Now()
	ok := a.next.IsSuperAdmin(ctx, userID)
	record(ctx, a.metrics, "is_super_admin", start, metrics.DecisionOf(ok))
	return ok
}

// assignmentUseCaseWithMetrics decorates AssignmentUseCase with metrics.
type assignmentUseCaseWithMetrics struct {
	next    AssignmentUseCase
	metrics metrics.BusinessMetrics
}

// NewAssignmentUseCaseWithMetrics wraps an AssignmentUseCase with metrics recording.
func NewAssignmentUseCaseWithMetrics(useCase AssignmentUseCase, m metrics.BusinessMetrics) AssignmentUseCase {
	return &assignmentUseCaseWithMetrics{next: useCase, metrics: m}
}

func (a *assignmentUseCaseWithMetrics) AssignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	start := time.Now()
	err := a.next.AssignRole(ctx, userID, roleID)
	record(ctx, a.metrics, "assign_role", start, metrics.StatusOf(err))
	return err
}

func (a *assignmentUseCaseWithMetrics) RemoveRole(ctx context.Context, userID, roleID uuid.UUID) error {
	start := time.Now()
	err := a.next.RemoveRole(ctx, userID, roleID)
	record(ctx, a.metrics, "remove_role", start, metrics.StatusOf(err))
	return err
}

func (a *assignmentUseCaseWithMetrics) SyncRoles(
	ctx context.Context,
	userID uuid.UUID,
	roleIDs []uuid.UUID,
) (*domain.SyncResult, error) {
	start := time.Now()
	result, err := a.next.SyncRoles(ctx, userID, roleIDs)
	record(ctx, a.metrics, "sync_roles", start, metrics.StatusOf(err))
	return result, err
}

func (a *assignmentUseCaseWithMetrics) AssignPermissionToRole(ctx context.Context, roleID, permissionID uuid.UUID) error {
	start := time.Now()
	err := a.next.AssignPermissionToRole(ctx, roleID, permissionID)
	record(ctx, a.metrics, "assign_permission", start, metrics.StatusOf(err))
	return err
}

func (a *assignmentUseCaseWithMetrics) RemovePermissionFromRole(
	ctx context.Context,
	roleID, permissionID uuid.UUID,
) error {
	start := time.Now()
	err := a.next.RemovePermissionFromRole(ctx, roleID, permissionID)
	record(ctx, a.metrics, "remove_permission", start, metrics.StatusOf(err))
	return err
}

func (a *assignmentUseCaseWithMetrics) SyncPermissions(
	ctx context.Context,
	roleID uuid.UUID,
	permissionIDs []uuid.UUID,
) (*domain.SyncResult, error) {
	start := time.Now()
	result, err := a.next.SyncPermissions(ctx, roleID, permissionIDs)
	record(ctx, a.metrics, "sync_permissions", start, metrics.StatusOf(err))
	return result, err
}

func (a *assignmentUseCaseWithMetrics) GetUserRoleIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	start := time.Now()
	ids, err := a.next.GetUserRoleIDs(ctx, userID)
	record(ctx, a.metrics, "get_user_role_ids", start, metrics.StatusOf(err))
	return ids, err
}

func (a *assignmentUseCaseWithMetrics) GetRolePermissions(
	ctx context.Context,
	roleID uuid.UUID,
) ([]*domain.Permission, error) {
	start := time.Now()
	perms, err := a.next.GetRolePermissions(ctx, roleID)
	record(ctx, a.metrics, "get_role_permissions", start, metrics.StatusOf(err))
	return perms, err
}

// roleUseCaseWithMetrics decorates RoleUseCase with metrics.
type roleUseCaseWithMetrics struct {
	next    RoleUseCase
	metrics metrics.BusinessMetrics
}

// NewRoleUseCaseWithMetrics wraps a RoleUseCase with metrics recording.
func NewRoleUseCaseWithMetrics(useCase RoleUseCase, m metrics.BusinessMetrics) RoleUseCase {
	return &roleUseCaseWithMetrics{next: useCase, metrics: m}
}

func (r *roleUseCaseWithMetrics) Create(ctx context.Context, input *domain.CreateRoleInput) (*domain.Role, error) {
	start := time.Now()
	role, err := r.next.Create(ctx, input)
	record(ctx, r.metrics, "role_create", start, metrics.StatusOf(err))
	return role, err
}

func (r *roleUseCaseWithMetrics) Update(
	ctx context.Context,
	roleID uuid.UUID,
	input *domain.UpdateRoleInput,
) (*domain.Role, error) {
	start := time.Now()
	role, err := r.next.Update(ctx, roleID, input)
	record(ctx, r.metrics, "role_update", start, metrics.StatusOf(err))
	return role, err
}

func (r *roleUseCaseWithMetrics) Delete(ctx context.Context, roleID uuid.UUID) error {
	start := time.Now()
	err := r.next.Delete(ctx, roleID)
	record(ctx, r.metrics, "role_delete", start, metrics.StatusOf(err))
	return err
}

func (r *roleUseCaseWithMetrics) Get(ctx context.Context, roleID uuid.UUID) (*domain.Role, error) {
	start := time.Now()
	role, err := r.next.Get(ctx, roleID)
	record(ctx, r.metrics, "role_get", start, metrics.StatusOf(err))
	return role, err
}

func (r *roleUseCaseWithMetrics) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	start := time.Now()
	role, err := r.next.GetByName(ctx, name)
	record(ctx, r.metrics, "role_get_by_name", start, metrics.StatusOf(err))
	return role, err
}

func (r *roleUseCaseWithMetrics) List(ctx context.Context) ([]*domain.Role, error) {
	start := time.Now()
	roles, err := r.next.List(ctx)
	record(ctx, r.metrics, "role_list", start, metrics.StatusOf(err))
	return roles, err
}

func (r *roleUseCaseWithMetrics) ListPermissions(ctx context.Context) ([]*domain.Permission, error) {
	start := time.Now()
	perms, err := r.next.ListPermissions(ctx)
	record(ctx, r.metrics, "permission_list", start, metrics.StatusOf(err))
	return perms, err
}

// bootstrapUseCaseWithMetrics decorates BootstrapUseCase with metrics.
type bootstrapUseCaseWithMetrics struct {
	next    BootstrapUseCase
	metrics metrics.BusinessMetrics
}

// NewBootstrapUseCaseWithMetrics wraps a BootstrapUseCase with metrics recording.
func NewBootstrapUseCaseWithMetrics(useCase BootstrapUseCase, m metrics.BusinessMetrics) BootstrapUseCase {
	return &bootstrapUseCaseWithMetrics{next: useCase, metrics: m}
}

func (b *bootstrapUseCaseWithMetrics) Run(ctx context.Context, c *catalog.Catalog) (*BootstrapReport, error) {
	start := time.Now()
	report, err := b.next.Run(ctx, c)
	record(ctx, b.metrics, "bootstrap", start, metrics.StatusOf(err))
	return report, err
}
