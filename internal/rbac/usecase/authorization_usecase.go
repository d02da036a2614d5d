package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/qacms/internal/rbac/domain"
)

// authorizationUseCase implements AuthorizationUseCase on top of the join
// table repositories. It keeps no state between calls.
type authorizationUseCase struct {
	userRoleRepo UserRoleRepository
	logger       *slog.Logger
}

// HasRole reports whether the user holds roleName.
func (a *authorizationUseCase) HasRole(ctx context.Context, userID uuid.UUID, roleName string) bool {
	roleName = strings.TrimSpace(roleName)
	if roleName == "" {
		return false
	}

	ok, err := a.userRoleRepo.HasRole(ctx, userID, roleName)
	if err != nil {
		a.denyOnError(ctx, "has_role", userID, err)
		return false
	}
	return ok
}

// HasAnyRole reports whether the user holds at least one of roleNames.
func (a *authorizationUseCase) HasAnyRole(ctx context.Context, userID uuid.UUID, roleNames []string) bool {
	if len(roleNames) == 0 {
		return false
	}

	roles, err := a.GetUserRoles(ctx, userID)
	if err != nil {
		a.denyOnError(ctx, "has_any_role", userID, err)
		return false
	}
	return roles.ContainsAny(roleNames...)
}

// HasPermission reports whether any role held by the user grants permissionName.
func (a *authorizationUseCase) HasPermission(ctx context.Context, userID uuid.UUID, permissionName string) bool {
	permissionName = strings.TrimSpace(permissionName)
	if permissionName == "" || permissionName == domain.WildcardPermission {
		return false
	}

	ok, err := a.userRoleRepo.HasPermission(ctx, userID, permissionName)
	if err != nil {
		a.denyOnError(ctx, "has_permission", userID, err)
		return false
	}
	return ok
}

// HasAnyPermission reports whether the user holds at least one of permissionNames.
func (a *authorizationUseCase) HasAnyPermission(
	ctx context.Context,
	userID uuid.UUID,
	permissionNames []string,
) bool {
	if len(permissionNames) == 0 {
		return false
	}

	perms, err := a.GetUserPermissions(ctx, userID)
	if err != nil {
		a.denyOnError(ctx, "has_any_permission", userID, err)
		return false
	}
	return perms.ContainsAny(permissionNames...)
}

// HasAllPermissions reports whether the user holds every one of permissionNames.
func (a *authorizationUseCase) HasAllPermissions(
	ctx context.Context,
	userID uuid.UUID,
	permissionNames []string,
) bool {
	if len(permissionNames) == 0 {
		return false
	}

	perms, err := a.GetUserPermissions(ctx, userID)
	if err != nil {
		a.denyOnError(ctx, "has_all_permissions", userID, err)
		return false
	}
	return perms.ContainsAll(permissionNames...)
}

// GetUserPermissions returns the de-duplicated union of the permissions of
// every role held by the user.
func (a *authorizationUseCase) GetUserPermissions(ctx context.Context, userID uuid.UUID) (domain.NameSet, error) {
	names, err := a.userRoleRepo.ListPermissionNames(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.NewNameSet(names...), nil
}

// GetUserRoles returns the names of the roles held by the user.
func (a *authorizationUseCase) GetUserRoles(ctx context.Context, userID uuid.UUID) (domain.NameSet, error) {
	names, err := a.userRoleRepo.ListRoleNames(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.NewNameSet(names...), nil
}

// GetUserAccess reads roles and permissions concurrently.
func (a *authorizationUseCase) GetUserAccess(ctx context.Context, userID uuid.UUID) (*domain.UserAccess, error) {
	access := &domain.UserAccess{UserID: userID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		roles, err := a.GetUserRoles(gctx, userID)
		access.Roles = roles
		return err
	})
	g.Go(func() error {
		perms, err := a.GetUserPermissions(gctx, userID)
		access.Permissions = perms
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return access, nil
}

// IsSuperAdmin reports whether the user holds the super-admin role.
func (a *authorizationUseCase) IsSuperAdmin(ctx context.Context, userID uuid.UUID) bool {
	return a.HasRole(ctx, userID, domain.SuperAdminRole)
}

func (a *authorizationUseCase) denyOnError(ctx context.Context, check string, userID uuid.UUID, err error) {
	a.logger.WarnContext(ctx, "authorization check failed, denying",
		slog.String("check", check),
		slog.String("user_id", userID.String()),
		slog.Any("error", err),
	)
}

// NewAuthorizationUseCase creates a new AuthorizationUseCase.
func NewAuthorizationUseCase(userRoleRepo UserRoleRepository, logger *slog.Logger) AuthorizationUseCase {
	return &authorizationUseCase{
		userRoleRepo: userRoleRepo,
		logger:       logger,
	}
}
