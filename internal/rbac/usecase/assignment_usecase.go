package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/allisson/qacms/internal/database"
	"github.com/allisson/qacms/internal/errors"
	"github.com/allisson/qacms/internal/rbac/domain"
)

// assignmentUseCase implements AssignmentUseCase.
type assignmentUseCase struct {
	txManager          database.TxManager
	userRepo           UserRepository
	roleRepo           RoleRepository
	permissionRepo     PermissionRepository
	userRoleRepo       UserRoleRepository
	rolePermissionRepo RolePermissionRepository
}

// AssignRole grants the role to the user. Granting a held role is a no-op.
func (a *assignmentUseCase) AssignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	return a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if _, err := a.userRepo.Get(ctx, userID); err != nil {
			return err
		}
		if _, err := a.roleRepo.Get(ctx, roleID); err != nil {
			return err
		}
		return a.userRoleRepo.Assign(ctx, userID, roleID)
	})
}

// RemoveRole revokes the role from the user. Revoking a role the user does not
// hold is a no-op.
func (a *assignmentUseCase) RemoveRole(ctx context.Context, userID, roleID uuid.UUID) error {
	return a.userRoleRepo.Remove(ctx, userID, roleID)
}

// SyncRoles replaces the user's role set with roleIDs inside one transaction.
// The user row is locked first so concurrent syncs of the same user apply one
// after the other and the final state equals exactly one of the inputs.
func (a *assignmentUseCase) SyncRoles(
	ctx context.Context,
	userID uuid.UUID,
	roleIDs []uuid.UUID,
) (*domain.SyncResult, error) {
	result := &domain.SyncResult{}

	err := a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := a.userRepo.LockForUpdate(ctx, userID); err != nil {
			return err
		}

		target := domain.UniqueIDs(roleIDs)
		if err := a.ensureRolesExist(ctx, target); err != nil {
			return err
		}

		current, err := a.userRoleRepo.ListRoleIDs(ctx, userID)
		if err != nil {
			return err
		}

		toAdd, toRemove := domain.DiffIDs(current, target)
		for _, roleID := range toRemove {
			if err := a.userRoleRepo.Remove(ctx, userID, roleID); err != nil {
				return err
			}
		}
		for _, roleID := range toAdd {
			if err := a.userRoleRepo.Assign(ctx, userID, roleID); err != nil {
				return err
			}
		}

		result.Added = len(toAdd)
		result.Removed = len(toRemove)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// AssignPermissionToRole grants the permission to the role. Granting a held
// permission is a no-op.
func (a *assignmentUseCase) AssignPermissionToRole(ctx context.Context, roleID, permissionID uuid.UUID) error {
	return a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if _, err := a.roleRepo.Get(ctx, roleID); err != nil {
			return err
		}
		if _, err := a.permissionRepo.Get(ctx, permissionID); err != nil {
			return err
		}
		return a.rolePermissionRepo.Assign(ctx, roleID, permissionID)
	})
}

// RemovePermissionFromRole revokes the permission from the role. Revoking a
// permission the role does not hold is a no-op.
func (a *assignmentUseCase) RemovePermissionFromRole(ctx context.Context, roleID, permissionID uuid.UUID) error {
	return a.rolePermissionRepo.Remove(ctx, roleID, permissionID)
}

// SyncPermissions replaces the role's permission set with permissionIDs
// inside one transaction, locking the role row first.
func (a *assignmentUseCase) SyncPermissions(
	ctx context.Context,
	roleID uuid.UUID,
	permissionIDs []uuid.UUID,
) (*domain.SyncResult, error) {
	result := &domain.SyncResult{}

	err := a.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := a.roleRepo.LockForUpdate(ctx, roleID); err != nil {
			return err
		}

		target := domain.UniqueIDs(permissionIDs)
		if err := a.ensurePermissionsExist(ctx, target); err != nil {
			return err
		}

		synced, err := replaceRolePermissions(ctx, a.rolePermissionRepo, roleID, target)
		if err != nil {
			return err
		}

		*result = *synced
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetUserRoleIDs returns the IDs of the roles held by the user.
func (a *assignmentUseCase) GetUserRoleIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := a.userRepo.Get(ctx, userID); err != nil {
		return nil, err
	}
	return a.userRoleRepo.ListRoleIDs(ctx, userID)
}

// GetRolePermissions returns the permissions granted to the role.
func (a *assignmentUseCase) GetRolePermissions(ctx context.Context, roleID uuid.UUID) ([]*domain.Permission, error) {
	if _, err := a.roleRepo.Get(ctx, roleID); err != nil {
		return nil, err
	}
	return a.rolePermissionRepo.ListPermissions(ctx, roleID)
}

func (a *assignmentUseCase) ensureRolesExist(ctx context.Context, roleIDs []uuid.UUID) error {
	if len(roleIDs) == 0 {
		return nil
	}

	roles, err := a.roleRepo.GetByIDs(ctx, roleIDs)
	if err != nil {
		return err
	}

	found := make(map[uuid.UUID]struct{}, len(roles))
	for _, r := range roles {
		found[r.ID] = struct{}{}
	}
	for _, id := range roleIDs {
		if _, ok := found[id]; !ok {
			return errors.Wrapf(domain.ErrRoleNotFound, "role %s", id)
		}
	}
	return nil
}

func (a *assignmentUseCase) ensurePermissionsExist(ctx context.Context, permissionIDs []uuid.UUID) error {
	if len(permissionIDs) == 0 {
		return nil
	}

	perms, err := a.permissionRepo.GetByIDs(ctx, permissionIDs)
	if err != nil {
		return err
	}

	found := make(map[uuid.UUID]struct{}, len(perms))
	for _, p := range perms {
		found[p.ID] = struct{}{}
	}
	for _, id := range permissionIDs {
		if _, ok := found[id]; !ok {
			return errors.Wrapf(domain.ErrPermissionNotFound, "permission %s", id)
		}
	}
	return nil
}

// replaceRolePermissions applies the difference between the stored set and
// target. Callers hold the role lock.
func replaceRolePermissions(
	ctx context.Context,
	repo RolePermissionRepository,
	roleID uuid.UUID,
	target []uuid.UUID,
) (*domain.SyncResult, error) {
	current, err := repo.ListPermissionIDs(ctx, roleID)
	if err != nil {
		return nil, err
	}

	toAdd, toRemove := domain.DiffIDs(current, target)
	for _, permissionID := range toRemove {
		if err := repo.Remove(ctx, roleID, permissionID); err != nil {
			return nil, err
		}
	}
	for _, permissionID := range toAdd {
		if err := repo.Assign(ctx, roleID, permissionID); err != nil {
			return nil, err
		}
	}

	return &domain.SyncResult{Added: len(toAdd), Removed: len(toRemove)}, nil
}

// NewAssignmentUseCase creates a new AssignmentUseCase.
func NewAssignmentUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	roleRepo RoleRepository,
	permissionRepo PermissionRepository,
	userRoleRepo UserRoleRepository,
	rolePermissionRepo RolePermissionRepository,
) AssignmentUseCase {
	return &assignmentUseCase{
		txManager:          txManager,
		userRepo:           userRepo,
		roleRepo:           roleRepo,
		permissionRepo:     permissionRepo,
		userRoleRepo:       userRoleRepo,
		rolePermissionRepo: rolePermissionRepo,
	}
}
