package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/qacms/internal/database"
	"github.com/allisson/qacms/internal/errors"
	"github.com/allisson/qacms/internal/rbac/catalog"
	"github.com/allisson/qacms/internal/rbac/domain"
)

// bootstrapUseCase implements BootstrapUseCase.
type bootstrapUseCase struct {
	txManager          database.TxManager
	userRepo           UserRepository
	roleRepo           RoleRepository
	permissionRepo     PermissionRepository
	userRoleRepo       UserRoleRepository
	rolePermissionRepo RolePermissionRepository
	logger             *slog.Logger
}

// Run converges permissions, roles and role grants to c in a single
// transaction, then gives super-admin to the oldest user if that user holds no
// role at all. Names are the identity: existing rows keep their IDs and are
// never renamed.
func (b *bootstrapUseCase) Run(ctx context.Context, c *catalog.Catalog) (*BootstrapReport, error) {
	if c == nil {
		return nil, errors.Wrap(domain.ErrInvalidCatalog, "catalog is nil")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	report := &BootstrapReport{}

	err := b.txManager.WithTx(ctx, func(ctx context.Context) error {
		permissionIDs, err := b.upsertPermissions(ctx, c.Registry())
		if err != nil {
			return err
		}
		report.PermissionsUpserted = len(permissionIDs)

		var superAdminID uuid.UUID
		for _, def := range c.Roles() {
			role, err := b.upsertRole(ctx, def)
			if err != nil {
				return err
			}
			report.RolesUpserted++
			if role.Name == domain.SuperAdminRole {
				superAdminID = role.ID
			}

			names := c.Resolve(def)
			target := make([]uuid.UUID, 0, len(names))
			for _, name := range names {
				target = append(target, permissionIDs[name])
			}

			synced, err := replaceRolePermissions(ctx, b.rolePermissionRepo, role.ID, target)
			if err != nil {
				return errors.Wrapf(err, "failed to sync permissions of role %q", role.Name)
			}
			report.GrantsAdded += synced.Added
			report.GrantsRemoved += synced.Removed
		}

		legacyUserID, err := b.migrateLegacyUser(ctx, superAdminID)
		if err != nil {
			return err
		}
		report.LegacyUserID = legacyUserID
		return nil
	})
	if err != nil {
		return nil, err
	}

	attrs := []any{
		slog.Int("permissions", report.PermissionsUpserted),
		slog.Int("roles", report.RolesUpserted),
		slog.Int("grants_added", report.GrantsAdded),
		slog.Int("grants_removed", report.GrantsRemoved),
	}
	if report.LegacyUserID != nil {
		attrs = append(attrs, slog.String("legacy_super_admin", report.LegacyUserID.String()))
	}
	b.logger.InfoContext(ctx, "rbac catalog bootstrapped", attrs...)

	return report, nil
}

func (b *bootstrapUseCase) upsertPermissions(
	ctx context.Context,
	registry catalog.Registry,
) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID)
	for _, entry := range registry.Entries() {
		perm := &domain.Permission{
			ID:          uuid.Must(uuid.NewV7()),
			Name:        entry.Name,
			DisplayName: entry.DisplayName,
			Module:      entry.Module,
			CreatedAt:   time.Now().UTC(),
		}
		if err := b.permissionRepo.Upsert(ctx, perm); err != nil {
			return nil, errors.Wrapf(err, "failed to upsert permission %q", entry.Name)
		}
		ids[perm.Name] = perm.ID
	}
	return ids, nil
}

func (b *bootstrapUseCase) upsertRole(ctx context.Context, def catalog.RoleDef) (*domain.Role, error) {
	now := time.Now().UTC()
	role := &domain.Role{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        def.Name,
		DisplayName: def.DisplayName,
		Description: def.Description,
		Color:       def.Color,
		IsSystem:    def.IsSystem,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if role.Color == "" {
		role.Color = DefaultRoleColor
	}

	if err := b.roleRepo.Upsert(ctx, role); err != nil {
		return nil, errors.Wrapf(err, "failed to upsert role %q", def.Name)
	}
	return role, nil
}

// migrateLegacyUser assigns super-admin to the oldest user when that user
// holds no roles. It returns the user ID when an assignment was made.
func (b *bootstrapUseCase) migrateLegacyUser(ctx context.Context, superAdminID uuid.UUID) (*uuid.UUID, error) {
	oldest, err := b.userRepo.GetOldest(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := b.userRepo.LockForUpdate(ctx, oldest.ID); err != nil {
		return nil, err
	}

	held, err := b.userRoleRepo.ListRoleIDs(ctx, oldest.ID)
	if err != nil {
		return nil, err
	}
	if len(held) > 0 {
		return nil, nil
	}

	if err := b.userRoleRepo.Assign(ctx, oldest.ID, superAdminID); err != nil {
		return nil, errors.Wrap(err, "failed to assign super-admin to oldest user")
	}
	return &oldest.ID, nil
}

// NewBootstrapUseCase creates a new BootstrapUseCase.
func NewBootstrapUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	roleRepo RoleRepository,
	permissionRepo PermissionRepository,
	userRoleRepo UserRoleRepository,
	rolePermissionRepo RolePermissionRepository,
	logger *slog.Logger,
) BootstrapUseCase {
	return &bootstrapUseCase{
		txManager:          txManager,
		userRepo:           userRepo,
		roleRepo:           roleRepo,
		permissionRepo:     permissionRepo,
		userRoleRepo:       userRoleRepo,
		rolePermissionRepo: rolePermissionRepo,
		logger:             logger,
	}
}
