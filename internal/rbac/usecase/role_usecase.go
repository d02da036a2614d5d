package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/qacms/internal/database"
	"github.com/allisson/qacms/internal/rbac/domain"
	customValidation "github.com/allisson/qacms/internal/validation"
)

// DefaultRoleColor is used when a role is created without a color.
const DefaultRoleColor = "#6B7280"

// roleUseCase implements RoleUseCase.
type roleUseCase struct {
	txManager      database.TxManager
	roleRepo       RoleRepository
	permissionRepo PermissionRepository
}

// Create validates and stores a new non-system role.
func (r *roleUseCase) Create(ctx context.Context, input *domain.CreateRoleInput) (*domain.Role, error) {
	if err := validateCreateRoleInput(input); err != nil {
		return nil, err
	}

	color := input.Color
	if color == "" {
		color = DefaultRoleColor
	}

	now := time.Now().UTC()
	role := &domain.Role{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        input.Name,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Description: strings.TrimSpace(input.Description),
		Color:       color,
		IsSystem:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := r.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}

	return role, nil
}

// Update changes the display fields of a role. Renaming a system role fails
// with ErrRoleProtected before anything is written.
func (r *roleUseCase) Update(
	ctx context.Context,
	roleID uuid.UUID,
	input *domain.UpdateRoleInput,
) (*domain.Role, error) {
	if err := validateUpdateRoleInput(input); err != nil {
		return nil, err
	}

	var role *domain.Role
	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := r.roleRepo.LockForUpdate(ctx, roleID); err != nil {
			return err
		}

		existing, err := r.roleRepo.Get(ctx, roleID)
		if err != nil {
			return err
		}

		name := existing.Name
		if input.Name != "" {
			name = input.Name
		}
		if err := existing.CheckRename(name); err != nil {
			return err
		}

		existing.Name = name
		existing.DisplayName = strings.TrimSpace(input.DisplayName)
		existing.Description = strings.TrimSpace(input.Description)
		if input.Color != "" {
			existing.Color = input.Color
		}
		existing.UpdatedAt = time.Now().UTC()

		if err := r.roleRepo.Update(ctx, existing); err != nil {
			return err
		}

		role = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	return role, nil
}

// Delete removes a non-system role together with its grants. System roles
// fail with ErrRoleProtected and nothing changes.
func (r *roleUseCase) Delete(ctx context.Context, roleID uuid.UUID) error {
	return r.txManager.WithTx(ctx, func(ctx context.Context) error {
		role, err := r.roleRepo.Get(ctx, roleID)
		if err != nil {
			return err
		}
		if err := role.CheckDelete(); err != nil {
			return err
		}
		return r.roleRepo.Delete(ctx, roleID)
	})
}

// Get retrieves a role by ID.
func (r *roleUseCase) Get(ctx context.Context, roleID uuid.UUID) (*domain.Role, error) {
	return r.roleRepo.Get(ctx, roleID)
}

// GetByName retrieves a role by name.
func (r *roleUseCase) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.roleRepo.GetByName(ctx, strings.TrimSpace(name))
}

// List returns every role ordered by name.
func (r *roleUseCase) List(ctx context.Context) ([]*domain.Role, error) {
	return r.roleRepo.List(ctx)
}

// ListPermissions returns every permission ordered by module and name.
func (r *roleUseCase) ListPermissions(ctx context.Context) ([]*domain.Permission, error) {
	return r.permissionRepo.List(ctx)
}

func validateCreateRoleInput(input *domain.CreateRoleInput) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.Name, validation.Required, customValidation.RoleName, validation.Length(1, 64)),
		validation.Field(&input.DisplayName, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&input.Description, validation.Length(0, 1000)),
		validation.Field(&input.Color, customValidation.HexColor),
	)
	return customValidation.WrapValidationError(err)
}

func validateUpdateRoleInput(input *domain.UpdateRoleInput) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.Name, customValidation.RoleName, validation.Length(0, 64)),
		validation.Field(&input.DisplayName, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&input.Description, validation.Length(0, 1000)),
		validation.Field(&input.Color, customValidation.HexColor),
	)
	return customValidation.WrapValidationError(err)
}

// NewRoleUseCase creates a new RoleUseCase.
func NewRoleUseCase(
	txManager database.TxManager,
	roleRepo RoleRepository,
	permissionRepo PermissionRepository,
) RoleUseCase {
	return &roleUseCase{
		txManager:      txManager,
		roleRepo:       roleRepo,
		permissionRepo: permissionRepo,
	}
}
