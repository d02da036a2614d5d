// Package usecase implements the RBAC core: authorization queries, role and
// permission assignment under a replace contract, role administration and the
// catalog bootstrapper.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/allisson/qacms/internal/rbac/catalog"
	"github.com/allisson/qacms/internal/rbac/domain"
)

// UserRepository reads users owned by the identity subsystem.
type UserRepository interface {
	// Get retrieves a user by ID. Returns ErrUserNotFound if not found.
	Get(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// GetOldest returns the user with the earliest creation time. Returns
	// ErrUserNotFound when there are no users.
	GetOldest(ctx context.Context) (*domain.User, error)

	// LockForUpdate takes a row lock on the user for the rest of the current
	// transaction. Returns ErrUserNotFound if not found.
	LockForUpdate(ctx context.Context, userID uuid.UUID) error
}

// PermissionRepository defines persistence operations for permissions.
type PermissionRepository interface {
	// Upsert inserts the permission or updates display name and module of the
	// existing row with the same name. permission.ID is set to the stored ID.
	Upsert(ctx context.Context, permission *domain.Permission) error

	// Get retrieves a permission by ID. Returns ErrPermissionNotFound if not found.
	Get(ctx context.Context, permissionID uuid.UUID) (*domain.Permission, error)

	// GetByIDs returns the permissions among ids that exist, in no particular order.
	GetByIDs(ctx context.Context, permissionIDs []uuid.UUID) ([]*domain.Permission, error)

	// List returns every permission ordered by module and name.
	List(ctx context.Context) ([]*domain.Permission, error)
}

// RoleRepository defines persistence operations for roles.
type RoleRepository interface {
	// Create stores a new role. Returns ErrRoleAlreadyExists on a name clash.
	Create(ctx context.Context, role *domain.Role) error

	// Update stores display fields and, for non-system roles, the name.
	// Returns ErrRoleProtected if the update would rename a system role.
	Update(ctx context.Context, role *domain.Role) error

	// Upsert inserts the role or updates the display fields and system flag of
	// the existing row with the same name. role.ID is set to the stored ID.
	Upsert(ctx context.Context, role *domain.Role) error

	// Delete removes a non-system role. Returns ErrRoleProtected for system
	// roles and ErrRoleNotFound if not found.
	Delete(ctx context.Context, roleID uuid.UUID) error

	// Get retrieves a role by ID. Returns ErrRoleNotFound if not found.
	Get(ctx context.Context, roleID uuid.UUID) (*domain.Role, error)

	// GetByName retrieves a role by name. Returns ErrRoleNotFound if not found.
	GetByName(ctx context.Context, name string) (*domain.Role, error)

	// GetByIDs returns the roles among ids that exist, in no particular order.
	GetByIDs(ctx context.Context, roleIDs []uuid.UUID) ([]*domain.Role, error)

	// List returns every role ordered by name.
	List(ctx context.Context) ([]*domain.Role, error)

	// LockForUpdate takes a row lock on the role for the rest of the current
	// transaction. Returns ErrRoleNotFound if not found.
	LockForUpdate(ctx context.Context, roleID uuid.UUID) error
}

// UserRoleRepository persists the user to role join rows and answers the
// effective-permission queries derived from them.
type UserRoleRepository interface {
	// Assign inserts the pair. An existing pair is left untouched.
	Assign(ctx context.Context, userID, roleID uuid.UUID) error

	// Remove deletes the pair. A missing pair is not an error.
	Remove(ctx context.Context, userID, roleID uuid.UUID) error

	// ListRoleIDs returns the IDs of the roles held by the user.
	ListRoleIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// ListRoleNames returns the names of the roles held by the user.
	ListRoleNames(ctx context.Context, userID uuid.UUID) ([]string, error)

	// ListPermissionNames returns the distinct permission names granted to the
	// user through any held role.
	ListPermissionNames(ctx context.Context, userID uuid.UUID) ([]string, error)

	// HasRole reports whether the user holds the named role.
	HasRole(ctx context.Context, userID uuid.UUID, roleName string) (bool, error)

	// HasPermission reports whether any role held by the user grants the
	// named permission.
	HasPermission(ctx context.Context, userID uuid.UUID, permissionName string) (bool, error)
}

// RolePermissionRepository persists the role to permission join rows.
type RolePermissionRepository interface {
	// Assign inserts the pair. An existing pair is left untouched.
	Assign(ctx context.Context, roleID, permissionID uuid.UUID) error

	// Remove deletes the pair. A missing pair is not an error.
	Remove(ctx context.Context, roleID, permissionID uuid.UUID) error

	// ListPermissionIDs returns the IDs of the permissions granted to the role.
	ListPermissionIDs(ctx context.Context, roleID uuid.UUID) ([]uuid.UUID, error)

	// ListPermissions returns the permissions granted to the role ordered by
	// module and name.
	ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*domain.Permission, error)
}

// AuthorizationUseCase answers whether a user may act. Every check fails
// closed: an unknown user, an unknown name or a store failure yields false.
type AuthorizationUseCase interface {
	HasRole(ctx context.Context, userID uuid.UUID, roleName string) bool
	HasAnyRole(ctx context.Context, userID uuid.UUID, roleNames []string) bool
	HasPermission(ctx context.Context, userID uuid.UUID, permissionName string) bool
	HasAnyPermission(ctx context.Context, userID uuid.UUID, permissionNames []string) bool

	// HasAllPermissions reads the effective set once and tests containment.
	// It is false for an empty list.
	HasAllPermissions(ctx context.Context, userID uuid.UUID, permissionNames []string) bool

	// GetUserPermissions returns the effective permission set. Unknown users
	// get an empty set; store failures are returned.
	GetUserPermissions(ctx context.Context, userID uuid.UUID) (domain.NameSet, error)

	// GetUserRoles returns the names of the roles held by the user.
	GetUserRoles(ctx context.Context, userID uuid.UUID) (domain.NameSet, error)

	// GetUserAccess returns roles and permissions read concurrently.
	GetUserAccess(ctx context.Context, userID uuid.UUID) (*domain.UserAccess, error)

	IsSuperAdmin(ctx context.Context, userID uuid.UUID) bool
}

// AssignmentUseCase manages user to role and role to permission grants.
// Assign and remove are idempotent; sync replaces the whole set atomically.
type AssignmentUseCase interface {
	AssignRole(ctx context.Context, userID, roleID uuid.UUID) error
	RemoveRole(ctx context.Context, userID, roleID uuid.UUID) error

	// SyncRoles makes the user's role set exactly roleIDs. Concurrent syncs
	// of the same user serialize on the user row.
	SyncRoles(ctx context.Context, userID uuid.UUID, roleIDs []uuid.UUID) (*domain.SyncResult, error)

	AssignPermissionToRole(ctx context.Context, roleID, permissionID uuid.UUID) error
	RemovePermissionFromRole(ctx context.Context, roleID, permissionID uuid.UUID) error

	// SyncPermissions makes the role's permission set exactly permissionIDs.
	// System roles are allowed.
	SyncPermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []uuid.UUID) (*domain.SyncResult, error)

	GetUserRoleIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	GetRolePermissions(ctx context.Context, roleID uuid.UUID) ([]*domain.Permission, error)
}

// RoleUseCase administers roles. System roles cannot be deleted or renamed.
type RoleUseCase interface {
	Create(ctx context.Context, input *domain.CreateRoleInput) (*domain.Role, error)
	Update(ctx context.Context, roleID uuid.UUID, input *domain.UpdateRoleInput) (*domain.Role, error)
	Delete(ctx context.Context, roleID uuid.UUID) error
	Get(ctx context.Context, roleID uuid.UUID) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
	ListPermissions(ctx context.Context) ([]*domain.Permission, error)
}

// BootstrapReport summarizes a bootstrap run.
type BootstrapReport struct {
	PermissionsUpserted int
	RolesUpserted       int
	GrantsAdded         int
	GrantsRemoved       int
	// LegacyUserID is set when the oldest user had no roles and received super-admin.
	LegacyUserID *uuid.UUID
}

// BootstrapUseCase converges the store to a catalog. Running it twice with the
// same catalog leaves the store unchanged.
type BootstrapUseCase interface {
	Run(ctx context.Context, c *catalog.Catalog) (*BootstrapReport, error)
}
