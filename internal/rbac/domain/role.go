package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a named bundle of permissions. System roles are seeded by the
// bootstrapper and can never be deleted or renamed, although their permission
// sets may change.
type Role struct {
	ID          uuid.UUID
	Name        string
	DisplayName string
	Description string
	Color       string
	IsSystem    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CheckDelete returns ErrRoleProtected for system roles.
func (r *Role) CheckDelete() error {
	if r.IsSystem {
		return ErrRoleProtected
	}
	return nil
}

// CheckRename returns ErrRoleProtected when newName would change the name of a
// system role. Keeping the current name is always allowed.
func (r *Role) CheckRename(newName string) error {
	if r.IsSystem && newName != r.Name {
		return ErrRoleProtected
	}
	return nil
}

// CreateRoleInput contains the fields for creating a role through the
// administration API. Roles created this way are never system roles.
type CreateRoleInput struct {
	Name        string
	DisplayName string
	Description string
	Color       string
}

// UpdateRoleInput contains the mutable fields of a role. An empty Name keeps
// the current name.
type UpdateRoleInput struct {
	Name        string
	DisplayName string
	Description string
	Color       string
}
