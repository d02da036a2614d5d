package domain

import (
	"github.com/allisson/qacms/internal/errors"
)

// RBAC errors.
var (
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrRoleNotFound indicates the referenced role does not exist.
	ErrRoleNotFound = errors.Wrap(errors.ErrNotFound, "role not found")

	// ErrPermissionNotFound indicates the referenced permission does not exist.
	ErrPermissionNotFound = errors.Wrap(errors.ErrNotFound, "permission not found")

	// ErrRoleAlreadyExists indicates a role with the same name already exists.
	ErrRoleAlreadyExists = errors.Wrap(errors.ErrConflict, "role already exists")

	// ErrPermissionAlreadyExists indicates a permission with the same name already exists.
	ErrPermissionAlreadyExists = errors.Wrap(errors.ErrConflict, "permission already exists")

	// ErrRoleProtected indicates an attempt to delete or rename a system role.
	ErrRoleProtected = errors.Wrap(errors.ErrProtected, "system role cannot be deleted or renamed")

	// ErrInvalidCatalog indicates the role catalog failed validation.
	ErrInvalidCatalog = errors.Wrap(errors.ErrInvalidInput, "invalid role catalog")
)
