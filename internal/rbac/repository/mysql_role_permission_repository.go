package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/qacms/internal/database"
	apperrors "github.com/allisson/qacms/internal/errors"
	"github.com/allisson/qacms/internal/rbac/domain"
)

// MySQLRolePermissionRepository handles role_permissions persistence for MySQL.
type MySQLRolePermissionRepository struct {
	db *sql.DB
}

// NewMySQLRolePermissionRepository creates a new MySQLRolePermissionRepository.
func NewMySQLRolePermissionRepository(db *sql.DB) *MySQLRolePermissionRepository {
	return &MySQLRolePermissionRepository{db: db}
}

// Assign inserts the pair, leaving an existing pair untouched.
func (r *MySQLRolePermissionRepository) Assign(ctx context.Context, roleID, permissionID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	rid, err := mysqlID(roleID)
	if err != nil {
		return err
	}
	pid, err := mysqlID(permissionID)
	if err != nil {
		return err
	}

	query := `INSERT INTO role_permissions (role_id, permission_id, created_at)
			  VALUES (?, ?, NOW())
			  ON DUPLICATE KEY UPDATE role_id = role_id`

	if _, err := querier.ExecContext(ctx, query, rid, pid); err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.Wrap(apperrors.ErrNotFound, "role or permission not found")
		}
		return apperrors.Wrap(err, "failed to assign permission")
	}
	return nil
}

// Remove deletes the pair if present.
func (r *MySQLRolePermissionRepository) Remove(ctx context.Context, roleID, permissionID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	rid, err := mysqlID(roleID)
	if err != nil {
		return err
	}
	pid, err := mysqlID(permissionID)
	if err != nil {
		return err
	}

	query := `DELETE FROM role_permissions WHERE role_id = ? AND permission_id = ?`

	if _, err := querier.ExecContext(ctx, query, rid, pid); err != nil {
		return apperrors.Wrap(err, "failed to remove permission")
	}
	return nil
}

// ListPermissionIDs returns the IDs of the permissions granted to the role.
func (r *MySQLRolePermissionRepository) ListPermissionIDs(ctx context.Context, roleID uuid.UUID) ([]uuid.UUID, error) {
	querier := database.GetTx(ctx, r.db)

	rid, err := mysqlID(roleID)
	if err != nil {
		return nil, err
	}

	query := `SELECT permission_id FROM role_permissions WHERE role_id = ? ORDER BY permission_id`

	rows, err := querier.QueryContext(ctx, query, rid)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list role permission ids")
	}
	return collectIDs(rows, scanMySQLID)
}

// ListPermissions returns the permissions granted to the role.
func (r *MySQLRolePermissionRepository) ListPermissions(
	ctx context.Context,
	roleID uuid.UUID,
) ([]*domain.Permission, error) {
	querier := database.GetTx(ctx, r.db)

	rid, err := mysqlID(roleID)
	if err != nil {
		return nil, err
	}

	query := `SELECT p.id, p.name, p.display_name, p.module, p.created_at
			  FROM role_permissions rp
			  JOIN permissions p ON p.id = rp.permission_id
			  WHERE rp.role_id = ?
			  ORDER BY p.module ASC, p.name ASC`

	rows, err := querier.QueryContext(ctx, query, rid)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list role permissions")
	}
	return scanMySQLPermissions(rows)
}
