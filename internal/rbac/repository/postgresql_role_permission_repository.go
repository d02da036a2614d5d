package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/qacms/internal/database"
	apperrors "github.com/allisson/qacms/internal/errors"
	"github.com/allisson/qacms/internal/rbac/domain"
)

// PostgreSQLRolePermissionRepository handles role_permissions persistence for PostgreSQL.
type PostgreSQLRolePermissionRepository struct {
	db *sql.DB
}

// NewPostgreSQLRolePermissionRepository creates a new PostgreSQLRolePermissionRepository.
func NewPostgreSQLRolePermissionRepository(db *sql.DB) *PostgreSQLRolePermissionRepository {
	return &PostgreSQLRolePermissionRepository{db: db}
}

// Assign inserts the pair, leaving an existing pair untouched.
func (r *PostgreSQLRolePermissionRepository) Assign(ctx context.Context, roleID, permissionID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO role_permissions (role_id, permission_id, created_at)
			  VALUES ($1, $2, NOW())
			  ON CONFLICT (role_id, permission_id) DO NOTHING`

	if _, err := querier.ExecContext(ctx, query, roleID, permissionID); err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.Wrap(apperrors.ErrNotFound, "role or permission not found")
		}
		return apperrors.Wrap(err, "failed to assign permission")
	}
	return nil
}

// Remove deletes the pair if present.
func (r *PostgreSQLRolePermissionRepository) Remove(ctx context.Context, roleID, permissionID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`

	if _, err := querier.ExecContext(ctx, query, roleID, permissionID); err != nil {
		return apperrors.Wrap(err, "failed to remove permission")
	}
	return nil
}

// ListPermissionIDs returns the IDs of the permissions granted to the role.
func (r *PostgreSQLRolePermissionRepository) ListPermissionIDs(
	ctx context.Context,
	roleID uuid.UUID,
) ([]uuid.UUID, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT permission_id FROM role_permissions WHERE role_id = $1 ORDER BY permission_id`

	rows, err := querier.QueryContext(ctx, query, roleID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list role permission ids")
	}
	return collectIDs(rows, scanPostgreSQLID)
}

// ListPermissions returns the permissions granted to the role.
func (r *PostgreSQLRolePermissionRepository) ListPermissions(
	ctx context.Context,
	roleID uuid.UUID,
) ([]*domain.Permission, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT p.id, p.name, p.display_name, p.module, p.created_at
			  FROM role_permissions rp
			  JOIN permissions p ON p.id = rp.permission_id
			  WHERE rp.role_id = $1
			  ORDER BY p.module ASC, p.name ASC`

	rows, err := querier.QueryContext(ctx, query, roleID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list role permissions")
	}
	return scanPostgreSQLPermissions(rows)
}
