package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/qacms/internal/database"
	apperrors "github.com/allisson/qacms/internal/errors"
)

// PostgreSQLUserRoleRepository handles user_roles persistence for PostgreSQL.
type PostgreSQLUserRoleRepository struct {
	db *sql.DB
}

// NewPostgreSQLUserRoleRepository creates a new PostgreSQLUserRoleRepository.
func NewPostgreSQLUserRoleRepository(db *sql.DB) *PostgreSQLUserRoleRepository {
	return &PostgreSQLUserRoleRepository{db: db}
}

// Assign inserts the pair, leaving an existing pair untouched.
func (r *PostgreSQLUserRoleRepository) Assign(ctx context.Context, userID, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO user_roles (user_id, role_id, created_at)
			  VALUES ($1, $2, NOW())
			  ON CONFLICT (user_id, role_id) DO NOTHING`

	if _, err := querier.ExecContext(ctx, query, userID, roleID); err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.Wrap(apperrors.ErrNotFound, "user or role not found")
		}
		return apperrors.Wrap(err, "failed to assign role")
	}
	return nil
}

// Remove deletes the pair if present.
func (r *PostgreSQLUserRoleRepository) Remove(ctx context.Context, userID, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`

	if _, err := querier.ExecContext(ctx, query, userID, roleID); err != nil {
		return apperrors.Wrap(err, "failed to remove role")
	}
	return nil
}

// ListRoleIDs returns the IDs of the roles held by the user.
func (r *PostgreSQLUserRoleRepository) ListRoleIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT role_id FROM user_roles WHERE user_id = $1 ORDER BY role_id`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list user role ids")
	}
	return collectIDs(rows, scanPostgreSQLID)
}

// ListRoleNames returns the names of the roles held by the user.
func (r *PostgreSQLUserRoleRepository) ListRoleNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT r.name
			  FROM user_roles ur
			  JOIN roles r ON r.id = ur.role_id
			  WHERE ur.user_id = $1
			  ORDER BY r.name`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list user role names")
	}
	return collectStrings(rows)
}

// ListPermissionNames returns the effective permission names of the user.
func (r *PostgreSQLUserRoleRepository) ListPermissionNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT DISTINCT p.name
			  FROM user_roles ur
			  JOIN role_permissions rp ON rp.role_id = ur.role_id
			  JOIN permissions p ON p.id = rp.permission_id
			  WHERE ur.user_id = $1
			  ORDER BY p.name`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list user permission names")
	}
	return collectStrings(rows)
}

// HasRole reports whether the user holds the named role.
func (r *PostgreSQLUserRoleRepository) HasRole(ctx context.Context, userID uuid.UUID, roleName string) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT EXISTS (
			      SELECT 1 FROM user_roles ur
			      JOIN roles r ON r.id = ur.role_id
			      WHERE ur.user_id = $1 AND r.name = $2
			  )`

	var ok bool
	if err := querier.QueryRowContext(ctx, query, userID, roleName).Scan(&ok); err != nil {
		return false, apperrors.Wrap(err, "failed to check user role")
	}
	return ok, nil
}

// HasPermission reports whether any role held by the user grants the permission.
func (r *PostgreSQLUserRoleRepository) HasPermission(
	ctx context.Context,
	userID uuid.UUID,
	permissionName string,
) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT EXISTS (
			      SELECT 1 FROM user_roles ur
			      JOIN role_permissions rp ON rp.role_id = ur.role_id
			      JOIN permissions p ON p.id = rp.permission_id
			      WHERE ur.user_id = $1 AND p.name = $2
			  )`

	var ok bool
	if err := querier.QueryRowContext(ctx, query, userID, permissionName).Scan(&ok); err != nil {
		return false, apperrors.Wrap(err, "failed to check user permission")
	}
	return ok, nil
}
