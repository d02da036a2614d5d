package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/qacms/internal/database"
	apperrors "github.com/allisson/qacms/internal/errors"
)

// MySQLUserRoleRepository handles user_roles persistence for MySQL.
type MySQLUserRoleRepository struct {
	db *sql.DB
}

// NewMySQLUserRoleRepository creates a new MySQLUserRoleRepository.
func NewMySQLUserRoleRepository(db *sql.DB) *MySQLUserRoleRepository {
	return &MySQLUserRoleRepository{db: db}
}

// Assign inserts the pair, leaving an existing pair untouched. INSERT IGNORE
// would also swallow foreign key failures, hence the no-op update.
func (r *MySQLUserRoleRepository) Assign(ctx context.Context, userID, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	uid, err := mysqlID(userID)
	if err != nil {
		return err
	}
	rid, err := mysqlID(roleID)
	if err != nil {
		return err
	}

	query := `INSERT INTO user_roles (user_id, role_id, created_at)
			  VALUES (?, ?, NOW())
			  ON DUPLICATE KEY UPDATE user_id = user_id`

	if _, err := querier.ExecContext(ctx, query, uid, rid); err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperrors.Wrap(apperrors.ErrNotFound, "user or role not found")
		}
		return apperrors.Wrap(err, "failed to assign role")
	}
	return nil
}

// Remove deletes the pair if present.
func (r *MySQLUserRoleRepository) Remove(ctx context.Context, userID, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	uid, err := mysqlID(userID)
	if err != nil {
		return err
	}
	rid, err := mysqlID(roleID)
	if err != nil {
		return err
	}

	if _, err := querier.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ? AND role_id = ?`, uid, rid); err != nil {
		return apperrors.Wrap(err, "failed to remove role")
	}
	return nil
}

// ListRoleIDs returns the IDs of the roles held by the user.
func (r *MySQLUserRoleRepository) ListRoleIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	querier := database.GetTx(ctx, r.db)

	uid, err := mysqlID(userID)
	if err != nil {
		return nil, err
	}

	rows, err := querier.QueryContext(ctx, `SELECT role_id FROM user_roles WHERE user_id = ? ORDER BY role_id`, uid)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list user role ids")
	}
	return collectIDs(rows, scanMySQLID)
}

// ListRoleNames returns the names of the roles held by the user.
func (r *MySQLUserRoleRepository) ListRoleNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	querier := database.GetTx(ctx, r.db)

	uid, err := mysqlID(userID)
	if err != nil {
		return nil, err
	}

	query := `SELECT r.name
			  FROM user_roles ur
			  JOIN roles r ON r.id = ur.role_id
			  WHERE ur.user_id = ?
			  ORDER BY r.name`

	rows, err := querier.QueryContext(ctx, query, uid)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list user role names")
	}
	return collectStrings(rows)
}

// ListPermissionNames returns the effective permission names of the user.
func (r *MySQLUserRoleRepository) ListPermissionNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	querier := database.GetTx(ctx, r.db)

	uid, err := mysqlID(userID)
	if err != nil {
		return nil, err
	}

	query := `SELECT DISTINCT p.name
			  FROM user_roles ur
			  JOIN role_permissions rp ON rp.role_id = ur.role_id
			  JOIN permissions p ON p.id = rp.permission_id
			  WHERE ur.user_id = ?
			  ORDER BY p.name`

	rows, err := querier.QueryContext(ctx, query, uid)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list user permission names")
	}
	return collectStrings(rows)
}

// HasRole reports whether the user holds the named role.
func (r *MySQLUserRoleRepository) HasRole(ctx context.Context, userID uuid.UUID, roleName string) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	uid, err := mysqlID(userID)
	if err != nil {
		return false, err
	}

	query := `SELECT EXISTS (
			      SELECT 1 FROM user_roles ur
			      JOIN roles r ON r.id = ur.role_id
			      WHERE ur.user_id = ? AND r.name = ?
			  )`

	var ok bool
	if err := querier.QueryRowContext(ctx, query, uid, roleName).Scan(&ok); err != nil {
		return false, apperrors.Wrap(err, "failed to check user role")
	}
	return ok, nil
}

// HasPermission reports whether any role held by the user grants the permission.
func (r *MySQLUserRoleRepository) HasPermission(
	ctx context.Context,
	userID uuid.UUID,
	permissionName string,
) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	uid, err := mysqlID(userID)
	if err != nil {
		return false, err
	}

	query := `SELECT EXISTS (
			      SELECT 1 FROM user_roles ur
			      JOIN role_permissions rp ON rp.role_id = ur.role_id
			      JOIN permissions p ON p.id = rp.permission_id
			      WHERE ur.user_id = ? AND p.name = ?
			  )`

	var ok bool
	if err := querier.QueryRowContext(ctx, query, uid, permissionName).Scan(&ok); err != nil {
		return false, apperrors.Wrap(err, "failed to check user permission")
	}
	return ok, nil
}
