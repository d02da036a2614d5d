package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/qacms/internal/database"
	apperrors "github.com/allisson/qacms/internal/errors"
	"github.com/allisson/qacms/internal/rbac/domain"
)

const mySQLRoleColumns = `id, name, display_name, description, color, is_system, created_at, updated_at`

// MySQLRoleRepository handles role persistence for MySQL.
type MySQLRoleRepository struct {
	db *sql.DB
}

// NewMySQLRoleRepository creates a new MySQLRoleRepository.
func NewMySQLRoleRepository(db *sql.DB) *MySQLRoleRepository {
	return &MySQLRoleRepository{db: db}
}

// Create inserts a new role.
func (r *MySQLRoleRepository) Create(ctx context.Context, role *domain.Role) error {
	querier := database.GetTx(ctx, r.db)

	id, err := mysqlID(role.ID)
	if err != nil {
		return err
	}

	query := `INSERT INTO roles (id, name, display_name, description, color, is_system, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		role.Name,
		role.DisplayName,
		nullString(role.Description),
		role.Color,
		role.IsSystem,
		role.CreatedAt,
		role.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrRoleAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create role")
	}
	return nil
}

// Update writes name and display fields. The WHERE clause refuses to rename a
// system role. MySQL reports zero affected rows for a no-op update, so the row
// is read back to tell a missing or protected role from an unchanged one.
func (r *MySQLRoleRepository) Update(ctx context.Context, role *domain.Role) error {
	querier := database.GetTx(ctx, r.db)

	id, err := mysqlID(role.ID)
	if err != nil {
		return err
	}

	query := `UPDATE roles
			  SET name = ?, display_name = ?, description = ?, color = ?, updated_at = ?
			  WHERE id = ? AND (is_system = FALSE OR name = ?)`

	result, err := querier.ExecContext(
		ctx,
		query,
		role.Name,
		role.DisplayName,
		nullString(role.Description),
		role.Color,
		role.UpdatedAt,
		id,
		role.Name,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrRoleAlreadyExists
		}
		return apperrors.Wrap(err, "failed to update role")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		return r.explainNoRows(ctx, id, role.Name)
	}
	return nil
}

// Upsert inserts the role or refreshes the row with the same name, then reads
// the stored ID back into role. updated_at is assigned first so it compares
// against the old column values.
func (r *MySQLRoleRepository) Upsert(ctx context.Context, role *domain.Role) error {
	querier := database.GetTx(ctx, r.db)

	id, err := mysqlID(role.ID)
	if err != nil {
		return err
	}

	query := `INSERT INTO roles (id, name, display_name, description, color, is_system, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			      updated_at = IF(
			          NOT (display_name <=> VALUES(display_name))
			          OR NOT (description <=> VALUES(description))
			          OR NOT (color <=> VALUES(color))
			          OR NOT (is_system <=> VALUES(is_system)),
			          VALUES(updated_at),
			          updated_at
			      ),
			      display_name = VALUES(display_name),
			      description = VALUES(description),
			      color = VALUES(color),
			      is_system = VALUES(is_system)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		role.Name,
		role.DisplayName,
		nullString(role.Description),
		role.Color,
		role.IsSystem,
		role.CreatedAt,
		role.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert role")
	}

	stored, err := r.GetByName(ctx, role.Name)
	if err != nil {
		return apperrors.Wrap(err, "failed to read upserted role")
	}
	role.ID = stored.ID
	role.CreatedAt = stored.CreatedAt
	role.UpdatedAt = stored.UpdatedAt
	return nil
}

// Delete removes a non-system role. Join rows go with it through ON DELETE CASCADE.
func (r *MySQLRoleRepository) Delete(ctx context.Context, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	id, err := mysqlID(roleID)
	if err != nil {
		return err
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM roles WHERE id = ? AND is_system = FALSE`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete role")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		if err := r.explainNoRows(ctx, id, ""); err != nil {
			return err
		}
		return domain.ErrRoleProtected
	}
	return nil
}

// Get retrieves a role by ID.
func (r *MySQLRoleRepository) Get(ctx context.Context, roleID uuid.UUID) (*domain.Role, error) {
	querier := database.GetTx(ctx, r.db)

	id, err := mysqlID(roleID)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + mySQLRoleColumns + ` FROM roles WHERE id = ?`

	return scanRole(querier.QueryRowContext(ctx, query, id), scanMySQLID)
}

// GetByName retrieves a role by name.
func (r *MySQLRoleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mySQLRoleColumns + ` FROM roles WHERE name = ?`

	return scanRole(querier.QueryRowContext(ctx, query, name), scanMySQLID)
}

// GetByIDs returns the existing roles among roleIDs.
func (r *MySQLRoleRepository) GetByIDs(ctx context.Context, roleIDs []uuid.UUID) ([]*domain.Role, error) {
	if len(roleIDs) == 0 {
		return []*domain.Role{}, nil
	}

	querier := database.GetTx(ctx, r.db)

	placeholders, args, err := mysqlIDList(roleIDs)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + mySQLRoleColumns + ` FROM roles WHERE id IN (` + placeholders + `)` //nolint:gosec // placeholders only

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get roles by ids")
	}
	return scanRoles(rows, scanMySQLID)
}

// List returns every role ordered by name.
func (r *MySQLRoleRepository) List(ctx context.Context) ([]*domain.Role, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mySQLRoleColumns + ` FROM roles ORDER BY name ASC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list roles")
	}
	return scanRoles(rows, scanMySQLID)
}

// LockForUpdate locks the role row until the surrounding transaction ends.
func (r *MySQLRoleRepository) LockForUpdate(ctx context.Context, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	id, err := mysqlID(roleID)
	if err != nil {
		return err
	}

	var raw []byte
	if err := querier.QueryRowContext(ctx, `SELECT id FROM roles WHERE id = ? FOR UPDATE`, id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrRoleNotFound
		}
		return apperrors.Wrap(err, "failed to lock role")
	}
	return nil
}

func (r *MySQLRoleRepository) explainNoRows(ctx context.Context, id []byte, newName string) error {
	querier := database.GetTx(ctx, r.db)

	var name string
	var isSystem bool
	err := querier.QueryRowContext(ctx, `SELECT name, is_system FROM roles WHERE id = ?`, id).Scan(&name, &isSystem)
	return classifyMissingRoleRow(err, name, isSystem, newName)
}
