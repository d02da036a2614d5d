package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/allisson/qacms/internal/database"
	apperrors "github.com/allisson/qacms/internal/errors"
	"github.com/allisson/qacms/internal/rbac/domain"
)

const postgreSQLRoleColumns = `id, name, display_name, description, color, is_system, created_at, updated_at`

// PostgreSQLRoleRepository handles role persistence for PostgreSQL. Deletes and
// renames are guarded in SQL so a system role survives even a caller that
// skipped the domain check.
type PostgreSQLRoleRepository struct {
	db *sql.DB
}

// NewPostgreSQLRoleRepository creates a new PostgreSQLRoleRepository.
func NewPostgreSQLRoleRepository(db *sql.DB) *PostgreSQLRoleRepository {
	return &PostgreSQLRoleRepository{db: db}
}

// Create inserts a new role.
func (r *PostgreSQLRoleRepository) Create(ctx context.Context, role *domain.Role) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO roles (id, name, display_name, description, color, is_system, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		role.ID,
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
// system role.
func (r *PostgreSQLRoleRepository) Update(ctx context.Context, role *domain.Role) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE roles
			  SET name = $2, display_name = $3, description = $4, color = $5, updated_at = $6
			  WHERE id = $1 AND (is_system = FALSE OR name = $2)`

	result, err := querier.ExecContext(
		ctx,
		query,
		role.ID,
		role.Name,
		role.DisplayName,
		nullString(role.Description),
		role.Color,
		role.UpdatedAt,
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
		return r.explainNoRows(ctx, role.ID, role.Name)
	}
	return nil
}

// Upsert inserts the role or refreshes the row with the same name. updated_at
// only moves when a column actually changes.
func (r *PostgreSQLRoleRepository) Upsert(ctx context.Context, role *domain.Role) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO roles (id, name, display_name, description, color, is_system, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (name) DO UPDATE
			  SET display_name = EXCLUDED.display_name,
			      description = EXCLUDED.description,
			      color = EXCLUDED.color,
			      is_system = EXCLUDED.is_system,
			      updated_at = CASE
			          WHEN (roles.display_name, roles.description, roles.color, roles.is_system)
			               IS DISTINCT FROM
			               (EXCLUDED.display_name, EXCLUDED.description, EXCLUDED.color, EXCLUDED.is_system)
			          THEN EXCLUDED.updated_at
			          ELSE roles.updated_at
			      END
			  RETURNING id, created_at, updated_at`

	err := querier.QueryRowContext(
		ctx,
		query,
		role.ID,
		role.Name,
		role.DisplayName,
		nullString(role.Description),
		role.Color,
		role.IsSystem,
		role.CreatedAt,
		role.UpdatedAt,
	).Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert role")
	}
	return nil
}

// Delete removes a non-system role. Join rows go with it through ON DELETE CASCADE.
func (r *PostgreSQLRoleRepository) Delete(ctx context.Context, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM roles WHERE id = $1 AND is_system = FALSE`

	result, err := querier.ExecContext(ctx, query, roleID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete role")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if affected == 0 {
		if err := r.explainNoRows(ctx, roleID, ""); err != nil {
			return err
		}
		return domain.ErrRoleProtected
	}
	return nil
}

// Get retrieves a role by ID.
func (r *PostgreSQLRoleRepository) Get(ctx context.Context, roleID uuid.UUID) (*domain.Role, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgreSQLRoleColumns + ` FROM roles WHERE id = $1`

	return scanRole(querier.QueryRowContext(ctx, query, roleID), scanPostgreSQLID)
}

// GetByName retrieves a role by name.
func (r *PostgreSQLRoleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgreSQLRoleColumns + ` FROM roles WHERE name = $1`

	return scanRole(querier.QueryRowContext(ctx, query, name), scanPostgreSQLID)
}

// GetByIDs returns the existing roles among roleIDs.
func (r *PostgreSQLRoleRepository) GetByIDs(ctx context.Context, roleIDs []uuid.UUID) ([]*domain.Role, error) {
	if len(roleIDs) == 0 {
		return []*domain.Role{}, nil
	}

	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgreSQLRoleColumns + ` FROM roles WHERE id = ANY($1::uuid[])`

	rows, err := querier.QueryContext(ctx, query, pq.Array(uuidStrings(roleIDs)))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get roles by ids")
	}
	return scanRoles(rows, scanPostgreSQLID)
}

// List returns every role ordered by name.
func (r *PostgreSQLRoleRepository) List(ctx context.Context) ([]*domain.Role, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgreSQLRoleColumns + ` FROM roles ORDER BY name ASC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list roles")
	}
	return scanRoles(rows, scanPostgreSQLID)
}

// LockForUpdate locks the role row until the surrounding transaction ends.
func (r *PostgreSQLRoleRepository) LockForUpdate(ctx context.Context, roleID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id FROM roles WHERE id = $1 FOR UPDATE`

	var id uuid.UUID
	if err := querier.QueryRowContext(ctx, query, roleID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrRoleNotFound
		}
		return apperrors.Wrap(err, "failed to lock role")
	}
	return nil
}

func (r *PostgreSQLRoleRepository) explainNoRows(ctx context.Context, roleID uuid.UUID, newName string) error {
	querier := database.GetTx(ctx, r.db)

	var name string
	var isSystem bool
	err := querier.QueryRowContext(ctx, `SELECT name, is_system FROM roles WHERE id = $1`, roleID).Scan(&name, &isSystem)
	return classifyMissingRoleRow(err, name, isSystem, newName)
}
