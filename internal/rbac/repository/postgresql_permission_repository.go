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

// PostgreSQLPermissionRepository handles permission persistence for PostgreSQL.
type PostgreSQLPermissionRepository struct {
	db *sql.DB
}

// NewPostgreSQLPermissionRepository creates a new PostgreSQLPermissionRepository.
func NewPostgreSQLPermissionRepository(db *sql.DB) *PostgreSQLPermissionRepository {
	return &PostgreSQLPermissionRepository{db: db}
}

// Upsert inserts the permission or refreshes the row with the same name. The
// stored ID and creation time are written back into permission.
func (r *PostgreSQLPermissionRepository) Upsert(ctx context.Context, permission *domain.Permission) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO permissions (id, name, display_name, module, created_at)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (name) DO UPDATE
			  SET display_name = EXCLUDED.display_name, module = EXCLUDED.module
			  RETURNING id, created_at`

	err := querier.QueryRowContext(
		ctx,
		query,
		permission.ID,
		permission.Name,
		permission.DisplayName,
		permission.Module,
		permission.CreatedAt,
	).Scan(&permission.ID, &permission.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert permission")
	}
	return nil
}

// Get retrieves a permission by ID.
func (r *PostgreSQLPermissionRepository) Get(ctx context.Context, permissionID uuid.UUID) (*domain.Permission, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, display_name, module, created_at FROM permissions WHERE id = $1`

	var p domain.Permission
	err := querier.QueryRowContext(ctx, query, permissionID).Scan(
		&p.ID, &p.Name, &p.DisplayName, &p.Module, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPermissionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get permission")
	}
	return &p, nil
}

// GetByIDs returns the existing permissions among permissionIDs.
func (r *PostgreSQLPermissionRepository) GetByIDs(
	ctx context.Context,
	permissionIDs []uuid.UUID,
) ([]*domain.Permission, error) {
	if len(permissionIDs) == 0 {
		return []*domain.Permission{}, nil
	}

	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, display_name, module, created_at
			  FROM permissions WHERE id = ANY($1::uuid[])`

	rows, err := querier.QueryContext(ctx, query, pq.Array(uuidStrings(permissionIDs)))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get permissions by ids")
	}
	return scanPostgreSQLPermissions(rows)
}

// List returns every permission ordered by module and name.
func (r *PostgreSQLPermissionRepository) List(ctx context.Context) ([]*domain.Permission, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, display_name, module, created_at
			  FROM permissions ORDER BY module ASC, name ASC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permissions")
	}
	return scanPostgreSQLPermissions(rows)
}

func scanPostgreSQLPermissions(rows *sql.Rows) ([]*domain.Permission, error) {
	defer func() {
		_ = rows.Close()
	}()

	perms := make([]*domain.Permission, 0)
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.DisplayName, &p.Module, &p.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan permission")
		}
		perms = append(perms, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate permissions")
	}
	return perms, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
