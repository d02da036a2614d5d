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

// MySQLPermissionRepository handles permission persistence for MySQL.
type MySQLPermissionRepository struct {
	db *sql.DB
}

// NewMySQLPermissionRepository creates a new MySQLPermissionRepository.
func NewMySQLPermissionRepository(db *sql.DB) *MySQLPermissionRepository {
	return &MySQLPermissionRepository{db: db}
}

// Upsert inserts the permission or refreshes the row with the same name, then
// reads the stored ID back into permission.
func (r *MySQLPermissionRepository) Upsert(ctx context.Context, permission *domain.Permission) error {
	querier := database.GetTx(ctx, r.db)

	id, err := mysqlID(permission.ID)
	if err != nil {
		return err
	}

	query := `INSERT INTO permissions (id, name, display_name, module, created_at)
			  VALUES (?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE display_name = VALUES(display_name), module = VALUES(module)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		permission.Name,
		permission.DisplayName,
		permission.Module,
		permission.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert permission")
	}

	var raw []byte
	err = querier.QueryRowContext(ctx, `SELECT id, created_at FROM permissions WHERE name = ?`, permission.Name).
		Scan(&raw, &permission.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to read upserted permission")
	}
	if err := permission.ID.UnmarshalBinary(raw); err != nil {
		return apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	return nil
}

// Get retrieves a permission by ID.
func (r *MySQLPermissionRepository) Get(ctx context.Context, permissionID uuid.UUID) (*domain.Permission, error) {
	querier := database.GetTx(ctx, r.db)

	id, err := mysqlID(permissionID)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, name, display_name, module, created_at FROM permissions WHERE id = ?`

	p, err := scanMySQLPermission(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPermissionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get permission")
	}
	return p, nil
}

// GetByIDs returns the existing permissions among permissionIDs.
func (r *MySQLPermissionRepository) GetByIDs(
	ctx context.Context,
	permissionIDs []uuid.UUID,
) ([]*domain.Permission, error) {
	if len(permissionIDs) == 0 {
		return []*domain.Permission{}, nil
	}

	querier := database.GetTx(ctx, r.db)

	placeholders, args, err := mysqlIDList(permissionIDs)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, name, display_name, module, created_at
			  FROM permissions WHERE id IN (` + placeholders + `)` //nolint:gosec // placeholders only

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get permissions by ids")
	}
	return scanMySQLPermissions(rows)
}

// List returns every permission ordered by module and name.
func (r *MySQLPermissionRepository) List(ctx context.Context) ([]*domain.Permission, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, display_name, module, created_at
			  FROM permissions ORDER BY module ASC, name ASC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permissions")
	}
	return scanMySQLPermissions(rows)
}

func scanMySQLPermission(row rowScanner) (*domain.Permission, error) {
	var p domain.Permission
	var raw []byte
	if err := row.Scan(&raw, &p.Name, &p.DisplayName, &p.Module, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := p.ID.UnmarshalBinary(raw); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	return &p, nil
}

func scanMySQLPermissions(rows *sql.Rows) ([]*domain.Permission, error) {
	defer func() {
		_ = rows.Close()
	}()

	perms := make([]*domain.Permission, 0)
	for rows.Next() {
		p, err := scanMySQLPermission(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan permission")
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate permissions")
	}
	return perms, nil
}
