package repository

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"

	apperrors "github.com/allisson/qacms/internal/errors"
	"github.com/allisson/qacms/internal/rbac/domain"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// idScanner returns the scan destination for an ID column and a function that
// copies the scanned value into the UUID.
type idScanner func(id *uuid.UUID) (any, func() error)

func scanPostgreSQLID(id *uuid.UUID) (any, func() error) {
	return id, func() error { return nil }
}

func scanMySQLID(id *uuid.UUID) (any, func() error) {
	var raw []byte
	return &raw, func() error {
		if err := id.UnmarshalBinary(raw); err != nil {
			return apperrors.Wrap(err, "failed to unmarshal UUID")
		}
		return nil
	}
}

func scanRoleRow(row rowScanner, scanID idScanner) (*domain.Role, error) {
	var role domain.Role
	var description sql.NullString

	dest, finish := scanID(&role.ID)
	if err := row.Scan(
		dest,
		&role.Name,
		&role.DisplayName,
		&description,
		&role.Color,
		&role.IsSystem,
		&role.CreatedAt,
		&role.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}
	role.Description = description.String
	return &role, nil
}

func scanRole(row *sql.Row, scanID idScanner) (*domain.Role, error) {
	role, err := scanRoleRow(row, scanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get role")
	}
	return role, nil
}

func scanRoles(rows *sql.Rows, scanID idScanner) ([]*domain.Role, error) {
	defer func() {
		_ = rows.Close()
	}()

	roles := make([]*domain.Role, 0)
	for rows.Next() {
		role, err := scanRoleRow(rows, scanID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan role")
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate roles")
	}
	return roles, nil
}

// classifyMissingRoleRow explains why a guarded UPDATE or DELETE touched no
// row. err is the result of reading the role back. An empty newName means the
// statement was a delete.
func classifyMissingRoleRow(err error, name string, isSystem bool, newName string) error {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrRoleNotFound
		}
		return apperrors.Wrap(err, "failed to read role")
	}
	if isSystem && newName != "" && newName != name {
		return domain.ErrRoleProtected
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
