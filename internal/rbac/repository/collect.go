package repository

import (
	"database/sql"

	"github.com/google/uuid"

	apperrors "github.com/allisson/qacms/internal/errors"
)

func collectIDs(rows *sql.Rows, scanID idScanner) ([]uuid.UUID, error) {
	defer func() {
		_ = rows.Close()
	}()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		dest, finish := scanID(&id)
		if err := rows.Scan(dest); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan id")
		}
		if err := finish(); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate ids")
	}
	return ids, nil
}

func collectStrings(rows *sql.Rows) ([]string, error) {
	defer func() {
		_ = rows.Close()
	}()

	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan name")
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate names")
	}
	return out, nil
}
