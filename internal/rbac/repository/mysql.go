package repository

import (
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/allisson/qacms/internal/errors"
)

// mysqlID converts a UUID to the BINARY(16) form stored by MySQL.
func mysqlID(id uuid.UUID) ([]byte, error) {
	b, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}
	return b, nil
}

// mysqlIDList returns "?, ?, ?" and the binary arguments for an IN clause.
func mysqlIDList(ids []uuid.UUID) (string, []any, error) {
	placeholders := make([]string, 0, len(ids))
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		b, err := mysqlID(id)
		if err != nil {
			return "", nil, err
		}
		placeholders = append(placeholders, "?")
		args = append(args, b)
	}
	return strings.Join(placeholders, ", "), args, nil
}
