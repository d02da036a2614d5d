// Package repository provides PostgreSQL and MySQL persistence for the RBAC
// core. Every method runs on the transaction carried by ctx when there is one.
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

// PostgreSQLUserRepository reads users from PostgreSQL.
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// NewPostgreSQLUserRepository creates a new PostgreSQLUserRepository.
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{db: db}
}

// Get retrieves a user by ID.
func (r *PostgreSQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, email, name, created_at FROM users WHERE id = $1`

	var user domain.User
	err := querier.QueryRowContext(ctx, query, userID).Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}
	return &user, nil
}

// GetOldest returns the earliest created user. Ties break on ID.
func (r *PostgreSQLUserRepository) GetOldest(ctx context.Context) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, email, name, created_at FROM users ORDER BY created_at ASC, id ASC LIMIT 1`

	var user domain.User
	err := querier.QueryRowContext(ctx, query).Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get oldest user")
	}
	return &user, nil
}

// LockForUpdate locks the user row until the surrounding transaction ends.
func (r *PostgreSQLUserRepository) LockForUpdate(ctx context.Context, userID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id FROM users WHERE id = $1 FOR UPDATE`

	var id uuid.UUID
	if err := querier.QueryRowContext(ctx, query, userID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return apperrors.Wrap(err, "failed to lock user")
	}
	return nil
}
