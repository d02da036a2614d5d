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

// MySQLUserRepository reads users from MySQL.
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQLUserRepository.
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

// Get retrieves a user by ID.
func (r *MySQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	id, err := mysqlID(userID)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, email, name, created_at FROM users WHERE id = ?`

	return r.scanUser(querier.QueryRowContext(ctx, query, id), "failed to get user")
}

// GetOldest returns the earliest created user. Ties break on ID.
func (r *MySQLUserRepository) GetOldest(ctx context.Context) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, email, name, created_at FROM users ORDER BY created_at ASC, id ASC LIMIT 1`

	return r.scanUser(querier.QueryRowContext(ctx, query), "failed to get oldest user")
}

// LockForUpdate locks the user row until the surrounding transaction ends.
func (r *MySQLUserRepository) LockForUpdate(ctx context.Context, userID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	id, err := mysqlID(userID)
	if err != nil {
		return err
	}

	query := `SELECT id FROM users WHERE id = ? FOR UPDATE`

	var raw []byte
	if err := querier.QueryRowContext(ctx, query, id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return apperrors.Wrap(err, "failed to lock user")
	}
	return nil
}

func (r *MySQLUserRepository) scanUser(row *sql.Row, failure string) (*domain.User, error) {
	var user domain.User
	var raw []byte
	if err := row.Scan(&raw, &user.Email, &user.Name, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, failure)
	}
	if err := user.ID.UnmarshalBinary(raw); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	return &user, nil
}
