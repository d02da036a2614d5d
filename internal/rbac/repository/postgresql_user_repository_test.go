package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/qacms/internal/rbac/domain"
)

var userColumns = []string{"id", "email", "name", "created_at"}

func TestPostgreSQLUserRepository_GetOldest(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLUserRepository(db)
		userID := uuid.Must(uuid.NewV7())

		mock.ExpectQuery("SELECT (.+) FROM users ORDER BY created_at ASC, id ASC LIMIT 1").
			WillReturnRows(sqlmock.NewRows(userColumns).
				AddRow(userID.String(), "registrar@example.edu", "Registrar", fixedTime()))

		user, err := repo.GetOldest(context.Background())
		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, "registrar@example.edu", user.Email)
	})

	t.Run("NoUsers", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLUserRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM users ORDER BY").WillReturnRows(sqlmock.NewRows(userColumns))

		_, err := repo.GetOldest(context.Background())
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestPostgreSQLUserRepository_Get(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgreSQLUserRepository(db)
	userID := uuid.Must(uuid.NewV7())

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.Get(context.Background(), userID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestPostgreSQLUserRepository_LockForUpdate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgreSQLUserRepository(db)
	userID := uuid.Must(uuid.NewV7())

	mock.ExpectQuery("SELECT id FROM users WHERE id = (.+) FOR UPDATE").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := repo.LockForUpdate(context.Background(), userID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
