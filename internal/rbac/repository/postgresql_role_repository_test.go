package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/qacms/internal/database"
	apperrors "github.com/allisson/qacms/internal/errors"
	"github.com/allisson/qacms/internal/rbac/domain"
)

func newRole(name string, isSystem bool) *domain.Role {
	return &domain.Role{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        name,
		DisplayName: name,
		Color:       "#6B7280",
		IsSystem:    isSystem,
		CreatedAt:   fixedTime(),
		UpdatedAt:   fixedTime(),
	}
}

func TestPostgreSQLRoleRepository_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLRoleRepository(db)
		role := newRole("editor", false)

		mock.ExpectExec("INSERT INTO roles").
			WithArgs(role.ID, "editor", "editor", nil, "#6B7280", false, role.CreatedAt, role.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(context.Background(), role))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateName", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLRoleRepository(db)

		mock.ExpectExec("INSERT INTO roles").WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(context.Background(), newRole("editor", false))
		assert.ErrorIs(t, err, domain.ErrRoleAlreadyExists)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestPostgreSQLRoleRepository_Delete(t *testing.T) {
	roleID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLRoleRepository(db)

		mock.ExpectExec("DELETE FROM roles WHERE id = (.+) AND is_system = FALSE").
			WithArgs(roleID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(context.Background(), roleID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("SystemRoleIsProtected", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLRoleRepository(db)

		mock.ExpectExec("DELETE FROM roles").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT name, is_system FROM roles").
			WithArgs(roleID).
			WillReturnRows(sqlmock.NewRows([]string{"name", "is_system"}).AddRow("super-admin", true))

		err := repo.Delete(context.Background(), roleID)
		assert.ErrorIs(t, err, domain.ErrRoleProtected)
		assert.ErrorIs(t, err, apperrors.ErrProtected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLRoleRepository(db)

		mock.ExpectExec("DELETE FROM roles").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT name, is_system FROM roles").
			WillReturnRows(sqlmock.NewRows([]string{"name", "is_system"}))

		err := repo.Delete(context.Background(), roleID)
		assert.ErrorIs(t, err, domain.ErrRoleNotFound)
	})

	t.Run("ExecError", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLRoleRepository(db)

		mock.ExpectExec("DELETE FROM roles").WillReturnError(errors.New("connection reset"))

		err := repo.Delete(context.Background(), roleID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete role")
	})
}

func TestPostgreSQLRoleRepository_Update(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLRoleRepository(db)
		role := newRole("reviewer", false)

		mock.ExpectExec("UPDATE roles").WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(context.Background(), role))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RenamingSystemRoleIsProtected", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLRoleRepository(db)
		role := newRole("root", true)

		mock.ExpectExec("UPDATE roles").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT name, is_system FROM roles").
			WithArgs(role.ID).
			WillReturnRows(sqlmock.NewRows([]string{"name", "is_system"}).AddRow("super-admin", true))

		err := repo.Update(context.Background(), role)
		assert.ErrorIs(t, err, domain.ErrRoleProtected)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLRoleRepository(db)

		mock.ExpectExec("UPDATE roles").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT name, is_system FROM roles").
			WillReturnRows(sqlmock.NewRows([]string{"name", "is_system"}))

		err := repo.Update(context.Background(), newRole("reviewer", false))
		assert.ErrorIs(t, err, domain.ErrRoleNotFound)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLRoleRepository(db)

		mock.ExpectExec("UPDATE roles").WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Update(context.Background(), newRole("viewer", false))
		assert.ErrorIs(t, err, domain.ErrRoleAlreadyExists)
	})
}

func TestPostgreSQLRoleRepository_Upsert(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgreSQLRoleRepository(db)

	role := newRole("super-admin", true)
	storedID := uuid.Must(uuid.NewV7())
	storedAt := fixedTime().AddDate(-1, 0, 0)

	mock.ExpectQuery("INSERT INTO roles (.+) ON CONFLICT \\(name\\) DO UPDATE (.+) RETURNING id, created_at, updated_at").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(storedID.String(), storedAt, storedAt))

	require.NoError(t, repo.Upsert(context.Background(), role))
	assert.Equal(t, storedID, role.ID)
	assert.Equal(t, storedAt, role.CreatedAt)
	assert.Equal(t, storedAt, role.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLRoleRepository_Get(t *testing.T) {
	roleID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLRoleRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM roles WHERE id").
			WithArgs(roleID).
			WillReturnRows(sqlmock.NewRows(roleColumns).
				AddRow(roleID.String(), "editor", "Editor", "Edits content", "#2563EB", false, fixedTime(), fixedTime()))

		role, err := repo.Get(context.Background(), roleID)
		require.NoError(t, err)
		assert.Equal(t, roleID, role.ID)
		assert.Equal(t, "editor", role.Name)
		assert.Equal(t, "Edits content", role.Description)
		assert.False(t, role.IsSystem)
	})

	t.Run("NullDescription", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLRoleRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM roles WHERE id").
			WillReturnRows(sqlmock.NewRows(roleColumns).
				AddRow(roleID.String(), "viewer", "Viewer", nil, "#6B7280", false, fixedTime(), fixedTime()))

		role, err := repo.Get(context.Background(), roleID)
		require.NoError(t, err)
		assert.Empty(t, role.Description)
	})

	t.Run("NotFound", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLRoleRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM roles WHERE id").WillReturnRows(sqlmock.NewRows(roleColumns))

		_, err := repo.Get(context.Background(), roleID)
		assert.ErrorIs(t, err, domain.ErrRoleNotFound)
	})
}

func TestPostgreSQLRoleRepository_GetByIDs(t *testing.T) {
	t.Run("EmptyInputSkipsQuery", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLRoleRepository(db)

		roles, err := repo.GetByIDs(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, roles)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ReturnsExistingRows", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgreSQLRoleRepository(db)

		a, b := uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())
		mock.ExpectQuery("SELECT (.+) FROM roles WHERE id = ANY").
			WithArgs(pq.Array([]string{a.String(), b.String()})).
			WillReturnRows(sqlmock.NewRows(roleColumns).
				AddRow(a.String(), "editor", "Editor", nil, "#6B7280", false, fixedTime(), fixedTime()))

		roles, err := repo.GetByIDs(context.Background(), []uuid.UUID{a, b})
		require.NoError(t, err)
		require.Len(t, roles, 1)
		assert.Equal(t, a, roles[0].ID)
	})
}

func TestPostgreSQLRoleRepository_LockForUpdate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgreSQLRoleRepository(db)
	txManager := database.NewTxManager(db)
	roleID := uuid.Must(uuid.NewV7())

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM roles WHERE id = (.+) FOR UPDATE").
		WithArgs(roleID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(roleID.String()))
	mock.ExpectCommit()

	err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
		return repo.LockForUpdate(ctx, roleID)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
