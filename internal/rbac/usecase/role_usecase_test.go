package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/qacms/internal/database/mocks"
	apperrors "github.com/allisson/qacms/internal/errors"
	"github.com/allisson/qacms/internal/rbac/domain"
)

func TestRoleUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture()

		role, err := f.roles.Create(ctx, &domain.CreateRoleInput{
			Name:        "reviewer",
			DisplayName: " Reviewer ",
			Description: "Reviews submissions",
		})
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, role.ID)
		assert.Equal(t, "Reviewer", role.DisplayName)
		assert.Equal(t, DefaultRoleColor, role.Color)
		assert.False(t, role.IsSystem)

		stored, err := f.roles.GetByName(ctx, "reviewer")
		require.NoError(t, err)
		assert.Equal(t, role.ID, stored.ID)
	})

	t.Run("Error_Duplicate", func(t *testing.T) {
		f := newFixture()
		f.store.AddRole("reviewer", false)

		_, err := f.roles.Create(ctx, &domain.CreateRoleInput{Name: "reviewer", DisplayName: "Reviewer"})
		assert.ErrorIs(t, err, domain.ErrRoleAlreadyExists)
		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	})

	t.Run("Error_Validation", func(t *testing.T) {
		f := newFixture()

		_, err := f.roles.Create(ctx, &domain.CreateRoleInput{Name: "Bad Name", DisplayName: "", Color: "red"})
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		assert.Equal(t, 0, f.store.Writes())
	})
}

func TestRoleUseCase_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RenameCustomRole", func(t *testing.T) {
		f := newFixture()
		role := f.store.AddRole("reviewer", false)

		updated, err := f.roles.Update(ctx, role.ID, &domain.UpdateRoleInput{
			Name:        "senior-reviewer",
			DisplayName: "Senior Reviewer",
			Color:       "#123456",
		})
		require.NoError(t, err)
		assert.Equal(t, "senior-reviewer", updated.Name)
		assert.Equal(t, "#123456", updated.Color)
	})

	t.Run("Success_SystemRoleDisplayFields", func(t *testing.T) {
		f := newFixture()
		admin := f.store.AddRole("admin", true)

		updated, err := f.roles.Update(ctx, admin.ID, &domain.UpdateRoleInput{DisplayName: "Administrators"})
		require.NoError(t, err)
		assert.Equal(t, "admin", updated.Name)
		assert.Equal(t, "Administrators", updated.DisplayName)
	})

	t.Run("Error_RenameSystemRoleIsProtected", func(t *testing.T) {
		f := newFixture()
		superAdmin := f.store.AddRole(domain.SuperAdminRole, true)
		before := f.store.Snapshot()

		_, err := f.roles.Update(ctx, superAdmin.ID, &domain.UpdateRoleInput{
			Name:        "root",
			DisplayName: "Root",
		})
		assert.ErrorIs(t, err, domain.ErrRoleProtected)
		assert.True(t, apperrors.Is(err, apperrors.ErrProtected))
		assert.Equal(t, before, f.store.Snapshot())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		f := newFixture()
		_, err := f.roles.Update(ctx, uuid.New(), &domain.UpdateRoleInput{DisplayName: "X"})
		assert.ErrorIs(t, err, domain.ErrRoleNotFound)
	})
}

func TestRoleUseCase_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_CascadesGrants", func(t *testing.T) {
		f := newFixture()
		role := f.store.AddRole("reviewer", false)
		perm := f.store.AddPermission("news", "news.view")
		user := f.store.AddUser("ana@example.edu", "Ana", time.Now())
		f.store.Grant(role.ID, perm.ID)
		f.store.Give(user.ID, role.ID)

		require.NoError(t, f.roles.Delete(ctx, role.ID))

		_, err := f.roles.Get(ctx, role.ID)
		assert.ErrorIs(t, err, domain.ErrRoleNotFound)
		assert.False(t, f.authorization.HasPermission(ctx, user.ID, "news.view"))
	})

	t.Run("Error_SystemRoleLeavesStateUnchanged", func(t *testing.T) {
		f := newFixture()
		superAdmin := f.store.AddRole(domain.SuperAdminRole, true)
		perm := f.store.AddPermission("news", "news.view")
		user := f.store.AddUser("ana@example.edu", "Ana", time.Now())
		f.store.Grant(superAdmin.ID, perm.ID)
		f.store.Give(user.ID, superAdmin.ID)
		before := f.store.Snapshot()
		writes := f.store.Writes()

		err := f.roles.Delete(ctx, superAdmin.ID)

		assert.ErrorIs(t, err, domain.ErrRoleProtected)
		assert.Equal(t, before, f.store.Snapshot())
		assert.Equal(t, writes, f.store.Writes())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		f := newFixture()
		assert.ErrorIs(t, f.roles.Delete(ctx, uuid.New()), domain.ErrRoleNotFound)
	})
}

func TestRoleUseCase_Delete_WithMocks(t *testing.T) {
	ctx := context.Background()
	roleID := uuid.New()

	txManager := &mocks.MockTxManager{}
	roleRepo := &MockRoleRepository{}
	txManager.On("WithTx", ctx, mock.Anything).Return(nil)
	roleRepo.On("Get", ctx, roleID).Return(&domain.Role{ID: roleID, Name: "admin", IsSystem: true}, nil)

	useCase := NewRoleUseCase(txManager, roleRepo, nil)
	err := useCase.Delete(ctx, roleID)

	assert.ErrorIs(t, err, domain.ErrRoleProtected)
	roleRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	txManager.AssertExpectations(t)
}

func TestRoleUseCase_Lists(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.store.AddRole("viewer", false)
	f.store.AddRole("admin", true)
	f.store.AddPermission("news", "news.view")
	f.store.AddPermission("agenda", "agenda.view")

	roles, err := f.roles.List(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "admin", roles[0].Name)

	perms, err := f.roles.ListPermissions(ctx)
	require.NoError(t, err)
	require.Len(t, perms, 2)
	assert.Equal(t, "agenda", perms[0].Module)
}
