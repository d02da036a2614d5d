// Package mocks provides mock implementations of the RBAC use cases for
// testing HTTP handlers and middleware.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/qacms/internal/rbac/domain"
)

// MockAuthorizationUseCase is a mock implementation of AuthorizationUseCase.
type MockAuthorizationUseCase struct {
	mock.Mock
}

// NewMockAuthorizationUseCase creates a mock that asserts its expectations on cleanup.
func NewMockAuthorizationUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAuthorizationUseCase {
	m := &MockAuthorizationUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAuthorizationUseCase) HasRole(ctx context.Context, userID uuid.UUID, roleName string) bool {
	args := m.Called(ctx, userID, roleName)
	return args.Bool(0)
}

func (m *MockAuthorizationUseCase) HasAnyRole(ctx context.Context, userID uuid.UUID, roleNames []string) bool {
	args := m.Called(ctx, userID, roleNames)
	return args.Bool(0)
}

func (m *MockAuthorizationUseCase) HasPermission(ctx context.Context, userID uuid.UUID, permissionName string) bool {
	args := m.Called(ctx, userID, permissionName)
	return args.Bool(0)
}

func (m *MockAuthorizationUseCase) HasAnyPermission(
	ctx context.Context,
	userID uuid.UUID,
	permissionNames []string,
) bool {
	args := m.Called(ctx, userID, permissionNames)
	return args.Bool(0)
}

func (m *MockAuthorizationUseCase) HasAllPermissions(
	ctx context.Context,
	userID uuid.UUID,
	permissionNames []string,
) bool {
	args := m.Called(ctx, userID, permissionNames)
	return args.Bool(0)
}

func (m *MockAuthorizationUseCase) GetUserPermissions(ctx context.Context, userID uuid.UUID) (domain.NameSet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.NameSet), args.Error(1)
}

func (m *MockAuthorizationUseCase) GetUserRoles(ctx context.Context, userID uuid.UUID) (domain.NameSet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.NameSet), args.Error(1)
}

func (m *MockAuthorizationUseCase) GetUserAccess(ctx context.Context, userID uuid.UUID) (*domain.UserAccess, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserAccess), args.Error(1)
}

func (m *MockAuthorizationUseCase) IsSuperAdmin(ctx context.Context, userID uuid.UUID) bool {
	args := m.Called(ctx, userID)
	return args.Bool(0)
}

// MockAssignmentUseCase is a mock implementation of AssignmentUseCase.
type MockAssignmentUseCase struct {
	mock.Mock
}

// NewMockAssignmentUseCase creates a mock that asserts its expectations on cleanup.
func NewMockAssignmentUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockAssignmentUseCase {
	m := &MockAssignmentUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAssignmentUseCase) AssignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	args := m.Called(ctx, userID, roleID)
	return args.Error(0)
}

func (m *MockAssignmentUseCase) RemoveRole(ctx context.Context, userID, roleID uuid.UUID) error {
	args := m.Called(ctx, userID, roleID)
	return args.Error(0)
}

func (m *MockAssignmentUseCase) SyncRoles(
	ctx context.Context,
	userID uuid.UUID,
	roleIDs []uuid.UUID,
) (*domain.SyncResult, error) {
	args := m.Called(ctx, userID, roleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncResult), args.Error(1)
}

func (m *MockAssignmentUseCase) AssignPermissionToRole(ctx context.Context, roleID, permissionID uuid.UUID) error {
	args := m.Called(ctx, roleID, permissionID)
	return args.Error(0)
}

func (m *MockAssignmentUseCase) RemovePermissionFromRole(ctx context.Context, roleID, permissionID uuid.UUID) error {
	args := m.Called(ctx, roleID, permissionID)
	return args.Error(0)
}

func (m *MockAssignmentUseCase) SyncPermissions(
	ctx context.Context,
	roleID uuid.UUID,
	permissionIDs []uuid.UUID,
) (*domain.SyncResult, error) {
	args := m.Called(ctx, roleID, permissionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncResult), args.Error(1)
}

func (m *MockAssignmentUseCase) GetUserRoleIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockAssignmentUseCase) GetRolePermissions(ctx context.Context, roleID uuid.UUID) ([]*domain.Permission, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Permission), args.Error(1)
}

// MockRoleUseCase is a mock implementation of RoleUseCase.
type MockRoleUseCase struct {
	mock.Mock
}

// NewMockRoleUseCase creates a mock that asserts its expectations on cleanup.
func NewMockRoleUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRoleUseCase {
	m := &MockRoleUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRoleUseCase) Create(ctx context.Context, input *domain.CreateRoleInput) (*domain.Role, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *MockRoleUseCase) Update(
	ctx context.Context,
	roleID uuid.UUID,
	input *domain.UpdateRoleInput,
) (*domain.Role, error) {
	args := m.Called(ctx, roleID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *MockRoleUseCase) Delete(ctx context.Context, roleID uuid.UUID) error {
	args := m.Called(ctx, roleID)
	return args.Error(0)
}

func (m *MockRoleUseCase) Get(ctx context.Context, roleID uuid.UUID) (*domain.Role, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *MockRoleUseCase) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

func (m *MockRoleUseCase) List(ctx context.Context) ([]*domain.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Role), args.Error(1)
}

func (m *MockRoleUseCase) ListPermissions(ctx context.Context) ([]*domain.Permission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Permission), args.Error(1)
}
