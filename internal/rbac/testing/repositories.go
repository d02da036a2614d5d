package testing

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/allisson/qacms/internal/rbac/domain"
)

// UserRepository is the in-memory user view.
type UserRepository struct{ s *Store }

func (r *UserRepository) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	err := r.s.begin(ctx, "users.Get")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	u, ok := r.s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetOldest(ctx context.Context) (*domain.User, error) {
	err := r.s.begin(ctx, "users.GetOldest")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var oldest *domain.User
	for _, u := range r.s.users {
		if oldest == nil || u.CreatedAt.Before(oldest.CreatedAt) {
			oldest = &u
		}
	}
	if oldest == nil {
		return nil, domain.ErrUserNotFound
	}
	return oldest, nil
}

func (r *UserRepository) LockForUpdate(ctx context.Context, userID uuid.UUID) error {
	err := r.s.begin(ctx, "users.LockForUpdate")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	if _, ok := r.s.users[userID]; !ok {
		return domain.ErrUserNotFound
	}
	return nil
}

// PermissionRepository is the in-memory permission view.
type PermissionRepository struct{ s *Store }

func (r *PermissionRepository) Upsert(ctx context.Context, permission *domain.Permission) error {
	err := r.s.begin(ctx, "permissions.Upsert")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	for id, p := range r.s.permissions {
		if p.Name == permission.Name {
			if p.DisplayName != permission.DisplayName || p.Module != permission.Module {
				p.DisplayName = permission.DisplayName
				p.Module = permission.Module
				r.s.permissions[id] = p
				r.s.writes++
			}
			permission.ID = p.ID
			permission.CreatedAt = p.CreatedAt
			return nil
		}
	}
	r.s.permissions[permission.ID] = *permission
	r.s.writes++
	return nil
}

func (r *PermissionRepository) Get(ctx context.Context, permissionID uuid.UUID) (*domain.Permission, error) {
	err := r.s.begin(ctx, "permissions.Get")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	p, ok := r.s.permissions[permissionID]
	if !ok {
		return nil, domain.ErrPermissionNotFound
	}
	return &p, nil
}

func (r *PermissionRepository) GetByIDs(ctx context.Context, permissionIDs []uuid.UUID) ([]*domain.Permission, error) {
	err := r.s.begin(ctx, "permissions.GetByIDs")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var out []*domain.Permission
	for _, id := range domain.UniqueIDs(permissionIDs) {
		if p, ok := r.s.permissions[id]; ok {
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r *PermissionRepository) List(ctx context.Context) ([]*domain.Permission, error) {
	err := r.s.begin(ctx, "permissions.List")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Permission, 0, len(r.s.permissions))
	for _, p := range r.s.permissions {
		out = append(out, &p)
	}
	return sortPermissions(out), nil
}

// RoleRepository is the in-memory role view.
type RoleRepository struct{ s *Store }

func (r *RoleRepository) nameTakenLocked(name string, except uuid.UUID) bool {
	for id, existing := range r.s.roles {
		if existing.Name == name && id != except {
			return true
		}
	}
	return false
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) error {
	err := r.s.begin(ctx, "roles.Create")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	if r.nameTakenLocked(role.Name, uuid.Nil) {
		return domain.ErrRoleAlreadyExists
	}
	r.s.roles[role.ID] = *role
	r.s.writes++
	return nil
}

func (r *RoleRepository) Update(ctx context.Context, role *domain.Role) error {
	err := r.s.begin(ctx, "roles.Update")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	existing, ok := r.s.roles[role.ID]
	if !ok {
		return domain.ErrRoleNotFound
	}
	if err := existing.CheckRename(role.Name); err != nil {
		return err
	}
	if r.nameTakenLocked(role.Name, role.ID) {
		return domain.ErrRoleAlreadyExists
	}
	existing.Name = role.Name
	existing.DisplayName = role.DisplayName
	existing.Description = role.Description
	existing.Color = role.Color
	existing.UpdatedAt = role.UpdatedAt
	r.s.roles[role.ID] = existing
	r.s.writes++
	return nil
}

func (r *RoleRepository) Upsert(ctx context.Context, role *domain.Role) error {
	err := r.s.begin(ctx, "roles.Upsert")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	for id, existing := range r.s.roles {
		if existing.Name != role.Name {
			continue
		}
		if existing.DisplayName != role.DisplayName || existing.Description != role.Description ||
			existing.Color != role.Color || existing.IsSystem != role.IsSystem {
			existing.DisplayName = role.DisplayName
			existing.Description = role.Description
			existing.Color = role.Color
			existing.IsSystem = role.IsSystem
			existing.UpdatedAt = role.UpdatedAt
			r.s.roles[id] = existing
			r.s.writes++
		}
		role.ID = existing.ID
		role.CreatedAt = existing.CreatedAt
		return nil
	}
	r.s.roles[role.ID] = *role
	r.s.writes++
	return nil
}

func (r *RoleRepository) Delete(ctx context.Context, roleID uuid.UUID) error {
	err := r.s.begin(ctx, "roles.Delete")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	role, ok := r.s.roles[roleID]
	if !ok {
		return domain.ErrRoleNotFound
	}
	if err := role.CheckDelete(); err != nil {
		return err
	}
	delete(r.s.roles, roleID)
	for ur := range r.s.userRoles {
		if ur.RoleID == roleID {
			delete(r.s.userRoles, ur)
		}
	}
	for rp := range r.s.rolePerms {
		if rp.RoleID == roleID {
			delete(r.s.rolePerms, rp)
		}
	}
	r.s.writes++
	return nil
}

func (r *RoleRepository) Get(ctx context.Context, roleID uuid.UUID) (*domain.Role, error) {
	err := r.s.begin(ctx, "roles.Get")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	role, ok := r.s.roles[roleID]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return &role, nil
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	err := r.s.begin(ctx, "roles.GetByName")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for _, role := range r.s.roles {
		if role.Name == name {
			return &role, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *RoleRepository) GetByIDs(ctx context.Context, roleIDs []uuid.UUID) ([]*domain.Role, error) {
	err := r.s.begin(ctx, "roles.GetByIDs")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var out []*domain.Role
	for _, id := range domain.UniqueIDs(roleIDs) {
		if role, ok := r.s.roles[id]; ok {
			out = append(out, &role)
		}
	}
	return out, nil
}

func (r *RoleRepository) List(ctx context.Context) ([]*domain.Role, error) {
	err := r.s.begin(ctx, "roles.List")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		out = append(out, &role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *RoleRepository) LockForUpdate(ctx context.Context, roleID uuid.UUID) error {
	err := r.s.begin(ctx, "roles.LockForUpdate")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	if _, ok := r.s.roles[roleID]; !ok {
		return domain.ErrRoleNotFound
	}
	return nil
}

// UserRoleRepository is the in-memory user to role view.
type UserRoleRepository struct{ s *Store }

func (r *UserRoleRepository) Assign(ctx context.Context, userID, roleID uuid.UUID) error {
	err := r.s.begin(ctx, "user_roles.Assign")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	if _, ok := r.s.users[userID]; !ok {
		return domain.ErrUserNotFound
	}
	if _, ok := r.s.roles[roleID]; !ok {
		return domain.ErrRoleNotFound
	}
	key := domain.UserRole{UserID: userID, RoleID: roleID}
	if _, ok := r.s.userRoles[key]; !ok {
		r.s.userRoles[key] = struct{}{}
		r.s.writes++
	}
	return nil
}

func (r *UserRoleRepository) Remove(ctx context.Context, userID, roleID uuid.UUID) error {
	err := r.s.begin(ctx, "user_roles.Remove")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	key := domain.UserRole{UserID: userID, RoleID: roleID}
	if _, ok := r.s.userRoles[key]; ok {
		delete(r.s.userRoles, key)
		r.s.writes++
	}
	return nil
}

func (r *UserRoleRepository) ListRoleIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	err := r.s.begin(ctx, "user_roles.ListRoleIDs")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	for ur := range r.s.userRoles {
		if ur.UserID == userID {
			ids = append(ids, ur.RoleID)
		}
	}
	return sortIDs(ids), nil
}

func (r *UserRoleRepository) ListRoleNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	err := r.s.begin(ctx, "user_roles.ListRoleNames")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.s.userRoleNamesLocked(userID), nil
}

func (r *UserRoleRepository) ListPermissionNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	err := r.s.begin(ctx, "user_roles.ListPermissionNames")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var names []string
	for ur := range r.s.userRoles {
		if ur.UserID == userID {
			names = append(names, r.s.rolePermissionNamesLocked(ur.RoleID)...)
		}
	}
	return domain.NewNameSet(names...), nil
}

func (r *UserRoleRepository) HasRole(ctx context.Context, userID uuid.UUID, roleName string) (bool, error) {
	err := r.s.begin(ctx, "user_roles.HasRole")
	defer r.s.mu.Unlock()
	if err != nil {
		return false, err
	}
	return r.s.userRoleNamesLocked(userID).Contains(roleName), nil
}

func (r *UserRoleRepository) HasPermission(ctx context.Context, userID uuid.UUID, permissionName string) (bool, error) {
	err := r.s.begin(ctx, "user_roles.HasPermission")
	defer r.s.mu.Unlock()
	if err != nil {
		return false, err
	}
	for ur := range r.s.userRoles {
		if ur.UserID == userID && r.s.rolePermissionNamesLocked(ur.RoleID).Contains(permissionName) {
			return true, nil
		}
	}
	return false, nil
}

// RolePermissionRepository is the in-memory role to permission view.
type RolePermissionRepository struct{ s *Store }

func (r *RolePermissionRepository) Assign(ctx context.Context, roleID, permissionID uuid.UUID) error {
	err := r.s.begin(ctx, "role_permissions.Assign")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	if _, ok := r.s.roles[roleID]; !ok {
		return domain.ErrRoleNotFound
	}
	if _, ok := r.s.permissions[permissionID]; !ok {
		return domain.ErrPermissionNotFound
	}
	key := domain.RolePermission{RoleID: roleID, PermissionID: permissionID}
	if _, ok := r.s.rolePerms[key]; !ok {
		r.s.rolePerms[key] = struct{}{}
		r.s.writes++
	}
	return nil
}

func (r *RolePermissionRepository) Remove(ctx context.Context, roleID, permissionID uuid.UUID) error {
	err := r.s.begin(ctx, "role_permissions.Remove")
	defer r.s.mu.Unlock()
	if err != nil {
		return err
	}
	key := domain.RolePermission{RoleID: roleID, PermissionID: permissionID}
	if _, ok := r.s.rolePerms[key]; ok {
		delete(r.s.rolePerms, key)
		r.s.writes++
	}
	return nil
}

func (r *RolePermissionRepository) ListPermissionIDs(ctx context.Context, roleID uuid.UUID) ([]uuid.UUID, error) {
	err := r.s.begin(ctx, "role_permissions.ListPermissionIDs")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	for rp := range r.s.rolePerms {
		if rp.RoleID == roleID {
			ids = append(ids, rp.PermissionID)
		}
	}
	return sortIDs(ids), nil
}

func (r *RolePermissionRepository) ListPermissions(ctx context.Context, roleID uuid.UUID) ([]*domain.Permission, error) {
	err := r.s.begin(ctx, "role_permissions.ListPermissions")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	var out []*domain.Permission
	for rp := range r.s.rolePerms {
		if rp.RoleID == roleID {
			p := r.s.permissions[rp.PermissionID]
			out = append(out, &p)
		}
	}
	return sortPermissions(out), nil
}
