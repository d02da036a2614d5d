package dto

import (
	"time"

	"github.com/allisson/qacms/internal/rbac/domain"
)

// RoleResponse represents a role in API responses.
type RoleResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// MapRoleToResponse converts a domain role to an API response.
func MapRoleToResponse(role *domain.Role) RoleResponse {
	return RoleResponse{
		ID:          role.ID.String(),
		Name:        role.Name,
		DisplayName: role.DisplayName,
		Description: role.Description,
		Color:       role.Color,
		IsSystem:    role.IsSystem,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}

// ListRolesResponse represents a list of roles in API responses.
type ListRolesResponse struct {
	Data []RoleResponse `json:"data"`
}

// MapRolesToListResponse converts domain roles to a list API response.
func MapRolesToListResponse(roles []*domain.Role) ListRolesResponse {
	data := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		data = append(data, MapRoleToResponse(role))
	}
	return ListRolesResponse{Data: data}
}

// PermissionResponse represents a permission in API responses.
type PermissionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Module      string `json:"module"`
}

// MapPermissionToResponse converts a domain permission to an API response.
func MapPermissionToResponse(p *domain.Permission) PermissionResponse {
	return PermissionResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		DisplayName: p.DisplayName,
		Module:      p.Module,
	}
}

// ListPermissionsResponse represents a flat list of permissions.
type ListPermissionsResponse struct {
	Data []PermissionResponse `json:"data"`
}

// MapPermissionsToListResponse converts domain permissions to a list API response.
func MapPermissionsToListResponse(perms []*domain.Permission) ListPermissionsResponse {
	data := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		data = append(data, MapPermissionToResponse(p))
	}
	return ListPermissionsResponse{Data: data}
}

// PermissionGroupResponse is a module with its permissions.
type PermissionGroupResponse struct {
	Module      string               `json:"module"`
	Permissions []PermissionResponse `json:"permissions"`
}

// GroupedPermissionsResponse lists permissions grouped by module.
type GroupedPermissionsResponse struct {
	Data []PermissionGroupResponse `json:"data"`
}

// MapPermissionsToGroupedResponse groups perms by module, keeping the order
// they were listed in.
func MapPermissionsToGroupedResponse(perms []*domain.Permission) GroupedPermissionsResponse {
	groups := domain.GroupByModule(perms)
	data := make([]PermissionGroupResponse, 0, len(groups))
	for _, g := range groups {
		data = append(data, PermissionGroupResponse{
			Module:      g.Module,
			Permissions: MapPermissionsToListResponse(g.Permissions).Data,
		})
	}
	return GroupedPermissionsResponse{Data: data}
}

// RoleIDsResponse lists the role ids held by a user.
type RoleIDsResponse struct {
	UserID  string   `json:"user_id"`
	RoleIDs []string `json:"role_ids"`
}

// SyncResponse reports how a replace operation changed a set.
type SyncResponse struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// MapSyncResultToResponse converts a domain sync result to an API response.
func MapSyncResultToResponse(result *domain.SyncResult) SyncResponse {
	return SyncResponse{
		Added:   result.Added,
		Removed: result.Removed,
	}
}

// AccessResponse is the role and permission snapshot of the current user.
type AccessResponse struct {
	UserID      string   `json:"user_id"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// MapAccessToResponse converts a domain access snapshot to an API response.
func MapAccessToResponse(access *domain.UserAccess) AccessResponse {
	roles := []string(access.Roles)
	if roles == nil {
		roles = []string{}
	}
	perms := []string(access.Permissions)
	if perms == nil {
		perms = []string{}
	}
	return AccessResponse{
		UserID:      access.UserID.String(),
		Roles:       roles,
		Permissions: perms,
	}
}
