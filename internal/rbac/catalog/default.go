package catalog

import (
	"strings"

	"github.com/allisson/qacms/internal/rbac/domain"
)

// Role names declared by the default catalog.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// Permissions checked by the administration API.
const (
	PermRolesView   = "roles.view"
	PermRolesCreate = "roles.create"
	PermRolesUpdate = "roles.update"
	PermRolesDelete = "roles.delete"
	PermUsersView   = "users.view"
	PermUsersUpdate = "users.update"
)

// Default returns the built-in catalog of the quality-assurance office CMS.
func Default() *Catalog {
	registry := NewRegistry(
		Module{Name: "dashboard", DisplayName: "Dashboard", Permissions: []PermissionDef{
			{Name: "dashboard.view", DisplayName: "View dashboard"},
		}},
		crudModule("news", "News"),
		crudModule("agenda", "Agenda"),
		Module{Name: "rankings", DisplayName: "Rankings", Permissions: []PermissionDef{
			{Name: "rankings.view", DisplayName: "View rankings"},
			{Name: "rankings.create", DisplayName: "Create rankings"},
			{Name: "rankings.update", DisplayName: "Update rankings"},
			{Name: "rankings.delete", DisplayName: "Delete rankings"},
			{Name: "rankings.publish", DisplayName: "Publish rankings"},
		}},
		Module{Name: "documents", DisplayName: "Documents", Permissions: []PermissionDef{
			{Name: "documents.view", DisplayName: "View documents"},
			{Name: "documents.upload", DisplayName: "Upload documents"},
			{Name: "documents.update", DisplayName: "Update documents"},
			{Name: "documents.delete", DisplayName: "Delete documents"},
		}},
		crudModule("units", "Organizational units"),
		crudModule("users", "Users"),
		crudModule("roles", "Roles"),
		Module{Name: "settings", DisplayName: "Settings", Permissions: []PermissionDef{
			{Name: "settings.view", DisplayName: "View settings"},
			{Name: "settings.update", DisplayName: "Update settings"},
		}},
	)

	return New(registry,
		RoleDef{
			Name:        domain.SuperAdminRole,
			DisplayName: "Super Admin",
			Description: "Full access to every module",
			Color:       "#B91C1C",
			IsSystem:    true,
			Grant:       AllKnownPermissions(),
		},
		RoleDef{
			Name:        RoleAdmin,
			DisplayName: "Administrator",
			Description: "Manages content, units and users",
			Color:       "#1D4ED8",
			IsSystem:    true,
			Grant: ExplicitPermissions(
				"dashboard.view",
				"news.view", "news.create", "news.update", "news.delete",
				"agenda.view", "agenda.create", "agenda.update", "agenda.delete",
				"rankings.view", "rankings.create", "rankings.update", "rankings.delete", "rankings.publish",
				"documents.view", "documents.upload", "documents.update", "documents.delete",
				"units.view", "units.create", "units.update", "units.delete",
				"users.view", "users.create", "users.update",
				"roles.view",
				"settings.view",
			),
		},
		RoleDef{
			Name:        RoleEditor,
			DisplayName: "Editor",
			Description: "Writes and maintains published content",
			Color:       "#047857",
			Grant: ExplicitPermissions(
				"dashboard.view",
				"news.view", "news.create", "news.update",
				"agenda.view", "agenda.create", "agenda.update",
				"rankings.view",
				"documents.view", "documents.upload", "documents.update",
				"units.view",
			),
		},
		RoleDef{
			Name:        RoleViewer,
			DisplayName: "Viewer",
			Description: "Read-only access to the back office",
			Color:       "#6B7280",
			Grant: ExplicitPermissions(
				"dashboard.view",
				"news.view",
				"agenda.view",
				"rankings.view",
				"documents.view",
				"units.view",
			),
		},
	)
}

func crudModule(name, displayName string) Module {
	return Module{
		Name:        name,
		DisplayName: displayName,
		Permissions: []PermissionDef{
			{Name: name + ".view", DisplayName: "View " + strings.ToLower(displayName)},
			{Name: name + ".create", DisplayName: "Create " + strings.ToLower(displayName)},
			{Name: name + ".update", DisplayName: "Update " + strings.ToLower(displayName)},
			{Name: name + ".delete", DisplayName: "Delete " + strings.ToLower(displayName)},
		},
	}
}
