package domain

import (
	"time"

	"github.com/google/uuid"
)

// Permission is a named capability such as "news.create". Module groups
// permissions for display.
type Permission struct {
	ID          uuid.UUID
	Name        string
	DisplayName string
	Module      string
	CreatedAt   time.Time
}

// PermissionNames returns the names of perms as a NameSet.
func PermissionNames(perms []*Permission) NameSet {
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, p.Name)
	}
	return NewNameSet(names...)
}

// PermissionGroup is a module with its permissions, in registry order.
type PermissionGroup struct {
	Module      string
	Permissions []*Permission
}

// GroupByModule groups perms by module, keeping the first-seen module order.
func GroupByModule(perms []*Permission) []PermissionGroup {
	index := make(map[string]int)
	groups := make([]PermissionGroup, 0)
	for _, p := range perms {
		i, ok := index[p.Module]
		if !ok {
			i = len(groups)
			index[p.Module] = i
			groups = append(groups, PermissionGroup{Module: p.Module})
		}
		groups[i].Permissions = append(groups[i].Permissions, p)
	}
	return groups
}
