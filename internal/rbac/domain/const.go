// Package domain defines the RBAC data model: users, permissions, roles, the
// join rows between them and the name sets returned by authorization queries.
package domain

// SuperAdminRole is the role the catalog grants every known permission and the
// role assigned to the oldest user by the legacy migration.
const SuperAdminRole = "super-admin"

// WildcardPermission is the legacy spelling of "every permission". It is never
// accepted as a permission name and never persisted.
const WildcardPermission = "*"
