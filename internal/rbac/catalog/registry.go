// Package catalog declares the permission registry and the role catalog the
// bootstrapper converges the store to. A Catalog is built once, validated and
// then only read.
package catalog

import (
	"github.com/allisson/qacms/internal/rbac/domain"
)

// PermissionDef declares one permission of a module.
type PermissionDef struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
}

// Module groups permission declarations.
type Module struct {
	Name        string          `yaml:"name"`
	DisplayName string          `yaml:"display_name"`
	Permissions []PermissionDef `yaml:"permissions"`
}

// Entry is a permission declaration together with its module.
type Entry struct {
	Module      string
	Name        string
	DisplayName string
}

// Registry is the ordered list of modules and their permissions.
type Registry struct {
	modules []Module
}

// NewRegistry copies modules into a Registry.
func NewRegistry(modules ...Module) Registry {
	copied := make([]Module, 0, len(modules))
	for _, m := range modules {
		m.Permissions = append([]PermissionDef(nil), m.Permissions...)
		copied = append(copied, m)
	}
	return Registry{modules: copied}
}

// Modules returns a copy of the registry modules.
func (r Registry) Modules() []Module {
	out := make([]Module, 0, len(r.modules))
	for _, m := range r.modules {
		m.Permissions = append([]PermissionDef(nil), m.Permissions...)
		out = append(out, m)
	}
	return out
}

// Entries returns every permission in registry order.
func (r Registry) Entries() []Entry {
	var out []Entry
	for _, m := range r.modules {
		for _, p := range m.Permissions {
			out = append(out, Entry{Module: m.Name, Name: p.Name, DisplayName: p.DisplayName})
		}
	}
	return out
}

// Names returns every permission name in the registry.
func (r Registry) Names() domain.NameSet {
	var names []string
	for _, m := range r.modules {
		for _, p := range m.Permissions {
			names = append(names, p.Name)
		}
	}
	return domain.NewNameSet(names...)
}

// Has reports whether name is registered.
func (r Registry) Has(name string) bool {
	for _, m := range r.modules {
		for _, p := range m.Permissions {
			if p.Name == name {
				return true
			}
		}
	}
	return false
}

// ExpandWildcard returns every permission name known to registry at call time.
// Permissions registered later are only picked up by the next bootstrap.
func ExpandWildcard(registry Registry) domain.NameSet {
	return registry.Names()
}
