package catalog

import (
	"fmt"

	validation "github.com/jellydator/validation"

	"github.com/allisson/qacms/internal/errors"
	"github.com/allisson/qacms/internal/rbac/domain"
	customValidation "github.com/allisson/qacms/internal/validation"
)

// RoleDef declares a role and its permission grant.
type RoleDef struct {
	Name        string
	DisplayName string
	Description string
	Color       string
	IsSystem    bool
	Grant       Grant
}

// Catalog is the permission registry plus the declared roles.
type Catalog struct {
	registry Registry
	roles    []RoleDef
}

// New builds a Catalog. Call Validate before handing it to the bootstrapper.
func New(registry Registry, roles ...RoleDef) *Catalog {
	copied := make([]RoleDef, 0, len(roles))
	for _, r := range roles {
		r.Grant = Grant{kind: r.Grant.kind, names: r.Grant.Names()}
		copied = append(copied, r)
	}
	return &Catalog{registry: registry, roles: copied}
}

// Registry returns the permission registry.
func (c *Catalog) Registry() Registry {
	return c.registry
}

// Roles returns a copy of the declared roles in declaration order.
func (c *Catalog) Roles() []RoleDef {
	out := make([]RoleDef, 0, len(c.roles))
	for _, r := range c.roles {
		r.Grant = Grant{kind: r.Grant.kind, names: r.Grant.Names()}
		out = append(out, r)
	}
	return out
}

// Role looks up a role declaration by name.
func (c *Catalog) Role(name string) (RoleDef, bool) {
	for _, r := range c.roles {
		if r.Name == name {
			r.Grant = Grant{kind: r.Grant.kind, names: r.Grant.Names()}
			return r, true
		}
	}
	return RoleDef{}, false
}

// Resolve returns the concrete permission set of role, expanding the
// all-known grant against the catalog registry.
func (c *Catalog) Resolve(role RoleDef) domain.NameSet {
	return role.Grant.Resolve(c.registry)
}

// Validate checks the catalog is internally consistent: names are well formed
// and unique, explicit grants only reference registered permissions and the
// super-admin role is declared as a system role.
func (c *Catalog) Validate() error {
	seenPerms := make(map[string]struct{})
	for _, m := range c.registry.modules {
		if err := validation.Validate(m.Name, validation.Required, customValidation.NotBlank); err != nil {
			return invalidCatalog("module name", err)
		}
		for _, p := range m.Permissions {
			if p.Name == domain.WildcardPermission {
				return errors.Wrapf(domain.ErrInvalidCatalog, "module %q declares the wildcard as a permission", m.Name)
			}
			err := validation.ValidateStruct(&p,
				validation.Field(&p.Name, validation.Required, customValidation.PermissionName),
				validation.Field(&p.DisplayName, validation.Required, customValidation.NotBlank),
			)
			if err != nil {
				return invalidCatalog(fmt.Sprintf("permission %q", p.Name), err)
			}
			if _, dup := seenPerms[p.Name]; dup {
				return errors.Wrapf(domain.ErrInvalidCatalog, "permission %q declared twice", p.Name)
			}
			seenPerms[p.Name] = struct{}{}
		}
	}

	seenRoles := make(map[string]struct{})
	for _, r := range c.roles {
		err := validation.ValidateStruct(&r,
			validation.Field(&r.Name, validation.Required, customValidation.RoleName),
			validation.Field(&r.DisplayName, validation.Required, customValidation.NotBlank),
			validation.Field(&r.Color, customValidation.HexColor),
		)
		if err != nil {
			return invalidCatalog(fmt.Sprintf("role %q", r.Name), err)
		}
		if _, dup := seenRoles[r.Name]; dup {
			return errors.Wrapf(domain.ErrInvalidCatalog, "role %q declared twice", r.Name)
		}
		seenRoles[r.Name] = struct{}{}

		for _, name := range r.Grant.names {
			if name == domain.WildcardPermission {
				return errors.Wrapf(domain.ErrInvalidCatalog, "role %q uses %q, declare an all-permissions grant instead", r.Name, name)
			}
			if _, ok := seenPerms[name]; !ok {
				return errors.Wrapf(domain.ErrInvalidCatalog, "role %q grants unknown permission %q", r.Name, name)
			}
		}
	}

	superAdmin, ok := c.Role(domain.SuperAdminRole)
	if !ok {
		return errors.Wrapf(domain.ErrInvalidCatalog, "role %q is not declared", domain.SuperAdminRole)
	}
	if !superAdmin.IsSystem {
		return errors.Wrapf(domain.ErrInvalidCatalog, "role %q must be a system role", domain.SuperAdminRole)
	}

	return nil
}

func invalidCatalog(subject string, err error) error {
	return errors.Wrap(domain.ErrInvalidCatalog, fmt.Sprintf("%s: %s", subject, err.Error()))
}
