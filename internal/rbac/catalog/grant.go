package catalog

import (
	"github.com/allisson/qacms/internal/rbac/domain"
)

// GrantKind tells how a role's permission set is declared.
type GrantKind int

const (
	// GrantExplicit lists the permission names.
	GrantExplicit GrantKind = iota
	// GrantAllKnown grants every permission in the registry.
	GrantAllKnown
)

// String implements fmt.Stringer.
func (k GrantKind) String() string {
	switch k {
	case GrantAllKnown:
		return "all_known"
	default:
		return "explicit"
	}
}

// Grant is the permission set of a role declaration: either an explicit list
// or every permission the registry knows about.
type Grant struct {
	kind  GrantKind
	names []string
}

// ExplicitPermissions grants exactly names.
func ExplicitPermissions(names ...string) Grant {
	return Grant{kind: GrantExplicit, names: append([]string(nil), names...)}
}

// AllKnownPermissions grants every registered permission.
func AllKnownPermissions() Grant {
	return Grant{kind: GrantAllKnown}
}

// Kind returns the grant kind.
func (g Grant) Kind() GrantKind {
	return g.kind
}

// IsAllKnown reports whether g is the all-permissions grant.
func (g Grant) IsAllKnown() bool {
	return g.kind == GrantAllKnown
}

// Names returns the explicit names. It is empty for an all-known grant.
func (g Grant) Names() []string {
	return append([]string(nil), g.names...)
}

// Resolve returns the concrete permission names of g against registry.
func (g Grant) Resolve(registry Registry) domain.NameSet {
	if g.kind == GrantAllKnown {
		return ExpandWildcard(registry)
	}
	return domain.NewNameSet(g.names...)
}
