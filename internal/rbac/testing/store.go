// Package testing provides an in-memory RBAC store for use case tests. It
// implements every repository interface, a transaction manager that restores
// the previous state when the callback fails, and failure injection.
package testing

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/qacms/internal/rbac/domain"
)

// Store holds users, roles, permissions and both join tables in memory.
type Store struct {
	mu          sync.Mutex
	txMu        sync.Mutex
	users       map[uuid.UUID]domain.User
	permissions map[uuid.UUID]domain.Permission
	roles       map[uuid.UUID]domain.Role
	userRoles   map[domain.UserRole]struct{}
	rolePerms   map[domain.RolePermission]struct{}
	failures    map[string]error
	writes      int
}

type txKey struct{}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		users:       make(map[uuid.UUID]domain.User),
		permissions: make(map[uuid.UUID]domain.Permission),
		roles:       make(map[uuid.UUID]domain.Role),
		userRoles:   make(map[domain.UserRole]struct{}),
		rolePerms:   make(map[domain.RolePermission]struct{}),
		failures:    make(map[string]error),
	}
}

// FailOn makes every later call of op return err. Operation names are the
// repository and method joined by a dot, e.g. "user_roles.Assign".
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// ClearFailures removes every injected failure.
func (s *Store) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]error)
}

// Writes returns the number of successful mutating calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// AddUser inserts a user created at createdAt.
func (s *Store) AddUser(email, name string, createdAt time.Time) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := domain.User{ID: uuid.Must(uuid.NewV7()), Email: email, Name: name, CreatedAt: createdAt}
	s.users[u.ID] = u
	return &u
}

// AddRole inserts a role with a fresh ID and returns it.
func (s *Store) AddRole(name string, isSystem bool) *domain.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	r := domain.Role{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        name,
		DisplayName: name,
		Color:       "#000000",
		IsSystem:    isSystem,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.roles[r.ID] = r
	return &r
}

// AddPermission inserts a permission with a fresh ID and returns it.
func (s *Store) AddPermission(module, name string) *domain.Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := domain.Permission{
		ID:          uuid.Must(uuid.NewV7()),
		Name:        name,
		DisplayName: name,
		Module:      module,
		CreatedAt:   time.Now().UTC(),
	}
	s.permissions[p.ID] = p
	return &p
}

// Grant links a role to a permission directly.
func (s *Store) Grant(roleID, permissionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rolePerms[domain.RolePermission{RoleID: roleID, PermissionID: permissionID}] = struct{}{}
}

// Give links a user to a role directly.
func (s *Store) Give(userID, roleID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userRoles[domain.UserRole{UserID: userID, RoleID: roleID}] = struct{}{}
}

// State is a comparable copy of the catalog side of the store.
type State struct {
	Permissions map[string]domain.Permission
	Roles       map[string]domain.Role
	Grants      map[string]domain.NameSet
	UserRoles   map[uuid.UUID]domain.NameSet
}

// Snapshot returns the current state keyed by names. Timestamps are zeroed so
// states taken at different times compare equal when nothing else changed.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Permissions: make(map[string]domain.Permission),
		Roles:       make(map[string]domain.Role),
		Grants:      make(map[string]domain.NameSet),
		UserRoles:   make(map[uuid.UUID]domain.NameSet),
	}
	for _, p := range s.permissions {
		p.CreatedAt = time.Time{}
		st.Permissions[p.Name] = p
	}
	for _, r := range s.roles {
		r.CreatedAt, r.UpdatedAt = time.Time{}, time.Time{}
		st.Roles[r.Name] = r
		st.Grants[r.Name] = s.rolePermissionNamesLocked(r.ID)
	}
	for id := range s.users {
		st.UserRoles[id] = s.userRoleNamesLocked(id)
	}
	return st
}

// RoleGrants returns the permission names granted to the named role.
func (s *Store) RoleGrants(roleName string) domain.NameSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.roles {
		if r.Name == roleName {
			return s.rolePermissionNamesLocked(r.ID)
		}
	}
	return domain.NewNameSet()
}

// Users returns the UserRepository view.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Permissions returns the PermissionRepository view.
func (s *Store) Permissions() *PermissionRepository { return &PermissionRepository{s: s} }

// Roles returns the RoleRepository view.
func (s *Store) Roles() *RoleRepository { return &RoleRepository{s: s} }

// UserRoles returns the UserRoleRepository view.
func (s *Store) UserRoles() *UserRoleRepository { return &UserRoleRepository{s: s} }

// RolePermissions returns the RolePermissionRepository view.
func (s *Store) RolePermissions() *RolePermissionRepository { return &RolePermissionRepository{s: s} }

// TxManager returns a transaction manager bound to the store.
func (s *Store) TxManager() *TxManager { return &TxManager{s: s} }

// TxManager serializes transactions and restores the state taken at begin
// when the callback fails.
type TxManager struct {
	s *Store
}

// WithTx runs fn as one transaction. Nested calls join the outer one.
func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.s.txMu.Lock()
	defer m.s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	saved := m.s.copyTables()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.s.restoreTables(saved)
		return err
	}
	return nil
}

type tables struct {
	users       map[uuid.UUID]domain.User
	permissions map[uuid.UUID]domain.Permission
	roles       map[uuid.UUID]domain.Role
	userRoles   map[domain.UserRole]struct{}
	rolePerms   map[domain.RolePermission]struct{}
	writes      int
}

func (s *Store) copyTables() tables {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tables{
		users:       copyMap(s.users),
		permissions: copyMap(s.permissions),
		roles:       copyMap(s.roles),
		userRoles:   copyMap(s.userRoles),
		rolePerms:   copyMap(s.rolePerms),
		writes:      s.writes,
	}
}

func (s *Store) restoreTables(t tables) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = t.users
	s.permissions = t.permissions
	s.roles = t.roles
	s.userRoles = t.userRoles
	s.rolePerms = t.rolePerms
	s.writes = t.writes
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// begin locks the store and returns the injected failure for op, if any.
// Callers must unlock s.mu.
func (s *Store) begin(ctx context.Context, op string) error {
	s.mu.Lock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.failures[op]
}

func (s *Store) rolePermissionNamesLocked(roleID uuid.UUID) domain.NameSet {
	var names []string
	for rp := range s.rolePerms {
		if rp.RoleID == roleID {
			names = append(names, s.permissions[rp.PermissionID].Name)
		}
	}
	return domain.NewNameSet(names...)
}

func (s *Store) userRoleNamesLocked(userID uuid.UUID) domain.NameSet {
	var names []string
	for ur := range s.userRoles {
		if ur.UserID == userID {
			names = append(names, s.roles[ur.RoleID].Name)
		}
	}
	return domain.NewNameSet(names...)
}

func sortIDs(ids []uuid.UUID) []uuid.UUID {
	slices.SortFunc(ids, func(a, b uuid.UUID) int {
		return slices.Compare(a[:], b[:])
	})
	return ids
}

func sortPermissions(perms []*domain.Permission) []*domain.Permission {
	sort.Slice(perms, func(i, j int) bool {
		if perms[i].Module != perms[j].Module {
			return perms[i].Module < perms[j].Module
		}
		return perms[i].Name < perms[j].Name
	})
	return perms
}
