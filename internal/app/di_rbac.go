package app

import (
	"fmt"
	"sync"

	"github.com/allisson/qacms/internal/http"
	"github.com/allisson/qacms/internal/rbac/catalog"
	rbacHTTP "github.com/allisson/qacms/internal/rbac/http"
	rbacRepository "github.com/allisson/qacms/internal/rbac/repository"
	rbacUseCase "github.com/allisson/qacms/internal/rbac/usecase"
)

// rbacRepositories bundles the store adapters for one database driver.
type rbacRepositories struct {
	users           rbacUseCase.UserRepository
	roles           rbacUseCase.RoleRepository
	permissions     rbacUseCase.PermissionRepository
	userRoles       rbacUseCase.UserRoleRepository
	rolePermissions rbacUseCase.RolePermissionRepository
}

type rbacComponents struct {
	catalog       *catalog.Catalog
	repositories  *rbacRepositories
	authorization rbacUseCase.AuthorizationUseCase
	assignment    rbacUseCase.AssignmentUseCase
	role          rbacUseCase.RoleUseCase
	bootstrap     rbacUseCase.BootstrapUseCase
	handlers      http.RBACHandlers

	catalogInit       sync.Once
	repositoriesInit  sync.Once
	authorizationInit sync.Once
	assignmentInit    sync.Once
	roleInit          sync.Once
	bootstrapInit     sync.Once
	handlersInit      sync.Once
}

// Catalog returns the role catalog: the YAML file at RBAC_CATALOG_PATH, or the
// built-in catalog when no path is configured.
func (c *Container) Catalog() (*catalog.Catalog, error) {
	return lazy(c, &c.rbac.catalogInit, "rbacCatalog", &c.rbac.catalog, c.initCatalog)
}

// AuthorizationUseCase returns the access check use case.
func (c *Container) AuthorizationUseCase() (rbacUseCase.AuthorizationUseCase, error) {
	return lazy(c, &c.rbac.authorizationInit, "rbacAuthorization", &c.rbac.authorization, c.initAuthorizationUseCase)
}

// AssignmentUseCase returns the grant management use case.
func (c *Container) AssignmentUseCase() (rbacUseCase.AssignmentUseCase, error) {
	return lazy(c, &c.rbac.assignmentInit, "rbacAssignment", &c.rbac.assignment, c.initAssignmentUseCase)
}

// RoleUseCase returns the role administration use case.
func (c *Container) RoleUseCase() (rbacUseCase.RoleUseCase, error) {
	return lazy(c, &c.rbac.roleInit, "rbacRole", &c.rbac.role, c.initRoleUseCase)
}

// BootstrapUseCase returns the catalog bootstrapper.
func (c *Container) BootstrapUseCase() (rbacUseCase.BootstrapUseCase, error) {
	return lazy(c, &c.rbac.bootstrapInit, "rbacBootstrap", &c.rbac.bootstrap, c.initBootstrapUseCase)
}

// RBACHandlers returns the HTTP handlers mounted under /v1.
func (c *Container) RBACHandlers() (http.RBACHandlers, error) {
	return lazy(c, &c.rbac.handlersInit, "rbacHandlers", &c.rbac.handlers, c.initRBACHandlers)
}

func (c *Container) rbacRepositories() (*rbacRepositories, error) {
	return lazy(c, &c.rbac.repositoriesInit, "rbacRepositories", &c.rbac.repositories, c.initRBACRepositories)
}

func (c *Container) initCatalog() (*catalog.Catalog, error) {
	if c.config.RBACCatalogPath == "" {
		return catalog.Default(), nil
	}

	cat, err := catalog.LoadFile(c.config.RBACCatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load role catalog from %s: %w", c.config.RBACCatalogPath, err)
	}
	return cat, nil
}

// initRBACRepositories selects the repositories for the configured driver.
func (c *Container) initRBACRepositories() (*rbacRepositories, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for rbac repositories: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return &rbacRepositories{
			users:           rbacRepository.NewPostgreSQLUserRepository(db),
			roles:           rbacRepository.NewPostgreSQLRoleRepository(db),
			permissions:     rbacRepository.NewPostgreSQLPermissionRepository(db),
			userRoles:       rbacRepository.NewPostgreSQLUserRoleRepository(db),
			rolePermissions: rbacRepository.NewPostgreSQLRolePermissionRepository(db),
		}, nil
	case "mysql":
		return &rbacRepositories{
			users:           rbacRepository.NewMySQLUserRepository(db),
			roles:           rbacRepository.NewMySQLRoleRepository(db),
			permissions:     rbacRepository.NewMySQLPermissionRepository(db),
			userRoles:       rbacRepository.NewMySQLUserRoleRepository(db),
			rolePermissions: rbacRepository.NewMySQLRolePermissionRepository(db),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initAuthorizationUseCase() (rbacUseCase.AuthorizationUseCase, error) {
	repos, err := c.rbacRepositories()
	if err != nil {
		return nil, fmt.Errorf("failed to get repositories for authorization use case: %w", err)
	}

	baseUseCase := rbacUseCase.NewAuthorizationUseCase(repos.userRoles, c.Logger())

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for authorization use case: %w", err)
		}
		return rbacUseCase.NewAuthorizationUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}
	return baseUseCase, nil
}

func (c *Container) initAssignmentUseCase() (rbacUseCase.AssignmentUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for assignment use case: %w", err)
	}

	repos, err := c.rbacRepositories()
	if err != nil {
		return nil, fmt.Errorf("failed to get repositories for assignment use case: %w", err)
	}

	baseUseCase := rbacUseCase.NewAssignmentUseCase(
		txManager,
		repos.users,
		repos.roles,
		repos.permissions,
		repos.userRoles,
		repos.rolePermissions,
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for assignment use case: %w", err)
		}
		return rbacUseCase.NewAssignmentUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}
	return baseUseCase, nil
}

func (c *Container) initRoleUseCase() (rbacUseCase.RoleUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for role use case: %w", err)
	}

	repos, err := c.rbacRepositories()
	if err != nil {
		return nil, fmt.Errorf("failed to get repositories for role use case: %w", err)
	}

	baseUseCase := rbacUseCase.NewRoleUseCase(txManager, repos.roles, repos.permissions)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for role use case: %w", err)
		}
		return rbacUseCase.NewRoleUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}
	return baseUseCase, nil
}

func (c *Container) initBootstrapUseCase() (rbacUseCase.BootstrapUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for bootstrap use case: %w", err)
	}

	repos, err := c.rbacRepositories()
	if err != nil {
		return nil, fmt.Errorf("failed to get repositories for bootstrap use case: %w", err)
	}

	baseUseCase := rbacUseCase.NewBootstrapUseCase(
		txManager,
		repos.users,
		repos.roles,
		repos.permissions,
		repos.userRoles,
		repos.rolePermissions,
		c.Logger(),
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for bootstrap use case: %w", err)
		}
		return rbacUseCase.NewBootstrapUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}
	return baseUseCase, nil
}

func (c *Container) initRBACHandlers() (http.RBACHandlers, error) {
	logger := c.Logger()

	authz, err := c.AuthorizationUseCase()
	if err != nil {
		return http.RBACHandlers{}, fmt.Errorf("failed to get authorization use case for handlers: %w", err)
	}
	assignment, err := c.AssignmentUseCase()
	if err != nil {
		return http.RBACHandlers{}, fmt.Errorf("failed to get assignment use case for handlers: %w", err)
	}
	role, err := c.RoleUseCase()
	if err != nil {
		return http.RBACHandlers{}, fmt.Errorf("failed to get role use case for handlers: %w", err)
	}

	return http.RBACHandlers{
		Roles:       rbacHTTP.NewRoleHandler(role, assignment, logger),
		Permissions: rbacHTTP.NewPermissionHandler(role, logger),
		UserRoles:   rbacHTTP.NewUserRoleHandler(assignment, logger),
		Me:          rbacHTTP.NewMeHandler(authz, logger),
	}, nil
}
