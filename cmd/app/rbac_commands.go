package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/qacms/cmd/app/commands"
	"github.com/allisson/qacms/internal/app"
	"github.com/allisson/qacms/internal/config"
	"github.com/allisson/qacms/internal/rbac/catalog"
	rbacUseCase "github.com/allisson/qacms/internal/rbac/usecase"
)

func getRBACCommands() []*cli.Command {
	roleFlags := []cli.Flag{
		&cli.StringFlag{
			Name:     "user-id",
			Aliases:  []string{"u"},
			Required: true,
			Usage:    "User ID (UUID)",
		},
		&cli.StringFlag{
			Name:     "role",
			Aliases:  []string{"r"},
			Required: true,
			Usage:    "Role name (e.g., editor)",
		},
	}

	return []*cli.Command{
		{
			Name:  "bootstrap",
			Usage: "Create or update permissions, roles and role grants from the catalog",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "catalog",
					Aliases: []string{"c"},
					Usage:   "Path to a YAML role catalog (overrides RBAC_CATALOG_PATH)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				cat, err := loadCatalog(container, cmd.String("catalog"))
				if err != nil {
					return err
				}

				bootstrapUseCase, err := container.BootstrapUseCase()
				if err != nil {
					return err
				}

				return commands.RunBootstrap(
					ctx,
					bootstrapUseCase,
					cat,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "assign-role",
			Usage: "Grant a role to a user",
			Flags: roleFlags,
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withRoleUseCases(ctx, func(c *app.Container) error {
					roleUseCase, assignmentUseCase, err := roleUseCases(c)
					if err != nil {
						return err
					}
					return commands.RunAssignRole(
						ctx,
						roleUseCase,
						assignmentUseCase,
						c.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("user-id"),
						cmd.String("role"),
					)
				})
			},
		},
		{
			Name:  "revoke-role",
			Usage: "Remove a role from a user",
			Flags: roleFlags,
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withRoleUseCases(ctx, func(c *app.Container) error {
					roleUseCase, assignmentUseCase, err := roleUseCases(c)
					if err != nil {
						return err
					}
					return commands.RunRevokeRole(
						ctx,
						roleUseCase,
						assignmentUseCase,
						c.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("user-id"),
						cmd.String("role"),
					)
				})
			},
		},
	}
}

// loadCatalog prefers an explicit path over the configured catalog.
func loadCatalog(container *app.Container, path string) (*catalog.Catalog, error) {
	if path != "" {
		return catalog.LoadFile(path)
	}
	return container.Catalog()
}

func withRoleUseCases(ctx context.Context, fn func(*app.Container) error) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	defer func() { _ = container.Shutdown(ctx) }()

	return fn(container)
}

func roleUseCases(c *app.Container) (rbacUseCase.RoleUseCase, rbacUseCase.AssignmentUseCase, error) {
	roleUseCase, err := c.RoleUseCase()
	if err != nil {
		return nil, nil, err
	}
	assignmentUseCase, err := c.AssignmentUseCase()
	if err != nil {
		return nil, nil, err
	}
	return roleUseCase, assignmentUseCase, nil
}
