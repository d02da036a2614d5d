package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/qacms/internal/rbac/catalog"
	rbacUseCase "github.com/allisson/qacms/internal/rbac/usecase"
)

// bootstrapResult is the JSON shape of a bootstrap report.
type bootstrapResult struct {
	PermissionsUpserted int     `json:"permissions_upserted"`
	RolesUpserted       int     `json:"roles_upserted"`
	GrantsAdded         int     `json:"grants_added"`
	GrantsRemoved       int     `json:"grants_removed"`
	LegacyUserID        *string `json:"legacy_user_id"`
}

// RunBootstrap converges the permissions, roles and role grants in the
// database to the catalog. Safe to run repeatedly.
//
// Requirements: Database must be migrated and accessible.
func RunBootstrap(
	ctx context.Context,
	bootstrapUseCase rbacUseCase.BootstrapUseCase,
	cat *catalog.Catalog,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("bootstrapping role catalog", slog.Int("roles", len(cat.Roles())))

	report, err := bootstrapUseCase.Run(ctx, cat)
	if err != nil {
		return fmt.Errorf("failed to bootstrap role catalog: %w", err)
	}

	result := bootstrapResult{
		PermissionsUpserted: report.PermissionsUpserted,
		RolesUpserted:       report.RolesUpserted,
		GrantsAdded:         report.GrantsAdded,
		GrantsRemoved:       report.GrantsRemoved,
	}
	if report.LegacyUserID != nil {
		id := report.LegacyUserID.String()
		result.LegacyUserID = &id
	}

	if format == "json" {
		if err := outputJSON(result, writer); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintln(writer, "Role catalog bootstrapped")
		_, _ = fmt.Fprintf(writer, "Permissions upserted: %d\n", result.PermissionsUpserted)
		_, _ = fmt.Fprintf(writer, "Roles upserted: %d\n", result.RolesUpserted)
		_, _ = fmt.Fprintf(writer, "Grants added: %d\n", result.GrantsAdded)
		_, _ = fmt.Fprintf(writer, "Grants removed: %d\n", result.GrantsRemoved)
		if result.LegacyUserID != nil {
			_, _ = fmt.Fprintf(writer, "Granted super-admin to legacy user: %s\n", *result.LegacyUserID)
		}
	}

	logger.Info("role catalog bootstrapped",
		slog.Int("permissions_upserted", result.PermissionsUpserted),
		slog.Int("roles_upserted", result.RolesUpserted),
		slog.Int("grants_added", result.GrantsAdded),
		slog.Int("grants_removed", result.GrantsRemoved),
	)

	return nil
}
