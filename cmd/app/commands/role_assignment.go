package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	rbacUseCase "github.com/allisson/qacms/internal/rbac/usecase"
)

// RunAssignRole grants the named role to a user. Granting a role the user
// already holds succeeds without change.
func RunAssignRole(
	ctx context.Context,
	roleUseCase rbacUseCase.RoleUseCase,
	assignmentUseCase rbacUseCase.AssignmentUseCase,
	logger *slog.Logger,
	writer io.Writer,
	userIDStr string,
	roleName string,
) error {
	userID, roleID, err := resolveUserAndRole(ctx, roleUseCase, userIDStr, roleName)
	if err != nil {
		return err
	}

	if err := assignmentUseCase.AssignRole(ctx, userID, roleID); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Role %q assigned to user %s\n", roleName, userID)
	logger.Info("role assigned",
		slog.String("user_id", userID.String()),
		slog.String("role", roleName),
	)
	return nil
}

// RunRevokeRole removes the named role from a user.
func RunRevokeRole(
	ctx context.Context,
	roleUseCase rbacUseCase.RoleUseCase,
	assignmentUseCase rbacUseCase.AssignmentUseCase,
	logger *slog.Logger,
	writer io.Writer,
	userIDStr string,
	roleName string,
) error {
	userID, roleID, err := resolveUserAndRole(ctx, roleUseCase, userIDStr, roleName)
	if err != nil {
		return err
	}

	if err := assignmentUseCase.RemoveRole(ctx, userID, roleID); err != nil {
		return fmt.Errorf("failed to revoke role: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Role %q revoked from user %s\n", roleName, userID)
	logger.Info("role revoked",
		slog.String("user_id", userID.String()),
		slog.String("role", roleName),
	)
	return nil
}

func resolveUserAndRole(
	ctx context.Context,
	roleUseCase rbacUseCase.RoleUseCase,
	userIDStr string,
	roleName string,
) (uuid.UUID, uuid.UUID, error) {
	userID, err := uuid.Parse(strings.TrimSpace(userIDStr))
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid user id %q: %w", userIDStr, err)
	}

	role, err := roleUseCase.GetByName(ctx, strings.TrimSpace(roleName))
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("failed to find role %q: %w", roleName, err)
	}

	return userID, role.ID, nil
}
