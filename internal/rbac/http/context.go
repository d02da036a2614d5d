// Package http exposes the RBAC core over gin: principal resolution,
// permission gates and the role administration endpoints.
package http

import (
	"context"

	"github.com/google/uuid"
)

// userIDKey is a context key type for the authenticated user ID.
type userIDKey struct{}

// WithUserID stores the authenticated user ID in the context.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserID retrieves the authenticated user ID from the context.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey{}).(uuid.UUID)
	return userID, ok
}
