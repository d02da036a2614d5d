package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity record owned by the identity subsystem. The RBAC core
// only reads it.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	CreatedAt time.Time
}
