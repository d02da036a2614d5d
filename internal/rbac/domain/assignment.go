package domain

import (
	"github.com/google/uuid"
)

// UserRole grants a role to a user.
type UserRole struct {
	UserID uuid.UUID
	RoleID uuid.UUID
}

// RolePermission grants a permission to a role.
type RolePermission struct {
	RoleID       uuid.UUID
	PermissionID uuid.UUID
}

// UserAccess is a snapshot of everything a user holds.
type UserAccess struct {
	UserID      uuid.UUID
	Roles       NameSet
	Permissions NameSet
}

// SyncResult reports how a replace operation changed a set.
type SyncResult struct {
	Added   int
	Removed int
}

// DiffIDs returns the ids in target missing from current and the ids in
// current missing from target, each in input order. Duplicates in either
// input are ignored.
func DiffIDs(current, target []uuid.UUID) (toAdd, toRemove []uuid.UUID) {
	currentSet := make(map[uuid.UUID]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	targetSet := make(map[uuid.UUID]struct{}, len(target))
	for _, id := range target {
		if _, seen := targetSet[id]; seen {
			continue
		}
		targetSet[id] = struct{}{}
		if _, ok := currentSet[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}
	for _, id := range current {
		if _, ok := targetSet[id]; !ok {
			toRemove = append(toRemove, id)
			targetSet[id] = struct{}{}
		}
	}
	return toAdd, toRemove
}

// UniqueIDs returns ids without duplicates, keeping first-seen order.
func UniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
