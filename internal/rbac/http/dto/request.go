// Package dto provides data transfer objects for the RBAC administration API.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/qacms/internal/rbac/domain"
	customValidation "github.com/allisson/qacms/internal/validation"
)

// CreateRoleRequest contains the parameters for creating a custom role.
type CreateRoleRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// Validate checks if the create role request is valid.
func (r *CreateRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			validation.Length(1, 100),
			customValidation.RoleName,
		),
		validation.Field(&r.DisplayName,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Description, validation.Length(0, 1000)),
		validation.Field(&r.Color, customValidation.HexColor),
	)
}

// ToInput converts the request to a domain input.
func (r *CreateRoleRequest) ToInput() *domain.CreateRoleInput {
	return &domain.CreateRoleInput{
		Name:        r.Name,
		DisplayName: r.DisplayName,
		Description: r.Description,
		Color:       r.Color,
	}
}

// UpdateRoleRequest contains the mutable fields of a role. An empty name keeps
// the current one.
type UpdateRoleRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// Validate checks if the update role request is valid.
func (r *UpdateRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Length(1, 100),
			customValidation.RoleName,
		),
		validation.Field(&r.DisplayName,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Description, validation.Length(0, 1000)),
		validation.Field(&r.Color, customValidation.HexColor),
	)
}

// ToInput converts the request to a domain input.
func (r *UpdateRoleRequest) ToInput() *domain.UpdateRoleInput {
	return &domain.UpdateRoleInput{
		Name:        r.Name,
		DisplayName: r.DisplayName,
		Description: r.Description,
		Color:       r.Color,
	}
}

// SyncPermissionsRequest replaces a role's permission set.
type SyncPermissionsRequest struct {
	PermissionIDs []string `json:"permission_ids"`
}

// Validate checks that every entry is a UUID. An empty list is valid and
// clears the set.
func (r *SyncPermissionsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PermissionIDs,
			validation.NotNil,
			validation.Each(validation.By(validateUUID)),
		),
	)
}

// IDs returns the parsed permission ids. Call Validate first.
func (r *SyncPermissionsRequest) IDs() []uuid.UUID {
	return parseIDs(r.PermissionIDs)
}

// SyncRolesRequest replaces a user's role set.
type SyncRolesRequest struct {
	RoleIDs []string `json:"role_ids"`
}

// Validate checks that every entry is a UUID. An empty list is valid and
// revokes every role.
func (r *SyncRolesRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RoleIDs,
			validation.NotNil,
			validation.Each(validation.By(validateUUID)),
		),
	)
}

// IDs returns the parsed role ids. Call Validate first.
func (r *SyncRolesRequest) IDs() []uuid.UUID {
	return parseIDs(r.RoleIDs)
}

func validateUUID(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_uuid_type", "must be a string")
	}
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("validation_uuid", "must be a valid UUID")
	}
	return nil
}

func parseIDs(values []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		if id, err := uuid.Parse(v); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
