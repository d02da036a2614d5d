// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/qacms/internal/errors"
)

var (
	roleNameRegex       = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	permissionNameRegex = regexp.MustCompile(`^[a-z0-9_-]+(\.[a-z0-9_-]+)+$`)
	hexColorRegex       = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// RoleName validates a lowercase kebab-case role name such as "super-admin".
var RoleName = validation.NewStringRuleWithError(
	func(s string) bool {
		return roleNameRegex.MatchString(s)
	},
	validation.NewError("validation_role_name", "must be lowercase letters, digits and single hyphens"),
)

// PermissionName validates a dotted "module.action" permission name. The
// wildcard "*" never matches.
var PermissionName = validation.NewStringRuleWithError(
	func(s string) bool {
		return permissionNameRegex.MatchString(s)
	},
	validation.NewError("validation_permission_name", "must be in module.action form"),
)

// HexColor validates a "#rrggbb" color.
var HexColor = validation.NewStringRuleWithError(
	func(s string) bool {
		return hexColorRegex.MatchString(s)
	},
	validation.NewError("validation_hex_color", "must be a #rrggbb color"),
)
