package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/qacms/internal/errors"
)

func TestRole_CheckDelete(t *testing.T) {
	system := &Role{ID: uuid.Must(uuid.NewV7()), Name: SuperAdminRole, IsSystem: true}
	custom := &Role{ID: uuid.Must(uuid.NewV7()), Name: "reviewer"}

	err := system.CheckDelete()
	assert.ErrorIs(t, err, ErrRoleProtected)
	assert.True(t, apperrors.Is(err, apperrors.ErrProtected))
	assert.NoError(t, custom.CheckDelete())
}

func TestRole_CheckRename(t *testing.T) {
	system := &Role{Name: "admin", IsSystem: true}
	custom := &Role{Name: "reviewer"}

	assert.NoError(t, system.CheckRename("admin"))
	assert.ErrorIs(t, system.CheckRename("administrator"), ErrRoleProtected)
	assert.NoError(t, custom.CheckRename("senior-reviewer"))
}
