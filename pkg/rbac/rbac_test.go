package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPermission(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		permission string
		want       bool
	}{
		{"owner can delete project", RoleOwner, PermissionProjectDelete, true},
		{"producer cannot delete project", RoleProducer, PermissionProjectDelete, false},
		{"producer can manage budget", RoleProducer, PermissionBudgetManage, true},
		{"member can create task", RoleMember, PermissionTaskCreate, true},
		{"member cannot delete task", RoleMember, PermissionTaskDelete, false},
		{"producer cannot manage roster", RoleProducer, PermissionMemberManage, false},
		{"owner can manage roster", RoleOwner, PermissionMemberManage, true},
		{"member cannot manage roster", RoleMember, PermissionMemberManage, false},
		{"unknown role has nothing", "ghost", PermissionTaskCreate, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasPermission(tt.role, tt.permission))
		})
	}
}

func TestCheckPermission(t *testing.T) {
	assert.NoError(t, CheckPermission(RoleOwner, PermissionMemberManage))

	err := CheckPermission(RoleMember, PermissionProjectDelete)
	require.Error(t, err)

	var denied *PermissionDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, RoleMember, denied.Role)
	assert.Equal(t, PermissionProjectDelete, denied.Permission)
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole(RoleOwner))
	assert.True(t, IsValidRole(RoleProducer))
	assert.True(t, IsValidRole(RoleMember))
	assert.False(t, IsValidRole("admin"))
}
