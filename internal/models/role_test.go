package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleHas(t *testing.T) {
	role := Role{Name: RoleUser, Permissions: RolePermissions()[RoleUser]}

	assert.True(t, role.Has(PermissionFollow))
	assert.True(t, role.Has(PermissionCollect))
	assert.True(t, role.Has(PermissionComment))
	assert.True(t, role.Has(PermissionUpload))
	assert.False(t, role.Has(PermissionModerate))
	assert.False(t, role.Has(PermissionAdminister))
}

func TestLockedRoleHasNoPermissions(t *testing.T) {
	role := Role{Name: RoleLocked, Permissions: RolePermissions()[RoleLocked]}

	for _, p := range []Permission{
		PermissionFollow, PermissionCollect, PermissionComment,
		PermissionUpload, PermissionModerate, PermissionAdminister,
	} {
		assert.False(t, role.Has(p))
	}
}

func TestRoleHierarchy(t *testing.T) {
	perms := RolePermissions()

	moderator := Role{Permissions: perms[RoleModerator]}
	assert.True(t, moderator.Has(PermissionModerate))
	assert.False(t, moderator.Has(PermissionAdminister))

	admin := Role{Permissions: perms[RoleAdministrator]}
	assert.True(t, admin.Has(PermissionModerate))
	assert.True(t, admin.Has(PermissionAdminister))
}

func TestUserCanRequiresRole(t *testing.T) {
	user := User{Role: Role{Permissions: RolePermissions()[RoleUser]}}
	assert.True(t, user.Can(PermissionUpload))
	assert.False(t, user.IsAdmin())

	locked := User{Role: Role{Name: RoleLocked}}
	assert.True(t, locked.IsLocked())
	assert.False(t, locked.Can(PermissionFollow))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Alice", (&User{Username: "alice", Name: "Alice"}).DisplayName())
	assert.Equal(t, "alice", (&User{Username: "alice"}).DisplayName())
}
