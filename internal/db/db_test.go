package db

import (
	"testing"

	"github.com/wangtianxing1010/Album-Wall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	g, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := g.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return g
}

func TestMigrateSeedsFixedRoles(t *testing.T) {
	g := openTestDB(t)
	require.NoError(t, Migrate(g))

	var roles []models.Role
	require.NoError(t, g.Find(&roles).Error)
	assert.Len(t, roles, 4)

	byName := map[string]models.Role{}
	for _, r := range roles {
		byName[r.Name] = r
	}
	assert.Equal(t, models.Permission(0), byName[models.RoleLocked].Permissions)
	admin := byName[models.RoleAdministrator]
	assert.True(t, admin.Has(models.PermissionAdminister))
	moderator := byName[models.RoleModerator]
	assert.True(t, moderator.Has(models.PermissionModerate))
	user := byName[models.RoleUser]
	assert.False(t, user.Has(models.PermissionModerate))
}

func TestMigrateIsIdempotent(t *testing.T) {
	g := openTestDB(t)
	require.NoError(t, Migrate(g))
	require.NoError(t, Migrate(g))

	var count int64
	g.Model(&models.Role{}).Count(&count)
	assert.Equal(t, int64(4), count)
}

func TestMigrateRepairsDriftedPermissions(t *testing.T) {
	g := openTestDB(t)
	require.NoError(t, Migrate(g))

	// 手工篡改权限掩码,重跑迁移后应当被修正
	require.NoError(t, g.Model(&models.Role{}).
		Where("name = ?", models.RoleUser).
		Update("permissions", models.PermissionAdminister).Error)

	require.NoError(t, Migrate(g))

	var role models.Role
	require.NoError(t, g.Where("name = ?", models.RoleUser).First(&role).Error)
	assert.Equal(t, models.RolePermissions()[models.RoleUser], role.Permissions)
}
