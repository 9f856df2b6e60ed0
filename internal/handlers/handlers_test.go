package handlers

import (
	"testing"

	"github.com/wangtianxing1010/Album-Wall/internal/db"
	"github.com/wangtianxing1010/Album-Wall/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 每个测试用独立的内存库,建表并播种角色
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	g, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// 内存库随连接存在,连接池收紧到单连接
	sqlDB, err := g.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(g))

	db.DB = g
	return g
}

// createTestUser 创建已确认的普通用户
func createTestUser(t *testing.T, g *gorm.DB, username string) *models.User {
	t.Helper()
	return createTestUserWithRole(t, g, username, models.RoleUser)
}

func createTestUserWithRole(t *testing.T, g *gorm.DB, username, roleName string) *models.User {
	t.Helper()

	var role models.Role
	require.NoError(t, g.Where("name = ?", roleName).First(&role).Error)

	user := models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "hashed",
		RoleID:    role.ID,
		Confirmed: true,
		Active:    true,

		ReceiveCommentNotifications: true,
		ReceiveFollowNotifications:  true,
		ReceiveCollectNotifications: true,
		PublicCollections:           true,
	}
	require.NoError(t, g.Create(&user).Error)
	require.NoError(t, g.Preload("Role").First(&user, user.ID).Error)
	return &user
}

func createTestPhoto(t *testing.T, g *gorm.DB, owner *models.User) *models.Photo {
	t.Helper()

	photo := models.Photo{
		UserID:         owner.ID,
		Filename:       "test.jpg",
		Description:    "a test photo",
		CommentAllowed: true,
	}
	require.NoError(t, g.Create(&photo).Error)
	require.NoError(t, g.Preload("User").First(&photo, photo.ID).Error)
	return &photo
}

func notificationCount(t *testing.T, g *gorm.DB, userID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, g.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&count).Error)
	return count
}
