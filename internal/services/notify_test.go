package services

import (
	"testing"

	"github.com/wangtianxing1010/Album-Wall/internal/db"
	"github.com/wangtianxing1010/Album-Wall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupNotifyDB(t *testing.T) *gorm.DB {
	t.Helper()

	g, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := g.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(g))
	db.DB = g
	return g
}

func makeUser(t *testing.T, g *gorm.DB, username string) *models.User {
	t.Helper()

	var role models.Role
	require.NoError(t, g.Where("name = ?", models.RoleUser).First(&role).Error)

	user := models.User{
		Username: username, Email: username + "@example.com", Password: "x",
		RoleID: role.ID, Confirmed: true, Active: true,

		ReceiveCommentNotifications: true,
		ReceiveFollowNotifications:  true,
		ReceiveCollectNotifications: true,
	}
	require.NoError(t, g.Create(&user).Error)
	return &user
}

func countFor(g *gorm.DB, userID uint) int64 {
	var count int64
	g.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&count)
	return count
}

func TestPushFollowNotification(t *testing.T) {
	g := setupNotifyDB(t)
	actor := makeUser(t, g, "alice")
	receiver := makeUser(t, g, "bob")

	require.NoError(t, PushFollowNotification(g, actor, receiver))
	assert.Equal(t, int64(1), countFor(g, receiver.ID))

	var n models.Notification
	require.NoError(t, g.Where("user_id = ?", receiver.ID).First(&n).Error)
	assert.Equal(t, models.NotificationTypeFollow, n.Type)
	assert.Equal(t, actor.ID, *n.ActorID)
	assert.False(t, n.IsRead)
}

func TestPushNotificationSkipsSelf(t *testing.T) {
	g := setupNotifyDB(t)
	user := makeUser(t, g, "alice")

	require.NoError(t, PushFollowNotification(g, user, user))
	require.NoError(t, PushCollectNotification(g, user, 1, user))
	require.NoError(t, PushCommentNotification(g, user, 1, user))
	assert.Equal(t, int64(0), countFor(g, user.ID))
}

func TestPushNotificationRespectsPreferences(t *testing.T) {
	g := setupNotifyDB(t)
	actor := makeUser(t, g, "alice")
	receiver := makeUser(t, g, "bob")
	receiver.ReceiveFollowNotifications = false
	receiver.ReceiveCollectNotifications = false
	receiver.ReceiveCommentNotifications = false

	require.NoError(t, PushFollowNotification(g, actor, receiver))
	require.NoError(t, PushCollectNotification(g, actor, 1, receiver))
	require.NoError(t, PushCommentNotification(g, actor, 1, receiver))
	require.NoError(t, PushReplyNotification(g, actor, 1, receiver))
	assert.Equal(t, int64(0), countFor(g, receiver.ID))
}

func TestPushSystemNotificationIgnoresPreferences(t *testing.T) {
	g := setupNotifyDB(t)
	receiver := makeUser(t, g, "bob")
	receiver.ReceiveCommentNotifications = false

	require.NoError(t, PushSystemNotification(g, receiver.ID, "Your account has been locked."))
	assert.Equal(t, int64(1), countFor(g, receiver.ID))

	var n models.Notification
	require.NoError(t, g.Where("user_id = ?", receiver.ID).First(&n).Error)
	assert.Equal(t, models.NotificationTypeSystem, n.Type)
	assert.Nil(t, n.ActorID)
}
