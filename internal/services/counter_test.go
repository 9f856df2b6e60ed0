package services

import (
	"testing"

	"github.com/wangtianxing1010/Album-Wall/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnreadCountWithoutRedis(t *testing.T) {
	g := setupNotifyDB(t)
	SetRedisClient(nil)
	user := makeUser(t, g, "alice")

	require.NoError(t, g.Create(&models.Notification{
		UserID: user.ID, Type: models.NotificationTypeSystem, Message: "m",
	}).Error)

	assert.Equal(t, int64(1), UnreadCount(user.ID))
}

func TestUnreadCountCachesInRedis(t *testing.T) {
	g := setupNotifyDB(t)
	mr := miniredis.RunT(t)
	SetRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer SetRedisClient(nil)

	user := makeUser(t, g, "alice")
	require.NoError(t, g.Create(&models.Notification{
		UserID: user.ID, Type: models.NotificationTypeSystem, Message: "m",
	}).Error)

	assert.Equal(t, int64(1), UnreadCount(user.ID))

	// 第二条写入后缓存未失效前仍返回旧值
	require.NoError(t, g.Create(&models.Notification{
		UserID: user.ID, Type: models.NotificationTypeSystem, Message: "m2",
	}).Error)
	assert.Equal(t, int64(1), UnreadCount(user.ID))

	// 失效后重算
	InvalidateUnreadCount(user.ID)
	assert.Equal(t, int64(2), UnreadCount(user.ID))
}

func TestInvalidateUnreadCountNoRedis(t *testing.T) {
	SetRedisClient(nil)
	// 没有缓存后端时应当直接是 no-op
	InvalidateUnreadCount(42)
}
