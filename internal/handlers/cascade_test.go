package handlers

import (
	"testing"

	"github.com/wangtianxing1010/Album-Wall/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDeletePhotoCascade(t *testing.T) {
	g := setupTestDB(t)
	owner := createTestUser(t, g, "owner")
	commenter := createTestUser(t, g, "commenter")
	photo := createTestPhoto(t, g, owner)
	other := createTestPhoto(t, g, owner)

	// 评论 + 回复
	comment := models.Comment{PhotoID: photo.ID, UserID: commenter.ID, Body: "nice"}
	require.NoError(t, g.Create(&comment).Error)
	reply := models.Comment{PhotoID: photo.ID, UserID: owner.ID, Body: "thanks", ParentID: &comment.ID}
	require.NoError(t, g.Create(&reply).Error)

	// 收藏边
	require.NoError(t, g.Create(&models.Collect{UserID: commenter.ID, PhotoID: photo.ID}).Error)

	// 一个独占标签,一个与另一张照片共享的标签
	soloTag := models.Tag{Name: "sunset"}
	sharedTag := models.Tag{Name: "travel"}
	require.NoError(t, g.Create(&soloTag).Error)
	require.NoError(t, g.Create(&sharedTag).Error)
	require.NoError(t, g.Model(photo).Association("Tags").Append(&soloTag, &sharedTag))
	require.NoError(t, g.Model(other).Association("Tags").Append(&sharedTag))

	require.NoError(t, g.Transaction(func(tx *gorm.DB) error {
		return deletePhotoCascade(tx, photo)
	}))

	var count int64
	g.Model(&models.Photo{}).Where("id = ?", photo.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	g.Model(&models.Comment{}).Where("photo_id = ?", photo.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	g.Model(&models.Collect{}).Where("photo_id = ?", photo.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	// 独占标签成为孤儿被删除,共享标签保留
	g.Model(&models.Tag{}).Where("id = ?", soloTag.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	g.Model(&models.Tag{}).Where("id = ?", sharedTag.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	// 另一张照片不受影响
	g.Model(&models.Photo{}).Where("id = ?", other.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDeleteUserCascade(t *testing.T) {
	g := setupTestDB(t)
	user := createTestUser(t, g, "leaver")
	friend := createTestUser(t, g, "friend")

	photo := createTestPhoto(t, g, user)
	friendPhoto := createTestPhoto(t, g, friend)

	// 双向关注
	require.NoError(t, g.Create(&models.Follow{FollowerID: user.ID, FollowedID: friend.ID}).Error)
	require.NoError(t, g.Create(&models.Follow{FollowerID: friend.ID, FollowedID: user.ID}).Error)

	// 自己发出的评论、收藏,以及触发产生的通知
	require.NoError(t, g.Create(&models.Comment{PhotoID: friendPhoto.ID, UserID: user.ID, Body: "hi"}).Error)
	require.NoError(t, g.Create(&models.Collect{UserID: user.ID, PhotoID: friendPhoto.ID}).Error)
	actorID := user.ID
	require.NoError(t, g.Create(&models.Notification{
		UserID: friend.ID, ActorID: &actorID,
		Type: models.NotificationTypeFollow, Message: "followed",
	}).Error)

	require.NoError(t, g.Transaction(func(tx *gorm.DB) error {
		return deleteUserCascade(tx, user)
	}))

	var count int64
	g.Model(&models.User{}).Where("id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	g.Model(&models.Photo{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)
	assert.NotEqual(t, uint(0), photo.ID)

	g.Model(&models.Comment{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	g.Model(&models.Follow{}).Where("follower_id = ? OR followed_id = ?", user.ID, user.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	g.Model(&models.Collect{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	// 由该用户触发的通知也被清理
	g.Model(&models.Notification{}).Where("actor_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	// 其他用户的数据保留
	g.Model(&models.Photo{}).Where("id = ?", friendPhoto.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}
