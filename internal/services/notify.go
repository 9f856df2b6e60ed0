package services

import (
	"fmt"

	"github.com/wangtianxing1010/Album-Wall/internal/models"

	"gorm.io/gorm"
)

// 通知推送 - 关注/收藏/评论的副作用,在触发请求的事务内同步写入。
// 两条门禁统一在这里收口:动作发起者不给自己发通知;接收者按通道开关过滤。

// PushFollowNotification 新关注通知
func PushFollowNotification(tx *gorm.DB, follower, receiver *models.User) error {
	if follower.ID == receiver.ID || !receiver.ReceiveFollowNotifications {
		return nil
	}
	message := fmt.Sprintf(`User <a href="/user/%s">%s</a> followed you.`,
		follower.Username, follower.DisplayName())
	return push(tx, receiver.ID, follower.ID, models.NotificationTypeFollow, message)
}

// PushCollectNotification 照片被收藏通知
func PushCollectNotification(tx *gorm.DB, collector *models.User, photoID uint, receiver *models.User) error {
	if collector.ID == receiver.ID || !receiver.ReceiveCollectNotifications {
		return nil
	}
	message := fmt.Sprintf(`User <a href="/user/%s">%s</a> collected your <a href="/photo/%d">photo</a>.`,
		collector.Username, collector.DisplayName(), photoID)
	return push(tx, receiver.ID, collector.ID, models.NotificationTypeCollect, message)
}

// PushCommentNotification 照片有新评论通知(发给照片作者)
func PushCommentNotification(tx *gorm.DB, actor *models.User, photoID uint, receiver *models.User) error {
	if actor.ID == receiver.ID || !receiver.ReceiveCommentNotifications {
		return nil
	}
	message := fmt.Sprintf(`<a href="/photo/%d#comments">This photo</a> has a new comment.`, photoID)
	return push(tx, receiver.ID, actor.ID, models.NotificationTypeComment, message)
}

// PushReplyNotification 评论被回复通知(发给被回复的评论作者)
func PushReplyNotification(tx *gorm.DB, actor *models.User, photoID uint, receiver *models.User) error {
	if actor.ID == receiver.ID || !receiver.ReceiveCommentNotifications {
		return nil
	}
	message := fmt.Sprintf(`User <a href="/user/%s">%s</a> replied to your comment on <a href="/photo/%d#comments">this photo</a>.`,
		actor.Username, actor.DisplayName(), photoID)
	return push(tx, receiver.ID, actor.ID, models.NotificationTypeReply, message)
}

// PushSystemNotification 管理动作产生的系统通知,无 Actor,不受偏好开关限制
func PushSystemNotification(tx *gorm.DB, receiverID uint, message string) error {
	notification := models.Notification{
		UserID:  receiverID,
		Type:    models.NotificationTypeSystem,
		Message: message,
	}
	if err := tx.Create(&notification).Error; err != nil {
		return err
	}
	InvalidateUnreadCount(receiverID)
	return nil
}

func push(tx *gorm.DB, receiverID, actorID uint, typ models.NotificationType, message string) error {
	notification := models.Notification{
		UserID:  receiverID,
		ActorID: &actorID,
		Type:    typ,
		Message: message,
	}
	if err := tx.Create(&notification).Error; err != nil {
		return err
	}
	// 计数缓存失效即可,下次读取时重算;事务回滚时多失效一次无害
	InvalidateUnreadCount(receiverID)
	return nil
}
