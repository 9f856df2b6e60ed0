package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeFollow  NotificationType = "follow"
	NotificationTypeCollect NotificationType = "collect"
	NotificationTypeComment NotificationType = "comment"
	NotificationTypeReply   NotificationType = "reply"
	NotificationTypeSystem  NotificationType = "system"
)

// Notification 仅作为关注/收藏/评论动作的副作用产生,只对接收者可见
type Notification struct {
	ID      uint             `gorm:"primaryKey" json:"id"`
	UserID  uint             `gorm:"not null;index" json:"user_id"` // Receiver
	User    User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ActorID *uint            `gorm:"index" json:"actor_id"` // 触发动作的用户,系统通知为空
	Actor   User             `gorm:"foreignKey:ActorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"actor"`
	Type    NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Message string           `gorm:"type:text;not null" json:"message"` // 支持 HTML 链接

	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
