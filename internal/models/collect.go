package models

import (
	"time"
)

// Collect 收藏边 - 用户收藏照片,(user, photo) 唯一
type Collect struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_photo" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	PhotoID   uint      `gorm:"not null;index;uniqueIndex:idx_user_photo" json:"photo_id"`
	Photo     Photo     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"photo"`
	CreatedAt time.Time `json:"created_at"`
}
