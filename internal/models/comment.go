package models

import (
	"time"
)

type Comment struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	PhotoID uint   `gorm:"not null;index" json:"photo_id"`
	Photo   Photo  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"photo"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Body    string `gorm:"type:text;not null" json:"body"`

	// 回复目标,删除父评论时级联删除回复
	ParentID *uint    `gorm:"index" json:"parent_id"`
	Parent   *Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"parent"`

	Flag      int       `gorm:"default:0" json:"flag"` // 被举报次数
	CreatedAt time.Time `json:"created_at"`
}
