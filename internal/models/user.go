package models

import (
	"time"
)

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"size:30;uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"` // Hash
	Name     string `gorm:"size:30" json:"name"`
	Location string `gorm:"size:50" json:"location"`
	Website  string `gorm:"size:255" json:"website"`
	Bio      string `gorm:"size:200" json:"bio"` // 个人简介
	Avatar   string `gorm:"size:64" json:"avatar"`

	RoleID uint `gorm:"not null;index" json:"role_id"`
	Role   Role `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"role"`

	Confirmed  bool   `gorm:"default:false" json:"confirmed"` // 邮箱是否已确认
	Active     bool   `gorm:"default:true" json:"active"`     // false 为封禁,无法登录
	VerifyCode string `gorm:"size:20" json:"-"`               // 验证码(确认/重置/换绑通用)

	// 通知偏好,按通道独立开关
	ReceiveCommentNotifications bool `gorm:"default:true" json:"receive_comment_notifications"`
	ReceiveFollowNotifications  bool `gorm:"default:true" json:"receive_follow_notifications"`
	ReceiveCollectNotifications bool `gorm:"default:true" json:"receive_collect_notifications"`

	PublicCollections bool `gorm:"default:true" json:"public_collections"` // 收藏列表是否公开

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// No DeletedAt: account deletion is a hard delete with explicit cascades
}

// Can 权限检查,要求 Role 已 Preload
func (u *User) Can(p Permission) bool {
	return u.Role.Has(p)
}

func (u *User) IsAdmin() bool {
	return u.Can(PermissionAdminister)
}

// CanModerate 模板里做管理入口判断用
func (u *User) CanModerate() bool {
	return u.Can(PermissionModerate)
}

// IsLocked 账号被锁定时角色切换为 Locked
func (u *User) IsLocked() bool {
	return u.Role.Name == RoleLocked
}

// DisplayName 优先展示昵称,否则用户名
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
