package models

// Permission 能力位掩码,角色由若干位组合而成
type Permission uint

const (
	PermissionFollow Permission = 1 << iota
	PermissionCollect
	PermissionComment
	PermissionUpload
	PermissionModerate
	PermissionAdminister
)

// 固定角色集,启动时播种
const (
	RoleLocked        = "Locked"
	RoleUser          = "User"
	RoleModerator     = "Moderator"
	RoleAdministrator = "Administrator"
)

type Role struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"size:30;uniqueIndex;not null" json:"name"`
	Permissions Permission `gorm:"not null" json:"permissions"`
}

// Has 检查角色是否具备某能力位
func (r *Role) Has(p Permission) bool {
	return r.Permissions&p == p
}

// RolePermissions 各角色的能力位定义,Locked 不保留任何能力
func RolePermissions() map[string]Permission {
	return map[string]Permission{
		RoleLocked: 0,
		RoleUser: PermissionFollow | PermissionCollect |
			PermissionComment | PermissionUpload,
		RoleModerator: PermissionFollow | PermissionCollect |
			PermissionComment | PermissionUpload | PermissionModerate,
		RoleAdministrator: PermissionFollow | PermissionCollect |
			PermissionComment | PermissionUpload | PermissionModerate |
			PermissionAdminister,
	}
}
