package models

// Tag 按名称去重,最后一张关联照片移除后自动删除
type Tag struct {
	ID     uint    `gorm:"primaryKey" json:"id"`
	Name   string  `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Photos []Photo `gorm:"many2many:photo_tags;" json:"-"`

	// 非数据库字段,标签云排序用
	PhotoCount int64 `gorm:"-" json:"photo_count"`
}
