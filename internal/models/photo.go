package models

import (
	"time"
)

type Photo struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	User        User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Description string `gorm:"size:500" json:"description"`

	// 原图及派生尺寸(_s 缩略图 / _m 展示图),派生由后台 worker 回填
	Filename  string `gorm:"size:64;not null" json:"filename"`
	FilenameS string `gorm:"size:64" json:"filename_s"`
	FilenameM string `gorm:"size:64" json:"filename_m"`

	Flag           int  `gorm:"default:0" json:"flag"` // 被举报次数
	CommentAllowed bool `gorm:"default:true" json:"comment_allowed"`

	Tags []Tag `gorm:"many2many:photo_tags;" json:"tags"`

	CreatedAt time.Time `json:"created_at"`

	// 非数据库字段,列表查询时填充
	CommentCount int64 `gorm:"-" json:"comment_count"`
	CollectCount int64 `gorm:"-" json:"collect_count"`
}

// DisplayFilename 展示图优先用中尺寸派生图
func (p *Photo) DisplayFilename() string {
	if p.FilenameM != "" {
		return p.FilenameM
	}
	return p.Filename
}

// ThumbFilename 列表缩略图
func (p *Photo) ThumbFilename() string {
	if p.FilenameS != "" {
		return p.FilenameS
	}
	return p.Filename
}
