package model

import (
	"time"

	"gorm.io/gorm"
)

// File 表示一条文件元数据记录。
// 文件内容本身存放在对象存储中，这里只保留检索所需的key。
type File struct {
	ID         string         `gorm:"type:char(36);primaryKey" json:"id"`
	OwnerID    uint           `gorm:"not null;index" json:"owner_id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	Size       int64          `gorm:"not null" json:"size"`
	MimeType   string         `gorm:"type:varchar(100)" json:"mime_type"`
	StorageKey string         `gorm:"type:varchar(255);not null" json:"-"` // 对象存储中的key，不对外暴露
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
