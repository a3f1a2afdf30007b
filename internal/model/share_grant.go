package model

import (
	"time"

	"gorm.io/gorm"
)

// 分享类型：link为持有token即可访问的匿名链接，user为绑定到指定用户的分享
const (
	ShareKindLink = "link"
	ShareKindUser = "user"
)

// ShareGrant 表示一条文件分享授权记录。
// 两种变体共用一张表，由Kind区分：
//   - link: Token非空，RecipientID为空
//   - user: RecipientID非空，Token为空
type ShareGrant struct {
	gorm.Model
	FileID    string `gorm:"type:char(36);not null;index"`
	GrantorID uint   `gorm:"not null;index"` // 创建分享的用户
	Kind      string `gorm:"type:varchar(10);not null"`
	// 64位小写十六进制的不可猜测令牌，仅link分享使用，是公开访问的唯一查找键
	Token       *string `gorm:"type:char(64);uniqueIndex"`
	RecipientID *uint   `gorm:"index"` // 仅user分享使用
	// 二者至少其一必须设置：无任何限制且仅靠手动撤销的分享不被允许
	ExpiresAt      *time.Time
	MaxAccessCount *int
	// 成功访问计数，只增不减，由存储层原子自增维护
	AccessCount int  `gorm:"not null;default:0"`
	IsActive    bool `gorm:"not null;default:true"` // false表示已显式撤销（软撤销，记录保留）
}

// IsValid 判断分享在now时刻是否仍然有效。
// 纯函数，预览和正式访问共用同一套判定，避免两处逻辑漂移。
// 过期时刻本身即无效，访问次数达到上限即无效（均为严格不等）。
func (g *ShareGrant) IsValid(now time.Time) bool {
	if !g.IsActive {
		return false
	}
	if g.ExpiresAt != nil && !now.Before(*g.ExpiresAt) {
		return false
	}
	if g.MaxAccessCount != nil && g.AccessCount >= *g.MaxAccessCount {
		return false
	}
	return true
}

// RemainingAccesses 返回剩余可访问次数。
// 未设置次数上限时返回nil；计数超出上限时不出现负值。
func (g *ShareGrant) RemainingAccesses() *int {
	if g.MaxAccessCount == nil {
		return nil
	}
	remaining := *g.MaxAccessCount - g.AccessCount
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}
