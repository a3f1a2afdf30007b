package model

import (
	"time"
)

// 审计动作的封闭集合
const (
	AuditActionFileUpload   = "file.upload"
	AuditActionFileDownload = "file.download"
	AuditActionFileRename   = "file.rename"
	AuditActionFileDelete   = "file.delete"

	AuditActionShareCreate = "share.create"
	AuditActionShareRevoke = "share.revoke"
	AuditActionShareAccess = "share.access"
	// 无效/过期/已撤销/次数用尽的访问尝试统一记录为该动作，
	// 具体原因放在Details中
	AuditActionShareDenied = "share.access_denied"
)

// ValidAuditAction 校验动作是否属于封闭集合
func ValidAuditAction(action string) bool {
	switch action {
	case AuditActionFileUpload, AuditActionFileDownload,
		AuditActionFileRename, AuditActionFileDelete,
		AuditActionShareCreate, AuditActionShareRevoke,
		AuditActionShareAccess, AuditActionShareDenied:
		return true
	}
	return false
}

// AuditLog 表示一条只追加的审计记录。
// 仓库层不提供任何更新或删除操作。
type AuditLog struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// 可为空：比如使用了无法解析到任何记录的token的访问尝试
	FileID *string `gorm:"type:char(36);index:idx_audit_file_time,priority:1" json:"file_id,omitempty"`
	Action string  `gorm:"type:varchar(30);not null" json:"action"`
	// 可为空：匿名/公开访问没有已认证身份
	ActorID *uint `gorm:"index" json:"actor_id,omitempty"`
	// 写入时冗余用户名快照，用户改名或注销后历史记录依然可读
	ActorName string `gorm:"type:varchar(30)" json:"actor_name,omitempty"`
	IPAddress string `gorm:"type:varchar(45)" json:"ip_address"`
	// 结构化负载，内容随Action不同而不同，序列化为JSON存储
	Details   string    `gorm:"type:json" json:"details,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_audit_file_time,priority:2" json:"created_at"`
}
