package repository

import (
	"filetrace/internal/apperr"
	"filetrace/internal/model"
	"filetrace/pkg/db"

	"gorm.io/gorm"
)

// AuditLogRepository 只追加的审计记录存储。
// 有意不提供任何Update/Delete方法。
type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository() *AuditLogRepository {
	return &AuditLogRepository{db: db.DB}
}

// 追加一条审计记录，动作必须属于封闭集合
func (r *AuditLogRepository) Create(entry *model.AuditLog) error {
	if !model.ValidAuditAction(entry.Action) {
		return apperr.Validation("unknown audit action: %s", entry.Action)
	}
	return r.db.Create(entry).Error
}

// 查询文件的审计记录，最新的在前，时间相同时按插入顺序倒排
func (r *AuditLogRepository) FindByFile(fileID string, limit, offset int) ([]model.AuditLog, error) {
	var entries []model.AuditLog
	err := r.db.Where("file_id = ?", fileID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}
