package service

import (
	"encoding/json"
	"fmt"

	"filetrace/internal/apperr"
	"filetrace/internal/model"
	"filetrace/internal/repository"
	"filetrace/pkg/logger"

	"go.uber.org/zap"
)

// AuditService 负责审计记录的写入与查询
type AuditService struct {
	auditRepo *repository.AuditLogRepository
	fileRepo  *repository.FileRepository
	userRepo  *repository.UserRepository
}

func NewAuditService(
	auditRepo *repository.AuditLogRepository,
	fileRepo *repository.FileRepository,
	userRepo *repository.UserRepository,
) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		fileRepo:  fileRepo,
		userRepo:  userRepo,
	}
}

// Record 写入一条审计记录。
// actorID非空时会在写入点冗余一份用户名快照，
// 之后用户改名或注销不影响历史记录的可读性。
func (s *AuditService) Record(action string, fileID *string, actorID *uint, ip string, details map[string]interface{}) error {
	entry := &model.AuditLog{
		FileID:    fileID,
		Action:    action,
		ActorID:   actorID,
		IPAddress: ip,
	}

	if actorID != nil {
		if user, err := s.userRepo.FindByID(*actorID); err == nil && user != nil {
			entry.ActorName = user.Username
		}
	}

	if len(details) > 0 {
		payload, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to marshal audit details: %w", err)
		}
		entry.Details = string(payload)
	}

	return s.auditRepo.Create(entry)
}

// RecordBestEffort 与Record相同，但失败时只记录警告日志。
// 用于访问计数已经成功提交之后的审计写入：此时审计缺口是可容忍的，
// 不应让已授权的访问因此失败。
func (s *AuditService) RecordBestEffort(action string, fileID *string, actorID *uint, ip string, details map[string]interface{}) {
	if err := s.Record(action, fileID, actorID, ip, details); err != nil {
		logger.L.Warn("Failed to append audit entry",
			zap.String("action", action),
			zap.Error(err))
	}
}

// ListForFile 列出文件的审计记录，仅文件所有者可见
func (s *AuditService) ListForFile(ownerID uint, fileID string, limit, offset int) ([]model.AuditLog, error) {
	file, err := s.fileRepo.FindByIDAndOwner(fileID, ownerID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, apperr.ErrNotFound
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.auditRepo.FindByFile(fileID, limit, offset)
}
