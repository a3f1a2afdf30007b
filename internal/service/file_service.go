package service

import (
	"context"
	"fmt"

	"filetrace/internal/apperr"
	"filetrace/internal/model"
	"filetrace/internal/repository"
	"filetrace/pkg/logger"
	"filetrace/pkg/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FileService 管理文件元数据与对象存储的配合。
// 文件内容从不经过本服务，客户端通过预签名URL直连对象存储。
type FileService struct {
	fileRepo  *repository.FileRepository
	shareRepo *repository.ShareGrantRepository
	storage   storage.ObjectStorage
	audit     *AuditService
}

func NewFileService(
	fileRepo *repository.FileRepository,
	shareRepo *repository.ShareGrantRepository,
	store storage.ObjectStorage,
	audit *AuditService,
) *FileService {
	return &FileService{
		fileRepo:  fileRepo,
		shareRepo: shareRepo,
		storage:   store,
		audit:     audit,
	}
}

// 创建文件的请求
type CreateFileRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Size     int64  `json:"size" binding:"required,min=1"`
	MimeType string `json:"mime_type"`
}

// CreateFile 登记文件元数据并返回上传用的预签名URL
func (s *FileService) CreateFile(ctx context.Context, ownerID uint, req CreateFileRequest, ip string) (*model.File, string, error) {
	id := uuid.NewString()
	file := &model.File{
		ID:         id,
		OwnerID:    ownerID,
		Name:       req.Name,
		Size:       req.Size,
		MimeType:   req.MimeType,
		StorageKey: fmt.Sprintf("files/%d/%s", ownerID, id),
	}

	if err := s.fileRepo.Create(file); err != nil {
		return nil, "", fmt.Errorf("failed to create file record: %w", err)
	}

	uploadURL, err := s.storage.PresignUpload(ctx, file.StorageKey, req.MimeType)
	if err != nil {
		return nil, "", fmt.Errorf("failed to presign upload: %w", err)
	}

	if err := s.audit.Record(model.AuditActionFileUpload, &file.ID, &ownerID, ip, map[string]interface{}{
		"name": file.Name,
		"size": file.Size,
	}); err != nil {
		logger.L.Warn("Failed to audit file upload", zap.String("fileID", file.ID), zap.Error(err))
	}

	return file, uploadURL, nil
}

// ListFiles 列出用户的全部文件
func (s *FileService) ListFiles(ownerID uint) ([]model.File, error) {
	return s.fileRepo.FindByOwner(ownerID)
}

// GetFile 获取用户的单个文件
func (s *FileService) GetFile(ownerID uint, fileID string) (*model.File, error) {
	file, err := s.fileRepo.FindByIDAndOwner(fileID, ownerID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, apperr.ErrNotFound
	}
	return file, nil
}

// DownloadFile 为文件所有者生成下载用的预签名URL
func (s *FileService) DownloadFile(ctx context.Context, ownerID uint, fileID string, ip string) (string, error) {
	file, err := s.GetFile(ownerID, fileID)
	if err != nil {
		return "", err
	}

	url, err := s.storage.PresignDownload(ctx, file.StorageKey, file.Name)
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}

	s.audit.RecordBestEffort(model.AuditActionFileDownload, &file.ID, &ownerID, ip, nil)
	return url, nil
}

// RenameFile 重命名文件
func (s *FileService) RenameFile(ownerID uint, fileID string, newName string, ip string) error {
	if newName == "" || len(newName) > 255 {
		return apperr.Validation("invalid file name")
	}

	file, err := s.GetFile(ownerID, fileID)
	if err != nil {
		return err
	}

	if err := s.fileRepo.Rename(fileID, newName); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	if err := s.audit.Record(model.AuditActionFileRename, &file.ID, &ownerID, ip, map[string]interface{}{
		"from": file.Name,
		"to":   newName,
	}); err != nil {
		logger.L.Warn("Failed to audit file rename", zap.String("fileID", fileID), zap.Error(err))
	}
	return nil
}

// DeleteFile 删除文件：先撤销全部分享，再删对象存储内容，最后删元数据。
// 分享先被切断，保证删除过程中的访问不会命中仍然有效的授权。
func (s *FileService) DeleteFile(ctx context.Context, ownerID uint, fileID string, ip string) error {
	file, err := s.GetFile(ownerID, fileID)
	if err != nil {
		return err
	}

	revoked, err := s.shareRepo.RevokeAllForFile(fileID)
	if err != nil {
		return fmt.Errorf("failed to revoke shares before delete: %w", err)
	}

	if err := s.storage.DeleteObject(ctx, file.StorageKey); err != nil {
		// 对象存储删除失败不阻塞元数据删除，留给后台清理
		logger.L.Warn("Failed to delete object from storage",
			zap.String("key", file.StorageKey), zap.Error(err))
	}

	if err := s.fileRepo.Delete(fileID); err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	if err := s.audit.Record(model.AuditActionFileDelete, &file.ID, &ownerID, ip, map[string]interface{}{
		"name":           file.Name,
		"shares_revoked": revoked,
	}); err != nil {
		logger.L.Warn("Failed to audit file delete", zap.String("fileID", fileID), zap.Error(err))
	}
	return nil
}
