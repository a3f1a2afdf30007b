package service

import (
	"context"
	"fmt"
	"time"

	"filetrace/internal/apperr"
	"filetrace/internal/model"
	"filetrace/internal/repository"
	"filetrace/pkg/storage"
)

// 审计记录中保留的拒绝原因。只进审计，从不返回给调用方。
const (
	denyReasonNotFound  = "not_found"
	denyReasonRevoked   = "revoked"
	denyReasonExpired   = "expired"
	denyReasonExhausted = "exhausted"
)

// ShareAccessService 是token访问的唯一入口：
// 一次调用要么产生一次授权访问（恰好一次计数自增+一条访问审计），
// 要么产生一次拒绝（恰好一条拒绝审计）。
type ShareAccessService struct {
	shareRepo *repository.ShareGrantRepository
	fileRepo  *repository.FileRepository
	storage   storage.ObjectStorage
	audit     *AuditService
}

func NewShareAccessService(
	shareRepo *repository.ShareGrantRepository,
	fileRepo *repository.FileRepository,
	store storage.ObjectStorage,
	audit *AuditService,
) *ShareAccessService {
	return &ShareAccessService{
		shareRepo: shareRepo,
		fileRepo:  fileRepo,
		storage:   store,
		audit:     audit,
	}
}

// AccessResult 一次成功访问的结果
type AccessResult struct {
	FileID      string `json:"file_id"`
	FileName    string `json:"file_name"`
	DownloadURL string `json:"download_url"`
}

// SharePreview token预览返回的元数据，不触发任何计数
type SharePreview struct {
	FileName          string     `json:"file_name"`
	FileSize          int64      `json:"file_size"`
	MimeType          string     `json:"mime_type"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	RemainingAccesses *int       `json:"remaining_accesses"`
}

// AccessViaToken 消费一次分享访问。
// 流程：查找 → 有效性判定 → 原子自增 → 审计 → 生成下载URL。
// 判定与自增之间存在一个窄窗口：两个并发请求可能都看到计数未达上限而
// 双双放行，上限因此轻微超出。这是有意的取舍，保证可用性和简单性，
// 不引入事务或CAS重试。
// 任何拒绝（token不存在/已撤销/已过期/次数用尽）对调用方表现一致，
// 具体原因只进审计。
func (s *ShareAccessService) AccessViaToken(ctx context.Context, token string, actorID *uint, ip string) (*AccessResult, error) {
	grant, err := s.shareRepo.FindByToken(token)
	if err != nil {
		return nil, apperr.Transient(err)
	}
	if grant == nil {
		// 解析不到任何记录，审计里没有可关联的文件
		s.audit.RecordBestEffort(model.AuditActionShareDenied, nil, actorID, ip, map[string]interface{}{
			"reason": denyReasonNotFound,
		})
		return nil, apperr.ErrShareDenied
	}

	if !grant.IsValid(time.Now()) {
		s.audit.RecordBestEffort(model.AuditActionShareDenied, &grant.FileID, actorID, ip, map[string]interface{}{
			"reason":   denyReason(grant),
			"share_id": grant.ID,
		})
		return nil, apperr.ErrShareDenied
	}

	file, err := s.fileRepo.FindByID(grant.FileID)
	if err != nil {
		return nil, apperr.Transient(err)
	}
	if file == nil {
		// 文件已被删除但分享记录还在生效，视作无效链接
		s.audit.RecordBestEffort(model.AuditActionShareDenied, &grant.FileID, actorID, ip, map[string]interface{}{
			"reason":   denyReasonNotFound,
			"share_id": grant.ID,
		})
		return nil, apperr.ErrShareDenied
	}

	// 计数自增由存储层原子完成，失败时访问不放行
	if err := s.shareRepo.IncrementAccess(grant.ID); err != nil {
		return nil, apperr.Transient(err)
	}

	// 自增已经提交，审计缺口在此之后是可容忍的，访问不回滚
	s.audit.RecordBestEffort(model.AuditActionShareAccess, &grant.FileID, actorID, ip, map[string]interface{}{
		"share_id": grant.ID,
	})

	url, err := s.storage.PresignDownload(ctx, file.StorageKey, file.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to presign download: %w", err)
	}

	return &AccessResult{
		FileID:      file.ID,
		FileName:    file.Name,
		DownloadURL: url,
	}, nil
}

// ResolveToken 预览分享元数据。
// 与AccessViaToken使用同一套有效性判定，但从不自增计数，也不写审计。
func (s *ShareAccessService) ResolveToken(token string) (*SharePreview, error) {
	grant, err := s.shareRepo.FindByToken(token)
	if err != nil {
		return nil, apperr.Transient(err)
	}
	if grant == nil || !grant.IsValid(time.Now()) {
		return nil, apperr.ErrShareDenied
	}

	file, err := s.fileRepo.FindByID(grant.FileID)
	if err != nil {
		return nil, apperr.Transient(err)
	}
	if file == nil {
		return nil, apperr.ErrShareDenied
	}

	return &SharePreview{
		FileName:          file.Name,
		FileSize:          file.Size,
		MimeType:          file.MimeType,
		ExpiresAt:         grant.ExpiresAt,
		RemainingAccesses: grant.RemainingAccesses(),
	}, nil
}

// 按优先级归类拒绝原因，仅用于审计
func denyReason(g *model.ShareGrant) string {
	if !g.IsActive {
		return denyReasonRevoked
	}
	if g.ExpiresAt != nil && !time.Now().Before(*g.ExpiresAt) {
		return denyReasonExpired
	}
	return denyReasonExhausted
}
