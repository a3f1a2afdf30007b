package service

import (
	"fmt"
	"time"

	"filetrace/internal/apperr"
	"filetrace/internal/model"
	"filetrace/internal/repository"
	"filetrace/pkg/config"
	"filetrace/pkg/logger"

	"go.uber.org/zap"
)

// ShareService 处理分享的创建、查询与撤销
type ShareService struct {
	shareRepo *repository.ShareGrantRepository
	fileRepo  *repository.FileRepository
	userRepo  *repository.UserRepository
	audit     *AuditService
}

func NewShareService(
	shareRepo *repository.ShareGrantRepository,
	fileRepo *repository.FileRepository,
	userRepo *repository.UserRepository,
	audit *AuditService,
) *ShareService {
	return &ShareService{
		shareRepo: shareRepo,
		fileRepo:  fileRepo,
		userRepo:  userRepo,
		audit:     audit,
	}
}

// 创建分享的请求。
// ExpirationMinutes和MaxAccessCount至少要提供一个。
type CreateShareRequest struct {
	FileID            string `json:"file_id" binding:"required"`
	Kind              string `json:"kind" binding:"required,oneof=link user"`
	RecipientUsername string `json:"recipient_username"`
	ExpirationMinutes *int   `json:"expiration_minutes"`
	MaxAccessCount    *int   `json:"max_access_count"`
}

// ShareInfo 分享记录的对外视图，附带派生的剩余访问次数
type ShareInfo struct {
	ID                uint       `json:"id"`
	FileID            string     `json:"file_id"`
	Kind              string     `json:"kind"`
	ShareURL          string     `json:"share_url,omitempty"` // 仅link分享
	RecipientID       *uint      `json:"recipient_id,omitempty"`
	RecipientName     string     `json:"recipient_name,omitempty"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	MaxAccessCount    *int       `json:"max_access_count,omitempty"`
	AccessCount       int        `json:"access_count"`
	RemainingAccesses *int       `json:"remaining_accesses"`
	IsActive          bool       `json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
}

// CreateShare 为文件创建link或user分享
func (s *ShareService) CreateShare(ownerID uint, req CreateShareRequest, ip string) (*ShareInfo, error) {
	// 验证文件归属
	file, err := s.fileRepo.FindByIDAndOwner(req.FileID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up file: %w", err)
	}
	if file == nil {
		return nil, apperr.ErrNotFound
	}

	expiresAt, err := resolveExpiration(req.ExpirationMinutes)
	if err != nil {
		return nil, err
	}
	if expiresAt == nil && req.MaxAccessCount == nil {
		return nil, apperr.Validation("share must have an expiration time or an access limit")
	}

	var grant *model.ShareGrant
	var recipientName string

	switch req.Kind {
	case model.ShareKindLink:
		grant, err = s.shareRepo.CreateLinkShare(req.FileID, ownerID, expiresAt, req.MaxAccessCount)
	case model.ShareKindUser:
		if req.RecipientUsername == "" {
			return nil, apperr.Validation("recipient_username is required for user shares")
		}
		recipient, lookupErr := s.userRepo.FindByUsername(req.RecipientUsername)
		if lookupErr != nil {
			return nil, fmt.Errorf("failed to look up recipient: %w", lookupErr)
		}
		if recipient == nil {
			return nil, apperr.Validation("recipient does not exist")
		}
		// 不能分享给自己
		if recipient.ID == ownerID {
			return nil, apperr.Validation("cannot share file with yourself")
		}
		recipientName = recipient.Username
		grant, err = s.shareRepo.CreateUserShare(req.FileID, ownerID, recipient.ID, expiresAt, req.MaxAccessCount)
	default:
		return nil, apperr.Validation("unknown share kind: %s", req.Kind)
	}
	if err != nil {
		return nil, err
	}

	details := map[string]interface{}{"kind": grant.Kind, "share_id": grant.ID}
	if grant.ExpiresAt != nil {
		details["expires_at"] = grant.ExpiresAt
	}
	if grant.MaxAccessCount != nil {
		details["max_access_count"] = *grant.MaxAccessCount
	}
	if err := s.audit.Record(model.AuditActionShareCreate, &grant.FileID, &ownerID, ip, details); err != nil {
		logger.L.Warn("Failed to audit share create", zap.Uint("shareID", grant.ID), zap.Error(err))
	}

	info := toShareInfo(grant)
	info.RecipientName = recipientName
	return &info, nil
}

// ListShares 列出文件的分享。activeOnly为true时只返回当前仍有效的。
func (s *ShareService) ListShares(ownerID uint, fileID string, activeOnly bool) ([]ShareInfo, error) {
	file, err := s.fileRepo.FindByIDAndOwner(fileID, ownerID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, apperr.ErrNotFound
	}

	var grants []model.ShareGrant
	if activeOnly {
		grants, err = s.shareRepo.FindActiveByFile(fileID)
	} else {
		grants, err = s.shareRepo.FindAllByFile(fileID)
	}
	if err != nil {
		return nil, err
	}

	infos := make([]ShareInfo, 0, len(grants))
	for i := range grants {
		info := toShareInfo(&grants[i])
		if grants[i].RecipientID != nil {
			if recipient, err := s.userRepo.FindByID(*grants[i].RecipientID); err == nil && recipient != nil {
				info.RecipientName = recipient.Username
			}
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// RevokeShare 撤销单条分享。幂等，返回实际撤销的行数（0或1）。
func (s *ShareService) RevokeShare(ownerID uint, shareID uint, ip string) (int64, error) {
	grant, err := s.shareRepo.FindByID(shareID)
	if err != nil {
		return 0, err
	}
	if grant == nil || grant.GrantorID != ownerID {
		return 0, apperr.ErrNotFound
	}

	affected, err := s.shareRepo.Revoke(shareID)
	if err != nil {
		return 0, err
	}

	if affected > 0 {
		if err := s.audit.Record(model.AuditActionShareRevoke, &grant.FileID, &ownerID, ip, map[string]interface{}{
			"share_id": shareID,
		}); err != nil {
			logger.L.Warn("Failed to audit share revoke", zap.Uint("shareID", shareID), zap.Error(err))
		}
	}
	return affected, nil
}

// RevokeAllShares 撤销文件的全部生效分享，返回撤销数量
func (s *ShareService) RevokeAllShares(ownerID uint, fileID string, ip string) (int64, error) {
	file, err := s.fileRepo.FindByIDAndOwner(fileID, ownerID)
	if err != nil {
		return 0, err
	}
	if file == nil {
		return 0, apperr.ErrNotFound
	}

	affected, err := s.shareRepo.RevokeAllForFile(fileID)
	if err != nil {
		return 0, err
	}

	if affected > 0 {
		if err := s.audit.Record(model.AuditActionShareRevoke, &fileID, &ownerID, ip, map[string]interface{}{
			"revoked_count": affected,
		}); err != nil {
			logger.L.Warn("Failed to audit bulk revoke", zap.String("fileID", fileID), zap.Error(err))
		}
	}
	return affected, nil
}

// 将分钟数换算为绝对过期时间，并校验在允许范围内（10分钟到1年）
func resolveExpiration(minutes *int) (*time.Time, error) {
	if minutes == nil {
		return nil, nil
	}
	min := config.GlobalConfig.Share.MinExpirationMinutes
	max := config.GlobalConfig.Share.MaxExpirationMinutes
	if *minutes < min || *minutes > max {
		return nil, apperr.Validation("expiration_minutes must be between %d and %d", min, max)
	}
	t := time.Now().Add(time.Duration(*minutes) * time.Minute)
	return &t, nil
}

func toShareInfo(g *model.ShareGrant) ShareInfo {
	info := ShareInfo{
		ID:                g.ID,
		FileID:            g.FileID,
		Kind:              g.Kind,
		RecipientID:       g.RecipientID,
		ExpiresAt:         g.ExpiresAt,
		MaxAccessCount:    g.MaxAccessCount,
		AccessCount:       g.AccessCount,
		RemainingAccesses: g.RemainingAccesses(),
		IsActive:          g.IsActive,
		CreatedAt:         g.CreatedAt,
	}
	if g.Kind == model.ShareKindLink && g.Token != nil {
		info.ShareURL = ShareURL(*g.Token)
	}
	return info
}

// ShareURL 由token拼出完整的分享地址
func ShareURL(token string) string {
	base := config.GlobalConfig.Share.BaseURL
	if base == "" {
		return "/share/" + token
	}
	return fmt.Sprintf("%s/share/%s", base, token)
}
