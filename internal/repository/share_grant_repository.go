package repository

import (
	"errors"
	"fmt"
	"time"

	"filetrace/internal/apperr"
	"filetrace/internal/model"
	"filetrace/pkg/db"
	"filetrace/pkg/utils"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// token碰撞重试上限。64位十六进制token实际不会碰撞，
// 重试只是唯一索引兜底生效时的防御措施。
const tokenCreateRetries = 3

type ShareGrantRepository struct {
	db *gorm.DB
}

func NewShareGrantRepository() *ShareGrantRepository {
	return &ShareGrantRepository{db: db.DB}
}

// 创建链接分享，token在此生成。
// 过期时间和访问次数上限至少要设置一个。
func (r *ShareGrantRepository) CreateLinkShare(fileID string, grantorID uint, expiresAt *time.Time, maxAccessCount *int) (*model.ShareGrant, error) {
	if err := validateLimits(fileID, expiresAt, maxAccessCount); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < tokenCreateRetries; attempt++ {
		token := utils.GenerateShareToken()
		grant := &model.ShareGrant{
			FileID:         fileID,
			GrantorID:      grantorID,
			Kind:           model.ShareKindLink,
			Token:          &token,
			ExpiresAt:      expiresAt,
			MaxAccessCount: maxAccessCount,
			IsActive:       true,
		}
		err := r.db.Create(grant).Error
		if err == nil {
			return grant, nil
		}
		if !isDuplicateKeyErr(err) {
			return nil, err
		}
		// token撞上了唯一索引，换一个重试
	}
	return nil, fmt.Errorf("failed to create link share after %d token attempts", tokenCreateRetries)
}

// 创建指定用户的分享。
// 同一文件对同一用户已有生效分享时返回ErrDuplicateShare，
// 避免重复分享悄悄产生冗余记录。
func (r *ShareGrantRepository) CreateUserShare(fileID string, grantorID, recipientID uint, expiresAt *time.Time, maxAccessCount *int) (*model.ShareGrant, error) {
	if err := validateLimits(fileID, expiresAt, maxAccessCount); err != nil {
		return nil, err
	}
	if recipientID == 0 {
		return nil, apperr.Validation("recipient id is required")
	}

	// 检查是否已存在尚未撤销的相同分享
	var existing model.ShareGrant
	err := r.db.Where(
		"file_id = ? AND recipient_id = ? AND kind = ? AND is_active = ?",
		fileID, recipientID, model.ShareKindUser, true,
	).First(&existing).Error
	if err == nil {
		return nil, apperr.ErrDuplicateShare
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	grant := &model.ShareGrant{
		FileID:         fileID,
		GrantorID:      grantorID,
		Kind:           model.ShareKindUser,
		RecipientID:    &recipientID,
		ExpiresAt:      expiresAt,
		MaxAccessCount: maxAccessCount,
		IsActive:       true,
	}
	if err := r.db.Create(grant).Error; err != nil {
		return nil, err
	}
	return grant, nil
}

// 通过token精确查找分享记录。token不存在返回(nil, nil)，不算错误。
func (r *ShareGrantRepository) FindByToken(token string) (*model.ShareGrant, error) {
	var grant model.ShareGrant
	if err := r.db.Where("token = ?", token).First(&grant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &grant, nil
}

// 通过ID查找分享记录，不存在返回(nil, nil)
func (r *ShareGrantRepository) FindByID(id uint) (*model.ShareGrant, error) {
	var grant model.ShareGrant
	if err := r.db.First(&grant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &grant, nil
}

// 查找文件当前仍然有效的所有分享，新创建的在前。
// 有效性判定与访问时使用同一套逻辑（ShareGrant.IsValid）。
func (r *ShareGrantRepository) FindActiveByFile(fileID string) ([]model.ShareGrant, error) {
	grants, err := r.FindAllByFile(fileID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	valid := make([]model.ShareGrant, 0, len(grants))
	for _, g := range grants {
		if g.IsValid(now) {
			valid = append(valid, g)
		}
	}
	return valid, nil
}

// 查找文件的全部分享记录（含已撤销/已过期），用于所有者的管理视图
func (r *ShareGrantRepository) FindAllByFile(fileID string) ([]model.ShareGrant, error) {
	var grants []model.ShareGrant
	err := r.db.Where("file_id = ?", fileID).
		Order("created_at DESC").
		Find(&grants).Error
	return grants, err
}

// 撤销单条分享。幂等：重复撤销不报错，返回受影响行数0。
// 字段级UPDATE直接下推到数据库，不做读-改-写。
func (r *ShareGrantRepository) Revoke(id uint) (int64, error) {
	res := r.db.Model(&model.ShareGrant{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// 撤销文件的全部生效分享，返回受影响行数。
// 用于所有者一键切断全部分享（比如删除文件之前）。
func (r *ShareGrantRepository) RevokeAllForFile(fileID string) (int64, error) {
	res := r.db.Model(&model.ShareGrant{}).
		Where("file_id = ? AND is_active = ?", fileID, true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// 原子自增访问计数。
// 必须用数据库的自增表达式完成，应用层读-改-写在并发下会丢失更新。
func (r *ShareGrantRepository) IncrementAccess(id uint) error {
	return r.db.Model(&model.ShareGrant{}).
		Where("id = ?", id).
		Update("access_count", gorm.Expr("access_count + ?", 1)).Error
}

// 过期时间和访问次数上限二者至少其一必须设置
func validateLimits(fileID string, expiresAt *time.Time, maxAccessCount *int) error {
	if fileID == "" {
		return apperr.Validation("file id is required")
	}
	if expiresAt == nil && maxAccessCount == nil {
		return apperr.Validation("share must have an expiration time or an access limit")
	}
	if maxAccessCount != nil && *maxAccessCount <= 0 {
		return apperr.Validation("max access count must be positive")
	}
	return nil
}

// 识别MySQL的唯一键冲突(1062)
func isDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
