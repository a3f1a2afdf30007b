package repository

import (
	"errors"

	"filetrace/internal/model"
	"filetrace/pkg/db"

	"gorm.io/gorm"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository() *FileRepository {
	return &FileRepository{db: db.DB}
}

// 新建文件元数据记录
func (r *FileRepository) Create(file *model.File) error {
	return r.db.Create(file).Error
}

// 通过ID查找文件，不存在返回(nil, nil)
func (r *FileRepository) FindByID(id string) (*model.File, error) {
	var file model.File
	if err := r.db.Where("id = ?", id).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &file, nil
}

// 查找指定所有者的文件，不存在或不属于该用户返回(nil, nil)
func (r *FileRepository) FindByIDAndOwner(id string, ownerID uint) (*model.File, error) {
	var file model.File
	err := r.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &file, nil
}

// 列出用户的全部文件，最新上传的在前
func (r *FileRepository) FindByOwner(ownerID uint) ([]model.File, error) {
	var files []model.File
	err := r.db.Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}

// 重命名文件
func (r *FileRepository) Rename(id string, name string) error {
	return r.db.Model(&model.File{}).
		Where("id = ?", id).
		Update("name", name).Error
}

// 删除文件元数据（软删除，保留审计可追溯性）
func (r *FileRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&model.File{}).Error
}
