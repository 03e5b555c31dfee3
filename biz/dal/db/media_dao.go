package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/kotoba-app/kotoba/biz/dal/model"

	"gorm.io/gorm"
)

// MediaDAO handles CRUD operations for library media references.
type MediaDAO struct{}

func NewMediaDAO() *MediaDAO { return &MediaDAO{} }

func (dao *MediaDAO) Create(ctx context.Context, db *gorm.DB, asset *model.MediaAsset) error {
	if asset == nil {
		return nil
	}
	if asset.FileID == "" {
		asset.FileID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(asset).Error
}

func (dao *MediaDAO) Update(ctx context.Context, db *gorm.DB, asset *model.MediaAsset) error {
	if asset == nil {
		return nil
	}
	result := db.WithContext(ctx).
		Model(&model.MediaAsset{}).
		Where("file_id = ?", asset.FileID).
		Updates(asset)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (dao *MediaDAO) DeleteByFileID(ctx context.Context, db *gorm.DB, fileID string) error {
	return db.WithContext(ctx).Unscoped().Where("file_id = ?", fileID).Delete(&model.MediaAsset{}).Error
}

func (dao *MediaDAO) GetByFileID(ctx context.Context, db *gorm.DB, fileID string) (*model.MediaAsset, error) {
	var asset model.MediaAsset
	if err := db.WithContext(ctx).Where("file_id = ?", fileID).First(&asset).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (dao *MediaDAO) ListByDeck(ctx context.Context, db *gorm.DB, deckKey string) ([]model.MediaAsset, error) {
	var assets []model.MediaAsset
	if err := db.WithContext(ctx).
		Where("deck_key = ?", deckKey).
		Order("created_at DESC").
		Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}
