package model

import (
	"time"

	"gorm.io/gorm"
)

// MediaAsset stores a key reference written back into the library after a
// successful storage operation.
type MediaAsset struct {
	ID          uint           `gorm:"primaryKey" json:"id,omitempty"`
	CreatedAt   time.Time      `json:"created_at,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at,omitempty"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	FileID      string         `gorm:"column:file_id;uniqueIndex:idx_media_file" json:"file_id,omitempty"`
	DeckKey     string         `gorm:"column:deck_key;index:idx_media_deck" json:"deck_key,omitempty"`
	Key         string         `gorm:"column:object_key;type:text" json:"key,omitempty"`
	FileName    string         `gorm:"column:file_name" json:"file_name,omitempty"`
	ContentType string         `gorm:"column:content_type" json:"content_type,omitempty"`
	FileSize    int64          `gorm:"column:file_size" json:"file_size,omitempty"`
	URL         string         `gorm:"column:url;type:text" json:"url,omitempty"`
	Remark      string         `gorm:"column:remark;type:varchar(512)" json:"remark,omitempty"`
}

// TableName overrides gorm to use the media_asset table.
func (MediaAsset) TableName() string {
	return "media_asset"
}
