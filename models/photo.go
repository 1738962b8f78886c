package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Photo is one gallery image on a profile, stored under MEDIA_BASE.
type Photo struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created"`

	ProfileID uuid.UUID `gorm:"type:uuid;index;not null" json:"profile_id"`

	FileName    string `gorm:"size:255;not null" json:"file_name"`
	StorePath   string `gorm:"column:store_path;size:512" json:"store_path"` // relative path under MEDIA_BASE
	ContentType string `gorm:"size:128" json:"content_type"`
	// Filled in by the process/ thumbnail pipeline.
	ThumbPath string `gorm:"column:thumb_path;size:512" json:"thumb_path"`
}

func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
