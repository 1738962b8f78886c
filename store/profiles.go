// Package store provides the gorm-backed implementations of the data
// interfaces consumed by pkg/realtime, plus filesystem media storage.
package store

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gabekutner/roommatefinder-backend/models"
	"github.com/gabekutner/roommatefinder-backend/pkg/realtime"
)

// Profiles implements realtime.ProfileStore on gorm.
type Profiles struct {
	db *gorm.DB
}

func NewProfiles(db *gorm.DB) *Profiles {
	return &Profiles{db: db}
}

func (s *Profiles) Get(id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Profiles) SearchByPrefix(query string, exclude uuid.UUID) ([]models.Profile, error) {
	var out []models.Profile
	err := s.db.
		Where("id <> ?", exclude).
		Where("name ILIKE ? OR identifier ILIKE ?", query+"%", query+"%").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Profiles) SetThumbnail(id uuid.UUID, path string) (*models.Profile, error) {
	var p models.Profile
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	p.Thumbnail = path
	if err := s.db.Model(&p).Update("thumbnail", path).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// translate maps gorm's not-found sentinel onto the one the realtime core
// checks for.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return realtime.ErrNotFound
	}
	return err
}
