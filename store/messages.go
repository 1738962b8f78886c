package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gabekutner/roommatefinder-backend/models"
)

// Messages implements realtime.MessageStore on gorm.
type Messages struct {
	db *gorm.DB
}

func NewMessages(db *gorm.DB) *Messages {
	return &Messages{db: db}
}

func (s *Messages) Create(connectionID, userID uuid.UUID, text string) (*models.Message, error) {
	m := models.Message{ConnectionID: connectionID, UserID: userID, Text: text}
	if err := s.db.Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Messages) List(connectionID uuid.UUID, offset, limit int) ([]models.Message, error) {
	var out []models.Message
	err := s.db.
		Where("connection_id = ?", connectionID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Messages) Count(connectionID uuid.UUID) (int64, error) {
	var n int64
	err := s.db.Model(&models.Message{}).Where("connection_id = ?", connectionID).Count(&n).Error
	return n, err
}

func (s *Messages) Latest(connectionID uuid.UUID) (*models.Message, error) {
	var m models.Message
	err := s.db.
		Where("connection_id = ?", connectionID).
		Order("created_at desc").
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}
