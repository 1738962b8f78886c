package store

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gabekutner/roommatefinder-backend/models"
	"github.com/gabekutner/roommatefinder-backend/pkg/realtime"
)

// Connections implements realtime.ConnectionStore on gorm. All reads
// preload the sender and receiver profiles, which the handlers need for
// the cards they push.
type Connections struct {
	db *gorm.DB
}

func NewConnections(db *gorm.DB) *Connections {
	return &Connections{db: db}
}

func (s *Connections) withParties() *gorm.DB {
	return s.db.Preload("Sender").Preload("Receiver")
}

func (s *Connections) Get(id uuid.UUID) (*models.Connection, error) {
	var c models.Connection
	if err := s.withParties().First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Connections) Find(f realtime.ConnectionFilter) ([]models.Connection, error) {
	q := s.withParties()
	if f.Involving != nil {
		q = q.Where("sender_id = ? OR receiver_id = ?", *f.Involving, *f.Involving)
	}
	if f.ReceiverID != nil {
		q = q.Where("receiver_id = ?", *f.ReceiverID)
	}
	if f.Accepted != nil {
		q = q.Where("accepted = ?", *f.Accepted)
	}
	var out []models.Connection
	if err := q.Order("updated_at desc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Connections) PendingBetween(senderID, receiverID uuid.UUID) (*models.Connection, error) {
	var c models.Connection
	err := s.withParties().
		Where("sender_id = ? AND receiver_id = ? AND accepted = ?", senderID, receiverID, false).
		First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *Connections) GetOrCreate(senderID, receiverID uuid.UUID) (*models.Connection, bool, error) {
	c := models.Connection{SenderID: senderID, ReceiverID: receiverID}
	res := s.db.Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).FirstOrCreate(&c)
	if res.Error != nil {
		return nil, false, res.Error
	}
	created := res.RowsAffected > 0
	// Reload with both parties attached.
	full, err := s.Get(c.ID)
	if err != nil {
		return nil, false, err
	}
	return full, created, nil
}

func (s *Connections) Accept(c *models.Connection, displayMatch bool) error {
	c.Accepted = true
	c.DisplayMatch = displayMatch
	return s.db.Model(c).Updates(map[string]any{
		"accepted":      true,
		"display_match": displayMatch,
	}).Error
}
