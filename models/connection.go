package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Connection is a friend request from Sender to Receiver that becomes a
// bidirectional friendship once Accepted. At most one row exists per
// unordered {sender, receiver} pair; the request.connect handler flips an
// opposite-direction pending row to accepted instead of creating a twin.
type Connection struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`

	SenderID   uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_sender_receiver" json:"sender_id"`
	ReceiverID uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_sender_receiver" json:"receiver_id"`
	Sender     Profile   `gorm:"foreignKey:SenderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Receiver   Profile   `gorm:"foreignKey:ReceiverID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Accepted bool `gorm:"default:false;index" json:"accepted"`
	// Set when the row was accepted via a mutual request.connect so the
	// client can render a match animation.
	DisplayMatch bool `gorm:"default:false" json:"display_match"`

	Messages []Message `gorm:"foreignKey:ConnectionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (c *Connection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Other returns the party of the connection that is not the given user.
func (c *Connection) Other(userID uuid.UUID) uuid.UUID {
	if c.SenderID == userID {
		return c.ReceiverID
	}
	return c.SenderID
}
