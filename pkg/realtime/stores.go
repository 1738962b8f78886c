// Package realtime implements the persistent-socket subsystem: a group
// registry keyed by user id, one session per websocket, and the nine chat
// and friend-request operations dispatched from inbound frames.
package realtime

import (
	"errors"

	"github.com/google/uuid"

	"github.com/gabekutner/roommatefinder-backend/models"
)

// ErrNotFound is returned by the stores when a referenced row does not
// exist. Handlers swallow it: a bad id produces no reply at all.
var ErrNotFound = errors.New("realtime: not found")

// ConnectionFilter narrows ConnectionStore.Find. Nil fields are ignored.
type ConnectionFilter struct {
	// Involving matches rows where the profile is sender or receiver.
	Involving *uuid.UUID
	// ReceiverID matches rows addressed to the profile.
	ReceiverID *uuid.UUID
	Accepted   *bool
}

// ProfileStore is the slice of the profile CRUD layer the socket handlers
// need. Implementations must return ErrNotFound for missing ids.
type ProfileStore interface {
	Get(id uuid.UUID) (*models.Profile, error)
	// SearchByPrefix does a case-insensitive starts-with match on name and
	// identifier, excluding the given profile.
	SearchByPrefix(query string, exclude uuid.UUID) ([]models.Profile, error)
	SetThumbnail(id uuid.UUID, path string) (*models.Profile, error)
}

// ConnectionStore reads and mutates friend-request rows. Find and
// PendingBetween return rows with Sender and Receiver profiles loaded.
type ConnectionStore interface {
	Get(id uuid.UUID) (*models.Connection, error)
	Find(f ConnectionFilter) ([]models.Connection, error)
	// PendingBetween returns the unaccepted connection from sender to
	// receiver, or ErrNotFound.
	PendingBetween(senderID, receiverID uuid.UUID) (*models.Connection, error)
	// GetOrCreate returns the connection from sender to receiver, creating
	// an unaccepted one when absent. The bool reports creation.
	GetOrCreate(senderID, receiverID uuid.UUID) (*models.Connection, bool, error)
	// Accept marks the row accepted and persists it before returning.
	Accept(c *models.Connection, displayMatch bool) error
}

// MessageStore persists and pages chat messages.
type MessageStore interface {
	Create(connectionID, userID uuid.UUID, text string) (*models.Message, error)
	// List returns messages newest-first.
	List(connectionID uuid.UUID, offset, limit int) ([]models.Message, error)
	Count(connectionID uuid.UUID) (int64, error)
	// Latest returns the newest message, or ErrNotFound when the
	// conversation is empty.
	Latest(connectionID uuid.UUID) (*models.Message, error)
}

// MediaStore persists decoded thumbnail bytes and returns the relative
// path the stored image is served from.
type MediaStore interface {
	SaveThumbnail(profileID uuid.UUID, filename string, data []byte) (string, error)
}
