package realtime

import (
	"time"

	"github.com/google/uuid"

	"github.com/gabekutner/roommatefinder-backend/models"
)

// Relationship status annotations on search results.
const (
	StatusPendingThem  = "pending-them"
	StatusPendingMe    = "pending-me"
	StatusConnected    = "connected"
	StatusNoConnection = "no-connection"
)

// UserPayload is the basic identity card pushed over the socket.
type UserPayload struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Thumbnail string    `json:"thumbnail"`
}

func NewUserPayload(p *models.Profile) UserPayload {
	return UserPayload{ID: p.ID, Name: p.Name, Thumbnail: p.Thumbnail}
}

// SearchResult is a user card annotated with the relationship between the
// searcher and the candidate.
type SearchResult struct {
	UserPayload
	Status string `json:"status"`
}

// RequestPayload describes one friend request, pushed to both parties.
type RequestPayload struct {
	ID       uuid.UUID   `json:"id"`
	Sender   UserPayload `json:"sender"`
	Receiver UserPayload `json:"receiver"`
	Created  time.Time   `json:"created"`
}

func NewRequestPayload(c *models.Connection) RequestPayload {
	return RequestPayload{
		ID:       c.ID,
		Sender:   NewUserPayload(&c.Sender),
		Receiver: NewUserPayload(&c.Receiver),
		Created:  c.CreatedAt,
	}
}

// FriendPayload is one accepted connection from the acting user's point of
// view: the counterparty plus a preview of the latest message.
type FriendPayload struct {
	ID      uuid.UUID   `json:"id"`
	Friend  UserPayload `json:"friend"`
	Preview string      `json:"preview"`
	Updated time.Time   `json:"updated"`
}

// MessagePayload is one chat message annotated for a specific recipient.
type MessagePayload struct {
	ID      uuid.UUID `json:"id"`
	IsMe    bool      `json:"is_me"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
}

// NewMessagePayload annotates the message from viewer's point of view.
func NewMessagePayload(m *models.Message, viewer uuid.UUID) MessagePayload {
	return MessagePayload{
		ID:      m.ID,
		IsMe:    m.UserID == viewer,
		Text:    m.Text,
		Created: m.CreatedAt,
	}
}

// MessageListPayload is one page of a conversation. Next is null on the
// last page.
type MessageListPayload struct {
	Messages []MessagePayload `json:"messages"`
	Next     *int             `json:"next"`
	Friend   UserPayload      `json:"friend"`
}

// MessageSendPayload carries a freshly sent message to one recipient.
type MessageSendPayload struct {
	Message MessagePayload `json:"message"`
	Friend  UserPayload    `json:"friend"`
}

// TypingPayload identifies who is typing.
type TypingPayload struct {
	ID uuid.UUID `json:"id"`
}
