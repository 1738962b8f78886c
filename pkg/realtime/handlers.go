package realtime

import (
	"encoding/base64"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gabekutner/roommatefinder-backend/models"
)

// PageSize is the fixed number of messages per message.list page.
const PageSize = 15

// Handlers implements the nine socket operations. Every method takes the
// acting user id explicitly, performs its data access through the injected
// stores, and pushes results through the registry. Referenced ids that
// don't resolve are logged and dropped without a reply; data-layer errors
// abort the single invocation and nothing else.
type Handlers struct {
	profiles    ProfileStore
	connections ConnectionStore
	messages    MessageStore
	media       MediaStore
	registry    *Registry
	log         *zap.Logger
}

func NewHandlers(profiles ProfileStore, connections ConnectionStore, messages MessageStore, media MediaStore, registry *Registry, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		profiles:    profiles,
		connections: connections,
		messages:    messages,
		media:       media,
		registry:    registry,
		log:         log,
	}
}

func (h *Handlers) publish(userID uuid.UUID, source Source, data any) {
	h.registry.Publish(userID.String(), Envelope{Source: source, Data: data})
}

// Search matches profiles whose name or identifier starts with the query
// and annotates each with the relationship to the acting user. Results go
// back to the acting user only.
func (h *Handlers) Search(userID uuid.UUID, query string) {
	profiles, err := h.profiles.SearchByPrefix(query, userID)
	if err != nil {
		h.log.Error("search query failed", zap.String("user", userID.String()), zap.Error(err))
		return
	}
	conns, err := h.connections.Find(ConnectionFilter{Involving: &userID})
	if err != nil {
		h.log.Error("search connections failed", zap.String("user", userID.String()), zap.Error(err))
		return
	}

	// One pass over the user's connections, then O(1) status lookups.
	pendingThem := make(map[uuid.UUID]bool) // I asked them, still pending
	pendingMe := make(map[uuid.UUID]bool)   // they asked me, still pending
	connected := make(map[uuid.UUID]bool)
	for i := range conns {
		c := &conns[i]
		other := c.Other(userID)
		switch {
		case c.Accepted:
			connected[other] = true
		case c.SenderID == userID:
			pendingThem[other] = true
		default:
			pendingMe[other] = true
		}
	}

	results := make([]SearchResult, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		status := StatusNoConnection
		switch {
		case pendingThem[p.ID]:
			status = StatusPendingThem
		case pendingMe[p.ID]:
			status = StatusPendingMe
		case connected[p.ID]:
			status = StatusConnected
		}
		results = append(results, SearchResult{UserPayload: NewUserPayload(p), Status: status})
	}
	h.publish(userID, SourceSearch, results)
}

// FriendList pushes every accepted connection involving the acting user,
// each with a preview of the latest message.
func (h *Handlers) FriendList(userID uuid.UUID) {
	accepted := true
	conns, err := h.connections.Find(ConnectionFilter{Involving: &userID, Accepted: &accepted})
	if err != nil {
		h.log.Error("friend list failed", zap.String("user", userID.String()), zap.Error(err))
		return
	}

	friends := make([]FriendPayload, 0, len(conns))
	for i := range conns {
		c := &conns[i]
		friend := &c.Sender
		if c.SenderID == userID {
			friend = &c.Receiver
		}
		fp := FriendPayload{
			ID:      c.ID,
			Friend:  NewUserPayload(friend),
			Preview: "New connection",
			Updated: c.UpdatedAt,
		}
		if latest, err := h.messages.Latest(c.ID); err == nil {
			fp.Preview = latest.Text
			fp.Updated = latest.CreatedAt
		}
		friends = append(friends, fp)
	}
	h.publish(userID, SourceFriendList, friends)
}

// MessageList pushes one newest-first page of a conversation to the acting
// user, with the counterparty's card and the next page number (null on the
// last page).
func (h *Handlers) MessageList(userID, connectionID uuid.UUID, page int) {
	conn, err := h.connections.Get(connectionID)
	if errors.Is(err, ErrNotFound) {
		h.log.Info("message.list: unknown connection", zap.String("connection", connectionID.String()))
		return
	}
	if err != nil {
		h.log.Error("message.list failed", zap.Error(err))
		return
	}
	if page < 0 {
		page = 0
	}

	msgs, err := h.messages.List(connectionID, page*PageSize, PageSize)
	if err != nil {
		h.log.Error("message.list query failed", zap.Error(err))
		return
	}
	count, err := h.messages.Count(connectionID)
	if err != nil {
		h.log.Error("message.list count failed", zap.Error(err))
		return
	}

	payload := MessageListPayload{Messages: make([]MessagePayload, 0, len(msgs))}
	for i := range msgs {
		payload.Messages = append(payload.Messages, NewMessagePayload(&msgs[i], userID))
	}
	if count > int64(page+1)*PageSize {
		next := page + 1
		payload.Next = &next
	}

	friend := &conn.Sender
	if conn.SenderID == userID {
		friend = &conn.Receiver
	}
	payload.Friend = NewUserPayload(friend)

	h.publish(userID, SourceMessageList, payload)
}

// MessageSend persists the message, then publishes it exactly twice: an
// echo to the author's group (so their other devices update) and a copy to
// the counterparty, each annotated for its own recipient. The row is
// durable before either publish happens.
func (h *Handlers) MessageSend(userID, connectionID uuid.UUID, text string) {
	conn, err := h.connections.Get(connectionID)
	if errors.Is(err, ErrNotFound) {
		h.log.Info("message.send: unknown connection", zap.String("connection", connectionID.String()))
		return
	}
	if err != nil {
		h.log.Error("message.send failed", zap.Error(err))
		return
	}

	msg, err := h.messages.Create(connectionID, userID, text)
	if err != nil {
		h.log.Error("message.send create failed", zap.Error(err))
		return
	}

	author, recipient := &conn.Sender, &conn.Receiver
	if conn.SenderID != userID {
		author, recipient = recipient, author
	}

	h.publish(author.ID, SourceMessageSend, MessageSendPayload{
		Message: NewMessagePayload(msg, author.ID),
		Friend:  NewUserPayload(recipient),
	})
	h.publish(recipient.ID, SourceMessageSend, MessageSendPayload{
		Message: NewMessagePayload(msg, recipient.ID),
		Friend:  NewUserPayload(author),
	})
}

// MessageType forwards a typing indicator carrying the typist's id to the
// named counterparty. Nothing is persisted; an offline counterparty means
// the event simply evaporates.
func (h *Handlers) MessageType(userID, recipientID uuid.UUID) {
	h.publish(recipientID, SourceMessageType, TypingPayload{ID: userID})
}

// RequestConnect creates (or resolves) a friend request toward the target
// profile. A pending request in the opposite direction is flipped to
// accepted instead of creating a second row, turning two simultaneous
// requests into one mutual match. Both parties are notified.
func (h *Handlers) RequestConnect(userID, targetID uuid.UUID) {
	if _, err := h.profiles.Get(targetID); err != nil {
		if errors.Is(err, ErrNotFound) {
			h.log.Info("request.connect: unknown profile", zap.String("target", targetID.String()))
		} else {
			h.log.Error("request.connect failed", zap.Error(err))
		}
		return
	}

	var conn *models.Connection
	reverse, err := h.connections.PendingBetween(targetID, userID)
	switch {
	case err == nil:
		if err := h.connections.Accept(reverse, true); err != nil {
			h.log.Error("request.connect accept failed", zap.Error(err))
			return
		}
		conn = reverse
	case errors.Is(err, ErrNotFound):
		created, _, cerr := h.connections.GetOrCreate(userID, targetID)
		if cerr != nil {
			h.log.Error("request.connect create failed", zap.Error(cerr))
			return
		}
		conn = created
	default:
		h.log.Error("request.connect lookup failed", zap.Error(err))
		return
	}

	payload := NewRequestPayload(conn)
	h.publish(conn.SenderID, SourceRequestConnect, payload)
	h.publish(conn.ReceiverID, SourceRequestConnect, payload)
}

// RequestAccept accepts the pending request from requesterID to the acting
// user and notifies both parties.
func (h *Handlers) RequestAccept(userID, requesterID uuid.UUID) {
	conn, err := h.connections.PendingBetween(requesterID, userID)
	if errors.Is(err, ErrNotFound) {
		h.log.Info("request.accept: no pending request", zap.String("requester", requesterID.String()))
		return
	}
	if err != nil {
		h.log.Error("request.accept lookup failed", zap.Error(err))
		return
	}
	if err := h.connections.Accept(conn, false); err != nil {
		h.log.Error("request.accept failed", zap.Error(err))
		return
	}

	payload := NewRequestPayload(conn)
	h.publish(conn.SenderID, SourceRequestAccept, payload)
	h.publish(conn.ReceiverID, SourceRequestAccept, payload)
}

// RequestList pushes the acting user's incoming pending requests.
func (h *Handlers) RequestList(userID uuid.UUID) {
	accepted := false
	conns, err := h.connections.Find(ConnectionFilter{ReceiverID: &userID, Accepted: &accepted})
	if err != nil {
		h.log.Error("request.list failed", zap.String("user", userID.String()), zap.Error(err))
		return
	}
	requests := make([]RequestPayload, 0, len(conns))
	for i := range conns {
		requests = append(requests, NewRequestPayload(&conns[i]))
	}
	h.publish(userID, SourceRequestList, requests)
}

// Thumbnail decodes the base64 image, hands it to media storage, persists
// the new path on the profile and echoes the updated card to the acting
// user's own group.
func (h *Handlers) Thumbnail(userID uuid.UUID, b64, filename string) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		h.log.Info("thumbnail: bad base64 payload", zap.String("user", userID.String()), zap.Error(err))
		return
	}
	path, err := h.media.SaveThumbnail(userID, filename, data)
	if err != nil {
		h.log.Error("thumbnail save failed", zap.Error(err))
		return
	}
	profile, err := h.profiles.SetThumbnail(userID, path)
	if err != nil {
		h.log.Error("thumbnail update failed", zap.Error(err))
		return
	}
	h.publish(userID, SourceThumbnail, NewUserPayload(profile))
}
