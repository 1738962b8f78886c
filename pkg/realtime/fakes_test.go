package realtime

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gabekutner/roommatefinder-backend/models"
)

// In-memory stand-ins for the gorm-backed stores. They implement the same
// interfaces the composition root wires in, which is the point of keeping
// the handlers store-agnostic.

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*models.Profile
}

func newFakeProfiles(ps ...*models.Profile) *fakeProfiles {
	f := &fakeProfiles{profiles: make(map[uuid.UUID]*models.Profile)}
	for _, p := range ps {
		f.profiles[p.ID] = p
	}
	return f
}

func (f *fakeProfiles) Get(id uuid.UUID) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (f *fakeProfiles) SearchByPrefix(query string, exclude uuid.UUID) ([]models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := strings.ToLower(query)
	var out []models.Profile
	for _, p := range f.profiles {
		if p.ID == exclude {
			continue
		}
		if strings.HasPrefix(strings.ToLower(p.Name), q) ||
			strings.HasPrefix(strings.ToLower(p.Identifier), q) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProfiles) SetThumbnail(id uuid.UUID, path string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Thumbnail = path
	return p, nil
}

type fakeConnections struct {
	mu       sync.Mutex
	profiles *fakeProfiles
	conns    []*models.Connection
}

func newFakeConnections(profiles *fakeProfiles) *fakeConnections {
	return &fakeConnections{profiles: profiles}
}

func (f *fakeConnections) hydrated(c *models.Connection) *models.Connection {
	cp := *c
	if p, ok := f.profiles.profiles[cp.SenderID]; ok {
		cp.Sender = *p
	}
	if p, ok := f.profiles.profiles[cp.ReceiverID]; ok {
		cp.Receiver = *p
	}
	return &cp
}

func (f *fakeConnections) Get(id uuid.UUID) (*models.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		if c.ID == id {
			return f.hydrated(c), nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeConnections) Find(filter ConnectionFilter) ([]models.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Connection
	for _, c := range f.conns {
		if filter.Involving != nil && c.SenderID != *filter.Involving && c.ReceiverID != *filter.Involving {
			continue
		}
		if filter.ReceiverID != nil && c.ReceiverID != *filter.ReceiverID {
			continue
		}
		if filter.Accepted != nil && c.Accepted != *filter.Accepted {
			continue
		}
		out = append(out, *f.hydrated(c))
	}
	return out, nil
}

func (f *fakeConnections) PendingBetween(senderID, receiverID uuid.UUID) (*models.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		if c.SenderID == senderID && c.ReceiverID == receiverID && !c.Accepted {
			return f.hydrated(c), nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeConnections) GetOrCreate(senderID, receiverID uuid.UUID) (*models.Connection, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conns {
		if c.SenderID == senderID && c.ReceiverID == receiverID {
			return f.hydrated(c), false, nil
		}
	}
	c := &models.Connection{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	f.conns = append(f.conns, c)
	return f.hydrated(c), true, nil
}

func (f *fakeConnections) Accept(c *models.Connection, displayMatch bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, stored := range f.conns {
		if stored.ID == c.ID {
			stored.Accepted = true
			stored.DisplayMatch = displayMatch
			c.Accepted = true
			c.DisplayMatch = displayMatch
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeConnections) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conns)
}

type fakeMessages struct {
	mu   sync.Mutex
	msgs []*models.Message
	seq  int
}

func (f *fakeMessages) Create(connectionID, userID uuid.UUID, text string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	m := &models.Message{
		ID:           uuid.New(),
		ConnectionID: connectionID,
		UserID:       userID,
		Text:         text,
		// Monotonic timestamps so newest-first ordering is unambiguous.
		CreatedAt: time.Unix(int64(f.seq), 0),
	}
	f.msgs = append(f.msgs, m)
	return m, nil
}

func (f *fakeMessages) List(connectionID uuid.UUID, offset, limit int) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var newestFirst []models.Message
	for i := len(f.msgs) - 1; i >= 0; i-- {
		if f.msgs[i].ConnectionID == connectionID {
			newestFirst = append(newestFirst, *f.msgs[i])
		}
	}
	if offset >= len(newestFirst) {
		return nil, nil
	}
	end := offset + limit
	if end > len(newestFirst) {
		end = len(newestFirst)
	}
	return newestFirst[offset:end], nil
}

func (f *fakeMessages) Count(connectionID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, m := range f.msgs {
		if m.ConnectionID == connectionID {
			n++
		}
	}
	return n, nil
}

func (f *fakeMessages) Latest(connectionID uuid.UUID) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.msgs) - 1; i >= 0; i-- {
		if f.msgs[i].ConnectionID == connectionID {
			cp := *f.msgs[i]
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

type fakeMedia struct {
	mu       sync.Mutex
	saved    map[string][]byte
	failNext bool
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{saved: make(map[string][]byte)}
}

func (f *fakeMedia) SaveThumbnail(profileID uuid.UUID, filename string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return "", fmt.Errorf("disk full")
	}
	path := "thumbnails/" + profileID.String() + "/" + filename
	f.saved[path] = data
	return path, nil
}
