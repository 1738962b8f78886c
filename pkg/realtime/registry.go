package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Handle is one live socket as seen by the registry: an opaque sink for
// serialized frames. *Session implements it; tests use fakes.
type Handle interface {
	SendText(data []byte) error
}

// Registry maps group keys (user ids) to the set of live handles for that
// user. It is the only shared mutable state in the realtime core; a single
// coarse lock serializes mutation, which is fine because group sets stay
// tiny (one handle per device).
type Registry struct {
	mu     sync.RWMutex
	groups map[string]map[Handle]struct{}
	log    *zap.Logger
}

// NewRegistry builds an empty registry. The registry is owned by the
// composition root and injected everywhere it is needed.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		groups: make(map[string]map[Handle]struct{}),
		log:    log,
	}
}

// Join adds the handle to the group, creating the group if absent.
// Idempotent for a handle already present.
func (r *Registry) Join(group string, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.groups[group]
	if !ok {
		set = make(map[Handle]struct{})
		r.groups[group] = set
	}
	set[h] = struct{}{}
}

// Leave removes the handle from the group and drops the group entry when
// it empties. Unknown groups and handles are a no-op so a socket that
// never authenticated can still disconnect cleanly.
func (r *Registry) Leave(group string, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.groups[group]
	if !ok {
		return
	}
	delete(set, h)
	if len(set) == 0 {
		delete(r.groups, group)
	}
}

// Publish serializes the envelope once and writes it to every handle in
// the group. An empty or absent group is a silent no-op: delivery is
// at-most-once and best-effort, the durable write already happened in the
// handler before Publish was called.
func (r *Registry) Publish(group string, env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		r.log.Error("marshal envelope", zap.String("source", string(env.Source)), zap.Error(err))
		return
	}

	r.mu.RLock()
	handles := make([]Handle, 0, len(r.groups[group]))
	for h := range r.groups[group] {
		handles = append(handles, h)
	}
	r.mu.RUnlock()

	for _, h := range handles {
		if err := h.SendText(data); err != nil {
			r.log.Warn("publish dropped",
				zap.String("group", group),
				zap.String("source", string(env.Source)),
				zap.Error(err))
		}
	}
}

// GroupSize returns the number of live handles for a group.
func (r *Registry) GroupSize(group string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[group])
}
