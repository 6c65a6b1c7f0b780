package session

import "sync"

// Registry is the process-wide set of live sessions. It exists for capacity
// control and ops visibility only; it holds no decoding logic, and no lock
// is ever held across a decode call - register and unregister are O(1)
// map operations.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	capacity int // 0 means unlimited
}

// NewRegistry creates a registry. capacity <= 0 disables the limit.
func NewRegistry(capacity int) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		capacity: capacity,
	}
}

// Register adds a session, failing fast with ErrCapacityExceeded when the
// configured limit is already reached. Existing sessions are unaffected.
func (r *Registry) Register(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.capacity > 0 && len(r.sessions) >= r.capacity {
		return ErrCapacityExceeded
	}
	r.sessions[s.ID()] = s
	return nil
}

// Unregister removes a session by ID. Safe to call for IDs that are
// already gone.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Count returns the number of currently registered sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sessions returns a snapshot of the registered sessions.
func (r *Registry) Sessions() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}
