package gateway

import "sync"

// Registry tracks live sessions by client id. It backs the health
// endpoint's live counts and lets the server fan a close out to every
// session at shutdown. It holds no admission state; the counting store
// stays the single source of truth for caps.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]map[*Session]struct{}
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]map[*Session]struct{})}
}

// Add registers a live session under its client id. A client may hold
// several sessions when the per-client cap allows it.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.sessions[s.ClientID()]
	if set == nil {
		set = make(map[*Session]struct{})
		r.sessions[s.ClientID()] = set
	}
	set[s] = struct{}{}
}

// Remove drops a session. Removing an unknown session is a no-op.
func (r *Registry) Remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.sessions[s.ClientID()]
	delete(set, s)
	if len(set) == 0 {
		delete(r.sessions, s.ClientID())
	}
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, set := range r.sessions {
		n += len(set)
	}
	return n
}

// PerClient returns live session counts keyed by client id.
func (r *Registry) PerClient() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int, len(r.sessions))
	for id, set := range r.sessions {
		out[id] = len(set)
	}
	return out
}

// CloseAll closes every live session's connection. Each session's own
// teardown handles release and unregistration.
func (r *Registry) CloseAll() {
	r.mu.RLock()
	sessions := make([]*Session, 0)
	for _, set := range r.sessions {
		for s := range set {
			sessions = append(sessions, s)
		}
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		s.CloseConn()
	}
}
