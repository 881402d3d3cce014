package admission

import (
	"context"
	"sync"
)

// MemoryController keeps the counts in process memory behind a mutex. It
// is the single-process counterpart of RedisController and the default
// store for tests; the caps semantics are identical.
type MemoryController struct {
	mu     sync.Mutex
	counts map[string]int64
	caps   Caps
}

// NewMemoryController creates an in-memory admission controller.
func NewMemoryController(caps Caps) (*MemoryController, error) {
	if err := caps.Validate(); err != nil {
		return nil, err
	}
	return &MemoryController{
		counts: make(map[string]int64),
		caps:   caps,
	}, nil
}

// Acquire checks both caps against the pre-increment counts and
// increments only when both hold. The mutex makes the check-and-increment
// atomic for callers within this process.
func (m *MemoryController) Acquire(_ context.Context, clientID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total int64
	for _, n := range m.counts {
		total += n
	}
	if total >= m.caps.GlobalMax {
		return false, nil
	}
	if m.counts[clientID] >= m.caps.PerClientMax {
		return false, nil
	}

	m.counts[clientID]++
	return true, nil
}

// Release decrements the client's count. A zero entry is a valid resting
// state and is kept.
func (m *MemoryController) Release(_ context.Context, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[clientID]--
	return nil
}

// Reset clears all counts.
func (m *MemoryController) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts = make(map[string]int64)
	return nil
}

// Snapshot returns a copy of the current per-client counts.
func (m *MemoryController) Snapshot(_ context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]int64, len(m.counts))
	for id, n := range m.counts {
		out[id] = n
	}
	return out, nil
}
