package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"chatgate/pkg/types"
)

func parseMessageID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid message id in history row: %w", err)
	}
	return id, nil
}

// MemoryStore keeps transcripts in process memory. Used by tests and by
// deployments that do not care about transcripts surviving a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	messages map[string][]types.HistoryMessage
}

// NewMemoryStore creates an empty in-memory transcript store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{messages: make(map[string][]types.HistoryMessage)}
}

// Append records one transcript entry.
func (m *MemoryStore) Append(_ context.Context, clientID string, msg types.HistoryMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[clientID] = append(m.messages[clientID], msg)
	return nil
}

// History returns a copy of the client's transcript in insertion order.
func (m *MemoryStore) History(_ context.Context, clientID string) ([]types.HistoryMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.HistoryMessage(nil), m.messages[clientID]...), nil
}
