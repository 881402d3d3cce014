package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatgate/pkg/interfaces"
	"chatgate/pkg/types"
)

func entry(clientID string, dir types.Direction, text string) types.HistoryMessage {
	return types.HistoryMessage{
		ID:        uuid.New(),
		ClientID:  clientID,
		Direction: dir,
		Kind:      "text",
		Text:      text,
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func runStoreTests(t *testing.T, store interfaces.ChatHistory) {
	ctx := context.Background()

	first := entry("alice", types.DirectionUser, "hi")
	second := entry("alice", types.DirectionBot, "Hello, World!")
	second.Timestamp = first.Timestamp.Add(time.Second)
	other := entry("bob", types.DirectionUser, "unrelated")

	require.NoError(t, store.Append(ctx, "alice", first))
	require.NoError(t, store.Append(ctx, "alice", second))
	require.NoError(t, store.Append(ctx, "bob", other))

	got, err := store.History(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, types.DirectionUser, got[0].Direction)
	assert.Equal(t, second.ID, got[1].ID)
	assert.Equal(t, "Hello, World!", got[1].Text)

	got, err = store.History(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, other.ID, got[0].ID)

	got, err = store.History(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	runStoreTests(t, store)
}

func TestSQLiteStoreKeepsMediaURLs(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	msg := entry("carol", types.DirectionBot, "Hello, World!")
	msg.Kind = "text_audio"
	msg.AudioURL = "media/abc.mp3"
	require.NoError(t, store.Append(ctx, "carol", msg))

	got, err := store.History(ctx, "carol")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "media/abc.mp3", got[0].AudioURL)
	assert.Empty(t, got[0].ImageURL)
}
