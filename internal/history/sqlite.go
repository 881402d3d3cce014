// Package history persists per-client chat transcripts. The store is
// append-only and keyed by client id; the gateway never reads it back on
// the hot path.
package history

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"chatgate/pkg/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	client_id  TEXT NOT NULL,
	direction  TEXT NOT NULL,
	kind       TEXT NOT NULL,
	text       TEXT NOT NULL DEFAULT '',
	audio_url  TEXT NOT NULL DEFAULT '',
	image_url  TEXT NOT NULL DEFAULT '',
	video_url  TEXT NOT NULL DEFAULT '',
	timestamp  DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_client ON messages(client_id, timestamp);
`

// SQLiteStore is the durable ChatHistory implementation.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the transcript database. WAL mode and
// a busy timeout keep concurrent session writers from tripping over
// SQLite's single-writer lock.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append inserts one transcript entry.
func (s *SQLiteStore) Append(ctx context.Context, clientID string, msg types.HistoryMessage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, client_id, direction, kind, text, audio_url, image_url, video_url, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID.String(), clientID, string(msg.Direction), msg.Kind,
		msg.Text, msg.AudioURL, msg.ImageURL, msg.VideoURL, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append history message: %w", err)
	}
	return nil
}

// History returns the client's transcript in insertion order.
func (s *SQLiteStore) History(ctx context.Context, clientID string) ([]types.HistoryMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, direction, kind, text, audio_url, image_url, video_url, timestamp
		FROM messages WHERE client_id = ? ORDER BY timestamp, id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var messages []types.HistoryMessage
	for rows.Next() {
		var msg types.HistoryMessage
		var id, direction string
		if err := rows.Scan(&id, &msg.ClientID, &direction, &msg.Kind,
			&msg.Text, &msg.AudioURL, &msg.ImageURL, &msg.VideoURL, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		parsed, err := parseMessageID(id)
		if err != nil {
			return nil, err
		}
		msg.ID = parsed
		msg.Direction = types.Direction(direction)
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
