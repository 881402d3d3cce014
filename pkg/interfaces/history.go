package interfaces

import (
	"context"

	"chatgate/pkg/types"
)

// ChatHistory is an append-only per-client transcript sink. Append is
// fire-and-forget from the session's point of view: failures are logged,
// never surfaced to the client.
type ChatHistory interface {
	Append(ctx context.Context, clientID string, msg types.HistoryMessage) error
	History(ctx context.Context, clientID string) ([]types.HistoryMessage, error)
}
