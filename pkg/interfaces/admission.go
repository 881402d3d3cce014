// Package interfaces defines the contracts between the gateway core and
// its collaborators, so each side can be replaced independently in tests.
package interfaces

import "context"

// AdmissionController reserves connection slots under a global cap and a
// per-client cap. The store backing it is shared by every server process;
// implementations must make Acquire atomic with respect to concurrent
// callers in any process.
type AdmissionController interface {
	// Acquire atomically checks both caps against the pre-increment
	// counts and, when both hold, increments the client's count. It
	// returns false, without changing anything, when either cap is
	// reached. A non-nil error means the store itself failed.
	Acquire(ctx context.Context, clientID string) (bool, error)

	// Release decrements the client's count. Callers guarantee exactly
	// one Release per successful Acquire; there is no double-release
	// guard at this level.
	Release(ctx context.Context, clientID string) error

	// Reset clears all counts. Run at server startup to drop stale
	// counts left behind by a crashed process.
	Reset(ctx context.Context) error

	// Snapshot returns the current per-client counts.
	Snapshot(ctx context.Context) (map[string]int64, error)
}
