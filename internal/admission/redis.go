package admission

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// acquireScript performs the cap check and the increment in one server-side
// step. Both caps are evaluated against the pre-increment snapshot of the
// hash; HINCRBY only runs when both hold, so concurrent acquires from any
// process can never push a count past its cap.
var acquireScript = redis.NewScript(`
local key = KEYS[1]
local client_id = ARGV[1]
local max_connections = tonumber(ARGV[2])
local max_connections_per_client = tonumber(ARGV[3])

local hash = redis.call('HGETALL', key)
local total = 0
local client = 0

for i = 1, #hash, 2 do
    total = total + tonumber(hash[i + 1])
    if hash[i] == client_id then
        client = tonumber(hash[i + 1])
    end
end

if total >= max_connections then
    return 0
end

if client >= max_connections_per_client then
    return 0
end

redis.call('HINCRBY', key, client_id, 1)
return 1
`)

// RedisController stores the per-client counts in a single Redis hash
// shared by all gateway processes. The hash is the only source of truth;
// no count is cached between calls.
type RedisController struct {
	client redis.UniversalClient
	key    string
	caps   Caps
}

// NewRedisController creates a Redis-backed admission controller. The key
// names the hash holding client_id → active count.
func NewRedisController(client redis.UniversalClient, key string, caps Caps) (*RedisController, error) {
	if err := caps.Validate(); err != nil {
		return nil, err
	}
	if key == "" {
		key = "chatgate:connections"
	}
	return &RedisController{client: client, key: key, caps: caps}, nil
}

// Acquire runs the check-and-increment script in a single round trip.
func (r *RedisController) Acquire(ctx context.Context, clientID string) (bool, error) {
	ok, err := acquireScript.Run(ctx, r.client, []string{r.key},
		clientID, r.caps.GlobalMax, r.caps.PerClientMax).Int()
	if err != nil {
		return false, fmt.Errorf("admission store acquire: %w", err)
	}
	return ok == 1, nil
}

// Release decrements the client's count. The entry may rest at zero.
func (r *RedisController) Release(ctx context.Context, clientID string) error {
	if err := r.client.HIncrBy(ctx, r.key, clientID, -1).Err(); err != nil {
		return fmt.Errorf("admission store release: %w", err)
	}
	return nil
}

// Reset deletes the hash, dropping every count. Run at startup so counts
// left behind by a crashed process do not eat into the caps forever.
func (r *RedisController) Reset(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("admission store reset: %w", err)
	}
	return nil
}

// Snapshot reads the full hash.
func (r *RedisController) Snapshot(ctx context.Context) (map[string]int64, error) {
	raw, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("admission store snapshot: %w", err)
	}

	out := make(map[string]int64, len(raw))
	for id, v := range raw {
		var n int64
		if _, err := fmt.Sscan(v, &n); err != nil {
			return nil, fmt.Errorf("admission store snapshot: bad count %q for %q", v, id)
		}
		out[id] = n
	}
	return out, nil
}
