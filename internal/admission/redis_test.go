package admission

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// redisTestController returns a controller backed by a real Redis, or
// skips when CHATGATE_TEST_REDIS_ADDR is not set.
func redisTestController(t *testing.T, caps Caps) *RedisController {
	t.Helper()

	addr := os.Getenv("CHATGATE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CHATGATE_TEST_REDIS_ADDR not set, skipping Redis integration test")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctrl, err := NewRedisController(client, "chatgate:test:connections", caps)
	require.NoError(t, err)
	require.NoError(t, ctrl.Reset(context.Background()))
	t.Cleanup(func() { _ = ctrl.Reset(context.Background()) })
	return ctrl
}

func TestRedisAcquireIsAtomicAcrossGoroutines(t *testing.T) {
	ctrl := redisTestController(t, Caps{GlobalMax: 4, PerClientMax: 1})
	ctx := context.Background()

	clientIDs := []string{"1", "2", "3", "4", "5", "1", "2"}
	var wg sync.WaitGroup
	results := make([]bool, len(clientIDs))
	for i, id := range clientIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			ok, err := ctrl.Acquire(ctx, id)
			require.NoError(t, err)
			results[i] = ok
		}(i, id)
	}
	wg.Wait()

	admitted := 0
	for _, ok := range results {
		if ok {
			admitted++
		}
	}
	assert.Equal(t, 4, admitted)

	counts, err := ctrl.Snapshot(ctx)
	require.NoError(t, err)
	var total int64
	for _, n := range counts {
		assert.LessOrEqual(t, n, int64(1))
		total += n
	}
	assert.Equal(t, int64(4), total)
}

func TestRedisReleaseAndReset(t *testing.T) {
	ctrl := redisTestController(t, Caps{GlobalMax: 2, PerClientMax: 2})
	ctx := context.Background()

	ok, err := ctrl.Acquire(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, ctrl.Release(ctx, "a"))
	counts, err := ctrl.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts["a"])

	require.NoError(t, ctrl.Reset(ctx))
	counts, err = ctrl.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}
