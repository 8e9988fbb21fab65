package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestCacheBuildKeyTracksVersion(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	key, err := cache.BuildKey(ctx, "reporting", "report", "monthly", "2024-01")
	require.NoError(t, err)
	assert.Equal(t, "reporting:report:monthly:2024-01:1", key)

	require.NoError(t, cache.Bump(ctx))
	key, err = cache.BuildKey(ctx, "reporting", "report", "monthly", "2024-01")
	require.NoError(t, err)
	assert.Equal(t, "reporting:report:monthly:2024-01:2", key)
}

func TestCacheFetchJSONUsesStoredValue(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return Snapshot{Revenue: 42}, nil
	}

	var first, second Snapshot
	require.NoError(t, cache.FetchJSON(ctx, "k", &first, loader))
	require.NoError(t, cache.FetchJSON(ctx, "k", &second, loader))

	assert.Equal(t, 1, calls)
	assert.Equal(t, 42.0, second.Revenue)
	assert.True(t, mr.Exists("k"))
	assert.Equal(t, time.Minute, mr.TTL("k"))
}

func TestCacheFetchJSONPropagatesLoaderError(t *testing.T) {
	cache, mr := newTestCache(t)
	boom := errors.New("boom")
	var dest Snapshot

	err := cache.FetchJSON(context.Background(), "k", &dest, func(context.Context) (any, error) {
		return nil, boom
	})

	require.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestNilCacheIsPassthrough(t *testing.T) {
	ctx := context.Background()
	var cache *Cache
	calls := 0
	var dest Snapshot

	for i := 0; i < 2; i++ {
		require.NoError(t, cache.FetchJSON(ctx, "k", &dest, func(context.Context) (any, error) {
			calls++
			return Snapshot{Profit: 7}, nil
		}))
	}
	key, err := cache.BuildKey(ctx, "a", "b")
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, 7.0, dest.Profit)
	assert.Equal(t, "a:b", key)
	assert.NoError(t, cache.Bump(ctx))
	assert.Error(t, cache.FetchJSON(ctx, "k", &dest, nil))
}

func TestListenForInvalidationReportsBumps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache, _ := newTestCache(t)
	versions := make(chan int64, 1)

	require.NoError(t, cache.ListenForInvalidation(ctx, "", func(v int64) { versions <- v }))
	_, err := cache.Version(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx))

	select {
	case v := <-versions:
		assert.Equal(t, int64(2), v)
	case <-time.After(2 * time.Second):
		t.Fatal("bump was not delivered")
	}
}
