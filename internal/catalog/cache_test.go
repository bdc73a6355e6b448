package catalog

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/samewave/internal/model"
)

type countingSearcher struct {
	calls  atomic.Int32
	tracks []model.Track
}

func (c *countingSearcher) Search(context.Context, string, int) []model.Track {
	c.calls.Add(1)
	return c.tracks
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCachedHitSkipsInner(t *testing.T) {
	mr, client := newTestRedis(t)
	inner := &countingSearcher{tracks: []model.Track{{ID: "1", Title: "One More Time"}}}
	c := NewCached(inner, client, time.Minute, testLogger())
	ctx := context.Background()

	first := c.Search(ctx, "Daft Punk", 5)
	second := c.Search(ctx, "daft punk", 5)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, inner.calls.Load())
	assert.True(t, mr.Exists("samewave:search:5:daft punk"))
	assert.Equal(t, time.Minute, mr.TTL("samewave:search:5:daft punk"))
}

func TestCachedNeverStoresEmpty(t *testing.T) {
	mr, client := newTestRedis(t)
	inner := &countingSearcher{tracks: []model.Track{}}
	c := NewCached(inner, client, time.Minute, testLogger())

	c.Search(context.Background(), "nothing", 5)
	c.Search(context.Background(), "nothing", 5)

	assert.EqualValues(t, 2, inner.calls.Load())
	assert.Empty(t, mr.Keys())
}

func TestCachedFallsThroughWhenRedisDown(t *testing.T) {
	mr, client := newTestRedis(t)
	inner := &countingSearcher{tracks: []model.Track{{ID: "1"}}}
	c := NewCached(inner, client, time.Minute, testLogger())
	mr.Close()

	got := c.Search(context.Background(), "q", 5)
	require.Len(t, got, 1)
	assert.EqualValues(t, 1, inner.calls.Load())
}

func TestCacheKeyUsesClampedLimit(t *testing.T) {
	assert.Equal(t, "samewave:search:12:abba", CacheKey("  ABBA ", 0))
	assert.Equal(t, "samewave:search:50:abba", CacheKey("abba", 99))
}
