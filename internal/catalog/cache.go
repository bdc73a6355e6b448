package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sakif/samewave/internal/model"
)

const (
	cacheKeyPrefix  = "samewave:search:"
	DefaultCacheTTL = 10 * time.Minute
)

// Cached puts a Redis cache-aside in front of another Searcher. Redis
// trouble is logged and the inner searcher answers instead.
type Cached struct {
	inner  Searcher
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCached(inner Searcher, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// CacheKey is the Redis key for a query. Queries differing only in case
// share an entry.
func CacheKey(query string, limit int) string {
	return fmt.Sprintf("%s%d:%s", cacheKeyPrefix, ClampLimit(limit), strings.ToLower(strings.TrimSpace(query)))
}

func (c *Cached) Search(ctx context.Context, query string, limit int) []model.Track {
	if strings.TrimSpace(query) == "" {
		return []model.Track{}
	}
	key := CacheKey(query, limit)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var tracks []model.Track
		if err := json.Unmarshal(raw, &tracks); err == nil {
			return tracks
		}
		c.logger.Warn("search cache entry unreadable", slog.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("search cache get failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	tracks := c.inner.Search(ctx, query, limit)
	if len(tracks) == 0 {
		return tracks
	}

	data, err := json.Marshal(tracks)
	if err != nil {
		return tracks
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("search cache set failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	return tracks
}
