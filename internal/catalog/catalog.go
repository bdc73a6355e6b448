// Package catalog is the track search gateway. It asks external music
// catalogs for tracks matching a free-text query and normalizes every answer
// into model.Track.
//
// Search never fails from the caller's point of view: an upstream that is
// down, slow or returns garbage is logged and the result is simply empty.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/samewave/internal/model"
)

const (
	DefaultLimit   = 12
	MaxLimit       = 50
	DefaultTimeout = 8 * time.Second
)

// Searcher is what the rest of the application depends on.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) []model.Track
}

// Provider is one upstream catalog. Unlike Searcher it reports failures so
// the gateway can move on to the next provider.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]model.Track, error)
}

// Gateway tries its providers in order under one overall deadline.
type Gateway struct {
	providers []Provider
	timeout   time.Duration
	logger    *slog.Logger
}

func NewGateway(providers []Provider, timeout time.Duration, logger *slog.Logger) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{
		providers: providers,
		timeout:   timeout,
		logger:    logger,
	}
}

// ClampLimit applies the default and the upper bound.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Search returns at most limit tracks from the first provider that answers
// without error. The result is never nil.
func (g *Gateway) Search(ctx context.Context, query string, limit int) []model.Track {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Track{}
	}
	limit = ClampLimit(limit)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	for _, p := range g.providers {
		start := time.Now()
		tracks, err := p.Search(ctx, query, limit)
		if err != nil {
			g.logger.Warn("catalog provider failed",
				slog.String("provider", p.Name()),
				slog.String("query", query),
				slog.String("error", err.Error()),
			)
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				break
			}
			continue
		}

		if len(tracks) > limit {
			tracks = tracks[:limit]
		}
		g.logger.Debug("catalog search served",
			slog.String("provider", p.Name()),
			slog.String("query", query),
			slog.Int("results", len(tracks)),
			slog.Duration("duration", time.Since(start)),
		)
		return tracks
	}

	return []model.Track{}
}
