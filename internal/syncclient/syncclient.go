// Package syncclient keeps the client's working set of threads and
// suggestions. The entity store is authoritative when it answers; when it
// does not, the client keeps working from its local cache and creates
// records locally. Locally created records are never reconciled with the
// store afterwards.
package syncclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/sakif/samewave/internal/apperror"
	"github.com/sakif/samewave/internal/localstore"
	"github.com/sakif/samewave/internal/model"
	"github.com/sakif/samewave/internal/ranking"
)

// Remote is the entity store as seen by the client. apiclient.Client
// implements it.
type Remote interface {
	ListThreads(ctx context.Context) ([]model.Thread, error)
	ListSuggestions(ctx context.Context) ([]model.Suggestion, error)
	CreateThread(ctx context.Context, in model.NewThread) (*model.Thread, error)
	CreateSuggestion(ctx context.Context, in model.NewSuggestion) (*model.Suggestion, error)
	Upvote(ctx context.Context, id string) (*model.Suggestion, error)
}

// Client owns the working set. Network calls happen outside the lock, so
// concurrent mutations race and the last answer wins.
type Client struct {
	remote Remote
	cache  localstore.Store
	logger *slog.Logger
	now    func() time.Time

	mu          sync.RWMutex
	threads     []model.Thread
	suggestions []model.Suggestion
	online      bool

	mirrorMu sync.Mutex
}

func New(remote Remote, cache localstore.Store, logger *slog.Logger) *Client {
	return &Client{
		remote:      remote,
		cache:       cache,
		logger:      logger,
		now:         time.Now,
		threads:     []model.Thread{},
		suggestions: []model.Suggestion{},
	}
}

// Load fills the working set from the store, or from the cache when the
// store cannot serve both collections.
func (c *Client) Load(ctx context.Context) error {
	threads, terr := c.remote.ListThreads(ctx)
	var (
		suggestions []model.Suggestion
		serr        error
	)
	// Either failure means the cache, so a failed first call skips the second.
	if terr == nil {
		suggestions, serr = c.remote.ListSuggestions(ctx)
	}

	if terr == nil && serr == nil {
		c.mu.Lock()
		c.threads = nonNil(threads)
		c.suggestions = nonNil(suggestions)
		c.online = true
		c.mu.Unlock()
		c.mirror(ctx)
		return nil
	}

	c.logger.Warn("entity store unavailable, using local cache",
		slog.String("error", errors.Join(terr, serr).Error()),
	)

	cachedThreads, err := readCached[model.Thread](ctx, c, localstore.KeyThreads)
	if err != nil {
		return err
	}
	cachedSuggestions, err := readCached[model.Suggestion](ctx, c, localstore.KeySuggestions)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.threads = cachedThreads
	c.suggestions = cachedSuggestions
	c.online = false
	c.mu.Unlock()
	return nil
}

// Online reports whether the last Load was served by the store.
func (c *Client) Online() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online
}

// readCached returns the cached collection. Missing means empty; malformed
// is logged, deleted and treated as empty.
func readCached[T any](ctx context.Context, c *Client, key string) ([]T, error) {
	var items []T
	ok, err := localstore.GetJSON(ctx, c.cache, key, &items)
	switch {
	case errors.Is(err, apperror.ErrMalformed):
		c.logger.Warn("discarding malformed cached collection",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		if err := c.cache.Delete(ctx, key); err != nil {
			c.logger.Warn("failed to delete malformed cache entry", slog.String("key", key))
		}
		return []T{}, nil
	case err != nil:
		return nil, fmt.Errorf("syncclient: reading cache %s: %w", key, err)
	case !ok:
		return []T{}, nil
	}
	return nonNil(items), nil
}

// CreateThread validates in, then creates the thread in the store or,
// failing that, locally. Only a validation error is returned.
func (c *Client) CreateThread(ctx context.Context, in model.NewThread) (*model.Thread, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}

	thread, err := c.remote.CreateThread(ctx, in)
	if err != nil {
		c.logger.Warn("entity store unavailable, creating thread locally",
			slog.String("error", err.Error()),
		)
		local := in.Thread()
		local.ID = model.NewThreadID()
		local.CreatedAt = c.now().UTC()
		thread = &local
	}

	c.mu.Lock()
	c.threads = slices.Insert(c.threads, 0, *thread)
	c.mu.Unlock()
	c.mirror(ctx)

	out := *thread
	return &out, nil
}

// CreateSuggestion mirrors CreateThread for suggestions. The thread id is
// not checked against the working set.
func (c *Client) CreateSuggestion(ctx context.Context, in model.NewSuggestion) (*model.Suggestion, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}

	suggestion, err := c.remote.CreateSuggestion(ctx, in)
	if err != nil {
		c.logger.Warn("entity store unavailable, creating suggestion locally",
			slog.String("error", err.Error()),
		)
		local := in.Suggestion()
		local.ID = model.NewSuggestionID()
		local.CreatedAt = c.now().UTC()
		local.Votes = 0
		suggestion = &local
	}

	c.mu.Lock()
	c.suggestions = slices.Insert(c.suggestions, 0, *suggestion)
	c.mu.Unlock()
	c.mirror(ctx)

	out := *suggestion
	return &out, nil
}

// Upvote asks the store first and adopts its record. When the store fails
// the vote is counted locally; an id unknown to both is apperror.ErrNotFound.
func (c *Client) Upvote(ctx context.Context, id string) (*model.Suggestion, error) {
	remote, err := c.remote.Upvote(ctx, id)

	c.mu.Lock()
	idx := slices.IndexFunc(c.suggestions, func(s model.Suggestion) bool { return s.ID == id })

	var out model.Suggestion
	switch {
	case err == nil && idx >= 0:
		c.suggestions[idx] = *remote
		out = *remote
	case err == nil:
		c.suggestions = slices.Insert(c.suggestions, 0, *remote)
		out = *remote
	case idx >= 0:
		c.suggestions[idx].Votes++
		out = c.suggestions[idx]
	default:
		c.mu.Unlock()
		return nil, apperror.NotFound("suggestion", id)
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("entity store unavailable, counting vote locally",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
	}
	c.mirror(ctx)
	return &out, nil
}

// mirror writes the working set to the cache. Failures are logged only.
func (c *Client) mirror(ctx context.Context) {
	c.mirrorMu.Lock()
	defer c.mirrorMu.Unlock()

	threads, suggestions := c.Threads(), c.Suggestions()
	if err := localstore.SetJSON(ctx, c.cache, localstore.KeyThreads, threads); err != nil {
		c.logger.Warn("failed to mirror threads", slog.String("error", err.Error()))
	}
	if err := localstore.SetJSON(ctx, c.cache, localstore.KeySuggestions, suggestions); err != nil {
		c.logger.Warn("failed to mirror suggestions", slog.String("error", err.Error()))
	}
}

// Threads returns a copy of the working set, newest first.
func (c *Client) Threads() []model.Thread {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.threads)
}

// Suggestions returns a copy of the working set, newest first.
func (c *Client) Suggestions() []model.Suggestion {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.suggestions)
}

func (c *Client) Thread(id string) (model.Thread, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.threads {
		if t.ID == id {
			return t, true
		}
	}
	return model.Thread{}, false
}

// RankedSuggestions returns the suggestions of one thread, most votes first.
func (c *Client) RankedSuggestions(threadID string) []model.Suggestion {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ranking.ForThread(c.suggestions, threadID)
}

// Stats counts what handle has contributed.
type Stats struct {
	Threads     int
	Suggestions int
}

func (c *Client) Stats(handle string) Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var s Stats
	for _, t := range c.threads {
		if t.CreatedBy == handle {
			s.Threads++
		}
	}
	for _, sg := range c.suggestions {
		if sg.CreatedBy == handle {
			s.Suggestions++
		}
	}
	return s
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
