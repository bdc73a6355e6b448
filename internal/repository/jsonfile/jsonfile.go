// Package jsonfile stores each collection as one pretty-printed JSON array
// on disk: users.json, threads.json and suggestions.json.
//
// Every write reads the whole document, changes it in memory and replaces the
// file. Those cycles are funnelled through one writer goroutine per
// collection, so two concurrent upvotes can no longer both read the old
// count and overwrite each other.
package jsonfile

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sakif/samewave/internal/model"
	"github.com/sakif/samewave/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store implements repository.Store on top of three collections.
type Store struct {
	dir         string
	threads     *collection[model.Thread]
	suggestions *collection[model.Suggestion]
	users       *collection[userRecord]
}

// New creates dir if needed and starts the collection writers.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("jsonfile: creating data dir %s: %w", dir, err)
	}

	logger = logger.With(slog.String("store", "jsonfile"))
	return &Store{
		dir:         dir,
		threads:     newCollection[model.Thread](dir, "threads", logger),
		suggestions: newCollection[model.Suggestion](dir, "suggestions", logger),
		users:       newCollection[userRecord](dir, "users", logger),
	}, nil
}

// Close stops the writers. Queued operations finish first.
func (s *Store) Close() error {
	s.threads.close()
	s.suggestions.close()
	s.users.close()
	return nil
}
