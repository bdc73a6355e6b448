package jsonfile

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/samewave/internal/model"
)

func (s *Store) CreateThread(ctx context.Context, thread *model.Thread) error {
	if thread.ID == "" {
		thread.ID = model.NewThreadID()
	}
	if thread.CreatedAt.IsZero() {
		thread.CreatedAt = time.Now().UTC()
	}
	if thread.Tags == nil {
		thread.Tags = []string{}
	}

	err := s.threads.do(ctx, func(items []model.Thread) ([]model.Thread, bool, error) {
		return prepend(items, *thread), true, nil
	})
	if err != nil {
		return fmt.Errorf("jsonfile: creating thread: %w", err)
	}
	return nil
}

func (s *Store) ListThreads(ctx context.Context) ([]model.Thread, error) {
	items, err := s.threads.snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("jsonfile: listing threads: %w", err)
	}
	return items, nil
}

// prepend returns items with v at index 0.
func prepend[T any](items []T, v T) []T {
	out := make([]T, 0, len(items)+1)
	out = append(out, v)
	return append(out, items...)
}
