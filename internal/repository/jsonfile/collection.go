package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// ErrClosed is returned for operations submitted after Close.
var ErrClosed = errors.New("jsonfile: store closed")

// op is one queued unit of work. apply receives the freshly read document
// and returns the document to write back, or write=false to leave it as is.
type op[T any] struct {
	apply  func(items []T) (next []T, write bool, err error)
	result chan error
}

// collection owns one JSON document. A single writer goroutine drains the
// queue, so each read-modify-write cycle sees the previous cycle's output.
type collection[T any] struct {
	name   string
	path   string
	logger *slog.Logger

	queue     chan op[T]
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newCollection[T any](dir, name string, logger *slog.Logger) *collection[T] {
	c := &collection[T]{
		name:   name,
		path:   filepath.Join(dir, name+".json"),
		logger: logger,
		queue:  make(chan op[T]),
		done:   make(chan struct{}),
	}
	c.wg.Add(1)
	go c.writer()
	return c
}

func (c *collection[T]) writer() {
	defer c.wg.Done()

	for {
		select {
		case <-c.done:
			return
		case o := <-c.queue:
			o.result <- c.run(o)
		}
	}
}

// run is the full read -> mutate -> replace cycle.
func (c *collection[T]) run(o op[T]) error {
	items, err := c.read()
	if err != nil {
		return err
	}

	next, write, err := o.apply(items)
	if err != nil || !write {
		return err
	}

	if err := c.write(next); err != nil {
		return err
	}
	c.logger.Debug("collection written",
		slog.String("collection", c.name),
		slog.Int("items", len(next)),
	)
	return nil
}

// do submits fn and waits for it. Once an op is accepted it always runs to
// completion, even if ctx is cancelled meanwhile, so the caller waits for it.
func (c *collection[T]) do(ctx context.Context, fn func(items []T) ([]T, bool, error)) error {
	o := op[T]{apply: fn, result: make(chan error, 1)}

	select {
	case c.queue <- o:
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	return <-o.result
}

// snapshot returns a copy of the document as the writer sees it.
func (c *collection[T]) snapshot(ctx context.Context) ([]T, error) {
	var out []T
	err := c.do(ctx, func(items []T) ([]T, bool, error) {
		out = append(make([]T, 0, len(items)), items...)
		return nil, false, nil
	})
	return out, err
}

func (c *collection[T]) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.wg.Wait()
	})
}

// read loads the whole document. A missing file is an empty collection.
// An unparseable file is an error: overwriting it would lose every record.
func (c *collection[T]) read() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jsonfile: reading %s: %w", c.name, err)
	}
	if len(data) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		c.logger.Error("collection file is not valid JSON",
			slog.String("collection", c.name),
			slog.String("path", c.path),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("jsonfile: decoding %s: %w", c.name, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// write replaces the document: pretty-printed into a temp file in the same
// directory, then renamed over the old one.
func (c *collection[T]) write(items []T) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encoding %s: %w", c.name, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), "."+c.name+"-*.json")
	if err != nil {
		return fmt.Errorf("jsonfile: creating temp file for %s: %w", c.name, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("jsonfile: writing %s: %w", c.name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("jsonfile: closing %s: %w", c.name, err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("jsonfile: replacing %s: %w", c.name, err)
	}
	return nil
}
