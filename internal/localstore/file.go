package localstore

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

// FileStore keeps every key in one JSON object document. The document is
// loaded once when the store is opened and saved after every mutation.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu   sync.Mutex
	data map[string]string
}

// NewFileStore opens path. A missing file is an empty store. A file that is
// not a JSON object of strings is logged and discarded.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		logger: logger,
		data:   make(map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("localstore: reading %s: %w", s.path, err)
	}
	if len(raw) == 0 {
		return nil
	}

	var data map[string]string
	if err := json.Unmarshal(raw, &data); err != nil {
		s.logger.Warn("discarding malformed local state",
			slog.String("path", s.path),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if data != nil {
		s.data = data
	}
	return nil
}

// save writes the document through a temp file and a rename. Callers hold mu.
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("localstore: encoding state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("localstore: creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".samewave-state-*.json")
	if err != nil {
		return fmt.Errorf("localstore: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("localstore: writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("localstore: closing state: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("localstore: replacing state: %w", err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return s.save()
}

func (s *FileStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return s.save()
}
