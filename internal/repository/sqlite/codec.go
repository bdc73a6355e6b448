package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sakif/samewave/internal/model"
)

// Tags and track snapshots are stored as JSON text columns.

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(s string) ([]string, error) {
	tags := []string{}
	if s == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	return tags, nil
}

func encodeTrack(t *model.Track) (sql.NullString, error) {
	if t == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding track snapshot: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeTrack(ns sql.NullString) (*model.Track, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var t model.Track
	if err := json.Unmarshal([]byte(ns.String), &t); err != nil {
		return nil, fmt.Errorf("decoding track snapshot: %w", err)
	}
	return &t, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
