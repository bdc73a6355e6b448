package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/samewave/internal/model"
)

const threadColumns = `id, seed_track_id, tags, created_by, created_at, track_data`

func (db *DB) CreateThread(ctx context.Context, thread *model.Thread) error {
	if thread.ID == "" {
		thread.ID = model.NewThreadID()
	}
	if thread.CreatedAt.IsZero() {
		thread.CreatedAt = time.Now().UTC()
	}
	if thread.Tags == nil {
		thread.Tags = []string{}
	}

	tags, err := encodeTags(thread.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: creating thread: %w", err)
	}
	track, err := encodeTrack(thread.TrackData)
	if err != nil {
		return fmt.Errorf("sqlite: creating thread: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO threads (`+threadColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		thread.ID,
		thread.SeedTrackID,
		tags,
		thread.CreatedBy,
		thread.CreatedAt,
		track,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting thread %s: %w", thread.ID, err)
	}
	return nil
}

func (db *DB) ListThreads(ctx context.Context) ([]model.Thread, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+threadColumns+` FROM threads ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing threads: %w", err)
	}
	defer rows.Close()

	threads := []model.Thread{}
	for rows.Next() {
		th, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning thread: %w", err)
		}
		threads = append(threads, *th)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating threads: %w", err)
	}
	return threads, nil
}

func scanThread(s scanner) (*model.Thread, error) {
	var (
		th    model.Thread
		tags  string
		track sql.NullString
	)
	if err := s.Scan(&th.ID, &th.SeedTrackID, &tags, &th.CreatedBy, &th.CreatedAt, &track); err != nil {
		return nil, err
	}

	var err error
	if th.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	if th.TrackData, err = decodeTrack(track); err != nil {
		return nil, err
	}
	return &th, nil
}
