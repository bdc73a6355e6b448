package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/samewave/internal/apperror"
	"github.com/sakif/samewave/internal/model"
)

const suggestionColumns = `id, thread_id, track_id, reason, tags, created_by, created_at, votes, track_data`

func (db *DB) CreateSuggestion(ctx context.Context, suggestion *model.Suggestion) error {
	if suggestion.ID == "" {
		suggestion.ID = model.NewSuggestionID()
	}
	if suggestion.CreatedAt.IsZero() {
		suggestion.CreatedAt = time.Now().UTC()
	}
	if suggestion.Tags == nil {
		suggestion.Tags = []string{}
	}
	suggestion.Votes = 0

	tags, err := encodeTags(suggestion.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: creating suggestion: %w", err)
	}
	track, err := encodeTrack(suggestion.TrackData)
	if err != nil {
		return fmt.Errorf("sqlite: creating suggestion: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO suggestions (`+suggestionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		suggestion.ID,
		suggestion.ThreadID,
		suggestion.TrackID,
		suggestion.Reason,
		tags,
		suggestion.CreatedBy,
		suggestion.CreatedAt,
		suggestion.Votes,
		track,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting suggestion %s: %w", suggestion.ID, err)
	}
	return nil
}

func (db *DB) ListSuggestions(ctx context.Context) ([]model.Suggestion, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+suggestionColumns+` FROM suggestions ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing suggestions: %w", err)
	}
	defer rows.Close()

	suggestions := []model.Suggestion{}
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning suggestion: %w", err)
		}
		suggestions = append(suggestions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating suggestions: %w", err)
	}
	return suggestions, nil
}

// UpvoteSuggestion increments and reads back in one statement.
func (db *DB) UpvoteSuggestion(ctx context.Context, id string) (*model.Suggestion, error) {
	row := db.conn.QueryRowContext(ctx,
		`UPDATE suggestions SET votes = votes + 1 WHERE id = ? RETURNING `+suggestionColumns,
		id,
	)

	s, err := scanSuggestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("suggestion", id)
		}
		return nil, fmt.Errorf("sqlite: upvoting suggestion %s: %w", id, err)
	}
	return s, nil
}

func scanSuggestion(sc scanner) (*model.Suggestion, error) {
	var (
		s     model.Suggestion
		tags  string
		track sql.NullString
	)
	err := sc.Scan(
		&s.ID,
		&s.ThreadID,
		&s.TrackID,
		&s.Reason,
		&tags,
		&s.CreatedBy,
		&s.CreatedAt,
		&s.Votes,
		&track,
	)
	if err != nil {
		return nil, err
	}

	if s.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	if s.TrackData, err = decodeTrack(track); err != nil {
		return nil, err
	}
	return &s, nil
}
