package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/samewave/internal/model"
)

// newTestDB opens a fresh in-memory database per test. t.Cleanup closes it
// even when the test fails halfway.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestThread(t *testing.T, db *DB, seed string) *model.Thread {
	t.Helper()
	th := &model.Thread{
		SeedTrackID: seed,
		Tags:        []string{"Chill"},
		CreatedBy:   "@SmoothTune12",
		TrackData:   &model.Track{ID: seed, Title: "Song " + seed, Artist: "Artist"},
	}
	if err := db.CreateThread(context.Background(), th); err != nil {
		t.Fatalf("failed to create test thread: %v", err)
	}
	return th
}

func createTestSuggestion(t *testing.T, db *DB, threadID, trackID string) *model.Suggestion {
	t.Helper()
	s := &model.Suggestion{
		ThreadID:  threadID,
		TrackID:   trackID,
		Reason:    "same energy",
		CreatedBy: "@EpicBeat4",
	}
	if err := db.CreateSuggestion(context.Background(), s); err != nil {
		t.Fatalf("failed to create test suggestion: %v", err)
	}
	return s
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}
}
