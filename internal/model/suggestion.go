package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/sakif/samewave/internal/apperror"
)

const MaxReasonLength = 500

// Suggestion proposes a similar track for a thread. ThreadID is not checked
// against the thread collection; readers must cope with dangling references.
type Suggestion struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"threadId"`
	TrackID   string    `json:"trackId"`
	Reason    string    `json:"reason"`
	Tags      []string  `json:"tags"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	Votes     int       `json:"votes"`
	TrackData *Track    `json:"trackData,omitempty"`
}

// NewSuggestion is the payload accepted by suggestion creation.
type NewSuggestion struct {
	ThreadID  string   `json:"threadId"`
	TrackID   string   `json:"trackId"`
	Reason    string   `json:"reason"`
	Tags      []string `json:"tags"`
	CreatedBy string   `json:"createdBy"`
	TrackData *Track   `json:"trackData,omitempty"`
}

// Normalize trims and validates the payload in place.
func (n *NewSuggestion) Normalize() error {
	n.ThreadID = strings.TrimSpace(n.ThreadID)
	if n.ThreadID == "" {
		return apperror.ValidationFailed("threadId", "threadId is required")
	}

	n.TrackID = strings.TrimSpace(n.TrackID)
	if n.TrackID == "" && n.TrackData != nil {
		n.TrackID = strings.TrimSpace(n.TrackData.ID)
	}
	if n.TrackID == "" {
		return apperror.ValidationFailed("trackId", "trackId is required")
	}
	if len(n.TrackID) > MaxTrackIDLength {
		return apperror.ValidationFailed("trackId",
			fmt.Sprintf("trackId must be %d characters or fewer", MaxTrackIDLength))
	}

	n.Reason = strings.TrimSpace(n.Reason)
	if len(n.Reason) > MaxReasonLength {
		return apperror.ValidationFailed("reason",
			fmt.Sprintf("reason must be %d characters or fewer", MaxReasonLength))
	}

	createdBy, err := normalizeCreatedBy(n.CreatedBy)
	if err != nil {
		return err
	}
	n.CreatedBy = createdBy

	tags, err := NormalizeTags(n.Tags)
	if err != nil {
		return err
	}
	n.Tags = tags

	// Work on a copy: the caller's track stays as it was passed.
	n.TrackData = n.TrackData.Snapshot()
	if n.TrackData != nil && n.TrackData.ID == "" {
		n.TrackData.ID = n.TrackID
	}
	return nil
}

// Suggestion builds the record for a normalized payload with zero votes.
func (n NewSuggestion) Suggestion() Suggestion {
	return Suggestion{
		ThreadID:  n.ThreadID,
		TrackID:   n.TrackID,
		Reason:    n.Reason,
		Tags:      append([]string{}, n.Tags...),
		CreatedBy: n.CreatedBy,
		TrackData: n.TrackData.Snapshot(),
	}
}
