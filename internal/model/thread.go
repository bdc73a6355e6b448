// Package model defines the records shared by the store, the client and the
// gateway.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/sakif/samewave/internal/apperror"
)

const (
	MaxCreatedByLength = 64
	MaxTrackIDLength   = 128
)

// Thread is a discussion anchored to one seed track.
// TrackData is a snapshot taken at creation and may be nil.
type Thread struct {
	ID          string    `json:"id"`
	SeedTrackID string    `json:"seedTrackId"`
	Tags        []string  `json:"tags"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	TrackData   *Track    `json:"trackData,omitempty"`
}

// NewThread is the payload accepted by thread creation.
type NewThread struct {
	SeedTrackID string   `json:"seedTrackId"`
	Tags        []string `json:"tags"`
	CreatedBy   string   `json:"createdBy"`
	TrackData   *Track   `json:"trackData,omitempty"`
}

// Normalize trims and validates the payload in place.
// The seed track id falls back to the snapshot's id when omitted.
func (n *NewThread) Normalize() error {
	n.SeedTrackID = strings.TrimSpace(n.SeedTrackID)
	if n.SeedTrackID == "" && n.TrackData != nil {
		n.SeedTrackID = strings.TrimSpace(n.TrackData.ID)
	}
	if n.SeedTrackID == "" {
		return apperror.ValidationFailed("seedTrackId", "seedTrackId is required")
	}
	if len(n.SeedTrackID) > MaxTrackIDLength {
		return apperror.ValidationFailed("seedTrackId",
			fmt.Sprintf("seedTrackId must be %d characters or fewer", MaxTrackIDLength))
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
		n.TrackData.ID = n.SeedTrackID
	}
	return nil
}

// Thread builds the record for a normalized payload. Id and timestamp are
// left for the store (or the offline client) to assign.
func (n NewThread) Thread() Thread {
	return Thread{
		SeedTrackID: n.SeedTrackID,
		Tags:        append([]string{}, n.Tags...),
		CreatedBy:   n.CreatedBy,
		TrackData:   n.TrackData.Snapshot(),
	}
}

func normalizeCreatedBy(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperror.ValidationFailed("createdBy", "createdBy is required")
	}
	if len(s) > MaxCreatedByLength {
		return "", apperror.ValidationFailed("createdBy",
			fmt.Sprintf("createdBy must be %d characters or fewer", MaxCreatedByLength))
	}
	return s, nil
}
