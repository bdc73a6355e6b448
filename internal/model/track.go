package model

// Track is a catalog entry normalized from whichever upstream answered a
// search. It is never stored on its own: threads and suggestions embed a
// copy taken at creation time.
type Track struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Year       string `json:"year"`
	PreviewURL string `json:"previewUrl,omitempty"`
	CoverURL   string `json:"coverUrl,omitempty"`
}

// Snapshot returns an independent copy of t, or nil when t is nil.
func (t *Track) Snapshot() *Track {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}
