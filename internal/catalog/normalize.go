package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sakif/samewave/internal/model"
)

// ErrUnrecognizedPayload is returned for valid JSON in neither known shape,
// e.g. an error object from the upstream.
var ErrUnrecognizedPayload = errors.New("catalog: unrecognized payload")

// flexID accepts a JSON string or number. Deezer ids are numbers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("catalog: id is neither string nor number: %s", data)
	}
	*f = flexID(n.String())
	return nil
}

type spotifyTrack struct {
	ID      flexID `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		ReleaseDate string `json:"release_date"`
		Images      []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
	PreviewURL string `json:"preview_url"`
}

type deezerTrack struct {
	ID     flexID `json:"id"`
	Title  string `json:"title"`
	Artist struct {
		Name string `json:"name"`
	} `json:"artist"`
	Album struct {
		ReleaseDate string `json:"release_date"`
		CoverMedium string `json:"cover_medium"`
		CoverBig    string `json:"cover_big"`
		CoverXL     string `json:"cover_xl"`
	} `json:"album"`
	Preview string `json:"preview"`
}

type payload struct {
	Tracks *struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
	Data *[]deezerTrack `json:"data"`
}

// Normalize decodes either upstream shape into tracks:
//
//	{"tracks": {"items": [...]}}   token-based catalog (Spotify)
//	{"data": [...]}                public catalog (Deezer)
//
// Missing subfields become "". The result is never nil on success.
func Normalize(body []byte) ([]model.Track, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("catalog: decoding payload: %w", err)
	}

	switch {
	case p.Tracks != nil:
		out := make([]model.Track, 0, len(p.Tracks.Items))
		for _, t := range p.Tracks.Items {
			out = append(out, t.track())
		}
		return out, nil
	case p.Data != nil:
		out := make([]model.Track, 0, len(*p.Data))
		for _, t := range *p.Data {
			out = append(out, t.track())
		}
		return out, nil
	default:
		return nil, ErrUnrecognizedPayload
	}
}

func (t spotifyTrack) track() model.Track {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}

	var cover string
	switch {
	case len(t.Album.Images) > 1:
		cover = t.Album.Images[1].URL
	case len(t.Album.Images) == 1:
		cover = t.Album.Images[0].URL
	}

	return model.Track{
		ID:         string(t.ID),
		Title:      t.Name,
		Artist:     strings.Join(names, ", "),
		Year:       year(t.Album.ReleaseDate),
		PreviewURL: t.PreviewURL,
		CoverURL:   cover,
	}
}

func (t deezerTrack) track() model.Track {
	return model.Track{
		ID:         string(t.ID),
		Title:      t.Title,
		Artist:     t.Artist.Name,
		Year:       year(t.Album.ReleaseDate),
		PreviewURL: t.Preview,
		CoverURL:   firstNonEmpty(t.Album.CoverBig, t.Album.CoverMedium, t.Album.CoverXL),
	}
}

func year(releaseDate string) string {
	if len(releaseDate) > 4 {
		return releaseDate[:4]
	}
	return releaseDate
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
