package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/sakif/samewave/internal/model"
)

const DeezerBaseURL = "https://api.deezer.com"

// Relays the public catalog is known to answer through when a direct call
// is blocked.
var DefaultDeezerRelays = []string{
	DirectRelay,
	"https://api.allorigins.win/raw?url=",
	"https://corsproxy.io/?",
}

// Deezer searches the public catalog. No credentials are needed.
type Deezer struct {
	baseURL string
	fetch   *relayFetcher
}

func NewDeezer(baseURL string, relays []string, client *http.Client, limiter *rate.Limiter, logger *slog.Logger) *Deezer {
	if baseURL == "" {
		baseURL = DeezerBaseURL
	}
	return &Deezer{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetch:   newRelayFetcher(client, relays, limiter, logger),
	}
}

func (d *Deezer) Name() string { return "deezer" }

func (d *Deezer) Search(ctx context.Context, query string, limit int) ([]model.Track, error) {
	upstream := fmt.Sprintf("%s/search?q=%s&limit=%d", d.baseURL, url.QueryEscape(query), limit)
	return d.fetch.fetchTracks(ctx, upstream, nil)
}
