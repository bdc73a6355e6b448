package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/sakif/samewave/internal/model"
)

const (
	SpotifyTokenURL = "https://accounts.spotify.com/api/token"
	SpotifyAPIBase  = "https://api.spotify.com/v1"
	SpotifyMarket   = "IT"

	// tokenEarlyExpiry refreshes the app token this long before it expires.
	tokenEarlyExpiry = 60 * time.Second
)

// SpotifyConfig holds the app credentials for the client-credentials grant.
type SpotifyConfig struct {
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	TokenURL     string   `mapstructure:"token_url"`
	APIBase      string   `mapstructure:"api_base"`
	Market       string   `mapstructure:"market"`
	Relays       []string `mapstructure:"relays"`
}

// Enabled reports whether credentials are present.
func (c SpotifyConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Spotify searches the token-based catalog with an app token.
type Spotify struct {
	apiBase string
	market  string
	creds   clientcredentials.Config
	client  *http.Client
	fetch   *relayFetcher

	mu    sync.Mutex
	token *oauth2.Token
}

// NewSpotify builds the provider. The app token is fetched lazily on the
// first search and reused until shortly before it expires.
func NewSpotify(cfg SpotifyConfig, client *http.Client, limiter *rate.Limiter, logger *slog.Logger) *Spotify {
	if cfg.TokenURL == "" {
		cfg.TokenURL = SpotifyTokenURL
	}
	if cfg.APIBase == "" {
		cfg.APIBase = SpotifyAPIBase
	}
	if cfg.Market == "" {
		cfg.Market = SpotifyMarket
	}

	return &Spotify{
		apiBase: strings.TrimRight(cfg.APIBase, "/"),
		market:  cfg.Market,
		creds: clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		},
		client: client,
		fetch:  newRelayFetcher(client, cfg.Relays, limiter, logger),
	}
}

// appToken returns the cached token, or fetches a new one under ctx so the
// caller's deadline also bounds the token endpoint. The lock is not held
// during the fetch; concurrent cold starts may each fetch once.
func (s *Spotify) appToken(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	cached := s.token
	s.mu.Unlock()

	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, s.client)
	src := oauth2.ReuseTokenSourceWithExpiry(cached, s.creds.TokenSource(tokenCtx), tokenEarlyExpiry)
	token, err := src.Token()
	if err != nil {
		return nil, err
	}

	if token != cached {
		s.mu.Lock()
		s.token = token
		s.mu.Unlock()
	}
	return token, nil
}

func (s *Spotify) Name() string { return "spotify" }

func (s *Spotify) Search(ctx context.Context, query string, limit int) ([]model.Track, error) {
	token, err := s.appToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetching app token: %w", err)
	}

	upstream := fmt.Sprintf("%s/search?q=%s&type=track&limit=%d&market=%s",
		s.apiBase, url.QueryEscape(query), limit, url.QueryEscape(s.market))

	return s.fetch.fetchTracks(ctx, upstream, func(req *http.Request) error {
		token.SetAuthHeader(req)
		return nil
	})
}
