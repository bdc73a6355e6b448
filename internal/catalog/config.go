package catalog

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Config selects and tunes the providers. Providers are tried in the order
// listed; unknown names are rejected.
type Config struct {
	Providers         []string      `mapstructure:"providers"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`

	Deezer struct {
		BaseURL string   `mapstructure:"base_url"`
		Relays  []string `mapstructure:"relays"`
	} `mapstructure:"deezer"`

	Spotify SpotifyConfig `mapstructure:"spotify"`
}

// New builds a Gateway from cfg. Spotify is skipped when it has no
// credentials, so an unconfigured install still searches Deezer.
func New(cfg Config, client *http.Client, logger *slog.Logger) (*Gateway, error) {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	names := cfg.Providers
	if len(names) == 0 {
		names = []string{"spotify", "deezer"}
	}

	var providers []Provider
	for _, name := range names {
		limiter := newLimiter(cfg.RequestsPerSecond, cfg.Burst)
		switch name {
		case "spotify":
			if !cfg.Spotify.Enabled() {
				logger.Info("spotify provider disabled: no client credentials")
				continue
			}
			providers = append(providers, NewSpotify(cfg.Spotify, client, limiter, logger))
		case "deezer":
			relays := cfg.Deezer.Relays
			if len(relays) == 0 {
				relays = DefaultDeezerRelays
			}
			providers = append(providers, NewDeezer(cfg.Deezer.BaseURL, relays, client, limiter, logger))
		default:
			return nil, fmt.Errorf("catalog: unknown provider %q", name)
		}
	}

	return NewGateway(providers, cfg.Timeout, logger), nil
}

func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
