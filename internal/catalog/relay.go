package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/sakif/samewave/internal/model"
)

// maxBodyBytes bounds how much of an upstream answer is read.
const maxBodyBytes = 4 << 20

// DirectRelay is the empty prefix: the upstream is called as is.
const DirectRelay = ""

// relayFetcher performs one upstream GET through an ordered list of relays.
// A relay is a URL prefix to which the escaped upstream URL is appended.
type relayFetcher struct {
	client  *http.Client
	relays  []string
	limiter *rate.Limiter
	logger  *slog.Logger
}

func newRelayFetcher(client *http.Client, relays []string, limiter *rate.Limiter, logger *slog.Logger) *relayFetcher {
	if len(relays) == 0 {
		relays = []string{DirectRelay}
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &relayFetcher{
		client:  client,
		relays:  relays,
		limiter: limiter,
		logger:  logger,
	}
}

// RelayURL builds the address actually requested for upstream via relay.
func RelayURL(relay, upstream string) string {
	if relay == DirectRelay {
		return upstream
	}
	return relay + url.QueryEscape(upstream)
}

// fetchTracks returns the first relay answer that is 2xx and normalizes.
// prepare may add headers, such as an Authorization bearer.
func (f *relayFetcher) fetchTracks(ctx context.Context, upstream string, prepare func(*http.Request) error) ([]model.Track, error) {
	var errs []error
	for _, relay := range f.relays {
		tracks, err := f.try(ctx, RelayURL(relay, upstream), prepare)
		if err == nil {
			return tracks, nil
		}
		f.logger.Debug("catalog relay failed",
			slog.String("relay", relay),
			slog.String("error", err.Error()),
		)
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("catalog: all relays failed: %w", errors.Join(errs...))
}

func (f *relayFetcher) try(ctx context.Context, target string, prepare func(*http.Request) error) ([]model.Track, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if prepare != nil {
		if err := prepare(req); err != nil {
			return nil, err
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}
	return Normalize(body)
}
