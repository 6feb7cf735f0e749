// Package feed provides a client for the arrival feed endpoint.
package feed

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/welcomewall/internal/domain/arrival"
)

// MaxTickerNames bounds the recent-names list carried in a snapshot.
const MaxTickerNames = 50

// Client is an arrival feed client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config represents feed client configuration.
type Config struct {
	URL string
}

// snapshotResponse represents the feed's JSON payload.
type snapshotResponse struct {
	Total      int `json:"total"`
	LatestUser *struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		CreatedAt string `json:"createdAt"`
	} `json:"latest_user"`
	TickerList []string `json:"ticker_list"`
}

// New creates a new feed client.
// The underlying HTTP client carries no timeout: a slow read delays only
// that poll cycle, it never cancels it.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("feed URL is required")
	}

	return &Client{
		baseURL:    cfg.URL,
		httpClient: &http.Client{},
	}, nil
}

// Fetch performs one poll of the feed and returns a normalized snapshot.
func (c *Client) Fetch(ctx context.Context) (arrival.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return arrival.Snapshot{}, errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return arrival.Snapshot{}, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return arrival.Snapshot{}, errors.Newf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return arrival.Snapshot{}, errors.Wrap(err, "failed to read response body")
	}

	var response snapshotResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return arrival.Snapshot{}, errors.Wrap(err, "failed to parse response")
	}

	return c.normalize(response), nil
}

// normalize converts the wire payload into a domain snapshot.
func (c *Client) normalize(r snapshotResponse) arrival.Snapshot {
	snap := arrival.Snapshot{Total: r.Total}
	if snap.Total < 0 {
		snap.Total = 0
	}

	if r.LatestUser != nil && r.LatestUser.ID != "" {
		joinedAt, err := time.Parse(time.RFC3339, r.LatestUser.CreatedAt)
		if err != nil {
			zlog.Debug().Msgf("feed: unparseable createdAt %q for user %s", r.LatestUser.CreatedAt, r.LatestUser.ID)
			joinedAt = time.Time{}
		}
		snap.Latest = &arrival.Arrival{
			ID:          r.LatestUser.ID,
			DisplayName: r.LatestUser.Name,
			JoinedAt:    joinedAt,
		}
	}

	names := r.TickerList
	if len(names) > MaxTickerNames {
		names = names[:MaxTickerNames]
	}
	snap.RecentNames = names

	return snap
}
