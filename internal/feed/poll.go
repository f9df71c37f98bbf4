package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/wildfire-map-viewer/internal/domain"
)

// pollTransport is the degraded transport: a plain GET against the feed
// server's poll endpoint, returning the same payload a data_broadcast frame
// carries.
type pollTransport struct {
	endpoint   string
	httpClient *http.Client
}

// newPollTransport derives the poll URL from the websocket endpoint by
// swapping the scheme and replacing the path with /poll.
func newPollTransport(wsEndpoint string, timeout time.Duration) (*pollTransport, error) {
	u, err := url.Parse(wsEndpoint)
	if err != nil {
		return nil, fmt.Errorf("parse feed endpoint: %w", err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	case "http", "https":
	default:
		return nil, fmt.Errorf("feed endpoint scheme %q not supported", u.Scheme)
	}
	u.Path = "/poll"
	u.RawQuery = ""

	return &pollTransport{
		endpoint: u.String(),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (p *pollTransport) fetch(ctx context.Context, unixSeconds int64) (domain.Snapshot, int, error) {
	params := url.Values{
		"time": {strconv.FormatInt(unixSeconds, 10)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return domain.Snapshot{}, 0, fmt.Errorf("create poll request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return domain.Snapshot{}, 0, fmt.Errorf("poll request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Snapshot{}, 0, fmt.Errorf("poll endpoint: status %d: %s", resp.StatusCode, body)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Snapshot{}, 0, fmt.Errorf("read poll response: %w", err)
	}
	return domain.ParseSnapshot(payload)
}
