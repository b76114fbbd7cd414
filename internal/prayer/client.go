package prayer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"wirdbot/internal/core"
)

// Client looks up daily prayer times for a mosque. Lookups are bounded by
// the HTTP client timeout so a slow upstream cannot stall the scheduler.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ core.Clock = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Now() time.Time {
	return time.Now().UTC()
}

// GetTimes fetches the prayer times for a mosque on the given day, keyed by
// event name ("fajr", "dhuhr", ...) with RFC 3339 timestamp values.
func (c *Client) GetTimes(ctx context.Context, mosqueID string, day time.Time) (map[string]string, error) {
	url := fmt.Sprintf("%s/%s/%d/%d", c.baseURL, mosqueID, day.Day(), int(day.Month()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching prayer times: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("prayer times request returned %d", resp.StatusCode)
	}

	var times map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&times); err != nil {
		return nil, fmt.Errorf("error decoding prayer times: %w", err)
	}
	return times, nil
}

// ResolveEvent returns the UTC "HH:MM" of a named prayer event for a mosque.
func (c *Client) ResolveEvent(ctx context.Context, event, locationID string, now time.Time) (string, error) {
	times, err := c.GetTimes(ctx, locationID, now.UTC())
	if err != nil {
		return "", err
	}

	raw, ok := times[event]
	if !ok {
		return "", fmt.Errorf("no %q time for mosque %s", event, locationID)
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return "", fmt.Errorf("error parsing %s time %q: %w", event, raw, err)
	}
	return t.UTC().Format("15:04"), nil
}
