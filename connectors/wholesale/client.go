package wholesale

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kilianp07/v2genv/auth"
)

// DefaultBaseURL is the wholesale market endpoint.
const DefaultBaseURL = "https://digital.iservices.rte-france.com/open_api/wholesale_market/v2/france_power_exchanges"

// Client queries day-ahead prices from the wholesale market API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	// Auth is optional; requests are sent unauthenticated without it.
	Auth *auth.ClientCred
}

// NewClient returns a client for baseURL, or DefaultBaseURL when empty.
func NewClient(baseURL string, cred *auth.ClientCred) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		Auth:    cred,
	}
}

// Fetch retrieves the wholesale market data for [start, end).
func (c *Client) Fetch(ctx context.Context, start, end time.Time) (*Response, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("end %s must be after start %s", end, start)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("start_date", start.Format(time.RFC3339))
	q.Set("end_date", end.Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.Auth != nil {
		if err := c.Auth.SetAuthHeader(ctx, req); err != nil {
			return nil, fmt.Errorf("failed to set auth header: %w", err)
		}
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}
	var marketResponse Response
	if err := json.NewDecoder(resp.Body).Decode(&marketResponse); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &marketResponse, nil
}
