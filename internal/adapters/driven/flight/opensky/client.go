// Package opensky implements the flight status port against the OpenSky
// Network API. Authentication uses the OAuth2 client-credentials flow;
// requests are throttled to stay inside the free-tier quota.
package opensky

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/trblackw/teton-tracker-sub001/internal/adapters/driven/httprate"
	"github.com/trblackw/teton-tracker-sub001/internal/core/domain"
	"github.com/trblackw/teton-tracker-sub001/internal/core/ports/driven"
)

const (
	defaultBaseURL = "https://opensky-network.org/api"

	// OpenSky OAuth2 token endpoint.
	defaultTokenURL = "https://auth.opensky-network.org/auth/realms/opensky-network/protocol/openid-connect/token"

	// Free-tier courtesy throttle: one request every two seconds.
	requestsPerSec = 0.5

	// Remaining-quota reserve before waiting for the server's reset.
	quotaBuffer = 10

	requestTimeout = 30 * time.Second
)

var _ driven.FlightService = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API endpoint (useful for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client, bypassing the OAuth2
// transport. Useful for testing.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenURL overrides the OAuth2 token endpoint.
func WithTokenURL(u string) ClientOption {
	return func(c *Client) { c.tokenURL = u }
}

// Client fetches flight status from the OpenSky Network API.
type Client struct {
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	limiter      *httprate.Limiter
}

// NewClient creates an OpenSky client. The returned client refreshes its
// access token automatically via the client-credentials flow.
func NewClient(clientID, clientSecret string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      defaultBaseURL,
		tokenURL:     defaultTokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		limiter:      httprate.NewLimiter(requestsPerSec, quotaBuffer),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		cc := clientcredentials.Config{
			ClientID:     c.clientID,
			ClientSecret: c.clientSecret,
			TokenURL:     c.tokenURL,
		}
		c.httpClient = cc.Client(context.Background())
		c.httpClient.Timeout = requestTimeout
	}

	return c
}

// statusResponse mirrors the flight status JSON.
type statusResponse struct {
	FlightNumber       string `json:"flight_number"`
	Status             string `json:"status"`
	ScheduledDeparture int64  `json:"scheduled_departure"` // Unix seconds
	EstimatedArrival   int64  `json:"estimated_arrival"`   // Unix seconds
	DelayMinutes       int    `json:"delay_minutes"`
	Origin             string `json:"origin"`
	Destination        string `json:"destination"`
}

// FlightStatus returns the current status for a flight number.
func (c *Client) FlightStatus(ctx context.Context, flightNumber string) (*domain.FlightStatus, error) {
	if flightNumber == "" {
		return nil, fmt.Errorf("flight number is empty: %w", domain.ErrInvalidInput)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/flights/status?number=%s", c.baseURL, url.QueryEscape(flightNumber))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching flight status: %w", err)
	}
	defer resp.Body.Close()

	if err := c.limiter.CheckResponse(resp); err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("flight %s: %w", flightNumber, domain.ErrNotFound)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("flight API returned status %d: %w",
			resp.StatusCode, domain.ErrServiceUnavailable)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("flight API returned status %d: %s", resp.StatusCode, string(body))
	}

	var raw statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding flight status: %w", err)
	}

	status := &domain.FlightStatus{
		FlightNumber: flightNumber,
		Status:       raw.Status,
		DelayMinutes: raw.DelayMinutes,
		Origin:       raw.Origin,
		Destination:  raw.Destination,
		RecordedAt:   time.Now(),
	}
	if raw.ScheduledDeparture > 0 {
		status.ScheduledDeparture = time.Unix(raw.ScheduledDeparture, 0)
	}
	if raw.EstimatedArrival > 0 {
		status.EstimatedArrival = time.Unix(raw.EstimatedArrival, 0)
	}

	return status, nil
}
