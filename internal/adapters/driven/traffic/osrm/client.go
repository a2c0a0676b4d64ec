// Package osrm implements the traffic data port against an OSRM routing
// server. Runs name their endpoints ("Jackson Hole Airport", "Teton
// Village"); a small gazetteer of Teton-area locations resolves those
// names to coordinates before routing.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/trblackw/teton-tracker-sub001/internal/adapters/driven/httprate"
	"github.com/trblackw/teton-tracker-sub001/internal/core/domain"
	"github.com/trblackw/teton-tracker-sub001/internal/core/ports/driven"
)

const (
	defaultBaseURL = "https://router.project-osrm.org"

	// The public demo server asks for at most one request per second.
	requestsPerSec = 1.0

	quotaBuffer = 5

	requestTimeout = 15 * time.Second
)

var _ driven.TrafficService = (*Client)(nil)

// Coordinate is a WGS84 longitude/latitude pair, in OSRM's lon-first order.
type Coordinate struct {
	Lon float64
	Lat float64
}

// defaultGazetteer covers the locations runs in the Jackson Hole area
// actually use. Hosts elsewhere extend it with WithLocation.
var defaultGazetteer = map[string]Coordinate{
	"Jackson Hole Airport": {Lon: -110.7377, Lat: 43.6073},
	"JAC":                  {Lon: -110.7377, Lat: 43.6073},
	"Teton Village":        {Lon: -110.8272, Lat: 43.5875},
	"Jackson":              {Lon: -110.7624, Lat: 43.4799},
	"Wilson":               {Lon: -110.8749, Lat: 43.5005},
	"Moose":                {Lon: -110.7191, Lat: 43.6561},
	"Moran":                {Lon: -110.5102, Lat: 43.8430},
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL overrides the OSRM endpoint (useful for testing or a
// self-hosted server).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithLocation adds or overrides a named location in the gazetteer.
func WithLocation(name string, coord Coordinate) ClientOption {
	return func(c *Client) { c.gazetteer[name] = coord }
}

// Client fetches route durations from an OSRM server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *httprate.Limiter
	gazetteer  map[string]Coordinate
}

// NewClient creates an OSRM client against the public demo server unless
// overridden.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    httprate.NewLimiter(requestsPerSec, quotaBuffer),
		gazetteer:  make(map[string]Coordinate, len(defaultGazetteer)),
	}
	for name, coord := range defaultGazetteer {
		c.gazetteer[name] = coord
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// routeResponse mirrors the OSRM /route response.
type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Duration float64 `json:"duration"` // seconds
		Distance float64 `json:"distance"` // meters
	} `json:"routes"`
}

// TrafficData returns current conditions for the route between pickup and
// dropoff. OSRM's profile carries no live congestion data, so
// DurationInTraffic equals Duration.
func (c *Client) TrafficData(ctx context.Context, pickup, dropoff string) (*domain.TrafficData, error) {
	from, ok := c.gazetteer[pickup]
	if !ok {
		return nil, fmt.Errorf("unknown location %q: %w", pickup, domain.ErrInvalidInput)
	}
	to, ok := c.gazetteer[dropoff]
	if !ok {
		return nil, fmt.Errorf("unknown location %q: %w", dropoff, domain.ErrInvalidInput)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		c.baseURL, from.Lon, from.Lat, to.Lon, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching route: %w", err)
	}
	defer resp.Body.Close()

	if err := c.limiter.CheckResponse(resp); err != nil {
		return nil, err
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("routing server returned status %d: %w",
			resp.StatusCode, domain.ErrServiceUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routing server returned status %d", resp.StatusCode)
	}

	var raw routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding route response: %w", err)
	}

	if raw.Code != "Ok" || len(raw.Routes) == 0 {
		return nil, fmt.Errorf("no route from %q to %q (code %s): %w",
			pickup, dropoff, raw.Code, domain.ErrNotFound)
	}

	duration := time.Duration(raw.Routes[0].Duration * float64(time.Second))
	return &domain.TrafficData{
		Origin:            pickup,
		Destination:       dropoff,
		Duration:          duration,
		DurationInTraffic: duration,
		DistanceMeters:    int(raw.Routes[0].Distance),
		RecordedAt:        time.Now(),
	}, nil
}
