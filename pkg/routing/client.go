// Package routing provides a client for the OpenRouteService directions API.
//
// ORS takes coordinates in [longitude, latitude] order on the wire, the
// reverse of how the rest of this codebase carries them. The conversion
// happens here and nowhere else.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.openrouteservice.org/v2/directions/driving-car"

// Route is a single driving route summary.
type Route struct {
	DurationMinutes float64
	DistanceKM      float64
}

// Router computes a driving route between two lat/lon points.
type Router interface {
	Drive(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (*Route, error)
}

// Option configures the client.
type Option func(*client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new OpenRouteService client. The free tier allows 40
// requests per minute, so the default limiter sits well under that.
func NewClient(apiKey string, opts ...Option) Router {
	c := &client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(0.5), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type directionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Duration float64 `json:"duration"` // seconds
			Distance float64 `json:"distance"` // meters
		} `json:"summary"`
	} `json:"routes"`
}

func (c *client) Drive(ctx context.Context, fromLat, fromLon, toLat, toLon float64) (*Route, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "routing: rate limit")
	}

	payload, err := json.Marshal(directionsRequest{
		Coordinates: [][2]float64{
			{fromLon, fromLat},
			{toLon, toLat},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "routing: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "routing: build request")
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "routing: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("routing: returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "routing: read body")
	}

	var dirResp directionsResponse
	if err := json.Unmarshal(body, &dirResp); err != nil {
		return nil, eris.Wrap(err, "routing: parse response")
	}

	if len(dirResp.Routes) == 0 {
		return nil, eris.New("routing: no route found")
	}

	summary := dirResp.Routes[0].Summary
	return &Route{
		DurationMinutes: summary.Duration / 60,
		DistanceKM:      summary.Distance / 1000,
	}, nil
}
