// Package meteo provides a client for the Open-Meteo forecast API.
//
// Open-Meteo needs no API key. Requests are rate limited client-side to stay
// inside the free tier, and forecasts are sampled at midday local time, the
// hour a day skier actually cares about.
package meteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// middaySampleHour is the hourly index sampled for point-in-time readings.
const middaySampleHour = 12

// Forecast is a point-in-time snapshot for one location on one day.
type Forecast struct {
	// SnowfallSumCM is total snowfall over the 24 hours of the target date.
	SnowfallSumCM float64
	// SnowDepthCM is the base depth at midday.
	SnowDepthCM float64
	// TempC is the midday air temperature.
	TempC float64
	// WindKPH is the midday wind speed.
	WindKPH float64
	// VisibilityM is the midday visibility.
	VisibilityM float64
	// WeatherCode is the midday WMO weather interpretation code.
	WeatherCode int
}

// Provider fetches a forecast for a coordinate pair on a given date.
type Provider interface {
	Forecast(ctx context.Context, lat, lon float64, date time.Time) (*Forecast, error)
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

// WithTimezone sets the IANA timezone used to align hourly samples.
func WithTimezone(tz string) Option {
	return func(c *client) {
		c.timezone = tz
	}
}

type client struct {
	baseURL    string
	timezone   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new Open-Meteo client.
func NewClient(opts ...Option) Provider {
	c := &client{
		baseURL:    defaultBaseURL,
		timezone:   "America/New_York",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(5), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiResponse mirrors the subset of the Open-Meteo JSON we consume.
type apiResponse struct {
	Hourly struct {
		Time        []string  `json:"time"`
		Temperature []float64 `json:"temperature_2m"`
		SnowDepth   []float64 `json:"snow_depth"`
		WindSpeed   []float64 `json:"wind_speed_10m"`
		Visibility  []float64 `json:"visibility"`
		WeatherCode []int     `json:"weather_code"`
		SnowfallCM  []float64 `json:"snowfall"`
	} `json:"hourly"`
}

func (c *client) Forecast(ctx context.Context, lat, lon float64, date time.Time) (*Forecast, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "meteo: rate limit")
	}

	day := date.Format("2006-01-02")
	params := url.Values{
		"latitude":   {fmt.Sprintf("%.4f", lat)},
		"longitude":  {fmt.Sprintf("%.4f", lon)},
		"hourly":     {"temperature_2m,snowfall,snow_depth,wind_speed_10m,visibility,weather_code"},
		"timezone":   {c.timezone},
		"start_date": {day},
		"end_date":   {day},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "meteo: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "meteo: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("meteo: returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "meteo: read body")
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, eris.Wrap(err, "meteo: parse response")
	}

	return buildForecast(&apiResp)
}

// buildForecast samples midday hourly values and sums snowfall over the day.
func buildForecast(resp *apiResponse) (*Forecast, error) {
	h := resp.Hourly
	if len(h.Time) == 0 {
		return nil, eris.New("meteo: empty hourly series")
	}

	idx := middaySampleHour
	if idx >= len(h.Time) {
		idx = len(h.Time) - 1
	}

	f := &Forecast{}
	if idx < len(h.Temperature) {
		f.TempC = h.Temperature[idx]
	}
	if idx < len(h.SnowDepth) {
		// Open-Meteo reports snow depth in meters.
		f.SnowDepthCM = h.SnowDepth[idx] * 100
	}
	if idx < len(h.WindSpeed) {
		f.WindKPH = h.WindSpeed[idx]
	}
	if idx < len(h.Visibility) {
		f.VisibilityM = h.Visibility[idx]
	}
	if idx < len(h.WeatherCode) {
		f.WeatherCode = h.WeatherCode[idx]
	}
	for _, s := range h.SnowfallCM {
		f.SnowfallSumCM += s
	}
	return f, nil
}
