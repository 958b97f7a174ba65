// Package enrich attaches live conditions and drive times to candidates.
//
// Enrichment degrades rather than fails: a candidate whose weather fetch
// times out or errors after one retry is marked Degraded and carried
// forward, and a routing failure falls back to a straight-line drive-time
// estimate. No external outage can sink a recommendation query.
package enrich

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/powder-labs/powder/internal/model"
	"github.com/powder-labs/powder/internal/resilience"
	"github.com/powder-labs/powder/pkg/meteo"
	"github.com/powder-labs/powder/pkg/routing"
)

// straightLineMinutesPerKM approximates drive minutes from great-circle
// distance when routing is unavailable.
const straightLineMinutesPerKM = 0.75

// Enricher fans weather and routing lookups out over a candidate set.
type Enricher struct {
	weather     meteo.Provider
	router      routing.Router // nil disables live routing
	concurrency int
	timeout     time.Duration
	retry       resilience.RetryConfig
}

// Option configures the Enricher.
type Option func(*Enricher)

// WithConcurrency bounds the number of in-flight candidate enrichments.
func WithConcurrency(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithTimeout bounds each external fetch for a single candidate.
func WithTimeout(d time.Duration) Option {
	return func(e *Enricher) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithRetry overrides the per-fetch retry policy.
func WithRetry(rc resilience.RetryConfig) Option {
	return func(e *Enricher) {
		e.retry = rc
	}
}

// New creates an Enricher. router may be nil, in which case all drive times
// are straight-line estimates.
func New(weather meteo.Provider, router routing.Router, opts ...Option) *Enricher {
	e := &Enricher{
		weather:     weather,
		router:      router,
		concurrency: 5,
		timeout:     10 * time.Second,
		retry:       resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich attaches conditions and drive info to every candidate in place and
// returns the same slice. The call blocks until all candidates settle.
func (e *Enricher) Enrich(ctx context.Context, origin model.Origin, date time.Time, cands []model.Candidate) []model.Candidate {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range cands {
		g.Go(func() error {
			e.enrichOne(gctx, origin, date, &cands[i])
			return nil
		})
	}
	// Goroutines only return nil; Wait is a barrier, not an error source.
	_ = g.Wait()
	return cands
}

func (e *Enricher) enrichOne(ctx context.Context, origin model.Origin, date time.Time, c *model.Candidate) {
	e.attachConditions(ctx, date, c)
	e.attachDrive(ctx, origin, c)
}

func (e *Enricher) attachConditions(ctx context.Context, date time.Time, c *model.Candidate) {
	if e.weather == nil {
		return
	}

	retry := e.retry
	retry.OnRetry = resilience.RetryLogger("open-meteo", "forecast")
	retry.ShouldRetry = retryable

	fc, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*meteo.Forecast, error) {
		fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()
		return e.weather.Forecast(fetchCtx, c.Lat, c.Lon, date)
	})
	if err != nil {
		c.Degraded = true
		c.DegradedReason = "conditions unavailable"
		zap.L().Warn("weather enrichment degraded",
			zap.Int64("mountain_id", c.ID),
			zap.String("mountain", c.Name),
			zap.Error(&model.EnrichmentTimeoutError{MountainID: c.ID, Source: "open-meteo", Err: err}),
		)
		return
	}

	c.Conditions = &model.Conditions{
		FreshSnow24hCM: fc.SnowfallSumCM,
		SnowDepthCM:    fc.SnowDepthCM,
		TempC:          fc.TempC,
		WindKPH:        fc.WindKPH,
		VisibilityM:    fc.VisibilityM,
		WeatherCode:    fc.WeatherCode,
	}
}

func (e *Enricher) attachDrive(ctx context.Context, origin model.Origin, c *model.Candidate) {
	if e.router != nil {
		retry := e.retry
		retry.OnRetry = resilience.RetryLogger("openrouteservice", "drive")
		retry.ShouldRetry = retryable

		route, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*routing.Route, error) {
			fetchCtx, cancel := context.WithTimeout(ctx, e.timeout)
			defer cancel()
			return e.router.Drive(fetchCtx, origin.Lat, origin.Lon, c.Lat, c.Lon)
		})
		if err == nil {
			c.Drive = &model.DriveInfo{
				DurationMinutes: route.DurationMinutes,
				DistanceKM:      route.DistanceKM,
			}
			return
		}
		zap.L().Warn("routing enrichment fell back to straight-line estimate",
			zap.Int64("mountain_id", c.ID),
			zap.String("mountain", c.Name),
			zap.Error(err),
		)
	}

	c.Drive = &model.DriveInfo{
		DurationMinutes: c.DistanceKM * straightLineMinutesPerKM,
		DistanceKM:      c.DistanceKM,
		Approximate:     true,
	}
}

// retryable widens the default transient check to cover per-fetch timeouts
// and retryable HTTP statuses surfaced as wrapped errors by the clients.
func retryable(err error) bool {
	if resilience.IsTransient(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{"status 408", "status 429", "status 500", "status 502", "status 503", "status 504"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
