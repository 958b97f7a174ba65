package eval

import (
	"context"
	"math"
	"time"

	"github.com/rotisserie/eris"

	"github.com/powder-labs/powder/internal/model"
	"github.com/powder-labs/powder/pkg/meteo"
)

// coordToleranceDeg bounds how far a forecast request may sit from a catalog
// coordinate and still match it. Roughly one kilometer.
const coordToleranceDeg = 0.01

type snapshotEntry struct {
	lat, lon float64
	forecast *meteo.Forecast
}

// SnapshotProvider serves fixed per-mountain forecasts in place of the live
// Open-Meteo client. Requests are matched back to mountains by coordinates,
// since that is all the provider interface carries. A mountain without a
// snapshot degrades the same way a live outage would.
type SnapshotProvider struct {
	entries []snapshotEntry
}

// NewSnapshotProvider indexes a snapshot against catalog coordinates. Names
// are matched with the same folding as narrative extraction, so "Smugglers'
// Notch" in the snapshot finds the catalog row regardless of punctuation.
func NewSnapshotProvider(mountains []model.Mountain, byName map[string]SnapshotConditions) *SnapshotProvider {
	folded := make(map[string]SnapshotConditions, len(byName))
	for name, sc := range byName {
		folded[foldName(name)] = sc
	}

	p := &SnapshotProvider{}
	for _, m := range mountains {
		sc, ok := folded[foldName(m.Name)]
		if !ok {
			continue
		}
		p.entries = append(p.entries, snapshotEntry{
			lat:      m.Lat,
			lon:      m.Lon,
			forecast: sc.Forecast(),
		})
	}
	return p
}

// Forecast returns the snapshot for the nearest indexed coordinate, or an
// error when the request matches no snapshotted mountain.
func (p *SnapshotProvider) Forecast(_ context.Context, lat, lon float64, _ time.Time) (*meteo.Forecast, error) {
	var best *snapshotEntry
	bestDist := coordToleranceDeg
	for i := range p.entries {
		e := &p.entries[i]
		d := math.Max(math.Abs(e.lat-lat), math.Abs(e.lon-lon))
		if d <= bestDist {
			best = e
			bestDist = d
		}
	}
	if best == nil {
		return nil, eris.Errorf("snapshot: no conditions recorded for %.4f,%.4f", lat, lon)
	}
	fc := *best.forecast
	return &fc, nil
}
