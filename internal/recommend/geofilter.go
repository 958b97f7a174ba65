// Package recommend implements the candidate filtering, day assessment,
// scoring, and ranking core of the recommendation pipeline.
package recommend

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/powder-labs/powder/internal/model"
)

const (
	earthRadiusKM = 6371

	// avgHighwaySpeedKMH converts a drive-time budget into a crow-flies
	// search radius.
	avgHighwaySpeedKMH = 120

	// radiusOvershoot widens the radius because great-circle distance
	// underestimates road distance. The prefilter must never produce a
	// false negative; exact drive times are enforced by the ranker.
	radiusOvershoot = 1.3
)

// HaversineKM returns the great-circle distance between two points in km.
func HaversineKM(a, b model.LatLon) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// EstimateMaxDistanceKM converts a max drive-hours budget into an
// intentionally generous straight-line radius.
func EstimateMaxDistanceKM(hours float64) float64 {
	return hours * avgHighwaySpeedKMH * radiusOvershoot
}

// EstimateDriveMinutes approximates drive time from straight-line distance.
// Used as the documented low-confidence fallback when routing fails.
func EstimateDriveMinutes(distanceKM float64) float64 {
	return distanceKM * 0.75
}

// GeoFilter keeps catalog mountains within the approximate radius implied by
// the max-drive-hours constraint and annotates each with its great-circle
// distance from the origin. A nil maxDriveHours applies no distance filter.
// Records without coordinates are dropped from the candidate set and returned
// as exclusions; they never fail the query.
func GeoFilter(origin model.Origin, maxDriveHours *float64, mountains []model.Mountain) ([]model.Candidate, []model.Exclusion) {
	var radiusKM float64
	if maxDriveHours != nil {
		radiusKM = EstimateMaxDistanceKM(*maxDriveHours)
	}

	candidates := make([]model.Candidate, 0, len(mountains))
	var excluded []model.Exclusion

	for _, m := range mountains {
		if !m.HasCoordinates() {
			err := eris.Wrapf(model.ErrMissingCoordinates, "geofilter: %s", m.Name)
			zap.L().Warn("dropping candidate without coordinates",
				zap.Int64("mountain_id", m.ID),
				zap.String("name", m.Name),
				zap.Error(err),
			)
			excluded = append(excluded, model.Exclusion{
				CandidateID: m.ID,
				Name:        m.Name,
				Reason:      "missing coordinates",
			})
			continue
		}

		dist := HaversineKM(origin.LatLon, model.LatLon{Lat: m.Lat, Lon: m.Lon})
		if maxDriveHours != nil && dist > radiusKM {
			continue
		}

		candidates = append(candidates, model.Candidate{Mountain: m, DistanceKM: dist})
	}

	return candidates, excluded
}
