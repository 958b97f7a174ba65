// Package model defines the shared data types for the recommendation pipeline.
package model

import (
	"strings"
)

// Mountain is a static catalog record for a ski area. Created by catalog
// lookup, joined with live data by the enricher, read-only afterward.
type Mountain struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	State              string   `json:"state"`
	Lat                float64  `json:"lat"`
	Lon                float64  `json:"lon"`
	VerticalDropFt     int      `json:"vertical_drop_ft,omitempty"`
	BaseElevationFt    int      `json:"base_elevation_ft,omitempty"`
	SummitElevationFt  int      `json:"summit_elevation_ft,omitempty"`
	NumTrails          int      `json:"num_trails,omitempty"`
	NumLifts           int      `json:"num_lifts,omitempty"`
	GreenPct           int      `json:"green_pct,omitempty"`
	BluePct            int      `json:"blue_pct,omitempty"`
	BlackPct           int      `json:"black_pct,omitempty"`
	DoubleBlackPct     int      `json:"double_black_pct,omitempty"`
	TerrainParks       []string `json:"terrain_parks,omitempty"`
	Glades             []string `json:"glades,omitempty"`
	PassTypes          []string `json:"pass_types,omitempty"`
	LiftTypes          []string `json:"lift_types,omitempty"`
	AllowsSnowboarding bool     `json:"allows_snowboarding"`
	HasNightSkiing     bool     `json:"has_night_skiing"`
	SnowmakingPct      int      `json:"snowmaking_pct,omitempty"`
	AvgWeekdayPrice    int      `json:"avg_weekday_price,omitempty"`
	AvgWeekendPrice    int      `json:"avg_weekend_price,omitempty"`
	Website            string   `json:"website,omitempty"`

	// BoundaryAcres is populated by the shapefile import when ski-area
	// boundary polygons are available. Zero means unknown.
	BoundaryAcres float64 `json:"boundary_acres,omitempty"`
}

// HasCoordinates reports whether the record carries usable coordinates.
// The null island check guards against zero-valued rows from bad imports.
func (m Mountain) HasCoordinates() bool {
	return m.Lat != 0 || m.Lon != 0
}

// HasPass reports whether the mountain honors the given pass (case-insensitive).
func (m Mountain) HasPass(pass string) bool {
	for _, p := range m.PassTypes {
		if strings.EqualFold(p, pass) {
			return true
		}
	}
	return false
}

// HasLiftType reports whether the mountain has a lift of the given type.
func (m Mountain) HasLiftType(lift string) bool {
	for _, l := range m.LiftTypes {
		if strings.EqualFold(l, lift) {
			return true
		}
	}
	return false
}

// HasEnclosedLift reports whether any lift shelters riders from weather.
func (m Mountain) HasEnclosedLift() bool {
	return m.HasLiftType("gondola") || m.HasLiftType("bubble") || m.HasLiftType("tram")
}

// HasTerrainParks reports whether the mountain maintains any terrain park.
func (m Mountain) HasTerrainParks() bool { return len(m.TerrainParks) > 0 }

// HasGlades reports whether the mountain has gladed (treed) terrain.
func (m Mountain) HasGlades() bool { return len(m.Glades) > 0 }

// HasBeginnerTerrain reports whether the mountain is viable for first-timers:
// a green share of at least 20% of trails.
func (m Mountain) HasBeginnerTerrain() bool { return m.GreenPct >= 20 }

// HasExpertTerrain reports whether the mountain has any double-black terrain.
func (m Mountain) HasExpertTerrain() bool { return m.DoubleBlackPct > 0 }

// SplitList parses a comma-separated attribute list into a trimmed slice.
// Catalog sources store multi-valued fields as "easy,intermediate,hard".
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinList renders a multi-valued attribute back to its comma-separated form.
func JoinList(vals []string) string {
	return strings.Join(vals, ",")
}
