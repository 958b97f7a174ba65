package model

import (
	"fmt"
	"time"
)

// LatLon is a WGS84 coordinate pair.
type LatLon struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Origin is the user's starting point for a query.
type Origin struct {
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	LatLon `yaml:",inline"`
}

// ConstraintSet carries the structured output of query parsing. Hard-filter
// fields are pointers: nil means "unconstrained" and must never be treated as
// a false-matching value. Soft preferences only influence scoring.
type ConstraintSet struct {
	// Hard filters (each independently nullable).
	MaxDriveHours      *float64 `json:"max_drive_hours,omitempty" yaml:"max_drive_hours,omitempty"`
	PassType           *string  `json:"pass_type,omitempty" yaml:"pass_type,omitempty"`
	NeedsTerrainParks  *bool    `json:"needs_terrain_parks,omitempty" yaml:"needs_terrain_parks,omitempty"`
	NeedsGlades        *bool    `json:"needs_glades,omitempty" yaml:"needs_glades,omitempty"`
	NeedsNightSkiing   *bool    `json:"needs_night_skiing,omitempty" yaml:"needs_night_skiing,omitempty"`
	NeedsBeginner      *bool    `json:"needs_beginner_terrain,omitempty" yaml:"needs_beginner_terrain,omitempty"`
	NeedsExpert        *bool    `json:"needs_expert_terrain,omitempty" yaml:"needs_expert_terrain,omitempty"`
	AllowsSnowboarding *bool    `json:"allows_snowboarding,omitempty" yaml:"allows_snowboarding,omitempty"`

	// Soft preferences (scoring only, never exclusion).
	SkillLevel string `json:"skill_level,omitempty" yaml:"skill_level,omitempty"` // beginner/intermediate/advanced/expert
	Activity   string `json:"activity,omitempty" yaml:"activity,omitempty"`       // ski/snowboard/either
	Vibe       string `json:"vibe,omitempty" yaml:"vibe,omitempty"`               // powder_chase/casual/park_day/learning/family_day

	TargetDate time.Time `json:"target_date" yaml:"target_date"`
	Origin     Origin    `json:"origin" yaml:"origin"`
}

// Validate checks that any set hard-filter values are well formed. A malformed
// value reaching the core is fatal for the query and reports the field at fault.
func (c ConstraintSet) Validate() error {
	if c.MaxDriveHours != nil && *c.MaxDriveHours <= 0 {
		return &ConstraintParseError{Field: "max_drive_hours", Reason: fmt.Sprintf("must be positive, got %v", *c.MaxDriveHours)}
	}
	if c.PassType != nil && *c.PassType == "" {
		return &ConstraintParseError{Field: "pass_type", Reason: "set but empty; use nil for unconstrained"}
	}
	if c.Origin.Lat < -90 || c.Origin.Lat > 90 || c.Origin.Lon < -180 || c.Origin.Lon > 180 {
		return &ConstraintParseError{Field: "origin", Reason: fmt.Sprintf("coordinates out of range: %v,%v", c.Origin.Lat, c.Origin.Lon)}
	}
	return nil
}

// Float64Ptr returns a pointer to v. Convenience for building constraint sets.
func Float64Ptr(v float64) *float64 { return &v }

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool { return &v }
