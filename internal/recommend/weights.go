package recommend

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SnowTier awards a fixed point value once 24h fresh snowfall reaches MinCM.
// Tiers are evaluated in descending MinCM order; the first match wins.
type SnowTier struct {
	MinCM  float64 `yaml:"min_cm"`
	Points float64 `yaml:"points"`
}

// Boost is a conditional scoring adjustment: Points are added only when the
// trigger predicate in the engine holds for the candidate and day.
type Boost struct {
	Trigger float64 `yaml:"trigger"`
	Points  float64 `yaml:"points"`
}

// TermWeights scales each base scoring term. All default to 1.0; zero
// disables a term entirely.
type TermWeights struct {
	FreshSnow float64 `yaml:"fresh_snow"`
	Comfort   float64 `yaml:"comfort"`
	Terrain   float64 `yaml:"terrain"`
	Value     float64 `yaml:"value"`
	Drive     float64 `yaml:"drive"`
}

// ScoreConfig is the full weight/threshold table for the scoring engine.
// It is explicit, versioned data passed in at construction time, never
// ambient global state, so two runs under different profiles are
// distinguishable and comparable.
type ScoreConfig struct {
	Version string      `yaml:"version"`
	Weights TermWeights `yaml:"weights"`

	SnowTiers []SnowTier `yaml:"snow_tiers"`

	// Comfort curve: full points inside [IdealTempMinC, IdealTempMaxC],
	// linear falloff outside; wind drains points above the calm threshold.
	ComfortMax      float64 `yaml:"comfort_max"`
	IdealTempMinC   float64 `yaml:"ideal_temp_min_c"`
	IdealTempMaxC   float64 `yaml:"ideal_temp_max_c"`
	TempFalloffPerC float64 `yaml:"temp_falloff_per_c"`
	CalmWindKPH     float64 `yaml:"calm_wind_kph"`
	WindFalloffPerK float64 `yaml:"wind_falloff_per_kph"`

	TerrainFitMax float64 `yaml:"terrain_fit_max"`

	ValueMax       float64 `yaml:"value_max"`
	ValueBasePrice float64 `yaml:"value_base_price"`
	ValuePerDollar float64 `yaml:"value_per_dollar"`

	// Drive penalty: monotone non-increasing in drive time, capped. Never a
	// hard cutoff; cutoffs belong to the hard-filter stage.
	DriveFreeMinutes float64 `yaml:"drive_free_minutes"`
	DrivePerMinute   float64 `yaml:"drive_per_minute"`
	DriveMaxPenalty  float64 `yaml:"drive_max_penalty"`

	// Contextual boosts.
	WindShelterBoost  Boost `yaml:"wind_shelter_boost"`  // trigger: wind kph; feature: glades
	ColdShelterBoost  Boost `yaml:"cold_shelter_boost"`  // trigger: temp <= C; feature: enclosed lift
	PowderGladesBoost Boost `yaml:"powder_glades_boost"` // trigger: fresh cm; feature: glades
	SnowmakingBoost   Boost `yaml:"snowmaking_boost"`    // trigger: depth below cm; feature: snowmaking pct
	SnowmakingMinPct  int   `yaml:"snowmaking_min_pct"`

	// DegradedPenalty is subtracted when a candidate with failed enrichment
	// is scored under the "penalize" policy.
	DegradedPenalty float64 `yaml:"degraded_penalty"`
}

// DefaultScoreConfig returns the built-in profile.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		Version: "default-v1",
		Weights: TermWeights{FreshSnow: 1, Comfort: 1, Terrain: 1, Value: 1, Drive: 1},
		SnowTiers: []SnowTier{
			{MinCM: 30, Points: 40},
			{MinCM: 20, Points: 33},
			{MinCM: 10, Points: 25},
			{MinCM: 5, Points: 15},
			{MinCM: 2, Points: 8},
		},
		ComfortMax:      20,
		IdealTempMinC:   -12,
		IdealTempMaxC:   -2,
		TempFalloffPerC: 1.2,
		CalmWindKPH:     25,
		WindFalloffPerK: 0.35,

		TerrainFitMax: 15,

		ValueMax:       10,
		ValueBasePrice: 60,
		ValuePerDollar: 0.1,

		DriveFreeMinutes: 45,
		DrivePerMinute:   0.08,
		DriveMaxPenalty:  25,

		WindShelterBoost:  Boost{Trigger: 30, Points: 6},
		ColdShelterBoost:  Boost{Trigger: -15, Points: 5},
		PowderGladesBoost: Boost{Trigger: 20, Points: 7},
		SnowmakingBoost:   Boost{Trigger: 40, Points: 5},
		SnowmakingMinPct:  70,

		DegradedPenalty: 15,
	}
}

// LoadScoreConfig reads a profile from a YAML file, filling omitted fields
// from the defaults. The file's version string is required so stored results
// can always be traced to the profile that produced them.
func LoadScoreConfig(path string) (ScoreConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ScoreConfig{}, eris.Wrap(err, "weights: read profile")
	}

	cfg := DefaultScoreConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ScoreConfig{}, eris.Wrap(err, "weights: parse profile")
	}
	if cfg.Version == "" || cfg.Version == "default-v1" {
		return ScoreConfig{}, eris.Errorf("weights: profile %s must declare its own version", path)
	}
	return cfg, nil
}
