// Package eval replays labeled recommendation queries against the real
// pipeline and reports deterministic quality metrics. Conditions come from
// per-example snapshots and drive times from great-circle estimates, so a
// run is reproducible on any machine with the same catalog.
package eval

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/powder-labs/powder/internal/model"
	"github.com/powder-labs/powder/pkg/meteo"
)

// SnapshotConditions fixes one mountain's conditions for an example. Units
// are imperial because that is how the historic datasets were recorded.
type SnapshotConditions struct {
	FreshSnow24hIn float64 `yaml:"fresh_snow_24h_in"`
	SnowDepthIn    float64 `yaml:"snow_depth_in"`
	TempF          float64 `yaml:"temp_f"`
	WindMPH        float64 `yaml:"wind_mph"`
	VisibilityMi   float64 `yaml:"visibility_mi"`
	WeatherCode    int     `yaml:"weather_code"`
}

// Forecast converts the snapshot to the metric units the pipeline consumes.
func (s SnapshotConditions) Forecast() *meteo.Forecast {
	return &meteo.Forecast{
		SnowfallSumCM: s.FreshSnow24hIn * 2.54,
		SnowDepthCM:   s.SnowDepthIn * 2.54,
		TempC:         (s.TempF - 32) * 5 / 9,
		WindKPH:       s.WindMPH * 1.609344,
		VisibilityM:   s.VisibilityMi * 1609.344,
		WeatherCode:   s.WeatherCode,
	}
}

// Example is one labeled query: the inputs to replay and the ground truth to
// score against. Membership in the expected set is the definition of a
// correct answer; when several picks are acceptable the harness accepts any
// of them and never arbitrates between proximity and conditions.
type Example struct {
	ID    string `yaml:"id"`
	Query string `yaml:"query,omitempty"` // free-text form, informational

	Date   string       `yaml:"date"` // YYYY-MM-DD
	Origin model.Origin `yaml:"origin"`

	Constraints model.ConstraintSet `yaml:"constraints"`

	// Conditions maps mountain name to its fixed snapshot. Mountains
	// absent from the map degrade exactly like a live fetch failure.
	Conditions map[string]SnapshotConditions `yaml:"conditions"`

	ExpectedTopPick   []string `yaml:"expected_top_pick"`
	ExpectedInTop3    []string `yaml:"expected_in_top_3"`
	ExpectedExcluded  []string `yaml:"expected_excluded,omitempty"`
	ReasoningKeywords []string `yaml:"reasoning_keywords,omitempty"`
}

// TargetDate parses the example date.
func (e Example) TargetDate() (time.Time, error) {
	t, err := time.Parse("2006-01-02", e.Date)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "eval: example %s: parse date %q", e.ID, e.Date)
	}
	return t, nil
}

// Validate checks the structural requirements on one example.
func (e Example) Validate() error {
	if e.ID == "" {
		return eris.New("eval: example missing id")
	}
	if _, err := e.TargetDate(); err != nil {
		return err
	}
	if len(e.ExpectedTopPick) == 0 {
		return eris.Errorf("eval: example %s: expected_top_pick must not be empty", e.ID)
	}
	if len(e.ExpectedInTop3) == 0 {
		return eris.Errorf("eval: example %s: expected_in_top_3 must not be empty", e.ID)
	}
	return e.Constraints.Validate()
}

type exampleFile struct {
	Examples []Example `yaml:"examples"`
}

// LoadExamples reads and validates an example set from a YAML file.
func LoadExamples(path string) ([]Example, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "eval: read examples %s", path)
	}

	var f exampleFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, eris.Wrapf(err, "eval: parse examples %s", path)
	}
	if len(f.Examples) == 0 {
		return nil, eris.Errorf("eval: %s contains no examples", path)
	}

	seen := make(map[string]bool, len(f.Examples))
	for _, ex := range f.Examples {
		if err := ex.Validate(); err != nil {
			return nil, err
		}
		if seen[ex.ID] {
			return nil, eris.Errorf("eval: duplicate example id %s", ex.ID)
		}
		seen[ex.ID] = true
	}
	return f.Examples, nil
}
