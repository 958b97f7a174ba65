package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"easy", "intermediate", "hard"}, SplitList("easy, intermediate,hard"))
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList("   "))
	assert.Equal(t, []string{"ikon"}, SplitList("ikon,"))
}

func TestMountainFeatureHelpers(t *testing.T) {
	m := Mountain{
		PassTypes:      []string{"Epic"},
		LiftTypes:      []string{"gondola", "fixed"},
		Glades:         []string{"intermediate"},
		GreenPct:       25,
		DoubleBlackPct: 0,
	}
	assert.True(t, m.HasPass("epic"))
	assert.False(t, m.HasPass("ikon"))
	assert.True(t, m.HasEnclosedLift())
	assert.True(t, m.HasGlades())
	assert.False(t, m.HasTerrainParks())
	assert.True(t, m.HasBeginnerTerrain())
	assert.False(t, m.HasExpertTerrain())
}

func TestHasCoordinates(t *testing.T) {
	assert.False(t, Mountain{}.HasCoordinates())
	assert.True(t, Mountain{Lat: 44.5, Lon: -72.8}.HasCoordinates())
}

func TestConditionsConversions(t *testing.T) {
	c := Conditions{FreshSnow24hCM: 25.4, SnowDepthCM: 50.8, TempC: 0, WindKPH: 16.0934}
	assert.InDelta(t, 10.0, c.FreshSnowIn(), 0.001)
	assert.InDelta(t, 20.0, c.SnowDepthIn(), 0.001)
	assert.InDelta(t, 32.0, c.TempF(), 0.001)
	assert.InDelta(t, 10.0, c.WindMPH(), 0.01)
}

func TestConditionsIsRainy(t *testing.T) {
	assert.True(t, Conditions{WeatherCode: 63}.IsRainy())
	assert.True(t, Conditions{WeatherCode: 66}.IsRainy())
	assert.False(t, Conditions{WeatherCode: 75}.IsRainy())
	assert.False(t, Conditions{WeatherCode: 0}.IsRainy())
}

func TestWeatherDescription(t *testing.T) {
	assert.Equal(t, "Heavy snow", Conditions{WeatherCode: 75}.WeatherDescription())
	assert.Equal(t, "Unknown", Conditions{WeatherCode: 123}.WeatherDescription())
}

func TestDayQualityOrdering(t *testing.T) {
	assert.True(t, DayExcellent.AtLeast(DayGood))
	assert.True(t, DayGood.AtLeast(DayGood))
	assert.False(t, DayPoor.AtLeast(DayFair))
	assert.True(t, DaySkip.Valid())
	assert.False(t, DayQuality("great").Valid())
}

func TestConstraintSetValidate(t *testing.T) {
	ok := ConstraintSet{MaxDriveHours: Float64Ptr(2.5), Origin: Origin{LatLon: LatLon{Lat: 42.36, Lon: -71.06}}}
	assert.NoError(t, ok.Validate())

	bad := ConstraintSet{MaxDriveHours: Float64Ptr(-1)}
	err := bad.Validate()
	assert.Error(t, err)
	var cpe *ConstraintParseError
	assert.ErrorAs(t, err, &cpe)
	assert.Equal(t, "max_drive_hours", cpe.Field)

	empty := ConstraintSet{PassType: StringPtr("")}
	err = empty.Validate()
	assert.ErrorAs(t, err, &cpe)
	assert.Equal(t, "pass_type", cpe.Field)
}

func TestConstraintSetNilMeansUnconstrained(t *testing.T) {
	// The zero value must validate: every unset hard filter is legal.
	assert.NoError(t, ConstraintSet{}.Validate())
}

func TestConstraintSetYAMLOriginInline(t *testing.T) {
	doc := `
origin:
  name: "Boston, MA"
  lat: 42.3601
  lon: -71.0589
max_drive_hours: 2.5
`
	var cs ConstraintSet
	require.NoError(t, yaml.Unmarshal([]byte(doc), &cs))
	assert.Equal(t, "Boston, MA", cs.Origin.Name)
	assert.InDelta(t, 42.3601, cs.Origin.Lat, 0.0001)
	assert.InDelta(t, -71.0589, cs.Origin.Lon, 0.0001)
}

func TestEnrichmentTimeoutErrorChain(t *testing.T) {
	cause := errors.New("deadline exceeded")
	var err error = &EnrichmentTimeoutError{MountainID: 7, Source: "open-meteo", Err: cause}

	assert.Contains(t, err.Error(), "mountain 7")
	assert.ErrorIs(t, err, cause)

	var ete *EnrichmentTimeoutError
	require.ErrorAs(t, err, &ete)
	assert.Equal(t, "open-meteo", ete.Source)
}

func TestRankedResultAccessors(t *testing.T) {
	r := &RankedResult{Status: StatusOK, Candidates: []ScoredCandidate{
		{Candidate: Candidate{Mountain: Mountain{ID: 1}}, Score: 90},
		{Candidate: Candidate{Mountain: Mountain{ID: 2}}, Score: 80},
	}}
	assert.True(t, r.HasPick())
	assert.Equal(t, int64(1), r.Top1().ID)
	assert.Len(t, r.TopN(3), 2)
	assert.Len(t, r.TopN(1), 1)

	postponed := &RankedResult{Status: StatusPostponed}
	assert.False(t, postponed.HasPick())
	assert.Nil(t, postponed.Top1())
	assert.Nil(t, postponed.TopN(3))
}
