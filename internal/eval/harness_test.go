package eval

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powder-labs/powder/internal/catalog"
	"github.com/powder-labs/powder/internal/model"
)

type fixedStore struct {
	mountains []model.Mountain
}

func (s *fixedStore) UpsertMountain(context.Context, *model.Mountain) error { return nil }
func (s *fixedStore) GetMountain(context.Context, int64) (*model.Mountain, error) {
	return nil, nil
}
func (s *fixedStore) GetMountainByName(context.Context, string) (*model.Mountain, error) {
	return nil, nil
}
func (s *fixedStore) ListMountains(context.Context, catalog.Filter) ([]model.Mountain, error) {
	return s.mountains, nil
}
func (s *fixedStore) SetBoundaryAcres(context.Context, string, float64) (bool, error) {
	return false, nil
}
func (s *fixedStore) Migrate(context.Context) error { return nil }
func (s *fixedStore) Close() error                  { return nil }

func evalCatalog() []model.Mountain {
	return []model.Mountain{
		{ID: 1, Name: "Stowe", State: "VT", Lat: 44.5303, Lon: -72.7814, AllowsSnowboarding: true, PassTypes: []string{"epic"}, Glades: []string{"tres amigos"}},
		{ID: 2, Name: "Killington", State: "VT", Lat: 43.6045, Lon: -72.8201, AllowsSnowboarding: true, PassTypes: []string{"ikon"}, TerrainParks: []string{"superpipe"}},
		{ID: 3, Name: "Jay Peak", State: "VT", Lat: 44.9649, Lon: -72.4602, AllowsSnowboarding: true, PassTypes: []string{"ikon"}, Glades: []string{"beaver pond"}},
		{ID: 4, Name: "Sugarbush", State: "VT", Lat: 44.1359, Lon: -72.9019, AllowsSnowboarding: true, PassTypes: []string{"ikon"}, Glades: []string{"slide brook"}},
	}
}

func loadFixtureExamples(t *testing.T) []Example {
	t.Helper()
	examples, err := LoadExamples("testdata/examples.yaml")
	require.NoError(t, err)
	return examples
}

func TestHarnessStructuredRun(t *testing.T) {
	h := NewHarness(&fixedStore{mountains: evalCatalog()})
	report, err := h.Run(context.Background(), loadFixtureExamples(t))
	require.NoError(t, err)
	require.Equal(t, 2, report.Examples)
	require.Len(t, report.Results, 2)

	// Powder day with an Ikon pass: any Ikon mountain is an acceptable
	// pick and Stowe must be filtered by the pass constraint.
	powder := report.Results[0]
	assert.Equal(t, model.StatusOK, powder.Status)
	assert.Equal(t, Measured(1), powder.Hit1)
	assert.Equal(t, Measured(1), powder.Hit3)
	assert.Equal(t, Measured(1), powder.Exclusion)
	require.Equal(t, StateMeasured, powder.Constraints.State)
	assert.Equal(t, 1.0, powder.Constraints.Value)
	assert.NotEqual(t, "Stowe", powder.TopPick)

	// Icy day on Epic: Stowe is the only eligible mountain.
	icy := report.Results[1]
	assert.Equal(t, "Stowe", icy.TopPick)
	assert.Equal(t, Measured(1), icy.Hit1)
	assert.Equal(t, Measured(1), icy.Exclusion)

	hit1, ok := report.Hit1.Mean()
	require.True(t, ok)
	assert.Equal(t, 1.0, hit1)
}

func TestHarnessHit1ImpliesHit3(t *testing.T) {
	h := NewHarness(&fixedStore{mountains: evalCatalog()})
	report, err := h.Run(context.Background(), loadFixtureExamples(t))
	require.NoError(t, err)

	for _, r := range report.Results {
		if r.Hit1.State == StateMeasured && r.Hit1.Value == 1 {
			assert.Equal(t, Measured(1), r.Hit3, "example %s: hit@1 without hit@3", r.ExampleID)
		}
	}
}

func TestHarnessNoEligibleGradesAsMiss(t *testing.T) {
	h := NewHarness(&fixedStore{mountains: evalCatalog()})

	ex := Example{
		ID:     "nobody_sells_this_pass",
		Date:   "2025-01-15",
		Origin: model.Origin{Name: "Boston", LatLon: model.LatLon{Lat: 42.3601, Lon: -71.0589}},
		Constraints: model.ConstraintSet{
			PassType: model.StringPtr("indy"),
		},
		ExpectedTopPick:  []string{"Jay Peak"},
		ExpectedInTop3:   []string{"Jay Peak"},
		ExpectedExcluded: []string{"Stowe"},
	}

	report, err := h.Run(context.Background(), []Example{ex})
	require.NoError(t, err)
	r := report.Results[0]

	assert.Equal(t, model.StatusNoEligible, r.Status)
	assert.Equal(t, Measured(0), r.Hit1)
	assert.Equal(t, Measured(0), r.Hit3)
	// Nothing was recommended, so there is no pick to violate constraints
	// or the exclusion list.
	assert.Equal(t, StateNotApplicable, r.Constraints.State)
	assert.Equal(t, Measured(1), r.Exclusion)
}

func TestHarnessNoDeclaredConstraintsIsNotApplicable(t *testing.T) {
	h := NewHarness(&fixedStore{mountains: evalCatalog()})
	examples := loadFixtureExamples(t)

	ex := examples[0]
	ex.ID = "unconstrained"
	ex.Constraints = model.ConstraintSet{}
	ex.ExpectedExcluded = nil

	report, err := h.Run(context.Background(), []Example{ex})
	require.NoError(t, err)
	r := report.Results[0]

	assert.Equal(t, StateNotApplicable, r.Constraints.State)
	assert.Equal(t, StateNotApplicable, r.Exclusion.State)
	_, ok := report.Constraints.Mean()
	assert.False(t, ok)
}

func TestHarnessNarrativeMode(t *testing.T) {
	producer := func(_ context.Context, _ Example, res *model.RankedResult) (string, error) {
		top := res.Top1()
		if top == nil {
			return "stay home and wax your skis", nil
		}
		return "Fresh snow everywhere; I'd head straight to " + top.Name + " today.", nil
	}
	h := NewHarness(&fixedStore{mountains: evalCatalog()}, WithNarrative(producer))

	report, err := h.Run(context.Background(), loadFixtureExamples(t))
	require.NoError(t, err)

	powder := report.Results[0]
	assert.Equal(t, Measured(1), powder.Hit1)
	assert.NotEmpty(t, powder.TopPick)
	assert.Equal(t, StateMeasured, powder.Constraints.State)
}

func TestHarnessNarrativeWithoutResortIsNotMeasurable(t *testing.T) {
	producer := func(context.Context, Example, *model.RankedResult) (string, error) {
		return "conditions look marginal, consider waiting for the next storm", nil
	}
	h := NewHarness(&fixedStore{mountains: evalCatalog()}, WithNarrative(producer))

	report, err := h.Run(context.Background(), loadFixtureExamples(t)[:1])
	require.NoError(t, err)
	r := report.Results[0]

	assert.Equal(t, StateNotMeasurable, r.Hit1.State)
	assert.Equal(t, StateNotMeasurable, r.Hit3.State)
	assert.Equal(t, StateNotMeasurable, r.Constraints.State)
	assert.Equal(t, StateNotMeasurable, r.Exclusion.State)

	// A run nobody could grade leaves every denominator empty rather than
	// dragging the mean to zero.
	_, ok := report.Hit1.Mean()
	assert.False(t, ok)
}

func TestSnapshotProviderMatchesByCoordinates(t *testing.T) {
	snap := map[string]SnapshotConditions{
		"Stowe": {FreshSnow24hIn: 14, SnowDepthIn: 48, TempF: 18, WindMPH: 12, VisibilityMi: 10, WeatherCode: 73},
	}
	p := NewSnapshotProvider(evalCatalog(), snap)

	fc, err := p.Forecast(context.Background(), 44.5303, -72.7814, time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 14*2.54, fc.SnowfallSumCM, 0.001)

	_, err = p.Forecast(context.Background(), 40.0, -74.0, time.Now())
	require.Error(t, err)
}
