package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powder-labs/powder/internal/catalog"
	"github.com/powder-labs/powder/internal/enrich"
	"github.com/powder-labs/powder/internal/judge"
	"github.com/powder-labs/powder/internal/model"
)

// stubStore serves a fixed catalog.
type stubStore struct {
	mountains []model.Mountain
}

func (s *stubStore) UpsertMountain(context.Context, *model.Mountain) error { return nil }
func (s *stubStore) GetMountain(context.Context, int64) (*model.Mountain, error) {
	return nil, nil
}
func (s *stubStore) GetMountainByName(context.Context, string) (*model.Mountain, error) {
	return nil, nil
}
func (s *stubStore) ListMountains(context.Context, catalog.Filter) ([]model.Mountain, error) {
	return s.mountains, nil
}
func (s *stubStore) SetBoundaryAcres(context.Context, string, float64) (bool, error) {
	return false, nil
}
func (s *stubStore) Migrate(context.Context) error { return nil }
func (s *stubStore) Close() error                  { return nil }

func newTestEngine(mountains []model.Mountain, opts ...EngineOption) *Engine {
	opts = append([]EngineOption{
		WithDefaultOrigin(boston),
		WithClock(func() time.Time { return time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC) }),
	}, opts...)
	return NewEngine(
		&stubStore{mountains: mountains},
		enrich.New(nil, nil), // no live sources: drive estimates only
		DefaultScoreConfig(),
		opts...,
	)
}

func testCatalog() []model.Mountain {
	return []model.Mountain{
		{ID: 1, Name: "Stowe", State: "VT", Lat: 44.5303, Lon: -72.7814, GreenPct: 16, AllowsSnowboarding: true, PassTypes: []string{"epic"}, Glades: []string{"x"}},
		{ID: 2, Name: "Wachusett", State: "MA", Lat: 42.5029, Lon: -71.8869, GreenPct: 30, AllowsSnowboarding: true, HasNightSkiing: true},
		{ID: 3, Name: "No Coords", State: "NH"},
	}
}

func TestRecommendEndToEnd(t *testing.T) {
	e := newTestEngine(testCatalog())

	res, err := e.Recommend(context.Background(), model.ConstraintSet{})
	require.NoError(t, err)
	require.Equal(t, model.StatusOK, res.Status)
	require.NotEmpty(t, res.ID)
	require.True(t, res.HasPick())

	// Both coordinate-bearing mountains ranked; the coordinate-less one
	// shows up in diagnostics instead of vanishing silently.
	assert.Len(t, res.Candidates, 2)
	require.Len(t, res.Excluded, 1)
	assert.Equal(t, "No Coords", res.Excluded[0].Name)

	require.NotNil(t, res.Day)
	require.NotNil(t, res.Crowd)
	assert.Equal(t, model.CrowdNormal, res.Crowd.Level) // a March Wednesday
}

func TestRecommendValidatesConstraints(t *testing.T) {
	e := newTestEngine(testCatalog())

	bad := model.ConstraintSet{MaxDriveHours: model.Float64Ptr(-2)}
	_, err := e.Recommend(context.Background(), bad)
	require.Error(t, err)

	var parseErr *model.ConstraintParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "max_drive_hours", parseErr.Field)
}

func TestRecommendNoEligibleStatus(t *testing.T) {
	e := newTestEngine(testCatalog())

	cs := model.ConstraintSet{PassType: model.StringPtr("ikon")}
	res, err := e.Recommend(context.Background(), cs)
	require.NoError(t, err)
	assert.Equal(t, model.StatusNoEligible, res.Status)
	assert.False(t, res.HasPick())
	assert.NotEmpty(t, res.Excluded)
}

func TestRecommendUnsetConstraintNeverExcludes(t *testing.T) {
	e := newTestEngine(testCatalog())

	// Wachusett has no glades; with the glades field unset it must rank.
	res, err := e.Recommend(context.Background(), model.ConstraintSet{})
	require.NoError(t, err)

	names := make([]string, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "Wachusett")
}

func TestRecommendQueryOriginOverridesDefault(t *testing.T) {
	e := newTestEngine(testCatalog())
	burlington := model.Origin{Name: "Burlington", LatLon: model.LatLon{Lat: 44.4759, Lon: -73.2121}}

	// From Burlington with a one-hour cap only Stowe is in range.
	res, err := e.Recommend(context.Background(), model.ConstraintSet{
		Origin:        burlington,
		MaxDriveHours: model.Float64Ptr(1),
	})
	require.NoError(t, err)
	require.True(t, res.HasPick())
	assert.Equal(t, "Stowe", res.Top1().Name)

	// A zero-valued origin falls back to the engine default (Boston),
	// from which the same cap reaches only Wachusett.
	res, err = e.Recommend(context.Background(), model.ConstraintSet{
		MaxDriveHours: model.Float64Ptr(1),
	})
	require.NoError(t, err)
	require.True(t, res.HasPick())
	assert.Equal(t, "Wachusett", res.Top1().Name)
}

type fixedJudge struct {
	delta float64
}

func (f fixedJudge) Assess(context.Context, model.ScoredCandidate, model.ConstraintSet, model.DayContext) judge.Judgment {
	return judge.Judgment{Delta: f.delta, Rationale: "locals love it"}
}

func TestRecommendAppliesJudgeDelta(t *testing.T) {
	base, err := newTestEngine(testCatalog()).Recommend(context.Background(), model.ConstraintSet{})
	require.NoError(t, err)

	judged, err := newTestEngine(testCatalog(), WithJudge(fixedJudge{delta: 4})).
		Recommend(context.Background(), model.ConstraintSet{})
	require.NoError(t, err)

	require.Equal(t, model.StatusOK, judged.Status)
	top := judged.Top1()
	require.NotNil(t, top)
	assert.Equal(t, 4.0, top.Breakdown.JudgeDelta)
	assert.InDelta(t, base.Top1().Score+4, top.Score, 0.001)
}

func TestRecommendDegradedExcludePolicy(t *testing.T) {
	// With no weather provider every candidate keeps Conditions nil but is
	// not marked Degraded, so the exclude policy must keep them.
	e := newTestEngine(testCatalog(), WithDegradedPolicy(DegradedExclude))

	res, err := e.Recommend(context.Background(), model.ConstraintSet{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusOK, res.Status)
}
