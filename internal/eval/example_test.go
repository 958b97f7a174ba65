package eval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadExamples(t *testing.T) {
	examples, err := LoadExamples(filepath.Join("testdata", "examples.yaml"))
	require.NoError(t, err)
	require.Len(t, examples, 2)

	ex := examples[0]
	assert.Equal(t, "powder_ikon_boston", ex.ID)
	require.NotNil(t, ex.Constraints.PassType)
	assert.Equal(t, "ikon", *ex.Constraints.PassType)
	require.NotNil(t, ex.Constraints.MaxDriveHours)
	assert.Equal(t, 4.0, *ex.Constraints.MaxDriveHours)
	assert.InDelta(t, 42.3601, ex.Origin.Lat, 0.0001)

	date, err := ex.TargetDate()
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15", date.Format("2006-01-02"))

	jay, ok := ex.Conditions["Jay Peak"]
	require.True(t, ok)
	assert.Equal(t, 16.0, jay.FreshSnow24hIn)
	assert.Equal(t, []string{"Stowe"}, ex.ExpectedExcluded)
}

func TestLoadExamplesRejectsEmptyExpectedSet(t *testing.T) {
	path := writeExamples(t, `
examples:
  - id: broken
    date: "2025-01-15"
    expected_top_pick: []
    expected_in_top_3: [Stowe]
`)
	_, err := LoadExamples(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected_top_pick")
}

func TestLoadExamplesRejectsDuplicateIDs(t *testing.T) {
	path := writeExamples(t, `
examples:
  - id: twin
    date: "2025-01-15"
    expected_top_pick: [Stowe]
    expected_in_top_3: [Stowe]
  - id: twin
    date: "2025-01-16"
    expected_top_pick: [Stowe]
    expected_in_top_3: [Stowe]
`)
	_, err := LoadExamples(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadExamplesRejectsBadDate(t *testing.T) {
	path := writeExamples(t, `
examples:
  - id: when
    date: "January 15th"
    expected_top_pick: [Stowe]
    expected_in_top_3: [Stowe]
`)
	_, err := LoadExamples(path)
	require.Error(t, err)
}

func TestSnapshotConditionsForecastUnits(t *testing.T) {
	fc := SnapshotConditions{
		FreshSnow24hIn: 10,
		SnowDepthIn:    40,
		TempF:          32,
		WindMPH:        10,
		VisibilityMi:   1,
		WeatherCode:    73,
	}.Forecast()

	assert.InDelta(t, 25.4, fc.SnowfallSumCM, 0.001)
	assert.InDelta(t, 101.6, fc.SnowDepthCM, 0.001)
	assert.InDelta(t, 0, fc.TempC, 0.001)
	assert.InDelta(t, 16.09, fc.WindKPH, 0.01)
	assert.InDelta(t, 1609.34, fc.VisibilityM, 0.01)
	assert.Equal(t, 73, fc.WeatherCode)
}

func writeExamples(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "examples.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}
