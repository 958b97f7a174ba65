package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSONL = `
{"name": "Stowe", "state": "vt", "lat": 44.5303, "lon": -72.7814, "vertical_drop": 2360, "green_pct": 16, "pass_types": "epic", "lift_types": "gondola,highspeed"}
{"name": "Sugarloaf", "state": "ME", "lat": 45.0312, "lon": -70.3131, "double_black_pct": 11, "glades": "easy,hard"}

{"name": "", "state": "NH"}
`

func TestImportJSONL(t *testing.T) {
	s := newTestStore(t)
	imp := NewImporter(s)

	n, err := imp.ImportJSONL(context.Background(), strings.NewReader(sampleJSONL))
	require.NoError(t, err)
	assert.Equal(t, 2, n) // nameless record skipped

	stowe, err := s.GetMountainByName(context.Background(), "Stowe")
	require.NoError(t, err)
	require.NotNil(t, stowe)
	assert.Equal(t, "VT", stowe.State) // state upcased
	assert.Equal(t, 2360, stowe.VerticalDropFt)
	assert.Equal(t, []string{"gondola", "highspeed"}, stowe.LiftTypes)
	assert.True(t, stowe.AllowsSnowboarding) // defaults true when absent

	loaf, err := s.GetMountainByName(context.Background(), "Sugarloaf")
	require.NoError(t, err)
	require.NotNil(t, loaf)
	assert.Equal(t, []string{"easy", "hard"}, loaf.Glades)
}

func TestImportJSONLBadLine(t *testing.T) {
	s := newTestStore(t)
	imp := NewImporter(s)

	_, err := imp.ImportJSONL(context.Background(), strings.NewReader(`{"name": "ok"}`+"\nnot json\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

const sampleCSV = `name,state,lat,lon,num_trails,allows_snowboarding,pass_types,extra_col
Mad River Glen,VT,44.2026,-72.9174,53,false,mrg card,x
Killington,VT,43.6045,-72.8201,155,,ikon,y
`

func TestImportCSV(t *testing.T) {
	s := newTestStore(t)
	imp := NewImporter(s)

	n, err := imp.ImportCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	mrg, err := s.GetMountainByName(context.Background(), "Mad River Glen")
	require.NoError(t, err)
	require.NotNil(t, mrg)
	assert.False(t, mrg.AllowsSnowboarding)
	assert.Equal(t, 53, mrg.NumTrails)

	k, err := s.GetMountainByName(context.Background(), "Killington")
	require.NoError(t, err)
	assert.True(t, k.AllowsSnowboarding) // empty cell keeps the default
}
