package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powder-labs/powder/internal/fetcher"
	"github.com/powder-labs/powder/internal/model"
)

// archivePayload builds two days of hourly data. Day two's noon sits at
// index 36, so its trailing 24h snowfall window spans hours 12..35.
func archivePayload() archiveResponse {
	const hours = 48
	var h archiveHourly
	for i := 0; i < hours; i++ {
		h.Time = append(h.Time, fmt.Sprintf("2025-01-%02dT%02d:00", 15+i/24, i%24))
		h.Temperature2M = append(h.Temperature2M, -5)
		h.SnowDepth = append(h.SnowDepth, 1.2)
		h.WindSpeed10M = append(h.WindSpeed10M, 16.09)
		h.Visibility = append(h.Visibility, 16093.44)
		h.WeatherCode = append(h.WeatherCode, 73)
		// 1cm per hour through day one, dry day two.
		if i < 24 {
			h.Snowfall = append(h.Snowfall, 1)
		} else {
			h.Snowfall = append(h.Snowfall, 0)
		}
	}
	return archiveResponse{Hourly: h}
}

func TestFetchSeasonWritesFixtures(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		require.NoError(t, json.NewEncoder(w).Encode(archivePayload()))
	}))
	defer srv.Close()

	h := NewHistoricFetcher(
		fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}),
		WithArchiveURL(srv.URL),
	)

	dir := t.TempDir()
	mountains := []model.Mountain{
		{ID: 1, Name: "Stowe", Lat: 44.5303, Lon: -72.7814},
		{ID: 2, Name: "No Coords"},
	}
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)

	n, err := h.FetchSeason(context.Background(), mountains, start, end, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, gotQuery, "latitude=44.5303")
	assert.Contains(t, gotQuery, "start_date=2025-01-15")

	// Day one: noon window covers hours 0..11 at 1cm each.
	day1, err := LoadConditionsFixture(filepath.Join(dir, "conditions_2025-01-15.yaml"))
	require.NoError(t, err)
	stowe, ok := day1["Stowe"]
	require.True(t, ok)
	assert.InDelta(t, 12.0/2.54, stowe.FreshSnow24hIn, 0.001)
	assert.InDelta(t, 23.0, stowe.TempF, 0.001) // -5C
	assert.InDelta(t, 120.0/2.54, stowe.SnowDepthIn, 0.001)
	assert.InDelta(t, 10.0, stowe.WindMPH, 0.01)
	assert.InDelta(t, 10.0, stowe.VisibilityMi, 0.01)
	assert.Equal(t, 73, stowe.WeatherCode)

	// Day two: hours 12..23 still snowed, 24..35 dry.
	day2, err := LoadConditionsFixture(filepath.Join(dir, "conditions_2025-01-16.yaml"))
	require.NoError(t, err)
	assert.InDelta(t, 12.0/2.54, day2["Stowe"].FreshSnow24hIn, 0.001)
}

func TestFetchSeasonRejectsBackwardRange(t *testing.T) {
	h := NewHistoricFetcher(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}))
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := h.FetchSeason(context.Background(), nil, start, start.AddDate(0, 0, -1), t.TempDir())
	require.Error(t, err)
}

func TestFetchSeasonSkipsFailedMountains(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	h := NewHistoricFetcher(
		fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}),
		WithArchiveURL(srv.URL),
	)

	dir := t.TempDir()
	mountains := []model.Mountain{{ID: 1, Name: "Stowe", Lat: 44.5, Lon: -72.8}}
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	n, err := h.FetchSeason(context.Background(), mountains, start, start, dir)
	require.NoError(t, err)
	assert.Zero(t, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
