package routing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriveLonLatOrder(t *testing.T) {
	var got directionsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"routes": [{"summary": {"duration": 9000, "distance": 210000}}]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(1000))
	route, err := c.Drive(context.Background(), 42.36, -71.06, 44.53, -72.78)
	require.NoError(t, err)

	// Coordinates go over the wire as [lon, lat].
	require.Len(t, got.Coordinates, 2)
	assert.Equal(t, [2]float64{-71.06, 42.36}, got.Coordinates[0])
	assert.Equal(t, [2]float64{-72.78, 44.53}, got.Coordinates[1])

	assert.InDelta(t, 150.0, route.DurationMinutes, 0.001)
	assert.InDelta(t, 210.0, route.DistanceKM, 0.001)
}

func TestDriveNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"routes": []}`))
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL), WithRateLimit(1000))
	_, err := c.Drive(context.Background(), 42, -71, 44, -72)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no route")
}

func TestDriveRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL), WithRateLimit(1000))
	_, err := c.Drive(context.Background(), 42, -71, 44, -72)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
