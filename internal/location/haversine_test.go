package location

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickgig/internal/domain/location"
)

func TestEstimateSamePoint(t *testing.T) {
	svc := NewHaversineService()
	p := location.Point{Latitude: 52.52, Longitude: 13.405}

	estimate, err := svc.Estimate(context.Background(), p, p)
	require.NoError(t, err)
	assert.Zero(t, estimate.DistanceKm)
	assert.Zero(t, estimate.EtaMinutes)
}

func TestEstimateKnownDistance(t *testing.T) {
	svc := NewHaversineService()
	// Berlin Hauptbahnhof to Alexanderplatz, roughly 3.5 km great-circle.
	origin := location.Point{Latitude: 52.5251, Longitude: 13.3694}
	destination := location.Point{Latitude: 52.5219, Longitude: 13.4132}

	estimate, err := svc.Estimate(context.Background(), origin, destination)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, estimate.DistanceKm, 0.5)
	assert.Greater(t, estimate.EtaMinutes, 0)
	assert.LessOrEqual(t, estimate.EtaMinutes, 15)
}

func TestEstimateSymmetric(t *testing.T) {
	svc := NewHaversineService()
	a := location.Point{Latitude: 40.7128, Longitude: -74.0060}
	b := location.Point{Latitude: 40.7306, Longitude: -73.9352}

	forward, err := svc.Estimate(context.Background(), a, b)
	require.NoError(t, err)
	backward, err := svc.Estimate(context.Background(), b, a)
	require.NoError(t, err)
	assert.InDelta(t, forward.DistanceKm, backward.DistanceKm, 1e-9)
}
