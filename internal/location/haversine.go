package location

import (
	"context"
	"math"

	"quickgig/internal/domain/location"
)

const (
	earthRadiusKm = 6371.0
	// Average door-to-door speed for short urban trips, mixing walking and
	// local transport.
	travelSpeedKmh = 18.0
)

// HaversineService is a deterministic local estimator: great-circle distance
// plus a fixed travel speed. It stands in for a real routing provider.
type HaversineService struct{}

func NewHaversineService() *HaversineService {
	return &HaversineService{}
}

func (s *HaversineService) Estimate(ctx context.Context, origin, destination location.Point) (location.Estimate, error) {
	distance := haversineKm(origin, destination)
	eta := int(math.Ceil(distance / travelSpeedKmh * 60))
	return location.Estimate{DistanceKm: distance, EtaMinutes: eta}, nil
}

func haversineKm(a, b location.Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
