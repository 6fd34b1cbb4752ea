package location

import "context"

type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Estimate is advisory travel information attached to an application. It
// never participates in any invariant.
type Estimate struct {
	DistanceKm float64 `json:"distance_km"`
	EtaMinutes int     `json:"eta_minutes"`
}

// Service estimates distance and travel time between two points. The engine
// treats it as an injected collaborator so the simulated implementation can
// be swapped for a real routing provider.
type Service interface {
	Estimate(ctx context.Context, origin, destination Point) (Estimate, error)
}
