package route

import (
	"math"
	"time"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/geo"
)

// DefaultAverageSpeedKmh is the assumed city travel speed.
const DefaultAverageSpeedKmh = 20.0

const (
	pickupHandling  = 5 * time.Minute
	dropoffHandling = 5 * time.Minute
)

// Builder estimates trips and materializes routes. It does no I/O.
type Builder struct {
	speedKmh float64
}

// NewBuilder returns a Builder using the given average speed (km/h).
func NewBuilder(speedKmh float64) *Builder {
	if speedKmh <= 0 {
		speedKmh = DefaultAverageSpeedKmh
	}
	return &Builder{speedKmh: speedKmh}
}

// Estimate computes distance, travel time and the two-stop waypoint list for a trip.
// Pickup is expected 5 minutes after now; dropoff after travel time plus handling buffers.
func (b *Builder) Estimate(pickup, dropoff domain.Address, now time.Time) domain.RouteEstimate {
	distance := geo.DistanceKm(pickup.Coordinates, dropoff.Coordinates)
	travel := time.Duration(distance / b.speedKmh * float64(time.Hour))
	total := travel + pickupHandling + dropoffHandling

	pickupETA := now.Add(pickupHandling)
	dropoffETA := now.Add(total)

	return domain.RouteEstimate{
		DistanceKm: distance,
		TravelTime: travel,
		Total:      total,
		PickupETA:  pickupETA,
		DropoffETA: dropoffETA,
		Waypoints: []domain.Waypoint{
			{Point: pickup.Coordinates, Address: pickup.Line(), Kind: domain.StopPickup, ETA: pickupETA},
			{Point: dropoff.Coordinates, Address: dropoff.Line(), Kind: domain.StopDelivery, ETA: dropoffETA},
		},
	}
}

// Materialize builds the planned route for an accepted assignment. The caller sets the ID.
func (b *Builder) Materialize(a domain.Assignment, now time.Time) domain.DeliveryRoute {
	stops := append([]domain.Waypoint(nil), a.Waypoints...)

	var total float64
	for i := 0; i+1 < len(stops); i++ {
		total += geo.DistanceKm(stops[i].Point, stops[i+1].Point)
	}

	return domain.DeliveryRoute{
		AssignmentID:     a.ID,
		DriverID:         a.DriverID,
		OrderIDs:         []string{a.OrderID},
		Status:           domain.RoutePlanned,
		Stops:            stops,
		TotalDistanceKm:  total,
		EstimatedMinutes: int(math.Round(a.EstimatedDeliveryAt.Sub(a.EstimatedPickupAt).Minutes())),
		PlannedStops:     len(stops),
		CreatedAt:        now,
	}
}
