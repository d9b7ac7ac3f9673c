package orders

import (
	"time"

	"service-dispatch/internal/domain"
)

// Event is a single order event published by the ordering platform.
// OrderID is the platform's id and becomes DeliveryOrder.OrderRef.
type Event struct {
	OrderID      string
	Status       string
	RestaurantID string
	CustomerID   string
	Pickup       domain.Address
	Dropoff      domain.Address
	FeeCents     int64
	TipCents     int64
	VehicleType  domain.VehicleType
	Instructions string
	Reason       string
	CreatedAt    time.Time
}

// Spec converts a created event into dispatch input.
func (e Event) Spec() domain.OrderSpec {
	return domain.OrderSpec{
		OrderRef:     e.OrderID,
		RestaurantID: e.RestaurantID,
		CustomerID:   e.CustomerID,
		Pickup:       e.Pickup,
		Dropoff:      e.Dropoff,
		FeeCents:     e.FeeCents,
		TipCents:     e.TipCents,
		VehicleType:  e.VehicleType,
		Instructions: e.Instructions,
	}
}
