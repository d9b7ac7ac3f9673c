package domain

import "time"

// DeliveryProof is optional evidence captured at dropoff.
type DeliveryProof struct {
	PhotoURL  string
	Signature string
	Notes     string
}

// DeliveryOrder identifies a delivery job and its dispatch progress.
// Money fields are minor units (cents).
type DeliveryOrder struct {
	ID           string
	OrderRef     string
	RestaurantID string
	CustomerID   string
	DriverID     string

	Pickup  Address
	Dropoff Address

	Status       OrderStatus
	FeeCents     int64
	TipCents     int64
	VehicleType  VehicleType
	Instructions string
	TrackingID   string

	EstimatedDeliveryAt time.Time
	PickedUpAt          time.Time
	DeliveredAt         time.Time
	CancelledAt         time.Time
	CancelReason        string
	Proof               *DeliveryProof

	// dispatch retry bookkeeping
	AssignAttempts   int
	NextAttemptAt    time.Time
	ExcludedDriverID string
	Escalated        bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalChargeCents is fee plus tip.
func (o DeliveryOrder) TotalChargeCents() int64 {
	return o.FeeCents + o.TipCents
}

// OrderSpec is the input of order creation supplied by the order-intake side.
type OrderSpec struct {
	OrderRef     string
	RestaurantID string
	CustomerID   string
	Pickup       Address
	Dropoff      Address
	FeeCents     int64
	TipCents     int64
	VehicleType  VehicleType
	Instructions string
}

// OrderFilter selects orders for listing. Empty fields are ignored.
type OrderFilter struct {
	Status     OrderStatus
	DriverID   string
	CustomerID string
	OrderRef   string
	Limit      int
}
