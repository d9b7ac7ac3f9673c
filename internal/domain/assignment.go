package domain

import "time"

// StopKind distinguishes pickup from dropoff waypoints.
type StopKind string

// List of stop kinds
const (
	StopPickup   StopKind = "pickup"
	StopDelivery StopKind = "delivery"
)

// Waypoint is one stop of a route with its estimated arrival.
type Waypoint struct {
	Point
	Address string
	Kind    StopKind
	ETA     time.Time
}

// Assignment is one proposed or confirmed order-to-driver match.
type Assignment struct {
	ID       string
	OrderID  string
	DriverID string
	Status   AssignmentStatus
	Reason   string

	AssignedAt     time.Time
	OfferExpiresAt time.Time
	AcceptedAt     time.Time
	RejectedAt     time.Time
	StartedAt      time.Time
	CompletedAt    time.Time
	CancelledAt    time.Time

	EstimatedPickupAt   time.Time
	EstimatedDeliveryAt time.Time
	Waypoints           []Waypoint
}
