package domain

import "time"

// RouteEstimate is the result of estimating a pickup to dropoff trip.
type RouteEstimate struct {
	DistanceKm float64
	TravelTime time.Duration
	Total      time.Duration
	PickupETA  time.Time
	DropoffETA time.Time
	Waypoints  []Waypoint
}

// DeliveryRoute is the materialized stop sequence of an accepted assignment.
type DeliveryRoute struct {
	ID               string
	AssignmentID     string
	DriverID         string
	OrderIDs         []string
	Status           RouteStatus
	Stops            []Waypoint
	TotalDistanceKm  float64
	EstimatedMinutes int
	PlannedStops     int
	CompletedStops   int
	CreatedAt        time.Time
	StartedAt        time.Time
	CompletedAt      time.Time
}
