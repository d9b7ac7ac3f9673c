package domain

import "time"

// TrackingInfo is the customer-facing view of an order in flight.
type TrackingInfo struct {
	TrackingID          string
	OrderID             string
	Status              OrderStatus
	DriverID            string
	DriverLocation      *Point
	EstimatedDeliveryAt time.Time
	CurrentStop         int
	TotalStops          int
	ProgressPercent     int
}
