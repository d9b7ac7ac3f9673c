package domain

import "time"

// NotificationKind tells the receiving side what a notification means.
type NotificationKind string

// List of notification kinds
const (
	NotifyOffer      NotificationKind = "offer"
	NotifyOfferVoid  NotificationKind = "offer_void"
	NotifyEscalation NotificationKind = "escalation"
)

// Notification is a fire-and-forget message to a driver or, for escalations, to operators.
type Notification struct {
	Kind         NotificationKind
	DriverID     string
	OrderID      string
	AssignmentID string
	TrackingID   string
	Pickup       Address
	Dropoff      Address
	PickupETA    time.Time
	DeliveryETA  time.Time
	ExpiresAt    time.Time
	Reason       string
	Attempts     int
	CreatedAt    time.Time
}
