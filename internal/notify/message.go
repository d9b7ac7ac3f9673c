// Package notify turns dispatch notifications into wire messages and fans them out to transports.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"service-dispatch/internal/domain"
)

// Sender delivers one notification.
type Sender interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// AddressDTO is the wire form of an address.
type AddressDTO struct {
	Line string  `json:"line,omitempty"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Message is the JSON payload published to drivers and operators.
type Message struct {
	Type         string      `json:"type"`
	DriverID     string      `json:"driver_id,omitempty"`
	OrderID      string      `json:"order_id"`
	AssignmentID string      `json:"assignment_id,omitempty"`
	TrackingID   string      `json:"tracking_id,omitempty"`
	Pickup       *AddressDTO `json:"pickup,omitempty"`
	Dropoff      *AddressDTO `json:"dropoff,omitempty"`
	PickupETA    *time.Time  `json:"pickup_eta,omitempty"`
	DeliveryETA  *time.Time  `json:"delivery_eta,omitempty"`
	ExpiresAt    *time.Time  `json:"expires_at,omitempty"`
	Reason       string      `json:"reason,omitempty"`
	Attempts     int         `json:"attempts,omitempty"`
	SentAt       time.Time   `json:"sent_at"`
}

func addressDTO(a domain.Address) *AddressDTO {
	if a.Coordinates == (domain.Point{}) && a.Line() == "" {
		return nil
	}
	return &AddressDTO{Line: a.Line(), Lat: a.Coordinates.Lat, Lng: a.Coordinates.Lng}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

// NewMessage maps a notification to its wire form.
func NewMessage(n domain.Notification) Message {
	sent := n.CreatedAt
	if sent.IsZero() {
		sent = time.Now()
	}
	return Message{
		Type:         string(n.Kind),
		DriverID:     n.DriverID,
		OrderID:      n.OrderID,
		AssignmentID: n.AssignmentID,
		TrackingID:   n.TrackingID,
		Pickup:       addressDTO(n.Pickup),
		Dropoff:      addressDTO(n.Dropoff),
		PickupETA:    timePtr(n.PickupETA),
		DeliveryETA:  timePtr(n.DeliveryETA),
		ExpiresAt:    timePtr(n.ExpiresAt),
		Reason:       n.Reason,
		Attempts:     n.Attempts,
		SentAt:       sent.UTC(),
	}
}

// Encode marshals the message for n.
func Encode(n domain.Notification) ([]byte, error) {
	b, err := json.Marshal(NewMessage(n))
	if err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}
	return b, nil
}

// RoutingKey is the dotted address of n: driver.<id>.<kind> or ops.escalation.
func RoutingKey(n domain.Notification) string {
	if n.Kind == domain.NotifyEscalation || n.DriverID == "" {
		return "ops." + string(n.Kind)
	}
	return fmt.Sprintf("driver.%s.%s", n.DriverID, n.Kind)
}
