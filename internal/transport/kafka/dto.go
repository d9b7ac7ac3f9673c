package kafka

import (
	"strings"
	"time"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/service/orders"
)

// AddressDTO is an address as the ordering platform sends it.
type AddressDTO struct {
	Street string  `json:"street"`
	City   string  `json:"city"`
	State  string  `json:"state,omitempty"`
	Zip    string  `json:"zip,omitempty"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

func (a AddressDTO) toDomain() domain.Address {
	return domain.Address{
		Street:      strings.TrimSpace(a.Street),
		City:        strings.TrimSpace(a.City),
		State:       strings.TrimSpace(a.State),
		Zip:         strings.TrimSpace(a.Zip),
		Coordinates: domain.Point{Lat: a.Lat, Lng: a.Lng},
	}
}

// EventDTO is a data transfer object for orders.Event
type EventDTO struct {
	OrderID      string     `json:"order_id"`
	Status       string     `json:"status"`
	RestaurantID string     `json:"restaurant_id,omitempty"`
	CustomerID   string     `json:"customer_id,omitempty"`
	Pickup       AddressDTO `json:"pickup"`
	Dropoff      AddressDTO `json:"dropoff"`
	FeeCents     int64      `json:"fee_cents"`
	TipCents     int64      `json:"tip_cents"`
	VehicleType  string     `json:"vehicle_type,omitempty"`
	Instructions string     `json:"instructions,omitempty"`
	Reason       string     `json:"reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToDomain converts EventDTO to orders.Event
func ToDomain(dto EventDTO) orders.Event {
	return orders.Event{
		OrderID:      strings.TrimSpace(dto.OrderID),
		Status:       strings.TrimSpace(dto.Status),
		RestaurantID: strings.TrimSpace(dto.RestaurantID),
		CustomerID:   strings.TrimSpace(dto.CustomerID),
		Pickup:       dto.Pickup.toDomain(),
		Dropoff:      dto.Dropoff.toDomain(),
		FeeCents:     dto.FeeCents,
		TipCents:     dto.TipCents,
		VehicleType:  domain.VehicleType(strings.ToLower(strings.TrimSpace(dto.VehicleType))),
		Instructions: dto.Instructions,
		Reason:       dto.Reason,
		CreatedAt:    dto.CreatedAt,
	}
}

// PayoutDTO is the message published for every computed payout.
type PayoutDTO struct {
	PayoutID   string    `json:"payout_id"`
	OrderID    string    `json:"order_id"`
	DriverID   string    `json:"driver_id"`
	BaseCents  int64     `json:"base_cents"`
	TipCents   int64     `json:"tip_cents"`
	BonusCents int64     `json:"bonus_cents"`
	TotalCents int64     `json:"total_cents"`
	Currency   string    `json:"currency"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// FromPayout converts a payout to its wire form.
func FromPayout(p domain.Payout) PayoutDTO {
	return PayoutDTO{
		PayoutID:   p.ID,
		OrderID:    p.OrderID,
		DriverID:   p.DriverID,
		BaseCents:  p.BaseCents,
		TipCents:   p.TipCents,
		BonusCents: p.BonusCents,
		TotalCents: p.TotalCents,
		Currency:   p.Currency,
		Status:     string(p.Status),
		CreatedAt:  p.CreatedAt.UTC(),
	}
}
