package payout

import (
	"time"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/geo"
)

// Bonus amounts in cents.
const (
	PeakHourBonusCents     int64 = 100
	LongDistanceBonusCents int64 = 50
)

// LongDistanceKm is the pickup to dropoff distance above which the long distance bonus applies.
const LongDistanceKm = 5.0

// DefaultCurrency is the payout currency.
const DefaultCurrency = "USD"

// peak hours, UTC
var peakHours = map[int]struct{}{
	11: {}, 12: {}, 13: {},
	17: {}, 18: {}, 19: {},
}

// Calculator computes driver payouts for delivered orders.
type Calculator struct {
	currency string
}

// NewCalculator returns a Calculator emitting payouts in currency (USD when empty).
func NewCalculator(currency string) *Calculator {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Calculator{currency: currency}
}

// Compute returns the payout for o at time at. ID and CreatedAt are left to the caller.
func (c *Calculator) Compute(o domain.DeliveryOrder, at time.Time) domain.Payout {
	tip := o.TipCents
	if tip < 0 {
		tip = 0
	}
	bonus := Bonus(o, at)

	return domain.Payout{
		OrderID:    o.ID,
		DriverID:   o.DriverID,
		BaseCents:  o.FeeCents,
		TipCents:   tip,
		BonusCents: bonus,
		TotalCents: o.FeeCents + tip + bonus,
		Currency:   c.currency,
		Status:     domain.PayoutPending,
	}
}

// Bonus is the sum of the peak hour and long distance bonuses.
func Bonus(o domain.DeliveryOrder, at time.Time) int64 {
	var bonus int64
	if _, ok := peakHours[at.UTC().Hour()]; ok {
		bonus += PeakHourBonusCents
	}
	if geo.DistanceKm(o.Pickup.Coordinates, o.Dropoff.Coordinates) > LongDistanceKm {
		bonus += LongDistanceBonusCents
	}
	return bonus
}
