package domain

import "time"

// Payout is the compensation computed for one delivered order. Amounts are cents.
type Payout struct {
	ID         string
	OrderID    string
	DriverID   string
	BaseCents  int64
	TipCents   int64
	BonusCents int64
	TotalCents int64
	Currency   string
	Status     PayoutStatus
	CreatedAt  time.Time
}
