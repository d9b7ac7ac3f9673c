package handlers

import "time"

type addressDTO struct {
	Street string  `json:"street" validate:"max=256"`
	City   string  `json:"city" validate:"max=128"`
	State  string  `json:"state,omitempty" validate:"max=64"`
	Zip    string  `json:"zip,omitempty" validate:"max=16"`
	Lat    float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng    float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type createOrderRequest struct {
	OrderRef     string     `json:"order_ref,omitempty" validate:"max=128"`
	RestaurantID string     `json:"restaurant_id,omitempty"`
	CustomerID   string     `json:"customer_id" validate:"required"`
	Pickup       addressDTO `json:"pickup" validate:"required"`
	Dropoff      addressDTO `json:"dropoff" validate:"required"`
	FeeCents     int64      `json:"fee_cents" validate:"gte=0"`
	TipCents     int64      `json:"tip_cents" validate:"gte=0"`
	VehicleType  string     `json:"vehicle_type,omitempty" validate:"omitempty,oneof=car bike motorcycle scooter"`
	Instructions string     `json:"instructions,omitempty" validate:"max=1024"`
}

type driverRequest struct {
	DriverID string `json:"driver_id" validate:"required"`
}

type rejectRequest struct {
	DriverID string `json:"driver_id" validate:"required"`
	Reason   string `json:"reason,omitempty" validate:"max=256"`
}

type proofDTO struct {
	PhotoURL  string `json:"photo_url,omitempty" validate:"omitempty,url"`
	Signature string `json:"signature,omitempty"`
	Notes     string `json:"notes,omitempty" validate:"max=1024"`
}

type deliverRequest struct {
	DriverID string    `json:"driver_id" validate:"required"`
	Proof    *proofDTO `json:"proof,omitempty"`
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"required,max=256"`
}

type locationRequest struct {
	Lat        float64    `json:"lat" validate:"gte=-90,lte=90"`
	Lng        float64    `json:"lng" validate:"gte=-180,lte=180"`
	AccuracyM  float64    `json:"accuracy_m,omitempty" validate:"gte=0"`
	SpeedKmh   *float64   `json:"speed_kmh,omitempty" validate:"omitempty,gte=0"`
	Heading    *float64   `json:"heading,omitempty" validate:"omitempty,gte=0,lt=360"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type profileRequest struct {
	Name   string  `json:"name" validate:"required,max=128"`
	Rating float64 `json:"rating" validate:"gte=0,lte=5"`
}

type waypointDTO struct {
	Kind    string     `json:"kind"`
	Address string     `json:"address,omitempty"`
	Lat     float64    `json:"lat"`
	Lng     float64    `json:"lng"`
	ETA     *time.Time `json:"eta,omitempty"`
}

type orderResponse struct {
	ID                  string     `json:"id"`
	OrderRef            string     `json:"order_ref,omitempty"`
	RestaurantID        string     `json:"restaurant_id,omitempty"`
	CustomerID          string     `json:"customer_id,omitempty"`
	DriverID            string     `json:"driver_id,omitempty"`
	TrackingID          string     `json:"tracking_id"`
	Status              string     `json:"status"`
	Pickup              addressDTO `json:"pickup"`
	Dropoff             addressDTO `json:"dropoff"`
	FeeCents            int64      `json:"fee_cents"`
	TipCents            int64      `json:"tip_cents"`
	VehicleType         string     `json:"vehicle_type,omitempty"`
	Instructions        string     `json:"instructions,omitempty"`
	AssignAttempts      int        `json:"assign_attempts"`
	Escalated           bool       `json:"escalated,omitempty"`
	EstimatedDeliveryAt *time.Time `json:"estimated_delivery_at,omitempty"`
	PickedUpAt          *time.Time `json:"picked_up_at,omitempty"`
	DeliveredAt         *time.Time `json:"delivered_at,omitempty"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty"`
	CancelReason        string     `json:"cancel_reason,omitempty"`
	Proof               *proofDTO  `json:"proof,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

type assignmentResponse struct {
	ID                  string        `json:"id"`
	OrderID             string        `json:"order_id"`
	DriverID            string        `json:"driver_id"`
	Status              string        `json:"status"`
	Reason              string        `json:"reason,omitempty"`
	AssignedAt          time.Time     `json:"assigned_at"`
	OfferExpiresAt      *time.Time    `json:"offer_expires_at,omitempty"`
	AcceptedAt          *time.Time    `json:"accepted_at,omitempty"`
	EstimatedPickupAt   *time.Time    `json:"estimated_pickup_at,omitempty"`
	EstimatedDeliveryAt *time.Time    `json:"estimated_delivery_at,omitempty"`
	Waypoints           []waypointDTO `json:"waypoints"`
}

type pendingResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type routeResponse struct {
	ID               string        `json:"id"`
	AssignmentID     string        `json:"assignment_id"`
	DriverID         string        `json:"driver_id"`
	OrderIDs         []string      `json:"order_ids"`
	Status           string        `json:"status"`
	Stops            []waypointDTO `json:"stops"`
	TotalDistanceKm  float64       `json:"total_distance_km"`
	EstimatedMinutes int           `json:"estimated_minutes"`
	PlannedStops     int           `json:"planned_stops"`
	CompletedStops   int           `json:"completed_stops"`
}

type payoutResponse struct {
	ID         string    `json:"id"`
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

type deliveredResponse struct {
	Order  orderResponse   `json:"order"`
	Payout *payoutResponse `json:"payout,omitempty"`
}

type trackingResponse struct {
	TrackingID          string     `json:"tracking_id"`
	OrderID             string     `json:"order_id"`
	Status              string     `json:"status"`
	DriverID            string     `json:"driver_id,omitempty"`
	DriverLocation      *pointDTO  `json:"driver_location,omitempty"`
	EstimatedDeliveryAt *time.Time `json:"estimated_delivery_at,omitempty"`
	CurrentStop         int        `json:"current_stop"`
	TotalStops          int        `json:"total_stops"`
	ProgressPercent     int        `json:"progress_percent"`
}

type pointDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type locationDTO struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	AccuracyM  float64   `json:"accuracy_m,omitempty"`
	SpeedKmh   *float64  `json:"speed_kmh,omitempty"`
	Heading    *float64  `json:"heading,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

type driverResponse struct {
	ID        string       `json:"id"`
	Name      string       `json:"name,omitempty"`
	Rating    float64      `json:"rating"`
	Status    string       `json:"status"`
	Location  *locationDTO `json:"location,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type candidateResponse struct {
	DriverID   string   `json:"driver_id"`
	Rating     float64  `json:"rating"`
	DistanceKm float64  `json:"distance_km"`
	Location   pointDTO `json:"location"`
}

type locationAcceptedResponse struct {
	Accepted bool `json:"accepted"`
}
