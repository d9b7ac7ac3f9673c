package handlers

import (
	"strings"
	"time"

	"service-dispatch/internal/domain"
)

func optTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

func (a addressDTO) toModel() domain.Address {
	return domain.Address{
		Street:      strings.TrimSpace(a.Street),
		City:        strings.TrimSpace(a.City),
		State:       strings.TrimSpace(a.State),
		Zip:         strings.TrimSpace(a.Zip),
		Coordinates: domain.Point{Lat: a.Lat, Lng: a.Lng},
	}
}

func addressToResponse(a domain.Address) addressDTO {
	return addressDTO{
		Street: a.Street,
		City:   a.City,
		State:  a.State,
		Zip:    a.Zip,
		Lat:    a.Coordinates.Lat,
		Lng:    a.Coordinates.Lng,
	}
}

func (r createOrderRequest) toModel() domain.OrderSpec {
	return domain.OrderSpec{
		OrderRef:     r.OrderRef,
		RestaurantID: r.RestaurantID,
		CustomerID:   r.CustomerID,
		Pickup:       r.Pickup.toModel(),
		Dropoff:      r.Dropoff.toModel(),
		FeeCents:     r.FeeCents,
		TipCents:     r.TipCents,
		VehicleType:  domain.VehicleType(r.VehicleType),
		Instructions: r.Instructions,
	}
}

func (p *proofDTO) toModel() *domain.DeliveryProof {
	if p == nil {
		return nil
	}
	return &domain.DeliveryProof{PhotoURL: p.PhotoURL, Signature: p.Signature, Notes: p.Notes}
}

func (r locationRequest) toModel() domain.LocationSample {
	s := domain.LocationSample{
		Point:     domain.Point{Lat: r.Lat, Lng: r.Lng},
		AccuracyM: r.AccuracyM,
		Speed:     r.SpeedKmh,
		Heading:   r.Heading,
	}
	if r.RecordedAt != nil {
		s.RecordedAt = *r.RecordedAt
	}
	return s
}

func orderToResponse(o domain.DeliveryOrder) orderResponse {
	resp := orderResponse{
		ID:                  o.ID,
		OrderRef:            o.OrderRef,
		RestaurantID:        o.RestaurantID,
		CustomerID:          o.CustomerID,
		DriverID:            o.DriverID,
		TrackingID:          o.TrackingID,
		Status:              string(o.Status),
		Pickup:              addressToResponse(o.Pickup),
		Dropoff:             addressToResponse(o.Dropoff),
		FeeCents:            o.FeeCents,
		TipCents:            o.TipCents,
		VehicleType:         string(o.VehicleType),
		Instructions:        o.Instructions,
		AssignAttempts:      o.AssignAttempts,
		Escalated:           o.Escalated,
		EstimatedDeliveryAt: optTime(o.EstimatedDeliveryAt),
		PickedUpAt:          optTime(o.PickedUpAt),
		DeliveredAt:         optTime(o.DeliveredAt),
		CancelledAt:         optTime(o.CancelledAt),
		CancelReason:        o.CancelReason,
		CreatedAt:           o.CreatedAt.UTC(),
	}
	if o.Proof != nil {
		resp.Proof = &proofDTO{PhotoURL: o.Proof.PhotoURL, Signature: o.Proof.Signature, Notes: o.Proof.Notes}
	}
	return resp
}

func ordersToResponse(list []domain.DeliveryOrder) []orderResponse {
	out := make([]orderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, orderToResponse(o))
	}
	return out
}

func waypointsToResponse(list []domain.Waypoint) []waypointDTO {
	out := make([]waypointDTO, 0, len(list))
	for _, w := range list {
		out = append(out, waypointDTO{
			Kind:    string(w.Kind),
			Address: w.Address,
			Lat:     w.Lat,
			Lng:     w.Lng,
			ETA:     optTime(w.ETA),
		})
	}
	return out
}

func assignmentToResponse(a domain.Assignment) assignmentResponse {
	return assignmentResponse{
		ID:                  a.ID,
		OrderID:             a.OrderID,
		DriverID:            a.DriverID,
		Status:              string(a.Status),
		Reason:              a.Reason,
		AssignedAt:          a.AssignedAt.UTC(),
		OfferExpiresAt:      optTime(a.OfferExpiresAt),
		AcceptedAt:          optTime(a.AcceptedAt),
		EstimatedPickupAt:   optTime(a.EstimatedPickupAt),
		EstimatedDeliveryAt: optTime(a.EstimatedDeliveryAt),
		Waypoints:           waypointsToResponse(a.Waypoints),
	}
}

func assignmentsToResponse(list []domain.Assignment) []assignmentResponse {
	out := make([]assignmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, assignmentToResponse(a))
	}
	return out
}

func routeToResponse(r domain.DeliveryRoute) routeResponse {
	ids := r.OrderIDs
	if ids == nil {
		ids = []string{}
	}
	return routeResponse{
		ID:               r.ID,
		AssignmentID:     r.AssignmentID,
		DriverID:         r.DriverID,
		OrderIDs:         ids,
		Status:           string(r.Status),
		Stops:            waypointsToResponse(r.Stops),
		TotalDistanceKm:  r.TotalDistanceKm,
		EstimatedMinutes: r.EstimatedMinutes,
		PlannedStops:     r.PlannedStops,
		CompletedStops:   r.CompletedStops,
	}
}

func payoutToResponse(p domain.Payout) payoutResponse {
	return payoutResponse{
		ID:         p.ID,
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

func trackingToResponse(t domain.TrackingInfo) trackingResponse {
	resp := trackingResponse{
		TrackingID:          t.TrackingID,
		OrderID:             t.OrderID,
		Status:              string(t.Status),
		DriverID:            t.DriverID,
		EstimatedDeliveryAt: optTime(t.EstimatedDeliveryAt),
		CurrentStop:         t.CurrentStop,
		TotalStops:          t.TotalStops,
		ProgressPercent:     t.ProgressPercent,
	}
	if t.DriverLocation != nil {
		resp.DriverLocation = &pointDTO{Lat: t.DriverLocation.Lat, Lng: t.DriverLocation.Lng}
	}
	return resp
}

func sampleToResponse(s domain.LocationSample) locationDTO {
	return locationDTO{
		Lat:        s.Lat,
		Lng:        s.Lng,
		AccuracyM:  s.AccuracyM,
		SpeedKmh:   s.Speed,
		Heading:    s.Heading,
		RecordedAt: s.RecordedAt.UTC(),
	}
}

func driverToResponse(d domain.Driver) driverResponse {
	resp := driverResponse{
		ID:        d.ID,
		Name:      d.Name,
		Rating:    d.Rating,
		Status:    string(d.Status),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	if d.Location != nil {
		loc := sampleToResponse(*d.Location)
		resp.Location = &loc
	}
	return resp
}
