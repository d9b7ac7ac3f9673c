package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"service-dispatch/internal/domain"
)

// querier is implemented by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type addressJSON struct {
	Street string  `json:"street,omitempty"`
	City   string  `json:"city,omitempty"`
	State  string  `json:"state,omitempty"`
	Zip    string  `json:"zip,omitempty"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

type waypointJSON struct {
	Kind    string     `json:"kind"`
	Address string     `json:"address,omitempty"`
	Lat     float64    `json:"lat"`
	Lng     float64    `json:"lng"`
	ETA     *time.Time `json:"eta,omitempty"`
}

type proofJSON struct {
	PhotoURL  string `json:"photo_url,omitempty"`
	Signature string `json:"signature,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func fromNull(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

func limitArg(n int) any {
	if n <= 0 {
		return nil // LIMIT NULL
	}
	return n
}

func encodeAddress(a domain.Address) ([]byte, error) {
	return json.Marshal(addressJSON{
		Street: a.Street, City: a.City, State: a.State, Zip: a.Zip,
		Lat: a.Coordinates.Lat, Lng: a.Coordinates.Lng,
	})
}

func decodeAddress(b []byte) (domain.Address, error) {
	var a addressJSON
	if err := json.Unmarshal(b, &a); err != nil {
		return domain.Address{}, err
	}
	return domain.Address{
		Street: a.Street, City: a.City, State: a.State, Zip: a.Zip,
		Coordinates: domain.Point{Lat: a.Lat, Lng: a.Lng},
	}, nil
}

func encodeWaypoints(list []domain.Waypoint) ([]byte, error) {
	out := make([]waypointJSON, 0, len(list))
	for _, w := range list {
		out = append(out, waypointJSON{
			Kind: string(w.Kind), Address: w.Address,
			Lat: w.Lat, Lng: w.Lng, ETA: nullTime(w.ETA),
		})
	}
	return json.Marshal(out)
}

func decodeWaypoints(b []byte) ([]domain.Waypoint, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var in []waypointJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, err
	}
	out := make([]domain.Waypoint, 0, len(in))
	for _, w := range in {
		out = append(out, domain.Waypoint{
			Point:   domain.Point{Lat: w.Lat, Lng: w.Lng},
			Address: w.Address,
			Kind:    domain.StopKind(w.Kind),
			ETA:     fromNull(w.ETA),
		})
	}
	return out, nil
}

func encodeProof(p *domain.DeliveryProof) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(proofJSON{PhotoURL: p.PhotoURL, Signature: p.Signature, Notes: p.Notes})
}

func decodeProof(b []byte) (*domain.DeliveryProof, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var p proofJSON
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &domain.DeliveryProof{PhotoURL: p.PhotoURL, Signature: p.Signature, Notes: p.Notes}, nil
}

const orderColumns = `id, order_ref, restaurant_id, customer_id, driver_id, pickup, dropoff, status,
        fee_cents, tip_cents, vehicle_type, instructions, tracking_id,
        estimated_delivery_at, picked_up_at, delivered_at, cancelled_at, cancel_reason, proof,
        assign_attempts, next_attempt_at, excluded_driver_id, escalated, created_at, updated_at`

func scanOrder(row pgx.Row) (*domain.DeliveryOrder, error) {
	var (
		o                                         domain.DeliveryOrder
		pickup, dropoff, proof                    []byte
		status, vehicle                           string
		eta, pickedUp, delivered, cancelled, next *time.Time
	)
	err := row.Scan(
		&o.ID, &o.OrderRef, &o.RestaurantID, &o.CustomerID, &o.DriverID, &pickup, &dropoff, &status,
		&o.FeeCents, &o.TipCents, &vehicle, &o.Instructions, &o.TrackingID,
		&eta, &pickedUp, &delivered, &cancelled, &o.CancelReason, &proof,
		&o.AssignAttempts, &next, &o.ExcludedDriverID, &o.Escalated, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if o.Pickup, err = decodeAddress(pickup); err != nil {
		return nil, fmt.Errorf("decode pickup: %w", err)
	}
	if o.Dropoff, err = decodeAddress(dropoff); err != nil {
		return nil, fmt.Errorf("decode dropoff: %w", err)
	}
	if o.Proof, err = decodeProof(proof); err != nil {
		return nil, fmt.Errorf("decode proof: %w", err)
	}
	o.Status = domain.OrderStatus(status)
	o.VehicleType = domain.VehicleType(vehicle)
	o.EstimatedDeliveryAt = fromNull(eta)
	o.PickedUpAt = fromNull(pickedUp)
	o.DeliveredAt = fromNull(delivered)
	o.CancelledAt = fromNull(cancelled)
	o.NextAttemptAt = fromNull(next)
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return &o, nil
}

// orderArgs returns values in orderColumns order.
func orderArgs(o *domain.DeliveryOrder) ([]any, error) {
	pickup, err := encodeAddress(o.Pickup)
	if err != nil {
		return nil, fmt.Errorf("encode pickup: %w", err)
	}
	dropoff, err := encodeAddress(o.Dropoff)
	if err != nil {
		return nil, fmt.Errorf("encode dropoff: %w", err)
	}
	proof, err := encodeProof(o.Proof)
	if err != nil {
		return nil, fmt.Errorf("encode proof: %w", err)
	}
	return []any{
		o.ID, o.OrderRef, o.RestaurantID, o.CustomerID, o.DriverID, pickup, dropoff, string(o.Status),
		o.FeeCents, o.TipCents, string(o.VehicleType), o.Instructions, o.TrackingID,
		nullTime(o.EstimatedDeliveryAt), nullTime(o.PickedUpAt), nullTime(o.DeliveredAt), nullTime(o.CancelledAt),
		o.CancelReason, proof,
		o.AssignAttempts, nullTime(o.NextAttemptAt), o.ExcludedDriverID, o.Escalated, o.CreatedAt, o.UpdatedAt,
	}, nil
}

const assignmentColumns = `id, order_id, driver_id, status, reason, assigned_at, offer_expires_at,
        accepted_at, rejected_at, started_at, completed_at, cancelled_at,
        estimated_pickup_at, estimated_delivery_at, waypoints`

func scanAssignment(row pgx.Row) (*domain.Assignment, error) {
	var (
		a                                                          domain.Assignment
		status                                                     string
		expires, accepted, rejected, started, completed, cancelled *time.Time
		pickupETA, deliveryETA                                     *time.Time
		waypoints                                                  []byte
	)
	err := row.Scan(
		&a.ID, &a.OrderID, &a.DriverID, &status, &a.Reason, &a.AssignedAt, &expires,
		&accepted, &rejected, &started, &completed, &cancelled,
		&pickupETA, &deliveryETA, &waypoints,
	)
	if err != nil {
		return nil, err
	}
	if a.Waypoints, err = decodeWaypoints(waypoints); err != nil {
		return nil, fmt.Errorf("decode waypoints: %w", err)
	}
	a.Status = domain.AssignmentStatus(status)
	a.AssignedAt = a.AssignedAt.UTC()
	a.OfferExpiresAt = fromNull(expires)
	a.AcceptedAt = fromNull(accepted)
	a.RejectedAt = fromNull(rejected)
	a.StartedAt = fromNull(started)
	a.CompletedAt = fromNull(completed)
	a.CancelledAt = fromNull(cancelled)
	a.EstimatedPickupAt = fromNull(pickupETA)
	a.EstimatedDeliveryAt = fromNull(deliveryETA)
	return &a, nil
}

func assignmentArgs(a *domain.Assignment) ([]any, error) {
	waypoints, err := encodeWaypoints(a.Waypoints)
	if err != nil {
		return nil, fmt.Errorf("encode waypoints: %w", err)
	}
	return []any{
		a.ID, a.OrderID, a.DriverID, string(a.Status), a.Reason, a.AssignedAt, nullTime(a.OfferExpiresAt),
		nullTime(a.AcceptedAt), nullTime(a.RejectedAt), nullTime(a.StartedAt), nullTime(a.CompletedAt), nullTime(a.CancelledAt),
		nullTime(a.EstimatedPickupAt), nullTime(a.EstimatedDeliveryAt), waypoints,
	}, nil
}

const routeColumns = `id, assignment_id, driver_id, order_ids, status, stops, total_distance_km,
        estimated_minutes, planned_stops, completed_stops, created_at, started_at, completed_at`

func scanRoute(row pgx.Row) (*domain.DeliveryRoute, error) {
	var (
		r                  domain.DeliveryRoute
		status             string
		stops              []byte
		started, completed *time.Time
	)
	err := row.Scan(
		&r.ID, &r.AssignmentID, &r.DriverID, &r.OrderIDs, &status, &stops, &r.TotalDistanceKm,
		&r.EstimatedMinutes, &r.PlannedStops, &r.CompletedStops, &r.CreatedAt, &started, &completed,
	)
	if err != nil {
		return nil, err
	}
	if r.Stops, err = decodeWaypoints(stops); err != nil {
		return nil, fmt.Errorf("decode stops: %w", err)
	}
	r.Status = domain.RouteStatus(status)
	r.CreatedAt = r.CreatedAt.UTC()
	r.StartedAt = fromNull(started)
	r.CompletedAt = fromNull(completed)
	return &r, nil
}

const driverColumns = `id, name, rating, status, lat, lng, accuracy_m, speed_kmh, heading, recorded_at, updated_at`

func scanDriver(row pgx.Row) (*domain.Driver, error) {
	var (
		d                  domain.Driver
		status             string
		lat, lng, accuracy *float64
		speed, heading     *float64
		recordedAt         *time.Time
	)
	err := row.Scan(&d.ID, &d.Name, &d.Rating, &status, &lat, &lng, &accuracy, &speed, &heading, &recordedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.Status = domain.DriverStatus(status)
	d.UpdatedAt = d.UpdatedAt.UTC()
	if lat != nil && lng != nil && recordedAt != nil {
		loc := domain.LocationSample{
			Point:      domain.Point{Lat: *lat, Lng: *lng},
			Speed:      speed,
			Heading:    heading,
			RecordedAt: recordedAt.UTC(),
		}
		if accuracy != nil {
			loc.AccuracyM = *accuracy
		}
		d.Location = &loc
	}
	return &d, nil
}

// getOne runs a single-row query and maps no rows to nil, nil.
func getOne[T any](ctx context.Context, q querier, scan func(pgx.Row) (*T, error), what, sql string, args ...any) (*T, error) {
	v, err := scan(q.QueryRow(ctx, sql, args...))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", what, err)
	}
	return v, nil
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]T, error) {
	defer rows.Close()
	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}
