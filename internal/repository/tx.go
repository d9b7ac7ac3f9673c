package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/ports/dispatchtx"
)

// TxRepo represents transaction repository.
type TxRepo struct {
	tx pgx.Tx
}

// InsertOrder - insert a new order.
func (r *TxRepo) InsertOrder(ctx context.Context, o *domain.DeliveryOrder) error {
	args, err := orderArgs(o)
	if err != nil {
		return err
	}
	_, err = r.tx.Exec(ctx, `
        INSERT INTO orders (`+orderColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
                $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
    `, args...)
	if err != nil {
		return wrapWrite("insert order "+o.ID, err)
	}
	return nil
}

// GetOrderForUpdate - get order and lock the row.
func (r *TxRepo) GetOrderForUpdate(ctx context.Context, id string) (*domain.DeliveryOrder, error) {
	return getOne(ctx, r.tx, scanOrder, "order "+id+" for update",
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

// UpdateOrder - overwrite the mutable order fields.
func (r *TxRepo) UpdateOrder(ctx context.Context, o *domain.DeliveryOrder) error {
	proof, err := encodeProof(o.Proof)
	if err != nil {
		return fmt.Errorf("encode proof: %w", err)
	}
	ct, err := r.tx.Exec(ctx, `
        UPDATE orders
        SET driver_id = $2,
            status = $3,
            estimated_delivery_at = $4,
            picked_up_at = $5,
            delivered_at = $6,
            cancelled_at = $7,
            cancel_reason = $8,
            proof = $9,
            assign_attempts = $10,
            next_attempt_at = $11,
            excluded_driver_id = $12,
            escalated = $13,
            updated_at = $14
        WHERE id = $1
    `, o.ID, o.DriverID, string(o.Status), nullTime(o.EstimatedDeliveryAt), nullTime(o.PickedUpAt),
		nullTime(o.DeliveredAt), nullTime(o.CancelledAt), o.CancelReason, proof,
		o.AssignAttempts, nullTime(o.NextAttemptAt), o.ExcludedDriverID, o.Escalated, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update order %q: %w", o.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("update order %q: %w", o.ID, apperr.ErrNotFound)
	}
	return nil
}

// InsertAssignment - insert an offer. A second active offer for the order or driver is a conflict.
func (r *TxRepo) InsertAssignment(ctx context.Context, a *domain.Assignment) error {
	args, err := assignmentArgs(a)
	if err != nil {
		return err
	}
	_, err = r.tx.Exec(ctx, `
        INSERT INTO assignments (`+assignmentColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `, args...)
	if err != nil {
		return wrapWrite("insert assignment "+a.ID, err)
	}
	return nil
}

// GetAssignmentForUpdate - get assignment and lock the row.
func (r *TxRepo) GetAssignmentForUpdate(ctx context.Context, id string) (*domain.Assignment, error) {
	return getOne(ctx, r.tx, scanAssignment, "assignment "+id+" for update",
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = $1 FOR UPDATE`, id)
}

// ActiveAssignmentForOrder - the live offer of an order, if any.
// Not locked: callers hold the order row, and assignments_active_order guards inserts.
func (r *TxRepo) ActiveAssignmentForOrder(ctx context.Context, orderID string) (*domain.Assignment, error) {
	return getOne(ctx, r.tx, scanAssignment, "active assignment of order "+orderID, `
        SELECT `+assignmentColumns+` FROM assignments
        WHERE order_id = $1 AND status IN ('pending_acceptance', 'accepted', 'in_progress')
    `, orderID)
}

// ActiveAssignmentForDriver - the live offer held by a driver, if any.
// Not locked: callers hold the driver row, and assignments_active_driver guards inserts.
func (r *TxRepo) ActiveAssignmentForDriver(ctx context.Context, driverID string) (*domain.Assignment, error) {
	return getOne(ctx, r.tx, scanAssignment, "active assignment of driver "+driverID, `
        SELECT `+assignmentColumns+` FROM assignments
        WHERE driver_id = $1 AND status IN ('pending_acceptance', 'accepted', 'in_progress')
    `, driverID)
}

// UpdateAssignment - overwrite status, timestamps and waypoints.
func (r *TxRepo) UpdateAssignment(ctx context.Context, a *domain.Assignment) error {
	waypoints, err := encodeWaypoints(a.Waypoints)
	if err != nil {
		return fmt.Errorf("encode waypoints: %w", err)
	}
	ct, err := r.tx.Exec(ctx, `
        UPDATE assignments
        SET status = $2,
            reason = $3,
            offer_expires_at = $4,
            accepted_at = $5,
            rejected_at = $6,
            started_at = $7,
            completed_at = $8,
            cancelled_at = $9,
            estimated_pickup_at = $10,
            estimated_delivery_at = $11,
            waypoints = $12
        WHERE id = $1
    `, a.ID, string(a.Status), a.Reason, nullTime(a.OfferExpiresAt), nullTime(a.AcceptedAt),
		nullTime(a.RejectedAt), nullTime(a.StartedAt), nullTime(a.CompletedAt), nullTime(a.CancelledAt),
		nullTime(a.EstimatedPickupAt), nullTime(a.EstimatedDeliveryAt), waypoints)
	if err != nil {
		return wrapWrite("update assignment "+a.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("update assignment %q: %w", a.ID, apperr.ErrNotFound)
	}
	return nil
}

// GetDriverForUpdate - get driver and lock the row.
func (r *TxRepo) GetDriverForUpdate(ctx context.Context, id string) (*domain.Driver, error) {
	return getOne(ctx, r.tx, scanDriver, "driver "+id+" for update",
		`SELECT `+driverColumns+` FROM drivers WHERE id = $1 FOR UPDATE`, id)
}

// UpdateDriverStatus - update driver status.
func (r *TxRepo) UpdateDriverStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE drivers
        SET status = $2, updated_at = now()
        WHERE id = $1
    `, id, string(status))
	if err != nil {
		return fmt.Errorf("update driver %q status: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("update driver %q status: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// InsertRoute - insert a planned route.
func (r *TxRepo) InsertRoute(ctx context.Context, rt *domain.DeliveryRoute) error {
	stops, err := encodeWaypoints(rt.Stops)
	if err != nil {
		return fmt.Errorf("encode stops: %w", err)
	}
	orderIDs := rt.OrderIDs
	if orderIDs == nil {
		orderIDs = []string{}
	}
	_, err = r.tx.Exec(ctx, `
        INSERT INTO routes (`+routeColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, rt.ID, rt.AssignmentID, rt.DriverID, orderIDs, string(rt.Status), stops, rt.TotalDistanceKm,
		rt.EstimatedMinutes, rt.PlannedStops, rt.CompletedStops, rt.CreatedAt, nullTime(rt.StartedAt), nullTime(rt.CompletedAt))
	if err != nil {
		return wrapWrite("insert route "+rt.ID, err)
	}
	return nil
}

// GetRouteByAssignment - the route of an assignment, if any.
func (r *TxRepo) GetRouteByAssignment(ctx context.Context, assignmentID string) (*domain.DeliveryRoute, error) {
	return getRouteByAssignment(ctx, r.tx, assignmentID)
}

// UpdateRoute - overwrite status and progress.
func (r *TxRepo) UpdateRoute(ctx context.Context, rt *domain.DeliveryRoute) error {
	stops, err := encodeWaypoints(rt.Stops)
	if err != nil {
		return fmt.Errorf("encode stops: %w", err)
	}
	ct, err := r.tx.Exec(ctx, `
        UPDATE routes
        SET status = $2,
            stops = $3,
            completed_stops = $4,
            started_at = $5,
            completed_at = $6
        WHERE id = $1
    `, rt.ID, string(rt.Status), stops, rt.CompletedStops, nullTime(rt.StartedAt), nullTime(rt.CompletedAt))
	if err != nil {
		return fmt.Errorf("update route %q: %w", rt.ID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("update route %q: %w", rt.ID, apperr.ErrNotFound)
	}
	return nil
}

// InsertPayout - insert a payout. One payout per order.
func (r *TxRepo) InsertPayout(ctx context.Context, p *domain.Payout) error {
	_, err := r.tx.Exec(ctx, `
        INSERT INTO payouts (id, order_id, driver_id, base_cents, tip_cents, bonus_cents, total_cents, currency, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, p.ID, p.OrderID, p.DriverID, p.BaseCents, p.TipCents, p.BonusCents, p.TotalCents, p.Currency, string(p.Status), p.CreatedAt)
	if err != nil {
		return wrapWrite("insert payout for order "+p.OrderID, err)
	}
	return nil
}

var _ dispatchtx.Repository = (*TxRepo)(nil)
