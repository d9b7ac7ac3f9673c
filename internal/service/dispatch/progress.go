package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/ports/dispatchtx"
	"service-dispatch/internal/service/assignment"
)

// lockOwnedOrder locks orderID and checks that driverID is bound to it.
func lockOwnedOrder(ctx context.Context, tx dispatchtx.Repository, orderID, driverID string) (*domain.DeliveryOrder, error) {
	o, err := tx.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("order %q: %w", orderID, apperr.ErrNotFound)
	}
	if o.DriverID != "" && o.DriverID != strings.TrimSpace(driverID) {
		return nil, fmt.Errorf("order %q is bound to another driver: %w", orderID, apperr.ErrUnauthorized)
	}
	return o, nil
}

// activeAssignment returns the active assignment of o, failing with ErrInvalidState when none exists.
func activeAssignment(ctx context.Context, tx dispatchtx.Repository, o *domain.DeliveryOrder) (*domain.Assignment, error) {
	a, err := tx.ActiveAssignmentForOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("order %q has no active assignment: %w", o.ID, apperr.ErrInvalidState)
	}
	return a, nil
}

// MarkPickedUp records that the bound driver collected the order.
func (s *Service) MarkPickedUp(ctx context.Context, orderID, driverID string) (*domain.DeliveryOrder, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	var updated domain.DeliveryOrder
	err := s.store.WithTx(ctx, func(tx dispatchtx.Repository) error {
		o, err := lockOwnedOrder(ctx, tx, orderID, driverID)
		if err != nil {
			return err
		}
		if o.Status != domain.OrderAssigned {
			return fmt.Errorf("order %q is %s: %w", orderID, o.Status, apperr.ErrInvalidState)
		}
		a, err := activeAssignment(ctx, tx, o)
		if err != nil {
			return err
		}
		// an offer that was never accepted cannot start
		next, err := assignment.Transition(*a, assignment.EventStart, now)
		if err != nil {
			return err
		}
		if err := tx.UpdateAssignment(ctx, &next); err != nil {
			return err
		}

		r, err := tx.GetRouteByAssignment(ctx, a.ID)
		if err != nil {
			return err
		}
		if r != nil {
			r.Status = domain.RouteInProgress
			r.StartedAt = now
			r.CompletedStops = 1
			if err := tx.UpdateRoute(ctx, r); err != nil {
				return err
			}
		}

		o.Status = domain.OrderPickedUp
		o.PickedUpAt = now
		o.UpdatedAt = now
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		updated = *o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order picked up",
		logx.String("event", "order_picked_up"),
		logx.String("order_id", orderID),
		logx.String("driver_id", updated.DriverID),
	)
	return &updated, nil
}

// MarkInTransit moves a picked up order to in_transit.
func (s *Service) MarkInTransit(ctx context.Context, orderID, driverID string) (*domain.DeliveryOrder, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	var updated domain.DeliveryOrder
	err := s.store.WithTx(ctx, func(tx dispatchtx.Repository) error {
		o, err := lockOwnedOrder(ctx, tx, orderID, driverID)
		if err != nil {
			return err
		}
		if o.Status != domain.OrderPickedUp {
			return fmt.Errorf("order %q is %s: %w", orderID, o.Status, apperr.ErrInvalidState)
		}
		o.Status = domain.OrderInTransit
		o.UpdatedAt = now
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		updated = *o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order in transit",
		logx.String("event", "order_in_transit"),
		logx.String("order_id", orderID),
		logx.String("driver_id", updated.DriverID),
	)
	return &updated, nil
}

// MarkDelivered completes the order, frees the driver and records the payout in one
// transaction. The payout is then published to settlement on a best-effort basis.
func (s *Service) MarkDelivered(ctx context.Context, orderID, driverID string, proof *domain.DeliveryProof) (*domain.DeliveryOrder, *domain.Payout, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	var (
		updated domain.DeliveryOrder
		p       domain.Payout
	)
	err := s.store.WithTx(ctx, func(tx dispatchtx.Repository) error {
		o, err := lockOwnedOrder(ctx, tx, orderID, driverID)
		if err != nil {
			return err
		}
		if o.Status != domain.OrderPickedUp && o.Status != domain.OrderInTransit {
			return fmt.Errorf("order %q is %s: %w", orderID, o.Status, apperr.ErrInvalidState)
		}
		a, err := activeAssignment(ctx, tx, o)
		if err != nil {
			return err
		}
		next, err := assignment.Transition(*a, assignment.EventComplete, now)
		if err != nil {
			return err
		}

		o.Status = domain.OrderDelivered
		o.DeliveredAt = now
		o.UpdatedAt = now
		if proof != nil {
			cp := *proof
			o.Proof = &cp
		}

		p = s.payouts.Compute(*o, now)
		p.ID = s.newID()
		p.CreatedAt = now
		if err := tx.InsertPayout(ctx, &p); err != nil {
			return fmt.Errorf("insert payout: %w", err)
		}
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		if err := s.releaseDriver(ctx, tx, next.DriverID); err != nil {
			return err
		}
		if err := tx.UpdateAssignment(ctx, &next); err != nil {
			return err
		}

		r, err := tx.GetRouteByAssignment(ctx, a.ID)
		if err != nil {
			return err
		}
		if r != nil {
			r.Status = domain.RouteCompleted
			r.CompletedStops = r.PlannedStops
			r.CompletedAt = now
			if err := tx.UpdateRoute(ctx, r); err != nil {
				return err
			}
		}
		updated = *o
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.metrics.Deliveries.Inc()
	s.logger.Info("order delivered",
		logx.String("event", "order_delivered"),
		logx.String("order_id", orderID),
		logx.String("driver_id", updated.DriverID),
		logx.String("payout_id", p.ID),
		logx.Int64("payout_total_cents", p.TotalCents),
	)

	if err := s.publisher.PublishPayout(ctx, p); err != nil {
		s.logger.Warn("payout publish failed",
			logx.String("payout_id", p.ID),
			logx.String("order_id", orderID),
			logx.Err(err),
		)
	}
	return &updated, &p, nil
}

// releaseDriver puts a busy driver back online. Other statuses are left as set by the driver.
// It must run before the assignment row is written to keep the order, driver, assignment lock order.
func (s *Service) releaseDriver(ctx context.Context, tx dispatchtx.Repository, driverID string) error {
	d, err := tx.GetDriverForUpdate(ctx, driverID)
	if err != nil {
		return err
	}
	if d == nil || d.Status != domain.DriverBusy {
		return nil
	}
	return tx.UpdateDriverStatus(ctx, driverID, domain.DriverOnline)
}

// Cancel stops a non-terminal order, voiding its active assignment and route.
func (s *Service) Cancel(ctx context.Context, orderID, reason string) (*domain.DeliveryOrder, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	var (
		updated domain.DeliveryOrder
		voided  *domain.Assignment
	)
	err := s.store.WithTx(ctx, func(tx dispatchtx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("order %q: %w", orderID, apperr.ErrNotFound)
		}
		if o.Status.Terminal() {
			return fmt.Errorf("order %q is %s: %w", orderID, o.Status, apperr.ErrInvalidState)
		}

		a, err := tx.ActiveAssignmentForOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if a != nil {
			next, err := assignment.Transition(*a, assignment.EventCancel, now)
			if err != nil {
				return err
			}
			next.Reason = reason
			if err := s.releaseDriver(ctx, tx, next.DriverID); err != nil {
				return err
			}
			if err := tx.UpdateAssignment(ctx, &next); err != nil {
				return err
			}
			r, err := tx.GetRouteByAssignment(ctx, a.ID)
			if err != nil {
				return err
			}
			if r != nil && r.Status != domain.RouteCompleted {
				r.Status = domain.RouteCancelled
				if err := tx.UpdateRoute(ctx, r); err != nil {
					return err
				}
			}
			voided = &next
		}

		o.Status = domain.OrderCancelled
		o.CancelledAt = now
		o.CancelReason = reason
		o.NextAttemptAt = time.Time{}
		o.UpdatedAt = now
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		updated = *o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Cancellations.Inc()
	s.logger.Info("order cancelled",
		logx.String("event", "order_cancelled"),
		logx.String("order_id", orderID),
		logx.String("reason", reason),
	)
	if voided != nil {
		s.notify(ctx, domain.Notification{
			Kind:         domain.NotifyOfferVoid,
			DriverID:     voided.DriverID,
			OrderID:      orderID,
			AssignmentID: voided.ID,
			TrackingID:   updated.TrackingID,
			Reason:       reason,
		})
	}
	return &updated, nil
}
