package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/ports/dispatchtx"
	"service-dispatch/internal/service/assignment"
)

// authorize loads the assignment outside of a transaction and checks that driverID owns it.
func (s *Service) authorize(ctx context.Context, assignmentID, driverID string) (*domain.Assignment, error) {
	a, err := s.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("load assignment: %w", err)
	}
	if a == nil {
		return nil, fmt.Errorf("assignment %q: %w", assignmentID, apperr.ErrNotFound)
	}
	if a.DriverID != strings.TrimSpace(driverID) {
		return nil, fmt.Errorf("assignment %q belongs to another driver: %w", assignmentID, apperr.ErrUnauthorized)
	}
	return a, nil
}

// lockOffer locks the order, the offered driver and then the assignment.
// Every dispatch transaction takes row locks in this order: order, driver, assignment.
func lockOffer(ctx context.Context, tx dispatchtx.Repository, orderID, driverID, assignmentID string) (*domain.DeliveryOrder, *domain.Assignment, error) {
	o, err := tx.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if o == nil {
		return nil, nil, fmt.Errorf("order %q: %w", orderID, apperr.ErrNotFound)
	}
	if _, err := tx.GetDriverForUpdate(ctx, driverID); err != nil {
		return nil, nil, err
	}
	a, err := tx.GetAssignmentForUpdate(ctx, assignmentID)
	if err != nil {
		return nil, nil, err
	}
	if a == nil {
		return nil, nil, fmt.Errorf("assignment %q: %w", assignmentID, apperr.ErrNotFound)
	}
	return o, a, nil
}

// Accept confirms an offer: the driver becomes busy and the route is materialized.
func (s *Service) Accept(ctx context.Context, assignmentID, driverID string) (*domain.Assignment, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	peek, err := s.authorize(ctx, assignmentID, driverID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var accepted domain.Assignment
	err = s.store.WithTx(ctx, func(tx dispatchtx.Repository) error {
		o, a, err := lockOffer(ctx, tx, peek.OrderID, peek.DriverID, assignmentID)
		if err != nil {
			return err
		}
		if o.Status.Terminal() {
			return fmt.Errorf("order %q is %s: %w", o.ID, o.Status, apperr.ErrInvalidState)
		}
		if a.Status == domain.AssignmentPendingAcceptance && !a.OfferExpiresAt.IsZero() && now.After(a.OfferExpiresAt) {
			return fmt.Errorf("offer %q expired at %s: %w", a.ID, a.OfferExpiresAt.Format(time.RFC3339), apperr.ErrInvalidState)
		}

		next, err := assignment.Transition(*a, assignment.EventAccept, now)
		if err != nil {
			return err
		}
		if err := tx.UpdateAssignment(ctx, &next); err != nil {
			return err
		}
		if err := tx.UpdateDriverStatus(ctx, next.DriverID, domain.DriverBusy); err != nil {
			return err
		}

		r := s.routes.Materialize(next, now)
		r.ID = s.newID()
		if err := tx.InsertRoute(ctx, &r); err != nil {
			return err
		}
		accepted = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("assignment accepted",
		logx.String("event", "assignment_accepted"),
		logx.String("assignment_id", accepted.ID),
		logx.String("order_id", accepted.OrderID),
		logx.String("driver_id", accepted.DriverID),
	)
	return &accepted, nil
}

// Reject declines an offer. The order returns to the pool without this driver
// and is re-dispatched after the reassign delay.
func (s *Service) Reject(ctx context.Context, assignmentID, driverID, reason string) (*domain.Assignment, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	peek, err := s.authorize(ctx, assignmentID, driverID)
	if err != nil {
		return nil, err
	}

	rejected, err := s.closeOffer(ctx, peek.OrderID, peek.DriverID, assignmentID, assignment.EventReject, strings.TrimSpace(reason))
	if err != nil {
		return nil, err
	}
	if rejected == nil {
		return nil, fmt.Errorf("assignment %q is no longer pending: %w", assignmentID, apperr.ErrInvalidState)
	}

	s.metrics.Rejections.Inc()
	s.logger.Info("assignment rejected",
		logx.String("event", "assignment_rejected"),
		logx.String("assignment_id", rejected.ID),
		logx.String("order_id", rejected.OrderID),
		logx.String("driver_id", rejected.DriverID),
		logx.String("reason", rejected.Reason),
	)
	s.scheduleRetry(rejected.OrderID)
	return rejected, nil
}

// ExpireOffer times out a pending offer whose deadline has passed. Anything else is a no-op.
func (s *Service) ExpireOffer(ctx context.Context, assignmentID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	peek, err := s.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return fmt.Errorf("load assignment: %w", err)
	}
	if peek == nil || peek.Status != domain.AssignmentPendingAcceptance {
		return nil
	}
	if peek.OfferExpiresAt.After(s.now()) {
		return nil
	}

	expired, err := s.closeOffer(ctx, peek.OrderID, peek.DriverID, assignmentID, assignment.EventTimeout, "")
	if err != nil {
		return err
	}
	if expired == nil {
		return nil
	}

	s.metrics.OfferTimeouts.Inc()
	s.logger.Info("offer expired",
		logx.String("event", "offer_expired"),
		logx.String("assignment_id", expired.ID),
		logx.String("order_id", expired.OrderID),
		logx.String("driver_id", expired.DriverID),
	)
	s.notify(ctx, domain.Notification{
		Kind:         domain.NotifyOfferVoid,
		DriverID:     expired.DriverID,
		OrderID:      expired.OrderID,
		AssignmentID: expired.ID,
		Reason:       assignment.ReasonTimeout,
	})
	s.scheduleRetry(expired.OrderID)
	return nil
}

// closeOffer applies reject or timeout to a pending offer and reverts the order.
// It returns nil without error when ev is timeout and the offer was already answered.
func (s *Service) closeOffer(ctx context.Context, orderID, driverID, assignmentID string, ev assignment.Event, reason string) (*domain.Assignment, error) {
	now := s.now()
	var closed *domain.Assignment
	err := s.store.WithTx(ctx, func(tx dispatchtx.Repository) error {
		o, a, err := lockOffer(ctx, tx, orderID, driverID, assignmentID)
		if err != nil {
			return err
		}
		if ev == assignment.EventTimeout {
			if a.Status != domain.AssignmentPendingAcceptance || a.OfferExpiresAt.After(now) {
				return nil
			}
		}

		next, err := assignment.Transition(*a, ev, now)
		if err != nil {
			return err
		}
		if ev == assignment.EventReject {
			next.Reason = reason
		}
		if err := tx.UpdateAssignment(ctx, &next); err != nil {
			return err
		}

		if o.Status == domain.OrderAssigned && o.DriverID == next.DriverID {
			o.Status = domain.OrderPendingAssignment
			o.DriverID = ""
			o.ExcludedDriverID = next.DriverID
			o.EstimatedDeliveryAt = time.Time{}
			o.NextAttemptAt = now.Add(s.cfg.ReassignDelay)
			o.UpdatedAt = now
			if err := tx.UpdateOrder(ctx, o); err != nil {
				return err
			}
		}
		closed = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return closed, nil
}

// scheduleRetry re-runs AutoAssign for orderID after the reassign delay.
func (s *Service) scheduleRetry(orderID string) {
	s.scheduler.After(s.cfg.ReassignDelay, func(ctx context.Context) {
		s.retryOrder(ctx, orderID)
	})
}

func (s *Service) retryOrder(ctx context.Context, orderID string) {
	if _, err := s.AutoAssign(ctx, orderID); err != nil && !errors.Is(err, apperr.ErrNoCandidate) {
		s.logger.Warn("auto assign retry failed", logx.String("order_id", orderID), logx.Err(err))
	}
}

// RetryDue re-dispatches pending orders whose next attempt is due. Escalated orders are skipped.
// It returns how many orders were tried.
func (s *Service) RetryDue(ctx context.Context) (int, error) {
	opCtx, cancel := s.withTimeout(ctx)
	ids, err := s.store.OrdersDueForRetry(opCtx, s.now(), s.cfg.SweepBatch)
	cancel()
	if err != nil {
		return 0, fmt.Errorf("list due orders: %w", err)
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		s.retryOrder(ctx, id)
	}
	return len(ids), nil
}

// ExpireOffers times out every pending offer past its deadline and returns how many were checked.
func (s *Service) ExpireOffers(ctx context.Context) (int, error) {
	opCtx, cancel := s.withTimeout(ctx)
	ids, err := s.store.ExpiredOffers(opCtx, s.now(), s.cfg.SweepBatch)
	cancel()
	if err != nil {
		return 0, fmt.Errorf("list expired offers: %w", err)
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		if err := s.ExpireOffer(ctx, id); err != nil {
			s.logger.Warn("offer expiry failed", logx.String("assignment_id", id), logx.Err(err))
		}
	}
	return len(ids), nil
}
