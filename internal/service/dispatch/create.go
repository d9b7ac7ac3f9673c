package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/ports/dispatchtx"
)

func validateSpec(spec domain.OrderSpec) error {
	if !spec.Pickup.Coordinates.Valid() {
		return fmt.Errorf("pickup coordinates out of range: %w", apperr.ErrInvalid)
	}
	if !spec.Dropoff.Coordinates.Valid() {
		return fmt.Errorf("dropoff coordinates out of range: %w", apperr.ErrInvalid)
	}
	if spec.FeeCents < 0 {
		return fmt.Errorf("negative fee: %w", apperr.ErrInvalid)
	}
	if spec.TipCents < 0 {
		return fmt.Errorf("negative tip: %w", apperr.ErrInvalid)
	}
	if !spec.VehicleType.Valid() {
		return fmt.Errorf("unknown vehicle type %q: %w", spec.VehicleType, apperr.ErrInvalid)
	}
	return nil
}

// newTrackingID returns "NL" + last 8 digits of unix millis + 4 upper-case alphanumerics.
func newTrackingID(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:4]
	return "NL" + ms + suffix
}

// CreateOrder stores a new pending order and immediately tries to assign it.
// A missing driver is not an error here; the order stays pending and is re-polled.
func (s *Service) CreateOrder(ctx context.Context, spec domain.OrderSpec) (*domain.DeliveryOrder, error) {
	if err := validateSpec(spec); err != nil {
		return nil, err
	}

	now := s.now()
	o := &domain.DeliveryOrder{
		ID:           s.newID(),
		OrderRef:     strings.TrimSpace(spec.OrderRef),
		RestaurantID: spec.RestaurantID,
		CustomerID:   spec.CustomerID,
		Pickup:       spec.Pickup,
		Dropoff:      spec.Dropoff,
		Status:       domain.OrderPendingAssignment,
		FeeCents:     spec.FeeCents,
		TipCents:     spec.TipCents,
		VehicleType:  spec.VehicleType,
		Instructions: spec.Instructions,
		TrackingID:   newTrackingID(now),
		// backstop for the sweeper in case the first attempt never completes
		NextAttemptAt: now.Add(s.cfg.PollInterval),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	opCtx, cancel := s.withTimeout(ctx)
	err := s.store.WithTx(opCtx, func(tx dispatchtx.Repository) error {
		return tx.InsertOrder(opCtx, o)
	})
	cancel()
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("order created",
		logx.String("event", "order_created"),
		logx.String("order_id", o.ID),
		logx.String("order_ref", o.OrderRef),
		logx.String("tracking_id", o.TrackingID),
	)

	if _, err := s.AutoAssign(ctx, o.ID); err != nil && !errors.Is(err, apperr.ErrNoCandidate) {
		s.logger.Warn("initial auto assign failed",
			logx.String("order_id", o.ID),
			logx.Err(err),
		)
	}

	return s.GetOrder(ctx, o.ID)
}

// AutoAssign offers a pending order to the best-scoring nearby driver.
// It returns (nil, nil) when the order is no longer pending and apperr.ErrNoCandidate
// when nobody could take it; the attempt is then recorded for a later re-poll.
func (s *Service) AutoAssign(ctx context.Context, orderID string) (*domain.Assignment, error) {
	opCtx, cancel := s.withTimeout(ctx)
	o, err := s.store.GetOrder(opCtx, orderID)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	if o == nil {
		return nil, fmt.Errorf("order %q: %w", orderID, apperr.ErrNotFound)
	}
	if o.Status != domain.OrderPendingAssignment {
		return nil, nil
	}

	opCtx, cancel = s.withTimeout(ctx)
	cands, err := s.locator.FindNearby(opCtx, o.Pickup.Coordinates, s.cfg.SearchRadiusKm)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("find nearby drivers: %w", err)
	}

	for _, c := range rank(cands, o.ExcludedDriverID) {
		a, err := s.Assign(ctx, orderID, c.DriverID)
		switch {
		case err == nil:
			return a, nil
		case errors.Is(err, apperr.ErrConflict):
			// driver got another offer or went offline since the search
			s.logger.Debug("candidate unavailable",
				logx.String("order_id", orderID),
				logx.String("driver_id", c.DriverID),
				logx.Err(err),
			)
			continue
		case errors.Is(err, apperr.ErrInvalidState):
			return nil, nil
		default:
			return nil, err
		}
	}

	return nil, s.recordNoCandidate(ctx, o, len(cands))
}

// recordNoCandidate bumps the attempt counter and schedules the next poll.
// seen is the order as loaded by the failed attempt; if another attempt already
// recorded an outcome in between, nothing is counted twice.
func (s *Service) recordNoCandidate(ctx context.Context, seen *domain.DeliveryOrder, found int) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	var (
		updated   domain.DeliveryOrder
		counted   bool
		escalated bool
	)
	err := s.store.WithTx(ctx, func(tx dispatchtx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, seen.ID)
		if err != nil {
			return err
		}
		if o == nil || o.Status != domain.OrderPendingAssignment {
			return nil
		}
		if !o.NextAttemptAt.Equal(seen.NextAttemptAt) || o.AssignAttempts != seen.AssignAttempts {
			return nil
		}

		o.AssignAttempts++
		o.NextAttemptAt = now.Add(s.cfg.PollInterval)
		o.ExcludedDriverID = ""
		if o.AssignAttempts >= s.cfg.MaxAttempts && !o.Escalated {
			o.Escalated = true
			escalated = true
		}
		o.UpdatedAt = now
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		updated = *o
		counted = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("record no candidate: %w", err)
	}
	if !counted {
		return fmt.Errorf("order %q: %w", seen.ID, apperr.ErrNoCandidate)
	}

	s.metrics.NoCandidate.Inc()
	s.logger.Warn("no driver available",
		logx.String("event", "no_candidate"),
		logx.String("order_id", updated.ID),
		logx.Int("attempt", updated.AssignAttempts),
		logx.Int("nearby", found),
		logx.Time("next_attempt_at", updated.NextAttemptAt),
	)

	if escalated {
		s.metrics.Escalations.Inc()
		s.logger.Error("dispatch escalated to operators",
			logx.String("event", "dispatch_escalated"),
			logx.String("order_id", updated.ID),
			logx.String("tracking_id", updated.TrackingID),
			logx.Int("attempts", updated.AssignAttempts),
		)
		s.notify(ctx, domain.Notification{
			Kind:       domain.NotifyEscalation,
			OrderID:    updated.ID,
			TrackingID: updated.TrackingID,
			Pickup:     updated.Pickup,
			Dropoff:    updated.Dropoff,
			Attempts:   updated.AssignAttempts,
			Reason:     "no driver available",
		})
	}

	return fmt.Errorf("order %q: %w", seen.ID, apperr.ErrNoCandidate)
}

// Assign offers orderID to driverID atomically. The order must be pending and the
// driver online without another active assignment; a taken driver yields apperr.ErrConflict.
func (s *Service) Assign(ctx context.Context, orderID, driverID string) (*domain.Assignment, error) {
	orderID, driverID = strings.TrimSpace(orderID), strings.TrimSpace(driverID)
	if orderID == "" || driverID == "" {
		return nil, fmt.Errorf("order id and driver id are required: %w", apperr.ErrInvalid)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	var (
		a     *domain.Assignment
		order domain.DeliveryOrder
	)
	err := s.store.WithTx(ctx, func(tx dispatchtx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("order %q: %w", orderID, apperr.ErrNotFound)
		}
		if o.Status != domain.OrderPendingAssignment {
			return fmt.Errorf("order %q is %s: %w", orderID, o.Status, apperr.ErrInvalidState)
		}
		active, err := tx.ActiveAssignmentForOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if active != nil {
			return fmt.Errorf("order %q already has assignment %q: %w", orderID, active.ID, apperr.ErrInvalidState)
		}

		d, err := tx.GetDriverForUpdate(ctx, driverID)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("driver %q: %w", driverID, apperr.ErrNotFound)
		}
		if d.Status != domain.DriverOnline {
			return fmt.Errorf("driver %q is %s: %w", driverID, d.Status, apperr.ErrConflict)
		}
		busy, err := tx.ActiveAssignmentForDriver(ctx, driverID)
		if err != nil {
			return err
		}
		if busy != nil {
			return fmt.Errorf("driver %q holds assignment %q: %w", driverID, busy.ID, apperr.ErrConflict)
		}

		est := s.routes.Estimate(o.Pickup, o.Dropoff, now)
		a = &domain.Assignment{
			ID:                  s.newID(),
			OrderID:             orderID,
			DriverID:            driverID,
			Status:              domain.AssignmentPendingAcceptance,
			AssignedAt:          now,
			OfferExpiresAt:      now.Add(s.cfg.AcceptTimeout),
			EstimatedPickupAt:   est.PickupETA,
			EstimatedDeliveryAt: est.DropoffETA,
			Waypoints:           est.Waypoints,
		}
		if err := tx.InsertAssignment(ctx, a); err != nil {
			return err
		}

		o.Status = domain.OrderAssigned
		o.DriverID = driverID
		o.EstimatedDeliveryAt = est.DropoffETA
		o.AssignAttempts = 0
		o.NextAttemptAt = time.Time{}
		o.ExcludedDriverID = ""
		o.Escalated = false
		o.UpdatedAt = now
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}
		order = *o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Offers.Inc()
	s.logger.Info("driver offered",
		logx.String("event", "driver_offered"),
		logx.String("order_id", orderID),
		logx.String("driver_id", driverID),
		logx.String("assignment_id", a.ID),
		logx.Time("expires_at", a.OfferExpiresAt),
	)

	s.notify(ctx, domain.Notification{
		Kind:         domain.NotifyOffer,
		DriverID:     driverID,
		OrderID:      orderID,
		AssignmentID: a.ID,
		TrackingID:   order.TrackingID,
		Pickup:       order.Pickup,
		Dropoff:      order.Dropoff,
		PickupETA:    a.EstimatedPickupAt,
		DeliveryETA:  a.EstimatedDeliveryAt,
		ExpiresAt:    a.OfferExpiresAt,
	})

	assignmentID := a.ID
	s.scheduler.After(s.cfg.AcceptTimeout, func(ctx context.Context) {
		if err := s.ExpireOffer(ctx, assignmentID); err != nil {
			s.logger.Warn("offer expiry failed", logx.String("assignment_id", assignmentID), logx.Err(err))
		}
	})

	return a, nil
}
