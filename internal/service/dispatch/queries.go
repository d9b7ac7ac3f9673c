package dispatch

import (
	"context"
	"fmt"
	"strings"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// GetOrder returns an order by id.
func (s *Service) GetOrder(ctx context.Context, orderID string) (*domain.DeliveryOrder, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("order %q: %w", orderID, apperr.ErrNotFound)
	}
	return o, nil
}

// GetOrderByTracking returns an order by its customer-facing tracking id.
func (s *Service) GetOrderByTracking(ctx context.Context, trackingID string) (*domain.DeliveryOrder, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.store.GetOrderByTracking(ctx, strings.ToUpper(strings.TrimSpace(trackingID)))
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("tracking id %q: %w", trackingID, apperr.ErrNotFound)
	}
	return o, nil
}

// ListOrders returns orders matching f, newest first.
func (s *Service) ListOrders(ctx context.Context, f domain.OrderFilter) ([]domain.DeliveryOrder, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("unknown order status %q: %w", f.Status, apperr.ErrInvalid)
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.store.ListOrders(ctx, f)
}

// GetAssignment returns an assignment by id.
func (s *Service) GetAssignment(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	a, err := s.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("assignment %q: %w", assignmentID, apperr.ErrNotFound)
	}
	return a, nil
}

// ListAssignments returns the offer history of an order, oldest first.
func (s *Service) ListAssignments(ctx context.Context, orderID string) ([]domain.Assignment, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("order %q: %w", orderID, apperr.ErrNotFound)
	}
	return s.store.ListAssignmentsByOrder(ctx, orderID)
}

// GetRoute returns the route materialized for an accepted assignment.
func (s *Service) GetRoute(ctx context.Context, assignmentID string) (*domain.DeliveryRoute, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	r, err := s.store.GetRouteByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("route for assignment %q: %w", assignmentID, apperr.ErrNotFound)
	}
	return r, nil
}

// GetPayout returns the payout of a delivered order.
func (s *Service) GetPayout(ctx context.Context, orderID string) (*domain.Payout, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	p, err := s.store.GetPayoutByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("payout for order %q: %w", orderID, apperr.ErrNotFound)
	}
	return p, nil
}

// Track returns the customer-facing progress of an order.
func (s *Service) Track(ctx context.Context, trackingID string) (*domain.TrackingInfo, error) {
	o, err := s.GetOrderByTracking(ctx, trackingID)
	if err != nil {
		return nil, err
	}

	info := &domain.TrackingInfo{
		TrackingID:          o.TrackingID,
		OrderID:             o.ID,
		Status:              o.Status,
		DriverID:            o.DriverID,
		EstimatedDeliveryAt: o.EstimatedDeliveryAt,
		TotalStops:          2,
	}
	switch o.Status {
	case domain.OrderDelivered:
		info.CurrentStop = 2
	case domain.OrderPickedUp, domain.OrderInTransit:
		info.CurrentStop = 1
	}
	info.ProgressPercent = info.CurrentStop * 100 / info.TotalStops

	if o.DriverID != "" && (o.Status == domain.OrderPickedUp || o.Status == domain.OrderInTransit) {
		ctx, cancel := s.withTimeout(ctx)
		d, err := s.store.GetDriver(ctx, o.DriverID)
		cancel()
		if err != nil {
			return nil, err
		}
		if d != nil && d.Location != nil {
			p := d.Location.Point
			info.DriverLocation = &p
		}
	}
	return info, nil
}
