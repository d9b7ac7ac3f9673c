package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/retry"
)

// DefaultCancelReason is recorded when the upstream event carries none.
const DefaultCancelReason = "cancelled by ordering platform"

// Processor turns upstream order events into dispatch calls
type Processor struct {
	dispatch DispatchPort
	factory  *actionFactory
}

// NewProcessor creates a new orders.Processor
func NewProcessor(d DispatchPort) *Processor {
	p := &Processor{dispatch: d}
	p.factory = newActionFactory(p.onCreated, p.onCanceled)
	return p
}

// Handle processes a single orders.Event. Unknown statuses are ignored.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	if p.factory == nil {
		return nil
	}
	fn, ok := p.factory.get(e.Status)
	if !ok {
		return nil
	}
	return fn(ctx, e)
}

func (p *Processor) findByRef(ctx context.Context, ref string) (*domain.DeliveryOrder, error) {
	found, err := p.dispatch.ListOrders(ctx, domain.OrderFilter{OrderRef: ref, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// onCreated is idempotent on OrderRef: redelivered events do not create twins.
func (p *Processor) onCreated(ctx context.Context, e Event) error {
	existing, err := p.findByRef(ctx, e.OrderID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	_, err = p.dispatch.CreateOrder(ctx, e.Spec())
	if errors.Is(err, apperr.ErrInvalid) {
		return retry.Permanent(fmt.Errorf("order %s: %w", e.OrderID, err))
	}
	return err
}

func (p *Processor) onCanceled(ctx context.Context, e Event) error {
	existing, err := p.findByRef(ctx, e.OrderID)
	if err != nil {
		return err
	}
	if existing == nil || existing.Status.Terminal() {
		return nil
	}

	reason := strings.TrimSpace(e.Reason)
	if reason == "" {
		reason = DefaultCancelReason
	}
	_, err = p.dispatch.Cancel(ctx, existing.ID, reason)
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalidState) {
		return nil
	}
	return err
}
