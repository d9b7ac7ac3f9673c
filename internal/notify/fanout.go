package notify

import (
	"context"
	"errors"
	"fmt"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/retry"
)

// Fanout sends every notification to all senders and joins their errors.
type Fanout struct {
	senders []Sender
}

// NewFanout drops nil senders.
func NewFanout(senders ...Sender) *Fanout {
	out := make([]Sender, 0, len(senders))
	for _, s := range senders {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Fanout{senders: out}
}

// Len returns the number of senders.
func (f *Fanout) Len() int { return len(f.senders) }

// Notify calls each sender even when earlier ones fail.
func (f *Fanout) Notify(ctx context.Context, n domain.Notification) error {
	var errs []error
	for _, s := range f.senders {
		if err := s.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Retrying retries a sender with backoff.
type Retrying struct {
	name string
	next Sender
	r    *retry.Retrier
}

// NewRetrying wraps next. name labels retry logs.
func NewRetrying(name string, next Sender, r *retry.Retrier) *Retrying {
	return &Retrying{name: name, next: next, r: r}
}

// Notify delivers n, retrying transient failures.
func (s *Retrying) Notify(ctx context.Context, n domain.Notification) error {
	err := s.r.Do(ctx, "notify."+s.name, func(ctx context.Context) error {
		return s.next.Notify(ctx, n)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	return nil
}

// LogSender only logs notifications. Used when no transport is configured.
type LogSender struct {
	logger logx.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger logx.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Notify logs n at info level.
func (s *LogSender) Notify(_ context.Context, n domain.Notification) error {
	s.logger.Info("notification",
		logx.String("kind", string(n.Kind)),
		logx.String("routing_key", RoutingKey(n)),
		logx.String("order_id", n.OrderID),
		logx.String("assignment_id", n.AssignmentID),
	)
	return nil
}
