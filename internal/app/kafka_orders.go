package app

import (
	"context"
	"time"

	"service-dispatch/internal/service/orders"
	"service-dispatch/internal/transport/kafka"
)

type orderHandler interface {
	Handle(ctx context.Context, e orders.Event) error
}

// makeOrdersKafka bounds every event with its own deadline so one slow order cannot stall the partition.
func makeOrdersKafka(p orderHandler, timeout time.Duration) kafka.HandleFunc {
	return func(ctx context.Context, event orders.Event) error {
		if timeout <= 0 {
			return p.Handle(ctx, event)
		}
		hCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return p.Handle(hCtx, event)
	}
}
