package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/dig"

	"service-dispatch/internal/logx"
	"service-dispatch/internal/transport/kafka"
)

// WorkerRunner runs the order-intake consumer
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun consumes order events until the container context ends
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

type ordersConsumer interface {
	Run(ctx context.Context) error
}

func workerRun(ctx context.Context, logger logx.Logger, consumer *kafka.Consumer, closers *Closers) error {
	if consumer == nil {
		closers.CloseAll(logger)
		return fmt.Errorf("kafka consumer is nil: set KAFKA_BROKERS and KAFKA_ORDERS_TOPIC")
	}
	return consume(ctx, logger, consumer, closers)
}

func consume(ctx context.Context, logger logx.Logger, c ordersConsumer, closers *Closers) error {
	defer closers.CloseAll(logger)

	logger.Info("service-dispatch-worker started")
	return c.Run(ctx)
}
