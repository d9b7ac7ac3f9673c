// Package dispatch coordinates the lifecycle of delivery orders: matching them to nearby
// drivers, tracking offers and progress, and computing payouts on delivery.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/metrics"
	"service-dispatch/internal/service/payout"
	"service-dispatch/internal/service/route"
)

// Config tunes dispatch timing and limits.
type Config struct {
	SearchRadiusKm   float64
	PollInterval     time.Duration // no-candidate re-poll interval
	ReassignDelay    time.Duration // delay before re-dispatch after a rejection or timeout
	AcceptTimeout    time.Duration
	MaxAttempts      int
	OperationTimeout time.Duration
	SweepBatch       int

	NotifyTimeout     time.Duration // bound on one background notification, retries included
	NotifyConcurrency int           // notifications in flight; extra ones are dropped
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		SearchRadiusKm:   5,
		PollInterval:     30 * time.Second,
		ReassignDelay:    5 * time.Second,
		AcceptTimeout:    30 * time.Second,
		MaxAttempts:      10,
		OperationTimeout: 3 * time.Second,
		SweepBatch:       100,

		NotifyTimeout:     10 * time.Second,
		NotifyConcurrency: 64,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.SearchRadiusKm <= 0 {
		c.SearchRadiusKm = def.SearchRadiusKm
	}
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.ReassignDelay <= 0 {
		c.ReassignDelay = def.ReassignDelay
	}
	if c.AcceptTimeout <= 0 {
		c.AcceptTimeout = def.AcceptTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = def.OperationTimeout
	}
	if c.SweepBatch <= 0 {
		c.SweepBatch = def.SweepBatch
	}
	if c.NotifyTimeout <= 0 {
		c.NotifyTimeout = def.NotifyTimeout
	}
	if c.NotifyConcurrency <= 0 {
		c.NotifyConcurrency = def.NotifyConcurrency
	}
	return c
}

// Deps are the collaborators of the coordinator. Store and Locator are required.
type Deps struct {
	Store     store
	Locator   driverLocator
	Routes    *route.Builder
	Payouts   *payout.Calculator
	Notifier  Notifier
	Publisher PayoutPublisher
	Scheduler Scheduler
	Metrics   *metrics.Dispatch
	Logger    logx.Logger
}

// Service is the dispatch coordinator.
type Service struct {
	store     store
	locator   driverLocator
	routes    *route.Builder
	payouts   *payout.Calculator
	notifier  Notifier
	publisher PayoutPublisher
	scheduler Scheduler
	metrics   *metrics.Dispatch
	logger    logx.Logger
	cfg       Config

	now   func() time.Time
	newID func() string

	notifySlots chan struct{}
	notifying   sync.WaitGroup
	spawn       func(fn func())
}

// NewService wires a coordinator. Optional dependencies fall back to no-op implementations.
func NewService(d Deps, cfg Config) *Service {
	s := &Service{
		store:     d.Store,
		locator:   d.Locator,
		routes:    d.Routes,
		payouts:   d.Payouts,
		notifier:  d.Notifier,
		publisher: d.Publisher,
		scheduler: d.Scheduler,
		metrics:   d.Metrics,
		logger:    d.Logger,
		cfg:       cfg.withDefaults(),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.NewString() },
		spawn:     func(fn func()) { go fn() },
	}
	s.notifySlots = make(chan struct{}, s.cfg.NotifyConcurrency)
	if s.routes == nil {
		s.routes = route.NewBuilder(route.DefaultAverageSpeedKmh)
	}
	if s.payouts == nil {
		s.payouts = payout.NewCalculator(payout.DefaultCurrency)
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.publisher == nil {
		s.publisher = nopPublisher{}
	}
	if s.scheduler == nil {
		s.scheduler = nopScheduler{}
	}
	if s.metrics == nil {
		s.metrics = metrics.NewDispatch()
	}
	if s.logger == nil {
		s.logger = logx.Nop()
	}
	return s
}

// Config returns the effective configuration.
func (s *Service) Config() Config { return s.cfg }

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.OperationTimeout)
}

// notify hands n to the notifier in the background and only logs failures.
// The send outlives ctx's cancellation but not NotifyTimeout. When every slot is busy n is dropped.
func (s *Service) notify(ctx context.Context, n domain.Notification) {
	n.CreatedAt = s.now()
	select {
	case s.notifySlots <- struct{}{}:
	default:
		s.metrics.NotifyDropped.Inc()
		s.logger.Warn("notification dropped",
			logx.String("kind", string(n.Kind)),
			logx.String("driver_id", n.DriverID),
			logx.String("order_id", n.OrderID),
		)
		return
	}

	sendCtx := context.WithoutCancel(ctx)
	s.notifying.Add(1)
	s.spawn(func() {
		defer s.notifying.Done()
		defer func() { <-s.notifySlots }()

		ctx, cancel := context.WithTimeout(sendCtx, s.cfg.NotifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.logger.Warn("notification failed",
				logx.String("kind", string(n.Kind)),
				logx.String("driver_id", n.DriverID),
				logx.String("order_id", n.OrderID),
				logx.Err(err),
			)
		}
	})
}

// WaitNotifications blocks until background notifications finish or ctx is done.
func (s *Service) WaitNotifications(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.notifying.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, domain.Notification) error { return nil }

type nopPublisher struct{}

func (nopPublisher) PublishPayout(context.Context, domain.Payout) error { return nil }

type nopScheduler struct{}

func (nopScheduler) After(time.Duration, func(context.Context)) {}
