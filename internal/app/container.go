package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"service-dispatch/internal/config"
	"service-dispatch/internal/http/handlers"
	"service-dispatch/internal/http/middleware/ratelimit"
	"service-dispatch/internal/http/pprofserver"
	"service-dispatch/internal/http/router"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/metrics"
	"service-dispatch/internal/notify"
	"service-dispatch/internal/repository"
	"service-dispatch/internal/repository/memory"
	"service-dispatch/internal/retry"
	"service-dispatch/internal/service/dispatch"
	"service-dispatch/internal/service/locator"
	"service-dispatch/internal/service/orders"
	"service-dispatch/internal/service/payout"
	"service-dispatch/internal/service/route"
	"service-dispatch/internal/telemetry/influx"
	"service-dispatch/internal/transport/amqp"
	"service-dispatch/internal/transport/kafka"
	"service-dispatch/internal/transport/mqtt"
	"service-dispatch/internal/transport/ws"
)

type dbConnectFunc func(ctx context.Context, logger logx.Logger, dsn string, retries int, delay time.Duration) (*pgxpool.Pool, error)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect dbConnectFunc
	loadCfg   func() (*config.Config, error)
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		loadCfg:   config.Load,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithConfig replaces config loading, mostly for tests.
func (b *ContainerBuilder) WithConfig(fn func() (*config.Config, error)) *ContainerBuilder {
	if fn != nil {
		b.loadCfg = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds the API container: HTTP server, dispatch coordinator and its sweeper.
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	return b.mustBuild(ctx, registerHTTP)
}

// MustBuildWorker builds the order-intake worker container.
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	return b.mustBuild(ctx, registerWorker)
}

func (b *ContainerBuilder) mustBuild(ctx context.Context, outer func(*dig.Container) error) *dig.Container {
	container, err := b.build(ctx, outer)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context, outer func(*dig.Container) error) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx, b.loadCfg); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerStorage(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := outer(container); err != nil {
		return nil, err
	}
	return container, nil
}

// MustBuildContainer builds and returns the API container
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

// MustBuildWorkerContainer builds and returns the worker container
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context, loadCfg func() (*config.Config, error)) error {
	return provideAll(container,
		func() context.Context { return ctx },
		loadCfg,
		NewLogger,
		provideMetrics,
		newClosers,
	)
}

func registerStorage(container *dig.Container, dbConnect dbConnectFunc) error {
	provider := func(ctx context.Context, cfg *config.Config, logger logx.Logger, closers *Closers) (Store, error) {
		if cfg.Storage == config.StorageMemory {
			logger.Warn("using in-memory storage, state is lost on restart")
			return memory.New(), nil
		}
		pool, err := dbConnect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
		if err != nil {
			return nil, err
		}
		closers.Add("postgres", func() error { pool.Close(); return nil })
		if err := repository.EnsureSchema(ctx, pool); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return repository.NewStore(pool), nil
	}
	return provideAll(container, provider)
}

// transports holds the optional outbound collaborators. Nil fields are disabled.
type transports struct {
	Notifier dispatch.Notifier
	Hub      *ws.Hub
	Payouts  *kafka.PayoutProducer
	Sink     *influx.LocationSink
}

type transportsIn struct {
	dig.In

	Cfg     *config.Config
	Logger  logx.Logger
	Closers *Closers
	Retries prometheus.Counter `name:"notify_retries_total"`
}

func newTransports(in transportsIn) (*transports, error) {
	cfg, logger := in.Cfg, in.Logger
	t := &transports{}

	rc := retry.Config{
		MaxAttempts: cfg.Notify.RetryAttempts,
		BaseDelay:   cfg.Notify.RetryBaseDelay,
		MaxDelay:    cfg.Notify.RetryMaxDelay,
	}
	retrier := retry.New(logger, in.Retries, rc)

	var senders []notify.Sender
	if url := cfg.Notify.AMQPURL; url != "" {
		p, err := amqp.Dial(url, cfg.Notify.AMQPExchange, logger)
		if err != nil {
			return nil, err
		}
		in.Closers.Add("amqp", p.Close)
		senders = append(senders, notify.NewRetrying("amqp", p, retrier))
	}
	if broker := cfg.Notify.MQTTBroker; broker != "" {
		p, err := mqtt.Connect(mqtt.Options{
			Broker:      broker,
			ClientID:    cfg.Notify.MQTTClientID,
			Username:    cfg.Notify.MQTTUsername,
			Password:    cfg.Notify.MQTTPassword,
			TopicPrefix: cfg.Notify.MQTTTopicPrefix,
			QoS:         byte(cfg.Notify.MQTTQoS),
			Wait:        5 * time.Second,
		}, logger)
		if err != nil {
			return nil, err
		}
		in.Closers.Add("mqtt", func() error { p.Close(); return nil })
		senders = append(senders, notify.NewRetrying("mqtt", p, retrier))
	}
	if cfg.Notify.WebSocket {
		t.Hub = ws.NewHub(logger)
		in.Closers.Add("websocket", func() error { t.Hub.Close(); return nil })
		senders = append(senders, t.Hub)
	}
	if len(senders) == 0 {
		logger.Warn("no notification transport configured, notifications are only logged")
		senders = append(senders, notify.NewLogSender(logger))
	}
	t.Notifier = notify.NewFanout(senders...)

	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.PayoutsTopic != "" {
		p, err := kafka.NewPayoutProducer(logger, cfg.Kafka.Brokers, cfg.Kafka.PayoutsTopic)
		if err != nil {
			return nil, err
		}
		if p != nil {
			in.Closers.Add("kafka producer", p.Close)
			t.Payouts = p
		}
	}

	if cfg.Influx.URL != "" {
		t.Sink = influx.NewLocationSink(cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket, logger)
		in.Closers.Add("influx", func() error { t.Sink.Close(); return nil })
	}
	return t, nil
}

func newLocator(cfg *config.Config, store Store, t *transports, logger logx.Logger) *locator.Service {
	// typed nil pointers must not leak into the interface
	if t.Sink == nil {
		return locator.NewService(store, nil, logger, cfg.Dispatch.OperationTimeout)
	}
	return locator.NewService(store, t.Sink, logger, cfg.Dispatch.OperationTimeout)
}

func newScheduler(logger logx.Logger, closers *Closers) *dispatch.TimerScheduler {
	s := dispatch.NewTimerScheduler(logger)
	closers.Add("scheduler", func() error { s.Stop(); return nil })
	return s
}

type dispatchIn struct {
	dig.In

	Cfg       *config.Config
	Logger    logx.Logger
	Store     Store
	Locator   *locator.Service
	Transport *transports
	Scheduler *dispatch.TimerScheduler
	Metrics   *metrics.Dispatch
	Closers   *Closers
}

func newDispatch(in dispatchIn) *dispatch.Service {
	d := in.Cfg.Dispatch
	deps := dispatch.Deps{
		Store:     in.Store,
		Locator:   in.Locator,
		Routes:    route.NewBuilder(d.AverageSpeedKmh),
		Payouts:   payout.NewCalculator(payout.DefaultCurrency),
		Notifier:  in.Transport.Notifier,
		Scheduler: in.Scheduler,
		Metrics:   in.Metrics,
		Logger:    in.Logger,
	}
	if in.Transport.Payouts != nil {
		deps.Publisher = in.Transport.Payouts
	}
	svc := dispatch.NewService(deps, dispatch.Config{
		SearchRadiusKm:   d.SearchRadiusKm,
		PollInterval:     d.PollInterval,
		ReassignDelay:    d.ReassignDelay,
		AcceptTimeout:    d.AcceptTimeout,
		MaxAttempts:      d.MaxAttempts,
		OperationTimeout: d.OperationTimeout,
		SweepBatch:       d.SweepBatch,
	})
	// added after the transports, so pending notifications drain before their senders close
	in.Closers.Add("dispatch notifications", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), notifyDrainTimeout)
		defer cancel()
		return svc.WaitNotifications(ctx)
	})
	return svc
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		newTransports,
		newLocator,
		newScheduler,
		newDispatch,
	)
}

type routerIn struct {
	dig.In

	Logger      logx.Logger
	Base        *handlers.Handlers
	Orders      *handlers.OrderHandler
	Assignments *handlers.AssignmentHandler
	Drivers     *handlers.DriverHandler
	Metrics     *metrics.HTTP
	RateLimit   *ratelimit.Middleware
}

func newRouter(in routerIn) http.Handler {
	return router.New(router.Deps{
		Base:          in.Base,
		Orders:        in.Orders,
		Assignments:   in.Assignments,
		Drivers:       in.Drivers,
		Logger:        in.Logger,
		Metrics:       in.Metrics,
		Gatherer:      prometheus.DefaultGatherer,
		LocationLimit: in.RateLimit,
	})
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	err := provideAll(container,
		handlers.New,
		func(svc *dispatch.Service, logger logx.Logger) *handlers.OrderHandler {
			return handlers.NewOrderHandler(svc, logger)
		},
		func(svc *dispatch.Service, logger logx.Logger) *handlers.AssignmentHandler {
			return handlers.NewAssignmentHandler(svc, logger)
		},
		func(svc *locator.Service, t *transports, logger logx.Logger) *handlers.DriverHandler {
			if t.Hub == nil {
				return handlers.NewDriverHandler(svc, nil, logger)
			}
			return handlers.NewDriverHandler(svc, t.Hub, logger)
		},
		newRateLimitClock,
		newLocationLimiter,
		newRateLimitMiddleware,
		newRouter,
		serverProvider,
		func(cfg *config.Config) *debugServer {
			return &debugServer{srv: pprofserver.New(pprofserver.Config{
				Addr: cfg.Pprof.Addr,
				User: cfg.Pprof.User,
				Pass: cfg.Pprof.Pass,
			})}
		},
	)
	if err != nil {
		return fmt.Errorf("http: %w", err)
	}
	return nil
}

// debugServer wraps the optional pprof listener; srv is nil when disabled.
type debugServer struct {
	srv *http.Server
}

type workerIn struct {
	dig.In

	Cfg      *config.Config
	Logger   logx.Logger
	Dispatch *dispatch.Service
	Closers  *Closers
	Retries  prometheus.Counter `name:"notify_retries_total"`
	Messages *prometheus.CounterVec
}

func newOrdersConsumer(in workerIn) (*kafka.Consumer, error) {
	k := in.Cfg.Kafka
	h := makeOrdersKafka(orders.NewProcessor(in.Dispatch), in.Cfg.Dispatch.OperationTimeout)
	c, err := kafka.NewConsumer(in.Logger, k.Brokers, k.GroupID, k.OrdersTopic, h,
		kafka.WithRetrier(retry.New(in.Logger, in.Retries, retry.Config{
			MaxAttempts: 3,
			BaseDelay:   200 * time.Millisecond,
			MaxDelay:    2 * time.Second,
		})),
		kafka.WithMessagesCounter(in.Messages),
	)
	if err != nil {
		return nil, err
	}
	if c != nil {
		in.Closers.Add("kafka consumer", c.Close)
	}
	return c, nil
}

func registerWorker(container *dig.Container) error {
	if err := provideAll(container, newOrdersConsumer); err != nil {
		return fmt.Errorf("worker: %w", err)
	}
	return nil
}
