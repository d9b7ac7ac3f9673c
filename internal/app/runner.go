package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"go.uber.org/dig"

	"service-dispatch/internal/config"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/service/dispatch"
)

const (
	shutdownTimeout    = 15 * time.Second
	notifyDrainTimeout = 5 * time.Second
)

// Runner runs the HTTP server and the dispatch sweeper
type Runner struct {
	runFn     func(*dig.Container) error
	logFatalf func(string, ...interface{})
}

// NewRunner returns a new Runner
func NewRunner() *Runner {
	return &Runner{runFn: run, logFatalf: log.Fatalf}
}

// MustRun starts the service using the provided DI container and blocks until it stops
func (r *Runner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil {
		return
	}
	logger := containerLogger(container)
	switch {
	case errors.Is(err, context.Canceled):
		logger.Info("shutdown requested, exiting")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("startup aborted: startup timeout exceeded")
	default:
		r.logFatalf("run error: %v", err)
	}
}

func containerLogger(container *dig.Container) logx.Logger {
	logger := logx.Nop()
	if container == nil {
		return logger
	}
	_ = container.Invoke(func(l logx.Logger) { logger = l })
	return logger
}

type runIn struct {
	dig.In

	Ctx      context.Context
	Cfg      *config.Config
	Logger   logx.Logger
	Server   *http.Server
	Debug    *debugServer `optional:"true"`
	Dispatch *dispatch.Service
	Closers  *Closers
}

func run(container *dig.Container) error {
	return container.Invoke(appRun)
}

func appRun(in runIn) error {
	if err := in.Ctx.Err(); err != nil {
		in.Closers.CloseAll(in.Logger)
		return err
	}

	serveErr := startServer(in.Server, in.Logger)
	if in.Debug != nil && in.Debug.srv != nil {
		startDebugServer(in.Debug.srv, in.Logger)
	}
	sweepDone := startSweepLoop(in.Ctx, in.Dispatch, in.Cfg.Dispatch.SweepInterval, in.Logger)

	var err error
	select {
	case <-in.Ctx.Done():
		in.Logger.Info("shutting down service-dispatch")
	case err = <-serveErr:
		in.Logger.Error("listen error", logx.Err(err))
	}

	gracefulShutdown(in.Server, in.Logger, shutdownTimeout)
	if in.Debug != nil && in.Debug.srv != nil {
		gracefulShutdown(in.Debug.srv, in.Logger, time.Second)
	}
	<-sweepDone
	in.Closers.CloseAll(in.Logger)
	_ = in.Logger.Sync()
	return err
}

func startServer(server *http.Server, logger logx.Logger) <-chan error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("service-dispatch listening", logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	return errc
}

func startDebugServer(server *http.Server, logger logx.Logger) {
	go func() {
		logger.Info("pprof listening", logx.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("pprof listen error", logx.Err(err))
		}
	}()
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error("graceful shutdown error", logx.Err(err))
		if err := srv.Close(); err != nil {
			logger.Error("server close error", logx.Err(err))
		}
	}
}
