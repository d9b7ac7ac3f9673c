package app

import (
	"context"
	"time"

	"service-dispatch/internal/logx"
)

type sweeper interface {
	ExpireOffers(ctx context.Context) (int, error)
	RetryDue(ctx context.Context) (int, error)
}

// startSweepLoop periodically expires unanswered offers and re-dispatches due orders.
// It catches up on work whose in-process timers were lost, e.g. after a restart.
// The returned channel is closed once the loop exits.
func startSweepLoop(ctx context.Context, s sweeper, interval time.Duration, logger logx.Logger) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				sweepOnce(ctx, s, logger)
			}
		}
	}()
	return done
}

func sweepOnce(ctx context.Context, s sweeper, logger logx.Logger) {
	if n, err := s.ExpireOffers(ctx); err != nil {
		logger.Error("expire offers failed", logx.Err(err))
	} else if n > 0 {
		logger.Info("offers expired", logx.Int("count", n))
	}
	if n, err := s.RetryDue(ctx); err != nil {
		logger.Error("retry due orders failed", logx.Err(err))
	} else if n > 0 {
		logger.Info("orders re-dispatched", logx.Int("count", n))
	}
}
