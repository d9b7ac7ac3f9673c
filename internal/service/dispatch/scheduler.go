package dispatch

import (
	"context"
	"sync"
	"time"

	"service-dispatch/internal/logx"
)

// TimerScheduler runs delayed callbacks on runtime timers. Pending callbacks are lost on
// restart; the sweeper recovers them from persisted deadlines.
type TimerScheduler struct {
	mu      sync.Mutex
	timers  map[*time.Timer]struct{}
	stopped bool
	wg      sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
	logger logx.Logger
}

// NewTimerScheduler creates a running scheduler.
func NewTimerScheduler(logger logx.Logger) *TimerScheduler {
	if logger == nil {
		logger = logx.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &TimerScheduler{
		timers: make(map[*time.Timer]struct{}),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// After schedules fn. Calls after Stop are ignored.
func (s *TimerScheduler) After(d time.Duration, fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	s.wg.Add(1)
	var tm *time.Timer
	tm = time.AfterFunc(d, func() {
		defer s.wg.Done()

		s.mu.Lock()
		delete(s.timers, tm)
		stopped := s.stopped
		s.mu.Unlock()
		if stopped {
			return
		}

		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("scheduled task panicked", logx.Any("panic", r))
			}
		}()
		fn(s.ctx)
	})
	s.timers[tm] = struct{}{}
}

// Pending returns the number of timers not yet fired.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels pending timers and waits for running callbacks.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	for tm := range s.timers {
		if tm.Stop() {
			s.wg.Done()
		}
		delete(s.timers, tm)
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
