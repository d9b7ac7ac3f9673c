package dispatch

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/metrics"
	"service-dispatch/internal/repository/memory"
	"service-dispatch/internal/service/locator"
	testlog "service-dispatch/internal/testutil"
)

// 09:00 UTC, outside peak hours
var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type task struct {
	at time.Time
	fn func(context.Context)
}

// manualScheduler runs tasks only when the test asks, against the fake clock.
type manualScheduler struct {
	mu    sync.Mutex
	clock *fakeClock
	tasks []task
}

func (m *manualScheduler) After(d time.Duration, fn func(context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task{at: m.clock.Now().Add(d), fn: fn})
}

func (m *manualScheduler) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// RunDue runs every task due at the current fake time, including ones scheduled while running.
func (m *manualScheduler) RunDue(ctx context.Context) int {
	ran := 0
	for {
		m.mu.Lock()
		sort.SliceStable(m.tasks, func(i, j int) bool { return m.tasks[i].at.Before(m.tasks[j].at) })
		if len(m.tasks) == 0 || m.tasks[0].at.After(m.clock.Now()) {
			m.mu.Unlock()
			return ran
		}
		next := m.tasks[0]
		m.tasks = m.tasks[1:]
		m.mu.Unlock()

		next.fn(ctx)
		ran++
	}
}

type notifyRecorder struct {
	mu    sync.Mutex
	notes []domain.Notification
	err   error
}

func (r *notifyRecorder) Notify(_ context.Context, n domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
	return r.err
}

func (r *notifyRecorder) Kinds() []domain.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.NotificationKind, 0, len(r.notes))
	for _, n := range r.notes {
		out = append(out, n.Kind)
	}
	return out
}

type stubPublisher struct {
	mu      sync.Mutex
	payouts []domain.Payout
}

func (p *stubPublisher) PublishPayout(_ context.Context, po domain.Payout) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payouts = append(p.payouts, po)
	return nil
}

type fixture struct {
	svc     *Service
	store   *memory.Store
	locator *locator.Service
	clock   *fakeClock
	sched   *manualScheduler
	notes   *notifyRecorder
	pub     *stubPublisher
	metrics *metrics.Dispatch
	logs    *testlog.Recorder
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	clock := &fakeClock{now: t0}
	store := memory.New()
	logs := testlog.New()
	f := &fixture{
		store:   store,
		locator: locator.NewService(store, nil, logs.Logger(), time.Second),
		clock:   clock,
		sched:   &manualScheduler{clock: clock},
		notes:   &notifyRecorder{},
		pub:     &stubPublisher{},
		metrics: metrics.NewDispatch(),
		logs:    logs,
	}
	f.svc = NewService(Deps{
		Store:     store,
		Locator:   f.locator,
		Notifier:  f.notes,
		Publisher: f.pub,
		Scheduler: f.sched,
		Metrics:   f.metrics,
		Logger:    logs.Logger(),
	}, cfg)
	f.svc.now = clock.Now
	f.svc.spawn = inline
	return f
}

// inline runs background work on the caller's goroutine so tests can assert on its effects.
func inline(fn func()) { fn() }

// driver puts an online driver with rating at p.
func (f *fixture) driver(t *testing.T, id string, rating float64, p domain.Point) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.locator.UpsertProfile(ctx, id, id, rating))
	_, err := f.locator.UpdateLocation(ctx, id, domain.LocationSample{Point: p, RecordedAt: f.clock.Now()})
	require.NoError(t, err)
	require.NoError(t, f.locator.SetStatus(ctx, id, domain.DriverOnline))
}

func (f *fixture) driverStatus(t *testing.T, id string) domain.DriverStatus {
	t.Helper()
	d, err := f.store.GetDriver(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, d)
	return d.Status
}

var (
	pickupPoint  = domain.Point{Lat: 30.0, Lng: 31.2}
	dropoffPoint = domain.Point{Lat: 30.05, Lng: 31.25}
)

func orderSpec() domain.OrderSpec {
	return domain.OrderSpec{
		OrderRef:   "ord-1",
		CustomerID: "c1",
		Pickup:     domain.Address{Street: "1 Nile St", City: "Cairo", Coordinates: pickupPoint},
		Dropoff:    domain.Address{Street: "9 Tahrir Sq", City: "Cairo", Coordinates: dropoffPoint},
		FeeCents:   500,
		TipCents:   200,
	}
}

// kmNorth returns a point d km north of p.
func kmNorth(p domain.Point, d float64) domain.Point {
	return domain.Point{Lat: p.Lat + d/111.195, Lng: p.Lng}
}

// activeFor returns the non-terminal assignments of an order.
func (f *fixture) activeFor(t *testing.T, orderID string) []domain.Assignment {
	t.Helper()
	all, err := f.store.ListAssignmentsByOrder(context.Background(), orderID)
	require.NoError(t, err)
	out := make([]domain.Assignment, 0)
	for _, a := range all {
		if a.Status.Active() {
			out = append(out, a)
		}
	}
	return out
}
