// Package memory is an in-process dispatch store. Transactions are serialized by one
// mutex and staged in an overlay, so a failed transaction leaves no partial writes.
// It backs unit tests and STORAGE=memory local runs; multi-process deployments use Postgres.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/geo"
	"service-dispatch/internal/ports/dispatchtx"
)

// Store keeps every dispatch record in maps guarded by mu.
type Store struct {
	mu          sync.Mutex
	orders      map[string]domain.DeliveryOrder
	tracking    map[string]string
	assignments map[string]domain.Assignment
	drivers     map[string]domain.Driver
	history     map[string][]domain.LocationSample
	routes      map[string]domain.DeliveryRoute
	payouts     map[string]domain.Payout // by order id
	now         func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		orders:      make(map[string]domain.DeliveryOrder),
		tracking:    make(map[string]string),
		assignments: make(map[string]domain.Assignment),
		drivers:     make(map[string]domain.Driver),
		history:     make(map[string][]domain.LocationSample),
		routes:      make(map[string]domain.DeliveryRoute),
		payouts:     make(map[string]domain.Payout),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithTx runs fn under the store lock and applies its writes only when fn succeeds.
func (s *Store) WithTx(ctx context.Context, fn func(tx dispatchtx.Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := newTx(s)
	if err := fn(t); err != nil {
		return err
	}
	t.commit()
	return nil
}

// GetOrder returns the order or nil.
func (s *Store) GetOrder(_ context.Context, id string) (*domain.DeliveryOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	o = cloneOrder(o)
	return &o, nil
}

// GetOrderByTracking returns the order with the tracking id or nil.
func (s *Store) GetOrderByTracking(ctx context.Context, trackingID string) (*domain.DeliveryOrder, error) {
	s.mu.Lock()
	id, ok := s.tracking[trackingID]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return s.GetOrder(ctx, id)
}

// ListOrders returns orders matching f, newest first.
func (s *Store) ListOrders(_ context.Context, f domain.OrderFilter) ([]domain.DeliveryOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.DeliveryOrder, 0)
	for _, o := range s.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.DriverID != "" && o.DriverID != f.DriverID {
			continue
		}
		if f.CustomerID != "" && o.CustomerID != f.CustomerID {
			continue
		}
		if f.OrderRef != "" && o.OrderRef != f.OrderRef {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// GetAssignment returns the assignment or nil.
func (s *Store) GetAssignment(_ context.Context, id string) (*domain.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	if !ok {
		return nil, nil
	}
	a = cloneAssignment(a)
	return &a, nil
}

// ListAssignmentsByOrder returns every assignment of an order, oldest first.
func (s *Store) ListAssignmentsByOrder(_ context.Context, orderID string) ([]domain.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Assignment, 0)
	for _, a := range s.assignments {
		if a.OrderID == orderID {
			out = append(out, cloneAssignment(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AssignedAt.Equal(out[j].AssignedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].AssignedAt.Before(out[j].AssignedAt)
	})
	return out, nil
}

// GetRouteByAssignment returns the route materialized for an assignment or nil.
func (s *Store) GetRouteByAssignment(_ context.Context, assignmentID string) (*domain.DeliveryRoute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.routes {
		if r.AssignmentID == assignmentID {
			r = cloneRoute(r)
			return &r, nil
		}
	}
	return nil, nil
}

// GetPayoutByOrder returns the payout of an order or nil.
func (s *Store) GetPayoutByOrder(_ context.Context, orderID string) (*domain.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payouts[orderID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// CountPayouts returns the number of payouts stored for an order.
func (s *Store) CountPayouts(orderID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payouts[orderID]; ok {
		return 1
	}
	return 0
}

// OrdersDueForRetry returns ids of unassigned, non-escalated orders whose next attempt is due.
func (s *Store) OrdersDueForRetry(_ context.Context, now time.Time, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := make([]domain.DeliveryOrder, 0)
	for _, o := range s.orders {
		if o.Status != domain.OrderPendingAssignment || o.Escalated || o.NextAttemptAt.IsZero() {
			continue
		}
		if o.NextAttemptAt.After(now) {
			continue
		}
		due = append(due, o)
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextAttemptAt.Before(due[j].NextAttemptAt) })

	ids := make([]string, 0, len(due))
	for _, o := range due {
		if limit > 0 && len(ids) == limit {
			break
		}
		ids = append(ids, o.ID)
	}
	return ids, nil
}

// ExpiredOffers returns ids of pending offers whose expiry has passed.
func (s *Store) ExpiredOffers(_ context.Context, now time.Time, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := make([]domain.Assignment, 0)
	for _, a := range s.assignments {
		if a.Status == domain.AssignmentPendingAcceptance && !a.OfferExpiresAt.IsZero() && !a.OfferExpiresAt.After(now) {
			expired = append(expired, a)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].OfferExpiresAt.Before(expired[j].OfferExpiresAt) })

	ids := make([]string, 0, len(expired))
	for _, a := range expired {
		if limit > 0 && len(ids) == limit {
			break
		}
		ids = append(ids, a.ID)
	}
	return ids, nil
}

// GetDriver returns the driver or nil.
func (s *Store) GetDriver(_ context.Context, id string) (*domain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		return nil, nil
	}
	d = cloneDriver(d)
	return &d, nil
}

// SaveLocation stores sample when it is newer than the current one.
// Unknown drivers are created offline. Reports whether the sample was applied.
func (s *Store) SaveLocation(_ context.Context, driverID string, sample domain.LocationSample) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drivers[driverID]
	if !ok {
		d = domain.Driver{ID: driverID, Status: domain.DriverOffline}
	}
	if d.Location != nil && !sample.RecordedAt.After(d.Location.RecordedAt) {
		return false, nil
	}

	cp := cloneSample(sample)
	d.Location = &cp
	d.UpdatedAt = s.now()
	s.drivers[driverID] = d
	s.history[driverID] = append(s.history[driverID], cloneSample(sample))
	return true, nil
}

// SetDriverStatus overwrites the status, creating the driver when unknown, and returns the previous one.
func (s *Store) SetDriverStatus(_ context.Context, driverID string, status domain.DriverStatus) (domain.DriverStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drivers[driverID]
	prev := d.Status
	if !ok {
		d = domain.Driver{ID: driverID}
		prev = ""
	}
	d.Status = status
	d.UpdatedAt = s.now()
	s.drivers[driverID] = d
	return prev, nil
}

// UpsertDriverProfile sets name and rating, creating an offline driver when unknown.
func (s *Store) UpsertDriverProfile(_ context.Context, driverID, name string, rating float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drivers[driverID]
	if !ok {
		d = domain.Driver{ID: driverID, Status: domain.DriverOffline}
	}
	d.Name = name
	d.Rating = rating
	d.UpdatedAt = s.now()
	s.drivers[driverID] = d
	return nil
}

// ListOnlineInBox returns online drivers whose location lies inside box.
func (s *Store) ListOnlineInBox(_ context.Context, box geo.Box) ([]domain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Driver, 0)
	for _, d := range s.drivers {
		if d.Status != domain.DriverOnline || d.Location == nil {
			continue
		}
		if !box.Contains(d.Location.Point) {
			continue
		}
		out = append(out, cloneDriver(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListDriversByStatus returns drivers with the given status ordered by id.
func (s *Store) ListDriversByStatus(_ context.Context, status domain.DriverStatus) ([]domain.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Driver, 0)
	for _, d := range s.drivers {
		if d.Status == status {
			out = append(out, cloneDriver(d))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// LocationHistory returns the latest accepted samples of a driver, newest first.
func (s *Store) LocationHistory(_ context.Context, driverID string, limit int) ([]domain.LocationSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.history[driverID]
	out := make([]domain.LocationSample, 0, len(h))
	for i := len(h) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, cloneSample(h[i]))
	}
	return out, nil
}

type tx struct {
	s           *Store
	orders      map[string]domain.DeliveryOrder
	assignments map[string]domain.Assignment
	drivers     map[string]domain.Driver
	routes      map[string]domain.DeliveryRoute
	payouts     map[string]domain.Payout
}

func newTx(s *Store) *tx {
	return &tx{
		s:           s,
		orders:      make(map[string]domain.DeliveryOrder),
		assignments: make(map[string]domain.Assignment),
		drivers:     make(map[string]domain.Driver),
		routes:      make(map[string]domain.DeliveryRoute),
		payouts:     make(map[string]domain.Payout),
	}
}

func (t *tx) commit() {
	for id, o := range t.orders {
		t.s.orders[id] = o
		if o.TrackingID != "" {
			t.s.tracking[o.TrackingID] = id
		}
	}
	for id, a := range t.assignments {
		t.s.assignments[id] = a
	}
	for id, d := range t.drivers {
		t.s.drivers[id] = d
	}
	for id, r := range t.routes {
		t.s.routes[id] = r
	}
	for id, p := range t.payouts {
		t.s.payouts[id] = p
	}
}

func (t *tx) order(id string) (domain.DeliveryOrder, bool) {
	if o, ok := t.orders[id]; ok {
		return o, true
	}
	o, ok := t.s.orders[id]
	return o, ok
}

func (t *tx) assignment(id string) (domain.Assignment, bool) {
	if a, ok := t.assignments[id]; ok {
		return a, true
	}
	a, ok := t.s.assignments[id]
	return a, ok
}

func (t *tx) driver(id string) (domain.Driver, bool) {
	if d, ok := t.drivers[id]; ok {
		return d, true
	}
	d, ok := t.s.drivers[id]
	return d, ok
}

// findAssignment returns the first assignment, staged writes first, matching pred.
func (t *tx) findAssignment(pred func(domain.Assignment) bool) (domain.Assignment, bool) {
	for _, a := range t.assignments {
		if pred(a) {
			return a, true
		}
	}
	for id, a := range t.s.assignments {
		if _, staged := t.assignments[id]; staged {
			continue
		}
		if pred(a) {
			return a, true
		}
	}
	return domain.Assignment{}, false
}

func (t *tx) InsertOrder(_ context.Context, o *domain.DeliveryOrder) error {
	if _, exists := t.order(o.ID); exists {
		return fmt.Errorf("insert order %q: %w", o.ID, apperr.ErrConflict)
	}
	if _, exists := t.s.tracking[o.TrackingID]; exists && o.TrackingID != "" {
		return fmt.Errorf("insert order %q: tracking id taken: %w", o.ID, apperr.ErrConflict)
	}
	t.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (t *tx) GetOrderForUpdate(_ context.Context, id string) (*domain.DeliveryOrder, error) {
	o, ok := t.order(id)
	if !ok {
		return nil, nil
	}
	o = cloneOrder(o)
	return &o, nil
}

func (t *tx) UpdateOrder(_ context.Context, o *domain.DeliveryOrder) error {
	if _, ok := t.order(o.ID); !ok {
		return fmt.Errorf("update order %q: %w", o.ID, apperr.ErrNotFound)
	}
	t.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (t *tx) InsertAssignment(_ context.Context, a *domain.Assignment) error {
	if _, exists := t.assignment(a.ID); exists {
		return fmt.Errorf("insert assignment %q: %w", a.ID, apperr.ErrConflict)
	}
	if a.Status.Active() {
		// same guarantees as the partial unique indexes in Postgres
		if _, busy := t.findAssignment(func(x domain.Assignment) bool {
			return x.Status.Active() && (x.OrderID == a.OrderID || x.DriverID == a.DriverID)
		}); busy {
			return fmt.Errorf("insert assignment %q: active assignment exists: %w", a.ID, apperr.ErrConflict)
		}
	}
	t.assignments[a.ID] = cloneAssignment(*a)
	return nil
}

func (t *tx) GetAssignmentForUpdate(_ context.Context, id string) (*domain.Assignment, error) {
	a, ok := t.assignment(id)
	if !ok {
		return nil, nil
	}
	a = cloneAssignment(a)
	return &a, nil
}

func (t *tx) ActiveAssignmentForOrder(_ context.Context, orderID string) (*domain.Assignment, error) {
	a, ok := t.findAssignment(func(x domain.Assignment) bool {
		return x.OrderID == orderID && x.Status.Active()
	})
	if !ok {
		return nil, nil
	}
	a = cloneAssignment(a)
	return &a, nil
}

func (t *tx) ActiveAssignmentForDriver(_ context.Context, driverID string) (*domain.Assignment, error) {
	a, ok := t.findAssignment(func(x domain.Assignment) bool {
		return x.DriverID == driverID && x.Status.Active()
	})
	if !ok {
		return nil, nil
	}
	a = cloneAssignment(a)
	return &a, nil
}

func (t *tx) UpdateAssignment(_ context.Context, a *domain.Assignment) error {
	if _, ok := t.assignment(a.ID); !ok {
		return fmt.Errorf("update assignment %q: %w", a.ID, apperr.ErrNotFound)
	}
	t.assignments[a.ID] = cloneAssignment(*a)
	return nil
}

func (t *tx) GetDriverForUpdate(_ context.Context, id string) (*domain.Driver, error) {
	d, ok := t.driver(id)
	if !ok {
		return nil, nil
	}
	d = cloneDriver(d)
	return &d, nil
}

func (t *tx) UpdateDriverStatus(_ context.Context, id string, status domain.DriverStatus) error {
	d, ok := t.driver(id)
	if !ok {
		return fmt.Errorf("update driver %q status: %w", id, apperr.ErrNotFound)
	}
	d = cloneDriver(d)
	d.Status = status
	d.UpdatedAt = t.s.now()
	t.drivers[id] = d
	return nil
}

func (t *tx) InsertRoute(_ context.Context, r *domain.DeliveryRoute) error {
	if _, exists := t.routes[r.ID]; exists {
		return fmt.Errorf("insert route %q: %w", r.ID, apperr.ErrConflict)
	}
	if _, exists := t.s.routes[r.ID]; exists {
		return fmt.Errorf("insert route %q: %w", r.ID, apperr.ErrConflict)
	}
	t.routes[r.ID] = cloneRoute(*r)
	return nil
}

func (t *tx) GetRouteByAssignment(_ context.Context, assignmentID string) (*domain.DeliveryRoute, error) {
	for _, r := range t.routes {
		if r.AssignmentID == assignmentID {
			r = cloneRoute(r)
			return &r, nil
		}
	}
	for id, r := range t.s.routes {
		if _, staged := t.routes[id]; staged {
			continue
		}
		if r.AssignmentID == assignmentID {
			r = cloneRoute(r)
			return &r, nil
		}
	}
	return nil, nil
}

func (t *tx) UpdateRoute(_ context.Context, r *domain.DeliveryRoute) error {
	_, staged := t.routes[r.ID]
	_, stored := t.s.routes[r.ID]
	if !staged && !stored {
		return fmt.Errorf("update route %q: %w", r.ID, apperr.ErrNotFound)
	}
	t.routes[r.ID] = cloneRoute(*r)
	return nil
}

func (t *tx) InsertPayout(_ context.Context, p *domain.Payout) error {
	_, staged := t.payouts[p.OrderID]
	_, stored := t.s.payouts[p.OrderID]
	if staged || stored {
		return fmt.Errorf("insert payout for order %q: %w", p.OrderID, apperr.ErrConflict)
	}
	t.payouts[p.OrderID] = *p
	return nil
}

func cloneOrder(o domain.DeliveryOrder) domain.DeliveryOrder {
	if o.Proof != nil {
		p := *o.Proof
		o.Proof = &p
	}
	return o
}

func cloneAssignment(a domain.Assignment) domain.Assignment {
	a.Waypoints = append([]domain.Waypoint(nil), a.Waypoints...)
	return a
}

func cloneRoute(r domain.DeliveryRoute) domain.DeliveryRoute {
	r.Stops = append([]domain.Waypoint(nil), r.Stops...)
	r.OrderIDs = append([]string(nil), r.OrderIDs...)
	return r
}

func cloneSample(s domain.LocationSample) domain.LocationSample {
	if s.Speed != nil {
		v := *s.Speed
		s.Speed = &v
	}
	if s.Heading != nil {
		v := *s.Heading
		s.Heading = &v
	}
	return s
}

func cloneDriver(d domain.Driver) domain.Driver {
	if d.Location != nil {
		l := cloneSample(*d.Location)
		d.Location = &l
	}
	return d
}

var _ dispatchtx.Runner = (*Store)(nil)
