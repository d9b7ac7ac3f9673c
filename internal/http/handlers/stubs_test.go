package handlers_test

import (
	"context"
	"net/http"

	"service-dispatch/internal/domain"
)

type stubDispatch struct {
	createFn     func(ctx context.Context, spec domain.OrderSpec) (*domain.DeliveryOrder, error)
	autoAssignFn func(ctx context.Context, orderID string) (*domain.Assignment, error)
	assignFn     func(ctx context.Context, orderID, driverID string) (*domain.Assignment, error)
	acceptFn     func(ctx context.Context, assignmentID, driverID string) (*domain.Assignment, error)
	rejectFn     func(ctx context.Context, assignmentID, driverID, reason string) (*domain.Assignment, error)
	pickedUpFn   func(ctx context.Context, orderID, driverID string) (*domain.DeliveryOrder, error)
	inTransitFn  func(ctx context.Context, orderID, driverID string) (*domain.DeliveryOrder, error)
	deliveredFn  func(ctx context.Context, orderID, driverID string, proof *domain.DeliveryProof) (*domain.DeliveryOrder, *domain.Payout, error)
	cancelFn     func(ctx context.Context, orderID, reason string) (*domain.DeliveryOrder, error)
	getOrderFn   func(ctx context.Context, orderID string) (*domain.DeliveryOrder, error)
	listFn       func(ctx context.Context, f domain.OrderFilter) ([]domain.DeliveryOrder, error)
	getAssignFn  func(ctx context.Context, assignmentID string) (*domain.Assignment, error)
	listAssignFn func(ctx context.Context, orderID string) ([]domain.Assignment, error)
	routeFn      func(ctx context.Context, assignmentID string) (*domain.DeliveryRoute, error)
	payoutFn     func(ctx context.Context, orderID string) (*domain.Payout, error)
	trackFn      func(ctx context.Context, trackingID string) (*domain.TrackingInfo, error)
}

func (s *stubDispatch) CreateOrder(ctx context.Context, spec domain.OrderSpec) (*domain.DeliveryOrder, error) {
	return s.createFn(ctx, spec)
}

func (s *stubDispatch) AutoAssign(ctx context.Context, orderID string) (*domain.Assignment, error) {
	return s.autoAssignFn(ctx, orderID)
}

func (s *stubDispatch) Assign(ctx context.Context, orderID, driverID string) (*domain.Assignment, error) {
	return s.assignFn(ctx, orderID, driverID)
}

func (s *stubDispatch) Accept(ctx context.Context, assignmentID, driverID string) (*domain.Assignment, error) {
	return s.acceptFn(ctx, assignmentID, driverID)
}

func (s *stubDispatch) Reject(ctx context.Context, assignmentID, driverID, reason string) (*domain.Assignment, error) {
	return s.rejectFn(ctx, assignmentID, driverID, reason)
}

func (s *stubDispatch) MarkPickedUp(ctx context.Context, orderID, driverID string) (*domain.DeliveryOrder, error) {
	return s.pickedUpFn(ctx, orderID, driverID)
}

func (s *stubDispatch) MarkInTransit(ctx context.Context, orderID, driverID string) (*domain.DeliveryOrder, error) {
	return s.inTransitFn(ctx, orderID, driverID)
}

func (s *stubDispatch) MarkDelivered(ctx context.Context, orderID, driverID string, proof *domain.DeliveryProof) (*domain.DeliveryOrder, *domain.Payout, error) {
	return s.deliveredFn(ctx, orderID, driverID, proof)
}

func (s *stubDispatch) Cancel(ctx context.Context, orderID, reason string) (*domain.DeliveryOrder, error) {
	return s.cancelFn(ctx, orderID, reason)
}

func (s *stubDispatch) GetOrder(ctx context.Context, orderID string) (*domain.DeliveryOrder, error) {
	return s.getOrderFn(ctx, orderID)
}

func (s *stubDispatch) ListOrders(ctx context.Context, f domain.OrderFilter) ([]domain.DeliveryOrder, error) {
	return s.listFn(ctx, f)
}

func (s *stubDispatch) GetAssignment(ctx context.Context, assignmentID string) (*domain.Assignment, error) {
	return s.getAssignFn(ctx, assignmentID)
}

func (s *stubDispatch) ListAssignments(ctx context.Context, orderID string) ([]domain.Assignment, error) {
	return s.listAssignFn(ctx, orderID)
}

func (s *stubDispatch) GetRoute(ctx context.Context, assignmentID string) (*domain.DeliveryRoute, error) {
	return s.routeFn(ctx, assignmentID)
}

func (s *stubDispatch) GetPayout(ctx context.Context, orderID string) (*domain.Payout, error) {
	return s.payoutFn(ctx, orderID)
}

func (s *stubDispatch) Track(ctx context.Context, trackingID string) (*domain.TrackingInfo, error) {
	return s.trackFn(ctx, trackingID)
}

type stubLocator struct {
	updateFn   func(ctx context.Context, driverID string, sample domain.LocationSample) (bool, error)
	nearbyFn   func(ctx context.Context, point domain.Point, radiusKm float64) ([]domain.Candidate, error)
	statusFn   func(ctx context.Context, driverID string, status domain.DriverStatus) error
	profileFn  func(ctx context.Context, driverID, name string, rating float64) error
	getFn      func(ctx context.Context, driverID string) (*domain.Driver, error)
	historyFn  func(ctx context.Context, driverID string, limit int) ([]domain.LocationSample, error)
	byStatusFn func(ctx context.Context, status domain.DriverStatus) ([]domain.Driver, error)
}

func (s *stubLocator) UpdateLocation(ctx context.Context, driverID string, sample domain.LocationSample) (bool, error) {
	return s.updateFn(ctx, driverID, sample)
}

func (s *stubLocator) FindNearby(ctx context.Context, point domain.Point, radiusKm float64) ([]domain.Candidate, error) {
	return s.nearbyFn(ctx, point, radiusKm)
}

func (s *stubLocator) SetStatus(ctx context.Context, driverID string, status domain.DriverStatus) error {
	return s.statusFn(ctx, driverID, status)
}

func (s *stubLocator) UpsertProfile(ctx context.Context, driverID, name string, rating float64) error {
	return s.profileFn(ctx, driverID, name, rating)
}

func (s *stubLocator) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	return s.getFn(ctx, driverID)
}

func (s *stubLocator) LocationHistory(ctx context.Context, driverID string, limit int) ([]domain.LocationSample, error) {
	return s.historyFn(ctx, driverID, limit)
}

func (s *stubLocator) DriversByStatus(ctx context.Context, status domain.DriverStatus) ([]domain.Driver, error) {
	return s.byStatusFn(ctx, status)
}

type stubStream struct {
	served string
}

func (s *stubStream) ServeDriver(w http.ResponseWriter, _ *http.Request, driverID string) {
	s.served = driverID
	w.WriteHeader(http.StatusOK)
}
