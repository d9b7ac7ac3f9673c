package handlers

import (
	"context"
	"net/http"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/service/dispatch"
	"service-dispatch/internal/service/locator"
)

// DispatchUsecase is the coordinator surface used by the order and assignment handlers.
type DispatchUsecase interface {
	CreateOrder(ctx context.Context, spec domain.OrderSpec) (*domain.DeliveryOrder, error)
	AutoAssign(ctx context.Context, orderID string) (*domain.Assignment, error)
	Assign(ctx context.Context, orderID, driverID string) (*domain.Assignment, error)
	Accept(ctx context.Context, assignmentID, driverID string) (*domain.Assignment, error)
	Reject(ctx context.Context, assignmentID, driverID, reason string) (*domain.Assignment, error)
	MarkPickedUp(ctx context.Context, orderID, driverID string) (*domain.DeliveryOrder, error)
	MarkInTransit(ctx context.Context, orderID, driverID string) (*domain.DeliveryOrder, error)
	MarkDelivered(ctx context.Context, orderID, driverID string, proof *domain.DeliveryProof) (*domain.DeliveryOrder, *domain.Payout, error)
	Cancel(ctx context.Context, orderID, reason string) (*domain.DeliveryOrder, error)

	GetOrder(ctx context.Context, orderID string) (*domain.DeliveryOrder, error)
	ListOrders(ctx context.Context, f domain.OrderFilter) ([]domain.DeliveryOrder, error)
	GetAssignment(ctx context.Context, assignmentID string) (*domain.Assignment, error)
	ListAssignments(ctx context.Context, orderID string) ([]domain.Assignment, error)
	GetRoute(ctx context.Context, assignmentID string) (*domain.DeliveryRoute, error)
	GetPayout(ctx context.Context, orderID string) (*domain.Payout, error)
	Track(ctx context.Context, trackingID string) (*domain.TrackingInfo, error)
}

var _ DispatchUsecase = (*dispatch.Service)(nil)

// LocatorUsecase is the driver locator surface used by the driver handlers.
type LocatorUsecase interface {
	UpdateLocation(ctx context.Context, driverID string, sample domain.LocationSample) (bool, error)
	FindNearby(ctx context.Context, point domain.Point, radiusKm float64) ([]domain.Candidate, error)
	SetStatus(ctx context.Context, driverID string, status domain.DriverStatus) error
	UpsertProfile(ctx context.Context, driverID, name string, rating float64) error
	GetDriver(ctx context.Context, driverID string) (*domain.Driver, error)
	LocationHistory(ctx context.Context, driverID string, limit int) ([]domain.LocationSample, error)
	DriversByStatus(ctx context.Context, status domain.DriverStatus) ([]domain.Driver, error)
}

var _ LocatorUsecase = (*locator.Service)(nil)

// DriverStream serves the live driver socket.
type DriverStream interface {
	ServeDriver(w http.ResponseWriter, r *http.Request, driverID string)
}
