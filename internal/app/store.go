package app

import (
	"context"
	"time"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/geo"
	"service-dispatch/internal/ports/dispatchtx"
	"service-dispatch/internal/repository"
	"service-dispatch/internal/repository/memory"
)

// Store is what both backends offer to the dispatch coordinator and the driver locator.
type Store interface {
	dispatchtx.Runner

	GetOrder(ctx context.Context, id string) (*domain.DeliveryOrder, error)
	GetOrderByTracking(ctx context.Context, trackingID string) (*domain.DeliveryOrder, error)
	ListOrders(ctx context.Context, f domain.OrderFilter) ([]domain.DeliveryOrder, error)
	GetAssignment(ctx context.Context, id string) (*domain.Assignment, error)
	ListAssignmentsByOrder(ctx context.Context, orderID string) ([]domain.Assignment, error)
	GetRouteByAssignment(ctx context.Context, assignmentID string) (*domain.DeliveryRoute, error)
	GetPayoutByOrder(ctx context.Context, orderID string) (*domain.Payout, error)
	OrdersDueForRetry(ctx context.Context, now time.Time, limit int) ([]string, error)
	ExpiredOffers(ctx context.Context, now time.Time, limit int) ([]string, error)

	GetDriver(ctx context.Context, id string) (*domain.Driver, error)
	SaveLocation(ctx context.Context, driverID string, sample domain.LocationSample) (bool, error)
	SetDriverStatus(ctx context.Context, driverID string, status domain.DriverStatus) (domain.DriverStatus, error)
	UpsertDriverProfile(ctx context.Context, driverID, name string, rating float64) error
	ListOnlineInBox(ctx context.Context, box geo.Box) ([]domain.Driver, error)
	ListDriversByStatus(ctx context.Context, status domain.DriverStatus) ([]domain.Driver, error)
	LocationHistory(ctx context.Context, driverID string, limit int) ([]domain.LocationSample, error)
}

var (
	_ Store = (*repository.Store)(nil)
	_ Store = (*memory.Store)(nil)
)
