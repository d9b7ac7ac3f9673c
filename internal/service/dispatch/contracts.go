//go:generate mockgen -source=contracts.go -destination=dispatch_mocks_test.go -package=dispatch

package dispatch

import (
	"context"
	"time"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/ports/dispatchtx"
)

// store is the persistence the coordinator needs: transactional writes plus plain reads.
type store interface {
	dispatchtx.Runner
	GetOrder(ctx context.Context, id string) (*domain.DeliveryOrder, error)
	GetOrderByTracking(ctx context.Context, trackingID string) (*domain.DeliveryOrder, error)
	ListOrders(ctx context.Context, f domain.OrderFilter) ([]domain.DeliveryOrder, error)
	GetAssignment(ctx context.Context, id string) (*domain.Assignment, error)
	ListAssignmentsByOrder(ctx context.Context, orderID string) ([]domain.Assignment, error)
	GetRouteByAssignment(ctx context.Context, assignmentID string) (*domain.DeliveryRoute, error)
	GetPayoutByOrder(ctx context.Context, orderID string) (*domain.Payout, error)
	GetDriver(ctx context.Context, id string) (*domain.Driver, error)
	OrdersDueForRetry(ctx context.Context, now time.Time, limit int) ([]string, error)
	ExpiredOffers(ctx context.Context, now time.Time, limit int) ([]string, error)
}

// driverLocator finds online drivers around a point, nearest first.
type driverLocator interface {
	FindNearby(ctx context.Context, point domain.Point, radiusKm float64) ([]domain.Candidate, error)
}

// Notifier delivers fire-and-forget messages to drivers and operators.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// PayoutPublisher hands computed payouts to settlement.
type PayoutPublisher interface {
	PublishPayout(ctx context.Context, p domain.Payout) error
}

// Scheduler runs fn once after d without blocking the caller.
type Scheduler interface {
	After(d time.Duration, fn func(ctx context.Context))
}
