package dispatchtx

import (
	"context"

	"service-dispatch/internal/domain"
)

// Repository is the dispatch store seen from inside a transaction.
// Get* methods return nil, nil when the record does not exist.
// *ForUpdate methods lock the row until the transaction ends.
type Repository interface {
	InsertOrder(ctx context.Context, o *domain.DeliveryOrder) error
	GetOrderForUpdate(ctx context.Context, id string) (*domain.DeliveryOrder, error)
	UpdateOrder(ctx context.Context, o *domain.DeliveryOrder) error

	InsertAssignment(ctx context.Context, a *domain.Assignment) error
	GetAssignmentForUpdate(ctx context.Context, id string) (*domain.Assignment, error)
	ActiveAssignmentForOrder(ctx context.Context, orderID string) (*domain.Assignment, error)
	ActiveAssignmentForDriver(ctx context.Context, driverID string) (*domain.Assignment, error)
	UpdateAssignment(ctx context.Context, a *domain.Assignment) error

	GetDriverForUpdate(ctx context.Context, id string) (*domain.Driver, error)
	UpdateDriverStatus(ctx context.Context, id string, status domain.DriverStatus) error

	InsertRoute(ctx context.Context, r *domain.DeliveryRoute) error
	GetRouteByAssignment(ctx context.Context, assignmentID string) (*domain.DeliveryRoute, error)
	UpdateRoute(ctx context.Context, r *domain.DeliveryRoute) error

	InsertPayout(ctx context.Context, p *domain.Payout) error
}

// Runner is a transaction runner
type Runner interface {
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}
