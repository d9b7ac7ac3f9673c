//go:generate mockgen -source=contracts.go -destination=orders_mocks_test.go -package=orders_test

package orders

import (
	"context"

	"service-dispatch/internal/domain"
)

// DispatchPort abstracts the subset of dispatch operations
// needed by the Processor when handling upstream order events
type DispatchPort interface {
	CreateOrder(ctx context.Context, spec domain.OrderSpec) (*domain.DeliveryOrder, error)
	Cancel(ctx context.Context, orderID, reason string) (*domain.DeliveryOrder, error)
	ListOrders(ctx context.Context, f domain.OrderFilter) ([]domain.DeliveryOrder, error)
}
