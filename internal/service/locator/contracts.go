package locator

import (
	"context"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/geo"
)

// driverRepository defines the driver storage operations the locator needs.
type driverRepository interface {
	GetDriver(ctx context.Context, id string) (*domain.Driver, error)
	SaveLocation(ctx context.Context, driverID string, sample domain.LocationSample) (bool, error)
	SetDriverStatus(ctx context.Context, driverID string, status domain.DriverStatus) (domain.DriverStatus, error)
	UpsertDriverProfile(ctx context.Context, driverID, name string, rating float64) error
	ListOnlineInBox(ctx context.Context, box geo.Box) ([]domain.Driver, error)
	ListDriversByStatus(ctx context.Context, status domain.DriverStatus) ([]domain.Driver, error)
	LocationHistory(ctx context.Context, driverID string, limit int) ([]domain.LocationSample, error)
}

// locationSink receives accepted samples for time-series storage.
type locationSink interface {
	Record(ctx context.Context, driverID string, sample domain.LocationSample) error
}
