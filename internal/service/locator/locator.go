package locator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/geo"
	"service-dispatch/internal/logx"
)

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
	maxRating           = 5.0
)

// Service tracks driver positions and availability.
type Service struct {
	repo             driverRepository
	sink             locationSink
	logger           logx.Logger
	operationTimeout time.Duration
	now              func() time.Time
}

// NewService creates a locator Service. sink may be nil.
func NewService(repo driverRepository, sink locationSink, logger logx.Logger, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		repo:             repo,
		sink:             sink,
		logger:           logger,
		operationTimeout: timeout,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

func validateSample(driverID string, sample domain.LocationSample) error {
	if strings.TrimSpace(driverID) == "" {
		return fmt.Errorf("driver id is required: %w", apperr.ErrInvalid)
	}
	if !sample.Point.Valid() {
		return fmt.Errorf("coordinates out of range: %w", apperr.ErrInvalid)
	}
	if sample.AccuracyM < 0 {
		return fmt.Errorf("negative accuracy: %w", apperr.ErrInvalid)
	}
	if sample.Speed != nil && *sample.Speed < 0 {
		return fmt.Errorf("negative speed: %w", apperr.ErrInvalid)
	}
	if sample.Heading != nil && (*sample.Heading < 0 || *sample.Heading >= 360) {
		return fmt.Errorf("heading out of range: %w", apperr.ErrInvalid)
	}
	return nil
}

// UpdateLocation stores sample unless a newer or equal one is already known.
// It reports whether the sample was applied. A zero RecordedAt means "now".
func (s *Service) UpdateLocation(ctx context.Context, driverID string, sample domain.LocationSample) (bool, error) {
	if err := validateSample(driverID, sample); err != nil {
		return false, err
	}
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = s.now()
	}
	sample.RecordedAt = sample.RecordedAt.UTC()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	applied, err := s.repo.SaveLocation(ctx, driverID, sample)
	if err != nil {
		return false, fmt.Errorf("save location: %w", err)
	}
	if !applied {
		s.logger.Debug("stale location dropped",
			logx.String("driver_id", driverID),
			logx.Time("recorded_at", sample.RecordedAt),
		)
		return false, nil
	}

	if s.sink != nil {
		if err := s.sink.Record(ctx, driverID, sample); err != nil {
			s.logger.Warn("location sink failed", logx.String("driver_id", driverID), logx.Err(err))
		}
	}
	return true, nil
}

// FindNearby returns online drivers within radiusKm of point, nearest first.
func (s *Service) FindNearby(ctx context.Context, point domain.Point, radiusKm float64) ([]domain.Candidate, error) {
	if !point.Valid() {
		return nil, fmt.Errorf("coordinates out of range: %w", apperr.ErrInvalid)
	}
	if radiusKm <= 0 {
		return nil, fmt.Errorf("radius must be positive: %w", apperr.ErrInvalid)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	drivers, err := s.repo.ListOnlineInBox(ctx, geo.BoundingBox(point, radiusKm))
	if err != nil {
		return nil, fmt.Errorf("list online drivers: %w", err)
	}

	out := make([]domain.Candidate, 0, len(drivers))
	for _, d := range drivers {
		if d.Status != domain.DriverOnline || d.Location == nil {
			continue
		}
		dist := geo.DistanceKm(point, d.Location.Point)
		if dist > radiusKm {
			continue
		}
		out = append(out, domain.Candidate{
			DriverID:   d.ID,
			Rating:     d.Rating,
			DistanceKm: dist,
			Location:   d.Location.Point,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DistanceKm == out[j].DistanceKm {
			return out[i].DriverID < out[j].DriverID
		}
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out, nil
}

// SetStatus overwrites the driver status. Unknown drivers are created with it.
func (s *Service) SetStatus(ctx context.Context, driverID string, status domain.DriverStatus) error {
	if strings.TrimSpace(driverID) == "" {
		return fmt.Errorf("driver id is required: %w", apperr.ErrInvalid)
	}
	if !status.Valid() {
		return fmt.Errorf("unknown driver status %q: %w", status, apperr.ErrInvalid)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	prev, err := s.repo.SetDriverStatus(ctx, driverID, status)
	if err != nil {
		return fmt.Errorf("set driver status: %w", err)
	}
	if prev != status {
		s.logger.Info("driver status changed",
			logx.String("event", "driver_status_changed"),
			logx.String("driver_id", driverID),
			logx.String("from", string(prev)),
			logx.String("to", string(status)),
		)
	}
	return nil
}

// UpsertProfile sets display name and rating (0..5) of a driver.
func (s *Service) UpsertProfile(ctx context.Context, driverID, name string, rating float64) error {
	if strings.TrimSpace(driverID) == "" {
		return fmt.Errorf("driver id is required: %w", apperr.ErrInvalid)
	}
	if rating < 0 || rating > maxRating {
		return fmt.Errorf("rating out of range: %w", apperr.ErrInvalid)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.UpsertDriverProfile(ctx, driverID, strings.TrimSpace(name), rating)
}

// GetDriver returns a driver by id.
func (s *Service) GetDriver(ctx context.Context, driverID string) (*domain.Driver, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.repo.GetDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("driver %q: %w", driverID, apperr.ErrNotFound)
	}
	return d, nil
}

// LocationHistory returns accepted samples of a driver, newest first.
func (s *Service) LocationHistory(ctx context.Context, driverID string, limit int) ([]domain.LocationSample, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.LocationHistory(ctx, driverID, limit)
}

// DriversByStatus lists drivers currently in status.
func (s *Service) DriversByStatus(ctx context.Context, status domain.DriverStatus) ([]domain.Driver, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown driver status %q: %w", status, apperr.ErrInvalid)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.ListDriversByStatus(ctx, status)
}
