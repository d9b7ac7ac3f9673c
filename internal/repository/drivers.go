package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/geo"
)

// GetDriver returns the driver or nil.
func (s *Store) GetDriver(ctx context.Context, id string) (*domain.Driver, error) {
	return getOne(ctx, s.db, scanDriver, "driver "+id,
		`SELECT `+driverColumns+` FROM drivers WHERE id = $1`, id)
}

// SaveLocation stores sample when it is newer than the current one and appends it to the history.
// Unknown drivers are created offline. Reports whether the sample was applied.
func (s *Store) SaveLocation(ctx context.Context, driverID string, sample domain.LocationSample) (applied bool, err error) {
	err = pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx, `
            INSERT INTO drivers (id, status, lat, lng, accuracy_m, speed_kmh, heading, recorded_at, updated_at)
            VALUES ($1, 'offline', $2, $3, $4, $5, $6, $7, now())
            ON CONFLICT (id) DO UPDATE
            SET lat = EXCLUDED.lat,
                lng = EXCLUDED.lng,
                accuracy_m = EXCLUDED.accuracy_m,
                speed_kmh = EXCLUDED.speed_kmh,
                heading = EXCLUDED.heading,
                recorded_at = EXCLUDED.recorded_at,
                updated_at = now()
            WHERE drivers.recorded_at IS NULL OR drivers.recorded_at < EXCLUDED.recorded_at
            RETURNING id
        `, driverID, sample.Lat, sample.Lng, sample.AccuracyM, sample.Speed, sample.Heading, sample.RecordedAt).Scan(&id)
		if IsNotFound(err) {
			// stale sample: the guarded update matched nothing
			return nil
		}
		if err != nil {
			return fmt.Errorf("upsert driver %q location: %w", driverID, err)
		}

		_, err = tx.Exec(ctx, `
            INSERT INTO driver_locations (driver_id, lat, lng, accuracy_m, speed_kmh, heading, recorded_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
        `, driverID, sample.Lat, sample.Lng, sample.AccuracyM, sample.Speed, sample.Heading, sample.RecordedAt)
		if err != nil {
			return fmt.Errorf("append driver %q history: %w", driverID, err)
		}
		applied = true
		return nil
	})
	return applied, err
}

// SetDriverStatus overwrites the status, creating the driver when unknown, and returns the previous one.
func (s *Store) SetDriverStatus(ctx context.Context, driverID string, status domain.DriverStatus) (domain.DriverStatus, error) {
	var prev *string
	err := s.db.QueryRow(ctx, `
        WITH prev AS (SELECT status FROM drivers WHERE id = $1)
        INSERT INTO drivers (id, status, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (id) DO UPDATE
        SET status = EXCLUDED.status, updated_at = now()
        RETURNING (SELECT status FROM prev)
    `, driverID, string(status)).Scan(&prev)
	if err != nil {
		return "", fmt.Errorf("set driver %q status: %w", driverID, err)
	}
	if prev == nil {
		return "", nil
	}
	return domain.DriverStatus(*prev), nil
}

// UpsertDriverProfile sets name and rating, creating an offline driver when unknown.
func (s *Store) UpsertDriverProfile(ctx context.Context, driverID, name string, rating float64) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO drivers (id, name, rating, status, updated_at)
        VALUES ($1, $2, $3, 'offline', now())
        ON CONFLICT (id) DO UPDATE
        SET name = EXCLUDED.name, rating = EXCLUDED.rating, updated_at = now()
    `, driverID, name, rating)
	if err != nil {
		return fmt.Errorf("upsert driver %q profile: %w", driverID, err)
	}
	return nil
}

// ListOnlineInBox returns online drivers whose location lies inside box.
// A box crossing the antimeridian is matched as two longitude ranges.
func (s *Store) ListOnlineInBox(ctx context.Context, box geo.Box) ([]domain.Driver, error) {
	lngCond := `lng BETWEEN $3 AND $4`
	if box.Wraps() {
		lngCond = `(lng BETWEEN $3 AND 180 OR lng BETWEEN -180 AND $4)`
	}
	rows, err := s.db.Query(ctx, `
        SELECT `+driverColumns+` FROM drivers
        WHERE status = 'online'
          AND lat IS NOT NULL
          AND lat BETWEEN $1 AND $2
          AND `+lngCond+`
        ORDER BY id
    `, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
	if err != nil {
		return nil, fmt.Errorf("list online drivers: %w", err)
	}
	return collect(rows, scanDriver)
}

// ListDriversByStatus returns drivers with the given status ordered by id.
func (s *Store) ListDriversByStatus(ctx context.Context, status domain.DriverStatus) ([]domain.Driver, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+driverColumns+` FROM drivers WHERE status = $1 ORDER BY id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list drivers by status: %w", err)
	}
	return collect(rows, scanDriver)
}

// LocationHistory returns the latest accepted samples of a driver, newest first.
func (s *Store) LocationHistory(ctx context.Context, driverID string, limit int) ([]domain.LocationSample, error) {
	rows, err := s.db.Query(ctx, `
        SELECT lat, lng, accuracy_m, speed_kmh, heading, recorded_at
        FROM driver_locations
        WHERE driver_id = $1
        ORDER BY recorded_at DESC, id DESC
        LIMIT $2
    `, driverID, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("location history of %q: %w", driverID, err)
	}
	return collect(rows, func(row pgx.Row) (*domain.LocationSample, error) {
		var ls domain.LocationSample
		if err := row.Scan(&ls.Lat, &ls.Lng, &ls.AccuracyM, &ls.Speed, &ls.Heading, &ls.RecordedAt); err != nil {
			return nil, err
		}
		ls.RecordedAt = ls.RecordedAt.UTC()
		return &ls, nil
	})
}
