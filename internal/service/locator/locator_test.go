package locator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
	"service-dispatch/internal/repository/memory"
	testlog "service-dispatch/internal/testutil"
)

type stubSink struct {
	recordFn func(ctx context.Context, driverID string, s domain.LocationSample) error
	calls    int
}

func (s *stubSink) Record(ctx context.Context, driverID string, sample domain.LocationSample) error {
	s.calls++
	if s.recordFn == nil {
		return nil
	}
	return s.recordFn(ctx, driverID, sample)
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sample(lat, lng float64, at time.Time) domain.LocationSample {
	return domain.LocationSample{Point: domain.Point{Lat: lat, Lng: lng}, RecordedAt: at}
}

func TestNewService_ZeroTimeoutUsesDefault(t *testing.T) {
	t.Parallel()

	s := NewService(memory.New(), nil, nil, 0)
	assert.Equal(t, 3*time.Second, s.operationTimeout)
}

func TestUpdateLocation_AppliesAndMirrorsToSink(t *testing.T) {
	t.Parallel()

	sink := &stubSink{}
	s := NewService(memory.New(), sink, logx.Nop(), time.Second)
	ctx := context.Background()

	applied, err := s.UpdateLocation(ctx, "d1", sample(30, 31, t0))
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = s.UpdateLocation(ctx, "d1", sample(30.5, 31.5, t0.Add(-time.Minute)))
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 1, sink.calls, "stale samples are not mirrored")

	d, err := s.GetDriver(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, domain.DriverOffline, d.Status)
	assert.Equal(t, 30.0, d.Location.Lat)
}

func TestUpdateLocation_SinkFailureIsLogged(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	sink := &stubSink{recordFn: func(context.Context, string, domain.LocationSample) error {
		return errors.New("influx down")
	}}
	s := NewService(memory.New(), sink, rec.Logger(), time.Second)

	applied, err := s.UpdateLocation(context.Background(), "d1", sample(30, 31, t0))
	require.NoError(t, err)
	assert.True(t, applied)

	_, ok := rec.Find("warn", "location sink failed")
	assert.True(t, ok)
}

func TestUpdateLocation_Validation(t *testing.T) {
	t.Parallel()

	s := NewService(memory.New(), nil, nil, time.Second)
	neg := -1.0
	tests := []struct {
		name   string
		driver string
		sample domain.LocationSample
	}{
		{"empty driver", " ", sample(1, 1, t0)},
		{"bad lat", "d1", sample(91, 1, t0)},
		{"bad lng", "d1", sample(1, -181, t0)},
		{"negative accuracy", "d1", domain.LocationSample{Point: domain.Point{Lat: 1, Lng: 1}, AccuracyM: -1}},
		{"negative speed", "d1", domain.LocationSample{Point: domain.Point{Lat: 1, Lng: 1}, Speed: &neg}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := s.UpdateLocation(context.Background(), tt.driver, tt.sample)
			require.ErrorIs(t, err, apperr.ErrInvalid)
		})
	}
}

func TestFindNearby_FiltersAndSortsByDistance(t *testing.T) {
	t.Parallel()

	repo := memory.New()
	s := NewService(repo, nil, nil, time.Second)
	ctx := context.Background()
	pickup := domain.Point{Lat: 30.0, Lng: 31.2}

	put := func(id string, lat, lng float64, st domain.DriverStatus) {
		_, err := s.UpdateLocation(ctx, id, sample(lat, lng, t0))
		require.NoError(t, err)
		require.NoError(t, s.SetStatus(ctx, id, st))
	}
	put("d_far_in_box", 30.044, 31.244, domain.DriverOnline) // ~6.4 km, inside the box corner
	put("d_2km", 30.018, 31.2, domain.DriverOnline)
	put("d_1km", 30.009, 31.2, domain.DriverOnline)
	put("d_busy", 30.001, 31.2, domain.DriverBusy)
	put("d_break", 30.001, 31.2, domain.DriverBreak)

	got, err := s.FindNearby(ctx, pickup, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d_1km", got[0].DriverID)
	assert.Equal(t, "d_2km", got[1].DriverID)
	assert.InDelta(t, 1.0, got[0].DistanceKm, 0.05)
	assert.LessOrEqual(t, got[0].DistanceKm, got[1].DistanceKm)
}

func TestFindNearby_AcrossAntimeridian(t *testing.T) {
	t.Parallel()

	s := NewService(memory.New(), nil, nil, time.Second)
	ctx := context.Background()

	_, err := s.UpdateLocation(ctx, "d_fiji_west", sample(-17, -179.99, t0))
	require.NoError(t, err)
	require.NoError(t, s.SetStatus(ctx, "d_fiji_west", domain.DriverOnline))
	_, err = s.UpdateLocation(ctx, "d_far_west", sample(-17, -179.5, t0))
	require.NoError(t, err)
	require.NoError(t, s.SetStatus(ctx, "d_far_west", domain.DriverOnline))

	got, err := s.FindNearby(ctx, domain.Point{Lat: -17, Lng: 179.99}, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "d_fiji_west", got[0].DriverID)
	assert.InDelta(t, 2.127, got[0].DistanceKm, 0.01)
}

func TestFindNearby_InvalidInput(t *testing.T) {
	t.Parallel()

	s := NewService(memory.New(), nil, nil, time.Second)
	_, err := s.FindNearby(context.Background(), domain.Point{Lat: 100}, 5)
	require.ErrorIs(t, err, apperr.ErrInvalid)
	_, err = s.FindNearby(context.Background(), domain.Point{}, 0)
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestSetStatus_LogsChange(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	s := NewService(memory.New(), nil, rec.Logger(), time.Second)
	ctx := context.Background()

	require.NoError(t, s.SetStatus(ctx, "d1", domain.DriverOnline))
	e, ok := rec.Find("info", "driver status changed")
	require.True(t, ok)
	to, _ := e.Field("to")
	assert.Equal(t, "online", to)

	require.ErrorIs(t, s.SetStatus(ctx, "d1", "sleeping"), apperr.ErrInvalid)
}

func TestGetDriver_NotFound(t *testing.T) {
	t.Parallel()

	s := NewService(memory.New(), nil, nil, time.Second)
	_, err := s.GetDriver(context.Background(), "ghost")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpsertProfile(t *testing.T) {
	t.Parallel()

	s := NewService(memory.New(), nil, nil, time.Second)
	ctx := context.Background()

	require.ErrorIs(t, s.UpsertProfile(ctx, "d1", "Ann", 5.5), apperr.ErrInvalid)
	require.NoError(t, s.UpsertProfile(ctx, "d1", " Ann ", 4.8))

	d, err := s.GetDriver(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", d.Name)
	assert.Equal(t, 4.8, d.Rating)
	assert.Equal(t, domain.DriverOffline, d.Status)
}

func TestLocationHistoryAndDriversByStatus(t *testing.T) {
	t.Parallel()

	s := NewService(memory.New(), nil, nil, time.Second)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := s.UpdateLocation(ctx, "d1", sample(30, 31+float64(i)/100, t0.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}

	h, err := s.LocationHistory(ctx, "d1", 2)
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, t0.Add(2*time.Second), h[0].RecordedAt)

	offline, err := s.DriversByStatus(ctx, domain.DriverOffline)
	require.NoError(t, err)
	assert.Len(t, offline, 1)

	_, err = s.DriversByStatus(ctx, "nope")
	require.ErrorIs(t, err, apperr.ErrInvalid)
}
