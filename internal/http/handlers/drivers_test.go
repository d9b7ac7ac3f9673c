package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/http/handlers"
)

func TestDriverHandler_UpdateLocation(t *testing.T) {
	t.Parallel()

	calls := 0
	uc := &stubLocator{updateFn: func(_ context.Context, id string, s domain.LocationSample) (bool, error) {
		calls++
		require.Equal(t, "d1", id)
		require.InDelta(t, 30.01, s.Lat, 1e-9)
		require.NotNil(t, s.Speed)
		// second sample is older than the first
		return calls == 1, nil
	}}
	h := handlers.NewDriverHandler(uc, nil, nil)

	body := `{"lat":30.01,"lng":31.2,"speed_kmh":18.5,"recorded_at":"2026-03-02T09:00:00Z"}`
	rr := doRequest(t, http.MethodPost, "/drivers/{driverID}/location", "/drivers/d1/location", body, h.UpdateLocation)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decodeBody[map[string]bool](t, rr)["accepted"])

	rr = doRequest(t, http.MethodPost, "/drivers/{driverID}/location", "/drivers/d1/location", body, h.UpdateLocation)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, decodeBody[map[string]bool](t, rr)["accepted"])
}

func TestDriverHandler_UpdateLocation_Invalid(t *testing.T) {
	t.Parallel()

	uc := &stubLocator{updateFn: func(context.Context, string, domain.LocationSample) (bool, error) {
		t.Fatal("usecase must not be called")
		return false, nil
	}}
	h := handlers.NewDriverHandler(uc, nil, nil)

	for _, body := range []string{
		`{"lat":95,"lng":31.2}`,
		`{"lat":30,"lng":31.2,"heading":360}`,
		`{"lat":30,"lng":31.2,"accuracy_m":-3}`,
	} {
		rr := doRequest(t, http.MethodPost, "/drivers/{driverID}/location", "/drivers/d1/location", body, h.UpdateLocation)
		require.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
}

func TestDriverHandler_SetStatus(t *testing.T) {
	t.Parallel()

	uc := &stubLocator{
		statusFn: func(_ context.Context, id string, s domain.DriverStatus) error {
			if !s.Valid() {
				return fmt.Errorf("%w: unknown status %q", apperr.ErrInvalid, s)
			}
			return nil
		},
		getFn: func(_ context.Context, id string) (*domain.Driver, error) {
			return &domain.Driver{ID: id, Name: "Mona", Rating: 4.9, Status: domain.DriverBreak, UpdatedAt: created}, nil
		},
	}
	h := handlers.NewDriverHandler(uc, nil, nil)

	rr := doRequest(t, http.MethodPut, "/drivers/{driverID}/status", "/drivers/d1/status", `{"status":"break"}`, h.SetStatus)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody[map[string]any](t, rr)
	assert.Equal(t, "break", body["status"])
	assert.NotContains(t, body, "location")

	rr = doRequest(t, http.MethodPut, "/drivers/{driverID}/status", "/drivers/d1/status", `{"status":"asleep"}`, h.SetStatus)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDriverHandler_UpsertProfile(t *testing.T) {
	t.Parallel()

	uc := &stubLocator{
		profileFn: func(_ context.Context, id, name string, rating float64) error {
			require.Equal(t, "Mona", name)
			require.InDelta(t, 4.5, rating, 1e-9)
			return nil
		},
		getFn: func(_ context.Context, id string) (*domain.Driver, error) {
			return &domain.Driver{ID: id, Name: "Mona", Rating: 4.5, Status: domain.DriverOffline}, nil
		},
	}
	h := handlers.NewDriverHandler(uc, nil, nil)

	rr := doRequest(t, http.MethodPut, "/drivers/{driverID}", "/drivers/d1", `{"name":"Mona","rating":4.5}`, h.UpsertProfile)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, http.MethodPut, "/drivers/{driverID}", "/drivers/d1", `{"name":"Mona","rating":7}`, h.UpsertProfile)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDriverHandler_Nearby(t *testing.T) {
	t.Parallel()

	uc := &stubLocator{nearbyFn: func(_ context.Context, p domain.Point, radius float64) ([]domain.Candidate, error) {
		require.InDelta(t, 30.0, p.Lat, 1e-9)
		require.InDelta(t, 5.0, radius, 1e-9)
		return []domain.Candidate{
			{DriverID: "d1", Rating: 4.9, DistanceKm: 0.8, Location: domain.Point{Lat: 30.007, Lng: 31.2}},
			{DriverID: "d2", Rating: 4.1, DistanceKm: 2.2, Location: domain.Point{Lat: 30.02, Lng: 31.2}},
		}, nil
	}}
	h := handlers.NewDriverHandler(uc, nil, nil)

	rr := doRequest(t, http.MethodGet, "/drivers/nearby", "/drivers/nearby?lat=30&lng=31.2", "", h.Nearby)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decodeBody[[]map[string]any](t, rr)
	require.Len(t, list, 2)
	assert.Equal(t, "d1", list[0]["driver_id"])

	rr = doRequest(t, http.MethodGet, "/drivers/nearby", "/drivers/nearby?lat=30", "", h.Nearby)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(t, http.MethodGet, "/drivers/nearby", "/drivers/nearby?lat=30&lng=31.2&radius_km=far", "", h.Nearby)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDriverHandler_HistoryDefaultsLimit(t *testing.T) {
	t.Parallel()

	uc := &stubLocator{historyFn: func(_ context.Context, id string, limit int) ([]domain.LocationSample, error) {
		require.Equal(t, 50, limit)
		return []domain.LocationSample{{Point: domain.Point{Lat: 30, Lng: 31}, RecordedAt: created.Add(time.Minute)}}, nil
	}}
	rr := doRequest(t, http.MethodGet, "/drivers/{driverID}/locations", "/drivers/d1/locations", "",
		handlers.NewDriverHandler(uc, nil, nil).History)
	require.Equal(t, http.StatusOK, rr.Code)
	list := decodeBody[[]map[string]any](t, rr)
	require.Len(t, list, 1)
	assert.Equal(t, "2026-03-02T09:01:00Z", list[0]["recorded_at"])
}

func TestDriverHandler_ListByStatus(t *testing.T) {
	t.Parallel()

	uc := &stubLocator{byStatusFn: func(_ context.Context, s domain.DriverStatus) ([]domain.Driver, error) {
		require.Equal(t, domain.DriverOnline, s)
		return nil, errors.New("pool exhausted")
	}}
	rr := doRequest(t, http.MethodGet, "/drivers", "/drivers", "", handlers.NewDriverHandler(uc, nil, nil).List)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestDriverHandler_Stream(t *testing.T) {
	t.Parallel()

	uc := &stubLocator{getFn: func(_ context.Context, id string) (*domain.Driver, error) {
		if id == "ghost" {
			return nil, apperr.ErrNotFound
		}
		return &domain.Driver{ID: id}, nil
	}}

	rr := doRequest(t, http.MethodGet, "/ws/drivers/{driverID}", "/ws/drivers/d1", "", handlers.NewDriverHandler(uc, nil, nil).Stream)
	require.Equal(t, http.StatusNotFound, rr.Code)

	stream := &stubStream{}
	h := handlers.NewDriverHandler(uc, stream, nil)

	rr = doRequest(t, http.MethodGet, "/ws/drivers/{driverID}", "/ws/drivers/ghost", "", h.Stream)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, stream.served)

	rr = doRequest(t, http.MethodGet, "/ws/drivers/{driverID}", "/ws/drivers/d1", "", h.Stream)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "d1", stream.served)
}
