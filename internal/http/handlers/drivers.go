package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
)

const (
	defaultNearbyRadiusKm = 5.0
	defaultHistoryLimit   = 50
)

// DriverHandler serves driver location, status and profile endpoints.
type DriverHandler struct {
	uc     LocatorUsecase
	stream DriverStream
	logger logx.Logger
}

// NewDriverHandler wires a LocatorUsecase into HTTP handlers.
// stream may be nil when live sockets are disabled.
func NewDriverHandler(uc LocatorUsecase, stream DriverStream, logger logx.Logger) *DriverHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &DriverHandler{uc: uc, stream: stream, logger: logger}
}

// UpdateLocation handles POST /drivers/{driverID}/location.
// A stale sample is answered 200 with accepted=false.
func (h *DriverHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	accepted, err := h.uc.UpdateLocation(r.Context(), chi.URLParam(r, "driverID"), req.toModel())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, locationAcceptedResponse{Accepted: accepted})
}

// SetStatus handles PUT /drivers/{driverID}/status.
func (h *DriverHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	id := chi.URLParam(r, "driverID")
	if err := h.uc.SetStatus(r.Context(), id, domain.DriverStatus(req.Status)); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	h.writeDriver(w, r, id)
}

// UpsertProfile handles PUT /drivers/{driverID}.
func (h *DriverHandler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	id := chi.URLParam(r, "driverID")
	if err := h.uc.UpsertProfile(r.Context(), id, req.Name, req.Rating); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	h.writeDriver(w, r, id)
}

// Get handles GET /drivers/{driverID}.
func (h *DriverHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeDriver(w, r, chi.URLParam(r, "driverID"))
}

func (h *DriverHandler) writeDriver(w http.ResponseWriter, r *http.Request, id string) {
	d, err := h.uc.GetDriver(r.Context(), id)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, driverToResponse(*d))
}

// List handles GET /drivers?status=online.
func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.DriverStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.DriverOnline
	}
	list, err := h.uc.DriversByStatus(r.Context(), status)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	out := make([]driverResponse, 0, len(list))
	for _, d := range list {
		out = append(out, driverToResponse(d))
	}
	writeJSON(h.logger, w, r, http.StatusOK, out)
}

// Nearby handles GET /drivers/nearby?lat=&lng=&radius_km=.
func (h *DriverHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	lat, okLat := queryFloat(r, "lat")
	lng, okLng := queryFloat(r, "lng")
	if !okLat || !okLng {
		writeError(h.logger, w, r, http.StatusBadRequest, "lat and lng are required")
		return
	}
	radius := defaultNearbyRadiusKm
	if r.URL.Query().Has("radius_km") {
		v, ok := queryFloat(r, "radius_km")
		if !ok {
			writeError(h.logger, w, r, http.StatusBadRequest, "invalid radius_km")
			return
		}
		radius = v
	}
	list, err := h.uc.FindNearby(r.Context(), domain.Point{Lat: lat, Lng: lng}, radius)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	out := make([]candidateResponse, 0, len(list))
	for _, c := range list {
		out = append(out, candidateResponse{
			DriverID:   c.DriverID,
			Rating:     c.Rating,
			DistanceKm: c.DistanceKm,
			Location:   pointDTO{Lat: c.Location.Lat, Lng: c.Location.Lng},
		})
	}
	writeJSON(h.logger, w, r, http.StatusOK, out)
}

// History handles GET /drivers/{driverID}/locations?limit=.
func (h *DriverHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid limit")
		return
	}
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	list, err := h.uc.LocationHistory(r.Context(), chi.URLParam(r, "driverID"), limit)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	out := make([]locationDTO, 0, len(list))
	for _, s := range list {
		out = append(out, sampleToResponse(s))
	}
	writeJSON(h.logger, w, r, http.StatusOK, out)
}

// Stream handles GET /ws/drivers/{driverID}.
func (h *DriverHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if h.stream == nil {
		writeError(h.logger, w, r, http.StatusNotFound, "live stream disabled")
		return
	}
	id := chi.URLParam(r, "driverID")
	if _, err := h.uc.GetDriver(r.Context(), id); err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	h.stream.ServeDriver(w, r, id)
}
