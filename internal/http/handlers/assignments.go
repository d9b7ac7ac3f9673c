package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"service-dispatch/internal/logx"
)

// AssignmentHandler serves driver offer endpoints.
type AssignmentHandler struct {
	uc     DispatchUsecase
	logger logx.Logger
}

func NewAssignmentHandler(uc DispatchUsecase, logger logx.Logger) *AssignmentHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &AssignmentHandler{uc: uc, logger: logger}
}

// Get handles GET /assignments/{assignmentID}.
func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.uc.GetAssignment(r.Context(), chi.URLParam(r, "assignmentID"))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, assignmentToResponse(*a))
}

// Accept handles POST /assignments/{assignmentID}/accept.
func (h *AssignmentHandler) Accept(w http.ResponseWriter, r *http.Request) {
	var req driverRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	a, err := h.uc.Accept(r.Context(), chi.URLParam(r, "assignmentID"), req.DriverID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, assignmentToResponse(*a))
}

// Reject handles POST /assignments/{assignmentID}/reject.
func (h *AssignmentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	a, err := h.uc.Reject(r.Context(), chi.URLParam(r, "assignmentID"), req.DriverID, req.Reason)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, assignmentToResponse(*a))
}

// Route handles GET /assignments/{assignmentID}/route.
func (h *AssignmentHandler) Route(w http.ResponseWriter, r *http.Request) {
	rt, err := h.uc.GetRoute(r.Context(), chi.URLParam(r, "assignmentID"))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, routeToResponse(*rt))
}
