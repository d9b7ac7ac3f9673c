package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"service-dispatch/internal/apperr"
	"service-dispatch/internal/domain"
	"service-dispatch/internal/logx"
)

// OrderHandler serves the delivery order endpoints.
type OrderHandler struct {
	uc     DispatchUsecase
	logger logx.Logger
}

// NewOrderHandler wires a DispatchUsecase into HTTP handlers.
func NewOrderHandler(uc DispatchUsecase, logger logx.Logger) *OrderHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &OrderHandler{uc: uc, logger: logger}
}

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	o, err := h.uc.CreateOrder(r.Context(), req.toModel())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusCreated, orderToResponse(*o))
}

// Get handles GET /orders/{orderID}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.uc.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(*o))
}

// List handles GET /orders?status=&driver_id=&customer_id=&limit=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, ok := queryInt(r, "limit")
	if !ok {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid limit")
		return
	}
	f := domain.OrderFilter{
		Status:     domain.OrderStatus(q.Get("status")),
		DriverID:   q.Get("driver_id"),
		CustomerID: q.Get("customer_id"),
		OrderRef:   q.Get("order_ref"),
		Limit:      limit,
	}
	if f.Status != "" && !f.Status.Valid() {
		writeError(h.logger, w, r, http.StatusBadRequest, "invalid status")
		return
	}
	list, err := h.uc.ListOrders(r.Context(), f)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, ordersToResponse(list))
}

// AutoAssign handles POST /orders/{orderID}/auto-assign.
// No eligible driver is not a failure: the order stays pending and 202 is returned.
func (h *OrderHandler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	a, err := h.uc.AutoAssign(r.Context(), orderID)
	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, assignmentToResponse(*a))
	case errors.Is(err, apperr.ErrNoCandidate):
		writeJSON(h.logger, w, r, http.StatusAccepted, pendingResponse{
			OrderID: orderID,
			Status:  string(domain.OrderPendingAssignment),
			Message: "no eligible driver, retry scheduled",
		})
	default:
		writeServiceError(h.logger, w, r, err)
	}
}

// Assign handles POST /orders/{orderID}/assign.
func (h *OrderHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req driverRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	a, err := h.uc.Assign(r.Context(), chi.URLParam(r, "orderID"), req.DriverID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, assignmentToResponse(*a))
}

// PickUp handles POST /orders/{orderID}/pickup.
func (h *OrderHandler) PickUp(w http.ResponseWriter, r *http.Request) {
	var req driverRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	o, err := h.uc.MarkPickedUp(r.Context(), chi.URLParam(r, "orderID"), req.DriverID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(*o))
}

// InTransit handles POST /orders/{orderID}/in-transit.
func (h *OrderHandler) InTransit(w http.ResponseWriter, r *http.Request) {
	var req driverRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	o, err := h.uc.MarkInTransit(r.Context(), chi.URLParam(r, "orderID"), req.DriverID)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(*o))
}

// Deliver handles POST /orders/{orderID}/deliver.
func (h *OrderHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	var req deliverRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	o, p, err := h.uc.MarkDelivered(r.Context(), chi.URLParam(r, "orderID"), req.DriverID, req.Proof.toModel())
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	resp := deliveredResponse{Order: orderToResponse(*o)}
	if p != nil {
		pr := payoutToResponse(*p)
		resp.Payout = &pr
	}
	writeJSON(h.logger, w, r, http.StatusOK, resp)
}

// Cancel handles POST /orders/{orderID}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req cancelRequest
	if !decodeJSON(h.logger, w, r, &req) {
		return
	}
	o, err := h.uc.Cancel(r.Context(), chi.URLParam(r, "orderID"), req.Reason)
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, orderToResponse(*o))
}

// Assignments handles GET /orders/{orderID}/assignments.
func (h *OrderHandler) Assignments(w http.ResponseWriter, r *http.Request) {
	list, err := h.uc.ListAssignments(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, assignmentsToResponse(list))
}

// Payout handles GET /orders/{orderID}/payout.
func (h *OrderHandler) Payout(w http.ResponseWriter, r *http.Request) {
	p, err := h.uc.GetPayout(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, payoutToResponse(*p))
}

// Track handles GET /tracking/{trackingID}.
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	t, err := h.uc.Track(r.Context(), chi.URLParam(r, "trackingID"))
	if err != nil {
		writeServiceError(h.logger, w, r, err)
		return
	}
	writeJSON(h.logger, w, r, http.StatusOK, trackingToResponse(*t))
}
