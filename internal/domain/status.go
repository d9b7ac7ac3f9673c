package domain

// OrderStatus is the lifecycle status of a delivery order.
type OrderStatus string

// List of possible order statuses
const (
	OrderPendingAssignment OrderStatus = "pending_assignment"
	OrderAssigned          OrderStatus = "assigned"
	OrderPickedUp          OrderStatus = "picked_up"
	OrderInTransit         OrderStatus = "in_transit"
	OrderDelivered         OrderStatus = "delivered"
	OrderCancelled         OrderStatus = "cancelled"
	OrderFailed            OrderStatus = "failed"
)

// AssignmentStatus is the state of a single driver-to-order match.
type AssignmentStatus string

// List of possible assignment statuses
const (
	AssignmentPendingAcceptance AssignmentStatus = "pending_acceptance"
	AssignmentAccepted          AssignmentStatus = "accepted"
	AssignmentRejected          AssignmentStatus = "rejected"
	AssignmentInProgress        AssignmentStatus = "in_progress"
	AssignmentCompleted         AssignmentStatus = "completed"
	AssignmentCancelled         AssignmentStatus = "cancelled"
)

// DriverStatus is the current availability of a driver.
type DriverStatus string

// List of possible driver statuses
const (
	DriverOnline    DriverStatus = "online"
	DriverOffline   DriverStatus = "offline"
	DriverBusy      DriverStatus = "busy"
	DriverBreak     DriverStatus = "break"
	DriverAway      DriverStatus = "away"
	DriverEmergency DriverStatus = "emergency"
)

// RouteStatus is the status of a materialized delivery route.
type RouteStatus string

// List of possible route statuses
const (
	RoutePlanned    RouteStatus = "planned"
	RouteInProgress RouteStatus = "in_progress"
	RouteCompleted  RouteStatus = "completed"
	RouteCancelled  RouteStatus = "cancelled"
)

// PayoutStatus is the settlement status of a payout.
type PayoutStatus string

// List of possible payout statuses
const (
	PayoutPending    PayoutStatus = "pending"
	PayoutProcessing PayoutStatus = "processing"
	PayoutPaid       PayoutStatus = "paid"
	PayoutFailed     PayoutStatus = "failed"
)

// VehicleType is the vehicle requested for a delivery (optional).
type VehicleType string

// List of possible vehicle types
const (
	VehicleCar        VehicleType = "car"
	VehicleBike       VehicleType = "bike"
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleScooter    VehicleType = "scooter"
)

var allowedOrderStatuses = [...]OrderStatus{
	OrderPendingAssignment, OrderAssigned, OrderPickedUp, OrderInTransit,
	OrderDelivered, OrderCancelled, OrderFailed,
}

var allowedAssignmentStatuses = [...]AssignmentStatus{
	AssignmentPendingAcceptance, AssignmentAccepted, AssignmentRejected,
	AssignmentInProgress, AssignmentCompleted, AssignmentCancelled,
}

var allowedDriverStatuses = [...]DriverStatus{
	DriverOnline, DriverOffline, DriverBusy, DriverBreak, DriverAway, DriverEmergency,
}

var allowedVehicleTypes = [...]VehicleType{
	VehicleCar, VehicleBike, VehicleMotorcycle, VehicleScooter,
}

// Valid checks if the OrderStatus is valid
func (s OrderStatus) Valid() bool {
	for _, v := range allowedOrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled || s == OrderFailed
}

// Valid checks if the AssignmentStatus is valid
func (s AssignmentStatus) Valid() bool {
	for _, v := range allowedAssignmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Active reports whether the assignment still binds its order and driver.
func (s AssignmentStatus) Active() bool {
	return s == AssignmentPendingAcceptance || s == AssignmentAccepted || s == AssignmentInProgress
}

// Terminal reports whether the assignment is immutable.
func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentCompleted || s == AssignmentRejected || s == AssignmentCancelled
}

// Valid checks if the DriverStatus is valid
func (s DriverStatus) Valid() bool {
	for _, v := range allowedDriverStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Valid checks if the VehicleType is valid. Empty means "any vehicle".
func (t VehicleType) Valid() bool {
	if t == "" {
		return true
	}
	for _, v := range allowedVehicleTypes {
		if t == v {
			return true
		}
	}
	return false
}

// AllOrderStatuses returns every order status.
func AllOrderStatuses() []OrderStatus { return allowedOrderStatuses[:] }

// AllAssignmentStatuses returns every assignment status.
func AllAssignmentStatuses() []AssignmentStatus { return allowedAssignmentStatuses[:] }
