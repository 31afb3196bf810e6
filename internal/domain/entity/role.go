// Package entity contains the core business objects of the project.
package entity

import "slices"

// WorkerRole represents the kind of service a worker provides.
type WorkerRole string

const (
	// RoleTaxiDriver indicates a worker who serves traffic jam requests.
	RoleTaxiDriver WorkerRole = "taxi_driver"
	// RoleDeliveryWorker indicates a worker who serves delivery requests.
	RoleDeliveryWorker WorkerRole = "delivery_worker"
)

// String returns the string representation of the WorkerRole.
func (r WorkerRole) String() string {
	return string(r)
}

// IsValid checks if the WorkerRole is a valid value.
func (r WorkerRole) IsValid() bool {
	switch r {
	case RoleTaxiDriver, RoleDeliveryWorker:
		return true
	default:
		return false
	}
}

// Serves reports whether a worker with this role handles requests of the
// given type. Notification fan-out and worker request listing both go
// through this single mapping.
func (r WorkerRole) Serves(t RequestType) bool {
	switch r {
	case RoleTaxiDriver:
		return t == TypeTrafficJam
	case RoleDeliveryWorker:
		return t == TypeDelivery
	default:
		return false
	}
}

// WorkerRoles is a slice of WorkerRole for convenience.
type WorkerRoles []WorkerRole

// Contains checks if the roles slice contains a specific role.
func (rs WorkerRoles) Contains(role WorkerRole) bool {
	return slices.Contains(rs, role)
}

// RequestType represents the service category of a request.
type RequestType string

const (
	// TypeTrafficJam is a taxi pickup request.
	TypeTrafficJam RequestType = "traffic_jam"
	// TypeDelivery is a package delivery request.
	TypeDelivery RequestType = "delivery"
)

// String returns the string representation of the RequestType.
func (t RequestType) String() string {
	return string(t)
}

// IsValid checks if the RequestType is a valid value.
func (t RequestType) IsValid() bool {
	switch t {
	case TypeTrafficJam, TypeDelivery:
		return true
	default:
		return false
	}
}

// Label returns the human-readable form used in notification text.
func (t RequestType) Label() string {
	switch t {
	case TypeTrafficJam:
		return "Traffic Jam"
	case TypeDelivery:
		return "Delivery"
	default:
		return string(t)
	}
}

// RequestStatus represents the lifecycle state of a request.
// Cancellation is modeled as deletion, not a stored status.
type RequestStatus string

const (
	// StatusPending is the entry state; the request awaits a worker.
	StatusPending RequestStatus = "pending"
	// StatusAccepted means a worker has taken the request.
	StatusAccepted RequestStatus = "accepted"
	// StatusCompleted is the terminal state.
	StatusCompleted RequestStatus = "completed"
)

// String returns the string representation of the RequestStatus.
func (s RequestStatus) String() string {
	return string(s)
}

// IsValid checks if the RequestStatus is a valid value.
func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusCompleted:
		return true
	default:
		return false
	}
}

// sortPriority orders dashboards: accepted first, then pending, then completed.
func (s RequestStatus) sortPriority() int {
	switch s {
	case StatusAccepted:
		return 0
	case StatusPending:
		return 1
	case StatusCompleted:
		return 2
	default:
		return 3
	}
}
