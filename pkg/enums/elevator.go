package enums

import "fmt"

// ElevatorStatus reflects the physical state of a vehicle lift.
type ElevatorStatus string

const (
	ElevatorStatusAvailable   ElevatorStatus = "available"
	ElevatorStatusOccupied    ElevatorStatus = "occupied"
	ElevatorStatusMaintenance ElevatorStatus = "maintenance"
)

var validElevatorStatuses = []ElevatorStatus{
	ElevatorStatusAvailable,
	ElevatorStatusOccupied,
	ElevatorStatusMaintenance,
}

// String implements fmt.Stringer.
func (s ElevatorStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ElevatorStatus.
func (s ElevatorStatus) IsValid() bool {
	for _, candidate := range validElevatorStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseElevatorStatus converts raw input into an ElevatorStatus.
func ParseElevatorStatus(value string) (ElevatorStatus, error) {
	for _, candidate := range validElevatorStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid elevator status %q", value)
}

// ReservationStatus tracks a booked elevator window.
type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "active"
	ReservationStatusFulfilled ReservationStatus = "fulfilled"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusExpired   ReservationStatus = "expired"
)

var validReservationStatuses = []ReservationStatus{
	ReservationStatusActive,
	ReservationStatusFulfilled,
	ReservationStatusCancelled,
	ReservationStatusExpired,
}

// String implements fmt.Stringer.
func (s ReservationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ReservationStatus.
func (s ReservationStatus) IsValid() bool {
	for _, candidate := range validReservationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}
