package enums

import "fmt"

// ServiceOrderStatus tracks the execution of approved work.
type ServiceOrderStatus string

const (
	ServiceOrderStatusOpen       ServiceOrderStatus = "open"
	ServiceOrderStatusInProgress ServiceOrderStatus = "in_progress"
	ServiceOrderStatusCompleted  ServiceOrderStatus = "completed"
	ServiceOrderStatusCancelled  ServiceOrderStatus = "cancelled"
)

var validServiceOrderStatuses = []ServiceOrderStatus{
	ServiceOrderStatusOpen,
	ServiceOrderStatusInProgress,
	ServiceOrderStatusCompleted,
	ServiceOrderStatusCancelled,
}

var serviceOrderTransitions = map[ServiceOrderStatus][]ServiceOrderStatus{
	ServiceOrderStatusOpen:       {ServiceOrderStatusInProgress, ServiceOrderStatusCancelled},
	ServiceOrderStatusInProgress: {ServiceOrderStatusCompleted, ServiceOrderStatusCancelled},
}

func (s ServiceOrderStatus) String() string {
	return string(s)
}

func (s ServiceOrderStatus) IsValid() bool {
	for _, candidate := range validServiceOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func (s ServiceOrderStatus) CanTransitionTo(next ServiceOrderStatus) bool {
	for _, candidate := range serviceOrderTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

func ParseServiceOrderStatus(value string) (ServiceOrderStatus, error) {
	for _, candidate := range validServiceOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service order status %q", value)
}
