package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column of outbox_events.
type OutboxAggregateType string

const (
	AggregateAppointment  OutboxAggregateType = "appointment"
	AggregateElevator     OutboxAggregateType = "elevator"
	AggregateQuote        OutboxAggregateType = "quote"
	AggregateServiceOrder OutboxAggregateType = "service_order"
	AggregatePart         OutboxAggregateType = "part"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateAppointment,
	AggregateElevator,
	AggregateQuote,
	AggregateServiceOrder,
	AggregatePart,
}

// IsValid reports whether the value matches a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type column of outbox_events.
type OutboxEventType string

const (
	EventAppointmentCreated       OutboxEventType = "appointment_created"
	EventAppointmentRescheduled   OutboxEventType = "appointment_rescheduled"
	EventAppointmentStatusChanged OutboxEventType = "appointment_status_changed"
	EventAppointmentReminderDue   OutboxEventType = "appointment_reminder_due"
	EventElevatorReserved         OutboxEventType = "elevator_reserved"
	EventElevatorUsageStarted     OutboxEventType = "elevator_usage_started"
	EventElevatorUsageEnded       OutboxEventType = "elevator_usage_ended"
	EventReservationExpired       OutboxEventType = "elevator_reservation_expired"
	EventQuoteStatusChanged       OutboxEventType = "quote_status_changed"
	EventQuoteConverted           OutboxEventType = "quote_converted"
	EventServiceOrderStatusChange OutboxEventType = "service_order_status_changed"
	EventPartLowStock             OutboxEventType = "part_low_stock"
)

var validOutboxEventTypes = []OutboxEventType{
	EventAppointmentCreated,
	EventAppointmentRescheduled,
	EventAppointmentStatusChanged,
	EventAppointmentReminderDue,
	EventElevatorReserved,
	EventElevatorUsageStarted,
	EventElevatorUsageEnded,
	EventReservationExpired,
	EventQuoteStatusChanged,
	EventQuoteConverted,
	EventServiceOrderStatusChange,
	EventPartLowStock,
}

// IsValid reports whether the value matches a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
