package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/workshop-backend/pkg/enums"
)

// AppointmentCreatedEvent is emitted when an appointment is booked.
type AppointmentCreatedEvent struct {
	AppointmentID   uuid.UUID               `json:"appointment_id"`
	TenantID        uuid.UUID               `json:"tenant_id"`
	CustomerID      *uuid.UUID              `json:"customer_id,omitempty"`
	ElevatorID      *uuid.UUID              `json:"elevator_id,omitempty"`
	ScheduledAt     time.Time               `json:"scheduled_at"`
	DurationMinutes int                     `json:"duration_minutes"`
	Status          enums.AppointmentStatus `json:"status"`
}

// AppointmentRescheduledEvent carries the previous and new windows.
type AppointmentRescheduledEvent struct {
	AppointmentID       uuid.UUID `json:"appointment_id"`
	TenantID            uuid.UUID `json:"tenant_id"`
	PreviousScheduledAt time.Time `json:"previous_scheduled_at"`
	PreviousDuration    int       `json:"previous_duration_minutes"`
	ScheduledAt         time.Time `json:"scheduled_at"`
	DurationMinutes     int       `json:"duration_minutes"`
}

// AppointmentStatusChangedEvent is emitted on every accepted transition.
type AppointmentStatusChangedEvent struct {
	AppointmentID uuid.UUID               `json:"appointment_id"`
	TenantID      uuid.UUID               `json:"tenant_id"`
	From          enums.AppointmentStatus `json:"from"`
	To            enums.AppointmentStatus `json:"to"`
}

// AppointmentReminderDueEvent asks the notification service to remind the customer.
type AppointmentReminderDueEvent struct {
	AppointmentID uuid.UUID  `json:"appointment_id"`
	TenantID      uuid.UUID  `json:"tenant_id"`
	CustomerID    *uuid.UUID `json:"customer_id,omitempty"`
	ScheduledAt   time.Time  `json:"scheduled_at"`
}

// ElevatorReservedEvent is emitted when a reservation window is booked.
type ElevatorReservedEvent struct {
	ReservationID  uuid.UUID  `json:"reservation_id"`
	ElevatorID     uuid.UUID  `json:"elevator_id"`
	TenantID       uuid.UUID  `json:"tenant_id"`
	ServiceOrderID *uuid.UUID `json:"service_order_id,omitempty"`
	QuoteID        *uuid.UUID `json:"quote_id,omitempty"`
	StartsAt       time.Time  `json:"starts_at"`
	EndsAt         time.Time  `json:"ends_at"`
}

// ElevatorUsageStartedEvent marks an elevator as physically occupied.
type ElevatorUsageStartedEvent struct {
	UsageID        uuid.UUID  `json:"usage_id"`
	ElevatorID     uuid.UUID  `json:"elevator_id"`
	TenantID       uuid.UUID  `json:"tenant_id"`
	ServiceOrderID *uuid.UUID `json:"service_order_id,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
}

// ElevatorUsageEndedEvent closes a usage record.
type ElevatorUsageEndedEvent struct {
	UsageID         uuid.UUID `json:"usage_id"`
	ElevatorID      uuid.UUID `json:"elevator_id"`
	TenantID        uuid.UUID `json:"tenant_id"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationMinutes int       `json:"duration_minutes"`
}

// ReservationExpiredEvent is emitted by the expiry job.
type ReservationExpiredEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	ElevatorID    uuid.UUID `json:"elevator_id"`
	TenantID      uuid.UUID `json:"tenant_id"`
	EndsAt        time.Time `json:"ends_at"`
}

// QuoteStatusChangedEvent is emitted on every quote workflow move.
type QuoteStatusChangedEvent struct {
	QuoteID  uuid.UUID         `json:"quote_id"`
	TenantID uuid.UUID         `json:"tenant_id"`
	From     enums.QuoteStatus `json:"from"`
	To       enums.QuoteStatus `json:"to"`
	Reason   string            `json:"reason,omitempty"`
}

// QuoteConvertedEvent links a quote to the service order it produced.
type QuoteConvertedEvent struct {
	QuoteID        uuid.UUID `json:"quote_id"`
	TenantID       uuid.UUID `json:"tenant_id"`
	ServiceOrderID uuid.UUID `json:"service_order_id"`
}

// ServiceOrderStatusChangedEvent is emitted on service order transitions.
type ServiceOrderStatusChangedEvent struct {
	ServiceOrderID uuid.UUID                `json:"service_order_id"`
	TenantID       uuid.UUID                `json:"tenant_id"`
	From           enums.ServiceOrderStatus `json:"from"`
	To             enums.ServiceOrderStatus `json:"to"`
}

// PartLowStockEvent fires when an adjustment drops a part below its threshold.
type PartLowStockEvent struct {
	PartID      uuid.UUID       `json:"part_id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	MinQuantity int             `json:"min_quantity"`
	CostPrice   decimal.Decimal `json:"cost_price"`
}
