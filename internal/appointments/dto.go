package appointments

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	"github.com/angelmondragon/workshop-backend/pkg/pagination"
	"github.com/angelmondragon/workshop-backend/pkg/types"
)

type AppointmentDTO struct {
	ID              uuid.UUID               `json:"id"`
	TenantID        uuid.UUID               `json:"tenant_id"`
	CustomerID      *uuid.UUID              `json:"customer_id,omitempty"`
	ServiceOrderID  *uuid.UUID              `json:"service_order_id,omitempty"`
	AssignedToID    *uuid.UUID              `json:"assigned_to_id,omitempty"`
	ElevatorID      *uuid.UUID              `json:"elevator_id,omitempty"`
	ScheduledAt     time.Time               `json:"scheduled_at"`
	EndsAt          time.Time               `json:"ends_at"`
	DurationMinutes int                     `json:"duration_minutes"`
	ServiceType     *string                 `json:"service_type,omitempty"`
	Notes           *string                 `json:"notes,omitempty"`
	Status          enums.AppointmentStatus `json:"status"`
	ReminderSent    bool                    `json:"reminder_sent"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

type AppointmentList struct {
	Items      []AppointmentDTO `json:"items"`
	Pagination pagination.Meta  `json:"pagination"`
}

type CreateInput struct {
	TenantID        uuid.UUID
	CustomerID      *uuid.UUID
	ServiceOrderID  *uuid.UUID
	AssignedToID    *uuid.UUID
	ElevatorID      *uuid.UUID
	ScheduledAt     time.Time
	DurationMinutes *int
	ServiceType     *string
	Notes           *string
	Status          *enums.AppointmentStatus
}

// UpdateInput is a sparse patch. Reference and text fields distinguish
// "absent" from "explicit null"; schedule fields are plain pointers.
type UpdateInput struct {
	CustomerID      types.NullableUUID
	ServiceOrderID  types.NullableUUID
	AssignedToID    types.NullableUUID
	ElevatorID      types.NullableUUID
	ScheduledAt     *time.Time
	DurationMinutes *int
	ServiceType     types.NullableString
	Notes           types.NullableString
}

type RescheduleInput struct {
	ScheduledAt     time.Time
	DurationMinutes *int
}

// TransitionEvent is handed to hooks after a status change commits.
type TransitionEvent struct {
	TenantID    uuid.UUID
	Appointment AppointmentDTO
	From        enums.AppointmentStatus
	To          enums.AppointmentStatus
	OccurredAt  time.Time
}

func FromModel(m *models.Appointment) *AppointmentDTO {
	return &AppointmentDTO{
		ID:              m.ID,
		TenantID:        m.TenantID,
		CustomerID:      m.CustomerID,
		ServiceOrderID:  m.ServiceOrderID,
		AssignedToID:    m.AssignedToID,
		ElevatorID:      m.ElevatorID,
		ScheduledAt:     m.ScheduledAt.UTC(),
		EndsAt:          m.EndsAt().UTC(),
		DurationMinutes: m.DurationMinutes,
		ServiceType:     m.ServiceType,
		Notes:           m.Notes,
		Status:          m.Status,
		ReminderSent:    m.ReminderSent,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
