package elevators

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	"github.com/angelmondragon/workshop-backend/pkg/pagination"
)

type ElevatorDTO struct {
	ID        uuid.UUID            `json:"id"`
	TenantID  uuid.UUID            `json:"tenant_id"`
	Name      string               `json:"name"`
	Number    *int                 `json:"number,omitempty"`
	Status    enums.ElevatorStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

type ReservationDTO struct {
	ID             uuid.UUID               `json:"id"`
	ElevatorID     uuid.UUID               `json:"elevator_id"`
	ServiceOrderID *uuid.UUID              `json:"service_order_id,omitempty"`
	VehicleID      *uuid.UUID              `json:"vehicle_id,omitempty"`
	QuoteID        *uuid.UUID              `json:"quote_id,omitempty"`
	StartsAt       time.Time               `json:"starts_at"`
	EndsAt         time.Time               `json:"ends_at"`
	Status         enums.ReservationStatus `json:"status"`
	Notes          *string                 `json:"notes,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}

type UsageDTO struct {
	ID              uuid.UUID  `json:"id"`
	ElevatorID      uuid.UUID  `json:"elevator_id"`
	ServiceOrderID  *uuid.UUID `json:"service_order_id,omitempty"`
	VehicleID       *uuid.UUID `json:"vehicle_id,omitempty"`
	ReservationID   *uuid.UUID `json:"reservation_id,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}

type ElevatorList struct {
	Items      []ElevatorDTO   `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
}

type UsageList struct {
	Items      []UsageDTO      `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
}

func NewElevatorDTO(m *models.Elevator) *ElevatorDTO {
	if m == nil {
		return nil
	}
	return &ElevatorDTO{
		ID:        m.ID,
		TenantID:  m.TenantID,
		Name:      m.Name,
		Number:    m.Number,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func NewReservationDTO(m *models.ElevatorReservation) *ReservationDTO {
	if m == nil {
		return nil
	}
	return &ReservationDTO{
		ID:             m.ID,
		ElevatorID:     m.ElevatorID,
		ServiceOrderID: m.ServiceOrderID,
		VehicleID:      m.VehicleID,
		QuoteID:        m.QuoteID,
		StartsAt:       m.StartsAt.UTC(),
		EndsAt:         m.EndsAt.UTC(),
		Status:         m.Status,
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt,
	}
}

func NewUsageDTO(m *models.ElevatorUsage) *UsageDTO {
	if m == nil {
		return nil
	}
	return &UsageDTO{
		ID:              m.ID,
		ElevatorID:      m.ElevatorID,
		ServiceOrderID:  m.ServiceOrderID,
		VehicleID:       m.VehicleID,
		ReservationID:   m.ReservationID,
		StartedAt:       m.StartedAt.UTC(),
		EndedAt:         m.EndedAt,
		DurationMinutes: m.DurationMinutes,
		Notes:           m.Notes,
	}
}

// CreateElevatorInput registers a new lift.
type CreateElevatorInput struct {
	TenantID uuid.UUID
	Name     string
	Number   *int
}

// ReserveInput books an elevator window. A nil start means now and a nil
// duration means the configured default.
type ReserveInput struct {
	TenantID        uuid.UUID
	ElevatorID      uuid.UUID
	ServiceOrderID  *uuid.UUID
	VehicleID       *uuid.UUID
	QuoteID         *uuid.UUID
	ScheduledStart  *time.Time
	DurationMinutes *int
	Notes           *string
}

type StartUsageInput struct {
	TenantID       uuid.UUID
	ElevatorID     uuid.UUID
	ServiceOrderID *uuid.UUID
	VehicleID      *uuid.UUID
	ReservationID  *uuid.UUID
	Notes          *string
}

// EndUsageInput closes UsageID, or the elevator's open usage when UsageID is nil.
type EndUsageInput struct {
	TenantID   uuid.UUID
	ElevatorID uuid.UUID
	UsageID    *uuid.UUID
	Notes      *string
}
