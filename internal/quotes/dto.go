package quotes

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	"github.com/angelmondragon/workshop-backend/pkg/pagination"
)

type QuoteDTO struct {
	ID                    uuid.UUID         `json:"id"`
	CustomerID            uuid.UUID         `json:"customer_id"`
	VehicleID             uuid.UUID         `json:"vehicle_id"`
	Status                enums.QuoteStatus `json:"status"`
	AssignedMechanicID    *uuid.UUID        `json:"assigned_mechanic_id,omitempty"`
	Notes                 *string           `json:"notes,omitempty"`
	ProblemCategory       *string           `json:"problem_category,omitempty"`
	DiagnosisNotes        *string           `json:"diagnosis_notes,omitempty"`
	Recommendations       *string           `json:"recommendations,omitempty"`
	EstimatedHours        *decimal.Decimal  `json:"estimated_hours,omitempty"`
	DiagnosedAt           *time.Time        `json:"diagnosed_at,omitempty"`
	HasSignature          bool              `json:"has_signature"`
	ElevatorReservationID *uuid.UUID        `json:"elevator_reservation_id,omitempty"`
	ApprovedAt            *time.Time        `json:"approved_at,omitempty"`
	RejectedAt            *time.Time        `json:"rejected_at,omitempty"`
	RejectionReason       *string           `json:"rejection_reason,omitempty"`
	ServiceOrderID        *uuid.UUID        `json:"service_order_id,omitempty"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

type QuoteList struct {
	Items      []QuoteDTO      `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
}

func FromModel(m *models.Quote) *QuoteDTO {
	return &QuoteDTO{
		ID:                    m.ID,
		CustomerID:            m.CustomerID,
		VehicleID:             m.VehicleID,
		Status:                m.Status,
		AssignedMechanicID:    m.AssignedMechanicID,
		Notes:                 m.Notes,
		ProblemCategory:       m.ProblemCategory,
		DiagnosisNotes:        m.DiagnosisNotes,
		Recommendations:       m.Recommendations,
		EstimatedHours:        m.EstimatedHours,
		DiagnosedAt:           m.DiagnosedAt,
		HasSignature:          m.CustomerSignature != nil,
		ElevatorReservationID: m.ElevatorReservationID,
		ApprovedAt:            m.ApprovedAt,
		RejectedAt:            m.RejectedAt,
		RejectionReason:       m.RejectionReason,
		ServiceOrderID:        m.ServiceOrderID,
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

type CreateInput struct {
	TenantID   uuid.UUID
	CustomerID uuid.UUID
	VehicleID  uuid.UUID
	Notes      *string
}

// AssignMechanicInput sets or clears the diagnosing mechanic. Reason is
// recorded in the log when an existing assignment changes.
type AssignMechanicInput struct {
	TenantID   uuid.UUID
	QuoteID    uuid.UUID
	MechanicID *uuid.UUID
	Reason     *string
}

type DiagnosisInput struct {
	TenantID        uuid.UUID
	QuoteID         uuid.UUID
	ProblemCategory string
	Description     string
	Recommendations *string
	EstimatedHours  decimal.Decimal
}

// ApproveInput approves a quote. When ElevatorID is set an elevator window is
// reserved in the same transaction.
type ApproveInput struct {
	TenantID        uuid.UUID
	QuoteID         uuid.UUID
	Signature       *string
	ElevatorID      *uuid.UUID
	ScheduledStart  *time.Time
	DurationMinutes *int
}

type ConvertResult struct {
	Quote          QuoteDTO  `json:"quote"`
	ServiceOrderID uuid.UUID `json:"service_order_id"`
}
