package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/workshop-backend/pkg/enums"
)

// Quote is a pre-service estimate that becomes a service order once approved.
type Quote struct {
	ID                    uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID              uuid.UUID         `gorm:"column:tenant_id;type:uuid;not null"`
	CustomerID            uuid.UUID         `gorm:"column:customer_id;type:uuid;not null"`
	VehicleID             uuid.UUID         `gorm:"column:vehicle_id;type:uuid;not null"`
	Status                enums.QuoteStatus `gorm:"column:status;type:quote_status;not null;default:'draft'"`
	AssignedMechanicID    *uuid.UUID        `gorm:"column:assigned_mechanic_id;type:uuid"`
	Notes                 *string           `gorm:"column:notes"`
	ProblemCategory       *string           `gorm:"column:problem_category"`
	DiagnosisNotes        *string           `gorm:"column:diagnosis_notes"`
	Recommendations       *string           `gorm:"column:recommendations"`
	EstimatedHours        *decimal.Decimal  `gorm:"column:estimated_hours;type:numeric(5,2)"`
	DiagnosedAt           *time.Time        `gorm:"column:diagnosed_at"`
	CustomerSignature     *string           `gorm:"column:customer_signature"`
	ElevatorReservationID *uuid.UUID        `gorm:"column:elevator_reservation_id;type:uuid"`
	ApprovedAt            *time.Time        `gorm:"column:approved_at"`
	RejectedAt            *time.Time        `gorm:"column:rejected_at"`
	RejectionReason       *string           `gorm:"column:rejection_reason"`
	ServiceOrderID        *uuid.UUID        `gorm:"column:service_order_id;type:uuid"`
	CreatedAt             time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (q *Quote) BeforeCreate(*gorm.DB) error {
	assignID(&q.ID)
	return nil
}

// HasDiagnosis reports whether the diagnosis fields have been recorded.
func (q *Quote) HasDiagnosis() bool {
	return q.DiagnosedAt != nil && q.EstimatedHours != nil
}
