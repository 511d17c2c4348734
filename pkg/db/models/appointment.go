package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/workshop-backend/pkg/enums"
)

// Appointment is a booked block of workshop time, optionally on an elevator.
type Appointment struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID        uuid.UUID               `gorm:"column:tenant_id;type:uuid;not null"`
	CustomerID      *uuid.UUID              `gorm:"column:customer_id;type:uuid"`
	ServiceOrderID  *uuid.UUID              `gorm:"column:service_order_id;type:uuid"`
	AssignedToID    *uuid.UUID              `gorm:"column:assigned_to_id;type:uuid"`
	ElevatorID      *uuid.UUID              `gorm:"column:elevator_id;type:uuid"`
	ScheduledAt     time.Time               `gorm:"column:scheduled_at;not null"`
	DurationMinutes int                     `gorm:"column:duration_minutes;not null"`
	ServiceType     *string                 `gorm:"column:service_type"`
	Notes           *string                 `gorm:"column:notes"`
	Status          enums.AppointmentStatus `gorm:"column:status;type:appointment_status;not null;default:'scheduled'"`
	ReminderSent    bool                    `gorm:"column:reminder_sent;not null;default:false"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *Appointment) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}

// EndsAt returns the exclusive end of the booked window.
func (a *Appointment) EndsAt() time.Time {
	return a.ScheduledAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
}
