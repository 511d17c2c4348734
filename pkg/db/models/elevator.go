package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/workshop-backend/pkg/enums"
)

// Elevator is a vehicle lift with exclusive-use semantics.
type Elevator struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID  uuid.UUID            `gorm:"column:tenant_id;type:uuid;not null"`
	Name      string               `gorm:"column:name;not null"`
	Number    *int                 `gorm:"column:number"`
	Status    enums.ElevatorStatus `gorm:"column:status;type:elevator_status;not null;default:'available'"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (e *Elevator) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}

// ElevatorReservation books an elevator for [StartsAt, EndsAt).
type ElevatorReservation struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID       uuid.UUID               `gorm:"column:tenant_id;type:uuid;not null"`
	ElevatorID     uuid.UUID               `gorm:"column:elevator_id;type:uuid;not null"`
	ServiceOrderID *uuid.UUID              `gorm:"column:service_order_id;type:uuid"`
	VehicleID      *uuid.UUID              `gorm:"column:vehicle_id;type:uuid"`
	QuoteID        *uuid.UUID              `gorm:"column:quote_id;type:uuid"`
	StartsAt       time.Time               `gorm:"column:starts_at;not null"`
	EndsAt         time.Time               `gorm:"column:ends_at;not null"`
	Status         enums.ReservationStatus `gorm:"column:status;type:reservation_status;not null;default:'active'"`
	Notes          *string                 `gorm:"column:notes"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *ElevatorReservation) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}

// ElevatorUsage records physical occupancy. EndedAt is nil while the vehicle
// is still on the lift; at most one such row may exist per elevator.
type ElevatorUsage struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID        uuid.UUID  `gorm:"column:tenant_id;type:uuid;not null"`
	ElevatorID      uuid.UUID  `gorm:"column:elevator_id;type:uuid;not null"`
	ServiceOrderID  *uuid.UUID `gorm:"column:service_order_id;type:uuid"`
	VehicleID       *uuid.UUID `gorm:"column:vehicle_id;type:uuid"`
	ReservationID   *uuid.UUID `gorm:"column:reservation_id;type:uuid"`
	StartedAt       time.Time  `gorm:"column:started_at;not null"`
	EndedAt         *time.Time `gorm:"column:ended_at"`
	DurationMinutes *int       `gorm:"column:duration_minutes"`
	Notes           *string    `gorm:"column:notes"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (u *ElevatorUsage) BeforeCreate(*gorm.DB) error {
	assignID(&u.ID)
	return nil
}
