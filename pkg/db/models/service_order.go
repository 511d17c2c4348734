package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/workshop-backend/pkg/enums"
)

// ServiceOrder tracks the execution of approved work on a vehicle.
type ServiceOrder struct {
	ID             uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID       uuid.UUID                `gorm:"column:tenant_id;type:uuid;not null"`
	CustomerID     uuid.UUID                `gorm:"column:customer_id;type:uuid;not null"`
	VehicleID      uuid.UUID                `gorm:"column:vehicle_id;type:uuid;not null"`
	QuoteID        *uuid.UUID               `gorm:"column:quote_id;type:uuid"`
	Status         enums.ServiceOrderStatus `gorm:"column:status;type:service_order_status;not null;default:'open'"`
	Description    *string                  `gorm:"column:description"`
	EstimatedHours *decimal.Decimal         `gorm:"column:estimated_hours;type:numeric(5,2)"`
	StartedAt      *time.Time               `gorm:"column:started_at"`
	CompletedAt    *time.Time               `gorm:"column:completed_at"`
	CreatedAt      time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *ServiceOrder) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}
