package models

import (
	"time"

	"github.com/google/uuid"
)

// TenantSettings overrides the workshop-wide scheduling defaults.
type TenantSettings struct {
	TenantID        uuid.UUID `gorm:"column:tenant_id;type:uuid;primaryKey"`
	OpeningTime     *string   `gorm:"column:opening_time"`
	ClosingTime     *string   `gorm:"column:closing_time"`
	Timezone        string    `gorm:"column:timezone;not null;default:'UTC'"`
	SlotStepMinutes *int      `gorm:"column:slot_step_minutes"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (TenantSettings) TableName() string { return "tenant_settings" }
