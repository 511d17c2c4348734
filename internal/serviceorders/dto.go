package serviceorders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	"github.com/angelmondragon/workshop-backend/pkg/pagination"
)

type ServiceOrderDTO struct {
	ID             uuid.UUID                `json:"id"`
	CustomerID     uuid.UUID                `json:"customer_id"`
	VehicleID      uuid.UUID                `json:"vehicle_id"`
	QuoteID        *uuid.UUID               `json:"quote_id,omitempty"`
	Status         enums.ServiceOrderStatus `json:"status"`
	Description    *string                  `json:"description,omitempty"`
	EstimatedHours *decimal.Decimal         `json:"estimated_hours,omitempty"`
	StartedAt      *time.Time               `json:"started_at,omitempty"`
	CompletedAt    *time.Time               `json:"completed_at,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

type ServiceOrderList struct {
	Items      []ServiceOrderDTO `json:"items"`
	Pagination pagination.Meta   `json:"pagination"`
}

type CreateInput struct {
	TenantID       uuid.UUID
	CustomerID     uuid.UUID
	VehicleID      uuid.UUID
	QuoteID        *uuid.UUID
	Description    *string
	EstimatedHours *decimal.Decimal
}

func FromModel(m *models.ServiceOrder) *ServiceOrderDTO {
	return &ServiceOrderDTO{
		ID:             m.ID,
		CustomerID:     m.CustomerID,
		VehicleID:      m.VehicleID,
		QuoteID:        m.QuoteID,
		Status:         m.Status,
		Description:    m.Description,
		EstimatedHours: m.EstimatedHours,
		StartedAt:      m.StartedAt,
		CompletedAt:    m.CompletedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
