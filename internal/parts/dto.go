package parts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	"github.com/angelmondragon/workshop-backend/pkg/pagination"
	"github.com/angelmondragon/workshop-backend/pkg/types"
)

type PartDTO struct {
	ID          uuid.UUID       `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Brand       *string         `json:"brand,omitempty"`
	Description *string         `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	MinQuantity int             `json:"min_quantity"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	SellPrice   decimal.Decimal `json:"sell_price"`
	LowStock    bool            `json:"low_stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type PartList struct {
	Items      []PartDTO       `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
}

type CreateInput struct {
	TenantID    uuid.UUID
	SKU         string
	Name        string
	Brand       *string
	Description *string
	Quantity    int
	MinQuantity int
	CostPrice   decimal.Decimal
	SellPrice   decimal.Decimal
}

// UpdateInput is a sparse patch. Nil fields stay untouched; nullable text
// fields are cleared with an explicit blank value.
type UpdateInput struct {
	Name        *string
	Brand       types.NullableString
	Description types.NullableString
	MinQuantity *int
	CostPrice   *decimal.Decimal
	SellPrice   *decimal.Decimal
}

func FromModel(m *models.Part) *PartDTO {
	return &PartDTO{
		ID:          m.ID,
		SKU:         m.SKU,
		Name:        m.Name,
		Brand:       m.Brand,
		Description: m.Description,
		Quantity:    m.Quantity,
		MinQuantity: m.MinQuantity,
		CostPrice:   m.CostPrice,
		SellPrice:   m.SellPrice,
		LowStock:    m.IsLowStock(),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
