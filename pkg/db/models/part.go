package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Part is an inventory item. Low stock is derived, never stored.
type Part struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID    uuid.UUID       `gorm:"column:tenant_id;type:uuid;not null"`
	SKU         string          `gorm:"column:sku;not null"`
	Name        string          `gorm:"column:name;not null"`
	Brand       *string         `gorm:"column:brand"`
	Description *string         `gorm:"column:description"`
	Quantity    int             `gorm:"column:quantity;not null;default:0"`
	MinQuantity int             `gorm:"column:min_quantity;not null;default:0"`
	CostPrice   decimal.Decimal `gorm:"column:cost_price;type:numeric(12,2);not null"`
	SellPrice   decimal.Decimal `gorm:"column:sell_price;type:numeric(12,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Part) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// IsLowStock reports whether the quantity fell under the reorder threshold.
func (p *Part) IsLowStock() bool {
	return p.Quantity < p.MinQuantity
}
