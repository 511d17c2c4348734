package tenants

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/workshop-backend/pkg/db/models"
)

// Repository persists per-tenant settings.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindSettings returns nil when the tenant never saved settings.
func (r *Repository) FindSettings(ctx context.Context, tenantID uuid.UUID) (*models.TenantSettings, error) {
	var row models.TenantSettings
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// UpsertSettings inserts or replaces the settings row.
func (r *Repository) UpsertSettings(ctx context.Context, row *models.TenantSettings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"opening_time", "closing_time", "timezone", "slot_step_minutes", "updated_at"}),
		}).
		Create(row).Error
}
