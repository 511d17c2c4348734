package db

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExistsInTenant reports whether a row with id belongs to tenantID in the
// table backing model.
func ExistsInTenant(ctx context.Context, conn *gorm.DB, model any, tenantID, id uuid.UUID) (bool, error) {
	var count int64
	err := conn.WithContext(ctx).
		Model(model).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
