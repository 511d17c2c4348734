package serviceorders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/workshop-backend/pkg/db"
	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	"github.com/angelmondragon/workshop-backend/pkg/pagination"
)

// ListFilters narrows a service order listing.
type ListFilters struct {
	Status     *enums.ServiceOrderStatus
	CustomerID *uuid.UUID
	VehicleID  *uuid.UUID
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.ServiceOrder) error
	Find(ctx context.Context, tenantID, orderID uuid.UUID) (*models.ServiceOrder, error)
	FindForUpdate(ctx context.Context, tenantID, orderID uuid.UUID) (*models.ServiceOrder, error)
	List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.ServiceOrder, int64, error)
	Update(ctx context.Context, tenantID, orderID uuid.UUID, updates map[string]any) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.ServiceOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) Find(ctx context.Context, tenantID, orderID uuid.UUID) (*models.ServiceOrder, error) {
	var order models.ServiceOrder
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, orderID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindForUpdate(ctx context.Context, tenantID, orderID uuid.UUID) (*models.ServiceOrder, error) {
	var order models.ServiceOrder
	if err := db.ForUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, orderID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.ServiceOrder, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ServiceOrder{}).Where("tenant_id = ?", tenantID)
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}
	if filters.CustomerID != nil {
		q = q.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.VehicleID != nil {
		q = q.Where("vehicle_id = ?", *filters.VehicleID)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	params = params.Normalize()
	var rows []models.ServiceOrder
	err := q.Order("created_at DESC").Offset(params.Offset()).Limit(params.Limit).Find(&rows).Error
	return rows, total, err
}

func (r *repository) Update(ctx context.Context, tenantID, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ServiceOrder{}).
		Where("tenant_id = ? AND id = ?", tenantID, orderID).
		Updates(updates).Error
}
