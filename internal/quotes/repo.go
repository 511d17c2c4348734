package quotes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/workshop-backend/pkg/db"
	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	"github.com/angelmondragon/workshop-backend/pkg/pagination"
)

type ListFilters struct {
	Status     *enums.QuoteStatus
	CustomerID *uuid.UUID
	MechanicID *uuid.UUID
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, quote *models.Quote) error
	Find(ctx context.Context, tenantID, quoteID uuid.UUID) (*models.Quote, error)
	FindForUpdate(ctx context.Context, tenantID, quoteID uuid.UUID) (*models.Quote, error)
	List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Quote, int64, error)
	Update(ctx context.Context, tenantID, quoteID uuid.UUID, updates map[string]any) error
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

func (r *repository) Create(ctx context.Context, quote *models.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *repository) Find(ctx context.Context, tenantID, quoteID uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, quoteID).
		First(&quote).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) FindForUpdate(ctx context.Context, tenantID, quoteID uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	if err := db.ForUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, quoteID).
		First(&quote).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Quote, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Quote{}).Where("tenant_id = ?", tenantID)
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}
	if filters.CustomerID != nil {
		q = q.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.MechanicID != nil {
		q = q.Where("assigned_mechanic_id = ?", *filters.MechanicID)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	params = params.Normalize()
	var rows []models.Quote
	err := q.Order("created_at DESC").Offset(params.Offset()).Limit(params.Limit).Find(&rows).Error
	return rows, total, err
}

func (r *repository) Update(ctx context.Context, tenantID, quoteID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("tenant_id = ? AND id = ?", tenantID, quoteID).
		Updates(updates).Error
}
