package parts

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/workshop-backend/pkg/db"
	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	"github.com/angelmondragon/workshop-backend/pkg/pagination"
)

type ListFilters struct {
	LowStock bool
	Search   string
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, part *models.Part) error
	Find(ctx context.Context, tenantID, partID uuid.UUID) (*models.Part, error)
	FindForUpdate(ctx context.Context, tenantID, partID uuid.UUID) (*models.Part, error)
	List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Part, int64, error)
	Update(ctx context.Context, tenantID, partID uuid.UUID, updates map[string]any) error
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

func (r *repository) Create(ctx context.Context, part *models.Part) error {
	return r.db.WithContext(ctx).Create(part).Error
}

func (r *repository) Find(ctx context.Context, tenantID, partID uuid.UUID) (*models.Part, error) {
	var part models.Part
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, partID).
		First(&part).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *repository) FindForUpdate(ctx context.Context, tenantID, partID uuid.UUID) (*models.Part, error) {
	var part models.Part
	if err := db.ForUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, partID).
		First(&part).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Part, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Part{}).Where("tenant_id = ?", tenantID)
	if filters.LowStock {
		q = q.Where("quantity < min_quantity")
	}
	if term := strings.ToLower(strings.TrimSpace(filters.Search)); term != "" {
		like := "%" + term + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ?)", like, like)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	params = params.Normalize()
	var rows []models.Part
	err := q.Order("name ASC").Offset(params.Offset()).Limit(params.Limit).Find(&rows).Error
	return rows, total, err
}

func (r *repository) Update(ctx context.Context, tenantID, partID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Part{}).
		Where("tenant_id = ? AND id = ?", tenantID, partID).
		Updates(updates).Error
}
