package customers

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	"github.com/angelmondragon/workshop-backend/pkg/pagination"
)

// Repository persists customers and their vehicles. Finders return
// gorm.ErrRecordNotFound when the row is absent.
type Repository interface {
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	FindCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error)
	ListCustomers(ctx context.Context, tenantID uuid.UUID, params pagination.Params, search string) ([]models.Customer, int64, error)
	CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error
	ListVehicles(ctx context.Context, tenantID, customerID uuid.UUID) ([]models.Vehicle, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *repository) FindCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, customerID).
		First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) ListCustomers(ctx context.Context, tenantID uuid.UUID, params pagination.Params, search string) ([]models.Customer, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Customer{}).Where("tenant_id = ?", tenantID)
	if term := strings.ToLower(strings.TrimSpace(search)); term != "" {
		like := "%" + term + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?)", like, like, like)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	params = params.Normalize()
	var rows []models.Customer
	err := q.Order("name ASC").Offset(params.Offset()).Limit(params.Limit).Find(&rows).Error
	return rows, total, err
}

func (r *repository) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

func (r *repository) ListVehicles(ctx context.Context, tenantID, customerID uuid.UUID) ([]models.Vehicle, error) {
	var rows []models.Vehicle
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
