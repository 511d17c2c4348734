package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/workshop-backend/pkg/db"
	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/workshop-backend/pkg/errors"
	"github.com/angelmondragon/workshop-backend/pkg/pagination"
)

const plateIndex = "ux_vehicles_tenant_plate"

type Service interface {
	CreateCustomer(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error)
	GetCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerDTO, error)
	ListCustomers(ctx context.Context, tenantID uuid.UUID, params pagination.Params, search string) (*CustomerList, error)
	CreateVehicle(ctx context.Context, input CreateVehicleInput) (*VehicleDTO, error)
	ListVehicles(ctx context.Context, tenantID, customerID uuid.UUID) ([]VehicleDTO, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	customer := &models.Customer{
		TenantID: input.TenantID,
		Name:     name,
		Email:    trimmedPtr(input.Email),
		Phone:    trimmedPtr(input.Phone),
	}
	if customer.Email != nil {
		lowered := strings.ToLower(*customer.Email)
		customer.Email = &lowered
	}
	if err := s.repo.CreateCustomer(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return FromCustomer(customer), nil
}

func (s *service) GetCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerDTO, error) {
	customer, err := s.repo.FindCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, mapFindError(err, "customer")
	}
	return FromCustomer(customer), nil
}

func (s *service) ListCustomers(ctx context.Context, tenantID uuid.UUID, params pagination.Params, search string) (*CustomerList, error) {
	rows, total, err := s.repo.ListCustomers(ctx, tenantID, params, search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	items := make([]CustomerDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromCustomer(&rows[i]))
	}
	return &CustomerList{Items: items, Pagination: pagination.NewMeta(params, total)}, nil
}

func (s *service) CreateVehicle(ctx context.Context, input CreateVehicleInput) (*VehicleDTO, error) {
	plate := strings.ToUpper(strings.TrimSpace(input.Plate))
	if plate == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plate is required")
	}
	if input.Year != nil && (*input.Year < 1900 || *input.Year > time.Now().Year()+1) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "year is out of range")
	}
	if _, err := s.repo.FindCustomer(ctx, input.TenantID, input.CustomerID); err != nil {
		return nil, mapFindError(err, "customer")
	}
	vehicle := &models.Vehicle{
		TenantID:   input.TenantID,
		CustomerID: input.CustomerID,
		Plate:      plate,
		Make:       trimmedPtr(input.Make),
		Model:      trimmedPtr(input.Model),
		Year:       input.Year,
	}
	if err := s.repo.CreateVehicle(ctx, vehicle); err != nil {
		if db.IsUniqueViolation(err, plateIndex) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a vehicle with this plate already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vehicle")
	}
	return FromVehicle(vehicle), nil
}

func (s *service) ListVehicles(ctx context.Context, tenantID, customerID uuid.UUID) ([]VehicleDTO, error) {
	if _, err := s.repo.FindCustomer(ctx, tenantID, customerID); err != nil {
		return nil, mapFindError(err, "customer")
	}
	rows, err := s.repo.ListVehicles(ctx, tenantID, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}
	items := make([]VehicleDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromVehicle(&rows[i]))
	}
	return items, nil
}

// VerifyVehicle checks that the customer exists in the tenant and owns the
// vehicle. It runs on conn so callers can use it inside a transaction.
func VerifyVehicle(ctx context.Context, conn *gorm.DB, tenantID, customerID, vehicleID uuid.UUID) error {
	ok, err := db.ExistsInTenant(ctx, conn, &models.Customer{}, tenantID, customerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check customer")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	var vehicle models.Vehicle
	err = conn.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, vehicleID).
		First(&vehicle).Error
	if err != nil {
		return mapFindError(err, "vehicle")
	}
	if vehicle.CustomerID != customerID {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle does not belong to customer")
	}
	return nil
}

func mapFindError(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+entity)
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
