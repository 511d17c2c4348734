package customers

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	"github.com/angelmondragon/workshop-backend/pkg/pagination"
)

type CustomerDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type VehicleDTO struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Plate      string    `json:"plate"`
	Make       *string   `json:"make,omitempty"`
	Model      *string   `json:"model,omitempty"`
	Year       *int      `json:"year,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type CustomerList struct {
	Items      []CustomerDTO   `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
}

type CreateCustomerInput struct {
	TenantID uuid.UUID
	Name     string
	Email    *string
	Phone    *string
}

type CreateVehicleInput struct {
	TenantID   uuid.UUID
	CustomerID uuid.UUID
	Plate      string
	Make       *string
	Model      *string
	Year       *int
}

func FromCustomer(m *models.Customer) *CustomerDTO {
	return &CustomerDTO{ID: m.ID, Name: m.Name, Email: m.Email, Phone: m.Phone, CreatedAt: m.CreatedAt}
}

func FromVehicle(m *models.Vehicle) *VehicleDTO {
	return &VehicleDTO{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		Plate:      m.Plate,
		Make:       m.Make,
		Model:      m.Model,
		Year:       m.Year,
		CreatedAt:  m.CreatedAt,
	}
}
