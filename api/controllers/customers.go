package controllers

import (
	"net/http"

	"github.com/angelmondragon/workshop-backend/api/responses"
	"github.com/angelmondragon/workshop-backend/api/validators"
	"github.com/angelmondragon/workshop-backend/internal/customers"
	"github.com/angelmondragon/workshop-backend/pkg/logger"
)

type createCustomerRequest struct {
	Name  string  `json:"name" validate:"required,max=200"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

func CustomerCreate(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "customer")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}

		var payload createCustomerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.CreateCustomer(r.Context(), customers.CreateCustomerInput{
			TenantID: tenantID,
			Name:     validators.SanitizeString(payload.Name, 200),
			Email:    sanitizeOptional(payload.Email, 254),
			Phone:    sanitizeOptional(payload.Phone, 32),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, customer)
	}
}

func CustomerList(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "customer")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		search := ""
		if raw := validators.QueryString(r, "search", 100); raw != nil {
			search = *raw
		}

		list, err := svc.ListCustomers(r.Context(), tenantID, params, search)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func CustomerGet(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "customer")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.PathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.GetCustomer(r.Context(), tenantID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customer)
	}
}

type createVehicleRequest struct {
	Plate string  `json:"plate" validate:"required,max=20"`
	Make  *string `json:"make,omitempty" validate:"omitempty,max=100"`
	Model *string `json:"model,omitempty" validate:"omitempty,max=100"`
	Year  *int    `json:"year,omitempty" validate:"omitempty,min=1900,max=2100"`
}

func VehicleCreate(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "customer")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}
		customerID, err := validators.PathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createVehicleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.CreateVehicle(r.Context(), customers.CreateVehicleInput{
			TenantID:   tenantID,
			CustomerID: customerID,
			Plate:      validators.SanitizeString(payload.Plate, 20),
			Make:       sanitizeOptional(payload.Make, 100),
			Model:      sanitizeOptional(payload.Model, 100),
			Year:       payload.Year,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, vehicle)
	}
}

func VehicleList(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "customer")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}
		customerID, err := validators.PathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicles, err := svc.ListVehicles(r.Context(), tenantID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vehicles)
	}
}
