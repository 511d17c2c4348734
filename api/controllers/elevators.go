package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/workshop-backend/api/responses"
	"github.com/angelmondragon/workshop-backend/api/validators"
	"github.com/angelmondragon/workshop-backend/internal/elevators"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/workshop-backend/pkg/errors"
	"github.com/angelmondragon/workshop-backend/pkg/logger"
)

type createElevatorRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=100"`
	Number *int   `json:"number,omitempty" validate:"omitempty,min=1"`
}

func ElevatorCreate(svc elevators.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "elevator")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}

		var payload createElevatorRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		elevator, err := svc.Create(r.Context(), elevators.CreateElevatorInput{
			TenantID: tenantID,
			Name:     validators.SanitizeString(payload.Name, 100),
			Number:   payload.Number,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, elevator)
	}
}

func ElevatorList(svc elevators.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "elevator")
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
		var status *enums.ElevatorStatus
		if raw := validators.QueryString(r, "status", 32); raw != nil {
			parsed, err := enums.ParseElevatorStatus(*raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			status = &parsed
		}

		list, err := svc.List(r.Context(), tenantID, params, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ElevatorGet(svc elevators.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "elevator")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.PathUUID(r, "elevatorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		elevator, err := svc.Get(r.Context(), tenantID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, elevator)
	}
}

type elevatorStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ElevatorSetStatus toggles maintenance. Occupancy is driven by usages only.
func ElevatorSetStatus(svc elevators.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "elevator")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.PathUUID(r, "elevatorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload elevatorStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseElevatorStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		elevator, err := svc.SetStatus(r.Context(), tenantID, id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, elevator)
	}
}

type reserveRequest struct {
	ServiceOrderID  *uuid.UUID `json:"service_order_id,omitempty"`
	VehicleID       *uuid.UUID `json:"vehicle_id,omitempty"`
	QuoteID         *uuid.UUID `json:"quote_id,omitempty"`
	ScheduledStart  *time.Time `json:"scheduled_start,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Notes           *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// ElevatorReserve books a window on the elevator. Overlaps with any
// appointment, reservation or usage fail with ELEVATOR_UNAVAILABLE.
func ElevatorReserve(svc elevators.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "elevator")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.PathUUID(r, "elevatorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload reserveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := elevators.ReserveInput{
			TenantID:        tenantID,
			ElevatorID:      id,
			ServiceOrderID:  payload.ServiceOrderID,
			VehicleID:       payload.VehicleID,
			QuoteID:         payload.QuoteID,
			DurationMinutes: payload.DurationMinutes,
			Notes:           sanitizeOptional(payload.Notes, 2000),
		}
		if payload.ScheduledStart != nil {
			start := payload.ScheduledStart.UTC()
			input.ScheduledStart = &start
		}

		reservation, err := svc.Reserve(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, reservation)
	}
}

func ElevatorCancelReservation(svc elevators.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "elevator")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.PathUUID(r, "reservationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.CancelReservation(r.Context(), tenantID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reservation)
	}
}

type startUsageRequest struct {
	ServiceOrderID *uuid.UUID `json:"service_order_id,omitempty"`
	VehicleID      *uuid.UUID `json:"vehicle_id,omitempty"`
	ReservationID  *uuid.UUID `json:"reservation_id,omitempty"`
	Notes          *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

func ElevatorStartUsage(svc elevators.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "elevator")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.PathUUID(r, "elevatorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload startUsageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		usage, err := svc.StartUsage(r.Context(), elevators.StartUsageInput{
			TenantID:       tenantID,
			ElevatorID:     id,
			ServiceOrderID: payload.ServiceOrderID,
			VehicleID:      payload.VehicleID,
			ReservationID:  payload.ReservationID,
			Notes:          sanitizeOptional(payload.Notes, 2000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, usage)
	}
}

type endUsageRequest struct {
	UsageID *uuid.UUID `json:"usage_id,omitempty"`
	Notes   *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// ElevatorEndUsage closes the open usage. Calling it again yields
// USAGE_NOT_FOUND.
func ElevatorEndUsage(svc elevators.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "elevator")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.PathUUID(r, "elevatorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload endUsageRequest
		if err := validators.DecodeOptionalJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		usage, err := svc.EndUsage(r.Context(), elevators.EndUsageInput{
			TenantID:   tenantID,
			ElevatorID: id,
			UsageID:    payload.UsageID,
			Notes:      sanitizeOptional(payload.Notes, 2000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, usage)
	}
}

func ElevatorUsages(svc elevators.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "elevator")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.PathUUID(r, "elevatorId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListUsages(r.Context(), tenantID, id, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
