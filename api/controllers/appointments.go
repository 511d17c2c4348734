package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/workshop-backend/api/responses"
	"github.com/angelmondragon/workshop-backend/api/validators"
	"github.com/angelmondragon/workshop-backend/internal/appointments"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/workshop-backend/pkg/errors"
	"github.com/angelmondragon/workshop-backend/pkg/logger"
	"github.com/angelmondragon/workshop-backend/pkg/types"
)

type createAppointmentRequest struct {
	CustomerID     *uuid.UUID `json:"customer_id,omitempty"`
	ServiceOrderID *uuid.UUID `json:"service_order_id,omitempty"`
	AssignedToID   *uuid.UUID `json:"assigned_to_id,omitempty"`
	ElevatorID     *uuid.UUID `json:"elevator_id,omitempty"`
	Date           time.Time  `json:"date"`
	Duration       *int       `json:"duration,omitempty"`
	ServiceType    *string    `json:"service_type,omitempty" validate:"omitempty,max=100"`
	Notes          *string    `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Status         *string    `json:"status,omitempty"`
}

func (r createAppointmentRequest) toInput(tenantID uuid.UUID) (appointments.CreateInput, error) {
	if r.Date.IsZero() {
		return appointments.CreateInput{}, pkgerrors.New(pkgerrors.CodeValidation, "date is required").WithDetails(map[string]string{"date": "is required"})
	}
	input := appointments.CreateInput{
		TenantID:        tenantID,
		CustomerID:      r.CustomerID,
		ServiceOrderID:  r.ServiceOrderID,
		AssignedToID:    r.AssignedToID,
		ElevatorID:      r.ElevatorID,
		ScheduledAt:     r.Date.UTC(),
		DurationMinutes: r.Duration,
		ServiceType:     sanitizeOptional(r.ServiceType, 100),
		Notes:           sanitizeOptional(r.Notes, 2000),
	}
	if r.Status != nil {
		status, err := enums.ParseAppointmentStatus(*r.Status)
		if err != nil {
			return appointments.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		input.Status = &status
	}
	return input, nil
}

// AppointmentCreate books a new appointment. An elevator, when given, is
// checked for overlaps before the insert.
func AppointmentCreate(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "appointment")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}

		var payload createAppointmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput(tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appt, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, appt)
	}
}

func AppointmentList(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "appointment")
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
		filters, err := appointmentFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), tenantID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func appointmentFilters(r *http.Request) (appointments.ListFilters, error) {
	var (
		filters appointments.ListFilters
		err     error
	)
	if filters.From, err = validators.QueryTime(r, "from"); err != nil {
		return filters, err
	}
	if filters.To, err = validators.QueryTime(r, "to"); err != nil {
		return filters, err
	}
	if filters.From != nil && filters.To != nil && !filters.From.Before(*filters.To) {
		return filters, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to")
	}
	if filters.CustomerID, err = validators.QueryUUID(r, "customer_id"); err != nil {
		return filters, err
	}
	if filters.AssignedToID, err = validators.QueryUUID(r, "assigned_to_id"); err != nil {
		return filters, err
	}
	if filters.ElevatorID, err = validators.QueryUUID(r, "elevator_id"); err != nil {
		return filters, err
	}
	if raw := validators.QueryString(r, "status", 32); raw != nil {
		status, err := enums.ParseAppointmentStatus(*raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	return filters, nil
}

func AppointmentGet(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "appointment")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.PathUUID(r, "appointmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appt, err := svc.Get(r.Context(), tenantID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, appt)
	}
}

type updateAppointmentRequest struct {
	CustomerID     types.NullableUUID   `json:"customer_id"`
	ServiceOrderID types.NullableUUID   `json:"service_order_id"`
	AssignedToID   types.NullableUUID   `json:"assigned_to_id"`
	ElevatorID     types.NullableUUID   `json:"elevator_id"`
	Date           *time.Time           `json:"date,omitempty"`
	Duration       *int                 `json:"duration,omitempty"`
	ServiceType    types.NullableString `json:"service_type"`
	Notes          types.NullableString `json:"notes"`
}

func (r updateAppointmentRequest) toInput() appointments.UpdateInput {
	input := appointments.UpdateInput{
		CustomerID:      r.CustomerID,
		ServiceOrderID:  r.ServiceOrderID,
		AssignedToID:    r.AssignedToID,
		ElevatorID:      r.ElevatorID,
		DurationMinutes: r.Duration,
		ServiceType:     r.ServiceType,
		Notes:           r.Notes,
	}
	if r.Date != nil {
		at := r.Date.UTC()
		input.ScheduledAt = &at
	}
	return input
}

// AppointmentUpdate applies a partial update; fields absent from the body
// are left untouched.
func AppointmentUpdate(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "appointment")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.PathUUID(r, "appointmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateAppointmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appt, err := svc.Update(r.Context(), tenantID, id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, appt)
	}
}

type rescheduleRequest struct {
	Date     time.Time `json:"date"`
	Duration *int      `json:"duration,omitempty"`
}

func AppointmentReschedule(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "appointment")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.PathUUID(r, "appointmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rescheduleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Date.IsZero() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date is required").WithDetails(map[string]string{"date": "is required"}))
			return
		}

		appt, err := svc.Reschedule(r.Context(), tenantID, id, appointments.RescheduleInput{
			ScheduledAt:     payload.Date.UTC(),
			DurationMinutes: payload.Duration,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, appt)
	}
}

type appointmentTransitionRequest struct {
	Status string `json:"status" validate:"required"`
}

func AppointmentTransition(svc appointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "appointment")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.PathUUID(r, "appointmentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload appointmentTransitionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		next, err := enums.ParseAppointmentStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		appt, err := svc.Transition(r.Context(), tenantID, id, next)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, appt)
	}
}
