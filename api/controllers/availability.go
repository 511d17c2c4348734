package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/workshop-backend/api/responses"
	"github.com/angelmondragon/workshop-backend/api/validators"
	"github.com/angelmondragon/workshop-backend/internal/availability"
	pkgerrors "github.com/angelmondragon/workshop-backend/pkg/errors"
	"github.com/angelmondragon/workshop-backend/pkg/logger"
)

// availabilityRequest accepts either a calendar day ("2024-01-15") or a full
// timestamp in date. Slot search only uses the calendar day, read in the
// tenant zone for timestamps.
type availabilityRequest struct {
	Date       string     `json:"date" validate:"required"`
	Duration   *int       `json:"duration,omitempty"`
	ElevatorID *uuid.UUID `json:"elevator_id,omitempty"`
}

func (r availabilityRequest) parseDate() (time.Time, bool, error) {
	if ts, err := time.Parse(time.RFC3339, r.Date); err == nil {
		return ts, true, nil
	}
	day, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		return time.Time{}, false, pkgerrors.New(pkgerrors.CodeValidation, "date must be an ISO 8601 date or timestamp").
			WithDetails(map[string]string{"date": "is invalid"})
	}
	return day, false, nil
}

// AvailableSlots lists the candidate windows of a day with availability flags.
func AvailableSlots(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "availability")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}

		var payload availabilityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		date, exact, err := payload.parseDate()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		duration, err := svc.Duration(payload.Duration)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AvailableSlots(r.Context(), availability.SlotQuery{
			TenantID:        tenantID,
			Date:            date,
			DayOnly:         !exact,
			DurationMinutes: duration,
			ElevatorID:      payload.ElevatorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CheckAvailability answers whether the exact window starting at date is free.
func CheckAvailability(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "availability")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}

		var payload availabilityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		start, exact, err := payload.parseDate()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !exact {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date must include a time of day").
				WithDetails(map[string]string{"date": "must be a timestamp"}))
			return
		}
		duration, err := svc.Duration(payload.Duration)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Check(r.Context(), availability.CheckQuery{
			TenantID:        tenantID,
			Start:           start.UTC(),
			DurationMinutes: duration,
			ElevatorID:      payload.ElevatorID,
			WithHours:       true,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
