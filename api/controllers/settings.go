package controllers

import (
	"net/http"

	"github.com/angelmondragon/workshop-backend/api/responses"
	"github.com/angelmondragon/workshop-backend/api/validators"
	"github.com/angelmondragon/workshop-backend/internal/tenants"
	"github.com/angelmondragon/workshop-backend/pkg/logger"
)

func SettingsHoursGet(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "settings")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}

		policy, err := svc.Policy(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, policy)
	}
}

type updateHoursRequest struct {
	OpeningTime     *string `json:"opening_time,omitempty" validate:"omitempty,hhmm"`
	ClosingTime     *string `json:"closing_time,omitempty" validate:"omitempty,hhmm"`
	Timezone        string  `json:"timezone,omitempty" validate:"omitempty,max=64,timezone"`
	SlotStepMinutes *int    `json:"slot_step_minutes,omitempty" validate:"omitempty,min=5,max=240"`
}

// SettingsHoursUpdate replaces the tenant's operating hours. Omitting both
// times makes the whole day bookable; an empty timezone falls back to the
// configured default.
func SettingsHoursUpdate(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "settings")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}

		var payload updateHoursRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		policy, err := svc.UpdateHours(r.Context(), tenantID, tenants.UpdateHoursInput{
			OpeningTime:     payload.OpeningTime,
			ClosingTime:     payload.ClosingTime,
			Timezone:        validators.SanitizeString(payload.Timezone, 64),
			SlotStepMinutes: payload.SlotStepMinutes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, policy)
	}
}
