package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/workshop-backend/api/responses"
	"github.com/angelmondragon/workshop-backend/api/validators"
	"github.com/angelmondragon/workshop-backend/internal/quotes"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/workshop-backend/pkg/errors"
	"github.com/angelmondragon/workshop-backend/pkg/logger"
)

type createQuoteRequest struct {
	CustomerID uuid.UUID `json:"customer_id" validate:"required"`
	VehicleID  uuid.UUID `json:"vehicle_id" validate:"required"`
	Notes      *string   `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

func QuoteCreate(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "quote")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}

		var payload createQuoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Create(r.Context(), quotes.CreateInput{
			TenantID:   tenantID,
			CustomerID: payload.CustomerID,
			VehicleID:  payload.VehicleID,
			Notes:      sanitizeOptional(payload.Notes, 2000),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, quote)
	}
}

func QuoteList(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "quote")
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
		var filters quotes.ListFilters
		if filters.CustomerID, err = validators.QueryUUID(r, "customer_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.MechanicID, err = validators.QueryUUID(r, "mechanic_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := validators.QueryString(r, "status", 32); raw != nil {
			status, err := enums.ParseQuoteStatus(*raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}

		list, err := svc.List(r.Context(), tenantID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func QuoteGet(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return quoteAction(svc, logg, func(r *http.Request, tenantID, quoteID uuid.UUID) (any, error) {
		return svc.Get(r.Context(), tenantID, quoteID)
	})
}

func QuoteSubmitDiagnosis(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return quoteAction(svc, logg, func(r *http.Request, tenantID, quoteID uuid.UUID) (any, error) {
		return svc.SubmitForDiagnosis(r.Context(), tenantID, quoteID)
	})
}

func QuoteRequestApproval(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return quoteAction(svc, logg, func(r *http.Request, tenantID, quoteID uuid.UUID) (any, error) {
		return svc.RequestApproval(r.Context(), tenantID, quoteID)
	})
}

func QuoteConvert(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return quoteAction(svc, logg, func(r *http.Request, tenantID, quoteID uuid.UUID) (any, error) {
		return svc.Convert(r.Context(), tenantID, quoteID)
	})
}

type assignMechanicRequest struct {
	MechanicID *uuid.UUID `json:"mechanic_id"`
	Reason     *string    `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// QuoteAssignMechanic sets the diagnosing mechanic; a null mechanic_id
// clears the assignment.
func QuoteAssignMechanic(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return quoteAction(svc, logg, func(r *http.Request, tenantID, quoteID uuid.UUID) (any, error) {
		var payload assignMechanicRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		return svc.AssignMechanic(r.Context(), quotes.AssignMechanicInput{
			TenantID:   tenantID,
			QuoteID:    quoteID,
			MechanicID: payload.MechanicID,
			Reason:     sanitizeOptional(payload.Reason, 500),
		})
	})
}

type completeDiagnosisRequest struct {
	ProblemCategory string          `json:"problem_category" validate:"required,max=100"`
	Description     string          `json:"description" validate:"required,max=4000"`
	Recommendations *string         `json:"recommendations,omitempty" validate:"omitempty,max=4000"`
	EstimatedHours  decimal.Decimal `json:"estimated_hours"`
}

func QuoteCompleteDiagnosis(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return quoteAction(svc, logg, func(r *http.Request, tenantID, quoteID uuid.UUID) (any, error) {
		var payload completeDiagnosisRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			return nil, err
		}
		return svc.CompleteDiagnosis(r.Context(), quotes.DiagnosisInput{
			TenantID:        tenantID,
			QuoteID:         quoteID,
			ProblemCategory: validators.SanitizeString(payload.ProblemCategory, 100),
			Description:     validators.SanitizeString(payload.Description, 4000),
			Recommendations: sanitizeOptional(payload.Recommendations, 4000),
			EstimatedHours:  payload.EstimatedHours,
		})
	})
}

type approveQuoteRequest struct {
	Signature       *string    `json:"signature,omitempty" validate:"omitempty,max=500"`
	ElevatorID      *uuid.UUID `json:"elevator_id,omitempty"`
	ScheduledStart  *time.Time `json:"scheduled_start,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
}

// QuoteApprove approves the quote and, when elevator_id is set, reserves the
// elevator in the same transaction.
func QuoteApprove(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return quoteAction(svc, logg, func(r *http.Request, tenantID, quoteID uuid.UUID) (any, error) {
		var payload approveQuoteRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				return nil, err
			}
		}
		input := quotes.ApproveInput{
			TenantID:        tenantID,
			QuoteID:         quoteID,
			Signature:       sanitizeOptional(payload.Signature, 500),
			ElevatorID:      payload.ElevatorID,
			DurationMinutes: payload.DurationMinutes,
		}
		if payload.ScheduledStart != nil {
			start := payload.ScheduledStart.UTC()
			input.ScheduledStart = &start
		}
		return svc.Approve(r.Context(), input)
	})
}

type rejectQuoteRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

func QuoteReject(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return quoteAction(svc, logg, func(r *http.Request, tenantID, quoteID uuid.UUID) (any, error) {
		var payload rejectQuoteRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				return nil, err
			}
		}
		return svc.Reject(r.Context(), tenantID, quoteID, sanitizeOptional(payload.Reason, 500))
	})
}

// quoteAction resolves tenant and quote id before running fn.
func quoteAction(svc quotes.Service, logg *logger.Logger, fn func(r *http.Request, tenantID, quoteID uuid.UUID) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "quote")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}
		quoteID, err := validators.PathUUID(r, "quoteId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := fn(r, tenantID, quoteID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
