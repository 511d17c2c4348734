package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/workshop-backend/internal/availability"
	"github.com/angelmondragon/workshop-backend/internal/customers"
	"github.com/angelmondragon/workshop-backend/internal/elevators"
	"github.com/angelmondragon/workshop-backend/internal/serviceorders"
	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/workshop-backend/pkg/errors"
	"github.com/angelmondragon/workshop-backend/pkg/locks"
	"github.com/angelmondragon/workshop-backend/pkg/logger"
	"github.com/angelmondragon/workshop-backend/pkg/metrics"
	"github.com/angelmondragon/workshop-backend/pkg/outbox"
	"github.com/angelmondragon/workshop-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/workshop-backend/pkg/pagination"
)

var (
	minEstimatedHours = decimal.RequireFromString("0.25")
	maxEstimatedHours = decimal.NewFromInt(24)
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type elevatorReserver interface {
	ReserveWithinTx(ctx context.Context, tx *gorm.DB, input elevators.ReserveInput) (*models.ElevatorReservation, error)
	LinkReservationWithinTx(ctx context.Context, tx *gorm.DB, tenantID, reservationID, serviceOrderID uuid.UUID) error
}

type orderCreator interface {
	CreateWithinTx(ctx context.Context, tx *gorm.DB, input serviceorders.CreateInput) (*models.ServiceOrder, error)
}

// Service drives a quote from draft through diagnosis and approval to a
// service order. Illegal moves fail with INVALID_TRANSITION.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*QuoteDTO, error)
	Get(ctx context.Context, tenantID, quoteID uuid.UUID) (*QuoteDTO, error)
	List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters ListFilters) (*QuoteList, error)
	AssignMechanic(ctx context.Context, input AssignMechanicInput) (*QuoteDTO, error)
	SubmitForDiagnosis(ctx context.Context, tenantID, quoteID uuid.UUID) (*QuoteDTO, error)
	CompleteDiagnosis(ctx context.Context, input DiagnosisInput) (*QuoteDTO, error)
	RequestApproval(ctx context.Context, tenantID, quoteID uuid.UUID) (*QuoteDTO, error)
	Approve(ctx context.Context, input ApproveInput) (*QuoteDTO, error)
	Reject(ctx context.Context, tenantID, quoteID uuid.UUID, reason *string) (*QuoteDTO, error)
	Convert(ctx context.Context, tenantID, quoteID uuid.UUID) (*ConvertResult, error)
}

type ServiceParams struct {
	Repository    Repository
	DB            txRunner
	Outbox        outboxPublisher
	Elevators     elevatorReserver
	ServiceOrders orderCreator
	Locks         *locks.Keyed
	Metrics       *metrics.SchedulingMetrics
	Logger        *logger.Logger
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	elevators elevatorReserver
	orders    orderCreator
	locks     *locks.Keyed
	metrics   *metrics.SchedulingMetrics
	logg      *logger.Logger
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("quote repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Elevators == nil {
		return nil, fmt.Errorf("elevator reserver required")
	}
	if params.ServiceOrders == nil {
		return nil, fmt.Errorf("service order creator required")
	}
	if params.Locks == nil {
		return nil, fmt.Errorf("elevator locks required")
	}
	return &service{
		repo:      params.Repository,
		tx:        params.DB,
		outbox:    params.Outbox,
		elevators: params.Elevators,
		orders:    params.ServiceOrders,
		locks:     params.Locks,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*QuoteDTO, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if input.CustomerID == uuid.Nil || input.VehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_id and vehicle_id are required")
	}
	var out *models.Quote
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := customers.VerifyVehicle(ctx, tx, input.TenantID, input.CustomerID, input.VehicleID); err != nil {
			return err
		}
		quote := &models.Quote{
			TenantID:   input.TenantID,
			CustomerID: input.CustomerID,
			VehicleID:  input.VehicleID,
			Status:     enums.QuoteStatusDraft,
			Notes:      trimmedPtr(input.Notes),
		}
		if err := s.repo.WithTx(tx).Create(ctx, quote); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create quote")
		}
		out = quote
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(out), nil
}

func (s *service) Get(ctx context.Context, tenantID, quoteID uuid.UUID) (*QuoteDTO, error) {
	quote, err := s.repo.Find(ctx, tenantID, quoteID)
	if err != nil {
		return nil, mapFindError(err)
	}
	return FromModel(quote), nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters ListFilters) (*QuoteList, error) {
	rows, total, err := s.repo.List(ctx, tenantID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quotes")
	}
	items := make([]QuoteDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &QuoteList{Items: items, Pagination: pagination.NewMeta(params, total)}, nil
}

func (s *service) AssignMechanic(ctx context.Context, input AssignMechanicInput) (*QuoteDTO, error) {
	var (
		out      *models.Quote
		previous *uuid.UUID
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		quote, err := repo.FindForUpdate(ctx, input.TenantID, input.QuoteID)
		if err != nil {
			return mapFindError(err)
		}
		if !quote.Status.AllowsMechanicAssignment() {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "mechanic can only be assigned before diagnosis is complete").
				WithDetails(map[string]string{"current": quote.Status.String(), "requested": "assign_mechanic"})
		}
		previous = quote.AssignedMechanicID
		if err := repo.Update(ctx, input.TenantID, quote.ID, map[string]any{"assigned_mechanic_id": input.MechanicID}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign mechanic")
		}
		quote.AssignedMechanicID = input.MechanicID
		out = quote
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.logg != nil && previous != nil {
		fields := map[string]any{
			"quote_id":          input.QuoteID.String(),
			"previous_mechanic": previous.String(),
		}
		if input.MechanicID != nil {
			fields["mechanic_id"] = input.MechanicID.String()
		}
		if reason := trimmedPtr(input.Reason); reason != nil {
			fields["reason"] = *reason
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "quote mechanic reassigned")
	}
	return FromModel(out), nil
}

func (s *service) SubmitForDiagnosis(ctx context.Context, tenantID, quoteID uuid.UUID) (*QuoteDTO, error) {
	return s.move(ctx, tenantID, quoteID, enums.QuoteStatusPendingDiagnosis, nil, nil)
}

func (s *service) CompleteDiagnosis(ctx context.Context, input DiagnosisInput) (*QuoteDTO, error) {
	category := strings.TrimSpace(input.ProblemCategory)
	description := strings.TrimSpace(input.Description)
	if category == "" || description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "problem_category and description are required")
	}
	if input.EstimatedHours.LessThan(minEstimatedHours) || input.EstimatedHours.GreaterThan(maxEstimatedHours) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "estimated_hours must be between 0.25 and 24").
			WithDetails(map[string]any{"field": "estimated_hours", "value": input.EstimatedHours.String()})
	}
	hours := input.EstimatedHours.Round(2)
	return s.move(ctx, input.TenantID, input.QuoteID, enums.QuoteStatusDiagnosisComplete, nil,
		func(_ *gorm.DB, quote *models.Quote, updates map[string]any) error {
			now := s.now()
			recommendations := trimmedPtr(input.Recommendations)
			updates["problem_category"] = category
			updates["diagnosis_notes"] = description
			updates["recommendations"] = recommendations
			updates["estimated_hours"] = hours
			updates["diagnosed_at"] = now
			quote.ProblemCategory = &category
			quote.DiagnosisNotes = &description
			quote.Recommendations = recommendations
			quote.EstimatedHours = &hours
			quote.DiagnosedAt = &now
			return nil
		})
}

func (s *service) RequestApproval(ctx context.Context, tenantID, quoteID uuid.UUID) (*QuoteDTO, error) {
	return s.move(ctx, tenantID, quoteID, enums.QuoteStatusAwaitingApproval, nil,
		func(_ *gorm.DB, quote *models.Quote, _ map[string]any) error {
			if !quote.HasDiagnosis() {
				return pkgerrors.New(pkgerrors.CodeValidation, "diagnosis must be recorded before requesting approval")
			}
			return nil
		})
}

// Approve records the approval and, when an elevator is requested, reserves
// it in the same transaction so a conflict leaves the quote untouched.
func (s *service) Approve(ctx context.Context, input ApproveInput) (*QuoteDTO, error) {
	return s.move(ctx, input.TenantID, input.QuoteID, enums.QuoteStatusApproved, input.ElevatorID,
		func(tx *gorm.DB, quote *models.Quote, updates map[string]any) error {
			now := s.now()
			if sig := trimmedPtr(input.Signature); sig != nil {
				updates["customer_signature"] = *sig
				quote.CustomerSignature = sig
			}
			updates["approved_at"] = now
			quote.ApprovedAt = &now

			if input.ElevatorID == nil {
				return nil
			}
			duration := input.DurationMinutes
			if duration == nil && quote.EstimatedHours != nil {
				d := minutesFromHours(*quote.EstimatedHours)
				duration = &d
			}
			quoteID := quote.ID
			vehicleID := quote.VehicleID
			reservation, err := s.elevators.ReserveWithinTx(ctx, tx, elevators.ReserveInput{
				TenantID:        quote.TenantID,
				ElevatorID:      *input.ElevatorID,
				QuoteID:         &quoteID,
				VehicleID:       &vehicleID,
				ScheduledStart:  input.ScheduledStart,
				DurationMinutes: duration,
			})
			if err != nil {
				return err
			}
			updates["elevator_reservation_id"] = reservation.ID
			quote.ElevatorReservationID = &reservation.ID
			return nil
		})
}

func (s *service) Reject(ctx context.Context, tenantID, quoteID uuid.UUID, reason *string) (*QuoteDTO, error) {
	return s.move(ctx, tenantID, quoteID, enums.QuoteStatusRejected, nil,
		func(_ *gorm.DB, quote *models.Quote, updates map[string]any) error {
			now := s.now()
			updates["rejected_at"] = now
			quote.RejectedAt = &now
			if r := trimmedPtr(reason); r != nil {
				updates["rejection_reason"] = *r
				quote.RejectionReason = r
			}
			return nil
		})
}

// Convert turns an approved quote into a service order and hands any
// reservation made at approval over to that order.
func (s *service) Convert(ctx context.Context, tenantID, quoteID uuid.UUID) (*ConvertResult, error) {
	var orderID uuid.UUID
	quote, err := s.move(ctx, tenantID, quoteID, enums.QuoteStatusConverted, nil,
		func(tx *gorm.DB, quote *models.Quote, updates map[string]any) error {
			id := quote.ID
			order, err := s.orders.CreateWithinTx(ctx, tx, serviceorders.CreateInput{
				TenantID:       quote.TenantID,
				CustomerID:     quote.CustomerID,
				VehicleID:      quote.VehicleID,
				QuoteID:        &id,
				Description:    quote.DiagnosisNotes,
				EstimatedHours: quote.EstimatedHours,
			})
			if err != nil {
				return err
			}
			if quote.ElevatorReservationID != nil {
				if err := s.elevators.LinkReservationWithinTx(ctx, tx, quote.TenantID, *quote.ElevatorReservationID, order.ID); err != nil {
					return err
				}
			}
			updates["service_order_id"] = order.ID
			quote.ServiceOrderID = &order.ID
			orderID = order.ID

			event := outbox.DomainEvent{
				EventType:     enums.EventQuoteConverted,
				AggregateType: enums.AggregateQuote,
				AggregateID:   quote.ID,
				TenantID:      quote.TenantID,
				Actor:         outbox.ActorFromContext(ctx),
				Data: payloads.QuoteConvertedEvent{
					QuoteID:        quote.ID,
					TenantID:       quote.TenantID,
					ServiceOrderID: order.ID,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit quote converted event")
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	return &ConvertResult{Quote: *quote, ServiceOrderID: orderID}, nil
}

type mutateFunc func(tx *gorm.DB, quote *models.Quote, updates map[string]any) error

// move applies one workflow step under a row lock. When lockElevator is set
// the elevator's in-process lock is held for the whole transaction.
func (s *service) move(ctx context.Context, tenantID, quoteID uuid.UUID, next enums.QuoteStatus, lockElevator *uuid.UUID, mutate mutateFunc) (*QuoteDTO, error) {
	if tenantID == uuid.Nil || quoteID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id and quote id required")
	}
	if lockElevator != nil {
		release, err := s.locks.Lock(ctx, *lockElevator)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "acquire elevator lock")
		}
		defer release()
	}

	var (
		out  *models.Quote
		from enums.QuoteStatus
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		quote, err := repo.FindForUpdate(ctx, tenantID, quoteID)
		if err != nil {
			return mapFindError(err)
		}
		from = quote.Status
		if !quote.Status.CanTransitionTo(next) {
			return pkgerrors.Transition("quote", quote.Status.String(), next.String())
		}
		updates := map[string]any{"status": next}
		if mutate != nil {
			if err := mutate(tx, quote, updates); err != nil {
				return err
			}
		}
		if err := repo.Update(ctx, tenantID, quoteID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote")
		}
		data := payloads.QuoteStatusChangedEvent{
			QuoteID:  quote.ID,
			TenantID: tenantID,
			From:     from,
			To:       next,
		}
		if quote.RejectionReason != nil && next == enums.QuoteStatusRejected {
			data.Reason = *quote.RejectionReason
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventQuoteStatusChanged,
			AggregateType: enums.AggregateQuote,
			AggregateID:   quote.ID,
			TenantID:      tenantID,
			Actor:         outbox.ActorFromContext(ctx),
			Data:          data,
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit quote status event")
		}
		quote.Status = next
		out = quote
		return nil
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeElevatorUnavailable) {
			s.metrics.IncConflict("quote_approval")
		}
		return nil, err
	}
	s.metrics.IncTransition("quote", next.String())
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"quote_id": quoteID.String(),
			"from":     from,
			"to":       next,
		})
		s.logg.Info(logCtx, "quote status changed")
	}
	return FromModel(out), nil
}

// minutesFromHours converts estimated hours into a bookable duration.
func minutesFromHours(hours decimal.Decimal) int {
	minutes := int(hours.Mul(decimal.NewFromInt(60)).Ceil().IntPart())
	if minutes < availability.MinDurationMinutes {
		return availability.MinDurationMinutes
	}
	if minutes > availability.MaxDurationMinutes {
		return availability.MaxDurationMinutes
	}
	return minutes
}

func mapFindError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load quote")
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
