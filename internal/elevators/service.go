package elevators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/workshop-backend/internal/availability"
	"github.com/angelmondragon/workshop-backend/pkg/db"
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

const openUsageIndex = "ux_elevator_usages_open"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type availabilityChecker interface {
	WithTx(tx *gorm.DB) availability.Service
	Duration(requested *int) (int, error)
}

// Service manages elevators and their reservation and usage records. Every
// check-then-write runs under the per-elevator lock inside one transaction.
type Service interface {
	Create(ctx context.Context, input CreateElevatorInput) (*ElevatorDTO, error)
	List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, status *enums.ElevatorStatus) (*ElevatorList, error)
	Get(ctx context.Context, tenantID, elevatorID uuid.UUID) (*ElevatorDTO, error)
	SetStatus(ctx context.Context, tenantID, elevatorID uuid.UUID, status enums.ElevatorStatus) (*ElevatorDTO, error)

	Reserve(ctx context.Context, input ReserveInput) (*ReservationDTO, error)
	ReserveWithinTx(ctx context.Context, tx *gorm.DB, input ReserveInput) (*models.ElevatorReservation, error)
	CancelReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (*ReservationDTO, error)
	LinkReservationWithinTx(ctx context.Context, tx *gorm.DB, tenantID, reservationID, serviceOrderID uuid.UUID) error
	ExpireReservations(ctx context.Context, cutoff time.Time, limit int) (int, error)

	StartUsage(ctx context.Context, input StartUsageInput) (*UsageDTO, error)
	EndUsage(ctx context.Context, input EndUsageInput) (*UsageDTO, error)
	ListUsages(ctx context.Context, tenantID, elevatorID uuid.UUID, params pagination.Params) (*UsageList, error)
}

type ServiceParams struct {
	Repository   Repository
	DB           txRunner
	Outbox       outboxPublisher
	Availability availabilityChecker
	Locks        *locks.Keyed
	Metrics      *metrics.SchedulingMetrics
	Logger       *logger.Logger
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	avail   availabilityChecker
	locks   *locks.Keyed
	metrics *metrics.SchedulingMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("elevator repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Availability == nil {
		return nil, fmt.Errorf("availability checker required")
	}
	if params.Locks == nil {
		return nil, fmt.Errorf("elevator locks required")
	}
	return &service{
		repo:    params.Repository,
		tx:      params.DB,
		outbox:  params.Outbox,
		avail:   params.Availability,
		locks:   params.Locks,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateElevatorInput) (*ElevatorDTO, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Number != nil && *input.Number < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "number must be positive")
	}
	elevator := &models.Elevator{
		TenantID: input.TenantID,
		Name:     name,
		Number:   input.Number,
		Status:   enums.ElevatorStatusAvailable,
	}
	if err := s.repo.CreateElevator(ctx, elevator); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create elevator")
	}
	return NewElevatorDTO(elevator), nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, status *enums.ElevatorStatus) (*ElevatorList, error) {
	rows, total, err := s.repo.ListElevators(ctx, tenantID, params, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list elevators")
	}
	items := make([]ElevatorDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *NewElevatorDTO(&rows[i]))
	}
	return &ElevatorList{Items: items, Pagination: pagination.NewMeta(params, total)}, nil
}

func (s *service) Get(ctx context.Context, tenantID, elevatorID uuid.UUID) (*ElevatorDTO, error) {
	elevator, err := s.repo.FindElevator(ctx, tenantID, elevatorID)
	if err != nil {
		return nil, mapFindError(err, "elevator")
	}
	return NewElevatorDTO(elevator), nil
}

// SetStatus toggles maintenance by hand. Occupancy is driven by usages only.
func (s *service) SetStatus(ctx context.Context, tenantID, elevatorID uuid.UUID, status enums.ElevatorStatus) (*ElevatorDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid elevator status %q", status))
	}
	if status == enums.ElevatorStatusOccupied {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "occupied is set by starting a usage")
	}

	var out *models.Elevator
	err := s.withElevatorLock(ctx, elevatorID, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		elevator, err := repo.LockElevator(ctx, tenantID, elevatorID)
		if err != nil {
			return mapFindError(err, "elevator")
		}
		if elevator.Status == enums.ElevatorStatusOccupied {
			if _, err := repo.FindOpenUsage(ctx, tenantID, elevatorID); err == nil {
				return pkgerrors.Transition("elevator", elevator.Status.String(), status.String())
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load open usage")
			}
		}
		if err := repo.UpdateElevatorStatus(ctx, tenantID, elevatorID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update elevator status")
		}
		elevator.Status = status
		out = elevator
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"elevator_id": elevatorID.String(), "status": status})
		s.logg.Info(logCtx, "elevator status changed")
	}
	return NewElevatorDTO(out), nil
}

func (s *service) Reserve(ctx context.Context, input ReserveInput) (*ReservationDTO, error) {
	var out *models.ElevatorReservation
	err := s.withElevatorLock(ctx, input.ElevatorID, func(tx *gorm.DB) error {
		reservation, err := s.ReserveWithinTx(ctx, tx, input)
		if err != nil {
			return err
		}
		out = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewReservationDTO(out), nil
}

// ReserveWithinTx books the window inside the caller's transaction. The caller
// must hold the elevator lock.
func (s *service) ReserveWithinTx(ctx context.Context, tx *gorm.DB, input ReserveInput) (*models.ElevatorReservation, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if input.ElevatorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "elevator id required")
	}
	duration, err := s.avail.Duration(input.DurationMinutes)
	if err != nil {
		return nil, err
	}
	start := s.now()
	if input.ScheduledStart != nil && !input.ScheduledStart.IsZero() {
		start = input.ScheduledStart.UTC()
	}
	window := availability.NewInterval(start, duration)

	if _, err := s.repo.WithTx(tx).LockElevator(ctx, input.TenantID, input.ElevatorID); err != nil {
		return nil, mapFindError(err, "elevator")
	}
	if err := s.checkReferences(ctx, tx, input.TenantID, input.ServiceOrderID, input.VehicleID, input.QuoteID); err != nil {
		return nil, err
	}

	elevatorID := input.ElevatorID
	check, err := s.avail.WithTx(tx).Check(ctx, availability.CheckQuery{
		TenantID:        input.TenantID,
		Start:           window.Start,
		DurationMinutes: duration,
		ElevatorID:      &elevatorID,
	})
	if err != nil {
		return nil, err
	}
	if !check.Available {
		return nil, s.unavailable(check.Conflict)
	}

	reservation := &models.ElevatorReservation{
		TenantID:       input.TenantID,
		ElevatorID:     input.ElevatorID,
		ServiceOrderID: input.ServiceOrderID,
		VehicleID:      input.VehicleID,
		QuoteID:        input.QuoteID,
		StartsAt:       window.Start,
		EndsAt:         window.End,
		Status:         enums.ReservationStatusActive,
		Notes:          trimmedPtr(input.Notes),
	}
	repo := s.repo.WithTx(tx)
	if err := repo.CreateReservation(ctx, reservation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventElevatorReserved,
		AggregateType: enums.AggregateElevator,
		AggregateID:   reservation.ElevatorID,
		TenantID:      reservation.TenantID,
		Actor:         outbox.ActorFromContext(ctx),
		Data: payloads.ElevatorReservedEvent{
			ReservationID:  reservation.ID,
			ElevatorID:     reservation.ElevatorID,
			TenantID:       reservation.TenantID,
			ServiceOrderID: reservation.ServiceOrderID,
			QuoteID:        reservation.QuoteID,
			StartsAt:       reservation.StartsAt,
			EndsAt:         reservation.EndsAt,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit reservation event")
	}
	return reservation, nil
}

func (s *service) CancelReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (*ReservationDTO, error) {
	var out *models.ElevatorReservation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		reservation, err := repo.FindReservation(ctx, tenantID, reservationID)
		if err != nil {
			return mapFindError(err, "reservation")
		}
		if reservation.Status != enums.ReservationStatusActive {
			return pkgerrors.Transition("reservation", reservation.Status.String(), enums.ReservationStatusCancelled.String())
		}
		if err := repo.UpdateReservation(ctx, tenantID, reservationID, map[string]any{"status": enums.ReservationStatusCancelled}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel reservation")
		}
		reservation.Status = enums.ReservationStatusCancelled
		out = reservation
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewReservationDTO(out), nil
}

// LinkReservationWithinTx attaches a reservation made during quote approval
// to the service order created on conversion.
func (s *service) LinkReservationWithinTx(ctx context.Context, tx *gorm.DB, tenantID, reservationID, serviceOrderID uuid.UUID) error {
	repo := s.repo.WithTx(tx)
	if _, err := repo.FindReservation(ctx, tenantID, reservationID); err != nil {
		return mapFindError(err, "reservation")
	}
	if err := repo.UpdateReservation(ctx, tenantID, reservationID, map[string]any{"service_order_id": serviceOrderID}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link reservation")
	}
	return nil
}

// ExpireReservations marks active reservations that ended before cutoff
// without a usage as expired and returns how many changed.
func (s *service) ExpireReservations(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	expired := 0
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.ListExpiredReservations(ctx, cutoff.UTC(), limit)
		if err != nil {
			return err
		}
		for i := range rows {
			r := rows[i]
			if err := repo.UpdateReservation(ctx, r.TenantID, r.ID, map[string]any{"status": enums.ReservationStatusExpired}); err != nil {
				return err
			}
			event := outbox.DomainEvent{
				EventType:     enums.EventReservationExpired,
				AggregateType: enums.AggregateElevator,
				AggregateID:   r.ElevatorID,
				TenantID:      r.TenantID,
				Data: payloads.ReservationExpiredEvent{
					ReservationID: r.ID,
					ElevatorID:    r.ElevatorID,
					TenantID:      r.TenantID,
					EndsAt:        r.EndsAt.UTC(),
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("expire reservations: %w", err)
	}
	return expired, nil
}

func (s *service) StartUsage(ctx context.Context, input StartUsageInput) (*UsageDTO, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	var out *models.ElevatorUsage
	err := s.withElevatorLock(ctx, input.ElevatorID, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		elevator, err := repo.LockElevator(ctx, input.TenantID, input.ElevatorID)
		if err != nil {
			return mapFindError(err, "elevator")
		}
		now := s.now()
		if elevator.Status == enums.ElevatorStatusMaintenance {
			return s.unavailable(&availability.Conflict{
				ResourceType: availability.ResourceElevator,
				ResourceID:   elevator.ID,
				ElevatorID:   elevator.ID,
				Start:        now,
			})
		}
		open, err := repo.FindOpenUsage(ctx, input.TenantID, input.ElevatorID)
		switch {
		case err == nil:
			return s.unavailable(&availability.Conflict{
				ResourceType: availability.ResourceUsage,
				ResourceID:   open.ID,
				ElevatorID:   elevator.ID,
				Start:        open.StartedAt.UTC(),
			})
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load open usage")
		}
		if err := s.checkReferences(ctx, tx, input.TenantID, input.ServiceOrderID, input.VehicleID, nil); err != nil {
			return err
		}

		if input.ReservationID != nil {
			reservation, err := repo.FindReservation(ctx, input.TenantID, *input.ReservationID)
			if err != nil {
				return mapFindError(err, "reservation")
			}
			if reservation.ElevatorID != elevator.ID {
				return pkgerrors.New(pkgerrors.CodeValidation, "reservation belongs to another elevator")
			}
			if reservation.Status != enums.ReservationStatusActive {
				return pkgerrors.Transition("reservation", reservation.Status.String(), enums.ReservationStatusFulfilled.String())
			}
			if err := repo.UpdateReservation(ctx, input.TenantID, reservation.ID, map[string]any{"status": enums.ReservationStatusFulfilled}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fulfil reservation")
			}
			if input.ServiceOrderID == nil {
				input.ServiceOrderID = reservation.ServiceOrderID
			}
			if input.VehicleID == nil {
				input.VehicleID = reservation.VehicleID
			}
		}

		usage := &models.ElevatorUsage{
			TenantID:       input.TenantID,
			ElevatorID:     elevator.ID,
			ServiceOrderID: input.ServiceOrderID,
			VehicleID:      input.VehicleID,
			ReservationID:  input.ReservationID,
			StartedAt:      now,
			Notes:          trimmedPtr(input.Notes),
		}
		if err := repo.CreateUsage(ctx, usage); err != nil {
			if db.IsUniqueViolation(err, openUsageIndex) {
				s.metrics.IncConflict(availability.ResourceUsage)
				return pkgerrors.Wrap(pkgerrors.CodeElevatorUnavailable, err, "elevator already in use")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create usage")
		}
		if err := repo.UpdateElevatorStatus(ctx, input.TenantID, elevator.ID, enums.ElevatorStatusOccupied); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark elevator occupied")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventElevatorUsageStarted,
			AggregateType: enums.AggregateElevator,
			AggregateID:   elevator.ID,
			TenantID:      input.TenantID,
			Actor:         outbox.ActorFromContext(ctx),
			Data: payloads.ElevatorUsageStartedEvent{
				UsageID:        usage.ID,
				ElevatorID:     elevator.ID,
				TenantID:       input.TenantID,
				ServiceOrderID: usage.ServiceOrderID,
				StartedAt:      usage.StartedAt,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit usage event")
		}
		out = usage
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewUsageDTO(out), nil
}

func (s *service) EndUsage(ctx context.Context, input EndUsageInput) (*UsageDTO, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	var out *models.ElevatorUsage
	err := s.withElevatorLock(ctx, input.ElevatorID, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		elevator, err := repo.LockElevator(ctx, input.TenantID, input.ElevatorID)
		if err != nil {
			return mapFindError(err, "elevator")
		}

		var usage *models.ElevatorUsage
		if input.UsageID != nil {
			usage, err = repo.FindUsage(ctx, input.TenantID, *input.UsageID)
		} else {
			usage, err = repo.FindOpenUsage(ctx, input.TenantID, elevator.ID)
		}
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeUsageNotFound, "no open usage for elevator")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load usage")
		}
		if usage.ElevatorID != elevator.ID || usage.EndedAt != nil {
			return pkgerrors.New(pkgerrors.CodeUsageNotFound, "no open usage for elevator")
		}

		ended := s.now()
		if ended.Before(usage.StartedAt) {
			ended = usage.StartedAt.UTC()
		}
		minutes := int(ended.Sub(usage.StartedAt) / time.Minute)
		notes := trimmedPtr(input.Notes)
		affected, err := repo.CloseUsage(ctx, input.TenantID, usage.ID, ended, minutes, notes)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close usage")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeUsageNotFound, "no open usage for elevator")
		}
		if elevator.Status == enums.ElevatorStatusOccupied {
			if err := repo.UpdateElevatorStatus(ctx, input.TenantID, elevator.ID, enums.ElevatorStatusAvailable); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release elevator")
			}
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventElevatorUsageEnded,
			AggregateType: enums.AggregateElevator,
			AggregateID:   elevator.ID,
			TenantID:      input.TenantID,
			Actor:         outbox.ActorFromContext(ctx),
			Data: payloads.ElevatorUsageEndedEvent{
				UsageID:         usage.ID,
				ElevatorID:      elevator.ID,
				TenantID:        input.TenantID,
				StartedAt:       usage.StartedAt.UTC(),
				EndedAt:         ended,
				DurationMinutes: minutes,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit usage event")
		}

		usage.EndedAt = &ended
		usage.DurationMinutes = &minutes
		if notes != nil {
			usage.Notes = notes
		}
		out = usage
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewUsageDTO(out), nil
}

func (s *service) ListUsages(ctx context.Context, tenantID, elevatorID uuid.UUID, params pagination.Params) (*UsageList, error) {
	if _, err := s.repo.FindElevator(ctx, tenantID, elevatorID); err != nil {
		return nil, mapFindError(err, "elevator")
	}
	rows, total, err := s.repo.ListUsages(ctx, tenantID, elevatorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list usages")
	}
	items := make([]UsageDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *NewUsageDTO(&rows[i]))
	}
	return &UsageList{Items: items, Pagination: pagination.NewMeta(params, total)}, nil
}

func (s *service) withElevatorLock(ctx context.Context, elevatorID uuid.UUID, fn func(tx *gorm.DB) error) error {
	if elevatorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "elevator id required")
	}
	release, err := s.locks.Lock(ctx, elevatorID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "acquire elevator lock")
	}
	defer release()
	return s.tx.WithTx(ctx, fn)
}

func (s *service) checkReferences(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, serviceOrderID, vehicleID, quoteID *uuid.UUID) error {
	refs := []struct {
		id    *uuid.UUID
		model any
		name  string
	}{
		{serviceOrderID, &models.ServiceOrder{}, "service order"},
		{vehicleID, &models.Vehicle{}, "vehicle"},
		{quoteID, &models.Quote{}, "quote"},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		ok, err := db.ExistsInTenant(ctx, tx, ref.model, tenantID, *ref.id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check "+ref.name)
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, ref.name+" not found")
		}
	}
	return nil
}

func (s *service) unavailable(conflict *availability.Conflict) error {
	if conflict == nil {
		return pkgerrors.New(pkgerrors.CodeElevatorUnavailable, "elevator unavailable")
	}
	s.metrics.IncConflict(conflict.ResourceType)
	return pkgerrors.New(pkgerrors.CodeElevatorUnavailable, fmt.Sprintf("elevator is blocked by %s %s", conflict.ResourceType, conflict.ResourceID)).
		WithDetails(conflict.Details())
}

func mapFindError(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	if pkgerrors.As(err) != nil {
		return err
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
