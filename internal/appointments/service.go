package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
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

// TransitionHook runs after a status change has committed.
type TransitionHook func(ctx context.Context, event TransitionEvent)

type Service interface {
	Create(ctx context.Context, input CreateInput) (*AppointmentDTO, error)
	Get(ctx context.Context, tenantID, appointmentID uuid.UUID) (*AppointmentDTO, error)
	List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters ListFilters) (*AppointmentList, error)
	Update(ctx context.Context, tenantID, appointmentID uuid.UUID, input UpdateInput) (*AppointmentDTO, error)
	Reschedule(ctx context.Context, tenantID, appointmentID uuid.UUID, input RescheduleInput) (*AppointmentDTO, error)
	Transition(ctx context.Context, tenantID, appointmentID uuid.UUID, next enums.AppointmentStatus) (*AppointmentDTO, error)
	OnTransition(hook TransitionHook)
	SendDueReminders(ctx context.Context, window time.Duration, limit int) (int, error)
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

	hooksMu sync.RWMutex
	hooks   []TransitionHook
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("appointment repository required")
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

func (s *service) OnTransition(hook TransitionHook) {
	if hook == nil {
		return
	}
	s.hooksMu.Lock()
	s.hooks = append(s.hooks, hook)
	s.hooksMu.Unlock()
}

func (s *service) Create(ctx context.Context, input CreateInput) (*AppointmentDTO, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if input.ScheduledAt.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	duration, err := s.avail.Duration(input.DurationMinutes)
	if err != nil {
		return nil, err
	}
	status := enums.AppointmentStatusScheduled
	if input.Status != nil {
		if *input.Status != enums.AppointmentStatusScheduled && *input.Status != enums.AppointmentStatusConfirmed {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial status must be scheduled or confirmed").
				WithDetails(map[string]string{"status": input.Status.String()})
		}
		status = *input.Status
	}

	appointment := &models.Appointment{
		TenantID:        input.TenantID,
		CustomerID:      input.CustomerID,
		ServiceOrderID:  input.ServiceOrderID,
		AssignedToID:    input.AssignedToID,
		ElevatorID:      input.ElevatorID,
		ScheduledAt:     input.ScheduledAt.UTC(),
		DurationMinutes: duration,
		ServiceType:     trimmedPtr(input.ServiceType),
		Notes:           trimmedPtr(input.Notes),
		Status:          status,
	}

	err = s.withLock(ctx, input.ElevatorID, func(tx *gorm.DB) error {
		if err := s.checkReferences(ctx, tx, appointment); err != nil {
			return err
		}
		if err := s.lockElevator(ctx, tx, appointment); err != nil {
			return err
		}
		if err := s.ensureFree(ctx, tx, appointment, nil); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Create(ctx, appointment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create appointment")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventAppointmentCreated,
			AggregateType: enums.AggregateAppointment,
			AggregateID:   appointment.ID,
			TenantID:      appointment.TenantID,
			Actor:         outbox.ActorFromContext(ctx),
			Data: payloads.AppointmentCreatedEvent{
				AppointmentID:   appointment.ID,
				TenantID:        appointment.TenantID,
				CustomerID:      appointment.CustomerID,
				ElevatorID:      appointment.ElevatorID,
				ScheduledAt:     appointment.ScheduledAt,
				DurationMinutes: appointment.DurationMinutes,
				Status:          appointment.Status,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit appointment event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"appointment_id": appointment.ID.String(),
			"scheduled_at":   appointment.ScheduledAt.Format(time.RFC3339),
			"duration":       appointment.DurationMinutes,
		})
		s.logg.Info(logCtx, "appointment created")
	}
	return FromModel(appointment), nil
}

func (s *service) Get(ctx context.Context, tenantID, appointmentID uuid.UUID) (*AppointmentDTO, error) {
	appointment, err := s.repo.Find(ctx, tenantID, appointmentID)
	if err != nil {
		return nil, mapFindError(err)
	}
	return FromModel(appointment), nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters ListFilters) (*AppointmentList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown appointment status")
	}
	if filters.From != nil && filters.To != nil && !filters.From.Before(*filters.To) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must be before to")
	}
	rows, total, err := s.repo.List(ctx, tenantID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list appointments")
	}
	items := make([]AppointmentDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &AppointmentList{Items: items, Pagination: pagination.NewMeta(params, total)}, nil
}

// Update applies a sparse patch. Changing the date, the duration or the
// elevator re-runs the availability check with the appointment excluded.
func (s *service) Update(ctx context.Context, tenantID, appointmentID uuid.UUID, input UpdateInput) (*AppointmentDTO, error) {
	if input.DurationMinutes != nil {
		if _, err := s.avail.Duration(input.DurationMinutes); err != nil {
			return nil, err
		}
	}
	if input.ScheduledAt != nil && input.ScheduledAt.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date cannot be empty")
	}
	return s.modify(ctx, tenantID, appointmentID, input, false)
}

func (s *service) Reschedule(ctx context.Context, tenantID, appointmentID uuid.UUID, input RescheduleInput) (*AppointmentDTO, error) {
	if input.ScheduledAt.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	if input.DurationMinutes != nil {
		if _, err := s.avail.Duration(input.DurationMinutes); err != nil {
			return nil, err
		}
	}
	at := input.ScheduledAt
	return s.modify(ctx, tenantID, appointmentID, UpdateInput{ScheduledAt: &at, DurationMinutes: input.DurationMinutes}, true)
}

func (s *service) modify(ctx context.Context, tenantID, appointmentID uuid.UUID, input UpdateInput, reschedule bool) (*AppointmentDTO, error) {
	current, err := s.repo.Find(ctx, tenantID, appointmentID)
	if err != nil {
		return nil, mapFindError(err)
	}
	target := input.ElevatorID.Resolve(current.ElevatorID)

	var (
		out     *models.Appointment
		before  models.Appointment
		moved   bool
		changed bool
	)
	err = s.withLock(ctx, target, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		row, err := repo.FindForUpdate(ctx, tenantID, appointmentID)
		if err != nil {
			return mapFindError(err)
		}
		if !input.ElevatorID.Valid && !sameID(row.ElevatorID, current.ElevatorID) {
			return pkgerrors.New(pkgerrors.CodeConflict, "appointment changed while updating, retry")
		}
		before = *row

		next := *row
		updates := map[string]any{}
		if input.CustomerID.Valid {
			next.CustomerID = input.CustomerID.Value
			updates["customer_id"] = input.CustomerID.Value
		}
		if input.ServiceOrderID.Valid {
			next.ServiceOrderID = input.ServiceOrderID.Value
			updates["service_order_id"] = input.ServiceOrderID.Value
		}
		if input.AssignedToID.Valid {
			next.AssignedToID = input.AssignedToID.Value
			updates["assigned_to_id"] = input.AssignedToID.Value
		}
		if input.ServiceType.Valid {
			next.ServiceType = trimmedPtr(input.ServiceType.Value)
			updates["service_type"] = next.ServiceType
		}
		if input.Notes.Valid {
			next.Notes = trimmedPtr(input.Notes.Value)
			updates["notes"] = next.Notes
		}
		if input.ElevatorID.Valid && !sameID(row.ElevatorID, input.ElevatorID.Value) {
			next.ElevatorID = input.ElevatorID.Value
			updates["elevator_id"] = input.ElevatorID.Value
			moved = true
		}
		if input.ScheduledAt != nil && !input.ScheduledAt.UTC().Equal(row.ScheduledAt.UTC()) {
			next.ScheduledAt = input.ScheduledAt.UTC()
			updates["scheduled_at"] = next.ScheduledAt
			moved = true
		}
		if input.DurationMinutes != nil && *input.DurationMinutes != row.DurationMinutes {
			next.DurationMinutes = *input.DurationMinutes
			updates["duration_minutes"] = next.DurationMinutes
			moved = true
		}

		if (reschedule || moved) && row.Status.IsTerminal() {
			return pkgerrors.Transition("appointment", row.Status.String(), "reschedule")
		}
		if err := s.checkReferences(ctx, tx, &next); err != nil {
			return err
		}
		if moved {
			if err := s.lockElevator(ctx, tx, &next); err != nil {
				return err
			}
			if err := s.ensureFree(ctx, tx, &next, &row.ID); err != nil {
				return err
			}
		}
		if len(updates) > 0 {
			changed = true
			if err := repo.Update(ctx, tenantID, appointmentID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update appointment")
			}
		}
		if moved && (!next.ScheduledAt.Equal(row.ScheduledAt) || next.DurationMinutes != row.DurationMinutes) {
			event := outbox.DomainEvent{
				EventType:     enums.EventAppointmentRescheduled,
				AggregateType: enums.AggregateAppointment,
				AggregateID:   row.ID,
				TenantID:      tenantID,
				Actor:         outbox.ActorFromContext(ctx),
				Data: payloads.AppointmentRescheduledEvent{
					AppointmentID:       row.ID,
					TenantID:            tenantID,
					PreviousScheduledAt: row.ScheduledAt.UTC(),
					PreviousDuration:    row.DurationMinutes,
					ScheduledAt:         next.ScheduledAt,
					DurationMinutes:     next.DurationMinutes,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit reschedule event")
			}
		}
		fresh, err := repo.Find(ctx, tenantID, appointmentID)
		if err != nil {
			return mapFindError(err)
		}
		out = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed && moved && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"appointment_id":        appointmentID.String(),
			"previous_scheduled_at": before.ScheduledAt.UTC().Format(time.RFC3339),
			"scheduled_at":          out.ScheduledAt.UTC().Format(time.RFC3339),
			"duration":              out.DurationMinutes,
		})
		s.logg.Info(logCtx, "appointment rescheduled")
	}
	return FromModel(out), nil
}

func (s *service) Transition(ctx context.Context, tenantID, appointmentID uuid.UUID, next enums.AppointmentStatus) (*AppointmentDTO, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown appointment status").
			WithDetails(map[string]string{"status": next.String()})
	}
	var (
		out  *models.Appointment
		from enums.AppointmentStatus
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		appointment, err := repo.FindForUpdate(ctx, tenantID, appointmentID)
		if err != nil {
			return mapFindError(err)
		}
		from = appointment.Status
		if !from.CanTransitionTo(next) {
			return pkgerrors.Transition("appointment", from.String(), next.String())
		}
		if err := repo.Update(ctx, tenantID, appointmentID, map[string]any{"status": next}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update appointment status")
		}
		appointment.Status = next
		event := outbox.DomainEvent{
			EventType:     enums.EventAppointmentStatusChanged,
			AggregateType: enums.AggregateAppointment,
			AggregateID:   appointment.ID,
			TenantID:      tenantID,
			Actor:         outbox.ActorFromContext(ctx),
			Data: payloads.AppointmentStatusChangedEvent{
				AppointmentID: appointment.ID,
				TenantID:      tenantID,
				From:          from,
				To:            next,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit status event")
		}
		out = appointment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition("appointment", next.String())
	dto := FromModel(out)
	s.runHooks(ctx, TransitionEvent{
		TenantID:    tenantID,
		Appointment: *dto,
		From:        from,
		To:          next,
		OccurredAt:  s.now(),
	})
	return dto, nil
}

// SendDueReminders flags confirmed appointments starting within window and
// queues one appointment_reminder_due event for each.
func (s *service) SendDueReminders(ctx context.Context, window time.Duration, limit int) (int, error) {
	if window <= 0 {
		return 0, nil
	}
	if limit <= 0 {
		limit = 100
	}
	now := s.now()
	due, err := s.repo.ListDueReminders(ctx, now, now.Add(window), limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list due reminders")
	}
	sent := 0
	for i := range due {
		appointment := due[i]
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			rows, err := s.repo.WithTx(tx).MarkReminderSent(ctx, appointment.ID)
			if err != nil {
				return err
			}
			if rows == 0 {
				return nil
			}
			sent++
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventAppointmentReminderDue,
				AggregateType: enums.AggregateAppointment,
				AggregateID:   appointment.ID,
				TenantID:      appointment.TenantID,
				Data: payloads.AppointmentReminderDueEvent{
					AppointmentID: appointment.ID,
					TenantID:      appointment.TenantID,
					CustomerID:    appointment.CustomerID,
					ScheduledAt:   appointment.ScheduledAt.UTC(),
				},
			})
		})
		if err != nil {
			return sent, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark reminder sent")
		}
	}
	return sent, nil
}

func (s *service) runHooks(ctx context.Context, event TransitionEvent) {
	s.hooksMu.RLock()
	hooks := append([]TransitionHook(nil), s.hooks...)
	s.hooksMu.RUnlock()
	for _, hook := range hooks {
		s.safeHook(ctx, hook, event)
	}
}

func (s *service) safeHook(ctx context.Context, hook TransitionHook, event TransitionEvent) {
	defer func() {
		if r := recover(); r != nil && s.logg != nil {
			logCtx := s.logg.WithField(ctx, "appointment_id", event.Appointment.ID.String())
			s.logg.Error(logCtx, "transition hook panicked", fmt.Errorf("%v", r))
		}
	}()
	hook(ctx, event)
}

func (s *service) withLock(ctx context.Context, elevatorID *uuid.UUID, fn func(tx *gorm.DB) error) error {
	if elevatorID == nil {
		return s.tx.WithTx(ctx, fn)
	}
	release, err := s.locks.Lock(ctx, *elevatorID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "acquire elevator lock")
	}
	defer release()
	return s.tx.WithTx(ctx, fn)
}

// lockElevator takes the database row lock on the booked elevator. The keyed
// mutex in withLock only covers this process.
func (s *service) lockElevator(ctx context.Context, tx *gorm.DB, appointment *models.Appointment) error {
	if appointment.ElevatorID == nil {
		return nil
	}
	err := s.repo.WithTx(tx).LockElevator(ctx, appointment.TenantID, *appointment.ElevatorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "elevator not found")
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock elevator")
	}
	return nil
}

func (s *service) ensureFree(ctx context.Context, tx *gorm.DB, appointment *models.Appointment, exclude *uuid.UUID) error {
	if appointment.Status.IsTerminal() {
		return nil
	}
	check, err := s.avail.WithTx(tx).Check(ctx, availability.CheckQuery{
		TenantID:        appointment.TenantID,
		Start:           appointment.ScheduledAt,
		DurationMinutes: appointment.DurationMinutes,
		ElevatorID:      appointment.ElevatorID,
		Exclude:         exclude,
	})
	if err != nil {
		return err
	}
	if check.Available {
		return nil
	}
	if check.Conflict == nil {
		return pkgerrors.New(pkgerrors.CodeSchedulingConflict, "requested window is not available")
	}
	s.metrics.IncConflict(check.Conflict.ResourceType)
	return pkgerrors.New(pkgerrors.CodeSchedulingConflict,
		fmt.Sprintf("requested window overlaps %s %s", check.Conflict.ResourceType, check.Conflict.ResourceID)).
		WithDetails(check.Conflict.Details())
}

func (s *service) checkReferences(ctx context.Context, tx *gorm.DB, appointment *models.Appointment) error {
	refs := []struct {
		id    *uuid.UUID
		model any
		name  string
	}{
		{appointment.CustomerID, &models.Customer{}, "customer"},
		{appointment.ServiceOrderID, &models.ServiceOrder{}, "service order"},
		{appointment.ElevatorID, &models.Elevator{}, "elevator"},
	}
	for _, ref := range refs {
		if ref.id == nil {
			continue
		}
		ok, err := db.ExistsInTenant(ctx, tx, ref.model, appointment.TenantID, *ref.id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check "+ref.name)
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, ref.name+" not found")
		}
	}
	return nil
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func mapFindError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load appointment")
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
