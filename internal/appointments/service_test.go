package appointments

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/angelmondragon/workshop-backend/internal/availability"
	"github.com/angelmondragon/workshop-backend/internal/tenants"
	"github.com/angelmondragon/workshop-backend/pkg/config"
	"github.com/angelmondragon/workshop-backend/pkg/db"
	"github.com/angelmondragon/workshop-backend/pkg/db/dbtest"
	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/workshop-backend/pkg/errors"
	"github.com/angelmondragon/workshop-backend/pkg/locks"
	"github.com/angelmondragon/workshop-backend/pkg/outbox"
	"github.com/angelmondragon/workshop-backend/pkg/pagination"
	"github.com/angelmondragon/workshop-backend/pkg/types"
)

var testScheduling = config.SchedulingConfig{
	OpeningTime:       "08:00",
	ClosingTime:       "18:00",
	Timezone:          "UTC",
	SlotStepMinutes:   30,
	DefaultDurationMn: 60,
}

type fixture struct {
	conn     *gorm.DB
	svc      *service
	tenantID uuid.UUID
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	hours, err := tenants.NewService(tenants.NewRepository(conn), testScheduling, nil)
	require.NoError(t, err)
	avail, err := availability.NewService(availability.NewRepository(conn), hours, testScheduling, nil)
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Repository:   NewRepository(conn),
		DB:           db.NewFromConn(conn),
		Outbox:       outbox.NewService(outbox.NewRepository(conn), nil),
		Availability: avail,
		Locks:        locks.NewKeyed(),
	})
	require.NoError(t, err)

	f := &fixture{
		conn:     conn,
		svc:      svc.(*service),
		tenantID: uuid.New(),
		now:      time.Date(2024, 1, 14, 12, 0, 0, 0, time.UTC),
	}
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) elevator(t *testing.T) *uuid.UUID {
	t.Helper()
	elevator := &models.Elevator{TenantID: f.tenantID, Name: "Lift 1", Status: enums.ElevatorStatusAvailable}
	require.NoError(t, f.conn.Create(elevator).Error)
	return &elevator.ID
}

func (f *fixture) events(t *testing.T, aggregateID uuid.UUID) []enums.OutboxEventType {
	t.Helper()
	rows, err := outbox.NewRepository(f.conn).ListByAggregate(context.Background(), aggregateID)
	require.NoError(t, err)
	out := make([]enums.OutboxEventType, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.EventType)
	}
	return out
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 15, hour, minute, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func TestCreateWithoutElevatorIsScheduled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ScheduledAt: at(10, 0), DurationMinutes: intPtr(60)})
	require.NoError(t, err)
	assert.Equal(t, enums.AppointmentStatusScheduled, first.Status)
	assert.True(t, first.EndsAt.Equal(at(11, 0)))

	// Customer-only bookings never block each other.
	_, err = f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ScheduledAt: at(10, 0)})
	require.NoError(t, err)

	assert.Equal(t, []enums.OutboxEventType{enums.EventAppointmentCreated}, f.events(t, first.ID))
}

func TestCreateRejectsOverlapOnSameElevator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	elevatorID := f.elevator(t)

	first, err := f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ElevatorID: elevatorID, ScheduledAt: at(10, 0), DurationMinutes: intPtr(90)})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ElevatorID: elevatorID, ScheduledAt: at(11, 0)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeSchedulingConflict))
	details, ok := pkgerrors.As(err).Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, availability.ResourceAppointment, details["resource_type"])
	assert.Equal(t, first.ID.String(), details["resource_id"])

	_, err = f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ElevatorID: elevatorID, ScheduledAt: at(11, 30)})
	require.NoError(t, err)

	other := f.elevator(t)
	_, err = f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ElevatorID: other, ScheduledAt: at(10, 30)})
	require.NoError(t, err)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, minutes := range []int{15, 480} {
		_, err := f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ScheduledAt: at(8, 0), DurationMinutes: intPtr(minutes)})
		require.NoError(t, err, "duration %d", minutes)
	}
	for _, minutes := range []int{14, 481} {
		_, err := f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ScheduledAt: at(8, 0), DurationMinutes: intPtr(minutes)})
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "duration %d", minutes)
	}

	_, err := f.svc.Create(ctx, CreateInput{TenantID: f.tenantID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	done := enums.AppointmentStatusCompleted
	_, err = f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ScheduledAt: at(8, 0), Status: &done})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	confirmed := enums.AppointmentStatusConfirmed
	out, err := f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ScheduledAt: at(8, 0), Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, enums.AppointmentStatusConfirmed, out.Status)

	missing := uuid.New()
	_, err = f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ScheduledAt: at(8, 0), CustomerID: &missing})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRescheduleOntoOwnWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	elevatorID := f.elevator(t)

	appt, err := f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ElevatorID: elevatorID, ScheduledAt: at(10, 0), DurationMinutes: intPtr(60)})
	require.NoError(t, err)
	blocker, err := f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ElevatorID: elevatorID, ScheduledAt: at(12, 0)})
	require.NoError(t, err)

	moved, err := f.svc.Reschedule(ctx, f.tenantID, appt.ID, RescheduleInput{ScheduledAt: at(10, 30), DurationMinutes: intPtr(90)})
	require.NoError(t, err)
	assert.True(t, moved.ScheduledAt.Equal(at(10, 30)))
	assert.Equal(t, 90, moved.DurationMinutes)

	_, err = f.svc.Reschedule(ctx, f.tenantID, appt.ID, RescheduleInput{ScheduledAt: at(11, 30)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeSchedulingConflict))
	details := pkgerrors.As(err).Details().(map[string]any)
	assert.Equal(t, blocker.ID.String(), details["resource_id"])

	got, err := f.svc.Get(ctx, f.tenantID, appt.ID)
	require.NoError(t, err)
	assert.True(t, got.ScheduledAt.Equal(at(10, 30)))

	assert.Equal(t, []enums.OutboxEventType{enums.EventAppointmentCreated, enums.EventAppointmentRescheduled}, f.events(t, appt.ID))
}

func TestRescheduleTerminalIsInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	appt, err := f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ScheduledAt: at(10, 0)})
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, f.tenantID, appt.ID, enums.AppointmentStatusCancelled)
	require.NoError(t, err)

	_, err = f.svc.Reschedule(ctx, f.tenantID, appt.ID, RescheduleInput{ScheduledAt: at(14, 0)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))
}

func TestUpdateIsSparse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	elevatorID := f.elevator(t)
	notes := "bring keys"
	appt, err := f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ElevatorID: elevatorID, ScheduledAt: at(9, 0), Notes: &notes})
	require.NoError(t, err)

	serviceType := "oil change"
	out, err := f.svc.Update(ctx, f.tenantID, appt.ID, UpdateInput{ServiceType: types.NullableString{Valid: true, Value: &serviceType}})
	require.NoError(t, err)
	require.NotNil(t, out.ServiceType)
	assert.Equal(t, "oil change", *out.ServiceType)
	require.NotNil(t, out.Notes)
	assert.Equal(t, "bring keys", *out.Notes)
	assert.Equal(t, elevatorID, out.ElevatorID)

	out, err = f.svc.Update(ctx, f.tenantID, appt.ID, UpdateInput{
		Notes:      types.NullableString{Valid: true},
		ElevatorID: types.NullableUUID{Valid: true},
	})
	require.NoError(t, err)
	assert.Nil(t, out.Notes)
	assert.Nil(t, out.ElevatorID)

	_, err = f.svc.Update(ctx, f.tenantID, appt.ID, UpdateInput{DurationMinutes: intPtr(500)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUpdateMovingOntoBusyElevatorConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	elevatorID := f.elevator(t)
	_, err := f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ElevatorID: elevatorID, ScheduledAt: at(9, 0)})
	require.NoError(t, err)
	floating, err := f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ScheduledAt: at(9, 30)})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.tenantID, floating.ID, UpdateInput{ElevatorID: types.NullableUUID{Valid: true, Value: elevatorID}})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeSchedulingConflict))
}

type lockLog struct {
	mu     sync.Mutex
	locked []uuid.UUID
}

type recordingRepo struct {
	Repository
	log *lockLog
}

func (r recordingRepo) WithTx(tx *gorm.DB) Repository {
	return recordingRepo{Repository: r.Repository.WithTx(tx), log: r.log}
}

func (r recordingRepo) LockElevator(ctx context.Context, tenantID, elevatorID uuid.UUID) error {
	r.log.mu.Lock()
	r.log.locked = append(r.log.locked, elevatorID)
	r.log.mu.Unlock()
	return r.Repository.LockElevator(ctx, tenantID, elevatorID)
}

func TestBookingLocksElevatorRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	log := &lockLog{}
	f.svc.repo = recordingRepo{Repository: f.svc.repo, log: log}
	elevatorID := f.elevator(t)
	other := f.elevator(t)

	floating, err := f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ScheduledAt: at(8, 0)})
	require.NoError(t, err)
	assert.Empty(t, log.locked)

	appt, err := f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ElevatorID: elevatorID, ScheduledAt: at(9, 0)})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{*elevatorID}, log.locked)

	_, err = f.svc.Update(ctx, f.tenantID, appt.ID, UpdateInput{ElevatorID: types.NullableUUID{Valid: true, Value: other}})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{*elevatorID, *other}, log.locked)

	// Notes alone do not move the booking, so no lock is needed.
	note := "bring keys"
	_, err = f.svc.Update(ctx, f.tenantID, floating.ID, UpdateInput{Notes: types.NullableString{Valid: true, Value: &note}})
	require.NoError(t, err)
	assert.Len(t, log.locked, 2)
}

func TestTransitionTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	appt, err := f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ScheduledAt: at(10, 0)})
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		seen []enums.AppointmentStatus
	)
	f.svc.OnTransition(func(_ context.Context, event TransitionEvent) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, event.To)
	})
	f.svc.OnTransition(func(context.Context, TransitionEvent) { panic("hook failure") })

	for _, next := range []enums.AppointmentStatus{
		enums.AppointmentStatusConfirmed,
		enums.AppointmentStatusInProgress,
		enums.AppointmentStatusCompleted,
	} {
		out, err := f.svc.Transition(ctx, f.tenantID, appt.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, out.Status)
	}

	_, err = f.svc.Transition(ctx, f.tenantID, appt.ID, enums.AppointmentStatusConfirmed)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))
	details := pkgerrors.As(err).Details().(map[string]string)
	assert.Equal(t, "completed", details["current"])
	assert.Equal(t, "confirmed", details["requested"])

	assert.Equal(t, []enums.AppointmentStatus{
		enums.AppointmentStatusConfirmed,
		enums.AppointmentStatusInProgress,
		enums.AppointmentStatusCompleted,
	}, seen)
	assert.Len(t, f.events(t, appt.ID), 4)

	_, err = f.svc.Transition(ctx, uuid.New(), appt.ID, enums.AppointmentStatusCancelled)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCancelledAppointmentFreesElevator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	elevatorID := f.elevator(t)
	appt, err := f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ElevatorID: elevatorID, ScheduledAt: at(10, 0)})
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, f.tenantID, appt.ID, enums.AppointmentStatusCancelled)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ElevatorID: elevatorID, ScheduledAt: at(10, 0)})
	require.NoError(t, err)
}

func TestConcurrentCreatesOnOneElevator(t *testing.T) {
	f := newFixture(t)
	elevatorID := f.elevator(t)

	var wins, conflicts atomic.Int32
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := f.svc.Create(context.Background(), CreateInput{
				TenantID:    f.tenantID,
				ElevatorID:  elevatorID,
				ScheduledAt: at(10, 15*(i%4)),
			})
			switch {
			case err == nil:
				wins.Add(1)
			case pkgerrors.IsCode(err, pkgerrors.CodeSchedulingConflict):
				conflicts.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(7), conflicts.Load())
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	elevatorID := f.elevator(t)
	_, err := f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ElevatorID: elevatorID, ScheduledAt: at(9, 0)})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ScheduledAt: at(13, 0)})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, CreateInput{TenantID: uuid.New(), ScheduledAt: at(9, 0)})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, f.tenantID, pagination.Params{}, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, all.Items, 2)
	assert.Equal(t, int64(2), all.Pagination.Total)
	assert.True(t, all.Items[0].ScheduledAt.Before(all.Items[1].ScheduledAt))

	onLift, err := f.svc.List(ctx, f.tenantID, pagination.Params{}, ListFilters{ElevatorID: elevatorID})
	require.NoError(t, err)
	assert.Len(t, onLift.Items, 1)

	from, to := at(12, 0), at(18, 0)
	afternoon, err := f.svc.List(ctx, f.tenantID, pagination.Params{}, ListFilters{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, afternoon.Items, 1)
	assert.True(t, afternoon.Items[0].ScheduledAt.Equal(at(13, 0)))

	_, err = f.svc.List(ctx, f.tenantID, pagination.Params{}, ListFilters{From: &to, To: &from})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSendDueReminders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.now = at(8, 0)

	confirmed := enums.AppointmentStatusConfirmed
	soon, err := f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ScheduledAt: at(10, 0), Status: &confirmed})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ScheduledAt: at(11, 0)})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, CreateInput{TenantID: f.tenantID, ScheduledAt: at(17, 0), Status: &confirmed})
	require.NoError(t, err)

	sent, err := f.svc.SendDueReminders(ctx, 4*time.Hour, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	got, err := f.svc.Get(ctx, f.tenantID, soon.ID)
	require.NoError(t, err)
	assert.True(t, got.ReminderSent)
	assert.Contains(t, f.events(t, soon.ID), enums.EventAppointmentReminderDue)

	sent, err = f.svc.SendDueReminders(ctx, 4*time.Hour, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}
