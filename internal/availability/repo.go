package availability

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
)

// Repository reads the rows that occupy an elevator.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindElevator(ctx context.Context, tenantID, elevatorID uuid.UUID) (*models.Elevator, error)
	ListElevatorAppointments(ctx context.Context, tenantID, elevatorID uuid.UUID, window Interval) ([]models.Appointment, error)
	ListActiveReservations(ctx context.Context, tenantID, elevatorID uuid.UUID, window Interval) ([]models.ElevatorReservation, error)
	ListUsages(ctx context.Context, tenantID, elevatorID uuid.UUID, window Interval) ([]models.ElevatorUsage, error)
}

// maxAppointmentSpan bounds how far before a window an overlapping
// appointment can start.
const maxAppointmentSpan = MaxDurationMinutes * time.Minute

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindElevator returns nil when the elevator does not exist in the tenant.
func (r *repository) FindElevator(ctx context.Context, tenantID, elevatorID uuid.UUID) (*models.Elevator, error) {
	var row models.Elevator
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, elevatorID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListElevatorAppointments narrows by start time only; callers filter exact
// overlap since the end is derived from the duration column.
func (r *repository) ListElevatorAppointments(ctx context.Context, tenantID, elevatorID uuid.UUID, window Interval) ([]models.Appointment, error) {
	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND elevator_id = ?", tenantID, elevatorID).
		Where("status IN ?", enums.ActiveAppointmentStatuses()).
		Where("scheduled_at > ?", window.Start.Add(-maxAppointmentSpan))
	if !window.Open() {
		q = q.Where("scheduled_at < ?", window.End)
	}
	var rows []models.Appointment
	err := q.Order("scheduled_at ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) ListActiveReservations(ctx context.Context, tenantID, elevatorID uuid.UUID, window Interval) ([]models.ElevatorReservation, error) {
	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND elevator_id = ?", tenantID, elevatorID).
		Where("status = ?", enums.ReservationStatusActive).
		Where("ends_at > ?", window.Start)
	if !window.Open() {
		q = q.Where("starts_at < ?", window.End)
	}
	var rows []models.ElevatorReservation
	err := q.Order("starts_at ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) ListUsages(ctx context.Context, tenantID, elevatorID uuid.UUID, window Interval) ([]models.ElevatorUsage, error) {
	q := r.db.WithContext(ctx).
		Where("tenant_id = ? AND elevator_id = ?", tenantID, elevatorID).
		Where("(ended_at IS NULL OR ended_at > ?)", window.Start)
	if !window.Open() {
		q = q.Where("started_at < ?", window.End)
	}
	var rows []models.ElevatorUsage
	err := q.Order("started_at ASC").Find(&rows).Error
	return rows, err
}
