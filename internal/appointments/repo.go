package appointments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/workshop-backend/pkg/db"
	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	"github.com/angelmondragon/workshop-backend/pkg/pagination"
)

// ListFilters narrows List. From and To bound scheduled_at as [From, To).
type ListFilters struct {
	From         *time.Time
	To           *time.Time
	CustomerID   *uuid.UUID
	AssignedToID *uuid.UUID
	ElevatorID   *uuid.UUID
	Status       *enums.AppointmentStatus
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, appointment *models.Appointment) error
	Find(ctx context.Context, tenantID, appointmentID uuid.UUID) (*models.Appointment, error)
	FindForUpdate(ctx context.Context, tenantID, appointmentID uuid.UUID) (*models.Appointment, error)
	LockElevator(ctx context.Context, tenantID, elevatorID uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Appointment, int64, error)
	Update(ctx context.Context, tenantID, appointmentID uuid.UUID, updates map[string]any) error
	ListDueReminders(ctx context.Context, from, to time.Time, limit int) ([]models.Appointment, error)
	MarkReminderSent(ctx context.Context, appointmentID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, appointment *models.Appointment) error {
	return r.db.WithContext(ctx).Create(appointment).Error
}

func (r *repository) Find(ctx context.Context, tenantID, appointmentID uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, appointmentID).
		First(&appointment).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *repository) FindForUpdate(ctx context.Context, tenantID, appointmentID uuid.UUID) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := db.ForUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, appointmentID).
		First(&appointment).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

// LockElevator holds a row lock on the elevator until the surrounding
// transaction ends, serializing bookings across processes.
func (r *repository) LockElevator(ctx context.Context, tenantID, elevatorID uuid.UUID) error {
	var elevator models.Elevator
	return db.ForUpdate(r.db.WithContext(ctx)).
		Select("id").
		Where("tenant_id = ? AND id = ?", tenantID, elevatorID).
		First(&elevator).Error
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters ListFilters) ([]models.Appointment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Appointment{}).Where("tenant_id = ?", tenantID)
	if filters.From != nil {
		q = q.Where("scheduled_at >= ?", filters.From.UTC())
	}
	if filters.To != nil {
		q = q.Where("scheduled_at < ?", filters.To.UTC())
	}
	if filters.CustomerID != nil {
		q = q.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.AssignedToID != nil {
		q = q.Where("assigned_to_id = ?", *filters.AssignedToID)
	}
	if filters.ElevatorID != nil {
		q = q.Where("elevator_id = ?", *filters.ElevatorID)
	}
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	params = params.Normalize()
	var rows []models.Appointment
	err := q.Order("scheduled_at ASC").
		Order("id ASC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&rows).Error
	return rows, total, err
}

func (r *repository) Update(ctx context.Context, tenantID, appointmentID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("tenant_id = ? AND id = ?", tenantID, appointmentID).
		Updates(updates).Error
}

// ListDueReminders scans every tenant for confirmed appointments starting in
// [from, to) that have not been reminded yet.
func (r *repository) ListDueReminders(ctx context.Context, from, to time.Time, limit int) ([]models.Appointment, error) {
	var rows []models.Appointment
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.AppointmentStatusConfirmed).
		Where("reminder_sent = ?", false).
		Where("scheduled_at >= ? AND scheduled_at < ?", from.UTC(), to.UTC()).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// MarkReminderSent flips the flag once; zero rows means another worker got there first.
func (r *repository) MarkReminderSent(ctx context.Context, appointmentID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND reminder_sent = ?", appointmentID, false).
		Update("reminder_sent", true)
	return res.RowsAffected, res.Error
}
