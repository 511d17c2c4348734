package elevators

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

type repository struct {
	db *gorm.DB
}

// NewRepository binds the elevator repository to a GORM connection.
func NewRepository(conn *gorm.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateElevator(ctx context.Context, elevator *models.Elevator) error {
	return r.db.WithContext(ctx).Create(elevator).Error
}

func (r *repository) FindElevator(ctx context.Context, tenantID, elevatorID uuid.UUID) (*models.Elevator, error) {
	var elevator models.Elevator
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, elevatorID).
		First(&elevator).Error; err != nil {
		return nil, err
	}
	return &elevator, nil
}

// LockElevator loads the elevator row with a row lock held until the
// surrounding transaction ends.
func (r *repository) LockElevator(ctx context.Context, tenantID, elevatorID uuid.UUID) (*models.Elevator, error) {
	var elevator models.Elevator
	if err := db.ForUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, elevatorID).
		First(&elevator).Error; err != nil {
		return nil, err
	}
	return &elevator, nil
}

func (r *repository) ListElevators(ctx context.Context, tenantID uuid.UUID, params pagination.Params, status *enums.ElevatorStatus) ([]models.Elevator, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Elevator{}).Where("tenant_id = ?", tenantID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	params = params.Normalize()
	var rows []models.Elevator
	err := q.Order("number ASC, name ASC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&rows).Error
	return rows, total, err
}

func (r *repository) UpdateElevatorStatus(ctx context.Context, tenantID, elevatorID uuid.UUID, status enums.ElevatorStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Elevator{}).
		Where("tenant_id = ? AND id = ?", tenantID, elevatorID).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()}).Error
}

func (r *repository) CreateReservation(ctx context.Context, reservation *models.ElevatorReservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *repository) FindReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (*models.ElevatorReservation, error) {
	var reservation models.ElevatorReservation
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, reservationID).
		First(&reservation).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) UpdateReservation(ctx context.Context, tenantID, reservationID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.ElevatorReservation{}).
		Where("tenant_id = ? AND id = ?", tenantID, reservationID).
		Updates(updates).Error
}

// ListExpiredReservations returns active reservations across tenants whose
// window ended before cutoff and which no usage ever claimed.
func (r *repository) ListExpiredReservations(ctx context.Context, cutoff time.Time, limit int) ([]models.ElevatorReservation, error) {
	var rows []models.ElevatorReservation
	err := r.db.WithContext(ctx).
		Where("status = ? AND ends_at <= ?", enums.ReservationStatusActive, cutoff).
		Where("NOT EXISTS (SELECT 1 FROM elevator_usages u WHERE u.reservation_id = elevator_reservations.id)").
		Order("ends_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) CreateUsage(ctx context.Context, usage *models.ElevatorUsage) error {
	return r.db.WithContext(ctx).Create(usage).Error
}

func (r *repository) FindUsage(ctx context.Context, tenantID, usageID uuid.UUID) (*models.ElevatorUsage, error) {
	var usage models.ElevatorUsage
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, usageID).
		First(&usage).Error; err != nil {
		return nil, err
	}
	return &usage, nil
}

func (r *repository) FindOpenUsage(ctx context.Context, tenantID, elevatorID uuid.UUID) (*models.ElevatorUsage, error) {
	var usage models.ElevatorUsage
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND elevator_id = ? AND ended_at IS NULL", tenantID, elevatorID).
		First(&usage).Error; err != nil {
		return nil, err
	}
	return &usage, nil
}

// CloseUsage ends the usage only while it is still open and reports how many
// rows changed.
func (r *repository) CloseUsage(ctx context.Context, tenantID, usageID uuid.UUID, endedAt time.Time, durationMinutes int, notes *string) (int64, error) {
	updates := map[string]any{
		"ended_at":         endedAt,
		"duration_minutes": durationMinutes,
	}
	if notes != nil {
		updates["notes"] = *notes
	}
	res := r.db.WithContext(ctx).
		Model(&models.ElevatorUsage{}).
		Where("tenant_id = ? AND id = ? AND ended_at IS NULL", tenantID, usageID).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) ListUsages(ctx context.Context, tenantID, elevatorID uuid.UUID, params pagination.Params) ([]models.ElevatorUsage, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ElevatorUsage{}).
		Where("tenant_id = ? AND elevator_id = ?", tenantID, elevatorID)
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	params = params.Normalize()
	var rows []models.ElevatorUsage
	err := q.Order("started_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&rows).Error
	return rows, total, err
}
