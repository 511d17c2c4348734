package elevators

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	"github.com/angelmondragon/workshop-backend/pkg/pagination"
)

// Repository defines persistence for elevators, reservations and usages.
// Finders return gorm.ErrRecordNotFound when the row is absent.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateElevator(ctx context.Context, elevator *models.Elevator) error
	FindElevator(ctx context.Context, tenantID, elevatorID uuid.UUID) (*models.Elevator, error)
	LockElevator(ctx context.Context, tenantID, elevatorID uuid.UUID) (*models.Elevator, error)
	ListElevators(ctx context.Context, tenantID uuid.UUID, params pagination.Params, status *enums.ElevatorStatus) ([]models.Elevator, int64, error)
	UpdateElevatorStatus(ctx context.Context, tenantID, elevatorID uuid.UUID, status enums.ElevatorStatus) error

	CreateReservation(ctx context.Context, reservation *models.ElevatorReservation) error
	FindReservation(ctx context.Context, tenantID, reservationID uuid.UUID) (*models.ElevatorReservation, error)
	UpdateReservation(ctx context.Context, tenantID, reservationID uuid.UUID, updates map[string]any) error
	ListExpiredReservations(ctx context.Context, cutoff time.Time, limit int) ([]models.ElevatorReservation, error)

	CreateUsage(ctx context.Context, usage *models.ElevatorUsage) error
	FindUsage(ctx context.Context, tenantID, usageID uuid.UUID) (*models.ElevatorUsage, error)
	FindOpenUsage(ctx context.Context, tenantID, elevatorID uuid.UUID) (*models.ElevatorUsage, error)
	CloseUsage(ctx context.Context, tenantID, usageID uuid.UUID, endedAt time.Time, durationMinutes int, notes *string) (int64, error)
	ListUsages(ctx context.Context, tenantID, elevatorID uuid.UUID, params pagination.Params) ([]models.ElevatorUsage, int64, error)
}
