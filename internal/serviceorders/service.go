package serviceorders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/workshop-backend/internal/customers"
	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/workshop-backend/pkg/errors"
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

type Service interface {
	Create(ctx context.Context, input CreateInput) (*ServiceOrderDTO, error)
	CreateWithinTx(ctx context.Context, tx *gorm.DB, input CreateInput) (*models.ServiceOrder, error)
	Get(ctx context.Context, tenantID, orderID uuid.UUID) (*ServiceOrderDTO, error)
	List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters ListFilters) (*ServiceOrderList, error)
	Transition(ctx context.Context, tenantID, orderID uuid.UUID, next enums.ServiceOrderStatus) (*ServiceOrderDTO, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	metrics *metrics.SchedulingMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(repo Repository, tx txRunner, outbox outboxPublisher, m *metrics.SchedulingMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("service order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  outbox,
		metrics: m,
		logg:    logg,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ServiceOrderDTO, error) {
	var out *models.ServiceOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.CreateWithinTx(ctx, tx, input)
		if err != nil {
			return err
		}
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(out), nil
}

// CreateWithinTx inserts an open service order inside the caller's
// transaction after checking the customer owns the vehicle.
func (s *service) CreateWithinTx(ctx context.Context, tx *gorm.DB, input CreateInput) (*models.ServiceOrder, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if input.CustomerID == uuid.Nil || input.VehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_id and vehicle_id are required")
	}
	if input.EstimatedHours != nil && input.EstimatedHours.LessThan(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "estimated_hours must not be negative")
	}
	if err := customers.VerifyVehicle(ctx, tx, input.TenantID, input.CustomerID, input.VehicleID); err != nil {
		return nil, err
	}
	order := &models.ServiceOrder{
		TenantID:       input.TenantID,
		CustomerID:     input.CustomerID,
		VehicleID:      input.VehicleID,
		QuoteID:        input.QuoteID,
		Status:         enums.ServiceOrderStatusOpen,
		Description:    trimmedPtr(input.Description),
		EstimatedHours: input.EstimatedHours,
	}
	if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create service order")
	}
	return order, nil
}

func (s *service) Get(ctx context.Context, tenantID, orderID uuid.UUID) (*ServiceOrderDTO, error) {
	order, err := s.repo.Find(ctx, tenantID, orderID)
	if err != nil {
		return nil, mapFindError(err)
	}
	return FromModel(order), nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters ListFilters) (*ServiceOrderList, error) {
	rows, total, err := s.repo.List(ctx, tenantID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list service orders")
	}
	items := make([]ServiceOrderDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &ServiceOrderList{Items: items, Pagination: pagination.NewMeta(params, total)}, nil
}

func (s *service) Transition(ctx context.Context, tenantID, orderID uuid.UUID, next enums.ServiceOrderStatus) (*ServiceOrderDTO, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid service order status %q", next))
	}
	var out *models.ServiceOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindForUpdate(ctx, tenantID, orderID)
		if err != nil {
			return mapFindError(err)
		}
		if !order.Status.CanTransitionTo(next) {
			return pkgerrors.Transition("service order", order.Status.String(), next.String())
		}
		now := s.now()
		updates := map[string]any{"status": next}
		switch next {
		case enums.ServiceOrderStatusInProgress:
			updates["started_at"] = now
			order.StartedAt = &now
		case enums.ServiceOrderStatusCompleted:
			updates["completed_at"] = now
			order.CompletedAt = &now
		}
		if err := repo.Update(ctx, tenantID, orderID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update service order")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventServiceOrderStatusChange,
			AggregateType: enums.AggregateServiceOrder,
			AggregateID:   order.ID,
			TenantID:      tenantID,
			Actor:         outbox.ActorFromContext(ctx),
			Data: payloads.ServiceOrderStatusChangedEvent{
				ServiceOrderID: order.ID,
				TenantID:       tenantID,
				From:           order.Status,
				To:             next,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit service order event")
		}
		order.Status = next
		out = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition("service_order", next.String())
	return FromModel(out), nil
}

func mapFindError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "service order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load service order")
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
