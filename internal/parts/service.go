package parts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/workshop-backend/pkg/db"
	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/workshop-backend/pkg/errors"
	"github.com/angelmondragon/workshop-backend/pkg/logger"
	"github.com/angelmondragon/workshop-backend/pkg/outbox"
	"github.com/angelmondragon/workshop-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/workshop-backend/pkg/pagination"
)

const skuIndex = "ux_parts_tenant_sku"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type Service interface {
	Create(ctx context.Context, input CreateInput) (*PartDTO, error)
	Get(ctx context.Context, tenantID, partID uuid.UUID) (*PartDTO, error)
	List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters ListFilters) (*PartList, error)
	Update(ctx context.Context, tenantID, partID uuid.UUID, input UpdateInput) (*PartDTO, error)
	Adjust(ctx context.Context, tenantID, partID uuid.UUID, delta int, reason *string) (*PartDTO, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
}

func NewService(repo Repository, tx txRunner, outbox outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("parts repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*PartDTO, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	sku := strings.ToUpper(strings.TrimSpace(input.SKU))
	name := strings.TrimSpace(input.Name)
	if sku == "" || name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku and name are required")
	}
	if input.Quantity < 0 || input.MinQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantities must not be negative")
	}
	if err := validatePrice("cost_price", input.CostPrice); err != nil {
		return nil, err
	}
	if err := validatePrice("sell_price", input.SellPrice); err != nil {
		return nil, err
	}
	part := &models.Part{
		TenantID:    input.TenantID,
		SKU:         sku,
		Name:        name,
		Brand:       trimmedPtr(input.Brand),
		Description: trimmedPtr(input.Description),
		Quantity:    input.Quantity,
		MinQuantity: input.MinQuantity,
		CostPrice:   input.CostPrice,
		SellPrice:   input.SellPrice,
	}
	if err := s.repo.Create(ctx, part); err != nil {
		if db.IsUniqueViolation(err, skuIndex) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a part with this sku already exists").
				WithDetails(map[string]string{"sku": sku})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create part")
	}
	return FromModel(part), nil
}

func (s *service) Get(ctx context.Context, tenantID, partID uuid.UUID) (*PartDTO, error) {
	part, err := s.repo.Find(ctx, tenantID, partID)
	if err != nil {
		return nil, mapFindError(err)
	}
	return FromModel(part), nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters ListFilters) (*PartList, error) {
	rows, total, err := s.repo.List(ctx, tenantID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list parts")
	}
	items := make([]PartDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &PartList{Items: items, Pagination: pagination.NewMeta(params, total)}, nil
}

func (s *service) Update(ctx context.Context, tenantID, partID uuid.UUID, input UpdateInput) (*PartDTO, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be blank")
		}
		updates["name"] = name
	}
	if input.Brand.Valid {
		updates["brand"] = input.Brand.Value
	}
	if input.Description.Valid {
		updates["description"] = input.Description.Value
	}
	if input.MinQuantity != nil {
		if *input.MinQuantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_quantity must not be negative")
		}
		updates["min_quantity"] = *input.MinQuantity
	}
	if input.CostPrice != nil {
		if err := validatePrice("cost_price", *input.CostPrice); err != nil {
			return nil, err
		}
		updates["cost_price"] = *input.CostPrice
	}
	if input.SellPrice != nil {
		if err := validatePrice("sell_price", *input.SellPrice); err != nil {
			return nil, err
		}
		updates["sell_price"] = *input.SellPrice
	}

	var out *models.Part
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindForUpdate(ctx, tenantID, partID); err != nil {
			return mapFindError(err)
		}
		if len(updates) > 0 {
			if err := repo.Update(ctx, tenantID, partID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update part")
			}
		}
		part, err := repo.Find(ctx, tenantID, partID)
		if err != nil {
			return mapFindError(err)
		}
		out = part
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(out), nil
}

// Adjust moves stock by delta. Stock never drops below zero, and crossing the
// reorder threshold queues a part_low_stock event.
func (s *service) Adjust(ctx context.Context, tenantID, partID uuid.UUID, delta int, reason *string) (*PartDTO, error) {
	if delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must not be zero")
	}
	var out *models.Part
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		part, err := repo.FindForUpdate(ctx, tenantID, partID)
		if err != nil {
			return mapFindError(err)
		}
		next := part.Quantity + delta
		if next < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "adjustment would make stock negative").
				WithDetails(map[string]int{"quantity": part.Quantity, "delta": delta})
		}
		wasLow := part.IsLowStock()
		if err := repo.Update(ctx, tenantID, partID, map[string]any{"quantity": next}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
		}
		part.Quantity = next
		if !wasLow && part.IsLowStock() {
			event := outbox.DomainEvent{
				EventType:     enums.EventPartLowStock,
				AggregateType: enums.AggregatePart,
				AggregateID:   part.ID,
				TenantID:      tenantID,
				Actor:         outbox.ActorFromContext(ctx),
				Data: payloads.PartLowStockEvent{
					PartID:      part.ID,
					TenantID:    tenantID,
					SKU:         part.SKU,
					Quantity:    part.Quantity,
					MinQuantity: part.MinQuantity,
					CostPrice:   part.CostPrice,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit low stock event")
			}
		}
		out = part
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		fields := map[string]any{"part_id": partID.String(), "delta": delta, "quantity": out.Quantity}
		if r := trimmedPtr(reason); r != nil {
			fields["reason"] = *r
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "part stock adjusted")
	}
	return FromModel(out), nil
}

func validatePrice(field string, price decimal.Decimal) error {
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, field+" must not be negative")
	}
	if !price.Equal(price.Round(2)) {
		return pkgerrors.New(pkgerrors.CodeValidation, field+" allows at most two decimal places").
			WithDetails(map[string]string{"field": field, "value": price.String()})
	}
	return nil
}

func mapFindError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "part not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load part")
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
