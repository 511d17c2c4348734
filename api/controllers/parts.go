package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/workshop-backend/api/responses"
	"github.com/angelmondragon/workshop-backend/api/validators"
	"github.com/angelmondragon/workshop-backend/internal/parts"
	"github.com/angelmondragon/workshop-backend/pkg/logger"
	"github.com/angelmondragon/workshop-backend/pkg/types"
)

type createPartRequest struct {
	SKU         string          `json:"sku" validate:"required,max=64"`
	Name        string          `json:"name" validate:"required,max=200"`
	Brand       *string         `json:"brand,omitempty" validate:"omitempty,max=100"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	Quantity    int             `json:"quantity" validate:"min=0"`
	MinQuantity int             `json:"min_quantity" validate:"min=0"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	SellPrice   decimal.Decimal `json:"sell_price"`
}

func PartCreate(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "part")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}

		var payload createPartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		part, err := svc.Create(r.Context(), parts.CreateInput{
			TenantID:    tenantID,
			SKU:         validators.SanitizeString(payload.SKU, 64),
			Name:        validators.SanitizeString(payload.Name, 200),
			Brand:       sanitizeOptional(payload.Brand, 100),
			Description: sanitizeOptional(payload.Description, 2000),
			Quantity:    payload.Quantity,
			MinQuantity: payload.MinQuantity,
			CostPrice:   payload.CostPrice,
			SellPrice:   payload.SellPrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, part)
	}
}

// PartList supports low_stock=true and a free-text search over name and sku.
func PartList(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "part")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lowStock, err := validators.QueryBool(r, "low_stock")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters := parts.ListFilters{LowStock: lowStock}
		if search := validators.QueryString(r, "search", 100); search != nil {
			filters.Search = *search
		}

		list, err := svc.List(r.Context(), tenantID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func PartGet(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "part")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.PathUUID(r, "partId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		part, err := svc.Get(r.Context(), tenantID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, part)
	}
}

type updatePartRequest struct {
	Name        *string              `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Brand       types.NullableString `json:"brand"`
	Description types.NullableString `json:"description"`
	MinQuantity *int                 `json:"min_quantity,omitempty" validate:"omitempty,min=0"`
	CostPrice   *decimal.Decimal     `json:"cost_price,omitempty"`
	SellPrice   *decimal.Decimal     `json:"sell_price,omitempty"`
}

func PartUpdate(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "part")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.PathUUID(r, "partId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		part, err := svc.Update(r.Context(), tenantID, id, parts.UpdateInput{
			Name:        sanitizeOptional(payload.Name, 200),
			Brand:       payload.Brand,
			Description: payload.Description,
			MinQuantity: payload.MinQuantity,
			CostPrice:   payload.CostPrice,
			SellPrice:   payload.SellPrice,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, part)
	}
}

type adjustStockRequest struct {
	Delta  int     `json:"delta"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// PartAdjust moves stock by delta. The quantity never drops below zero.
func PartAdjust(svc parts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "part")
			return
		}
		tenantID, ok := requireTenant(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.PathUUID(r, "partId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		part, err := svc.Adjust(r.Context(), tenantID, id, payload.Delta, sanitizeOptional(payload.Reason, 500))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, part)
	}
}
