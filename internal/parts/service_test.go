package parts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/workshop-backend/pkg/db"
	"github.com/angelmondragon/workshop-backend/pkg/db/dbtest"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/workshop-backend/pkg/errors"
	"github.com/angelmondragon/workshop-backend/pkg/outbox"
	"github.com/angelmondragon/workshop-backend/pkg/pagination"
	"github.com/angelmondragon/workshop-backend/pkg/types"
)

func newService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), db.NewFromConn(conn), outbox.NewService(outbox.NewRepository(conn), nil), nil)
	require.NoError(t, err)
	return svc, conn
}

func basePart(tenantID uuid.UUID) CreateInput {
	return CreateInput{
		TenantID:    tenantID,
		SKU:         "brk-001",
		Name:        "Brake pad",
		Quantity:    5,
		MinQuantity: 3,
		CostPrice:   decimal.RequireFromString("12.50"),
		SellPrice:   decimal.RequireFromString("20.00"),
	}
}

func TestCreatePartValidatesPrices(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	tenantID := uuid.New()

	in := basePart(tenantID)
	in.SellPrice = decimal.RequireFromString("10.125")
	_, err := svc.Create(ctx, in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	in = basePart(tenantID)
	in.CostPrice = decimal.RequireFromString("-1")
	_, err = svc.Create(ctx, in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	part, err := svc.Create(ctx, basePart(tenantID))
	require.NoError(t, err)
	assert.Equal(t, "BRK-001", part.SKU)
	assert.False(t, part.LowStock)

	_, err = svc.Create(ctx, basePart(tenantID))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = svc.Create(ctx, basePart(uuid.New()))
	require.NoError(t, err)
}

func TestAdjustStock(t *testing.T) {
	svc, conn := newService(t)
	ctx := context.Background()
	tenantID := uuid.New()
	part, err := svc.Create(ctx, basePart(tenantID))
	require.NoError(t, err)

	_, err = svc.Adjust(ctx, tenantID, part.ID, -6, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	out, err := svc.Adjust(ctx, tenantID, part.ID, -3, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Quantity)
	assert.True(t, out.LowStock)

	out, err = svc.Adjust(ctx, tenantID, part.ID, -2, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Quantity)

	rows, err := outbox.NewRepository(conn).ListByAggregate(ctx, part.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, enums.EventPartLowStock, rows[0].EventType)

	low, err := svc.List(ctx, tenantID, pagination.Params{}, ListFilters{LowStock: true})
	require.NoError(t, err)
	assert.Len(t, low.Items, 1)
}

func TestUpdatePartIsSparse(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	tenantID := uuid.New()
	in := basePart(tenantID)
	brand := "Bosch"
	in.Brand = &brand
	part, err := svc.Create(ctx, in)
	require.NoError(t, err)

	price := decimal.RequireFromString("22.90")
	out, err := svc.Update(ctx, tenantID, part.ID, UpdateInput{SellPrice: &price})
	require.NoError(t, err)
	assert.True(t, price.Equal(out.SellPrice))
	assert.Equal(t, "Brake pad", out.Name)
	require.NotNil(t, out.Brand)
	assert.Equal(t, "Bosch", *out.Brand)

	out, err = svc.Update(ctx, tenantID, part.ID, UpdateInput{Brand: types.NullableString{Valid: true}})
	require.NoError(t, err)
	assert.Nil(t, out.Brand)

	_, err = svc.Update(ctx, uuid.New(), part.ID, UpdateInput{SellPrice: &price})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
