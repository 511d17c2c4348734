package customers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/workshop-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/workshop-backend/pkg/errors"
	"github.com/angelmondragon/workshop-backend/pkg/pagination"
)

func strPtr(v string) *string { return &v }

func TestCustomersAndVehicles(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()
	tenantID := uuid.New()

	customer, err := svc.CreateCustomer(ctx, CreateCustomerInput{TenantID: tenantID, Name: " Ana Souza ", Email: strPtr("Ana@Example.com")})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", customer.Name)
	assert.Equal(t, "ana@example.com", *customer.Email)

	vehicle, err := svc.CreateVehicle(ctx, CreateVehicleInput{TenantID: tenantID, CustomerID: customer.ID, Plate: "abc1d23"})
	require.NoError(t, err)
	assert.Equal(t, "ABC1D23", vehicle.Plate)

	_, err = svc.CreateVehicle(ctx, CreateVehicleInput{TenantID: tenantID, CustomerID: customer.ID, Plate: "ABC1D23"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	vehicles, err := svc.ListVehicles(ctx, tenantID, customer.ID)
	require.NoError(t, err)
	require.Len(t, vehicles, 1)

	list, err := svc.ListCustomers(ctx, tenantID, pagination.Params{}, "souza")
	require.NoError(t, err)
	require.Len(t, list.Items, 1)

	require.NoError(t, VerifyVehicle(ctx, conn, tenantID, customer.ID, vehicle.ID))
	err = VerifyVehicle(ctx, conn, tenantID, uuid.New(), vehicle.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCustomersAreTenantScoped(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	customer, err := svc.CreateCustomer(ctx, CreateCustomerInput{TenantID: uuid.New(), Name: "Bruno"})
	require.NoError(t, err)

	_, err = svc.GetCustomer(ctx, uuid.New(), customer.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.CreateVehicle(ctx, CreateVehicleInput{TenantID: uuid.New(), CustomerID: customer.ID, Plate: "XYZ9999"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
