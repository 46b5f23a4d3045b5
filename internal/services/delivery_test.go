package services

import (
	"context"
	"market-dash-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryCompanyAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	companies, err := env.delivery.ListCompanies(ctx, lina)
	require.NoError(t, err)
	assert.Len(t, companies, 1)

	d, err := env.delivery.GetCompany(ctx, lina, fastWheel)
	require.NoError(t, err)
	assert.Equal(t, "Fast Wheels", d.Company.Name)
	assert.Len(t, d.Drivers, 1)
	assert.Len(t, d.Cars, 1)
	assert.Len(t, d.Methods, 2)

	_, err = env.delivery.ListCompanies(ctx, sara)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.delivery.UpdateCompany(ctx, lina, fastWheel, CompanyPatch{Name: ptr("Mine")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	c, err := env.delivery.UpdateCompany(ctx, fleet, fastWheel, CompanyPatch{Phone: ptr("+972500000011")})
	require.NoError(t, err)
	assert.Equal(t, "+972500000011", c.Phone)
}

func TestDeliveryCreateCompany(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c := &domain.DeliveryCompany{OwnerID: admin.ProfileID, Name: "Night Couriers"}
	require.NoError(t, env.delivery.CreateCompany(ctx, fleet, c))
	assert.Equal(t, fleet.ProfileID, c.OwnerID)
	assert.Equal(t, domain.CompanyActive, c.Status)

	companies, err := env.delivery.ListCompanies(ctx, fleet)
	require.NoError(t, err)
	assert.Len(t, companies, 2)

	err = env.delivery.CreateCompany(ctx, lina, &domain.DeliveryCompany{Name: "Nope"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = env.delivery.CreateCompany(ctx, admin, &domain.DeliveryCompany{OwnerID: sara.ProfileID, Name: "Nope"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, env.delivery.DeleteCompany(ctx, fleet, c.ID))
	_, err = env.delivery.GetCompany(ctx, admin, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeliveryDriversAndCars(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	other := &domain.DeliveryCompany{Name: "Slow Boats"}
	require.NoError(t, env.delivery.CreateCompany(ctx, fleet, other))
	boat := &domain.DeliveryCar{CompanyID: other.ID, PlateNumber: " 99-000-11 "}
	require.NoError(t, env.delivery.CreateCar(ctx, fleet, boat))
	assert.Equal(t, "99-000-11", boat.PlateNumber)

	d := &domain.DeliveryDriver{CompanyID: fastWheel, Name: "Hana", CarID: &boat.ID}
	err := env.delivery.CreateDriver(ctx, fleet, d)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "car_id", verr.Field)

	d.CarID = ptr(int64(1))
	require.NoError(t, env.delivery.CreateDriver(ctx, fleet, d))
	assert.Equal(t, domain.DriverAvailable, d.Status)

	drivers, err := env.delivery.ListDrivers(ctx, fleet, fastWheel)
	require.NoError(t, err)
	assert.Len(t, drivers, 2)

	busy := domain.DriverBusy
	var noCar *int64
	updated, err := env.delivery.UpdateDriver(ctx, fleet, fastWheel, d.ID, DriverPatch{Status: &busy, CarID: &noCar})
	require.NoError(t, err)
	assert.Equal(t, domain.DriverBusy, updated.Status)
	assert.Nil(t, updated.CarID)

	_, err = env.delivery.UpdateDriver(ctx, fleet, other.ID, d.ID, DriverPatch{Status: &busy})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.delivery.UpdateCar(ctx, fleet, fastWheel, boat.ID, CarPatch{Color: ptr("red")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	car, err := env.delivery.UpdateCar(ctx, fleet, other.ID, boat.ID, CarPatch{Color: ptr("red"), CapacityKg: ptr(400)})
	require.NoError(t, err)
	assert.Equal(t, "red", car.Color)

	_, err = env.delivery.UpdateCar(ctx, fleet, other.ID, boat.ID, CarPatch{CapacityKg: ptr(-1)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = env.delivery.CreateCar(ctx, lina, &domain.DeliveryCar{CompanyID: fastWheel, PlateNumber: "1"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, env.delivery.DeleteDriver(ctx, fleet, fastWheel, d.ID))
	require.NoError(t, env.delivery.DeleteCar(ctx, fleet, other.ID, boat.ID))
	assert.ErrorIs(t, env.delivery.DeleteCar(ctx, fleet, other.ID, boat.ID), domain.ErrNotFound)
}

func TestDeliveryMethods(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	m := &domain.DeliveryMethod{CompanyID: fastWheel, Label: "Same day", PriceCents: 4500}
	require.NoError(t, env.delivery.CreateMethod(ctx, fleet, m))

	methods, err := env.delivery.ListMethods(ctx, omar, fastWheel)
	require.NoError(t, err)
	assert.Len(t, methods, 3)

	err = env.delivery.CreateMethod(ctx, fleet, &domain.DeliveryMethod{CompanyID: fastWheel, Label: "Free", PriceCents: -1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, env.delivery.DeleteMethod(ctx, fleet, fastWheel, m.ID))
	assert.ErrorIs(t, env.delivery.DeleteMethod(ctx, fleet, fastWheel, m.ID), domain.ErrNotFound)
}
