package services

import (
	"context"
	"market-dash-service/internal/domain"
	"market-dash-service/internal/ports"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func references(rows []OrderRow) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Order.Reference)
	}
	return out
}

func TestOrderListIsScoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rows, err := env.orders.List(ctx, admin, ports.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ORD-SEED0004", "ORD-SEED0003", "ORD-SEED0002", "ORD-SEED0001"}, references(rows))
	assert.Equal(t, "Omar Electronics", rows[0].ShopName)
	assert.Equal(t, "Sara Buyer", rows[0].BuyerName)

	rows, err = env.orders.List(ctx, lina, ports.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ORD-SEED0003", "ORD-SEED0001"}, references(rows))

	// Omar asking for Lina's shop gets nothing back.
	rows, err = env.orders.List(ctx, omar, ports.OrderFilter{ShopIDs: []int64{linaShop}})
	require.NoError(t, err)
	assert.Empty(t, rows)

	// The pending order has no delivery company yet.
	rows, err = env.orders.List(ctx, fleet, ports.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ORD-SEED0003", "ORD-SEED0002", "ORD-SEED0001"}, references(rows))

	rows, err = env.orders.List(ctx, admin, ports.OrderFilter{Status: domain.OrderCompleted})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = env.orders.List(ctx, admin, ports.OrderFilter{Status: "shipped"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.orders.List(ctx, sara, ports.OrderFilter{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestOrderDetails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	d, err := env.orders.Details(ctx, omar, 2)
	require.NoError(t, err)

	assert.Equal(t, "ORD-SEED0002", d.Order.Reference)
	assert.Len(t, d.Order.Items, 2)
	require.NotNil(t, d.Shop)
	assert.Equal(t, "Omar Electronics", d.Shop.Name)
	require.NotNil(t, d.Buyer)
	assert.Equal(t, "Adam Buyer", d.Buyer.FullName)
	assert.Len(t, d.Products, 2)
	require.NotNil(t, d.Company)
	assert.Equal(t, "Fast Wheels", d.Company.Name)
	require.NotNil(t, d.Method)
	assert.Equal(t, "Express", d.Method.Label)
	assert.Nil(t, d.Driver)
	assert.Nil(t, d.Car)
	assert.Empty(t, d.Comments)
	require.Len(t, d.Tracking, 1)
	assert.Equal(t, domain.OrderCompleted, d.Tracking[0].Status)

	_, err = env.orders.Details(ctx, lina, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.orders.Details(ctx, admin, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderDetailsIncludesDriverAndCar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.orders.AssignDriver(ctx, fleet, 3, 1)
	require.NoError(t, err)

	d, err := env.orders.Details(ctx, fleet, 3)
	require.NoError(t, err)
	require.NotNil(t, d.Driver)
	assert.Equal(t, "Yousef Driver", d.Driver.Name)
	require.NotNil(t, d.Car)
	assert.Equal(t, "12-345-67", d.Car.PlateNumber)
}

func TestOrderCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o, err := env.orders.Create(ctx, lina, CreateOrderInput{
		ShopID:           linaShop,
		BuyerID:          sara.ProfileID,
		DeliveryMethodID: ptr(express),
		ShippingAddress:  "  1 Olive St ",
		Items: []OrderItemInput{
			{ProductID: blueMug, Quantity: 1},
			{ProductID: plate, Quantity: 2},
			{ProductID: blueMug, Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.NotZero(t, o.ID)
	assert.Regexp(t, `^ORD-[0-9A-F]{8}$`, o.Reference)
	assert.Equal(t, domain.OrderPending, o.Status)
	assert.Equal(t, "1 Olive St", o.ShippingAddress)
	require.Len(t, o.Items, 2)
	assert.Equal(t, 3, o.Items[0].Quantity)
	assert.Equal(t, int64(5200), o.Items[1].UnitPriceCents)
	assert.Equal(t, int64(3*4500+2*5200), o.SubtotalCents)
	assert.Equal(t, int64(3000), o.DeliveryFeeCents)
	assert.Equal(t, o.SubtotalCents+3000, o.TotalCents)
	require.NotNil(t, o.DeliveryCompanyID)
	assert.Equal(t, fastWheel, *o.DeliveryCompanyID)
	assert.Equal(t, fixedNow, o.CreatedAt)

	mug, err := env.store.GetProduct(ctx, blueMug)
	require.NoError(t, err)
	assert.Equal(t, 40-2-3, mug.Stock)
}

func TestOrderCreateRejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base := func() CreateOrderInput {
		return CreateOrderInput{
			ShopID:          linaShop,
			BuyerID:         sara.ProfileID,
			ShippingAddress: "1 Olive St",
			Items:           []OrderItemInput{{ProductID: blueMug, Quantity: 1}},
		}
	}

	tests := []struct {
		name   string
		actor  Actor
		mutate func(*CreateOrderInput)
		want   error
	}{
		{"no items", admin, func(in *CreateOrderInput) { in.Items = nil }, domain.ErrValidation},
		{"zero quantity", admin, func(in *CreateOrderInput) { in.Items[0].Quantity = 0 }, domain.ErrValidation},
		{"no address", admin, func(in *CreateOrderInput) { in.ShippingAddress = " " }, domain.ErrValidation},
		{"product from another shop", admin, func(in *CreateOrderInput) { in.Items[0].ProductID = usbCable }, domain.ErrValidation},
		{"unknown buyer", admin, func(in *CreateOrderInput) { in.BuyerID = 404 }, domain.ErrValidation},
		{"unknown method", admin, func(in *CreateOrderInput) { in.DeliveryMethodID = ptr(int64(404)) }, domain.ErrValidation},
		{"not enough stock", admin, func(in *CreateOrderInput) { in.Items[0].Quantity = 1000 }, domain.ErrInsufficientStock},
		{"other owner's shop", omar, func(in *CreateOrderInput) {}, domain.ErrForbidden},
		{"delivery owner", fleet, func(in *CreateOrderInput) {}, domain.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base()
			tt.mutate(&in)
			_, err := env.orders.Create(ctx, tt.actor, in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	mug, err := env.store.GetProduct(ctx, blueMug)
	require.NoError(t, err)
	assert.Equal(t, 38, mug.Stock)
}

func TestOrderCreateRequiresLinkedCompany(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.store.SetShopDeliveryCompanies(ctx, linaShop, nil))

	_, err := env.orders.Create(ctx, lina, CreateOrderInput{
		ShopID:           linaShop,
		BuyerID:          sara.ProfileID,
		DeliveryMethodID: ptr(standard),
		ShippingAddress:  "1 Olive St",
		Items:            []OrderItemInput{{ProductID: blueMug, Quantity: 1}},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "delivery_method_id", verr.Field)
}

func TestOrderCreateRejectsInactiveProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.catalog.UpdateProduct(ctx, lina, blueMug, ProductPatch{Active: ptr(false)})
	require.NoError(t, err)

	_, err = env.orders.Create(ctx, lina, CreateOrderInput{
		ShopID:          linaShop,
		BuyerID:         sara.ProfileID,
		ShippingAddress: "1 Olive St",
		Items:           []OrderItemInput{{ProductID: blueMug, Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOrderUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o, err := env.orders.UpdateStatus(ctx, omar, 4, domain.OrderProcessing, "packing")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderProcessing, o.Status)
	assert.Equal(t, fixedNow, o.UpdatedAt)

	_, err = env.orders.UpdateStatus(ctx, omar, 4, domain.OrderCompleted, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = env.orders.UpdateStatus(ctx, admin, 1, domain.OrderCancelled, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = env.orders.UpdateStatus(ctx, lina, 4, domain.OrderCancelled, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.orders.UpdateStatus(ctx, fleet, 3, domain.OrderCancelled, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.orders.UpdateStatus(ctx, fleet, 3, domain.OrderOnTheWay, "left the depot")
	require.NoError(t, err)

	tracking, err := env.store.ListTracking(ctx, 3)
	require.NoError(t, err)
	require.Len(t, tracking, 2)
	assert.Equal(t, domain.OrderOnTheWay, tracking[1].Status)
	assert.Equal(t, "left the depot", tracking[1].Note)
}

func TestOrderCancelRestocks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.orders.UpdateStatus(ctx, lina, 3, domain.OrderCancelled, "buyer asked")
	require.NoError(t, err)

	p, err := env.store.GetProduct(ctx, plate)
	require.NoError(t, err)
	assert.Equal(t, 25, p.Stock)
}

func TestOrderAssignDriver(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o, err := env.orders.AssignDriver(ctx, fleet, 3, 1)
	require.NoError(t, err)
	require.NotNil(t, o.DriverID)
	assert.Equal(t, int64(1), *o.DriverID)

	_, err = env.orders.AssignDriver(ctx, admin, 1, 1)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = env.orders.AssignDriver(ctx, admin, 4, 1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.orders.AssignDriver(ctx, admin, 3, 404)
	assert.ErrorIs(t, err, domain.ErrValidation)

	other := &domain.DeliveryCompany{OwnerID: fleet.ProfileID, Name: "Slow Boats", Status: domain.CompanyActive}
	require.NoError(t, env.store.CreateCompany(ctx, other))
	stranger := &domain.DeliveryDriver{CompanyID: other.ID, Name: "Rami", Status: domain.DriverAvailable}
	require.NoError(t, env.store.CreateDriver(ctx, stranger))

	_, err = env.orders.AssignDriver(ctx, admin, 3, stranger.ID)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "driver_id", verr.Field)
}

func TestOrderComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.orders.AddComment(ctx, lina, 1, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.orders.AddComment(ctx, lina, 1, strings.Repeat("x", maxCommentLength+1))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = env.orders.AddComment(ctx, omar, 1, "not my order")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	c, err := env.orders.AddComment(ctx, lina, 1, " Gift wrapped ")
	require.NoError(t, err)
	assert.Equal(t, "Gift wrapped", c.Body)
	assert.Equal(t, lina.ProfileID, c.AuthorID)

	comments, err := env.orders.Comments(ctx, admin, 1)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.NotNil(t, comments[0].Author)
	assert.Equal(t, "Lina Haddad", comments[0].Author.FullName)
}

func TestOrderDeleteIsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.ErrorIs(t, env.orders.Delete(ctx, lina, 1), domain.ErrForbidden)
	require.NoError(t, env.orders.Delete(ctx, admin, 1))

	_, err := env.store.GetOrder(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, env.orders.Delete(ctx, admin, 1), domain.ErrNotFound)
}

func TestMergeItems(t *testing.T) {
	got, err := mergeItems([]OrderItemInput{{1, 1}, {2, 1}, {1, 4}})
	require.NoError(t, err)
	assert.Equal(t, []OrderItemInput{{1, 5}, {2, 1}}, got)
}
