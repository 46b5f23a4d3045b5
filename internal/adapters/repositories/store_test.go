package repositories

import (
	"context"
	"fmt"
	"market-dash-service/internal/domain"
	"market-dash-service/internal/platform/db"
	"market-dash-service/internal/ports"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedPath = "../../../data/seeds/marketplace.yaml"

func newTestStore(t *testing.T) *Store {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, dialect, err := db.Open(context.Background(), "sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, InitSchema(context.Background(), conn, dialect))
	return NewStore(conn, dialect)
}

func newSeededStore(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(t)
	require.NoError(t, SeedFromFile(context.Background(), s, seedPath))
	return s
}

func productByTitle(t *testing.T, s *Store, title string) *domain.Product {
	t.Helper()
	products, err := s.ListProducts(context.Background(), ports.ProductFilter{Search: title})
	require.NoError(t, err)
	require.Len(t, products, 1, "product %q", title)
	return products[0]
}

func TestRebind(t *testing.T) {
	pg := &Store{Dialect: db.Postgres}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b IN ($2,$3);", pg.rebind("SELECT * FROM t WHERE a = ? AND b IN (?,?);"))

	lite := &Store{Dialect: db.SQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestInClauseAndUniqueIDs(t *testing.T) {
	ids := uniqueIDs([]int64{3, 0, 3, -1, 5})
	assert.Equal(t, []int64{3, 5}, ids)

	in, args := inClause(ids)
	assert.Equal(t, "(?,?)", in)
	assert.Equal(t, []any{int64(3), int64(5)}, args)
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, InitSchema(context.Background(), s.DB, s.Dialect))
}

func TestSeedFromFile(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	shops, err := s.ListShops(ctx, ports.ShopFilter{})
	require.NoError(t, err)
	require.Len(t, shops, 2)
	assert.Equal(t, "Lina's Ceramics", shops[0].Name)

	n, err := s.CountProducts(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	// Seeded orders reserve stock: 40 - 2 mugs.
	mug := productByTitle(t, s, "blue mug")
	assert.Equal(t, 38, mug.Stock)

	orders, err := s.ListOrders(ctx, ports.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 4)
	assert.Equal(t, "ORD-SEED0004", orders[0].Reference, "newest first")

	// Running the seed again must not duplicate rows.
	require.NoError(t, SeedFromFile(ctx, s, seedPath))
	orders, err = s.ListOrders(ctx, ports.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, orders, 4)
}

func TestListOrdersFilters(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	completed, err := s.ListOrders(ctx, ports.OrderFilter{Status: domain.OrderCompleted})
	require.NoError(t, err)
	assert.Len(t, completed, 2)

	october, err := s.ListOrders(ctx, ports.OrderFilter{
		From: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, october, 2)

	none, err := s.ListOrders(ctx, ports.OrderFilter{ShopIDs: []int64{}})
	require.NoError(t, err)
	assert.Empty(t, none)

	page, err := s.ListOrders(ctx, ports.OrderFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "ORD-SEED0003", page[0].Reference)
}

func TestGetOrderLoadsItemsAndTracking(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	orders, err := s.ListOrders(ctx, ports.OrderFilter{Status: domain.OrderCompleted})
	require.NoError(t, err)

	var target *domain.Order
	for _, o := range orders {
		if o.Reference == "ORD-SEED0002" {
			target = o
		}
	}
	require.NotNil(t, target)

	order, err := s.GetOrder(ctx, target.ID)
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, int64(8900+3*2500), order.SubtotalCents)
	assert.Equal(t, int64(8900+3*2500+3000), order.TotalCents)
	require.NotNil(t, order.DeliveryMethodID)

	tracking, err := s.ListTracking(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, tracking, 1)
	assert.Equal(t, domain.OrderCompleted, tracking[0].Status)

	_, err = s.GetOrder(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateOrderInsufficientStockWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	charger := productByTitle(t, s, "wall charger")
	cable := productByTitle(t, s, "usb-c cable")

	before, err := s.ListOrders(ctx, ports.OrderFilter{})
	require.NoError(t, err)

	order := &domain.Order{
		Reference: "ORD-TOOMANY",
		ShopID:    charger.ShopID,
		BuyerID:   before[0].BuyerID,
		Status:    domain.OrderPending,
		Items: []domain.OrderItem{
			{ProductID: cable.ID, Title: cable.Title, Quantity: 1, UnitPriceCents: cable.PriceCents},
			{ProductID: charger.ID, Title: charger.Title, Quantity: charger.Stock + 1, UnitPriceCents: charger.PriceCents},
		},
	}
	order.Recalculate()

	err = s.CreateOrder(ctx, order)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	after, err := s.ListOrders(ctx, ports.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, after, len(before))

	assert.Equal(t, cable.Stock, productByTitle(t, s, "usb-c cable").Stock, "cable reservation rolled back")
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	pending, err := s.ListOrders(ctx, ports.OrderFilter{Status: domain.OrderPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	id := pending[0].ID

	cable := productByTitle(t, s, "usb-c cable")
	at := time.Date(2026, 10, 11, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.UpdateOrderStatus(ctx, id, domain.OrderPending, domain.OrderProcessing, "packed", at))

	err = s.UpdateOrderStatus(ctx, id, domain.OrderPending, domain.OrderCancelled, "", at)
	assert.ErrorIs(t, err, domain.ErrConflict, "stale from-status")

	err = s.UpdateOrderStatus(ctx, 9999, domain.OrderPending, domain.OrderCancelled, "", at)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.UpdateOrderStatus(ctx, id, domain.OrderProcessing, domain.OrderCancelled, "buyer request", at))
	assert.Equal(t, cable.Stock+1, productByTitle(t, s, "usb-c cable").Stock, "cancel restocks")

	order, err := s.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, order.Status)
	assert.True(t, order.UpdatedAt.Equal(at))

	tracking, err := s.ListTracking(ctx, id)
	require.NoError(t, err)
	require.Len(t, tracking, 3)
	assert.Equal(t, "packed", tracking[1].Note)
	assert.Equal(t, domain.OrderCancelled, tracking[2].Status)
}

func TestShopDeliveryCompaniesAndFleet(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	companies, err := s.ListCompanies(ctx, 0)
	require.NoError(t, err)
	require.Len(t, companies, 1)
	cid := companies[0].ID

	methods, err := s.ListMethods(ctx, cid)
	require.NoError(t, err)
	require.Len(t, methods, 2)
	assert.Equal(t, "Standard", methods[0].Label, "cheapest first")

	drivers, err := s.ListDrivers(ctx, cid)
	require.NoError(t, err)
	require.Len(t, drivers, 1)
	require.NotNil(t, drivers[0].CarID)

	car, err := s.GetCar(ctx, *drivers[0].CarID)
	require.NoError(t, err)
	assert.Equal(t, "12-345-67", car.PlateNumber)

	// Deleting the car detaches it from the driver.
	require.NoError(t, s.DeleteCar(ctx, car.ID))
	d, err := s.GetDriver(ctx, drivers[0].ID)
	require.NoError(t, err)
	assert.Nil(t, d.CarID)

	shops, err := s.ListShops(ctx, ports.ShopFilter{Search: "omar"})
	require.NoError(t, err)
	require.Len(t, shops, 1)

	linked, err := s.ListShopDeliveryCompanyIDs(ctx, shops[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{cid}, linked)

	require.NoError(t, s.SetShopDeliveryCompanies(ctx, shops[0].ID, nil))
	linked, err = s.ListShopDeliveryCompanyIDs(ctx, shops[0].ID)
	require.NoError(t, err)
	assert.Empty(t, linked)
}

func TestProfilesAndProducts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	owner := &domain.Profile{FullName: "Nour", Email: "nour@market.test", Role: domain.RoleShopOwner}
	require.NoError(t, s.CreateProfile(ctx, owner))
	require.NotZero(t, owner.ID)

	require.NoError(t, s.UpdateProfileRole(ctx, owner.ID, domain.RoleAdmin))
	got, err := s.GetProfile(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	assert.ErrorIs(t, s.UpdateProfileRole(ctx, 404, domain.RoleAdmin), domain.ErrNotFound)

	byID, err := s.GetProfilesByIDs(ctx, []int64{owner.ID, owner.ID, 404})
	require.NoError(t, err)
	assert.Len(t, byID, 1)

	shop := &domain.Shop{OwnerID: owner.ID, Name: "Nour Books", Status: domain.ShopActive}
	require.NoError(t, s.CreateShop(ctx, shop))

	sale := int64(900)
	p := &domain.Product{ShopID: shop.ID, Title: "Notebook", PriceCents: 1200, SalePriceCents: &sale, Stock: 3, Active: true}
	require.NoError(t, s.CreateProduct(ctx, p))

	loaded, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.SalePriceCents)
	assert.Equal(t, int64(900), *loaded.SalePriceCents)
	assert.True(t, loaded.Active)

	loaded.SalePriceCents = nil
	loaded.Active = false
	loaded.Stock = 99
	require.NoError(t, s.UpdateProduct(ctx, loaded))

	reloaded, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Stock, "UpdateProduct leaves stock alone")

	require.NoError(t, s.SetProductStock(ctx, p.ID, 7))
	reloaded, err = s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, reloaded.Stock)
	assert.ErrorIs(t, s.SetProductStock(ctx, 404, 1), domain.ErrNotFound)

	active, err := s.ListProducts(ctx, ports.ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, active)

	// Deleting the shop cascades to its products.
	require.NoError(t, s.DeleteShop(ctx, shop.ID))
	_, err = s.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	assert.Equal(t, `%50\%\_off%`, likePattern(" 50%_OFF "))

	products, err := s.ListProducts(ctx, ports.ProductFilter{Search: "_"})
	require.NoError(t, err)
	assert.Empty(t, products)

	shops, err := s.ListShops(ctx, ports.ShopFilter{Search: "%"})
	require.NoError(t, err)
	assert.Empty(t, shops)

	shops, err = s.ListShops(ctx, ports.ShopFilter{Search: "a's c"})
	require.NoError(t, err)
	require.Len(t, shops, 1)
	assert.Equal(t, "Lina's Ceramics", shops[0].Name)
}
