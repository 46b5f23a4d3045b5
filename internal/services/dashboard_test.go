package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"market-dash-service/internal/domain"
	"market-dash-service/internal/ports"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	data map[string][]byte
	ttls map[string]time.Duration
	hits int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dst)
}

func (c *memoryCache) Set(_ context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = raw
	c.ttls[key] = ttl
	return nil
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, any) (bool, error) {
	return false, errors.New("connection refused")
}

func (brokenCache) Set(context.Context, string, any, time.Duration) error {
	return errors.New("connection refused")
}

func TestDashboardForAdmin(t *testing.T) {
	env := newTestEnv(t)

	d, err := env.reports.Dashboard(context.Background(), admin, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, 2026, d.Year)
	assert.Equal(t, int64(10500+19400), d.TotalRevenueCents)
	assert.Equal(t, 4, d.TotalOrders)
	assert.Equal(t, 4, d.TotalProducts)
	assert.Equal(t, 2, d.TotalShops)

	assert.Equal(t, int64(0), d.MonthRevenueCents)
	assert.Equal(t, int64(19400), d.PrevMonthRevenueCents)
	assert.Equal(t, -100.0, d.RevenueGrowth)
	assert.Equal(t, 2, d.MonthOrders)
	assert.Equal(t, 1, d.PrevMonthOrders)
	assert.Equal(t, 100.0, d.OrdersGrowth)

	wantMonths := []MonthlyRevenue{
		{Month: 8, Label: "Aug", RevenueCents: 10500, Orders: 1},
		{Month: 9, Label: "Sep", RevenueCents: 19400, Orders: 1},
		{Month: 10, Label: "Oct", Orders: 2},
	}
	if diff := cmp.Diff(wantMonths, d.Monthly[7:10]); diff != "" {
		t.Errorf("monthly mismatch (-want +got):\n%s", diff)
	}

	wantTop := []ShopRevenue{
		{ShopID: omarShop, ShopName: "Omar Electronics", RevenueCents: 19400, Orders: 1},
		{ShopID: linaShop, ShopName: "Lina's Ceramics", RevenueCents: 10500, Orders: 1},
	}
	if diff := cmp.Diff(wantTop, d.TopShops); diff != "" {
		t.Errorf("top shops mismatch (-want +got):\n%s", diff)
	}

	wantStatuses := []StatusCount{
		{Status: domain.OrderPending, Count: 1},
		{Status: domain.OrderProcessing, Count: 1},
		{Status: domain.OrderOnTheWay},
		{Status: domain.OrderCompleted, Count: 2},
		{Status: domain.OrderCancelled},
	}
	if diff := cmp.Diff(wantStatuses, d.Statuses); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestDashboardIsScoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	d, err := env.reports.Dashboard(ctx, lina, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, int64(10500), d.TotalRevenueCents)
	assert.Equal(t, 2, d.TotalOrders)
	assert.Equal(t, 2, d.TotalProducts)
	assert.Equal(t, 1, d.TotalShops)
	assert.Equal(t, 0.0, d.RevenueGrowth)
	assert.Equal(t, 100.0, d.OrdersGrowth)
	require.Len(t, d.TopShops, 1)
	assert.Equal(t, linaShop, d.TopShops[0].ShopID)

	d, err = env.reports.Dashboard(ctx, fleet, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 3, d.TotalOrders)
	assert.Equal(t, 2, d.TotalShops)
	assert.Equal(t, 4, d.TotalProducts)

	_, err = env.reports.Dashboard(ctx, sara, fixedNow)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDashboardUsesCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cache := newMemoryCache()
	env.reports.Cache = cache
	env.reports.CacheTTL = time.Minute

	first, err := env.reports.Dashboard(ctx, lina, fixedNow)
	require.NoError(t, err)
	require.Contains(t, cache.data, "dashboard:shop_owner:2:2026-10-18")
	assert.Equal(t, time.Minute, cache.ttls["dashboard:shop_owner:2:2026-10-18"])

	// A new order is not visible until the cached entry expires.
	_, err = env.orders.Create(ctx, lina, CreateOrderInput{
		ShopID: linaShop, BuyerID: sara.ProfileID, ShippingAddress: "1 Olive St",
		Items: []OrderItemInput{{ProductID: blueMug, Quantity: 1}},
	})
	require.NoError(t, err)

	second, err := env.reports.Dashboard(ctx, lina, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, first.TotalOrders, second.TotalOrders)
	assert.True(t, first.GeneratedAt.Equal(second.GeneratedAt))

	fresh, err := env.reports.Dashboard(ctx, lina, fixedNow.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, first.TotalOrders+1, fresh.TotalOrders)
}

func TestDashboardIgnoresCacheErrors(t *testing.T) {
	env := newTestEnv(t)
	env.reports.Cache = brokenCache{}

	d, err := env.reports.Dashboard(context.Background(), admin, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 4, d.TotalOrders)
}

func TestRevenueAndTopShopsReports(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	months, err := env.reports.Revenue(ctx, omar, 2026)
	require.NoError(t, err)
	require.Len(t, months, 12)
	assert.Equal(t, int64(19400), months[8].RevenueCents)
	assert.Zero(t, months[7].RevenueCents)

	months, err = env.reports.Revenue(ctx, admin, 2025)
	require.NoError(t, err)
	for _, m := range months {
		assert.Zero(t, m.Orders)
	}

	_, err = env.reports.Revenue(ctx, admin, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	sep := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	top, err := env.reports.TopShops(ctx, admin, sep, sep.AddDate(0, 1, 0), 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Omar Electronics", top[0].ShopName)

	top, err = env.reports.TopShops(ctx, admin, time.Time{}, time.Time{}, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, omarShop, top[0].ShopID)

	_, err = env.reports.TopShops(ctx, admin, sep, sep, 5)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExportOrdersCSV(t *testing.T) {
	env := newTestEnv(t)
	var buf bytes.Buffer

	n, err := env.reports.ExportOrdersCSV(context.Background(), admin, ports.OrderFilter{}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, []string{
		"ORD-SEED0004", "2026-10-10T12:00:00Z", "Omar Electronics", "Sara Buyer",
		"pending", "25.00", "0.00", "25.00",
	}, records[1])
	assert.Equal(t, []string{
		"ORD-SEED0001", "2026-08-03T10:00:00Z", "Lina's Ceramics", "Sara Buyer",
		"completed", "90.00", "15.00", "105.00",
	}, records[4])
}

func TestExportOrdersCSVIsScoped(t *testing.T) {
	env := newTestEnv(t)
	var buf bytes.Buffer

	n, err := env.reports.ExportOrdersCSV(context.Background(), lina, ports.OrderFilter{Status: domain.OrderCompleted}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = env.reports.ExportOrdersCSV(context.Background(), sara, ports.OrderFilter{}, &buf)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "0.00", formatCents(0))
	assert.Equal(t, "0.05", formatCents(5))
	assert.Equal(t, "12.34", formatCents(1234))
	assert.Equal(t, "-1.50", formatCents(-150))
}
