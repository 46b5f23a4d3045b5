package services

import (
	"context"
	"fmt"
	"market-dash-service/internal/domain"
	"market-dash-service/internal/platform/obs"
	"market-dash-service/internal/ports"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const dashboardTopShops = 5

// Dashboard is the summary shown on the back-office landing page.
type Dashboard struct {
	GeneratedAt time.Time
	Year        int

	TotalRevenueCents int64
	TotalOrders       int
	TotalProducts     int
	TotalShops        int

	MonthRevenueCents     int64
	PrevMonthRevenueCents int64
	MonthOrders           int
	PrevMonthOrders       int
	RevenueGrowth         float64
	OrdersGrowth          float64

	Monthly  []MonthlyRevenue
	TopShops []ShopRevenue
	Statuses []StatusCount
}

// ReportService computes reports over the orders in an actor's scope.
// Cache may be nil.
type ReportService struct {
	Orders   ports.OrderRepository
	Shops    ports.ShopRepository
	Products ports.ProductRepository
	Profiles ports.ProfileRepository
	Scoper   *Scoper
	Cache    ports.ReportCache
	CacheTTL time.Duration
	Now      func() time.Time
}

func (s *ReportService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *ReportService) scopedOrders(ctx context.Context, a Actor, f ports.OrderFilter) ([]*domain.Order, error) {
	scope, err := s.Scoper.Resolve(ctx, a)
	if err != nil {
		return nil, err
	}
	orders, err := s.Orders.ListOrders(ctx, scope.ApplyToOrders(f))
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	return orders, nil
}

func orderShopIDs(orders []*domain.Order) []int64 {
	seen := map[int64]bool{}
	out := make([]int64, 0, 16)
	for _, o := range orders {
		if seen[o.ShopID] {
			continue
		}
		seen[o.ShopID] = true
		out = append(out, o.ShopID)
	}
	return out
}

// Dashboard returns the summary for the day containing now, served from the
// report cache when present.
func (s *ReportService) Dashboard(ctx context.Context, a Actor, now time.Time) (_ *Dashboard, err error) {
	defer obs.Time(ctx, "reports.Dashboard")(&err)

	now = now.UTC()
	scope, err := s.Scoper.Resolve(ctx, a)
	if err != nil {
		return nil, err
	}
	key := "dashboard:" + scope.Key(a) + ":" + now.Format(time.DateOnly)

	if s.Cache != nil {
		var cached Dashboard
		hit, err := s.Cache.Get(ctx, key, &cached)
		if err != nil {
			zap.L().Warn("report cache read failed", zap.String("req_id", obs.RequestID(ctx)), zap.String("key", key), zap.Error(err))
		}
		if hit {
			return &cached, nil
		}
	}

	d, err := s.buildDashboard(ctx, scope, now)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, d, s.CacheTTL); err != nil {
			zap.L().Warn("report cache write failed", zap.String("req_id", obs.RequestID(ctx)), zap.String("key", key), zap.Error(err))
		}
	}
	return d, nil
}

func (s *ReportService) buildDashboard(ctx context.Context, scope Scope, now time.Time) (*Dashboard, error) {
	orders, err := s.Orders.ListOrders(ctx, scope.ApplyToOrders(ports.OrderFilter{}))
	if err != nil {
		return nil, fmt.Errorf("dashboard: load orders: %w", err)
	}

	// Delivery owners see the shops they deliver for.
	shopIDs := scope.ShopIDsOrNil()
	if !scope.All && len(scope.CompanyIDs) > 0 {
		shopIDs = orderShopIDs(orders)
	}

	d := &Dashboard{GeneratedAt: now, Year: now.Year()}
	var shops map[int64]*domain.Shop

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.TotalProducts, err = s.Products.CountProducts(gctx, shopIDs)
		return err
	})
	g.Go(func() error {
		if shopIDs != nil {
			d.TotalShops = len(shopIDs)
			return nil
		}
		all, err := s.Shops.ListShops(gctx, ports.ShopFilter{})
		d.TotalShops = len(all)
		return err
	})
	g.Go(func() (err error) {
		shops, err = s.Shops.GetShopsByIDs(gctx, orderShopIDs(orders))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	for _, o := range orders {
		d.TotalOrders++
		if countsAsRevenue(o) {
			d.TotalRevenueCents += o.TotalCents
		}
	}

	thisMonth := monthStart(now)
	lastMonth := thisMonth.AddDate(0, -1, 0)
	nextMonth := thisMonth.AddDate(0, 1, 0)
	d.MonthRevenueCents, d.MonthOrders = periodTotals(orders, thisMonth, nextMonth)
	d.PrevMonthRevenueCents, d.PrevMonthOrders = periodTotals(orders, lastMonth, thisMonth)
	d.RevenueGrowth = GrowthRate(d.MonthRevenueCents, d.PrevMonthRevenueCents)
	d.OrdersGrowth = GrowthRate(int64(d.MonthOrders), int64(d.PrevMonthOrders))

	d.Monthly = RevenueByMonth(orders, now.Year())
	d.TopShops = TopShops(orders, shops, dashboardTopShops)
	d.Statuses = StatusBreakdown(orders)
	return d, nil
}

// Revenue returns the monthly revenue series for year.
func (s *ReportService) Revenue(ctx context.Context, a Actor, year int) ([]MonthlyRevenue, error) {
	if year < 1970 || year > 9999 {
		return nil, &domain.ValidationError{Field: "year", Message: "out of range"}
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	orders, err := s.scopedOrders(ctx, a, ports.OrderFilter{From: from, To: from.AddDate(1, 0, 0)})
	if err != nil {
		return nil, fmt.Errorf("revenue report: %w", err)
	}
	return RevenueByMonth(orders, year), nil
}

// TopShops ranks shops by completed revenue for orders created in [from, to).
// Zero bounds are open.
func (s *ReportService) TopShops(ctx context.Context, a Actor, from, to time.Time, limit int) ([]ShopRevenue, error) {
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return nil, &domain.ValidationError{Field: "from", Message: "must be before to"}
	}
	orders, err := s.scopedOrders(ctx, a, ports.OrderFilter{From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("top shops report: %w", err)
	}
	shops, err := s.Shops.GetShopsByIDs(ctx, orderShopIDs(orders))
	if err != nil {
		return nil, fmt.Errorf("top shops report: %w", err)
	}
	return TopShops(orders, shops, limit), nil
}
