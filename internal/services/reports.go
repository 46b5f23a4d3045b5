package services

import (
	"cmp"
	"fmt"
	"market-dash-service/internal/domain"
	"math"
	"slices"
	"time"
)

type MonthlyRevenue struct {
	Month        int
	Label        string
	RevenueCents int64
	Orders       int
}

type ShopRevenue struct {
	ShopID       int64
	ShopName     string
	RevenueCents int64
	Orders       int
}

type StatusCount struct {
	Status domain.OrderStatus
	Count  int
}

// countsAsRevenue reports whether an order's total is booked as revenue.
func countsAsRevenue(o *domain.Order) bool {
	return o.Status == domain.OrderCompleted
}

// RevenueByMonth buckets orders created in year into twelve months.
// Orders counts every order placed in the month; RevenueCents only
// completed ones.
func RevenueByMonth(orders []*domain.Order, year int) []MonthlyRevenue {
	out := make([]MonthlyRevenue, 12)
	for i := range out {
		m := time.Month(i + 1)
		out[i] = MonthlyRevenue{Month: i + 1, Label: m.String()[:3]}
	}

	for _, o := range orders {
		created := o.CreatedAt.UTC()
		if created.Year() != year {
			continue
		}
		b := &out[int(created.Month())-1]
		b.Orders++
		if countsAsRevenue(o) {
			b.RevenueCents += o.TotalCents
		}
	}
	return out
}

// TopShops ranks shops by completed revenue, then completed order count,
// then name. n <= 0 returns every shop that has revenue.
func TopShops(orders []*domain.Order, shops map[int64]*domain.Shop, n int) []ShopRevenue {
	byShop := map[int64]*ShopRevenue{}
	for _, o := range orders {
		if !countsAsRevenue(o) {
			continue
		}
		r, ok := byShop[o.ShopID]
		if !ok {
			name := fmt.Sprintf("Shop #%d", o.ShopID)
			if sh, ok := shops[o.ShopID]; ok {
				name = sh.Name
			}
			r = &ShopRevenue{ShopID: o.ShopID, ShopName: name}
			byShop[o.ShopID] = r
		}
		r.RevenueCents += o.TotalCents
		r.Orders++
	}

	out := make([]ShopRevenue, 0, len(byShop))
	for _, r := range byShop {
		out = append(out, *r)
	}

	slices.SortFunc(out, func(a, b ShopRevenue) int {
		if c := cmp.Compare(b.RevenueCents, a.RevenueCents); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Orders, a.Orders); c != 0 {
			return c
		}
		if c := cmp.Compare(a.ShopName, b.ShopName); c != 0 {
			return c
		}
		return cmp.Compare(a.ShopID, b.ShopID)
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// GrowthRate is the percentage change from previous to current, rounded to
// two decimals. From a zero baseline any positive value counts as 100%.
func GrowthRate(current, previous int64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	pct := float64(current-previous) / float64(previous) * 100
	return math.Round(pct*100) / 100
}

// StatusBreakdown counts orders per status. Every status is present.
func StatusBreakdown(orders []*domain.Order) []StatusCount {
	counts := make(map[domain.OrderStatus]int, len(domain.OrderStatuses))
	for _, o := range orders {
		counts[o.Status]++
	}

	out := make([]StatusCount, 0, len(domain.OrderStatuses))
	for _, s := range domain.OrderStatuses {
		out = append(out, StatusCount{Status: s, Count: counts[s]})
	}
	return out
}

// periodTotals sums completed revenue and order count for orders created
// in [from, to).
func periodTotals(orders []*domain.Order, from, to time.Time) (revenue int64, count int) {
	for _, o := range orders {
		if o.CreatedAt.Before(from) || !o.CreatedAt.Before(to) {
			continue
		}
		count++
		if countsAsRevenue(o) {
			revenue += o.TotalCents
		}
	}
	return revenue, count
}

// monthStart returns the first instant of t's month in UTC.
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
