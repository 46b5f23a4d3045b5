package dto

import "time"

type MonthlyRevenueResponse struct {
	Month        int    `json:"month"`
	Label        string `json:"label"`
	RevenueCents int64  `json:"revenue_cents"`
	Orders       int    `json:"orders"`
}

type ShopRevenueResponse struct {
	ShopID       int64  `json:"shop_id"`
	ShopName     string `json:"shop_name"`
	RevenueCents int64  `json:"revenue_cents"`
	Orders       int    `json:"orders"`
}

type StatusCountResponse struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type DashboardResponse struct {
	GeneratedAt time.Time `json:"generated_at"`
	Year        int       `json:"year"`

	TotalRevenueCents int64 `json:"total_revenue_cents"`
	TotalOrders       int   `json:"total_orders"`
	TotalProducts     int   `json:"total_products"`
	TotalShops        int   `json:"total_shops"`

	MonthRevenueCents     int64   `json:"month_revenue_cents"`
	PrevMonthRevenueCents int64   `json:"prev_month_revenue_cents"`
	MonthOrders           int     `json:"month_orders"`
	PrevMonthOrders       int     `json:"prev_month_orders"`
	RevenueGrowth         float64 `json:"revenue_growth_pct"`
	OrdersGrowth          float64 `json:"orders_growth_pct"`

	Monthly  []MonthlyRevenueResponse `json:"monthly"`
	TopShops []ShopRevenueResponse    `json:"top_shops"`
	Statuses []StatusCountResponse    `json:"statuses"`
}

type RevenueResponse struct {
	Year   int                      `json:"year"`
	Months []MonthlyRevenueResponse `json:"months"`
}

type TopShopsResponse struct {
	Shops []ShopRevenueResponse `json:"shops"`
}
