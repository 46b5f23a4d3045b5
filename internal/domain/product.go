package domain

import (
	"strings"
	"time"
)

// Product is a catalog entry belonging to one shop. Prices are in cents.
type Product struct {
	ID             int64
	ShopID         int64
	Title          string
	Description    string
	Category       string
	PriceCents     int64
	SalePriceCents *int64
	Stock          int
	Active         bool
	CreatedAt      time.Time
}

// EffectivePrice is the price a buyer pays for one unit.
func (p *Product) EffectivePrice() int64 {
	if p.SalePriceCents != nil && *p.SalePriceCents < p.PriceCents {
		return *p.SalePriceCents
	}
	return p.PriceCents
}

func (p *Product) Validate() error {
	if p.ShopID <= 0 {
		return invalid("shop_id", "must be set")
	}
	if strings.TrimSpace(p.Title) == "" {
		return invalid("title", "must not be empty")
	}
	if p.PriceCents < 0 {
		return invalid("price_cents", "must not be negative")
	}
	if p.SalePriceCents != nil {
		if *p.SalePriceCents < 0 {
			return invalid("sale_price_cents", "must not be negative")
		}
		if *p.SalePriceCents > p.PriceCents {
			return invalid("sale_price_cents", "must not exceed price_cents")
		}
	}
	if p.Stock < 0 {
		return invalid("stock", "must not be negative")
	}
	return nil
}
