package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"market-dash-service/internal/ports"
	"strconv"
	"time"
)

var exportHeader = []string{
	"reference", "created_at", "shop", "buyer", "status",
	"subtotal", "delivery_fee", "total",
}

// formatCents renders an amount in cents as a decimal string, e.g. 1234 -> "12.34".
func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// ExportOrdersCSV writes the orders in scope matching f as CSV, one row per
// order after a header row.
func (s *ReportService) ExportOrdersCSV(ctx context.Context, a Actor, f ports.OrderFilter, w io.Writer) (int, error) {
	orders := &OrderService{
		Orders:   s.Orders,
		Shops:    s.Shops,
		Profiles: s.Profiles,
		Scoper:   s.Scoper,
	}
	rows, err := orders.List(ctx, a, f)
	if err != nil {
		return 0, fmt.Errorf("export orders: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("export orders: write header: %w", err)
	}
	for _, r := range rows {
		o := r.Order
		shop := r.ShopName
		if shop == "" {
			shop = "Shop #" + strconv.FormatInt(o.ShopID, 10)
		}
		rec := []string{
			o.Reference,
			o.CreatedAt.UTC().Format(time.RFC3339),
			shop,
			r.BuyerName,
			string(o.Status),
			formatCents(o.SubtotalCents),
			formatCents(o.DeliveryFeeCents),
			formatCents(o.TotalCents),
		}
		if err := cw.Write(rec); err != nil {
			return 0, fmt.Errorf("export orders: write %s: %w", o.Reference, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("export orders: flush: %w", err)
	}
	return len(rows), nil
}
