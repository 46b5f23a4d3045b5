package handlers

import (
	"market-dash-service/internal/api/dto"
	"market-dash-service/internal/services"
	"net/http"
	"time"
)

const defaultTopShops = 5

type ReportHandler struct {
	Svc *services.ReportService
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}

	d, err := h.Svc.Dashboard(r.Context(), a, time.Now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.DashboardResponse{
		GeneratedAt:           d.GeneratedAt,
		Year:                  d.Year,
		TotalRevenueCents:     d.TotalRevenueCents,
		TotalOrders:           d.TotalOrders,
		TotalProducts:         d.TotalProducts,
		TotalShops:            d.TotalShops,
		MonthRevenueCents:     d.MonthRevenueCents,
		PrevMonthRevenueCents: d.PrevMonthRevenueCents,
		MonthOrders:           d.MonthOrders,
		PrevMonthOrders:       d.PrevMonthOrders,
		RevenueGrowth:         d.RevenueGrowth,
		OrdersGrowth:          d.OrdersGrowth,
		Monthly:               monthlyResponse(d.Monthly),
		TopShops:              shopRevenueResponse(d.TopShops),
		Statuses:              make([]dto.StatusCountResponse, 0, len(d.Statuses)),
	}
	for _, s := range d.Statuses {
		res.Statuses = append(res.Statuses, dto.StatusCountResponse{Status: string(s.Status), Count: s.Count})
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *ReportHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	year, err := queryInt(r, "year", time.Now().UTC().Year())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	months, err := h.Svc.Revenue(r.Context(), a, year)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.RevenueResponse{Year: year, Months: monthlyResponse(months)})
}

func (h *ReportHandler) TopShops(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit", defaultTopShops)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if limit < 1 || limit > 100 {
		writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 100")
		return
	}
	from, err := queryTime(r, "from")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	shops, err := h.Svc.TopShops(r.Context(), a, from, to, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.TopShopsResponse{Shops: shopRevenueResponse(shops)})
}
