package handlers

import (
	"bytes"
	"market-dash-service/internal/api/dto"
	"market-dash-service/internal/domain"
	"market-dash-service/internal/platform/obs"
	"market-dash-service/internal/ports"
	"market-dash-service/internal/services"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	defaultOrderLimit = 50
	maxOrderLimit     = 200
)

// OrderHandler exposes order endpoints. Reports backs the CSV export.
type OrderHandler struct {
	Svc     *services.OrderService
	Reports *services.ReportService
}

// orderFilter reads the filters shared by the list and export endpoints.
func orderFilter(r *http.Request) (ports.OrderFilter, error) {
	var f ports.OrderFilter
	var err error

	if f.ShopIDs, err = queryIDs(r, "shop_id"); err != nil {
		return f, err
	}
	if f.CompanyIDs, err = queryIDs(r, "company_id"); err != nil {
		return f, err
	}
	buyer, err := queryInt(r, "buyer_id", 0)
	if err != nil {
		return f, err
	}
	f.BuyerID = int64(buyer)
	f.Status = domain.OrderStatus(r.URL.Query().Get("status"))

	if f.From, err = queryTime(r, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryTime(r, "to"); err != nil {
		return f, err
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return f, &domain.ValidationError{Field: "from", Message: "must be before to"}
	}
	return f, nil
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	f, err := orderFilter(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	limit, err := queryInt(r, "limit", defaultOrderLimit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if limit < 1 || limit > maxOrderLimit {
		writeError(w, r, http.StatusBadRequest, "limit must be between 1 and 200")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if offset < 0 {
		writeError(w, r, http.StatusBadRequest, "offset must not be negative")
		return
	}
	f.Limit, f.Offset = limit, offset

	rows, err := h.Svc.List(r.Context(), a, f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListOrdersResponse{Orders: make([]dto.OrderResponse, 0, len(rows)), Limit: limit, Offset: offset}
	for _, row := range rows {
		o := orderResponse(row.Order)
		o.ShopName = row.ShopName
		o.BuyerName = row.BuyerName
		res.Orders = append(res.Orders, o)
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	d, err := h.Svc.Details(r.Context(), a, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, orderDetailsResponse(d))
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req dto.CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := services.CreateOrderInput{
		ShopID:           req.ShopID,
		BuyerID:          req.BuyerID,
		DeliveryMethodID: req.DeliveryMethodID,
		ShippingAddress:  req.ShippingAddress,
		Items:            make([]services.OrderItemInput, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, services.OrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	o, err := h.Svc.Create(r.Context(), a, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, orderResponse(o))
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.Svc.UpdateStatus(r.Context(), a, id, domain.OrderStatus(req.Status), req.Note)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, orderResponse(o))
}

func (h *OrderHandler) AssignDriver(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.AssignDriverRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.Svc.AssignDriver(r.Context(), a, id, req.DriverID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, orderResponse(o))
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Svc.Delete(r.Context(), a, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	comments, err := h.Svc.Comments(r.Context(), a, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListCommentsResponse{Comments: make([]dto.CommentResponse, 0, len(comments))}
	for _, c := range comments {
		res.Comments = append(res.Comments, commentResponse(c))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *OrderHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.CreateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.Svc.AddComment(r.Context(), a, id, req.Body)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, commentResponse(services.CommentView{Comment: c}))
}

// Export returns the filtered orders as a CSV attachment.
func (h *OrderHandler) Export(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	f, err := orderFilter(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if _, err := h.Reports.ExportOrdersCSV(r.Context(), a, f, &buf); err != nil {
		writeServiceError(w, r, err)
		return
	}

	name := "orders-" + time.Now().UTC().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		zap.L().Warn("write export failed", zap.String("req_id", obs.RequestID(r.Context())), zap.Error(err))
	}
}
