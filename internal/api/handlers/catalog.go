package handlers

import (
	"market-dash-service/internal/api/dto"
	"market-dash-service/internal/domain"
	"market-dash-service/internal/ports"
	"market-dash-service/internal/services"
	"net/http"
	"strings"
)

// CatalogHandler exposes shop and product endpoints.
type CatalogHandler struct {
	Svc *services.CatalogService
}

func (h *CatalogHandler) ListShops(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	ownerID, err := queryInt(r, "owner_id", 0)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	q := r.URL.Query()
	f := ports.ShopFilter{
		OwnerID: int64(ownerID),
		Status:  domain.ShopStatus(q.Get("status")),
		Search:  strings.TrimSpace(q.Get("q")),
	}

	shops, err := h.Svc.ListShops(r.Context(), a, f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListShopsResponse{Shops: make([]dto.ShopResponse, 0, len(shops))}
	for _, s := range shops {
		res.Shops = append(res.Shops, shopResponse(s))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *CatalogHandler) GetShop(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	d, err := h.Svc.GetShop(r.Context(), a, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ShopDetailsResponse{
		ShopResponse:       shopResponse(d.Shop),
		ProductCount:       d.ProductCount,
		DeliveryCompanyIDs: d.DeliveryCompanyIDs,
	}
	if d.Owner != nil {
		owner := profileResponse(d.Owner)
		res.Owner = &owner
	}
	if res.DeliveryCompanyIDs == nil {
		res.DeliveryCompanyIDs = []int64{}
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *CatalogHandler) CreateShop(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req dto.CreateShopRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sh := &domain.Shop{
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Phone:       req.Phone,
		Status:      domain.ShopStatus(req.Status),
	}
	if err := h.Svc.CreateShop(r.Context(), a, sh); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, shopResponse(sh))
}

func (h *CatalogHandler) UpdateShop(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateShopRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch := services.ShopPatch{
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Phone:       req.Phone,
	}
	if req.Status != nil {
		st := domain.ShopStatus(*req.Status)
		patch.Status = &st
	}

	sh, err := h.Svc.UpdateShop(r.Context(), a, id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, shopResponse(sh))
}

func (h *CatalogHandler) DeleteShop(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Svc.DeleteShop(r.Context(), a, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) SetDeliveryCompanies(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.SetDeliveryCompaniesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Svc.SetDeliveryCompanies(r.Context(), a, id, req.CompanyIDs); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if req.CompanyIDs == nil {
		req.CompanyIDs = []int64{}
	}
	writeJSON(w, r, http.StatusOK, req)
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	shopIDs, err := queryIDs(r, "shop_id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	q := r.URL.Query()
	products, err := h.Svc.ListProducts(r.Context(), a, ports.ProductFilter{
		ShopIDs:    shopIDs,
		Category:   strings.TrimSpace(q.Get("category")),
		Search:     strings.TrimSpace(q.Get("q")),
		ActiveOnly: q.Get("active") == "true",
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListProductsResponse{Products: make([]dto.ProductResponse, 0, len(products))}
	for _, p := range products {
		res.Products = append(res.Products, productResponse(p))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.Svc.GetProduct(r.Context(), a, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, productResponse(p))
}

func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req dto.CreateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p := &domain.Product{
		ShopID:         req.ShopID,
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		PriceCents:     req.PriceCents,
		SalePriceCents: req.SalePriceCents,
		Stock:          req.Stock,
		Active:         req.Active == nil || *req.Active,
	}
	if err := h.Svc.CreateProduct(r.Context(), a, p); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, productResponse(p))
}

func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ClearSalePrice && req.SalePriceCents != nil {
		writeError(w, r, http.StatusBadRequest, "sale_price_cents and clear_sale_price are mutually exclusive")
		return
	}

	patch := services.ProductPatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
		Active:      req.Active,
	}
	switch {
	case req.ClearSalePrice:
		var none *int64
		patch.SalePriceCents = &none
	case req.SalePriceCents != nil:
		patch.SalePriceCents = &req.SalePriceCents
	}

	p, err := h.Svc.UpdateProduct(r.Context(), a, id, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, productResponse(p))
}

func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	a, ok := requireActor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Svc.DeleteProduct(r.Context(), a, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
