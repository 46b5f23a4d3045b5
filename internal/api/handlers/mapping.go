package handlers

import (
	"market-dash-service/internal/api/dto"
	"market-dash-service/internal/domain"
	"market-dash-service/internal/services"
)

func profileResponse(p *domain.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:        p.ID,
		FullName:  p.FullName,
		Email:     p.Email,
		Phone:     p.Phone,
		Role:      string(p.Role),
		CreatedAt: p.CreatedAt,
	}
}

func shopResponse(s *domain.Shop) dto.ShopResponse {
	return dto.ShopResponse{
		ID:          s.ID,
		OwnerID:     s.OwnerID,
		Name:        s.Name,
		Description: s.Description,
		Address:     s.Address,
		Phone:       s.Phone,
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt,
	}
}

func productResponse(p *domain.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:                  p.ID,
		ShopID:              p.ShopID,
		Title:               p.Title,
		Description:         p.Description,
		Category:            p.Category,
		PriceCents:          p.PriceCents,
		SalePriceCents:      p.SalePriceCents,
		EffectivePriceCents: p.EffectivePrice(),
		Stock:               p.Stock,
		Active:              p.Active,
		CreatedAt:           p.CreatedAt,
	}
}

func companyResponse(c *domain.DeliveryCompany) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
	}
}

func driverResponse(d *domain.DeliveryDriver) dto.DriverResponse {
	return dto.DriverResponse{
		ID:            d.ID,
		CompanyID:     d.CompanyID,
		CarID:         d.CarID,
		Name:          d.Name,
		Phone:         d.Phone,
		LicenseNumber: d.LicenseNumber,
		Status:        string(d.Status),
	}
}

func carResponse(c *domain.DeliveryCar) dto.CarResponse {
	return dto.CarResponse{
		ID:          c.ID,
		CompanyID:   c.CompanyID,
		PlateNumber: c.PlateNumber,
		Brand:       c.Brand,
		Model:       c.Model,
		Color:       c.Color,
		CapacityKg:  c.CapacityKg,
	}
}

func methodResponse(m *domain.DeliveryMethod) dto.MethodResponse {
	return dto.MethodResponse{
		ID:            m.ID,
		CompanyID:     m.CompanyID,
		Label:         m.Label,
		PriceCents:    m.PriceCents,
		EstimatedDays: m.EstimatedDays,
	}
}

func orderResponse(o *domain.Order) dto.OrderResponse {
	res := dto.OrderResponse{
		ID:                o.ID,
		Reference:         o.Reference,
		ShopID:            o.ShopID,
		BuyerID:           o.BuyerID,
		DeliveryCompanyID: o.DeliveryCompanyID,
		DeliveryMethodID:  o.DeliveryMethodID,
		DriverID:          o.DriverID,
		Status:            string(o.Status),
		ShippingAddress:   o.ShippingAddress,
		SubtotalCents:     o.SubtotalCents,
		DeliveryFeeCents:  o.DeliveryFeeCents,
		TotalCents:        o.TotalCents,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	for _, it := range o.Items {
		res.Items = append(res.Items, dto.OrderItemResponse{
			ID:             it.ID,
			ProductID:      it.ProductID,
			Title:          it.Title,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			LineTotalCents: it.LineTotal(),
		})
	}
	return res
}

func commentResponse(v services.CommentView) dto.CommentResponse {
	res := dto.CommentResponse{
		ID:        v.Comment.ID,
		OrderID:   v.Comment.OrderID,
		AuthorID:  v.Comment.AuthorID,
		Body:      v.Comment.Body,
		CreatedAt: v.Comment.CreatedAt,
	}
	if v.Author != nil {
		res.AuthorName = v.Author.FullName
	}
	return res
}

func orderDetailsResponse(d *services.OrderDetails) dto.OrderDetailsResponse {
	res := dto.OrderDetailsResponse{
		OrderResponse: orderResponse(d.Order),
		Products:      make(map[int64]dto.ProductSummary, len(d.Products)),
		Comments:      make([]dto.CommentResponse, 0, len(d.Comments)),
		Tracking:      make([]dto.TrackingResponse, 0, len(d.Tracking)),
	}
	if d.Shop != nil {
		sh := shopResponse(d.Shop)
		res.Shop = &sh
		res.ShopName = d.Shop.Name
	}
	if d.Buyer != nil {
		b := profileResponse(d.Buyer)
		res.Buyer = &b
		res.BuyerName = d.Buyer.FullName
	}
	for id, p := range d.Products {
		res.Products[id] = dto.ProductSummary{Title: p.Title, Category: p.Category, Stock: p.Stock, Active: p.Active}
	}
	if d.Company != nil {
		c := companyResponse(d.Company)
		res.Company = &c
	}
	if d.Method != nil {
		m := methodResponse(d.Method)
		res.Method = &m
	}
	if d.Driver != nil {
		dr := driverResponse(d.Driver)
		res.Driver = &dr
	}
	if d.Car != nil {
		c := carResponse(d.Car)
		res.Car = &c
	}
	for _, c := range d.Comments {
		res.Comments = append(res.Comments, commentResponse(c))
	}
	for _, e := range d.Tracking {
		res.Tracking = append(res.Tracking, dto.TrackingResponse{Status: string(e.Status), Note: e.Note, CreatedAt: e.CreatedAt})
	}
	return res
}

func monthlyResponse(months []services.MonthlyRevenue) []dto.MonthlyRevenueResponse {
	out := make([]dto.MonthlyRevenueResponse, 0, len(months))
	for _, m := range months {
		out = append(out, dto.MonthlyRevenueResponse{Month: m.Month, Label: m.Label, RevenueCents: m.RevenueCents, Orders: m.Orders})
	}
	return out
}

func shopRevenueResponse(shops []services.ShopRevenue) []dto.ShopRevenueResponse {
	out := make([]dto.ShopRevenueResponse, 0, len(shops))
	for _, s := range shops {
		out = append(out, dto.ShopRevenueResponse{ShopID: s.ShopID, ShopName: s.ShopName, RevenueCents: s.RevenueCents, Orders: s.Orders})
	}
	return out
}
