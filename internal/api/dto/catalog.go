package dto

import "time"

type ShopResponse struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type ShopDetailsResponse struct {
	ShopResponse
	Owner              *ProfileResponse `json:"owner"`
	ProductCount       int              `json:"product_count"`
	DeliveryCompanyIDs []int64          `json:"delivery_company_ids"`
}

type ListShopsResponse struct {
	Shops []ShopResponse `json:"shops"`
}

type CreateShopRequest struct {
	OwnerID     int64  `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Status      string `json:"status"`
}

// UpdateShopRequest only changes the fields that are present.
type UpdateShopRequest struct {
	OwnerID     *int64  `json:"owner_id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Address     *string `json:"address"`
	Phone       *string `json:"phone"`
	Status      *string `json:"status"`
}

type SetDeliveryCompaniesRequest struct {
	CompanyIDs []int64 `json:"company_ids"`
}

type ProductResponse struct {
	ID                  int64     `json:"id"`
	ShopID              int64     `json:"shop_id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Category            string    `json:"category"`
	PriceCents          int64     `json:"price_cents"`
	SalePriceCents      *int64    `json:"sale_price_cents"`
	EffectivePriceCents int64     `json:"effective_price_cents"`
	Stock               int       `json:"stock"`
	Active              bool      `json:"active"`
	CreatedAt           time.Time `json:"created_at"`
}

type ListProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

type CreateProductRequest struct {
	ShopID         int64  `json:"shop_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	PriceCents     int64  `json:"price_cents"`
	SalePriceCents *int64 `json:"sale_price_cents"`
	Stock          int    `json:"stock"`
	Active         *bool  `json:"active"`
}

// UpdateProductRequest only changes the fields that are present.
// ClearSalePrice removes the sale price.
type UpdateProductRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Category       *string `json:"category"`
	PriceCents     *int64  `json:"price_cents"`
	SalePriceCents *int64  `json:"sale_price_cents"`
	ClearSalePrice bool    `json:"clear_sale_price"`
	Stock          *int    `json:"stock"`
	Active         *bool   `json:"active"`
}
