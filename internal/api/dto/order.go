package dto

import "time"

type OrderItemResponse struct {
	ID             int64  `json:"id"`
	ProductID      int64  `json:"product_id"`
	Title          string `json:"title"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type OrderResponse struct {
	ID                int64               `json:"id"`
	Reference         string              `json:"reference"`
	ShopID            int64               `json:"shop_id"`
	ShopName          string              `json:"shop_name,omitempty"`
	BuyerID           int64               `json:"buyer_id"`
	BuyerName         string              `json:"buyer_name,omitempty"`
	DeliveryCompanyID *int64              `json:"delivery_company_id"`
	DeliveryMethodID  *int64              `json:"delivery_method_id"`
	DriverID          *int64              `json:"driver_id"`
	Status            string              `json:"status"`
	ShippingAddress   string              `json:"shipping_address"`
	SubtotalCents     int64               `json:"subtotal_cents"`
	DeliveryFeeCents  int64               `json:"delivery_fee_cents"`
	TotalCents        int64               `json:"total_cents"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	Items             []OrderItemResponse `json:"items,omitempty"`
}

type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type CommentResponse struct {
	ID         int64     `json:"id"`
	OrderID    int64     `json:"order_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

type ListCommentsResponse struct {
	Comments []CommentResponse `json:"comments"`
}

type TrackingResponse struct {
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

type OrderDetailsResponse struct {
	OrderResponse
	Shop     *ShopResponse            `json:"shop"`
	Buyer    *ProfileResponse         `json:"buyer"`
	Products map[int64]ProductSummary `json:"products"`
	Company  *CompanyResponse         `json:"delivery_company"`
	Method   *MethodResponse          `json:"delivery_method"`
	Driver   *DriverResponse          `json:"driver"`
	Car      *CarResponse             `json:"car"`
	Comments []CommentResponse        `json:"comments"`
	Tracking []TrackingResponse       `json:"tracking"`
}

// ProductSummary is the catalog view of an ordered product.
type ProductSummary struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Stock    int    `json:"stock"`
	Active   bool   `json:"active"`
}

type OrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type CreateOrderRequest struct {
	ShopID           int64              `json:"shop_id"`
	BuyerID          int64              `json:"buyer_id"`
	DeliveryMethodID *int64             `json:"delivery_method_id"`
	ShippingAddress  string             `json:"shipping_address"`
	Items            []OrderItemRequest `json:"items"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type AssignDriverRequest struct {
	DriverID int64 `json:"driver_id"`
}

type CreateCommentRequest struct {
	Body string `json:"body"`
}
