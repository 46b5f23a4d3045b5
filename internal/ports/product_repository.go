package ports

import (
	"context"
	"market-dash-service/internal/domain"
)

// ProductFilter narrows ListProducts. A nil ShopIDs means all shops;
// an empty non-nil slice matches nothing.
type ProductFilter struct {
	ShopIDs    []int64
	Category   string
	Search     string
	ActiveOnly bool
}

type ProductRepository interface {
	ListProducts(ctx context.Context, f ProductFilter) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	// UpdateProduct writes every column except stock.
	UpdateProduct(ctx context.Context, p *domain.Product) error
	SetProductStock(ctx context.Context, id int64, stock int) error
	DeleteProduct(ctx context.Context, id int64) error
	CountProducts(ctx context.Context, shopIDs []int64) (int, error)
}
