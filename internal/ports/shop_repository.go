package ports

import (
	"context"
	"market-dash-service/internal/domain"
)

// ShopFilter narrows ListShops. Zero values mean "no constraint".
type ShopFilter struct {
	OwnerID int64
	Status  domain.ShopStatus
	Search  string
}

// Port: a boundary for shop storage.
type ShopRepository interface {
	ListShops(ctx context.Context, f ShopFilter) ([]*domain.Shop, error)
	GetShop(ctx context.Context, id int64) (*domain.Shop, error)
	GetShopsByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Shop, error)
	CreateShop(ctx context.Context, s *domain.Shop) error
	UpdateShop(ctx context.Context, s *domain.Shop) error
	DeleteShop(ctx context.Context, id int64) error
	// Replace the set of delivery companies linked to a shop.
	SetShopDeliveryCompanies(ctx context.Context, shopID int64, companyIDs []int64) error
	ListShopDeliveryCompanyIDs(ctx context.Context, shopID int64) ([]int64, error)
}
