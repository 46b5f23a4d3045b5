package services

import (
	"context"
	"errors"
	"fmt"
	"market-dash-service/internal/domain"
	"market-dash-service/internal/ports"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// ShopPatch carries optional fields to update a shop.
// A nil field means "do not change" that attribute.
type ShopPatch struct {
	OwnerID     *int64
	Name        *string
	Description *string
	Address     *string
	Phone       *string
	Status      *domain.ShopStatus
}

type ProductPatch struct {
	Title          *string
	Description    *string
	Category       *string
	PriceCents     *int64
	SalePriceCents **int64
	Stock          *int
	Active         *bool
}

// ShopDetails is a shop joined with its owner and catalog summary.
type ShopDetails struct {
	Shop               *domain.Shop
	Owner              *domain.Profile
	ProductCount       int
	DeliveryCompanyIDs []int64
}

// CatalogService manages shops and products within an actor's scope.
type CatalogService struct {
	Shops    ports.ShopRepository
	Products ports.ProductRepository
	Profiles ports.ProfileRepository
	Orders   ports.OrderRepository
	Delivery ports.DeliveryRepository
	Scoper   *Scoper
	Now      func() time.Time
}

func (s *CatalogService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func canManageCatalog(a Actor) error {
	if a.Role != domain.RoleAdmin && a.Role != domain.RoleShopOwner {
		return forbidden("role %q cannot manage shops", a.Role)
	}
	return nil
}

// ownedShop loads a shop and checks the actor may manage it.
func (s *CatalogService) ownedShop(ctx context.Context, a Actor, id int64) (*domain.Shop, error) {
	if err := canManageCatalog(a); err != nil {
		return nil, err
	}
	sh, err := s.Shops.GetShop(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsAdmin() && sh.OwnerID != a.ProfileID {
		return nil, forbidden("shop %d is not owned by profile %d", id, a.ProfileID)
	}
	return sh, nil
}

func (s *CatalogService) ListShops(ctx context.Context, a Actor, f ports.ShopFilter) ([]*domain.Shop, error) {
	if err := canManageCatalog(a); err != nil {
		return nil, err
	}
	if !a.IsAdmin() {
		f.OwnerID = a.ProfileID
	}
	shops, err := s.Shops.ListShops(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	return shops, nil
}

// GetShop assembles the shop view from parallel lookups.
func (s *CatalogService) GetShop(ctx context.Context, a Actor, id int64) (*ShopDetails, error) {
	sh, err := s.ownedShop(ctx, a, id)
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}

	out := &ShopDetails{Shop: sh}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		owner, err := s.Profiles.GetProfile(gctx, sh.OwnerID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		out.Owner = owner
		return err
	})
	g.Go(func() error {
		n, err := s.Products.CountProducts(gctx, []int64{sh.ID})
		out.ProductCount = n
		return err
	})
	g.Go(func() error {
		ids, err := s.Shops.ListShopDeliveryCompanyIDs(gctx, sh.ID)
		out.DeliveryCompanyIDs = ids
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("get shop id=%d: %w", id, err)
	}
	return out, nil
}

func (s *CatalogService) CreateShop(ctx context.Context, a Actor, sh *domain.Shop) error {
	if err := canManageCatalog(a); err != nil {
		return err
	}
	if !a.IsAdmin() {
		sh.OwnerID = a.ProfileID
	}
	if sh.Status == "" {
		sh.Status = domain.ShopActive
	}
	sh.Name = strings.TrimSpace(sh.Name)
	if err := sh.Validate(); err != nil {
		return err
	}

	if err := s.checkShopOwner(ctx, sh.OwnerID); err != nil {
		return fmt.Errorf("create shop: %w", err)
	}

	sh.CreatedAt = s.now()
	return s.Shops.CreateShop(ctx, sh)
}

// checkShopOwner requires an existing profile allowed to own shops.
func (s *CatalogService) checkShopOwner(ctx context.Context, ownerID int64) error {
	owner, err := s.Profiles.GetProfile(ctx, ownerID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.ValidationError{Field: "owner_id", Message: "unknown owner"}
	}
	if err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	if owner.Role != domain.RoleShopOwner && owner.Role != domain.RoleAdmin {
		return &domain.ValidationError{Field: "owner_id", Message: "owner must be a shop owner"}
	}
	return nil
}

func (s *CatalogService) UpdateShop(ctx context.Context, a Actor, id int64, p ShopPatch) (*domain.Shop, error) {
	sh, err := s.ownedShop(ctx, a, id)
	if err != nil {
		return nil, fmt.Errorf("update shop: %w", err)
	}

	if p.OwnerID != nil {
		if !a.IsAdmin() && *p.OwnerID != sh.OwnerID {
			return nil, forbidden("only admins can transfer shop %d", id)
		}
		if *p.OwnerID != sh.OwnerID {
			if err := s.checkShopOwner(ctx, *p.OwnerID); err != nil {
				return nil, fmt.Errorf("update shop: %w", err)
			}
		}
		sh.OwnerID = *p.OwnerID
	}
	if p.Name != nil {
		sh.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		sh.Description = *p.Description
	}
	if p.Address != nil {
		sh.Address = *p.Address
	}
	if p.Phone != nil {
		sh.Phone = *p.Phone
	}
	if p.Status != nil {
		sh.Status = *p.Status
	}
	if err := sh.Validate(); err != nil {
		return nil, err
	}

	if err := s.Shops.UpdateShop(ctx, sh); err != nil {
		return nil, err
	}
	return sh, nil
}

// DeleteShop removes a shop and its products. Shops with orders are kept
// for reporting and fail with ErrConflict.
func (s *CatalogService) DeleteShop(ctx context.Context, a Actor, id int64) error {
	if _, err := s.ownedShop(ctx, a, id); err != nil {
		return fmt.Errorf("delete shop: %w", err)
	}

	orders, err := s.Orders.ListOrders(ctx, ports.OrderFilter{ShopIDs: []int64{id}, Limit: 1})
	if err != nil {
		return fmt.Errorf("delete shop: %w", err)
	}
	if len(orders) > 0 {
		return fmt.Errorf("delete shop id=%d: shop has orders: %w", id, domain.ErrConflict)
	}

	return s.Shops.DeleteShop(ctx, id)
}

func (s *CatalogService) SetDeliveryCompanies(ctx context.Context, a Actor, shopID int64, companyIDs []int64) error {
	if _, err := s.ownedShop(ctx, a, shopID); err != nil {
		return fmt.Errorf("set delivery companies: %w", err)
	}

	for _, cid := range companyIDs {
		if _, err := s.Delivery.GetCompany(ctx, cid); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.ValidationError{Field: "company_ids", Message: fmt.Sprintf("unknown delivery company %d", cid)}
			}
			return fmt.Errorf("set delivery companies: %w", err)
		}
	}

	return s.Shops.SetShopDeliveryCompanies(ctx, shopID, companyIDs)
}

func (s *CatalogService) ListProducts(ctx context.Context, a Actor, f ports.ProductFilter) ([]*domain.Product, error) {
	if err := canManageCatalog(a); err != nil {
		return nil, err
	}
	scope, err := s.Scoper.Resolve(ctx, a)
	if err != nil {
		return nil, err
	}
	f.ShopIDs = narrow(f.ShopIDs, scope.ShopIDsOrNil())

	products, err := s.Products.ListProducts(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, a Actor, id int64) (*domain.Product, error) {
	if err := canManageCatalog(a); err != nil {
		return nil, err
	}
	p, err := s.Products.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedShop(ctx, a, p.ShopID); err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, a Actor, p *domain.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, err := s.ownedShop(ctx, a, p.ShopID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.ValidationError{Field: "shop_id", Message: "unknown shop"}
		}
		return fmt.Errorf("create product: %w", err)
	}

	p.Title = strings.TrimSpace(p.Title)
	p.CreatedAt = s.now()
	return s.Products.CreateProduct(ctx, p)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, a Actor, id int64, patch ProductPatch) (*domain.Product, error) {
	p, err := s.GetProduct(ctx, a, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		p.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.PriceCents != nil {
		p.PriceCents = *patch.PriceCents
	}
	if patch.SalePriceCents != nil {
		p.SalePriceCents = *patch.SalePriceCents
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.Products.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	if patch.Stock != nil {
		if err := s.Products.SetProductStock(ctx, id, *patch.Stock); err != nil {
			return nil, err
		}
	}

	// Reload so the returned stock reflects reservations made meanwhile.
	return s.Products.GetProduct(ctx, id)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, a Actor, id int64) error {
	if _, err := s.GetProduct(ctx, a, id); err != nil {
		return err
	}
	return s.Products.DeleteProduct(ctx, id)
}
