package services

import (
	"context"
	"fmt"
	"market-dash-service/internal/domain"
	"market-dash-service/internal/ports"
	"slices"
	"strconv"
)

// Actor is the profile on whose behalf a request runs.
type Actor struct {
	ProfileID int64
	Role      domain.Role
}

func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

// Scope is the set of tenants an actor may see. All overrides the id lists.
type Scope struct {
	All        bool
	ShopIDs    []int64
	CompanyIDs []int64
}

// Key identifies the scope in cache keys.
func (s Scope) Key(a Actor) string {
	if s.All {
		return "all"
	}
	return string(a.Role) + ":" + strconv.FormatInt(a.ProfileID, 10)
}

func (s Scope) HasShop(id int64) bool {
	return s.All || slices.Contains(s.ShopIDs, id)
}

func (s Scope) HasCompany(id *int64) bool {
	if s.All {
		return true
	}
	return id != nil && slices.Contains(s.CompanyIDs, *id)
}

// CanViewOrder reports whether the order belongs to a shop or delivery
// company in scope.
func (s Scope) CanViewOrder(o *domain.Order) bool {
	return s.HasShop(o.ShopID) || s.HasCompany(o.DeliveryCompanyID)
}

// Scoper resolves an actor to the shops and delivery companies they own.
type Scoper struct {
	Shops    ports.ShopRepository
	Delivery ports.DeliveryRepository
}

func (s *Scoper) Resolve(ctx context.Context, a Actor) (Scope, error) {
	switch a.Role {
	case domain.RoleAdmin:
		return Scope{All: true}, nil

	case domain.RoleShopOwner:
		shops, err := s.Shops.ListShops(ctx, ports.ShopFilter{OwnerID: a.ProfileID})
		if err != nil {
			return Scope{}, fmt.Errorf("resolve scope: list shops: %w", err)
		}
		ids := make([]int64, 0, len(shops))
		for _, sh := range shops {
			ids = append(ids, sh.ID)
		}
		return Scope{ShopIDs: ids, CompanyIDs: []int64{}}, nil

	case domain.RoleDeliveryOwner:
		companies, err := s.Delivery.ListCompanies(ctx, a.ProfileID)
		if err != nil {
			return Scope{}, fmt.Errorf("resolve scope: list companies: %w", err)
		}
		ids := make([]int64, 0, len(companies))
		for _, c := range companies {
			ids = append(ids, c.ID)
		}
		return Scope{ShopIDs: []int64{}, CompanyIDs: ids}, nil
	}

	return Scope{}, fmt.Errorf("role %q has no back-office access: %w", a.Role, domain.ErrForbidden)
}

// narrow intersects requested ids with allowed ids. A nil request means
// "everything allowed"; nil allowed means no restriction.
func narrow(requested, allowed []int64) []int64 {
	if allowed == nil {
		return requested
	}
	if requested == nil {
		return allowed
	}
	out := make([]int64, 0, len(requested))
	for _, id := range requested {
		if slices.Contains(allowed, id) {
			out = append(out, id)
		}
	}
	return out
}

func forbidden(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, domain.ErrForbidden)...)
}

// ApplyToOrders restricts an order filter to the scope. Delivery owners are
// scoped by company, everyone else by shop.
func (s Scope) ApplyToOrders(f ports.OrderFilter) ports.OrderFilter {
	if s.All {
		return f
	}
	if len(s.CompanyIDs) > 0 {
		f.CompanyIDs = narrow(f.CompanyIDs, s.CompanyIDs)
		return f
	}
	f.ShopIDs = narrow(f.ShopIDs, s.ShopIDs)
	return f
}

// ShopIDsOrNil returns nil for unrestricted scopes.
func (s Scope) ShopIDsOrNil() []int64 {
	if s.All {
		return nil
	}
	return s.ShopIDs
}
