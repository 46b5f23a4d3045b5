package services

import (
	"context"
	"errors"
	"fmt"
	"market-dash-service/internal/domain"
	"market-dash-service/internal/ports"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const maxCommentLength = 2000

// OrderRow is an order joined with the names the list view shows.
type OrderRow struct {
	Order     *domain.Order
	ShopName  string
	BuyerName string
}

// OrderDetails is the merged view of one order. Related rows that no
// longer exist are left nil.
type OrderDetails struct {
	Order    *domain.Order
	Shop     *domain.Shop
	Buyer    *domain.Profile
	Products map[int64]*domain.Product
	Company  *domain.DeliveryCompany
	Method   *domain.DeliveryMethod
	Driver   *domain.DeliveryDriver
	Car      *domain.DeliveryCar
	Comments []CommentView
	Tracking []*domain.TrackingEntry
}

type CommentView struct {
	Comment *domain.OrderComment
	Author  *domain.Profile
}

type OrderItemInput struct {
	ProductID int64
	Quantity  int
}

type CreateOrderInput struct {
	ShopID           int64
	BuyerID          int64
	DeliveryMethodID *int64
	ShippingAddress  string
	Items            []OrderItemInput
}

// OrderService reads and mutates orders within an actor's scope.
type OrderService struct {
	Orders   ports.OrderRepository
	Shops    ports.ShopRepository
	Products ports.ProductRepository
	Profiles ports.ProfileRepository
	Delivery ports.DeliveryRepository
	Scoper   *Scoper
	Now      func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// visibleOrder loads an order and checks it is in the actor's scope.
// Orders outside the scope are reported as not found.
func (s *OrderService) visibleOrder(ctx context.Context, a Actor, id int64) (*domain.Order, Scope, error) {
	scope, err := s.Scoper.Resolve(ctx, a)
	if err != nil {
		return nil, Scope{}, err
	}
	o, err := s.Orders.GetOrder(ctx, id)
	if err != nil {
		return nil, Scope{}, err
	}
	if !scope.CanViewOrder(o) {
		return nil, Scope{}, fmt.Errorf("order id=%d: %w", id, domain.ErrNotFound)
	}
	return o, scope, nil
}

// List returns orders in scope, joined with shop and buyer names using one
// batch query each.
func (s *OrderService) List(ctx context.Context, a Actor, f ports.OrderFilter) ([]OrderRow, error) {
	scope, err := s.Scoper.Resolve(ctx, a)
	if err != nil {
		return nil, err
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", f.Status)}
	}

	orders, err := s.Orders.ListOrders(ctx, scope.ApplyToOrders(f))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return s.joinNames(ctx, orders)
}

func (s *OrderService) joinNames(ctx context.Context, orders []*domain.Order) ([]OrderRow, error) {
	shopIDs := make([]int64, 0, len(orders))
	buyerIDs := make([]int64, 0, len(orders))
	for _, o := range orders {
		shopIDs = append(shopIDs, o.ShopID)
		buyerIDs = append(buyerIDs, o.BuyerID)
	}

	var (
		shops  map[int64]*domain.Shop
		buyers map[int64]*domain.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		shops, err = s.Shops.GetShopsByIDs(gctx, shopIDs)
		return err
	})
	g.Go(func() (err error) {
		buyers, err = s.Profiles.GetProfilesByIDs(gctx, buyerIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("join order names: %w", err)
	}

	rows := make([]OrderRow, 0, len(orders))
	for _, o := range orders {
		row := OrderRow{Order: o}
		if sh, ok := shops[o.ShopID]; ok {
			row.ShopName = sh.Name
		}
		if p, ok := buyers[o.BuyerID]; ok {
			row.BuyerName = p.FullName
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ignoreMissing turns a not-found lookup into a nil result.
func ignoreMissing(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

// Details assembles the order view from parallel lookups.
func (s *OrderService) Details(ctx context.Context, a Actor, id int64) (*OrderDetails, error) {
	o, _, err := s.visibleOrder(ctx, a, id)
	if err != nil {
		return nil, fmt.Errorf("order details: %w", err)
	}

	out := &OrderDetails{Order: o}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sh, err := s.Shops.GetShop(gctx, o.ShopID)
		out.Shop = sh
		return ignoreMissing(err)
	})
	g.Go(func() error {
		p, err := s.Profiles.GetProfile(gctx, o.BuyerID)
		out.Buyer = p
		return ignoreMissing(err)
	})
	g.Go(func() error {
		ids := make([]int64, 0, len(o.Items))
		for _, it := range o.Items {
			ids = append(ids, it.ProductID)
		}
		products, err := s.Products.GetProductsByIDs(gctx, ids)
		out.Products = products
		return err
	})
	if o.DeliveryCompanyID != nil {
		g.Go(func() error {
			c, err := s.Delivery.GetCompany(gctx, *o.DeliveryCompanyID)
			out.Company = c
			return ignoreMissing(err)
		})
	}
	if o.DeliveryMethodID != nil {
		g.Go(func() error {
			m, err := s.Delivery.GetMethod(gctx, *o.DeliveryMethodID)
			out.Method = m
			return ignoreMissing(err)
		})
	}
	if o.DriverID != nil {
		g.Go(func() error {
			d, err := s.Delivery.GetDriver(gctx, *o.DriverID)
			if err != nil {
				return ignoreMissing(err)
			}
			out.Driver = d
			if d.CarID == nil {
				return nil
			}
			car, err := s.Delivery.GetCar(gctx, *d.CarID)
			out.Car = car
			return ignoreMissing(err)
		})
	}
	g.Go(func() error {
		comments, err := s.comments(gctx, o.ID)
		out.Comments = comments
		return err
	})
	g.Go(func() error {
		tracking, err := s.Orders.ListTracking(gctx, o.ID)
		out.Tracking = tracking
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("order details id=%d: %w", id, err)
	}
	return out, nil
}

func (s *OrderService) comments(ctx context.Context, orderID int64) ([]CommentView, error) {
	comments, err := s.Orders.ListComments(ctx, orderID)
	if err != nil {
		return nil, err
	}
	authorIDs := make([]int64, 0, len(comments))
	for _, c := range comments {
		authorIDs = append(authorIDs, c.AuthorID)
	}
	authors, err := s.Profiles.GetProfilesByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, CommentView{Comment: c, Author: authors[c.AuthorID]})
	}
	return out, nil
}

// mergeItems folds repeated products into one line each, keeping first-seen order.
func mergeItems(items []OrderItemInput) ([]OrderItemInput, error) {
	if len(items) == 0 {
		return nil, &domain.ValidationError{Field: "items", Message: "must not be empty"}
	}
	out := make([]OrderItemInput, 0, len(items))
	index := map[int64]int{}
	for i, it := range items {
		if it.Quantity <= 0 {
			return nil, &domain.ValidationError{Field: "items", Message: fmt.Sprintf("item %d: quantity must be positive", i+1)}
		}
		if j, ok := index[it.ProductID]; ok {
			out[j].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out, nil
}

func newReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(id[:8])
}

// Create places an order with a shop. Prices come from the catalog and the
// delivery fee from the chosen method.
func (s *OrderService) Create(ctx context.Context, a Actor, in CreateOrderInput) (*domain.Order, error) {
	scope, err := s.Scoper.Resolve(ctx, a)
	if err != nil {
		return nil, err
	}
	if a.Role == domain.RoleDeliveryOwner {
		return nil, forbidden("delivery owners cannot place orders")
	}
	if !scope.HasShop(in.ShopID) {
		return nil, forbidden("shop %d is outside the caller's scope", in.ShopID)
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return nil, &domain.ValidationError{Field: "shipping_address", Message: "must not be empty"}
	}
	items, err := mergeItems(in.Items)
	if err != nil {
		return nil, err
	}

	if _, err := s.Shops.GetShop(ctx, in.ShopID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.ValidationError{Field: "shop_id", Message: "unknown shop"}
		}
		return nil, fmt.Errorf("create order: %w", err)
	}
	buyer, err := s.Profiles.GetProfile(ctx, in.BuyerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.ValidationError{Field: "buyer_id", Message: "unknown profile"}
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	now := s.now()
	o := &domain.Order{
		Reference:       newReference(),
		ShopID:          in.ShopID,
		BuyerID:         buyer.ID,
		Status:          domain.OrderPending,
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok || p.ShopID != in.ShopID {
			return nil, &domain.ValidationError{Field: "items", Message: fmt.Sprintf("product %d is not sold by shop %d", it.ProductID, in.ShopID)}
		}
		if !p.Active {
			return nil, &domain.ValidationError{Field: "items", Message: fmt.Sprintf("product %d is not active", it.ProductID)}
		}
		o.Items = append(o.Items, domain.OrderItem{
			ProductID:      p.ID,
			Title:          p.Title,
			Quantity:       it.Quantity,
			UnitPriceCents: p.EffectivePrice(),
		})
	}

	if in.DeliveryMethodID != nil {
		if err := s.applyDeliveryMethod(ctx, o, *in.DeliveryMethodID); err != nil {
			return nil, err
		}
	}
	o.Recalculate()

	if err := s.Orders.CreateOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) applyDeliveryMethod(ctx context.Context, o *domain.Order, methodID int64) error {
	m, err := s.Delivery.GetMethod(ctx, methodID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.ValidationError{Field: "delivery_method_id", Message: "unknown delivery method"}
	}
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	linked, err := s.Shops.ListShopDeliveryCompanyIDs(ctx, o.ShopID)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	if !slices.Contains(linked, m.CompanyID) {
		return &domain.ValidationError{Field: "delivery_method_id", Message: "delivery company does not serve this shop"}
	}

	companyID := m.CompanyID
	o.DeliveryCompanyID = &companyID
	o.DeliveryMethodID = &m.ID
	o.DeliveryFeeCents = m.PriceCents
	return nil
}

// UpdateStatus moves an order along its lifecycle. Delivery owners may only
// report shipping progress.
func (s *OrderService) UpdateStatus(ctx context.Context, a Actor, id int64, next domain.OrderStatus, note string) (*domain.Order, error) {
	o, _, err := s.visibleOrder(ctx, a, id)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if a.Role == domain.RoleDeliveryOwner && next != domain.OrderOnTheWay && next != domain.OrderCompleted {
		return nil, forbidden("delivery owners cannot set status %q", next)
	}

	from := o.Status
	if err := o.Transition(next, s.now()); err != nil {
		return nil, err
	}
	if err := s.Orders.UpdateOrderStatus(ctx, id, from, next, strings.TrimSpace(note), o.UpdatedAt); err != nil {
		return nil, err
	}
	return o, nil
}

// AssignDriver sets the driver delivering an open order. The driver must
// work for the order's delivery company.
func (s *OrderService) AssignDriver(ctx context.Context, a Actor, id, driverID int64) (*domain.Order, error) {
	o, _, err := s.visibleOrder(ctx, a, id)
	if err != nil {
		return nil, fmt.Errorf("assign driver: %w", err)
	}
	if o.Status.Terminal() {
		return nil, fmt.Errorf("assign driver: order %d is %s: %w", id, o.Status, domain.ErrConflict)
	}
	if o.DeliveryCompanyID == nil {
		return nil, &domain.ValidationError{Field: "driver_id", Message: "order has no delivery company"}
	}

	d, err := s.Delivery.GetDriver(ctx, driverID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, &domain.ValidationError{Field: "driver_id", Message: "unknown driver"}
	}
	if err != nil {
		return nil, fmt.Errorf("assign driver: %w", err)
	}
	if d.CompanyID != *o.DeliveryCompanyID {
		return nil, &domain.ValidationError{Field: "driver_id", Message: "driver works for another company"}
	}

	now := s.now()
	if err := s.Orders.AssignDriver(ctx, id, driverID, now); err != nil {
		return nil, err
	}
	o.DriverID = &d.ID
	o.UpdatedAt = now
	return o, nil
}

func (s *OrderService) Comments(ctx context.Context, a Actor, id int64) ([]CommentView, error) {
	if _, _, err := s.visibleOrder(ctx, a, id); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return s.comments(ctx, id)
}

func (s *OrderService) AddComment(ctx context.Context, a Actor, id int64, body string) (*domain.OrderComment, error) {
	if _, _, err := s.visibleOrder(ctx, a, id); err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &domain.ValidationError{Field: "body", Message: "must not be empty"}
	}
	if utf8.RuneCountInString(body) > maxCommentLength {
		return nil, &domain.ValidationError{Field: "body", Message: fmt.Sprintf("must be at most %d characters", maxCommentLength)}
	}

	c := &domain.OrderComment{OrderID: id, AuthorID: a.ProfileID, Body: body, CreatedAt: s.now()}
	if err := s.Orders.AddComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *OrderService) Delete(ctx context.Context, a Actor, id int64) error {
	if !a.IsAdmin() {
		return forbidden("only admins can delete orders")
	}
	return s.Orders.DeleteOrder(ctx, id)
}
