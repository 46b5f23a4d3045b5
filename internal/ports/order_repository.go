package ports

import (
	"context"
	"market-dash-service/internal/domain"
	"time"
)

// OrderFilter narrows ListOrders. A nil ShopIDs means all shops;
// an empty non-nil slice matches nothing. From is inclusive, To exclusive.
type OrderFilter struct {
	ShopIDs    []int64
	CompanyIDs []int64
	Status     domain.OrderStatus
	BuyerID    int64
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// Port: a boundary for orders and their comment and tracking history.
type OrderRepository interface {
	// Orders are returned newest first, without items.
	ListOrders(ctx context.Context, f OrderFilter) ([]*domain.Order, error)
	// Return the order with its items.
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	// Insert the order, its items and an initial tracking entry, and
	// reserve stock for every item. Fails with ErrInsufficientStock
	// without writing anything when any product runs short.
	CreateOrder(ctx context.Context, o *domain.Order) error
	// Move the order from one status to another and append a tracking
	// entry. Fails with ErrConflict if the stored status is not from.
	UpdateOrderStatus(ctx context.Context, id int64, from, to domain.OrderStatus, note string, at time.Time) error
	AssignDriver(ctx context.Context, id int64, driverID int64, at time.Time) error
	DeleteOrder(ctx context.Context, id int64) error

	AddComment(ctx context.Context, c *domain.OrderComment) error
	ListComments(ctx context.Context, orderID int64) ([]*domain.OrderComment, error)
	ListTracking(ctx context.Context, orderID int64) ([]*domain.TrackingEntry, error)
}
