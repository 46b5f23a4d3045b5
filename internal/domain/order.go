package domain

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderOnTheWay   OrderStatus = "on_the_way"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderPending,
	OrderProcessing,
	OrderOnTheWay,
	OrderCompleted,
	OrderCancelled,
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderOnTheWay, OrderCancelled},
	OrderOnTheWay:   {OrderCompleted, OrderCancelled},
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, v := range orderTransitions[s] {
		if v == next {
			return true
		}
	}
	return false
}

// Order is a purchase placed with a single shop.
// Totals are computed once at creation and never recalculated.
type Order struct {
	ID                int64
	Reference         string
	ShopID            int64
	BuyerID           int64
	DeliveryCompanyID *int64
	DeliveryMethodID  *int64
	DriverID          *int64
	Status            OrderStatus
	ShippingAddress   string
	SubtotalCents     int64
	DeliveryFeeCents  int64
	TotalCents        int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Items             []OrderItem
}

type OrderItem struct {
	ID             int64
	OrderID        int64
	ProductID      int64
	Title          string
	Quantity       int
	UnitPriceCents int64
}

func (i OrderItem) LineTotal() int64 { return int64(i.Quantity) * i.UnitPriceCents }

// Transition moves the order to next or returns ErrInvalidTransition.
func (o *Order) Transition(next OrderStatus, at time.Time) error {
	if !next.Valid() {
		return invalid("status", "unknown status %q", next)
	}
	if !o.Status.CanTransition(next) {
		return fmt.Errorf("order %d: %s -> %s: %w", o.ID, o.Status, next, ErrInvalidTransition)
	}
	o.Status = next
	o.UpdatedAt = at
	return nil
}

// Recalculate fills the subtotal and total from items and delivery fee.
func (o *Order) Recalculate() {
	var subtotal int64
	for _, it := range o.Items {
		subtotal += it.LineTotal()
	}
	o.SubtotalCents = subtotal
	o.TotalCents = subtotal + o.DeliveryFeeCents
}

type OrderComment struct {
	ID        int64
	OrderID   int64
	AuthorID  int64
	Body      string
	CreatedAt time.Time
}

// TrackingEntry records a status change in an order's history.
type TrackingEntry struct {
	ID        int64
	OrderID   int64
	Status    OrderStatus
	Note      string
	CreatedAt time.Time
}
