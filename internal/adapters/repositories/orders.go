package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"market-dash-service/internal/domain"
	"market-dash-service/internal/platform/obs"
	"market-dash-service/internal/ports"
	"strings"
	"time"
)

const orderColumns = `id, reference, shop_id, buyer_id, delivery_company_id, delivery_method_id, driver_id,
	status, shipping_address, subtotal_cents, delivery_fee_cents, total_cents, created_at, updated_at`

func scanOrder(r rowScanner) (*domain.Order, error) {
	var o domain.Order
	var company, method, driver sql.NullInt64
	var status string
	err := r.Scan(&o.ID, &o.Reference, &o.ShopID, &o.BuyerID, &company, &method, &driver,
		&status, &o.ShippingAddress, &o.SubtotalCents, &o.DeliveryFeeCents, &o.TotalCents,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.DeliveryCompanyID = ptrInt64(company)
	o.DeliveryMethodID = ptrInt64(method)
	o.DriverID = ptrInt64(driver)
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

// ListOrders returns orders matching f, newest first. Items are not loaded.
func (s *Store) ListOrders(ctx context.Context, f ports.OrderFilter) (_ []*domain.Order, err error) {
	defer obs.Time(ctx, "store.ListOrders")(&err)

	if err := s.check(); err != nil {
		return nil, err
	}

	where := []string{}
	args := []any{}
	if f.ShopIDs != nil {
		uniq := uniqueIDs(f.ShopIDs)
		if len(uniq) == 0 {
			return []*domain.Order{}, nil
		}
		in, inArgs := inClause(uniq)
		where = append(where, "shop_id IN "+in)
		args = append(args, inArgs...)
	}
	if f.CompanyIDs != nil {
		uniq := uniqueIDs(f.CompanyIDs)
		if len(uniq) == 0 {
			return []*domain.Order{}, nil
		}
		in, inArgs := inClause(uniq)
		where = append(where, "delivery_company_id IN "+in)
		args = append(args, inArgs...)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.BuyerID > 0 {
		where = append(where, "buyer_id = ?")
		args = append(args, f.BuyerID)
	}
	if !f.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, f.From.UTC())
	}
	if !f.To.IsZero() {
		where = append(where, "created_at < ?")
		args = append(args, f.To.UTC())
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := s.DB.QueryContext(ctx, s.rebind(query+`;`), args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: query orders table: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Order, 0, 64)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("list orders: scan row: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: row iteration: %w", err)
	}

	return out, nil
}

// GetOrder returns the order with its items.
func (s *Store) GetOrder(ctx context.Context, id int64) (_ *domain.Order, err error) {
	defer obs.Time(ctx, "store.GetOrder")(&err)

	if err := s.check(); err != nil {
		return nil, err
	}

	o, err := scanOrder(s.DB.QueryRowContext(ctx, s.rebind(`SELECT `+orderColumns+` FROM orders WHERE id = ?;`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get order id=%d: %w", id, err)
	}

	rows, err := s.DB.QueryContext(ctx, s.rebind(`
	SELECT id, order_id, product_id, title, quantity, unit_price_cents
	FROM order_items
	WHERE order_id = ?
	ORDER BY id;
	`), id)
	if err != nil {
		return nil, fmt.Errorf("get order id=%d: query items: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Title, &it.Quantity, &it.UnitPriceCents); err != nil {
			return nil, fmt.Errorf("get order id=%d: scan item: %w", id, err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get order id=%d: item iteration: %w", id, err)
	}

	return o, nil
}

// CreateOrder writes the order, items, first tracking entry and stock
// reservations in one transaction.
func (s *Store) CreateOrder(ctx context.Context, o *domain.Order) (err error) {
	defer obs.Time(ctx, "store.CreateOrder")(&err)

	if err := s.check(); err != nil {
		return err
	}

	if len(o.Items) == 0 {
		return errors.New("create order: order has no items")
	}

	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create order: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, it := range o.Items {
		res, err := tx.ExecContext(ctx, s.rebind(`
		UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?;
		`), it.Quantity, it.ProductID, it.Quantity)
		if err != nil {
			return fmt.Errorf("create order: reserve product_id=%d: %w", it.ProductID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("create order: reserve product_id=%d: rows affected: %w", it.ProductID, err)
		}
		if n == 0 {
			return fmt.Errorf("create order: product_id=%d: %w", it.ProductID, domain.ErrInsufficientStock)
		}
	}

	id, err := s.insertReturningID(ctx, tx, `
	INSERT INTO orders (
		reference, shop_id, buyer_id, delivery_company_id, delivery_method_id, driver_id,
		status, shipping_address, subtotal_cents, delivery_fee_cents, total_cents, created_at, updated_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING id;
	`, o.Reference, o.ShopID, o.BuyerID, nullInt64(o.DeliveryCompanyID), nullInt64(o.DeliveryMethodID),
		nullInt64(o.DriverID), string(o.Status), o.ShippingAddress, o.SubtotalCents, o.DeliveryFeeCents,
		o.TotalCents, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create order reference=%q: %w", o.Reference, err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		itemID, err := s.insertReturningID(ctx, tx, `
		INSERT INTO order_items (order_id, product_id, title, quantity, unit_price_cents)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id;
		`, id, it.ProductID, it.Title, it.Quantity, it.UnitPriceCents)
		if err != nil {
			return fmt.Errorf("create order: insert item product_id=%d: %w", it.ProductID, err)
		}
		it.ID = itemID
		it.OrderID = id
	}

	if err := s.insertTracking(ctx, tx, id, o.Status, "order placed", o.CreatedAt); err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create order commit: %w", err)
	}

	o.ID = id
	return nil
}

func (s *Store) insertTracking(ctx context.Context, q queryer, orderID int64, status domain.OrderStatus, note string, at time.Time) error {
	_, err := q.ExecContext(ctx, s.rebind(`
	INSERT INTO order_tracking (order_id, status, note, created_at) VALUES (?, ?, ?, ?);
	`), orderID, string(status), note, at.UTC())
	if err != nil {
		return fmt.Errorf("insert tracking order_id=%d: %w", orderID, err)
	}
	return nil
}

// UpdateOrderStatus moves an order from one status to another. Cancelling
// returns reserved stock to the products.
func (s *Store) UpdateOrderStatus(
	ctx context.Context,
	id int64,
	from, to domain.OrderStatus,
	note string,
	at time.Time,
) (err error) {
	defer obs.Time(ctx, "store.UpdateOrderStatus")(&err)

	if err := s.check(); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("update order status: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = s.execOne(ctx, tx, `
	UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?;
	`, string(to), at.UTC(), id, string(from))
	if errors.Is(err, domain.ErrNotFound) {
		var exists int
		lookup := tx.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM orders WHERE id = ?;`), id)
		if err := lookup.Scan(&exists); err != nil {
			return fmt.Errorf("update order status id=%d: lookup: %w", id, err)
		}
		if exists == 0 {
			return notFound("order", id)
		}
		return fmt.Errorf("update order status id=%d: status is no longer %s: %w", id, from, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update order status id=%d: %w", id, err)
	}

	if to == domain.OrderCancelled {
		_, err := tx.ExecContext(ctx, s.rebind(`
		UPDATE products
		SET stock = stock + (
			SELECT COALESCE(SUM(oi.quantity), 0) FROM order_items oi
			WHERE oi.order_id = ? AND oi.product_id = products.id
		)
		WHERE id IN (SELECT product_id FROM order_items WHERE order_id = ?);
		`), id, id)
		if err != nil {
			return fmt.Errorf("update order status id=%d: restock: %w", id, err)
		}
	}

	if err := s.insertTracking(ctx, tx, id, to, note, at); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("update order status commit: %w", err)
	}
	return nil
}

func (s *Store) AssignDriver(ctx context.Context, id int64, driverID int64, at time.Time) error {
	if err := s.check(); err != nil {
		return err
	}

	err := s.execOne(ctx, s.DB, `UPDATE orders SET driver_id = ?, updated_at = ? WHERE id = ?;`, driverID, at.UTC(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return notFound("order", id)
	}
	if err != nil {
		return fmt.Errorf("assign driver order id=%d: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "order", "orders", id)
}

func (s *Store) AddComment(ctx context.Context, c *domain.OrderComment) error {
	if err := s.check(); err != nil {
		return err
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	id, err := s.insertReturningID(ctx, s.DB, `
	INSERT INTO order_comments (order_id, author_id, body, created_at)
	VALUES (?, ?, ?, ?)
	RETURNING id;
	`, c.OrderID, c.AuthorID, c.Body, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("add comment order_id=%d: %w", c.OrderID, err)
	}
	c.ID = id
	return nil
}

func (s *Store) ListComments(ctx context.Context, orderID int64) ([]*domain.OrderComment, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return listRows(ctx, s, "comments", `
	SELECT id, order_id, author_id, body, created_at
	FROM order_comments
	WHERE order_id = ?
	ORDER BY created_at, id;
	`, func(r rowScanner) (*domain.OrderComment, error) {
		var c domain.OrderComment
		if err := r.Scan(&c.ID, &c.OrderID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		return &c, nil
	}, orderID)
}

func (s *Store) ListTracking(ctx context.Context, orderID int64) ([]*domain.TrackingEntry, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return listRows(ctx, s, "tracking", `
	SELECT id, order_id, status, note, created_at
	FROM order_tracking
	WHERE order_id = ?
	ORDER BY created_at, id;
	`, func(r rowScanner) (*domain.TrackingEntry, error) {
		var e domain.TrackingEntry
		var status string
		if err := r.Scan(&e.ID, &e.OrderID, &status, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Status = domain.OrderStatus(status)
		return &e, nil
	}, orderID)
}
