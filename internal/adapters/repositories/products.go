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

const productColumns = `id, shop_id, title, description, category, price_cents, sale_price_cents, stock, active, created_at`

func scanProduct(r rowScanner) (*domain.Product, error) {
	var p domain.Product
	var sale sql.NullInt64
	err := r.Scan(&p.ID, &p.ShopID, &p.Title, &p.Description, &p.Category,
		&p.PriceCents, &sale, &p.Stock, &p.Active, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.SalePriceCents = ptrInt64(sale)
	return &p, nil
}

func (s *Store) ListProducts(ctx context.Context, f ports.ProductFilter) (_ []*domain.Product, err error) {
	defer obs.Time(ctx, "store.ListProducts")(&err)

	if err := s.check(); err != nil {
		return nil, err
	}

	where := []string{}
	args := []any{}
	if f.ShopIDs != nil {
		uniq := uniqueIDs(f.ShopIDs)
		if len(uniq) == 0 {
			return []*domain.Product{}, nil
		}
		in, inArgs := inClause(uniq)
		where = append(where, "shop_id IN "+in)
		args = append(args, inArgs...)
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if strings.TrimSpace(f.Search) != "" {
		where = append(where, "LOWER(title) LIKE ? ESCAPE '\\'")
		args = append(args, likePattern(f.Search))
	}
	if f.ActiveOnly {
		where = append(where, "active = ?")
		args = append(args, true)
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC;`

	rows, err := s.DB.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list products: query products table: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Product, 0, 32)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("list products: scan row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: row iteration: %w", err)
	}

	return out, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	p, err := scanProduct(s.DB.QueryRowContext(ctx, s.rebind(`SELECT `+productColumns+` FROM products WHERE id = ?;`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get product id=%d: %w", id, err)
	}
	return p, nil
}

func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) (_ map[int64]*domain.Product, err error) {
	defer obs.Time(ctx, "store.GetProductsByIDs")(&err)

	if err := s.check(); err != nil {
		return nil, err
	}

	uniq := uniqueIDs(ids)
	if len(uniq) == 0 {
		return map[int64]*domain.Product{}, nil
	}

	in, args := inClause(uniq)
	rows, err := s.DB.QueryContext(ctx, s.rebind(`SELECT `+productColumns+` FROM products WHERE id IN `+in+`;`), args...)
	if err != nil {
		return nil, fmt.Errorf("get products: query products table: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*domain.Product, len(uniq))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("get products: scan row: %w", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get products: row iteration: %w", err)
	}

	return out, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *domain.Product) error {
	if err := s.check(); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	id, err := s.insertReturningID(ctx, s.DB, `
	INSERT INTO products (shop_id, title, description, category, price_cents, sale_price_cents, stock, active, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	RETURNING id;
	`, p.ShopID, p.Title, p.Description, p.Category, p.PriceCents, nullInt64(p.SalePriceCents), p.Stock, p.Active, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create product title=%q: %w", p.Title, err)
	}
	p.ID = id
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, p *domain.Product) error {
	if err := s.check(); err != nil {
		return err
	}

	// stock is owned by order reservations; SetProductStock changes it.
	err := s.execOne(ctx, s.DB, `
	UPDATE products
	SET title = ?, description = ?, category = ?, price_cents = ?, sale_price_cents = ?, active = ?
	WHERE id = ?;
	`, p.Title, p.Description, p.Category, p.PriceCents, nullInt64(p.SalePriceCents), p.Active, p.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return notFound("product", p.ID)
	}
	if err != nil {
		return fmt.Errorf("update product id=%d: %w", p.ID, err)
	}
	return nil
}

func (s *Store) SetProductStock(ctx context.Context, id int64, stock int) error {
	if err := s.check(); err != nil {
		return err
	}

	err := s.execOne(ctx, s.DB, `UPDATE products SET stock = ? WHERE id = ?;`, stock, id)
	if errors.Is(err, domain.ErrNotFound) {
		return notFound("product", id)
	}
	if err != nil {
		return fmt.Errorf("set product stock id=%d: %w", id, err)
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.check(); err != nil {
		return err
	}

	err := s.execOne(ctx, s.DB, `DELETE FROM products WHERE id = ?;`, id)
	if errors.Is(err, domain.ErrNotFound) {
		return notFound("product", id)
	}
	if err != nil {
		return fmt.Errorf("delete product id=%d: %w", id, err)
	}
	return nil
}

// CountProducts counts products in the given shops; nil counts all.
func (s *Store) CountProducts(ctx context.Context, shopIDs []int64) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}

	query := `SELECT COUNT(*) FROM products`
	args := []any{}
	if shopIDs != nil {
		uniq := uniqueIDs(shopIDs)
		if len(uniq) == 0 {
			return 0, nil
		}
		in, inArgs := inClause(uniq)
		query += ` WHERE shop_id IN ` + in
		args = inArgs
	}

	var n int
	if err := s.DB.QueryRowContext(ctx, s.rebind(query+`;`), args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}
