package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"market-dash-service/internal/platform/db"
	"strings"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		id {{id}},
		full_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at {{ts}} NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS shops (
		id {{id}},
		owner_id BIGINT NOT NULL REFERENCES profiles(id),
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at {{ts}} NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS products (
		id {{id}},
		shop_id BIGINT NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		price_cents BIGINT NOT NULL,
		sale_price_cents BIGINT,
		stock INTEGER NOT NULL,
		active BOOLEAN NOT NULL,
		created_at {{ts}} NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS delivery_companies (
		id {{id}},
		owner_id BIGINT NOT NULL REFERENCES profiles(id),
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at {{ts}} NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS delivery_cars (
		id {{id}},
		company_id BIGINT NOT NULL REFERENCES delivery_companies(id) ON DELETE CASCADE,
		plate_number TEXT NOT NULL,
		brand TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		capacity_kg INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS delivery_drivers (
		id {{id}},
		company_id BIGINT NOT NULL REFERENCES delivery_companies(id) ON DELETE CASCADE,
		car_id BIGINT REFERENCES delivery_cars(id) ON DELETE SET NULL,
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		license_number TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS delivery_methods (
		id {{id}},
		company_id BIGINT NOT NULL REFERENCES delivery_companies(id) ON DELETE CASCADE,
		label TEXT NOT NULL,
		price_cents BIGINT NOT NULL,
		estimated_days INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS shop_delivery_companies (
		shop_id BIGINT NOT NULL REFERENCES shops(id) ON DELETE CASCADE,
		company_id BIGINT NOT NULL REFERENCES delivery_companies(id) ON DELETE CASCADE,
		PRIMARY KEY (shop_id, company_id)
	);`,
	`CREATE TABLE IF NOT EXISTS orders (
		id {{id}},
		reference TEXT NOT NULL UNIQUE,
		shop_id BIGINT NOT NULL REFERENCES shops(id),
		buyer_id BIGINT NOT NULL REFERENCES profiles(id),
		delivery_company_id BIGINT REFERENCES delivery_companies(id) ON DELETE SET NULL,
		delivery_method_id BIGINT REFERENCES delivery_methods(id) ON DELETE SET NULL,
		driver_id BIGINT REFERENCES delivery_drivers(id) ON DELETE SET NULL,
		status TEXT NOT NULL,
		shipping_address TEXT NOT NULL DEFAULT '',
		subtotal_cents BIGINT NOT NULL,
		delivery_fee_cents BIGINT NOT NULL,
		total_cents BIGINT NOT NULL,
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id {{id}},
		order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL,
		title TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		unit_price_cents BIGINT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS order_comments (
		id {{id}},
		order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		author_id BIGINT NOT NULL REFERENCES profiles(id),
		body TEXT NOT NULL,
		created_at {{ts}} NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS order_tracking (
		id {{id}},
		order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		status TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at {{ts}} NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_orders_shop_created ON orders(shop_id, created_at);`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);`,
	`CREATE INDEX IF NOT EXISTS idx_products_shop ON products(shop_id);`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);`,
}

func ddl(stmt string, dialect db.Dialect) string {
	id, ts := "BIGSERIAL PRIMARY KEY", "TIMESTAMPTZ"
	if dialect == db.SQLite {
		id, ts = "INTEGER PRIMARY KEY AUTOINCREMENT", "TIMESTAMP"
	}
	return strings.NewReplacer("{{id}}", id, "{{ts}}", ts).Replace(stmt)
}

// InitSchema creates every table and index if missing.
func InitSchema(ctx context.Context, conn *sql.DB, dialect db.Dialect) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, ddl(stmt, dialect)); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
