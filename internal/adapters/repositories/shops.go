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

const shopColumns = `id, owner_id, name, description, address, phone, status, created_at`

func scanShop(r rowScanner) (*domain.Shop, error) {
	var sh domain.Shop
	var status string
	err := r.Scan(&sh.ID, &sh.OwnerID, &sh.Name, &sh.Description, &sh.Address, &sh.Phone, &status, &sh.CreatedAt)
	if err != nil {
		return nil, err
	}
	sh.Status = domain.ShopStatus(status)
	return &sh, nil
}

// ListShops returns shops matching f, ordered by name.
func (s *Store) ListShops(ctx context.Context, f ports.ShopFilter) (_ []*domain.Shop, err error) {
	defer obs.Time(ctx, "store.ListShops")(&err)

	if err := s.check(); err != nil {
		return nil, err
	}

	where := []string{}
	args := []any{}
	if f.OwnerID > 0 {
		where = append(where, "owner_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if strings.TrimSpace(f.Search) != "" {
		where = append(where, "LOWER(name) LIKE ? ESCAPE '\\'")
		args = append(args, likePattern(f.Search))
	}

	query := `SELECT ` + shopColumns + ` FROM shops`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY name, id;`

	rows, err := s.DB.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list shops: query shops table: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Shop, 0, 16)
	for rows.Next() {
		sh, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("list shops: scan row: %w", err)
		}
		out = append(out, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list shops: row iteration: %w", err)
	}

	return out, nil
}

func (s *Store) GetShop(ctx context.Context, id int64) (*domain.Shop, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	sh, err := scanShop(s.DB.QueryRowContext(ctx, s.rebind(`SELECT `+shopColumns+` FROM shops WHERE id = ?;`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("shop", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get shop id=%d: %w", id, err)
	}
	return sh, nil
}

func (s *Store) GetShopsByIDs(ctx context.Context, ids []int64) (_ map[int64]*domain.Shop, err error) {
	defer obs.Time(ctx, "store.GetShopsByIDs")(&err)

	if err := s.check(); err != nil {
		return nil, err
	}

	uniq := uniqueIDs(ids)
	if len(uniq) == 0 {
		return map[int64]*domain.Shop{}, nil
	}

	in, args := inClause(uniq)
	rows, err := s.DB.QueryContext(ctx, s.rebind(`SELECT `+shopColumns+` FROM shops WHERE id IN `+in+`;`), args...)
	if err != nil {
		return nil, fmt.Errorf("get shops: query shops table: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*domain.Shop, len(uniq))
	for rows.Next() {
		sh, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("get shops: scan row: %w", err)
		}
		out[sh.ID] = sh
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get shops: row iteration: %w", err)
	}

	return out, nil
}

func (s *Store) CreateShop(ctx context.Context, sh *domain.Shop) error {
	if err := s.check(); err != nil {
		return err
	}

	if sh.CreatedAt.IsZero() {
		sh.CreatedAt = time.Now().UTC()
	}

	id, err := s.insertReturningID(ctx, s.DB, `
	INSERT INTO shops (owner_id, name, description, address, phone, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	RETURNING id;
	`, sh.OwnerID, sh.Name, sh.Description, sh.Address, sh.Phone, string(sh.Status), sh.CreatedAt)
	if err != nil {
		return fmt.Errorf("create shop name=%q: %w", sh.Name, err)
	}
	sh.ID = id
	return nil
}

func (s *Store) UpdateShop(ctx context.Context, sh *domain.Shop) error {
	if err := s.check(); err != nil {
		return err
	}

	err := s.execOne(ctx, s.DB, `
	UPDATE shops
	SET owner_id = ?, name = ?, description = ?, address = ?, phone = ?, status = ?
	WHERE id = ?;
	`, sh.OwnerID, sh.Name, sh.Description, sh.Address, sh.Phone, string(sh.Status), sh.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return notFound("shop", sh.ID)
	}
	if err != nil {
		return fmt.Errorf("update shop id=%d: %w", sh.ID, err)
	}
	return nil
}

func (s *Store) DeleteShop(ctx context.Context, id int64) error {
	if err := s.check(); err != nil {
		return err
	}

	err := s.execOne(ctx, s.DB, `DELETE FROM shops WHERE id = ?;`, id)
	if errors.Is(err, domain.ErrNotFound) {
		return notFound("shop", id)
	}
	if err != nil {
		return fmt.Errorf("delete shop id=%d: %w", id, err)
	}
	return nil
}

// SetShopDeliveryCompanies replaces the shop's linked companies in one transaction.
func (s *Store) SetShopDeliveryCompanies(ctx context.Context, shopID int64, companyIDs []int64) error {
	if err := s.check(); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set shop companies: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM shop_delivery_companies WHERE shop_id = ?;`), shopID); err != nil {
		return fmt.Errorf("set shop companies shop_id=%d: clear: %w", shopID, err)
	}

	for _, cid := range uniqueIDs(companyIDs) {
		_, err := tx.ExecContext(ctx, s.rebind(`
		INSERT INTO shop_delivery_companies (shop_id, company_id) VALUES (?, ?);
		`), shopID, cid)
		if err != nil {
			return fmt.Errorf("set shop companies shop_id=%d company_id=%d: %w", shopID, cid, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set shop companies commit: %w", err)
	}
	return nil
}

func (s *Store) ListShopDeliveryCompanyIDs(ctx context.Context, shopID int64) ([]int64, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, s.rebind(`
	SELECT company_id FROM shop_delivery_companies WHERE shop_id = ? ORDER BY company_id;
	`), shopID)
	if err != nil {
		return nil, fmt.Errorf("list shop companies shop_id=%d: %w", shopID, err)
	}
	defer rows.Close()

	out := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list shop companies: scan row: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list shop companies: row iteration: %w", err)
	}
	return out, nil
}
