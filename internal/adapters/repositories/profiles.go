package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"market-dash-service/internal/domain"
	"market-dash-service/internal/platform/obs"
	"time"
)

const profileColumns = `id, full_name, email, phone, role, created_at`

func scanProfile(r rowScanner) (*domain.Profile, error) {
	var p domain.Profile
	var role string
	if err := r.Scan(&p.ID, &p.FullName, &p.Email, &p.Phone, &role, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Role = domain.Role(role)
	return &p, nil
}

// ListProfiles returns profiles ordered by name. An empty role lists all.
func (s *Store) ListProfiles(ctx context.Context, role domain.Role) (_ []*domain.Profile, err error) {
	defer obs.Time(ctx, "store.ListProfiles")(&err)

	if err := s.check(); err != nil {
		return nil, err
	}

	query := `SELECT ` + profileColumns + ` FROM profiles`
	args := []any{}
	if role != "" {
		query += ` WHERE role = ?`
		args = append(args, string(role))
	}
	query += ` ORDER BY full_name, id;`

	rows, err := s.DB.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: query profiles table: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Profile, 0, 16)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("list profiles: scan row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profiles: row iteration: %w", err)
	}

	return out, nil
}

func (s *Store) GetProfile(ctx context.Context, id int64) (*domain.Profile, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, s.rebind(`SELECT `+profileColumns+` FROM profiles WHERE id = ?;`), id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("profile", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile id=%d: %w", id, err)
	}
	return p, nil
}

// Fetch many profiles in one round trip, keyed by id.
func (s *Store) GetProfilesByIDs(ctx context.Context, ids []int64) (_ map[int64]*domain.Profile, err error) {
	defer obs.Time(ctx, "store.GetProfilesByIDs")(&err)

	if err := s.check(); err != nil {
		return nil, err
	}

	uniq := uniqueIDs(ids)
	if len(uniq) == 0 {
		return map[int64]*domain.Profile{}, nil
	}

	in, args := inClause(uniq)
	rows, err := s.DB.QueryContext(ctx, s.rebind(`SELECT `+profileColumns+` FROM profiles WHERE id IN `+in+`;`), args...)
	if err != nil {
		return nil, fmt.Errorf("get profiles: query profiles table: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*domain.Profile, len(uniq))
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("get profiles: scan row: %w", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get profiles: row iteration: %w", err)
	}

	return out, nil
}

func (s *Store) CreateProfile(ctx context.Context, p *domain.Profile) error {
	if err := s.check(); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	id, err := s.insertReturningID(ctx, s.DB, `
	INSERT INTO profiles (full_name, email, phone, role, created_at)
	VALUES (?, ?, ?, ?, ?)
	RETURNING id;
	`, p.FullName, p.Email, p.Phone, string(p.Role), p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create profile email=%q: %w", p.Email, err)
	}
	p.ID = id
	return nil
}

func (s *Store) UpdateProfileRole(ctx context.Context, id int64, role domain.Role) error {
	if err := s.check(); err != nil {
		return err
	}

	err := s.execOne(ctx, s.DB, `UPDATE profiles SET role = ? WHERE id = ?;`, string(role), id)
	if errors.Is(err, domain.ErrNotFound) {
		return notFound("profile", id)
	}
	if err != nil {
		return fmt.Errorf("update profile role id=%d: %w", id, err)
	}
	return nil
}
