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

const (
	companyColumns = `id, owner_id, name, phone, email, address, status, created_at`
	driverColumns  = `id, company_id, car_id, name, phone, license_number, status`
	carColumns     = `id, company_id, plate_number, brand, model, color, capacity_kg`
	methodColumns  = `id, company_id, label, price_cents, estimated_days`
)

func scanCompany(r rowScanner) (*domain.DeliveryCompany, error) {
	var c domain.DeliveryCompany
	var status string
	if err := r.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Phone, &c.Email, &c.Address, &status, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Status = domain.CompanyStatus(status)
	return &c, nil
}

func scanDriver(r rowScanner) (*domain.DeliveryDriver, error) {
	var d domain.DeliveryDriver
	var car sql.NullInt64
	var status string
	if err := r.Scan(&d.ID, &d.CompanyID, &car, &d.Name, &d.Phone, &d.LicenseNumber, &status); err != nil {
		return nil, err
	}
	d.CarID = ptrInt64(car)
	d.Status = domain.DriverStatus(status)
	return &d, nil
}

func scanCar(r rowScanner) (*domain.DeliveryCar, error) {
	var c domain.DeliveryCar
	if err := r.Scan(&c.ID, &c.CompanyID, &c.PlateNumber, &c.Brand, &c.Model, &c.Color, &c.CapacityKg); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanMethod(r rowScanner) (*domain.DeliveryMethod, error) {
	var m domain.DeliveryMethod
	if err := r.Scan(&m.ID, &m.CompanyID, &m.Label, &m.PriceCents, &m.EstimatedDays); err != nil {
		return nil, err
	}
	return &m, nil
}

// listRows runs query and collects every row through scan.
func listRows[T any](ctx context.Context, s *Store, what, query string, scan func(rowScanner) (T, error), args ...any) ([]T, error) {
	rows, err := s.DB.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: query: %w", what, err)
	}
	defer rows.Close()

	out := make([]T, 0, 16)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("list %s: scan row: %w", what, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: row iteration: %w", what, err)
	}
	return out, nil
}

// getRow fetches a single row by id, mapping sql.ErrNoRows to ErrNotFound.
func getRow[T any](ctx context.Context, s *Store, what, query string, id int64, scan func(rowScanner) (T, error)) (T, error) {
	v, err := scan(s.DB.QueryRowContext(ctx, s.rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, notFound(what, id)
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("get %s id=%d: %w", what, id, err)
	}
	return v, nil
}

func (s *Store) deleteByID(ctx context.Context, what, table string, id int64) error {
	if err := s.check(); err != nil {
		return err
	}
	err := s.execOne(ctx, s.DB, `DELETE FROM `+table+` WHERE id = ?;`, id)
	if errors.Is(err, domain.ErrNotFound) {
		return notFound(what, id)
	}
	if err != nil {
		return fmt.Errorf("delete %s id=%d: %w", what, id, err)
	}
	return nil
}

func (s *Store) ListCompanies(ctx context.Context, ownerID int64) (_ []*domain.DeliveryCompany, err error) {
	defer obs.Time(ctx, "store.ListCompanies")(&err)

	if err := s.check(); err != nil {
		return nil, err
	}

	if ownerID > 0 {
		return listRows(ctx, s, "delivery companies",
			`SELECT `+companyColumns+` FROM delivery_companies WHERE owner_id = ? ORDER BY name, id;`,
			scanCompany, ownerID)
	}
	return listRows(ctx, s, "delivery companies",
		`SELECT `+companyColumns+` FROM delivery_companies ORDER BY name, id;`, scanCompany)
}

func (s *Store) GetCompany(ctx context.Context, id int64) (*domain.DeliveryCompany, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return getRow(ctx, s, "delivery company",
		`SELECT `+companyColumns+` FROM delivery_companies WHERE id = ?;`, id, scanCompany)
}

func (s *Store) CreateCompany(ctx context.Context, c *domain.DeliveryCompany) error {
	if err := s.check(); err != nil {
		return err
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	id, err := s.insertReturningID(ctx, s.DB, `
	INSERT INTO delivery_companies (owner_id, name, phone, email, address, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	RETURNING id;
	`, c.OwnerID, c.Name, c.Phone, c.Email, c.Address, string(c.Status), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create delivery company name=%q: %w", c.Name, err)
	}
	c.ID = id
	return nil
}

func (s *Store) UpdateCompany(ctx context.Context, c *domain.DeliveryCompany) error {
	if err := s.check(); err != nil {
		return err
	}

	err := s.execOne(ctx, s.DB, `
	UPDATE delivery_companies
	SET owner_id = ?, name = ?, phone = ?, email = ?, address = ?, status = ?
	WHERE id = ?;
	`, c.OwnerID, c.Name, c.Phone, c.Email, c.Address, string(c.Status), c.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return notFound("delivery company", c.ID)
	}
	if err != nil {
		return fmt.Errorf("update delivery company id=%d: %w", c.ID, err)
	}
	return nil
}

func (s *Store) DeleteCompany(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "delivery company", "delivery_companies", id)
}

func (s *Store) ListDrivers(ctx context.Context, companyID int64) ([]*domain.DeliveryDriver, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return listRows(ctx, s, "drivers",
		`SELECT `+driverColumns+` FROM delivery_drivers WHERE company_id = ? ORDER BY name, id;`,
		scanDriver, companyID)
}

func (s *Store) GetDriver(ctx context.Context, id int64) (*domain.DeliveryDriver, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return getRow(ctx, s, "driver", `SELECT `+driverColumns+` FROM delivery_drivers WHERE id = ?;`, id, scanDriver)
}

func (s *Store) CreateDriver(ctx context.Context, d *domain.DeliveryDriver) error {
	if err := s.check(); err != nil {
		return err
	}

	id, err := s.insertReturningID(ctx, s.DB, `
	INSERT INTO delivery_drivers (company_id, car_id, name, phone, license_number, status)
	VALUES (?, ?, ?, ?, ?, ?)
	RETURNING id;
	`, d.CompanyID, nullInt64(d.CarID), d.Name, d.Phone, d.LicenseNumber, string(d.Status))
	if err != nil {
		return fmt.Errorf("create driver name=%q: %w", d.Name, err)
	}
	d.ID = id
	return nil
}

func (s *Store) UpdateDriver(ctx context.Context, d *domain.DeliveryDriver) error {
	if err := s.check(); err != nil {
		return err
	}

	err := s.execOne(ctx, s.DB, `
	UPDATE delivery_drivers
	SET car_id = ?, name = ?, phone = ?, license_number = ?, status = ?
	WHERE id = ?;
	`, nullInt64(d.CarID), d.Name, d.Phone, d.LicenseNumber, string(d.Status), d.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return notFound("driver", d.ID)
	}
	if err != nil {
		return fmt.Errorf("update driver id=%d: %w", d.ID, err)
	}
	return nil
}

func (s *Store) DeleteDriver(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "driver", "delivery_drivers", id)
}

func (s *Store) ListCars(ctx context.Context, companyID int64) ([]*domain.DeliveryCar, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return listRows(ctx, s, "cars",
		`SELECT `+carColumns+` FROM delivery_cars WHERE company_id = ? ORDER BY plate_number, id;`,
		scanCar, companyID)
}

func (s *Store) GetCar(ctx context.Context, id int64) (*domain.DeliveryCar, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return getRow(ctx, s, "car", `SELECT `+carColumns+` FROM delivery_cars WHERE id = ?;`, id, scanCar)
}

func (s *Store) CreateCar(ctx context.Context, c *domain.DeliveryCar) error {
	if err := s.check(); err != nil {
		return err
	}

	id, err := s.insertReturningID(ctx, s.DB, `
	INSERT INTO delivery_cars (company_id, plate_number, brand, model, color, capacity_kg)
	VALUES (?, ?, ?, ?, ?, ?)
	RETURNING id;
	`, c.CompanyID, c.PlateNumber, c.Brand, c.Model, c.Color, c.CapacityKg)
	if err != nil {
		return fmt.Errorf("create car plate=%q: %w", c.PlateNumber, err)
	}
	c.ID = id
	return nil
}

func (s *Store) UpdateCar(ctx context.Context, c *domain.DeliveryCar) error {
	if err := s.check(); err != nil {
		return err
	}

	err := s.execOne(ctx, s.DB, `
	UPDATE delivery_cars
	SET plate_number = ?, brand = ?, model = ?, color = ?, capacity_kg = ?
	WHERE id = ?;
	`, c.PlateNumber, c.Brand, c.Model, c.Color, c.CapacityKg, c.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return notFound("car", c.ID)
	}
	if err != nil {
		return fmt.Errorf("update car id=%d: %w", c.ID, err)
	}
	return nil
}

func (s *Store) DeleteCar(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "car", "delivery_cars", id)
}

func (s *Store) ListMethods(ctx context.Context, companyID int64) ([]*domain.DeliveryMethod, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return listRows(ctx, s, "delivery methods",
		`SELECT `+methodColumns+` FROM delivery_methods WHERE company_id = ? ORDER BY price_cents, id;`,
		scanMethod, companyID)
}

func (s *Store) GetMethod(ctx context.Context, id int64) (*domain.DeliveryMethod, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return getRow(ctx, s, "delivery method", `SELECT `+methodColumns+` FROM delivery_methods WHERE id = ?;`, id, scanMethod)
}

func (s *Store) CreateMethod(ctx context.Context, m *domain.DeliveryMethod) error {
	if err := s.check(); err != nil {
		return err
	}

	id, err := s.insertReturningID(ctx, s.DB, `
	INSERT INTO delivery_methods (company_id, label, price_cents, estimated_days)
	VALUES (?, ?, ?, ?)
	RETURNING id;
	`, m.CompanyID, m.Label, m.PriceCents, m.EstimatedDays)
	if err != nil {
		return fmt.Errorf("create delivery method label=%q: %w", m.Label, err)
	}
	m.ID = id
	return nil
}

func (s *Store) DeleteMethod(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "delivery method", "delivery_methods", id)
}
