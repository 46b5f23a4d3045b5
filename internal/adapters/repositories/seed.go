package repositories

import (
	"context"
	"fmt"
	"market-dash-service/internal/domain"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Seed is the fixture layout. Rows reference each other by natural keys
// (emails, names, titles) so fixtures stay independent of generated ids.
// JSON fixtures parse too, since JSON is valid YAML.
type Seed struct {
	Profiles []struct {
		FullName string `yaml:"full_name"`
		Email    string `yaml:"email"`
		Phone    string `yaml:"phone"`
		Role     string `yaml:"role"`
	} `yaml:"profiles"`

	Companies []struct {
		Name       string `yaml:"name"`
		OwnerEmail string `yaml:"owner_email"`
		Phone      string `yaml:"phone"`
		Email      string `yaml:"email"`
		Address    string `yaml:"address"`
		Methods    []struct {
			Label         string `yaml:"label"`
			PriceCents    int64  `yaml:"price_cents"`
			EstimatedDays int    `yaml:"estimated_days"`
		} `yaml:"methods"`
		Cars []struct {
			PlateNumber string `yaml:"plate_number"`
			Brand       string `yaml:"brand"`
			Model       string `yaml:"model"`
			Color       string `yaml:"color"`
			CapacityKg  int    `yaml:"capacity_kg"`
		} `yaml:"cars"`
		Drivers []struct {
			Name          string `yaml:"name"`
			Phone         string `yaml:"phone"`
			LicenseNumber string `yaml:"license_number"`
			Car           string `yaml:"car"`
		} `yaml:"drivers"`
	} `yaml:"delivery_companies"`

	Shops []struct {
		Name        string   `yaml:"name"`
		OwnerEmail  string   `yaml:"owner_email"`
		Description string   `yaml:"description"`
		Address     string   `yaml:"address"`
		Phone       string   `yaml:"phone"`
		Companies   []string `yaml:"delivery_companies"`
		Products    []struct {
			Title          string `yaml:"title"`
			Category       string `yaml:"category"`
			PriceCents     int64  `yaml:"price_cents"`
			SalePriceCents *int64 `yaml:"sale_price_cents"`
			Stock          int    `yaml:"stock"`
		} `yaml:"products"`
	} `yaml:"shops"`

	Orders []struct {
		Reference  string    `yaml:"reference"`
		Shop       string    `yaml:"shop"`
		BuyerEmail string    `yaml:"buyer_email"`
		Method     string    `yaml:"method"`
		Status     string    `yaml:"status"`
		Address    string    `yaml:"address"`
		CreatedAt  time.Time `yaml:"created_at"`
		Items      []struct {
			Product  string `yaml:"product"`
			Quantity int    `yaml:"quantity"`
		} `yaml:"items"`
	} `yaml:"orders"`
}

// SeedFromFile loads a fixture file into an empty database.
// It is a no-op when profiles already exist.
func SeedFromFile(ctx context.Context, s *Store, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", path, err)
	}

	var seed Seed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return fmt.Errorf("seed: parse %q: %w", path, err)
	}

	return ApplySeed(ctx, s, &seed)
}

// ApplySeed inserts the fixture rows through the store.
func ApplySeed(ctx context.Context, s *Store, seed *Seed) error {
	if err := s.check(); err != nil {
		return err
	}

	var existing int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM profiles;`).Scan(&existing); err != nil {
		return fmt.Errorf("seed: count profiles: %w", err)
	}
	if existing > 0 {
		return nil
	}

	profiles := map[string]int64{}
	for i, p := range seed.Profiles {
		row := &domain.Profile{
			FullName: strings.TrimSpace(p.FullName),
			Email:    strings.TrimSpace(p.Email),
			Phone:    p.Phone,
			Role:     domain.Role(p.Role),
		}
		if err := row.Validate(); err != nil {
			return fmt.Errorf("seed: profile at index %d: %w", i+1, err)
		}
		if err := s.CreateProfile(ctx, row); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		profiles[row.Email] = row.ID
	}

	lookup := func(kind string, m map[string]int64, key string) (int64, error) {
		id, ok := m[key]
		if !ok {
			return 0, fmt.Errorf("seed: unknown %s %q", kind, key)
		}
		return id, nil
	}

	companies := map[string]int64{}
	methods := map[string]*domain.DeliveryMethod{}
	for _, c := range seed.Companies {
		owner, err := lookup("profile", profiles, c.OwnerEmail)
		if err != nil {
			return err
		}
		company := &domain.DeliveryCompany{
			OwnerID: owner, Name: c.Name, Phone: c.Phone, Email: c.Email,
			Address: c.Address, Status: domain.CompanyActive,
		}
		if err := company.Validate(); err != nil {
			return fmt.Errorf("seed: company %q: %w", c.Name, err)
		}
		if err := s.CreateCompany(ctx, company); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		companies[c.Name] = company.ID

		for _, m := range c.Methods {
			method := &domain.DeliveryMethod{
				CompanyID: company.ID, Label: m.Label,
				PriceCents: m.PriceCents, EstimatedDays: m.EstimatedDays,
			}
			if err := s.CreateMethod(ctx, method); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			methods[c.Name+"/"+m.Label] = method
		}

		cars := map[string]int64{}
		for _, car := range c.Cars {
			row := &domain.DeliveryCar{
				CompanyID: company.ID, PlateNumber: car.PlateNumber, Brand: car.Brand,
				Model: car.Model, Color: car.Color, CapacityKg: car.CapacityKg,
			}
			if err := s.CreateCar(ctx, row); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			cars[car.PlateNumber] = row.ID
		}

		for _, d := range c.Drivers {
			row := &domain.DeliveryDriver{
				CompanyID: company.ID, Name: d.Name, Phone: d.Phone,
				LicenseNumber: d.LicenseNumber, Status: domain.DriverAvailable,
			}
			if d.Car != "" {
				carID, err := lookup("car", cars, d.Car)
				if err != nil {
					return err
				}
				row.CarID = &carID
			}
			if err := s.CreateDriver(ctx, row); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
		}
	}

	shops := map[string]int64{}
	products := map[string]*domain.Product{}
	for _, sh := range seed.Shops {
		owner, err := lookup("profile", profiles, sh.OwnerEmail)
		if err != nil {
			return err
		}
		shop := &domain.Shop{
			OwnerID: owner, Name: sh.Name, Description: sh.Description,
			Address: sh.Address, Phone: sh.Phone, Status: domain.ShopActive,
		}
		if err := shop.Validate(); err != nil {
			return fmt.Errorf("seed: shop %q: %w", sh.Name, err)
		}
		if err := s.CreateShop(ctx, shop); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		shops[sh.Name] = shop.ID

		linked := make([]int64, 0, len(sh.Companies))
		for _, name := range sh.Companies {
			cid, err := lookup("delivery company", companies, name)
			if err != nil {
				return err
			}
			linked = append(linked, cid)
		}
		if err := s.SetShopDeliveryCompanies(ctx, shop.ID, linked); err != nil {
			return fmt.Errorf("seed: %w", err)
		}

		for _, p := range sh.Products {
			row := &domain.Product{
				ShopID: shop.ID, Title: p.Title, Category: p.Category,
				PriceCents: p.PriceCents, SalePriceCents: p.SalePriceCents,
				Stock: p.Stock, Active: true,
			}
			if err := row.Validate(); err != nil {
				return fmt.Errorf("seed: product %q: %w", p.Title, err)
			}
			if err := s.CreateProduct(ctx, row); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			products[sh.Name+"/"+p.Title] = row
		}
	}

	for i, o := range seed.Orders {
		shopID, err := lookup("shop", shops, o.Shop)
		if err != nil {
			return err
		}
		buyer, err := lookup("profile", profiles, o.BuyerEmail)
		if err != nil {
			return err
		}

		status := domain.OrderStatus(o.Status)
		if status == "" {
			status = domain.OrderPending
		}
		if !status.Valid() {
			return fmt.Errorf("seed: order at index %d: unknown status %q", i+1, o.Status)
		}

		created := o.CreatedAt.UTC()
		if o.CreatedAt.IsZero() {
			created = time.Now().UTC()
		}

		order := &domain.Order{
			Reference:       o.Reference,
			ShopID:          shopID,
			BuyerID:         buyer,
			Status:          status,
			ShippingAddress: o.Address,
			CreatedAt:       created,
			UpdatedAt:       created,
		}
		if order.Reference == "" {
			order.Reference = fmt.Sprintf("SEED-%04d", i+1)
		}

		if o.Method != "" {
			m, ok := methods[o.Method]
			if !ok {
				return fmt.Errorf("seed: unknown delivery method %q", o.Method)
			}
			order.DeliveryCompanyID = &m.CompanyID
			order.DeliveryMethodID = &m.ID
			order.DeliveryFeeCents = m.PriceCents
		}

		for _, it := range o.Items {
			p, ok := products[o.Shop+"/"+it.Product]
			if !ok {
				return fmt.Errorf("seed: unknown product %q in shop %q", it.Product, o.Shop)
			}
			order.Items = append(order.Items, domain.OrderItem{
				ProductID:      p.ID,
				Title:          p.Title,
				Quantity:       it.Quantity,
				UnitPriceCents: p.EffectivePrice(),
			})
		}
		order.Recalculate()

		if err := s.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("seed: order at index %d: %w", i+1, err)
		}
	}

	return nil
}
