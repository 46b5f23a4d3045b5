package services

import (
	"context"
	"errors"
	"fmt"
	"market-dash-service/internal/domain"
	"market-dash-service/internal/ports"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

type CompanyPatch struct {
	Name    *string
	Phone   *string
	Email   *string
	Address *string
	Status  *domain.CompanyStatus
}

type DriverPatch struct {
	CarID         **int64
	Name          *string
	Phone         *string
	LicenseNumber *string
	Status        *domain.DriverStatus
}

type CarPatch struct {
	PlateNumber *string
	Brand       *string
	Model       *string
	Color       *string
	CapacityKg  *int
}

// CompanyDetails is a delivery company with its fleet and methods.
type CompanyDetails struct {
	Company *domain.DeliveryCompany
	Drivers []*domain.DeliveryDriver
	Cars    []*domain.DeliveryCar
	Methods []*domain.DeliveryMethod
}

// DeliveryService manages delivery companies, their fleet and methods.
// Shop owners may read companies so they can link them to shops.
type DeliveryService struct {
	Delivery ports.DeliveryRepository
	Profiles ports.ProfileRepository
	Now      func() time.Time
}

func (s *DeliveryService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func canReadDelivery(a Actor) error {
	switch a.Role {
	case domain.RoleAdmin, domain.RoleShopOwner, domain.RoleDeliveryOwner:
		return nil
	}
	return forbidden("role %q cannot view delivery companies", a.Role)
}

// ownedCompany loads a company and checks the actor may manage it.
func (s *DeliveryService) ownedCompany(ctx context.Context, a Actor, id int64) (*domain.DeliveryCompany, error) {
	if a.Role != domain.RoleAdmin && a.Role != domain.RoleDeliveryOwner {
		return nil, forbidden("role %q cannot manage delivery companies", a.Role)
	}
	c, err := s.Delivery.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.IsAdmin() && c.OwnerID != a.ProfileID {
		return nil, forbidden("delivery company %d is not owned by profile %d", id, a.ProfileID)
	}
	return c, nil
}

func (s *DeliveryService) ListCompanies(ctx context.Context, a Actor) ([]*domain.DeliveryCompany, error) {
	if err := canReadDelivery(a); err != nil {
		return nil, err
	}
	var owner int64
	if a.Role == domain.RoleDeliveryOwner {
		owner = a.ProfileID
	}
	companies, err := s.Delivery.ListCompanies(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

// GetCompany loads the company and its fleet in parallel.
func (s *DeliveryService) GetCompany(ctx context.Context, a Actor, id int64) (*CompanyDetails, error) {
	if err := canReadDelivery(a); err != nil {
		return nil, err
	}
	c, err := s.Delivery.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Role == domain.RoleDeliveryOwner && c.OwnerID != a.ProfileID {
		return nil, forbidden("delivery company %d is not owned by profile %d", id, a.ProfileID)
	}

	out := &CompanyDetails{Company: c}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Drivers, err = s.Delivery.ListDrivers(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		out.Cars, err = s.Delivery.ListCars(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		out.Methods, err = s.Delivery.ListMethods(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("get company id=%d: %w", id, err)
	}
	return out, nil
}

func (s *DeliveryService) CreateCompany(ctx context.Context, a Actor, c *domain.DeliveryCompany) error {
	switch a.Role {
	case domain.RoleAdmin:
	case domain.RoleDeliveryOwner:
		c.OwnerID = a.ProfileID
	default:
		return forbidden("role %q cannot create delivery companies", a.Role)
	}
	if c.Status == "" {
		c.Status = domain.CompanyActive
	}
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return err
	}

	owner, err := s.Profiles.GetProfile(ctx, c.OwnerID)
	if err != nil {
		return fmt.Errorf("create company: owner: %w", err)
	}
	if owner.Role != domain.RoleDeliveryOwner && owner.Role != domain.RoleAdmin {
		return &domain.ValidationError{Field: "owner_id", Message: "owner must be a delivery owner"}
	}

	c.CreatedAt = s.now()
	return s.Delivery.CreateCompany(ctx, c)
}

func (s *DeliveryService) UpdateCompany(ctx context.Context, a Actor, id int64, p CompanyPatch) (*domain.DeliveryCompany, error) {
	c, err := s.ownedCompany(ctx, a, id)
	if err != nil {
		return nil, fmt.Errorf("update company: %w", err)
	}

	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.Delivery.UpdateCompany(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *DeliveryService) DeleteCompany(ctx context.Context, a Actor, id int64) error {
	if _, err := s.ownedCompany(ctx, a, id); err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	return s.Delivery.DeleteCompany(ctx, id)
}

// checkCar verifies an optional car belongs to the company.
func (s *DeliveryService) checkCar(ctx context.Context, companyID int64, carID *int64) error {
	if carID == nil {
		return nil
	}
	car, err := s.Delivery.GetCar(ctx, *carID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.ValidationError{Field: "car_id", Message: "unknown car"}
	}
	if err != nil {
		return err
	}
	if car.CompanyID != companyID {
		return &domain.ValidationError{Field: "car_id", Message: "car belongs to another company"}
	}
	return nil
}

func (s *DeliveryService) ListDrivers(ctx context.Context, a Actor, companyID int64) ([]*domain.DeliveryDriver, error) {
	details, err := s.GetCompany(ctx, a, companyID)
	if err != nil {
		return nil, err
	}
	return details.Drivers, nil
}

func (s *DeliveryService) CreateDriver(ctx context.Context, a Actor, d *domain.DeliveryDriver) error {
	if _, err := s.ownedCompany(ctx, a, d.CompanyID); err != nil {
		return fmt.Errorf("create driver: %w", err)
	}
	if d.Status == "" {
		d.Status = domain.DriverAvailable
	}
	if err := d.Validate(); err != nil {
		return err
	}
	if err := s.checkCar(ctx, d.CompanyID, d.CarID); err != nil {
		return err
	}
	return s.Delivery.CreateDriver(ctx, d)
}

// companyDriver loads a driver that must belong to companyID.
func (s *DeliveryService) companyDriver(ctx context.Context, a Actor, companyID, driverID int64) (*domain.DeliveryDriver, error) {
	if _, err := s.ownedCompany(ctx, a, companyID); err != nil {
		return nil, err
	}
	d, err := s.Delivery.GetDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if d.CompanyID != companyID {
		return nil, fmt.Errorf("driver %d in company %d: %w", driverID, companyID, domain.ErrNotFound)
	}
	return d, nil
}

func (s *DeliveryService) UpdateDriver(ctx context.Context, a Actor, companyID, driverID int64, p DriverPatch) (*domain.DeliveryDriver, error) {
	d, err := s.companyDriver(ctx, a, companyID, driverID)
	if err != nil {
		return nil, fmt.Errorf("update driver: %w", err)
	}

	if p.CarID != nil {
		d.CarID = *p.CarID
	}
	if p.Name != nil {
		d.Name = strings.TrimSpace(*p.Name)
	}
	if p.Phone != nil {
		d.Phone = *p.Phone
	}
	if p.LicenseNumber != nil {
		d.LicenseNumber = *p.LicenseNumber
	}
	if p.Status != nil {
		d.Status = *p.Status
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCar(ctx, companyID, d.CarID); err != nil {
		return nil, err
	}

	if err := s.Delivery.UpdateDriver(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DeliveryService) DeleteDriver(ctx context.Context, a Actor, companyID, driverID int64) error {
	if _, err := s.companyDriver(ctx, a, companyID, driverID); err != nil {
		return fmt.Errorf("delete driver: %w", err)
	}
	return s.Delivery.DeleteDriver(ctx, driverID)
}

func (s *DeliveryService) ListCars(ctx context.Context, a Actor, companyID int64) ([]*domain.DeliveryCar, error) {
	details, err := s.GetCompany(ctx, a, companyID)
	if err != nil {
		return nil, err
	}
	return details.Cars, nil
}

func (s *DeliveryService) CreateCar(ctx context.Context, a Actor, c *domain.DeliveryCar) error {
	if _, err := s.ownedCompany(ctx, a, c.CompanyID); err != nil {
		return fmt.Errorf("create car: %w", err)
	}
	c.PlateNumber = strings.TrimSpace(c.PlateNumber)
	if err := c.Validate(); err != nil {
		return err
	}
	return s.Delivery.CreateCar(ctx, c)
}

func (s *DeliveryService) companyCar(ctx context.Context, a Actor, companyID, carID int64) (*domain.DeliveryCar, error) {
	if _, err := s.ownedCompany(ctx, a, companyID); err != nil {
		return nil, err
	}
	c, err := s.Delivery.GetCar(ctx, carID)
	if err != nil {
		return nil, err
	}
	if c.CompanyID != companyID {
		return nil, fmt.Errorf("car %d in company %d: %w", carID, companyID, domain.ErrNotFound)
	}
	return c, nil
}

func (s *DeliveryService) UpdateCar(ctx context.Context, a Actor, companyID, carID int64, p CarPatch) (*domain.DeliveryCar, error) {
	c, err := s.companyCar(ctx, a, companyID, carID)
	if err != nil {
		return nil, fmt.Errorf("update car: %w", err)
	}

	if p.PlateNumber != nil {
		c.PlateNumber = strings.TrimSpace(*p.PlateNumber)
	}
	if p.Brand != nil {
		c.Brand = *p.Brand
	}
	if p.Model != nil {
		c.Model = *p.Model
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.CapacityKg != nil {
		c.CapacityKg = *p.CapacityKg
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.Delivery.UpdateCar(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *DeliveryService) DeleteCar(ctx context.Context, a Actor, companyID, carID int64) error {
	if _, err := s.companyCar(ctx, a, companyID, carID); err != nil {
		return fmt.Errorf("delete car: %w", err)
	}
	return s.Delivery.DeleteCar(ctx, carID)
}

func (s *DeliveryService) ListMethods(ctx context.Context, a Actor, companyID int64) ([]*domain.DeliveryMethod, error) {
	details, err := s.GetCompany(ctx, a, companyID)
	if err != nil {
		return nil, err
	}
	return details.Methods, nil
}

func (s *DeliveryService) CreateMethod(ctx context.Context, a Actor, m *domain.DeliveryMethod) error {
	if _, err := s.ownedCompany(ctx, a, m.CompanyID); err != nil {
		return fmt.Errorf("create delivery method: %w", err)
	}
	m.Label = strings.TrimSpace(m.Label)
	if err := m.Validate(); err != nil {
		return err
	}
	return s.Delivery.CreateMethod(ctx, m)
}

func (s *DeliveryService) DeleteMethod(ctx context.Context, a Actor, companyID, methodID int64) error {
	if _, err := s.ownedCompany(ctx, a, companyID); err != nil {
		return fmt.Errorf("delete delivery method: %w", err)
	}
	m, err := s.Delivery.GetMethod(ctx, methodID)
	if err != nil {
		return err
	}
	if m.CompanyID != companyID {
		return fmt.Errorf("delivery method %d in company %d: %w", methodID, companyID, domain.ErrNotFound)
	}
	return s.Delivery.DeleteMethod(ctx, methodID)
}
