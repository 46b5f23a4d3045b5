package domain

import (
	"strings"
	"time"
)

type CompanyStatus string

const (
	CompanyActive   CompanyStatus = "active"
	CompanyInactive CompanyStatus = "inactive"
)

// DeliveryCompany operates drivers and cars and offers delivery methods to shops.
type DeliveryCompany struct {
	ID        int64
	OwnerID   int64
	Name      string
	Phone     string
	Email     string
	Address   string
	Status    CompanyStatus
	CreatedAt time.Time
}

func (c *DeliveryCompany) Validate() error {
	if c.OwnerID <= 0 {
		return invalid("owner_id", "must be set")
	}
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if c.Status != CompanyActive && c.Status != CompanyInactive {
		return invalid("status", "unknown status %q", c.Status)
	}
	return nil
}

type DriverStatus string

const (
	DriverAvailable DriverStatus = "available"
	DriverBusy      DriverStatus = "busy"
	DriverOffline   DriverStatus = "offline"
)

type DeliveryDriver struct {
	ID            int64
	CompanyID     int64
	CarID         *int64
	Name          string
	Phone         string
	LicenseNumber string
	Status        DriverStatus
}

func (d *DeliveryDriver) Validate() error {
	if d.CompanyID <= 0 {
		return invalid("company_id", "must be set")
	}
	if strings.TrimSpace(d.Name) == "" {
		return invalid("name", "must not be empty")
	}
	switch d.Status {
	case DriverAvailable, DriverBusy, DriverOffline:
	default:
		return invalid("status", "unknown status %q", d.Status)
	}
	return nil
}

type DeliveryCar struct {
	ID          int64
	CompanyID   int64
	PlateNumber string
	Brand       string
	Model       string
	Color       string
	CapacityKg  int
}

func (c *DeliveryCar) Validate() error {
	if c.CompanyID <= 0 {
		return invalid("company_id", "must be set")
	}
	if strings.TrimSpace(c.PlateNumber) == "" {
		return invalid("plate_number", "must not be empty")
	}
	if c.CapacityKg < 0 {
		return invalid("capacity_kg", "must not be negative")
	}
	return nil
}

// DeliveryMethod is a priced shipping option offered by a company.
type DeliveryMethod struct {
	ID            int64
	CompanyID     int64
	Label         string
	PriceCents    int64
	EstimatedDays int
}

func (m *DeliveryMethod) Validate() error {
	if m.CompanyID <= 0 {
		return invalid("company_id", "must be set")
	}
	if strings.TrimSpace(m.Label) == "" {
		return invalid("label", "must not be empty")
	}
	if m.PriceCents < 0 {
		return invalid("price_cents", "must not be negative")
	}
	if m.EstimatedDays < 0 {
		return invalid("estimated_days", "must not be negative")
	}
	return nil
}
