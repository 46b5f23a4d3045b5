package domain

import (
	"strings"
	"time"
)

type ShopStatus string

const (
	ShopActive   ShopStatus = "active"
	ShopInactive ShopStatus = "inactive"
)

// Shop is a tenant storefront owned by a single profile.
type Shop struct {
	ID          int64
	OwnerID     int64
	Name        string
	Description string
	Address     string
	Phone       string
	Status      ShopStatus
	CreatedAt   time.Time
}

func (s *Shop) Validate() error {
	if s.OwnerID <= 0 {
		return invalid("owner_id", "must be set")
	}
	if strings.TrimSpace(s.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if s.Status != ShopActive && s.Status != ShopInactive {
		return invalid("status", "unknown status %q", s.Status)
	}
	return nil
}
