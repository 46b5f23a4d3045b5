package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin         Role = "admin"
	RoleShopOwner     Role = "shop_owner"
	RoleDeliveryOwner Role = "delivery_owner"
	RoleCustomer      Role = "customer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleShopOwner, RoleDeliveryOwner, RoleCustomer:
		return true
	}
	return false
}

// Profile is a user account as seen by the back office.
type Profile struct {
	ID        int64
	FullName  string
	Email     string
	Phone     string
	Role      Role
	CreatedAt time.Time
}

func (p *Profile) Validate() error {
	if strings.TrimSpace(p.FullName) == "" {
		return invalid("full_name", "must not be empty")
	}
	if !strings.Contains(p.Email, "@") {
		return invalid("email", "must be a valid email address")
	}
	if !p.Role.Valid() {
		return invalid("role", "unknown role %q", p.Role)
	}
	return nil
}
