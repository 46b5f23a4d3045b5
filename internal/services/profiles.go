package services

import (
	"context"
	"fmt"
	"market-dash-service/internal/domain"
	"market-dash-service/internal/ports"
	"strings"
	"time"
)

// ProfileService manages back-office accounts. Only admins list, create or
// re-role profiles; anyone may read their own.
type ProfileService struct {
	Profiles ports.ProfileRepository
	Now      func() time.Time
}

func (s *ProfileService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *ProfileService) List(ctx context.Context, a Actor, role domain.Role) ([]*domain.Profile, error) {
	if !a.IsAdmin() {
		return nil, forbidden("only admins can list profiles")
	}
	if role != "" && !role.Valid() {
		return nil, &domain.ValidationError{Field: "role", Message: fmt.Sprintf("unknown role %q", role)}
	}
	profiles, err := s.Profiles.ListProfiles(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

func (s *ProfileService) Get(ctx context.Context, a Actor, id int64) (*domain.Profile, error) {
	if !a.IsAdmin() && a.ProfileID != id {
		return nil, forbidden("profile %d may not read profile %d", a.ProfileID, id)
	}
	return s.Profiles.GetProfile(ctx, id)
}

func (s *ProfileService) Create(ctx context.Context, a Actor, p *domain.Profile) error {
	if !a.IsAdmin() {
		return forbidden("only admins can create profiles")
	}
	p.FullName = strings.TrimSpace(p.FullName)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Role == "" {
		p.Role = domain.RoleCustomer
	}
	if err := p.Validate(); err != nil {
		return err
	}

	existing, err := s.Profiles.ListProfiles(ctx, "")
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	for _, e := range existing {
		if strings.EqualFold(e.Email, p.Email) {
			return fmt.Errorf("create profile: email %q is taken: %w", p.Email, domain.ErrConflict)
		}
	}

	p.CreatedAt = s.now()
	return s.Profiles.CreateProfile(ctx, p)
}

func (s *ProfileService) UpdateRole(ctx context.Context, a Actor, id int64, role domain.Role) (*domain.Profile, error) {
	if !a.IsAdmin() {
		return nil, forbidden("only admins can change roles")
	}
	if !role.Valid() {
		return nil, &domain.ValidationError{Field: "role", Message: fmt.Sprintf("unknown role %q", role)}
	}
	if id == a.ProfileID && role != domain.RoleAdmin {
		return nil, fmt.Errorf("profile %d cannot drop its own admin role: %w", id, domain.ErrConflict)
	}
	if err := s.Profiles.UpdateProfileRole(ctx, id, role); err != nil {
		return nil, err
	}
	return s.Profiles.GetProfile(ctx, id)
}
