package ports

import (
	"context"
	"market-dash-service/internal/domain"
)

// Port: a boundary for reading and writing user profiles.
type ProfileRepository interface {
	ListProfiles(ctx context.Context, role domain.Role) ([]*domain.Profile, error)
	GetProfile(ctx context.Context, id int64) (*domain.Profile, error)
	// Return the profiles found for ids; missing ids are skipped.
	GetProfilesByIDs(ctx context.Context, ids []int64) (map[int64]*domain.Profile, error)
	CreateProfile(ctx context.Context, p *domain.Profile) error
	UpdateProfileRole(ctx context.Context, id int64, role domain.Role) error
}
