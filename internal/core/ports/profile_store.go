package ports

import (
	"context"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
)

// ProfileStore persists the profiles of a single role.
type ProfileStore interface {
	// FindByMobile returns domain.ErrProfileNotFound when no profile exists.
	FindByMobile(ctx context.Context, mobile string) (*domain.Profile, error)
	Create(ctx context.Context, p *domain.Profile) (*domain.Profile, error)
	UpdateLocation(ctx context.Context, mobile string, lat, lon float64) error
	List(ctx context.Context) ([]*domain.Profile, error)
}

// ProfileStores holds one ProfileStore per role.
type ProfileStores struct {
	Owners     ProfileStore
	Requesters ProfileStore
}

// For selects the store backing role. It panics on a role outside the
// enumeration; roles are validated before they reach the core.
func (s ProfileStores) For(role domain.Role) ProfileStore {
	switch role {
	case domain.RoleOwner:
		return s.Owners
	case domain.RoleRequester:
		return s.Requesters
	}
	panic("ports: unknown role " + string(role))
}
