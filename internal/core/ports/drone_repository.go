package ports

import (
	"context"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
)

// DroneRepository defines persistence operations for drones.
type DroneRepository interface {
	Create(ctx context.Context, d *domain.Drone) (*domain.Drone, error)
	// FindByID returns domain.ErrDroneNotFound when the id is unknown.
	FindByID(ctx context.Context, id int64) (*domain.Drone, error)
	List(ctx context.Context) ([]*domain.Drone, error)
	UpdateStatus(ctx context.Context, id int64, status domain.DroneStatus) error
}
