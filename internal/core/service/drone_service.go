package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
	"github.com/Rishisinghwindows/Destrone/internal/geo"
)

const (
	sortByPrice    = "price"
	sortByDistance = "distance"
)

type droneService struct {
	drones   ports.DroneRepository
	profiles ports.ProfileStores
	log      zerolog.Logger
}

// NewDroneService returns a DroneService implementation.
func NewDroneService(drones ports.DroneRepository, profiles ports.ProfileStores, log zerolog.Logger) ports.DroneService {
	return &droneService{drones: drones, profiles: profiles, log: log}
}

func (s *droneService) List(ctx context.Context, f ports.DroneFilter) ([]*domain.Drone, error) {
	all, err := s.drones.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list drones: %w", err)
	}

	hasOrigin := f.Lat != nil && f.Lon != nil
	distance := func(d *domain.Drone) float64 {
		return geo.HaversineKm(*f.Lat, *f.Lon, d.Lat, d.Lon)
	}

	out := make([]*domain.Drone, 0, len(all))
	for _, d := range all {
		if f.MinPrice != nil && d.PricePerHr < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && d.PricePerHr > *f.MaxPrice {
			continue
		}
		if hasOrigin && f.MaxDistKm != nil && !geo.WithinKm(*f.Lat, *f.Lon, d.Lat, d.Lon, *f.MaxDistKm) {
			continue
		}
		out = append(out, d)
	}

	switch {
	case f.SortBy == sortByPrice:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PricePerHr < out[j].PricePerHr })
	case f.SortBy == sortByDistance && hasOrigin:
		sort.SliceStable(out, func(i, j int) bool { return distance(out[i]) < distance(out[j]) })
	}
	return out, nil
}

func (s *droneService) Get(ctx context.Context, id int64) (*domain.Drone, error) {
	d, err := s.drones.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get drone: %w", err)
	}
	return d, nil
}

func (s *droneService) Create(ctx context.Context, id domain.Identity, in ports.CreateDroneInput) (*domain.Drone, error) {
	if err := id.Require(domain.RoleOwner); err != nil {
		return nil, err
	}
	if in.PricePerHr <= 0 {
		return nil, domain.ErrInvalidPrice
	}

	owner, err := s.profiles.For(domain.RoleOwner).FindByMobile(ctx, id.Mobile)
	if err != nil {
		return nil, fmt.Errorf("create drone: %w", err)
	}

	created, err := s.drones.Create(ctx, &domain.Drone{
		Name:           in.Name,
		Type:           in.Type,
		Lat:            in.Lat,
		Lon:            in.Lon,
		Status:         domain.DroneAvailable,
		PricePerHr:     in.PricePerHr,
		ImageURL:       in.ImageURL,
		BatteryMah:     in.BatteryMah,
		CapacityLiters: in.CapacityLiters,
		OwnerID:        owner.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("create drone: %w", err)
	}

	s.log.Info().Int64("drone_id", created.ID).Int64("owner_id", owner.ID).Msg("drone registered")
	return created, nil
}

// UpdateAvailability sets an owner-chosen status. The value is opaque here.
func (s *droneService) UpdateAvailability(ctx context.Context, id domain.Identity, droneID int64, status string) error {
	if err := id.Require(domain.RoleOwner); err != nil {
		return err
	}
	if status == "" {
		return domain.ErrStatusRequired
	}

	owner, err := s.profiles.For(domain.RoleOwner).FindByMobile(ctx, id.Mobile)
	if err != nil {
		return fmt.Errorf("update availability: %w", err)
	}
	drone, err := s.drones.FindByID(ctx, droneID)
	if err != nil {
		return fmt.Errorf("update availability: %w", err)
	}
	if drone.OwnerID != owner.ID {
		return domain.ErrNotDroneOwner
	}

	if err := s.drones.UpdateStatus(ctx, droneID, domain.DroneStatus(status)); err != nil {
		return fmt.Errorf("update availability: %w", err)
	}
	s.log.Info().Int64("drone_id", droneID).Str("status", status).Msg("drone availability updated")
	return nil
}

type ownerService struct {
	owners ports.ProfileStore
}

// NewOwnerService returns the owner directory.
func NewOwnerService(profiles ports.ProfileStores) ports.OwnerService {
	return &ownerService{owners: profiles.For(domain.RoleOwner)}
}

func (s *ownerService) ListOwners(ctx context.Context) ([]*domain.Profile, error) {
	out, err := s.owners.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	return out, nil
}
