// Package seed loads the demo fleet through the repository ports so every
// store driver gets the same data.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
)

// Stores groups the repositories the seeder writes to.
type Stores struct {
	Profiles ports.ProfileStores
	Drones   ports.DroneRepository
	Bookings ports.BookingRepository
}

type person struct {
	name     string
	lat, lon float64
}

var owners = []person{
	{"Rajesh Kumar", 25.610, 85.140},
	{"Neha Sharma", 25.620, 85.135},
	{"Aman Verma", 25.635, 85.120},
	{"Priya Singh", 25.645, 85.125},
	{"Ravi Ranjan", 25.630, 85.110},
	{"Pooja Das", 25.650, 85.140},
	{"Ankit Patel", 25.660, 85.150},
	{"Vivek Thakur", 25.670, 85.160},
	{"Deepak Mishra", 25.640, 85.130},
	{"Kiran Kumari", 25.615, 85.155},
}

var requesters = []person{
	{"Ramesh Patel", 25.600, 85.150},
	{"Sunita Devi", 25.602, 85.152},
	{"Ajay Singh", 25.604, 85.154},
	{"Meena Kumari", 25.606, 85.156},
	{"Anil Kumar", 25.608, 85.158},
	{"Rekha Sinha", 25.610, 85.160},
	{"Mohammad Irfan", 25.612, 85.162},
	{"Sita Ram", 25.614, 85.164},
	{"Vivek Singh", 25.616, 85.166},
	{"Asha Devi", 25.618, 85.168},
}

type droneRow struct {
	name, kind        string
	lat, lon          float64
	status            domain.DroneStatus
	price             float64
	battery, capacity float64
}

// Drone i belongs to owner i.
var drones = []droneRow{
	{"Agri-Bot X4", "Spray", 25.615, 85.130, domain.DroneAvailable, 12500, 9500, 40},
	{"FieldMapper Pro", "Survey", 25.625, 85.145, domain.DroneAvailable, 10000, 7000, 20},
	{"SeedStorm X1", "Spray", 25.640, 85.150, domain.DroneBooked, 15000, 12000, 50},
	{"AgriMax Pro", "Spray", 25.600, 85.110, domain.DroneAvailable, 8500, 9000, 35},
	{"SoilSense Z1", "Mapping", 25.605, 85.135, domain.DroneBooked, 9600, 7200, 18},
	{"CropView R9", "Survey", 25.610, 85.120, domain.DroneAvailable, 10800, 7800, 22},
	{"AgroFlyer S3", "Spray", 25.620, 85.140, domain.DroneBooked, 11200, 8200, 26},
	{"FarmBot T5", "Spray", 25.630, 85.160, domain.DroneAvailable, 11800, 8800, 30},
	{"SkyMap Q8", "Survey", 25.640, 85.135, domain.DroneAvailable, 9900, 7600, 16},
	{"DronePro X1", "Surveillance", 25.650, 85.145, domain.DroneBooked, 13400, 10200, 32},
}

var imagePool = []string{
	"https://images.unsplash.com/photo-1523966211575-eb4a01e7dd51?auto=format&fit=crop&w=800&q=80",
	"https://images.unsplash.com/photo-1508614589041-895b88991e3e?auto=format&fit=crop&w=800&q=80",
	"https://images.unsplash.com/photo-1473968512647-3e447244af8f?auto=format&fit=crop&w=800&q=80",
}

type bookingRow struct {
	drone     int // index into drones
	requester int // index into requesters
	at        string
	hours     int
	status    domain.BookingStatus
}

var bookings = []bookingRow{
	{2, 0, "2025-10-20T09:30:00Z", 2, domain.BookingAccepted},
	{0, 1, "2025-10-21T10:00:00Z", 3, domain.BookingPending},
	{1, 2, "2025-10-22T11:00:00Z", 1, domain.BookingRejected},
	{3, 3, "2025-10-22T15:00:00Z", 2, domain.BookingPending},
	{4, 4, "2025-10-23T09:45:00Z", 3, domain.BookingAccepted},
	{5, 5, "2025-10-23T13:30:00Z", 2, domain.BookingPending},
	{6, 6, "2025-10-24T08:15:00Z", 4, domain.BookingAccepted},
	{7, 7, "2025-10-24T11:30:00Z", 1, domain.BookingRejected},
	{8, 8, "2025-10-24T14:00:00Z", 3, domain.BookingPending},
	{9, 9, "2025-10-25T09:00:00Z", 2, domain.BookingAccepted},
}

// OwnerMobile returns the demo mobile of owner i (7000000000 + i).
func OwnerMobile(i int) string { return fmt.Sprintf("70%08d", i) }

// RequesterMobile returns the demo mobile of requester i (7100000000 + i).
func RequesterMobile(i int) string { return fmt.Sprintf("71%08d", i) }

// Demo inserts the demo data unless the first demo owner already exists.
// It reports whether anything was written.
func Demo(ctx context.Context, s Stores, log zerolog.Logger) (bool, error) {
	_, err := s.Profiles.Owners.FindByMobile(ctx, OwnerMobile(0))
	switch {
	case err == nil:
		log.Debug().Msg("demo data already present, skipping seed")
		return false, nil
	case !errors.Is(err, domain.ErrProfileNotFound):
		return false, fmt.Errorf("seed: %w", err)
	}

	ownerIDs := make([]int64, len(owners))
	for i, p := range owners {
		created, err := createProfile(ctx, s.Profiles.Owners, p, OwnerMobile(i))
		if err != nil {
			return false, err
		}
		ownerIDs[i] = created.ID
	}
	for i, p := range requesters {
		if _, err := createProfile(ctx, s.Profiles.Requesters, p, RequesterMobile(i)); err != nil {
			return false, err
		}
	}

	droneIDs := make([]int64, len(drones))
	for i, d := range drones {
		battery, capacity := d.battery, d.capacity
		created, err := s.Drones.Create(ctx, &domain.Drone{
			Name:           d.name,
			Type:           d.kind,
			Lat:            d.lat,
			Lon:            d.lon,
			Status:         d.status,
			PricePerHr:     d.price,
			ImageURL:       imagePool[i%len(imagePool)],
			BatteryMah:     &battery,
			CapacityLiters: &capacity,
			OwnerID:        ownerIDs[i],
		})
		if err != nil {
			return false, fmt.Errorf("seed drone %q: %w", d.name, err)
		}
		droneIDs[i] = created.ID
	}

	for _, b := range bookings {
		at, err := time.Parse(time.RFC3339, b.at)
		if err != nil {
			return false, fmt.Errorf("seed booking time: %w", err)
		}
		r := requesters[b.requester]
		if _, err := s.Bookings.Create(ctx, &domain.Booking{
			DroneID:         droneIDs[b.drone],
			RequesterName:   r.name,
			RequesterMobile: RequesterMobile(b.requester),
			CreatedAt:       at,
			DurationHrs:     b.hours,
			Status:          b.status,
		}); err != nil {
			return false, fmt.Errorf("seed booking: %w", err)
		}
	}

	log.Info().
		Int("owners", len(owners)).
		Int("requesters", len(requesters)).
		Int("drones", len(drones)).
		Int("bookings", len(bookings)).
		Msg("demo data seeded")
	return true, nil
}

func createProfile(ctx context.Context, store ports.ProfileStore, p person, mobile string) (*domain.Profile, error) {
	lat, lon := p.lat, p.lon
	created, err := store.Create(ctx, &domain.Profile{Name: p.name, Mobile: mobile, Lat: &lat, Lon: &lon})
	if err != nil {
		return nil, fmt.Errorf("seed profile %s: %w", mobile, err)
	}
	return created, nil
}
