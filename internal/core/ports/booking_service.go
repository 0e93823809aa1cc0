package ports

import (
	"context"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
)

// CreateBookingInput carries the client-controlled booking fields. The
// requester mobile always comes from the identity.
type CreateBookingInput struct {
	DroneID       int64
	DurationHrs   int
	RequesterName string // defaults to the requester's profile name
}

// BookingService is the booking state machine.
type BookingService interface {
	Create(ctx context.Context, id domain.Identity, in CreateBookingInput) (*domain.Booking, error)
	Transition(ctx context.Context, id domain.Identity, bookingID int64, status string) error
	List(ctx context.Context, id domain.Identity, status string) ([]*domain.Booking, error)
}

// DroneFilter carries the optional query parameters for listing drones.
type DroneFilter struct {
	Lat       *float64
	Lon       *float64
	MaxDistKm *float64 // applied only together with Lat and Lon
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    string // "price" or "distance"; anything else keeps store order
}

// CreateDroneInput carries the fields an owner supplies for a new drone.
type CreateDroneInput struct {
	Name           string
	Type           string
	Lat            float64
	Lon            float64
	PricePerHr     float64
	ImageURL       string
	BatteryMah     *float64
	CapacityLiters *float64
}

// DroneService defines use-case operations for drones.
type DroneService interface {
	List(ctx context.Context, filter DroneFilter) ([]*domain.Drone, error)
	Get(ctx context.Context, id int64) (*domain.Drone, error)
	Create(ctx context.Context, id domain.Identity, in CreateDroneInput) (*domain.Drone, error)
	UpdateAvailability(ctx context.Context, id domain.Identity, droneID int64, status string) error
}
