package ports

import (
	"context"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
)

// BookingRepository handles booking persistence and the linked drone
// availability write.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	// FindByID returns domain.ErrBookingNotFound when the id is unknown.
	FindByID(ctx context.Context, id int64) (*domain.Booking, error)
	// ListByOwner returns bookings on drones owned by ownerID, newest first.
	// An empty status matches every status.
	ListByOwner(ctx context.Context, ownerID int64, status domain.BookingStatus) ([]*domain.Booking, error)
	// ListByRequester returns bookings placed by mobile, newest first.
	ListByRequester(ctx context.Context, mobile string, status domain.BookingStatus) ([]*domain.Booking, error)

	// ApplyTransition sets the booking status and the drone availability in a
	// single transaction. Either both writes are visible or neither is.
	ApplyTransition(
		ctx context.Context,
		bookingID int64,
		status domain.BookingStatus,
		droneID int64,
		availability domain.DroneStatus,
	) error
}
