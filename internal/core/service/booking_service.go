package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
	"github.com/Rishisinghwindows/Destrone/pkg/logger"
)

type bookingService struct {
	bookings ports.BookingRepository
	drones   ports.DroneRepository
	profiles ports.ProfileStores
	now      func() time.Time
	log      zerolog.Logger
}

// NewBookingService returns the booking state machine. now defaults to time.Now.
func NewBookingService(
	bookings ports.BookingRepository,
	drones ports.DroneRepository,
	profiles ports.ProfileStores,
	now func() time.Time,
	log zerolog.Logger,
) ports.BookingService {
	if now == nil {
		now = time.Now
	}
	return &bookingService{
		bookings: bookings,
		drones:   drones,
		profiles: profiles,
		now:      now,
		log:      log,
	}
}

// Create places a Pending booking for the calling requester. It has no
// effect on drone availability.
func (s *bookingService) Create(ctx context.Context, id domain.Identity, in ports.CreateBookingInput) (*domain.Booking, error) {
	if err := id.Require(domain.RoleRequester); err != nil {
		return nil, err
	}
	if in.DurationHrs <= 0 {
		return nil, domain.ErrInvalidDuration
	}

	if _, err := s.drones.FindByID(ctx, in.DroneID); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	requester, err := s.profiles.For(domain.RoleRequester).FindByMobile(ctx, id.Mobile)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	name := in.RequesterName
	if name == "" {
		name = requester.Name
	}

	created, err := s.bookings.Create(ctx, &domain.Booking{
		DroneID:         in.DroneID,
		RequesterName:   name,
		RequesterMobile: id.Mobile,
		CreatedAt:       s.now().UTC(),
		DurationHrs:     in.DurationHrs,
		Status:          domain.BookingPending,
	})
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info().
		Int64("booking_id", created.ID).
		Int64("drone_id", created.DroneID).
		Str("mobile", logger.MaskMobile(id.Mobile)).
		Msg("booking created")
	return created, nil
}

// Transition moves a booking to status and syncs the drone availability in
// the same transaction. Only the owner of the booked drone may do this.
func (s *bookingService) Transition(ctx context.Context, id domain.Identity, bookingID int64, status string) error {
	if err := id.Require(domain.RoleOwner); err != nil {
		return err
	}

	// 1. Status literal.
	next, err := domain.ParseBookingStatus(status)
	if err != nil {
		return err
	}

	// 2. Caller's owner profile.
	owner, err := s.profiles.For(domain.RoleOwner).FindByMobile(ctx, id.Mobile)
	if err != nil {
		return fmt.Errorf("transition booking: %w", err)
	}

	// 3. Booking and its drone.
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("transition booking: %w", err)
	}
	drone, err := s.drones.FindByID(ctx, booking.DroneID)
	if err != nil {
		return fmt.Errorf("transition booking: %w", err)
	}

	// 4. Ownership gate.
	if drone.OwnerID != owner.ID {
		return domain.ErrNotDroneOwner
	}
	if !booking.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: cannot move from %s to %s", domain.ErrBadRequest, booking.Status, next)
	}

	// 5. Status and availability as one unit.
	availability := next.Availability()
	if err := s.bookings.ApplyTransition(ctx, booking.ID, next, drone.ID, availability); err != nil {
		return fmt.Errorf("transition booking: %w", err)
	}

	s.log.Info().
		Int64("booking_id", booking.ID).
		Int64("drone_id", drone.ID).
		Str("from", string(booking.Status)).
		Str("to", string(next)).
		Str("availability", string(availability)).
		Msg("booking transitioned")
	return nil
}

// List returns the bookings visible to the caller: owners see bookings on
// their drones, requesters see their own.
func (s *bookingService) List(ctx context.Context, id domain.Identity, status string) ([]*domain.Booking, error) {
	filter := domain.BookingStatus(status)

	switch id.Role {
	case domain.RoleOwner:
		owner, err := s.profiles.For(domain.RoleOwner).FindByMobile(ctx, id.Mobile)
		if err != nil {
			return nil, fmt.Errorf("list bookings: %w", err)
		}
		out, err := s.bookings.ListByOwner(ctx, owner.ID, filter)
		if err != nil {
			return nil, fmt.Errorf("list bookings: %w", err)
		}
		return out, nil
	case domain.RoleRequester:
		out, err := s.bookings.ListByRequester(ctx, id.Mobile, filter)
		if err != nil {
			return nil, fmt.Errorf("list bookings: %w", err)
		}
		return out, nil
	}
	return nil, domain.ErrInvalidRole
}
