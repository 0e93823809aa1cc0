package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the core is one of these.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
)

// Token errors.
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrTokenExpired     = errors.New("token expired")
)

var (
	ErrMissingBearer  = fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	ErrInvalidPayload = fmt.Errorf("%w: invalid token payload", ErrUnauthorized)
	ErrInvalidRole    = fmt.Errorf("%w: invalid role", ErrUnauthorized)
	ErrInvalidOTP     = fmt.Errorf("%w: invalid otp", ErrUnauthorized)

	ErrProfileNotFound = fmt.Errorf("profile %w", ErrNotFound)
	ErrDroneNotFound   = fmt.Errorf("drone %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)

	ErrNotDroneOwner = fmt.Errorf("%w: drone belongs to another owner", ErrForbidden)

	ErrNameRequired    = fmt.Errorf("%w: name required", ErrBadRequest)
	ErrInvalidStatus   = fmt.Errorf("%w: status must be Pending/Accepted/Rejected", ErrBadRequest)
	ErrInvalidDuration = fmt.Errorf("%w: duration_hrs must be greater than 0", ErrBadRequest)
	ErrStatusRequired  = fmt.Errorf("%w: status required", ErrBadRequest)
	ErrInvalidPrice    = fmt.Errorf("%w: price_per_hr must be greater than 0", ErrBadRequest)

	ErrTooManyAttempts = errors.New("too many otp attempts")
)

// ProfileMissingError reports a valid token whose role is no longer backed
// by a profile.
func ProfileMissingError(role Role) error {
	return fmt.Errorf("%w: %s profile not found", ErrForbidden, role)
}

func roleRequiredError(role Role) error {
	return fmt.Errorf("%w: %s access required", ErrForbidden, role)
}
