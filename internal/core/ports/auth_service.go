package ports

import (
	"context"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
)

// VerifyOTPInput is the DTO passed from the transport layer to AuthService.
type VerifyOTPInput struct {
	Mobile string
	Code   string
	Role   domain.Role
	Name   string   // required only on first provisioning for Role
	Lat    *float64 // coordinates are applied only when both are set
	Lon    *float64
}

// AuthResult is returned after a successful verification.
type AuthResult struct {
	Token       string
	TokenType   string
	Role        domain.Role
	Roles       []domain.Role
	ProfileName string
}

// OTPRequestResult acknowledges an OTP request. DemoOTP is only set when the
// deployment echoes its static code.
type OTPRequestResult struct {
	Mobile  string
	OTPSent bool
	DemoOTP string
}

type AuthService interface {
	RequestOTP(ctx context.Context, mobile string) (*OTPRequestResult, error)
	VerifyOTP(ctx context.Context, in VerifyOTPInput) (*AuthResult, error)
}

// OwnerService exposes the owner directory.
type OwnerService interface {
	ListOwners(ctx context.Context) ([]*domain.Profile, error)
}
