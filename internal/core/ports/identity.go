package ports

import (
	"context"
	"time"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
)

// TokenCodec signs and verifies bearer tokens.
type TokenCodec interface {
	Encode(subject string, role domain.Role, expiry time.Time) (string, error)
	Decode(token string) (*domain.TokenClaims, error)
	// Issue encodes a token expiring one TTL from now.
	Issue(subject string, role domain.Role) (string, error)
}

// IdentityResolver turns an Authorization header into a verified identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, header string) (domain.Identity, error)
	// Require resolves the header and fails with domain.ErrForbidden when the
	// identity does not act as role.
	Require(ctx context.Context, header string, role domain.Role) (domain.Identity, error)
}

// AttemptLimiter counts failed OTP attempts per key.
type AttemptLimiter interface {
	Blocked(ctx context.Context, key string) (bool, error)
	Fail(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// Pinger is implemented by stores that can report their connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}
