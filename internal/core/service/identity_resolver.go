package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
	"github.com/Rishisinghwindows/Destrone/pkg/logger"
)

const bearerPrefix = "bearer "

type identityResolver struct {
	codec    ports.TokenCodec
	profiles ports.ProfileStores
	log      zerolog.Logger
}

// NewIdentityResolver returns an IdentityResolver backed by codec and profiles.
func NewIdentityResolver(codec ports.TokenCodec, profiles ports.ProfileStores, log zerolog.Logger) ports.IdentityResolver {
	return &identityResolver{codec: codec, profiles: profiles, log: log}
}

// Resolve verifies the token carried by header and re-checks that the
// claimed role is still backed by a profile.
func (r *identityResolver) Resolve(ctx context.Context, header string) (domain.Identity, error) {
	// 1. Scheme, case-insensitive.
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return domain.Identity{}, domain.ErrMissingBearer
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])

	// 2. Signature and expiry.
	claims, err := r.codec.Decode(token)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}

	// 3. Payload shape.
	if claims.Subject == "" {
		return domain.Identity{}, domain.ErrInvalidPayload
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return domain.Identity{}, domain.ErrInvalidRole
	}

	// 4. The role must still be backed by a profile.
	if _, err := r.profiles.For(role).FindByMobile(ctx, claims.Subject); err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			r.log.Debug().
				Str("mobile", logger.MaskMobile(claims.Subject)).
				Str("role", string(role)).
				Msg("token role no longer backed by a profile")
			return domain.Identity{}, domain.ProfileMissingError(role)
		}
		return domain.Identity{}, fmt.Errorf("resolve identity: %w", err)
	}

	return domain.Identity{Mobile: claims.Subject, Role: role}, nil
}

func (r *identityResolver) Require(ctx context.Context, header string, role domain.Role) (domain.Identity, error) {
	id, err := r.Resolve(ctx, header)
	if err != nil {
		return domain.Identity{}, err
	}
	if err := id.Require(role); err != nil {
		return domain.Identity{}, err
	}
	return id, nil
}
