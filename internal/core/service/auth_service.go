package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
	"github.com/Rishisinghwindows/Destrone/pkg/logger"
)

const tokenTypeBearer = "bearer"

// OTPConfig is the immutable OTP setup of the deployment.
type OTPConfig struct {
	// Code is the static one-time code. Ignored for verification when
	// CodeHash is set.
	Code string
	// CodeHash is an optional bcrypt hash of the code.
	CodeHash string
	// Echo returns Code from RequestOTP so demo clients can log in.
	Echo bool
}

// AuthService implements OTP request and verification.
type AuthService struct {
	profiles ports.ProfileStores
	codec    ports.TokenCodec
	limiter  ports.AttemptLimiter
	otpHash  []byte
	demoOTP  string
	log      zerolog.Logger
}

// NewAuthService hashes the configured code once so every comparison runs
// through bcrypt. limiter may be nil.
func NewAuthService(
	profiles ports.ProfileStores,
	codec ports.TokenCodec,
	limiter ports.AttemptLimiter,
	cfg OTPConfig,
	log zerolog.Logger,
) (*AuthService, error) {
	hash := []byte(cfg.CodeHash)
	if len(hash) == 0 {
		if cfg.Code == "" {
			return nil, errors.New("auth service: otp code not configured")
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.Code), bcrypt.MinCost)
		if err != nil {
			return nil, fmt.Errorf("auth service: hash otp: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("auth service: otp hash: %w", err)
	}

	s := &AuthService{
		profiles: profiles,
		codec:    codec,
		limiter:  limiter,
		otpHash:  hash,
		log:      log,
	}
	if cfg.Echo {
		s.demoOTP = cfg.Code
	}
	return s, nil
}

var _ ports.AuthService = (*AuthService)(nil)

// RequestOTP acknowledges the request. No code is delivered out of band.
func (s *AuthService) RequestOTP(_ context.Context, mobile string) (*ports.OTPRequestResult, error) {
	if mobile == "" {
		return nil, fmt.Errorf("%w: mobile required", domain.ErrBadRequest)
	}
	s.log.Info().Str("mobile", logger.MaskMobile(mobile)).Msg("otp requested")
	return &ports.OTPRequestResult{Mobile: mobile, OTPSent: true, DemoOTP: s.demoOTP}, nil
}

// VerifyOTP checks the code, provisions or refreshes the profile for the
// requested role and issues a token for that role only.
func (s *AuthService) VerifyOTP(ctx context.Context, in ports.VerifyOTPInput) (*ports.AuthResult, error) {
	masked := logger.MaskMobile(in.Mobile)
	if _, ok := domain.ParseRole(string(in.Role)); !ok {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrBadRequest, in.Role)
	}

	// 1. Throttle repeated failures. Limiter faults never block a login.
	if s.limiter != nil {
		blocked, err := s.limiter.Blocked(ctx, in.Mobile)
		if err != nil {
			s.log.Warn().Err(err).Str("mobile", masked).Msg("attempt limiter check failed, continuing")
		} else if blocked {
			s.log.Warn().Str("mobile", masked).Msg("otp verification blocked: too many attempts")
			return nil, domain.ErrTooManyAttempts
		}
	}

	// 2. Code.
	if bcrypt.CompareHashAndPassword(s.otpHash, []byte(in.Code)) != nil {
		s.log.Warn().Str("mobile", masked).Msg("otp verification failed: invalid otp")
		if s.limiter != nil {
			if err := s.limiter.Fail(ctx, in.Mobile); err != nil {
				s.log.Warn().Err(err).Str("mobile", masked).Msg("failed to record otp attempt")
			}
		}
		return nil, domain.ErrInvalidOTP
	}
	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, in.Mobile); err != nil {
			s.log.Warn().Err(err).Str("mobile", masked).Msg("failed to reset otp attempts")
		}
	}

	s.log.Info().Str("mobile", masked).Str("role", string(in.Role)).Msg("otp verification attempt")

	// 3. Look up every role independently of the requested one.
	existing := make(map[domain.Role]*domain.Profile, 2)
	for _, role := range domain.Roles() {
		p, err := s.profiles.For(role).FindByMobile(ctx, in.Mobile)
		switch {
		case err == nil:
			existing[role] = p
		case errors.Is(err, domain.ErrProfileNotFound):
		default:
			return nil, fmt.Errorf("verify otp: lookup %s: %w", role, err)
		}
	}

	// 4. Provision or refresh the requested role.
	store := s.profiles.For(in.Role)
	target := existing[in.Role]
	switch {
	case target == nil:
		if in.Name == "" {
			s.log.Warn().Str("mobile", masked).Str("role", string(in.Role)).Msg("otp verification failed: name required")
			return nil, domain.ErrNameRequired
		}
		created, err := store.Create(ctx, &domain.Profile{
			Name:   in.Name,
			Mobile: in.Mobile,
			Lat:    in.Lat,
			Lon:    in.Lon,
		})
		if err != nil {
			return nil, fmt.Errorf("verify otp: provision %s: %w", in.Role, err)
		}
		s.log.Info().Str("mobile", masked).Str("role", string(in.Role)).Msg("provisioned new profile")
		existing[in.Role] = created
		target = created

	case in.Lat != nil && in.Lon != nil:
		if err := store.UpdateLocation(ctx, in.Mobile, *in.Lat, *in.Lon); err != nil {
			return nil, fmt.Errorf("verify otp: update location: %w", err)
		}
		lat, lon := *in.Lat, *in.Lon
		target.Lat, target.Lon = &lat, &lon
		s.log.Info().Str("mobile", masked).Str("role", string(in.Role)).Msg("updated profile location")
	}

	// 5. Role membership, owner first.
	roles := make([]domain.Role, 0, 2)
	for _, role := range domain.Roles() {
		if existing[role] != nil {
			roles = append(roles, role)
		}
	}

	// 6. Token for the requested role only.
	token, err := s.codec.Issue(in.Mobile, in.Role)
	if err != nil {
		return nil, fmt.Errorf("verify otp: %w", err)
	}

	s.log.Info().
		Str("mobile", masked).
		Str("requested", string(in.Role)).
		Strs("roles", roleStrings(roles)).
		Msg("otp verification succeeded")

	return &ports.AuthResult{
		Token:       token,
		TokenType:   tokenTypeBearer,
		Role:        in.Role,
		Roles:       roles,
		ProfileName: target.Name,
	}, nil
}

func roleStrings(roles []domain.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}
