package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
)

// tokenClaims is the token payload: {"sub":..., "exp":..., "role":...}.
type tokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

type tokenHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// TokenCodec signs and verifies HS256 bearer tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenCodec returns a codec keyed by secret. now defaults to time.Now.
func NewTokenCodec(secret string, ttl time.Duration, now func() time.Time) *TokenCodec {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
		now:    now,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

var _ ports.TokenCodec = (*TokenCodec)(nil)

// Encode is deterministic for identical inputs and secret. A zero expiry
// produces a token without an exp claim.
func (c *TokenCodec) Encode(subject string, role domain.Role, expiry time.Time) (string, error) {
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		Role:             string(role),
	}
	if !expiry.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(expiry)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("encode token: %w", err)
	}
	return signed, nil
}

// Issue encodes a token that expires one TTL from now.
func (c *TokenCodec) Issue(subject string, role domain.Role) (string, error) {
	return c.Encode(subject, role, c.now().Add(c.ttl))
}

// Decode verifies the signature before looking at the payload, then rejects
// tokens whose expiry is at or before the current time.
func (c *TokenCodec) Decode(token string) (*domain.TokenClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, domain.ErrInvalidToken
	}

	segments := make([][]byte, len(parts))
	for i, p := range parts {
		if p == "" {
			return nil, domain.ErrInvalidToken
		}
		b, err := c.parser.DecodeSegment(p)
		if err != nil {
			return nil, domain.ErrInvalidToken
		}
		segments[i] = b
	}

	signingInput := parts[0] + "." + parts[1]
	if err := jwt.SigningMethodHS256.Verify(signingInput, segments[2], c.secret); err != nil {
		return nil, domain.ErrInvalidSignature
	}

	var header tokenHeader
	if err := json.Unmarshal(segments[0], &header); err != nil || header.Alg != jwt.SigningMethodHS256.Alg() {
		return nil, domain.ErrInvalidToken
	}

	var claims tokenClaims
	if err := json.Unmarshal(segments[1], &claims); err != nil {
		return nil, domain.ErrInvalidToken
	}

	out := &domain.TokenClaims{Subject: claims.Subject, Role: claims.Role}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Unix()
		if out.ExpiresAt <= c.now().Unix() {
			return nil, domain.ErrTokenExpired
		}
	}
	return out, nil
}
