package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
)

const testOTP = "1357"

type authFixture struct {
	svc        *AuthService
	codec      *TokenCodec
	owners     *stubProfileStore
	requesters *stubProfileStore
	limiter    *stubLimiter
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	clock := newFakeClock()
	codec := newTestCodec(clock)
	stores, owners, requesters := newStores()
	limiter := newStubLimiter()
	svc, err := NewAuthService(stores, codec, limiter, OTPConfig{Code: testOTP, Echo: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return &authFixture{svc: svc, codec: codec, owners: owners, requesters: requesters, limiter: limiter}
}

func ptr(f float64) *float64 { return &f }

func TestAuthService_RequestOTP(t *testing.T) {
	f := newAuthFixture(t)

	res, err := f.svc.RequestOTP(context.Background(), "7000000000")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !res.OTPSent || res.Mobile != "7000000000" || res.DemoOTP != testOTP {
		t.Fatalf("unexpected result: %+v", res)
	}

	if _, err := f.svc.RequestOTP(context.Background(), ""); !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest for empty mobile, got %v", err)
	}
}

func TestAuthService_RequestOTP_NoEcho(t *testing.T) {
	stores, _, _ := newStores()
	svc, err := NewAuthService(stores, newTestCodec(newFakeClock()), nil, OTPConfig{Code: testOTP}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	res, _ := svc.RequestOTP(context.Background(), "7000000000")
	if res.DemoOTP != "" {
		t.Fatalf("expected no demo otp, got %q", res.DemoOTP)
	}
}

func TestAuthService_VerifyOTP_WrongCode(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.VerifyOTP(context.Background(), ports.VerifyOTPInput{
		Mobile: "7000000000", Code: "0000", Role: domain.RoleOwner, Name: "Test Owner",
	})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if f.owners.created != 0 {
		t.Fatalf("no profile may be created on a wrong code")
	}
	if f.limiter.failures["7000000000"] != 1 {
		t.Fatalf("expected failed attempt recorded, got %v", f.limiter.failures)
	}
}

func TestAuthService_VerifyOTP_Blocked(t *testing.T) {
	f := newAuthFixture(t)
	f.limiter.blocked = true

	_, err := f.svc.VerifyOTP(context.Background(), ports.VerifyOTPInput{
		Mobile: "7000000000", Code: testOTP, Role: domain.RoleOwner, Name: "Test Owner",
	})
	if !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthService_VerifyOTP_LimiterFaultDoesNotBlock(t *testing.T) {
	f := newAuthFixture(t)
	f.limiter.checkErr = errStoreDown

	if _, err := f.svc.VerifyOTP(context.Background(), ports.VerifyOTPInput{
		Mobile: "7000000000", Code: testOTP, Role: domain.RoleOwner, Name: "Test Owner",
	}); err != nil {
		t.Fatalf("expected login despite limiter fault, got %v", err)
	}
}

func TestAuthService_VerifyOTP_FirstTimeRequiresName(t *testing.T) {
	f := newAuthFixture(t)
	in := ports.VerifyOTPInput{Mobile: "7000000000", Code: testOTP, Role: domain.RoleOwner}

	if _, err := f.svc.VerifyOTP(context.Background(), in); !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest without name, got %v", err)
	}

	in.Name = "Test Owner"
	res, err := f.svc.VerifyOTP(context.Background(), in)
	if err != nil {
		t.Fatalf("expected success with name, got %v", err)
	}
	if res.ProfileName != "Test Owner" || len(res.Roles) != 1 || res.Roles[0] != domain.RoleOwner {
		t.Fatalf("unexpected result: %+v", res)
	}

	// Second verification without a name does not re-provision.
	in.Name = ""
	res, err = f.svc.VerifyOTP(context.Background(), in)
	if err != nil {
		t.Fatalf("expected success on second verification, got %v", err)
	}
	if f.owners.created != 1 {
		t.Fatalf("expected exactly one provisioning, got %d", f.owners.created)
	}
	if res.ProfileName != "Test Owner" {
		t.Fatalf("expected stored name, got %q", res.ProfileName)
	}
}

func TestAuthService_VerifyOTP_TokenForRequestedRole(t *testing.T) {
	f := newAuthFixture(t)

	res, err := f.svc.VerifyOTP(context.Background(), ports.VerifyOTPInput{
		Mobile: "7000000000", Code: testOTP, Role: domain.RoleOwner, Name: "Test Owner",
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.TokenType != "bearer" || res.Role != domain.RoleOwner {
		t.Fatalf("unexpected result: %+v", res)
	}

	claims, err := f.codec.Decode(res.Token)
	if err != nil {
		t.Fatalf("decode issued token: %v", err)
	}
	if claims.Subject != "7000000000" || claims.Role != "owner" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_VerifyOTP_DualRole(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	const mobile = "7200000000"

	if _, err := f.svc.VerifyOTP(ctx, ports.VerifyOTPInput{Mobile: mobile, Code: testOTP, Role: domain.RoleOwner, Name: "A"}); err != nil {
		t.Fatalf("owner provisioning: %v", err)
	}
	if _, err := f.svc.VerifyOTP(ctx, ports.VerifyOTPInput{Mobile: mobile, Code: testOTP, Role: domain.RoleRequester, Name: "B"}); err != nil {
		t.Fatalf("requester provisioning: %v", err)
	}

	for role, wantName := range map[domain.Role]string{domain.RoleOwner: "A", domain.RoleRequester: "B"} {
		res, err := f.svc.VerifyOTP(ctx, ports.VerifyOTPInput{Mobile: mobile, Code: testOTP, Role: role})
		if err != nil {
			t.Fatalf("verify as %s: %v", role, err)
		}
		if len(res.Roles) != 2 || res.Roles[0] != domain.RoleOwner || res.Roles[1] != domain.RoleRequester {
			t.Fatalf("verify as %s: expected [owner requester], got %v", role, res.Roles)
		}
		if res.ProfileName != wantName {
			t.Fatalf("verify as %s: expected name %q, got %q", role, wantName, res.ProfileName)
		}
		if res.Role != role {
			t.Fatalf("acting role must be the requested one, got %s", res.Role)
		}
		claims, _ := f.codec.Decode(res.Token)
		if claims.Role != string(role) {
			t.Fatalf("token role must be %s, got %s", role, claims.Role)
		}
	}
}

func TestAuthService_VerifyOTP_Coordinates(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	const mobile = "7000000000"

	if _, err := f.svc.VerifyOTP(ctx, ports.VerifyOTPInput{
		Mobile: mobile, Code: testOTP, Role: domain.RoleOwner, Name: "Test Owner", Lat: ptr(25.61), Lon: ptr(85.14),
	}); err != nil {
		t.Fatalf("provision: %v", err)
	}

	// Only one coordinate: ignored.
	if _, err := f.svc.VerifyOTP(ctx, ports.VerifyOTPInput{Mobile: mobile, Code: testOTP, Role: domain.RoleOwner, Lat: ptr(1)}); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if f.owners.relocated != 0 {
		t.Fatalf("expected no location update with a single coordinate")
	}

	// Both coordinates: updated in place, name untouched.
	if _, err := f.svc.VerifyOTP(ctx, ports.VerifyOTPInput{
		Mobile: mobile, Code: testOTP, Role: domain.RoleOwner, Name: "Renamed", Lat: ptr(26), Lon: ptr(86),
	}); err != nil {
		t.Fatalf("verify: %v", err)
	}
	p, _ := f.owners.FindByMobile(ctx, mobile)
	if p.Lat == nil || *p.Lat != 26 || p.Lon == nil || *p.Lon != 86 {
		t.Fatalf("expected updated coordinates, got %+v", p)
	}
	if p.Name != "Test Owner" {
		t.Fatalf("name must not change, got %q", p.Name)
	}
}

func TestAuthService_VerifyOTP_ResetsLimiterOnSuccess(t *testing.T) {
	f := newAuthFixture(t)
	f.limiter.failures["7000000000"] = 3

	if _, err := f.svc.VerifyOTP(context.Background(), ports.VerifyOTPInput{
		Mobile: "7000000000", Code: testOTP, Role: domain.RoleOwner, Name: "Test Owner",
	}); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if _, ok := f.limiter.failures["7000000000"]; ok || f.limiter.resets != 1 {
		t.Fatalf("expected attempts reset, got %v", f.limiter.failures)
	}
}

func TestAuthService_VerifyOTP_UnknownRole(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.VerifyOTP(context.Background(), ports.VerifyOTPInput{
		Mobile: "7000000000", Code: testOTP, Role: domain.Role("admin"), Name: "X",
	})
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestAuthService_VerifyOTP_StoreFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.requesters.findErr = errStoreDown

	_, err := f.svc.VerifyOTP(context.Background(), ports.VerifyOTPInput{
		Mobile: "7000000000", Code: testOTP, Role: domain.RoleOwner, Name: "Test Owner",
	})
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestNewAuthService_WithHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("2468"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	stores, _, _ := newStores()
	svc, err := NewAuthService(stores, newTestCodec(newFakeClock()), nil, OTPConfig{Code: "1357", CodeHash: string(hash)}, zerolog.Nop())
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}

	in := ports.VerifyOTPInput{Mobile: "7000000000", Code: "1357", Role: domain.RoleOwner, Name: "Test Owner"}
	if _, err := svc.VerifyOTP(context.Background(), in); !errors.Is(err, domain.ErrInvalidOTP) {
		t.Fatalf("plain code must be ignored when a hash is configured, got %v", err)
	}
	in.Code = "2468"
	if _, err := svc.VerifyOTP(context.Background(), in); err != nil {
		t.Fatalf("expected hashed code to verify, got %v", err)
	}
}

func TestNewAuthService_InvalidConfig(t *testing.T) {
	stores, _, _ := newStores()
	codec := newTestCodec(newFakeClock())

	if _, err := NewAuthService(stores, codec, nil, OTPConfig{}, zerolog.Nop()); err == nil {
		t.Fatal("expected error without otp code")
	}
	if _, err := NewAuthService(stores, codec, nil, OTPConfig{CodeHash: "not-bcrypt"}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}
