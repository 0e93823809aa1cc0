// Package selftest runs the diagnostics behind the --selftest flag.
package selftest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
	"github.com/Rishisinghwindows/Destrone/internal/core/service"
	"github.com/Rishisinghwindows/Destrone/internal/geo"
	"github.com/Rishisinghwindows/Destrone/internal/infrastructure/db/sqlstore"
)

// Result is printed as JSON by the server binary.
type Result struct {
	Selftest string `json:"selftest"`
}

// Run checks token signing, the distance helper and one booking round trip
// on a throwaway in-memory database.
func Run(ctx context.Context, secret string, log zerolog.Logger) (Result, error) {
	if err := checkToken(secret); err != nil {
		return Result{}, fmt.Errorf("selftest: token: %w", err)
	}
	if d := geo.HaversineKm(0, 0, 0, 0); math.Abs(d) > 1e-9 {
		return Result{}, fmt.Errorf("selftest: haversine(0,0,0,0) = %v", d)
	}
	if err := checkBookingRound(ctx, log); err != nil {
		return Result{}, fmt.Errorf("selftest: booking round: %w", err)
	}
	return Result{Selftest: "ok"}, nil
}

func checkToken(secret string) error {
	codec := service.NewTokenCodec(secret, time.Minute, nil)
	token, err := codec.Issue("selftest", domain.RoleOwner)
	if err != nil {
		return err
	}
	claims, err := codec.Decode(token)
	if err != nil {
		return err
	}
	if claims.Subject != "selftest" || claims.Role != string(domain.RoleOwner) {
		return fmt.Errorf("round trip mismatch: %+v", claims)
	}
	return nil
}

func checkBookingRound(ctx context.Context, log zerolog.Logger) error {
	db, err := sqlstore.Open(ctx, sqlstore.SQLite, "file:selftest?mode=memory&cache=shared", log)
	if err != nil {
		return err
	}
	defer db.Close()

	profiles := sqlstore.ProfileStores(db)
	drones := sqlstore.NewDroneRepository(db)
	bookingSvc := service.NewBookingService(sqlstore.NewBookingRepository(db), drones, profiles, nil, log)

	owner, err := profiles.Owners.Create(ctx, &domain.Profile{Name: "Selftest Owner", Mobile: "0000000001"})
	if err != nil {
		return err
	}
	if _, err := profiles.Requesters.Create(ctx, &domain.Profile{Name: "Selftest Requester", Mobile: "0000000002"}); err != nil {
		return err
	}
	drone, err := drones.Create(ctx, &domain.Drone{Name: "selftest", Type: "Sprayer", OwnerID: owner.ID})
	if err != nil {
		return err
	}

	booking, err := bookingSvc.Create(ctx,
		domain.Identity{Mobile: "0000000002", Role: domain.RoleRequester},
		ports.CreateBookingInput{DroneID: drone.ID, DurationHrs: 1},
	)
	if err != nil {
		return err
	}
	ownerID := domain.Identity{Mobile: owner.Mobile, Role: domain.RoleOwner}
	if err := bookingSvc.Transition(ctx, ownerID, booking.ID, string(domain.BookingAccepted)); err != nil {
		return err
	}

	got, err := drones.FindByID(ctx, drone.ID)
	if err != nil {
		return err
	}
	if got.Status != domain.DroneBooked {
		return errors.New("drone availability not synced with accepted booking")
	}
	return nil
}
