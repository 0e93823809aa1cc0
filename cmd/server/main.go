// Command server runs the Destrone drone rental API.
//
//	@title						Destrone API
//	@version					1.0
//	@description				Drone rental marketplace: OTP login, drone catalogue and owner-approved bookings.
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/Rishisinghwindows/Destrone/internal/api"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
	"github.com/Rishisinghwindows/Destrone/internal/core/service"
	"github.com/Rishisinghwindows/Destrone/internal/infrastructure/config"
	"github.com/Rishisinghwindows/Destrone/internal/infrastructure/db/mongo"
	"github.com/Rishisinghwindows/Destrone/internal/infrastructure/db/redis"
	"github.com/Rishisinghwindows/Destrone/internal/infrastructure/db/sqlstore"
	"github.com/Rishisinghwindows/Destrone/internal/infrastructure/http/handlers"
	"github.com/Rishisinghwindows/Destrone/internal/infrastructure/ratelimit"
	"github.com/Rishisinghwindows/Destrone/internal/infrastructure/seed"
	"github.com/Rishisinghwindows/Destrone/internal/selftest"
	"github.com/Rishisinghwindows/Destrone/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

type flags struct {
	host     string
	port     string
	selftest bool
	seed     bool
}

func main() {
	var f flags
	pflag.StringVar(&f.host, "host", "", "listen host (overrides HOST)")
	pflag.StringVar(&f.port, "port", "", "listen port (overrides PORT)")
	pflag.BoolVar(&f.selftest, "selftest", false, "run diagnostics, print the result as JSON and exit")
	pflag.BoolVar(&f.seed, "seed", false, "seed demo data on startup (same as SEED_DEMO=true)")
	pflag.Parse()

	if err := run(f); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(f flags) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if f.host != "" {
		cfg.Host = f.host
	}
	if f.port != "" {
		cfg.Port = f.port
	}
	if f.seed {
		cfg.SeedDemo = true
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "destrone",
	})

	if f.selftest {
		res, err := selftest.Run(ctx, cfg.Auth.SecretKey, zerolog.Nop())
		if err != nil {
			return err
		}
		return json.NewEncoder(os.Stdout).Encode(res)
	}

	// --- Stores ---
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	if cfg.SeedDemo {
		seeded, err := seed.Demo(ctx, st.Stores, log)
		if err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		log.Info().Bool("seeded", seeded).Msg("demo data checked")
	}

	// --- Attempt limiter ---
	var limiter ports.AttemptLimiter = ratelimit.NewAttemptLimiter(cfg.OTP.MaxAttempts, cfg.OTP.AttemptWindow, nil)
	if cfg.Redis.Enabled() {
		rc, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rc.Close()
		limiter = redis.NewAttemptLimiter(rc, cfg.OTP.MaxAttempts, cfg.OTP.AttemptWindow)
		st.readiness = append(st.readiness, handlers.Dependency{Name: "redis", Pinger: rc})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("otp attempts tracked in redis")
	}

	// --- Services ---
	codec := service.NewTokenCodec(cfg.Auth.SecretKey, cfg.Auth.TokenTTL(), nil)
	auth, err := service.NewAuthService(st.Profiles, codec, limiter, service.OTPConfig{
		Code:     cfg.OTP.Code,
		CodeHash: cfg.OTP.CodeHash,
		Echo:     cfg.OTP.Echo,
	}, log)
	if err != nil {
		return err
	}

	var demoOTP string
	if cfg.OTP.Echo {
		demoOTP = cfg.OTP.Code
	}

	e := api.NewRouter(api.Services{
		Auth:     auth,
		Resolver: service.NewIdentityResolver(codec, st.Profiles, log),
		Drones:   service.NewDroneService(st.Drones, st.Profiles, log),
		Bookings: service.NewBookingService(st.Bookings, st.Drones, st.Profiles, nil, log),
		Owners:   service.NewOwnerService(st.Profiles),
	}, api.Options{
		DemoOTP:   demoOTP,
		Readiness: st.readiness,
		Log:       log,
	})

	// --- Serve ---
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("store", cfg.Store.Driver).Msg("server listening")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// stores bundles the repositories of the selected driver with its probes
// and cleanup.
type stores struct {
	seed.Stores
	readiness []handlers.Dependency
	close     func()
}

func openStores(ctx context.Context, cfg config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		ms, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := ms.EnsureIndexes(ctx); err != nil {
			_ = ms.Close(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")
		return &stores{
			Stores: seed.Stores{
				Profiles: ms.ProfileStores(),
				Drones:   ms.Drones(),
				Bookings: ms.Bookings(),
			},
			readiness: []handlers.Dependency{{Name: "mongo", Pinger: ms}},
			close: func() {
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := ms.Close(ctx); err != nil {
					log.Warn().Err(err).Msg("close mongo")
				}
			},
		}, nil

	default:
		dialect, dsn := sqlstore.SQLite, cfg.Store.Path
		if cfg.Store.Driver == config.DriverPostgres {
			dialect, dsn = sqlstore.Postgres, cfg.Store.DatabaseURL
		}
		db, err := sqlstore.Open(ctx, dialect, dsn, log)
		if err != nil {
			return nil, err
		}
		log.Info().Str("dialect", dialect).Msg("database ready")
		return &stores{
			Stores: seed.Stores{
				Profiles: sqlstore.ProfileStores(db),
				Drones:   sqlstore.NewDroneRepository(db),
				Bookings: sqlstore.NewBookingRepository(db),
			},
			readiness: []handlers.Dependency{{Name: dialect, Pinger: db}},
			close: func() {
				if err := db.Close(); err != nil {
					log.Warn().Err(err).Msg("close database")
				}
			},
		}, nil
	}
}
