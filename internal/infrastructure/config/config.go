package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config is built once at startup and passed by value afterwards.
type Config struct {
	Host     string `env:"HOST,      default=127.0.0.1"`
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	SeedDemo bool   `env:"SEED_DEMO, default=false"`

	Auth  AuthConfig
	OTP   OTPConfig
	Store StoreConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type AuthConfig struct {
	SecretKey          string `env:"SECRET_KEY,           default=demo_secret_key"`
	TokenExpireMinutes int    `env:"TOKEN_EXPIRE_MINUTES, default=1440"`
}

// TokenTTL is the lifetime of issued tokens.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenExpireMinutes) * time.Minute
}

type OTPConfig struct {
	Code          string        `env:"OTP_CODE,           default=1357"`
	CodeHash      string        `env:"OTP_CODE_HASH"`
	Echo          bool          `env:"OTP_ECHO,           default=true"`
	MaxAttempts   int           `env:"OTP_MAX_ATTEMPTS,   default=5"`
	AttemptWindow time.Duration `env:"OTP_ATTEMPT_WINDOW, default=15m"`
}

type StoreConfig struct {
	Driver      string `env:"STORE_DRIVER, default=sqlite"`
	Path        string `env:"DB_PATH,      default=drones_demo.sqlite"`
	DatabaseURL string `env:"DATABASE_URL"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=destrone"`
}

// RedisConfig leaves Redis disabled while Addr is empty.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return net.JoinHostPort(c.Host, c.Port) }

func (c Config) IsDevelopment() bool { return c.Env == "development" }

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (Config, error) {
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if c.Auth.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY must not be empty"))
	}
	if c.Auth.TokenExpireMinutes <= 0 {
		errs = append(errs, errors.New("TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.OTP.Code == "" && c.OTP.CodeHash == "" {
		errs = append(errs, errors.New("OTP_CODE or OTP_CODE_HASH is required"))
	}
	if c.OTP.MaxAttempts <= 0 || c.OTP.AttemptWindow <= 0 {
		errs = append(errs, errors.New("OTP_MAX_ATTEMPTS and OTP_ATTEMPT_WINDOW must be positive"))
	}
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("DB_PATH is required for sqlite"))
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres"))
		}
	case DriverMongo:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}
	return errors.Join(errs...)
}
