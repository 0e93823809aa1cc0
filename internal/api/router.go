package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/Rishisinghwindows/Destrone/docs"
	"github.com/Rishisinghwindows/Destrone/internal/api/handler"
	"github.com/Rishisinghwindows/Destrone/internal/api/middleware"
	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
	"github.com/Rishisinghwindows/Destrone/internal/infrastructure/http/handlers"
)

// Services are the use cases the router exposes.
type Services struct {
	Auth     ports.AuthService
	Resolver ports.IdentityResolver
	Drones   ports.DroneService
	Bookings ports.BookingService
	Owners   ports.OwnerService
}

// Options tune the router without touching the use cases.
type Options struct {
	// DemoOTP is advertised on GET / when non-empty.
	DemoOTP string
	// Readiness lists the dependencies pinged by /health/ready.
	Readiness []handlers.Dependency
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(opts.Log)

	// HTTP metrics go to a per-router registry; /metrics serves it together
	// with the default one holding the business counters.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(opts.Log))
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:                 "destrone",
		Subsystem:                 "http",
		Registerer:                reg,
		DoNotUseRequestPathFor404: true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	droneHandler := handler.NewDroneHandler(svc.Drones)
	bookingHandler := handler.NewBookingHandler(svc.Bookings)
	ownerHandler := handler.NewOwnerHandler(svc.Owners)
	rootHandler := handler.NewRootHandler(opts.DemoOTP)

	authenticated := middleware.Auth(svc.Resolver)
	ownerOnly := []echo.MiddlewareFunc{authenticated, middleware.RequireRole(domain.RoleOwner)}
	requesterOnly := []echo.MiddlewareFunc{authenticated, middleware.RequireRole(domain.RoleRequester)}

	e.GET("/", rootHandler.Root)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/request_otp", authHandler.RequestOTP)
	auth.POST("/verify_otp", authHandler.VerifyOTP)

	// --- Drone routes ---
	e.GET("/drones", droneHandler.List)
	e.GET("/drones/:id", droneHandler.Get)
	e.POST("/drones", droneHandler.Create, ownerOnly...)
	e.PATCH("/drones/:id/availability", droneHandler.UpdateAvailability, ownerOnly...)

	// --- Booking routes ---
	e.GET("/bookings", bookingHandler.List, authenticated)
	e.POST("/bookings", bookingHandler.Create, requesterOnly...)
	e.PATCH("/bookings/:id", bookingHandler.Update, ownerOnly...)

	e.GET("/owners", ownerHandler.List, ownerOnly...)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(opts.Readiness...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, reg},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
