// Package metrics defines the business counters of the drone booking API.
// Metrics register with the default Prometheus registry at init; the router
// exposes them on /metrics next to the HTTP metrics from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "destrone"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// OTPRequestsTotal counts accepted OTP requests.
var OTPRequestsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_requests_total",
		Help:      "Total number of OTP requests acknowledged.",
	},
)

// OTPVerificationsTotal counts verification outcomes.
// Labels:
//   - role: the requested role
//   - result: "success", "invalid_otp", "blocked", "rejected" or "error"
var OTPVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_verifications_total",
		Help:      "Total number of OTP verifications, by role and result.",
	},
	[]string{"role", "result"},
)

// ── Booking metrics ───────────────────────────────────────────────────────────

// BookingsCreatedTotal counts bookings placed by requesters.
var BookingsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of bookings created.",
	},
)

// BookingTransitionsTotal counts applied booking status changes.
// Label:
//   - status: the new booking status
var BookingTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_transitions_total",
		Help:      "Total number of booking status transitions applied, by target status.",
	},
	[]string{"status"},
)

// ── Drone metrics ─────────────────────────────────────────────────────────────

// DronesRegisteredTotal counts drones registered by owners.
var DronesRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "drones_registered_total",
		Help:      "Total number of drones registered.",
	},
)
