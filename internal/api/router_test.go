package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
	"github.com/Rishisinghwindows/Destrone/internal/core/service"
	"github.com/Rishisinghwindows/Destrone/internal/infrastructure/db/sqlstore"
	"github.com/Rishisinghwindows/Destrone/internal/infrastructure/http/handlers"
	"github.com/Rishisinghwindows/Destrone/internal/infrastructure/ratelimit"
)

const testOTP = "1357"

// newTestRouter wires the full stack over a private in-memory SQLite database.
func newTestRouter(t *testing.T, limiter ports.AttemptLimiter) *echo.Echo {
	t.Helper()
	log := zerolog.Nop()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sqlstore.Open(context.Background(), sqlstore.SQLite, "file:"+name+"?mode=memory&cache=shared", log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	profiles := sqlstore.ProfileStores(db)
	drones := sqlstore.NewDroneRepository(db)
	bookings := sqlstore.NewBookingRepository(db)

	codec := service.NewTokenCodec("router-test-secret", time.Hour, nil)
	auth, err := service.NewAuthService(profiles, codec, limiter, service.OTPConfig{Code: testOTP, Echo: true}, log)
	require.NoError(t, err)

	return NewRouter(Services{
		Auth:     auth,
		Resolver: service.NewIdentityResolver(codec, profiles, log),
		Drones:   service.NewDroneService(drones, profiles, log),
		Bookings: service.NewBookingService(bookings, drones, profiles, nil, log),
		Owners:   service.NewOwnerService(profiles),
	}, Options{
		DemoOTP:   testOTP,
		Readiness: []handlers.Dependency{{Name: "sqlite", Pinger: db}},
		Log:       log,
	})
}

func call(t *testing.T, e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func login(t *testing.T, e *echo.Echo, mobile, role, name string) map[string]any {
	t.Helper()
	rec := call(t, e, http.MethodPost, "/auth/verify_otp", "", map[string]any{
		"mobile": mobile, "otp": testOTP, "role": role, "name": name,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[map[string]any](t, rec)
}

func TestRouter_BookingLifecycle(t *testing.T) {
	e := newTestRouter(t, nil)

	rec := call(t, e, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	root := decode[map[string]any](t, rec)
	require.Equal(t, "ok", root["status"])
	require.Equal(t, testOTP, root["otp_demo"])
	require.Equal(t, true, root["jwt"])

	rec = call(t, e, http.MethodPost, "/auth/request_otp", "", map[string]string{"mobile": "7000000000"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, testOTP, decode[map[string]any](t, rec)["demo_otp"])

	// Owner O1 signs up and registers a drone.
	o1 := login(t, e, "7000000000", "owner", "Ravi")
	require.Equal(t, "bearer", o1["token_type"])
	require.Equal(t, []any{"owner"}, o1["roles"])
	ownerToken := o1["access_token"].(string)

	rec = call(t, e, http.MethodPost, "/drones", ownerToken, map[string]any{
		"name": "AgriDrone X1", "type": "Sprayer", "lat": 25.59, "lon": 85.13, "price_per_hr": 750,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	drone := decode[domain.Drone](t, rec)
	require.Equal(t, domain.DroneAvailable, drone.Status)
	require.Equal(t, 750.0, drone.PricePerHr)

	// Requester signs up with the legacy role name.
	r1 := login(t, e, "7100000000", "farmer", "Sita")
	require.Equal(t, "requester", r1["role"])
	requesterToken := r1["access_token"].(string)

	rec = call(t, e, http.MethodPost, "/drones", requesterToken, map[string]any{"name": "x", "type": "y"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, e, http.MethodPost, "/bookings", requesterToken, map[string]any{"drone_id": drone.ID, "duration_hrs": 3})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	booking := decode[domain.Booking](t, rec)
	require.Equal(t, domain.BookingPending, booking.Status)
	require.Equal(t, "Sita", booking.RequesterName)

	rec = call(t, e, http.MethodGet, "/bookings", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]domain.Booking](t, rec), 1)

	path := "/bookings/" + jsonID(booking.ID)
	dronePath := "/drones/" + jsonID(drone.ID)

	rec = call(t, e, http.MethodPatch, path, ownerToken, map[string]string{"status": "Accepted"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "Booking Accepted", decode[map[string]string](t, rec)["message"])
	require.Equal(t, domain.DroneBooked, decode[domain.Drone](t, call(t, e, http.MethodGet, dronePath, "", nil)).Status)

	rec = call(t, e, http.MethodPatch, path, ownerToken, map[string]string{"status": "Rejected"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, domain.DroneAvailable, decode[domain.Drone](t, call(t, e, http.MethodGet, dronePath, "", nil)).Status)

	// Another owner may not decide on O1's drone.
	o2 := login(t, e, "7000000001", "owner", "Arjun")["access_token"].(string)
	rec = call(t, e, http.MethodPatch, path, o2, map[string]string{"status": "Accepted"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, e, http.MethodPatch, path, ownerToken, map[string]string{"status": "Done"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, e, http.MethodPatch, "/bookings/999", ownerToken, map[string]string{"status": "Accepted"})
	require.Equal(t, http.StatusNotFound, rec.Code)


	rec = call(t, e, http.MethodGet, "/bookings?status=Rejected", requesterToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]domain.Booking](t, rec), 1)

	rec = call(t, e, http.MethodGet, "/owners", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]domain.Profile](t, rec), 2)

	rec = call(t, e, http.MethodGet, "/owners", requesterToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_AuthFailures(t *testing.T) {
	e := newTestRouter(t, nil)

	rec := call(t, e, http.MethodGet, "/bookings", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, decode[errorResponse](t, rec).Error, "missing bearer token")

	rec = call(t, e, http.MethodGet, "/bookings", "not.a.token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, e, http.MethodPost, "/auth/verify_otp", "", map[string]string{"mobile": "7000000000", "otp": "0000", "name": "Ravi"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(t, e, http.MethodPost, "/auth/verify_otp", "", map[string]string{"mobile": "7000000000", "otp": testOTP})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode[errorResponse](t, rec).Error, "name required")

	rec = call(t, e, http.MethodPost, "/auth/verify_otp", "", map[string]string{"mobile": "7000000000", "otp": testOTP, "role": "pilot"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, e, http.MethodPost, "/auth/verify_otp", "", map[string]string{"mobile": "7000000000", "otp": "", "name": "Ravi"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, decode[errorResponse](t, rec).Error, "invalid otp")

	rec = call(t, e, http.MethodPost, "/auth/verify_otp", "", map[string]string{"mobile": "7000000000", "otp": testOTP, "role": "OWNER", "name": "Ravi"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, e, http.MethodPost, "/auth/request_otp", "", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode[errorResponse](t, rec).Error, "mobile is required")
}

func TestRouter_TooManyAttempts(t *testing.T) {
	e := newTestRouter(t, ratelimit.NewAttemptLimiter(2, time.Minute, nil))

	for i := 0; i < 2; i++ {
		rec := call(t, e, http.MethodPost, "/auth/verify_otp", "", map[string]string{"mobile": "7000000000", "otp": "0000"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := call(t, e, http.MethodPost, "/auth/verify_otp", "", map[string]string{"mobile": "7000000000", "otp": testOTP, "name": "Ravi"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Other numbers are unaffected.
	login(t, e, "7000000001", "owner", "Arjun")
}

func TestRouter_DroneQueries(t *testing.T) {
	e := newTestRouter(t, nil)
	token := login(t, e, "7000000000", "owner", "Ravi")["access_token"].(string)

	for _, d := range []map[string]any{
		{"name": "far", "type": "Sprayer", "lat": 28.61, "lon": 77.20, "price_per_hr": 300},
		{"name": "near", "type": "Sprayer", "lat": 25.60, "lon": 85.14, "price_per_hr": 900},
		{"name": "mid", "type": "Mapper", "lat": 25.70, "lon": 85.20, "price_per_hr": 500},
	} {
		rec := call(t, e, http.MethodPost, "/drones", token, d)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := call(t, e, http.MethodGet, "/drones?sort_by=price", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	drones := decode[[]domain.Drone](t, rec)
	require.Len(t, drones, 3)
	require.Equal(t, []string{"far", "mid", "near"}, []string{drones[0].Name, drones[1].Name, drones[2].Name})

	rec = call(t, e, http.MethodPost, "/drones", token, map[string]any{"name": "free", "type": "Mapper", "lat": 25.7, "lon": 85.2})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, e, http.MethodGet, "/drones?lat=25.59&lon=85.13&max_dist_km=50&sort_by=distance", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	drones = decode[[]domain.Drone](t, rec)
	require.Len(t, drones, 2)
	require.Equal(t, "near", drones[0].Name)

	rec = call(t, e, http.MethodGet, "/drones?min_price=abc", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, e, http.MethodGet, "/drones/42", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, decode[errorResponse](t, rec).Error, "drone not found")

	rec = call(t, e, http.MethodPatch, "/drones/"+jsonID(drones[0].ID)+"/availability", token, map[string]string{"status": "Maintenance"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, map[string]string{"message": "Availability updated", "status": "Maintenance"}, decode[map[string]string](t, rec))
}

func TestRouter_Operations(t *testing.T) {
	e := newTestRouter(t, nil)

	rec := call(t, e, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, e, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "sqlite")

	call(t, e, http.MethodGet, "/drones", "", nil)
	rec = call(t, e, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "destrone_bookings_created_total")
	require.Contains(t, rec.Body.String(), "destrone_http_requests_total")

	rec = call(t, e, http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Destrone API")

	rec = call(t, e, http.MethodGet, "/", "", nil)
	require.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
