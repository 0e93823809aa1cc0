package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
)

func TestHTTPErrorHandler_Mapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"invalid otp", domain.ErrInvalidOTP, http.StatusUnauthorized, "unauthorized: invalid otp"},
		{"missing bearer", domain.ErrMissingBearer, http.StatusUnauthorized, "unauthorized: missing bearer token"},
		{"not owner", domain.ErrNotDroneOwner, http.StatusForbidden, "forbidden: drone belongs to another owner"},
		{"drone missing", domain.ErrDroneNotFound, http.StatusNotFound, "drone not found"},
		{"wrapped booking missing", fmt.Errorf("transition: %w", domain.ErrBookingNotFound), http.StatusNotFound, "transition: booking not found"},
		{"bad status", domain.ErrInvalidStatus, http.StatusBadRequest, "bad request: status must be Pending/Accepted/Rejected"},
		{"blocked", domain.ErrTooManyAttempts, http.StatusTooManyRequests, "too many otp attempts"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"), http.StatusMethodNotAllowed, "method not allowed"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, "internal server error"},
	}

	h := NewHTTPErrorHandler(zerolog.Nop())
	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			h(tc.err, c)

			if rec.Code != tc.wantCode {
				t.Fatalf("status = %d; want %d", rec.Code, tc.wantCode)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != tc.wantMsg {
				t.Errorf("error = %q; want %q", body.Error, tc.wantMsg)
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrDroneNotFound, c)

	if rec.Code != http.StatusOK || rec.Body.String() != "done" {
		t.Fatalf("committed response was overwritten: %d %q", rec.Code, rec.Body.String())
	}
}
