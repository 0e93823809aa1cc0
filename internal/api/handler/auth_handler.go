package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Rishisinghwindows/Destrone/internal/api/metrics"
	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RequestOTP acknowledges an OTP request for a mobile number.
//
// @Summary      Request an OTP
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      requestOTPRequest  true  "Mobile number"
// @Success      200   {object}  requestOTPResponse
// @Failure      400   {object}  errorResponse
// @Router       /auth/request_otp [post]
func (h *AuthHandler) RequestOTP(c echo.Context) error {
	var req requestOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.RequestOTP(c.Request().Context(), req.Mobile)
	if err != nil {
		return err
	}
	metrics.OTPRequestsTotal.Inc()

	return c.JSON(http.StatusOK, requestOTPResponse{
		Mobile:  res.Mobile,
		OTPSent: res.OTPSent,
		DemoOTP: res.DemoOTP,
	})
}

// VerifyOTP checks the code and returns a token for the requested role.
//
// @Summary      Verify an OTP
// @Description  Provisions the profile for the role on first login (name required).
// @Description  "farmer" is accepted as an alias of "requester".
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyOTPRequest  true  "Code, role and optional profile data"
// @Success      200   {object}  verifyOTPResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/verify_otp [post]
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	roleInput := req.Role
	if roleInput == "" {
		roleInput = string(domain.RoleOwner)
	}
	role, ok := domain.NormalizeRole(roleInput)
	if !ok {
		metrics.OTPVerificationsTotal.WithLabelValues("unknown", "rejected").Inc()
		return fmt.Errorf("%w: role must be owner or requester", domain.ErrBadRequest)
	}

	res, err := h.authService.VerifyOTP(c.Request().Context(), ports.VerifyOTPInput{
		Mobile: req.Mobile,
		Code:   req.OTP,
		Role:   role,
		Name:   req.Name,
		Lat:    req.Lat,
		Lon:    req.Lon,
	})
	if err != nil {
		metrics.OTPVerificationsTotal.WithLabelValues(string(role), verificationResult(err)).Inc()
		return err
	}
	metrics.OTPVerificationsTotal.WithLabelValues(string(role), "success").Inc()

	return c.JSON(http.StatusOK, verifyOTPResponse{
		AccessToken: res.Token,
		TokenType:   res.TokenType,
		Role:        res.Role,
		Roles:       res.Roles,
		ProfileName: res.ProfileName,
	})
}

func verificationResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidOTP):
		return "invalid_otp"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "blocked"
	case errors.Is(err, domain.ErrBadRequest):
		return "rejected"
	}
	return "error"
}
