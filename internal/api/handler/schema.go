package handler

import "github.com/Rishisinghwindows/Destrone/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type requestOTPRequest struct {
	Mobile string `json:"mobile" validate:"required"`
}

type requestOTPResponse struct {
	Mobile  string `json:"mobile"`
	OTPSent bool   `json:"otp_sent"`
	DemoOTP string `json:"demo_otp,omitempty"`
}

type verifyOTPRequest struct {
	Mobile string   `json:"mobile" validate:"required"`
	OTP    string   `json:"otp"`
	Role   string   `json:"role"`
	Name   string   `json:"name"`
	Lat    *float64 `json:"lat"`
	Lon    *float64 `json:"lon"`
}

type verifyOTPResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	Role        domain.Role   `json:"role"`
	Roles       []domain.Role `json:"roles"`
	ProfileName string        `json:"profile_name"`
}

// --- Drones ---

type createDroneRequest struct {
	Name           string   `json:"name"            validate:"required"`
	Type           string   `json:"type"            validate:"required"`
	Lat            float64  `json:"lat"             validate:"gte=-90,lte=90"`
	Lon            float64  `json:"lon"             validate:"gte=-180,lte=180"`
	PricePerHr     float64  `json:"price_per_hr"    validate:"gt=0"`
	ImageURL       string   `json:"image_url"       validate:"omitempty,url"`
	BatteryMah     *float64 `json:"battery_mah"     validate:"omitempty,gt=0"`
	CapacityLiters *float64 `json:"capacity_liters" validate:"omitempty,gt=0"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type availabilityResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// --- Bookings ---

type createBookingRequest struct {
	DroneID     int64  `json:"drone_id"     validate:"required"`
	FarmerName  string `json:"farmer_name"`
	DurationHrs int    `json:"duration_hrs"`
}

// --- Root ---

type rootResponse struct {
	Status  string `json:"status"`
	OTPDemo string `json:"otp_demo,omitempty"`
	JWT     bool   `json:"jwt"`
}
