package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Rishisinghwindows/Destrone/internal/api/metrics"
	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	service ports.BookingService
}

func NewBookingHandler(service ports.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// List returns the bookings visible to the caller.
//
// @Summary      List bookings
// @Description  Owners see bookings on their drones, requesters see their own. Newest first.
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Pending, Accepted or Rejected"
// @Success      200     {array}   domain.Booking
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /bookings [get]
func (h *BookingHandler) List(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	bookings, err := h.service.List(c.Request().Context(), id, c.QueryParam("status"))
	if err != nil {
		return err
	}
	if bookings == nil {
		bookings = []*domain.Booking{}
	}
	return c.JSON(http.StatusOK, bookings)
}

// Create places a Pending booking.
//
// @Summary      Book a drone
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createBookingRequest  true  "Booking details"
// @Success      201   {object}  domain.Booking
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req createBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	b, err := h.service.Create(c.Request().Context(), id, ports.CreateBookingInput{
		DroneID:       req.DroneID,
		DurationHrs:   req.DurationHrs,
		RequesterName: req.FarmerName,
	})
	if err != nil {
		return err
	}
	metrics.BookingsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, b)
}

// Update moves a booking to a new status and syncs the drone availability.
//
// @Summary      Update booking status
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int            true  "Booking id"
// @Param        body  body      statusRequest  true  "Pending, Accepted or Rejected"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /bookings/{id} [patch]
func (h *BookingHandler) Update(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req statusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.service.Transition(c.Request().Context(), id, bookingID, req.Status); err != nil {
		return err
	}
	metrics.BookingTransitionsTotal.WithLabelValues(req.Status).Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Booking " + req.Status})
}
