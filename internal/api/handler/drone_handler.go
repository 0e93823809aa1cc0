package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Rishisinghwindows/Destrone/internal/api/metrics"
	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
)

// DroneHandler handles HTTP requests for the drone catalogue.
type DroneHandler struct {
	service ports.DroneService
}

func NewDroneHandler(service ports.DroneService) *DroneHandler {
	return &DroneHandler{service: service}
}

// List returns drones matching the optional filters.
//
// @Summary      List drones
// @Tags         drones
// @Produce      json
// @Param        lat          query     number  false  "Origin latitude"
// @Param        lon          query     number  false  "Origin longitude"
// @Param        max_dist_km  query     number  false  "Radius around the origin"
// @Param        min_price    query     number  false  "Minimum price per hour"
// @Param        max_price    query     number  false  "Maximum price per hour"
// @Param        sort_by      query     string  false  "price or distance"
// @Success      200          {array}   domain.Drone
// @Failure      400          {object}  errorResponse
// @Router       /drones [get]
func (h *DroneHandler) List(c echo.Context) error {
	var (
		f   ports.DroneFilter
		err error
	)
	for _, q := range []struct {
		name string
		dst  **float64
	}{
		{"lat", &f.Lat},
		{"lon", &f.Lon},
		{"max_dist_km", &f.MaxDistKm},
		{"min_price", &f.MinPrice},
		{"max_price", &f.MaxPrice},
	} {
		if *q.dst, err = queryFloat(c, q.name); err != nil {
			return err
		}
	}
	f.SortBy = c.QueryParam("sort_by")

	drones, err := h.service.List(c.Request().Context(), f)
	if err != nil {
		return err
	}
	if drones == nil {
		drones = []*domain.Drone{}
	}
	return c.JSON(http.StatusOK, drones)
}

// Get returns one drone.
//
// @Summary      Get a drone
// @Tags         drones
// @Produce      json
// @Param        id   path      int  true  "Drone id"
// @Success      200  {object}  domain.Drone
// @Failure      404  {object}  errorResponse
// @Router       /drones/{id} [get]
func (h *DroneHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Create registers a drone for the calling owner.
//
// @Summary      Register a drone
// @Tags         drones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createDroneRequest  true  "Drone details"
// @Success      201   {object}  domain.Drone
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /drones [post]
func (h *DroneHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	var req createDroneRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	d, err := h.service.Create(c.Request().Context(), id, ports.CreateDroneInput{
		Name:           req.Name,
		Type:           req.Type,
		Lat:            req.Lat,
		Lon:            req.Lon,
		PricePerHr:     req.PricePerHr,
		ImageURL:       req.ImageURL,
		BatteryMah:     req.BatteryMah,
		CapacityLiters: req.CapacityLiters,
	})
	if err != nil {
		return err
	}
	metrics.DronesRegisteredTotal.Inc()
	return c.JSON(http.StatusCreated, d)
}

// UpdateAvailability sets the status of a drone the caller owns.
//
// @Summary      Update drone availability
// @Tags         drones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int            true  "Drone id"
// @Param        body  body      statusRequest  true  "New status"
// @Success      200   {object}  availabilityResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /drones/{id}/availability [patch]
func (h *DroneHandler) UpdateAvailability(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	droneID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req statusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.service.UpdateAvailability(c.Request().Context(), id, droneID, req.Status); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, availabilityResponse{Message: "Availability updated", Status: req.Status})
}
