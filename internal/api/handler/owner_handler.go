package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
)

type OwnerHandler struct {
	service ports.OwnerService
}

func NewOwnerHandler(service ports.OwnerService) *OwnerHandler {
	return &OwnerHandler{service: service}
}

// List returns every owner profile.
//
// @Summary      List owners
// @Tags         owners
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Profile
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /owners [get]
func (h *OwnerHandler) List(c echo.Context) error {
	owners, err := h.service.ListOwners(c.Request().Context())
	if err != nil {
		return err
	}
	if owners == nil {
		owners = []*domain.Profile{}
	}
	return c.JSON(http.StatusOK, owners)
}

// RootHandler reports service status on GET /.
type RootHandler struct {
	demoOTP string
}

// NewRootHandler advertises demoOTP when it is non-empty.
func NewRootHandler(demoOTP string) *RootHandler {
	return &RootHandler{demoOTP: demoOTP}
}

// Root godoc
// @Summary      Service status
// @Tags         health
// @Produce      json
// @Success      200  {object}  rootResponse
// @Router       / [get]
func (h *RootHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, rootResponse{Status: "ok", OTPDemo: h.demoOTP, JWT: true})
}
