package handler

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Rishisinghwindows/Destrone/internal/api/middleware"
	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
)

// ctxIdentity returns the identity injected by the Auth middleware. A missing
// identity means the route was mounted without it.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := c.Get(middleware.IdentityKey).(domain.Identity)
	if !ok || id.Mobile == "" {
		return domain.Identity{}, domain.ErrMissingBearer
	}
	return id, nil
}

// bindAndValidate decodes the body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrBadRequest)
	}
	if err := c.Validate(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrBadRequest, err)
	}
	return nil
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", domain.ErrBadRequest, name)
	}
	return id, nil
}

// queryFloat parses an optional float query parameter.
func queryFloat(c echo.Context, name string) (*float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a number", domain.ErrBadRequest, name)
	}
	return &v, nil
}
