package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/Rishisinghwindows/Destrone/internal/core/domain"
	"github.com/Rishisinghwindows/Destrone/internal/core/ports"
)

// IdentityKey is the echo context key holding the verified domain.Identity.
const IdentityKey = "identity"

// Auth resolves the Authorization header and injects the identity into the
// context. Failures are returned unchanged for the central error handler.
func Auth(resolver ports.IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := resolver.Resolve(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}
			c.Set(IdentityKey, id)
			return next(c)
		}
	}
}

// RequireRole rejects identities acting under any other role. It must run
// after Auth.
func RequireRole(role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := c.Get(IdentityKey).(domain.Identity)
			if !ok {
				return domain.ErrMissingBearer
			}
			if err := id.Require(role); err != nil {
				return err
			}
			return next(c)
		}
	}
}
