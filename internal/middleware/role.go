package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAuthenticated rejects requests that the Session filter left
// anonymous.  It must run after Session.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := c.Get(ContextUsername).(string); !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			return next(c)
		}
	}
}

// RequireRole enforces that the authenticated principal holds one of the
// given roles.  The roles correspond to the values stored in the token's
// "role" claim.  Anonymous requests get 401, authenticated requests with the
// wrong role get 403.  It must run after Session.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := c.Get(ContextUsername).(string); !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			role, ok := c.Get(ContextRole).(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
