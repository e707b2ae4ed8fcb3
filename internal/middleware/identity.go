package middleware

// identity.go holds helpers shared across middleware files for reading the
// principal established by the Session filter.

import "github.com/labstack/echo/v4"

// principalName returns the authenticated username, or "guest" when the
// request is anonymous.  Rate-limit and cache key strategies use this so that
// authenticated users get per-user buckets.
func principalName(c echo.Context) string {
	if v, ok := c.Get(ContextUsername).(string); ok && v != "" {
		return v
	}
	return "guest"
}
