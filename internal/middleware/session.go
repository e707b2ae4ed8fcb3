package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campusbook/facility-reservation/internal/auth"
	"github.com/campusbook/facility-reservation/internal/model"
)

// SessionCookieName is the cookie the frontend stores the session token in.
// The Authorization header is the fallback for non-browser clients.
const SessionCookieName = "next-auth.session-token"

// Context keys set by the Session filter on successful authentication.
const (
	ContextUsername    = "username"
	ContextRole        = "role"
	ContextUserID      = "user_id"
	ContextAuthorities = "authorities"
)

// UserStore is the narrow user lookup the session filter needs to confirm
// that a token's subject still maps to a live account.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// Session returns the per-request authentication gate.  It resolves a
// candidate token from the session cookie first, then from a Bearer
// Authorization header.  A token that passes blacklist, signature, expiry and
// subject checks establishes the request's principal in the context.
//
// Failure handling is asymmetric on purpose: an invalid cookie token gets the
// cookie cleared and a 401 with an expiry signal so the browser drops the
// dead session, while an invalid header token degrades the request to
// anonymous and leaves the decision to downstream access-control middleware.
// A request with no token at all is simply anonymous.
func Session(tokens *auth.Service, users UserStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, fromCookie := resolveToken(c)
			if token == "" || !tokenLooksValid(token) {
				return next(c)
			}

			if establishPrincipal(c, tokens, users, token) {
				return next(c)
			}
			if fromCookie {
				clearSessionCookie(c)
				c.Response().Header().Set("X-Token-Expired", "true")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired"})
			}
			// Header-sourced tokens fail open into an anonymous request.
			return next(c)
		}
	}
}

// resolveToken returns the candidate token and whether it came from the
// session cookie.
func resolveToken(c echo.Context) (token string, fromCookie bool) {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	authHeader := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer "), false
	}
	return "", false
}

// tokenLooksValid is a cheap structural check before full validation: a
// compact JWS has exactly three dot-separated segments.
func tokenLooksValid(token string) bool {
	return len(strings.Split(strings.TrimSpace(token), ".")) == 3
}

// establishPrincipal runs full validation and, on success, stores the
// authenticated principal in the request context.  This happens before any
// downstream authorization decision.
func establishPrincipal(c echo.Context, tokens *auth.Service, users UserStore, token string) bool {
	ctx := c.Request().Context()

	username := tokens.Username(token)
	if username == "" {
		return false
	}
	u, err := users.GetByUsername(ctx, username)
	if err != nil || !u.IsActive {
		return false
	}
	if !tokens.IsValid(ctx, token, u.Username) {
		return false
	}

	authorities := tokens.Authorities(token)
	if len(authorities) == 0 {
		// Tokens without a role claim fall back to the stored role.
		authorities = []string{"ROLE_" + u.Role}
	}
	c.Set(ContextUsername, u.Username)
	c.Set(ContextRole, tokens.Role(token))
	c.Set(ContextUserID, u.ID)
	c.Set(ContextAuthorities, authorities)
	return true
}

// clearSessionCookie expires the session cookie with the same attributes it
// was set with, so browsers actually drop it.
func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // serialized as Max-Age=0
		HttpOnly: true,
		Secure:   true,
	})
}
