package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/campusbook/facility-reservation/internal/model"
)

func runGate(t *testing.T, gate echo.MiddlewareFunc, principal func(echo.Context)) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if principal != nil {
		principal(c)
	}
	h := gate(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	if err := h(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return rec
}

func asUser(username, role string) func(echo.Context) {
	return func(c echo.Context) {
		c.Set(ContextUsername, username)
		c.Set(ContextRole, role)
	}
}

func TestRequireAuthenticated(t *testing.T) {
	if rec := runGate(t, RequireAuthenticated(), nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: code = %d, want 401", rec.Code)
	}
	if rec := runGate(t, RequireAuthenticated(), asUser("alice", model.RoleUser)); rec.Code != http.StatusOK {
		t.Fatalf("authenticated: code = %d, want 200", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	gate := RequireRole(model.RoleAdmin, model.RoleStaff)

	if rec := runGate(t, gate, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: code = %d, want 401", rec.Code)
	}
	if rec := runGate(t, gate, asUser("bob", model.RoleUser)); rec.Code != http.StatusForbidden {
		t.Fatalf("USER: code = %d, want 403", rec.Code)
	}
	if rec := runGate(t, gate, asUser("alice", model.RoleAdmin)); rec.Code != http.StatusOK {
		t.Fatalf("ADMIN: code = %d, want 200", rec.Code)
	}
	if rec := runGate(t, gate, asUser("carol", model.RoleStaff)); rec.Code != http.StatusOK {
		t.Fatalf("STAFF: code = %d, want 200", rec.Code)
	}
}
