package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusbook/facility-reservation/internal/booking"
	"github.com/campusbook/facility-reservation/internal/middleware"
	"github.com/campusbook/facility-reservation/internal/repository"
)

// BookingHandler exposes the booking engine over HTTP.  All routes assume
// the Session filter ran; role checks are applied per route in the router.
type BookingHandler struct {
	Engine *booking.Engine
}

func NewBookingHandler(engine *booking.Engine) *BookingHandler {
	return &BookingHandler{Engine: engine}
}

// ListAll returns every booking, all statuses, most recent first
// (ADMIN/STAFF history view).
func (h *BookingHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bookings, err := h.Engine.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, bookings)
}

// ListMine returns the authenticated requester's booking history.
func (h *BookingHandler) ListMine(c echo.Context) error {
	username, ok := c.Get(middleware.ContextUsername).(string)
	if !ok || username == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bookings, err := h.Engine.ListByRequester(ctx, username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, bookings)
}

// Get returns one booking by id.
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Engine.Get(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Create books a facility window.  Overlaps with an existing CONFIRMED
// booking answer 409 with the conflicting interval.
func (h *BookingHandler) Create(c echo.Context) error {
	var req booking.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RequesterID == "" {
		// Default the requester to the authenticated principal.
		if username, ok := c.Get(middleware.ContextUsername).(string); ok {
			req.RequesterID = username
		}
	}
	if req.RequesterID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "requesterId required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Engine.Create(ctx, req)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Update revalidates and rewrites a booking; the conflict scan excludes the
// booking itself.  A status field in the body is an admin override.
func (h *BookingHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req booking.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Engine.Update(ctx, id, req)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Cancel soft-deletes a booking; the row survives with status CANCELLED.
// Cancelling twice is still a 204.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Engine.Cancel(ctx, id); err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete permanently removes a booking row (ADMIN).
func (h *BookingHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Engine.Delete(ctx, id); err != nil {
		return bookingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// bookingError maps engine and repository errors onto HTTP responses.
// Validation problems are 400, unknown ids 404, overlaps 409.
func bookingError(c echo.Context, err error) error {
	var conflict *booking.ConflictError
	switch {
	case errors.Is(err, booking.ErrInvalidRange),
		errors.Is(err, booking.ErrOutOfHours),
		errors.Is(err, booking.ErrInvalidDate),
		errors.Is(err, booking.ErrInvalidStatus):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrFacilityNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.As(err, &conflict):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":         "the requested time slot conflicts with an existing booking for this facility",
			"conflictStart": conflict.Start,
			"conflictEnd":   conflict.End,
		})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
