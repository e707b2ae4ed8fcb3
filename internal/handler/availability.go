package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusbook/facility-reservation/internal/booking"
	"github.com/campusbook/facility-reservation/internal/model"
)

// AvailabilityHandler answers slot questions: is this window free, and what
// does the day's grid look like.  Both endpoints are public reads and sit
// behind the response cache.
type AvailabilityHandler struct {
	Engine *booking.Engine
}

func NewAvailabilityHandler(engine *booking.Engine) *AvailabilityHandler {
	return &AvailabilityHandler{Engine: engine}
}

// Check handles GET /api/availability?facilityId&date&startTime&endTime.
func (h *AvailabilityHandler) Check(c echo.Context) error {
	facilityID, err := strconv.ParseUint(c.QueryParam("facilityId"), 10, 64)
	if err != nil || facilityID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facilityId"})
	}
	date := c.QueryParam("date")
	start, err := model.ParseTimeOfDay(c.QueryParam("startTime"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid startTime"})
	}
	end, err := model.ParseTimeOfDay(c.QueryParam("endTime"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid endTime"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	available, err := h.Engine.CheckAvailability(ctx, facilityID, date, start, end)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"facilityId": facilityID,
		"date":       date,
		"startTime":  start,
		"endTime":    end,
		"available":  available,
	})
}

// Slots handles GET /api/availability/slots?facilityId&date[&granularity].
// It returns the fixed-granularity grid between opening and closing time
// with each slot marked booked or free.
func (h *AvailabilityHandler) Slots(c echo.Context) error {
	facilityID, err := strconv.ParseUint(c.QueryParam("facilityId"), 10, 64)
	if err != nil || facilityID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facilityId"})
	}
	date := c.QueryParam("date")

	granularity := booking.DefaultGranularityMinutes
	if g := c.QueryParam("granularity"); g != "" {
		n, err := strconv.Atoi(g)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid granularity"})
		}
		granularity = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slots, err := h.Engine.Slots(ctx, facilityID, date, granularity)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"facilityId": facilityID,
		"date":       date,
		"slots":      slots,
	})
}
