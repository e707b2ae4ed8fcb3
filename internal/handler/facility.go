package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusbook/facility-reservation/internal/model"
	"github.com/campusbook/facility-reservation/internal/repository"
)

// FacilityHandler serves facility browse and administration endpoints.
// Browse routes are public; mutations are restricted to ADMIN by middleware.
type FacilityHandler struct {
	Facilities *repository.FacilityRepo
}

func NewFacilityHandler(facilities *repository.FacilityRepo) *FacilityHandler {
	return &FacilityHandler{Facilities: facilities}
}

type facilityReq struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity uint32 `json:"capacity"`
	Type     string `json:"type"`
}

// List returns all facilities ordered by name.
func (h *FacilityHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	facilities, err := h.Facilities.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, facilities)
}

// Get returns a single facility by id.
func (h *FacilityHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facility id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.Facilities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrFacilityNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, f)
}

// Create adds a facility (ADMIN).
func (h *FacilityHandler) Create(c echo.Context) error {
	var req facilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f := &model.Facility{Name: req.Name, Location: req.Location, Capacity: req.Capacity, Type: req.Type}
	if err := h.Facilities.Create(ctx, f); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create facility failed"})
	}
	return c.JSON(http.StatusCreated, f)
}

// Update edits a facility (ADMIN).  An empty type keeps the stored category.
func (h *FacilityHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facility id"})
	}
	var req facilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f := &model.Facility{ID: id, Name: req.Name, Location: req.Location, Capacity: req.Capacity, Type: req.Type}
	if err := h.Facilities.Update(ctx, f); err != nil {
		if errors.Is(err, repository.ErrFacilityNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update facility failed"})
	}
	return c.JSON(http.StatusOK, f)
}

// Delete removes a facility (ADMIN).  Facilities that still have bookings
// answer 409; the foreign key blocks the delete.
func (h *FacilityHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid facility id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Facilities.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrFacilityNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "facility not found"})
		case errors.Is(err, repository.ErrFacilityInUse):
			return c.JSON(http.StatusConflict, echo.Map{"error": "facility has existing bookings"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete facility failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
