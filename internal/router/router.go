// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/campusbook/facility-reservation/internal/config"
	"github.com/campusbook/facility-reservation/internal/handler"
	"github.com/campusbook/facility-reservation/internal/middleware"
	"github.com/campusbook/facility-reservation/internal/model"
)

// Deps bundles everything route registration needs.  The Session filter runs
// on every request before routing decisions; role checks are attached per
// group.
type Deps struct {
	Auth         *handler.AuthHandler
	Facilities   *handler.FacilityHandler
	Bookings     *handler.BookingHandler
	Availability *handler.AvailabilityHandler
	Sessions     echo.MiddlewareFunc
	Redis        *redis.Client
}

// Register wires all routes.  Public reads (facilities, availability, health)
// carry the Redis response cache; everything passes the rate limiter.
func Register(e *echo.Echo, d Deps) {
	e.Use(d.Sessions)
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis))

	e.GET("/healthz", handler.Health)

	// Session endpoints.  Register and login are anonymous by nature; logout
	// and me work off whatever token the request presents.
	authG := e.Group("/api/auth")
	authG.POST("/register", d.Auth.Register)
	authG.POST("/login", d.Auth.Login)
	authG.POST("/logout", d.Auth.Logout)
	authG.GET("/me", d.Auth.Me)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis)

	// Facility browsing is public; mutation is ADMIN-only.
	e.GET("/api/facilities", d.Facilities.List, cache)
	e.GET("/api/facilities/:id", d.Facilities.Get, cache)
	adminFacilities := e.Group("/api/facilities", middleware.RequireRole(model.RoleAdmin))
	adminFacilities.POST("", d.Facilities.Create)
	adminFacilities.PUT("/:id", d.Facilities.Update)
	adminFacilities.DELETE("/:id", d.Facilities.Delete)

	// Availability is a public read surface.
	e.GET("/api/availability", d.Availability.Check, cache)
	e.GET("/api/availability/slots", d.Availability.Slots, cache)

	// Booking operations require an authenticated principal; listing all
	// bookings is for staff, hard deletion for admins.
	bookings := e.Group("/api/bookings", middleware.RequireAuthenticated())
	bookings.GET("", d.Bookings.ListAll, middleware.RequireRole(model.RoleAdmin, model.RoleStaff))
	bookings.GET("/my", d.Bookings.ListMine)
	bookings.GET("/:id", d.Bookings.Get)
	bookings.POST("", d.Bookings.Create)
	bookings.PUT("/:id", d.Bookings.Update)
	bookings.DELETE("/:id", d.Bookings.Cancel)
	bookings.DELETE("/:id/permanent", d.Bookings.Delete, middleware.RequireRole(model.RoleAdmin))
}
