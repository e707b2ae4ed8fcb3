// Package repository contains data access logic separated from HTTP handlers
// and the booking engine.  This file defines sentinel error values shared
// across repositories so that higher layers can distinguish failure
// scenarios without inspecting driver-specific errors.
package repository

import "errors"

// ErrFacilityNotFound is returned when a facility id does not exist.
var ErrFacilityNotFound = errors.New("facility not found")

// ErrBookingNotFound is returned when a booking id does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrUserNotFound is returned when a user cannot be found.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameExists is returned when registering with a taken username.
var ErrUsernameExists = errors.New("username already exists")

// ErrEmailExists is returned when registering with a taken email.
var ErrEmailExists = errors.New("email already exists")

// ErrFacilityInUse is returned when deleting a facility that still has
// bookings referencing it.  Handlers should translate this into an HTTP
// 409 response.
var ErrFacilityInUse = errors.New("facility has existing bookings")
