// Package booking implements the conflict and availability engine: it is the
// sole authority deciding whether a reservation mutation is legal.  Stores
// persist state; this package owns the rules.
package booking

import (
	"errors"
	"fmt"

	"github.com/campusbook/facility-reservation/internal/model"
)

// Validation failures.  All of them are detected before any store access, so
// a rejected request never causes a partial write.
var (
	// ErrInvalidRange signals start >= end (zero-length and inverted windows).
	ErrInvalidRange = errors.New("start time must be before end time")
	// ErrOutOfHours signals a window outside the 06:00-19:00 operating hours.
	ErrOutOfHours = errors.New("booking outside operating hours")
	// ErrInvalidDate signals a date not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid booking date")
	// ErrInvalidStatus signals an unrecognised status override.
	ErrInvalidStatus = errors.New("invalid booking status")
)

// ErrConflict is the sentinel wrapped by every ConflictError, so callers can
// test with errors.Is without caring about the conflicting interval.
var ErrConflict = errors.New("booking conflict")

// ConflictError reports that a requested window overlaps an existing
// CONFIRMED booking.  It carries the conflicting interval for diagnostics.
type ConflictError struct {
	BookingID uint64
	Start     model.TimeOfDay
	End       model.TimeOfDay
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("requested slot conflicts with booking %d (%s-%s)",
		e.BookingID, e.Start, e.End)
}

// Unwrap lets errors.Is(err, ErrConflict) match.
func (e *ConflictError) Unwrap() error { return ErrConflict }
