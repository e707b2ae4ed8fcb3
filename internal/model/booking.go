package model

import "time"

// Booking statuses.  CONFIRMED is the only status that participates in
// conflict detection; cancelled and completed bookings never block a window.
// There is no pending state: a booking is confirmed the moment it is created.
const (
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

// ValidStatus reports whether s is one of the recognised booking statuses.
// Comparison is expected on the upper-cased form.
func ValidStatus(s string) bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Booking reserves a facility for a half-open [StartTime,EndTime) window on a
// single calendar date.  Cancelling is a soft delete: the row is kept with
// status CANCELLED so requester history survives; only an explicit hard
// delete removes it.
//
// Fields:
//  ID          – primary key identifier.
//  Reference   – opaque UUID handed to clients for correlation.
//  FacilityID  – facility being reserved.
//  RequesterID – free-form requester identity (student / staff id).
//  Date        – calendar date in "YYYY-MM-DD" form.
//  StartTime   – inclusive start of the window.
//  EndTime     – exclusive end of the window.
//  Status      – CONFIRMED, CANCELLED or COMPLETED.
//  Notes       – optional free-text purpose.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Booking struct {
	ID          uint64    `json:"id"`          // bookings.id
	Reference   string    `json:"reference"`   // bookings.reference
	FacilityID  uint64    `json:"facilityId"`  // bookings.facility_id
	RequesterID string    `json:"requesterId"` // bookings.requester_id
	Date        string    `json:"date"`        // bookings.booking_date
	StartTime   TimeOfDay `json:"startTime"`   // bookings.start_time
	EndTime     TimeOfDay `json:"endTime"`     // bookings.end_time
	Status      string    `json:"status"`      // bookings.status
	Notes       string    `json:"notes"`       // bookings.notes
	CreatedAt   time.Time `json:"createdAt"`   // bookings.created_at
	UpdatedAt   time.Time `json:"updatedAt"`   // bookings.updated_at
}

// Slot is one fixed-width cell of a facility's daily availability grid.
// Booked is true when any CONFIRMED booking overlaps the slot window.
type Slot struct {
	Start  TimeOfDay `json:"start"`
	End    TimeOfDay `json:"end"`
	Booked bool      `json:"booked"`
}
