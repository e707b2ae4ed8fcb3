package model

import "time"

// Facility is a bookable shared space on campus: a room, a lab, a hall or a
// sports court.  Facilities are managed by administrators and referenced by
// bookings; a facility that has bookings cannot be deleted (enforced by a
// RESTRICT foreign key).
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name, unique.
//  Location  – building / floor description.
//  Capacity  – maximum number of occupants.
//  Type      – category such as ROOM, LAB, HALL, COURT.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Facility struct {
	ID        uint64    `json:"id"`        // facilities.id
	Name      string    `json:"name"`      // facilities.name
	Location  string    `json:"location"`  // facilities.location
	Capacity  uint32    `json:"capacity"`  // facilities.capacity
	Type      string    `json:"type"`      // facilities.type
	CreatedAt time.Time `json:"createdAt"` // facilities.created_at
	UpdatedAt time.Time `json:"updatedAt"` // facilities.updated_at
}
