// Package queue defines the messages exchanged over the broker and the
// background consumer that appends confirmed bookings to logs/booking.log.
package queue

// BookingConfirmedEvent is published when a facility booking is successfully
// confirmed.  It carries enough information for downstream consumers to log,
// notify, or feed analytics without querying the primary database.
type BookingConfirmedEvent struct {
	BookingID    uint64 `json:"booking_id"`
	Reference    string `json:"reference"`
	FacilityID   uint64 `json:"facility_id"`
	FacilityName string `json:"facility_name"`
	RequesterID  string `json:"requester_id"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	ConfirmedAt  string `json:"confirmed_at"`
}
