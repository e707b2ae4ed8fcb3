package repository

import (
	"context"
	"database/sql"

	"github.com/campusbook/facility-reservation/internal/model"
)

// BookingRepo provides CRUD and conflict queries for the bookings table.  It
// is the sole mutator of persisted booking state; the booking engine decides
// whether a mutation is legal before calling in here.  Dates are stored in a
// DATE column and times in TIME columns, all interpreted in the campus-local
// calendar.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingCols = `id, reference, facility_id, requester_id,
	DATE_FORMAT(booking_date, '%Y-%m-%d'), start_time, end_time, status, notes,
	created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }, b *model.Booking) error {
	var notes sql.NullString
	err := row.Scan(&b.ID, &b.Reference, &b.FacilityID, &b.RequesterID,
		&b.Date, &b.StartTime, &b.EndTime, &b.Status, &notes,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return err
	}
	b.Notes = notes.String
	return nil
}

// Create inserts a new booking and populates the generated ID and timestamp
// fields on the provided record.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings
		(reference, facility_id, requester_id, booking_date, start_time, end_time, status, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		b.Reference, b.FacilityID, b.RequesterID, b.Date, b.StartTime, b.EndTime, b.Status, b.Notes)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return scanBooking(r.db.QueryRowContext(ctx,
		"SELECT "+bookingCols+" FROM bookings WHERE id = ?", b.ID), b)
}

// GetByID fetches a single booking.  Returns ErrBookingNotFound when no row
// matches.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	var b model.Booking
	err := scanBooking(r.db.QueryRowContext(ctx,
		"SELECT "+bookingCols+" FROM bookings WHERE id = ?", id), &b)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// historyOrder sorts most recent first: date descending, then start time
// descending.
const historyOrder = " ORDER BY booking_date DESC, start_time DESC"

// ListAll returns every booking regardless of status, most recent first.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.Booking, error) {
	return r.list(ctx, "SELECT "+bookingCols+" FROM bookings"+historyOrder)
}

// ListByRequester returns a requester's full booking history, most recent
// first, all statuses included.
func (r *BookingRepo) ListByRequester(ctx context.Context, requesterID string) ([]model.Booking, error) {
	return r.list(ctx,
		"SELECT "+bookingCols+" FROM bookings WHERE requester_id = ?"+historyOrder,
		requesterID)
}

// ListConfirmedForDate returns the CONFIRMED bookings for a facility on a
// date, ordered by start time.  The slot grid generator uses this to mark an
// entire day with a single query instead of one conflict query per slot.
func (r *BookingRepo) ListConfirmedForDate(ctx context.Context, facilityID uint64, date string) ([]model.Booking, error) {
	return r.list(ctx,
		"SELECT "+bookingCols+` FROM bookings
		 WHERE facility_id = ? AND booking_date = ? AND status = 'CONFIRMED'
		 ORDER BY start_time`,
		facilityID, date)
}

// FindOverlapping returns CONFIRMED bookings for the facility and date whose
// [start,end) interval overlaps the requested one.  The half-open test means
// back-to-back bookings never match: existing.start < requested.end AND
// existing.end > requested.start.
func (r *BookingRepo) FindOverlapping(ctx context.Context, facilityID uint64, date string, start, end model.TimeOfDay) ([]model.Booking, error) {
	return r.list(ctx,
		"SELECT "+bookingCols+` FROM bookings
		 WHERE facility_id = ? AND booking_date = ? AND status = 'CONFIRMED'
		   AND start_time < ? AND end_time > ?`,
		facilityID, date, end, start)
}

// FindOverlappingExcluding is FindOverlapping minus one booking id, so an
// update never reports a booking as conflicting with itself.
func (r *BookingRepo) FindOverlappingExcluding(ctx context.Context, facilityID uint64, date string, start, end model.TimeOfDay, excludeID uint64) ([]model.Booking, error) {
	return r.list(ctx,
		"SELECT "+bookingCols+` FROM bookings
		 WHERE facility_id = ? AND booking_date = ? AND status = 'CONFIRMED'
		   AND id <> ? AND start_time < ? AND end_time > ?`,
		facilityID, date, excludeID, end, start)
}

// Update rewrites the mutable fields of a booking, including its status.
// Returns ErrBookingNotFound for unknown ids.
func (r *BookingRepo) Update(ctx context.Context, b *model.Booking) error {
	const q = `UPDATE bookings
		SET facility_id = ?, requester_id = ?, booking_date = ?,
		    start_time = ?, end_time = ?, status = ?, notes = ?
		WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q,
		b.FacilityID, b.RequesterID, b.Date, b.StartTime, b.EndTime, b.Status, b.Notes, b.ID); err != nil {
		return err
	}
	err := scanBooking(r.db.QueryRowContext(ctx,
		"SELECT "+bookingCols+" FROM bookings WHERE id = ?", b.ID), b)
	if err == sql.ErrNoRows {
		return ErrBookingNotFound
	}
	return err
}

// SetStatus updates only the status column.  Returns ErrBookingNotFound when
// the id is unknown.  Setting an unchanged status is a no-op success, which
// makes cancellation idempotent.
func (r *BookingRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bookings SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish "unknown id" from "already in this status".
		var exists int
		err := r.db.QueryRowContext(ctx,
			"SELECT 1 FROM bookings WHERE id = ?", id).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrBookingNotFound
		}
		return err
	}
	return nil
}

// Delete permanently removes a booking row.  Returns ErrBookingNotFound when
// the id is unknown.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepo) list(ctx context.Context, query string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Booking{}
	for rows.Next() {
		var b model.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
