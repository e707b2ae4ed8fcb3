package booking

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campusbook/facility-reservation/internal/model"
)

// FacilityStore is the narrow facility contract the engine needs: existence
// and metadata lookup.  Unknown ids fail with repository.ErrFacilityNotFound.
type FacilityStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Facility, error)
}

// BookingStore persists bookings and answers conflict queries.  Unknown ids
// fail with repository.ErrBookingNotFound.  The MySQL implementation lives in
// internal/repository; tests substitute in-memory fakes.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	Update(ctx context.Context, b *model.Booking) error
	SetStatus(ctx context.Context, id uint64, status string) error
	Delete(ctx context.Context, id uint64) error
	ListAll(ctx context.Context) ([]model.Booking, error)
	ListByRequester(ctx context.Context, requesterID string) ([]model.Booking, error)
	ListConfirmedForDate(ctx context.Context, facilityID uint64, date string) ([]model.Booking, error)
	FindOverlapping(ctx context.Context, facilityID uint64, date string, start, end model.TimeOfDay) ([]model.Booking, error)
	FindOverlappingExcluding(ctx context.Context, facilityID uint64, date string, start, end model.TimeOfDay, excludeID uint64) ([]model.Booking, error)
}

// Notifier receives a callback after a booking is successfully confirmed.
// Implementations must not block the request path for long; failures are the
// implementation's problem and never fail the booking.
type Notifier interface {
	BookingConfirmed(ctx context.Context, b *model.Booking, f *model.Facility)
}

// Request carries the client-supplied fields for create and update.  Status
// is only honoured on update, as an administrative override.
type Request struct {
	FacilityID  uint64          `json:"facilityId"`
	RequesterID string          `json:"requesterId"`
	Date        string          `json:"date"`
	StartTime   model.TimeOfDay `json:"startTime"`
	EndTime     model.TimeOfDay `json:"endTime"`
	Notes       string          `json:"notes"`
	Status      string          `json:"status,omitempty"`
}

// Engine orchestrates validation, overlap detection and state transitions for
// bookings.  The conflict scan and the following insert/update run under a
// per-facility-date lock, which is what makes two concurrent creates for an
// overlapping window resolve to exactly one success.
type Engine struct {
	facilities FacilityStore
	bookings   BookingStore
	notifier   Notifier // optional
	slots      *keyedMutex
}

// NewEngine builds an engine over the given stores.  notifier may be nil.
func NewEngine(facilities FacilityStore, bookings BookingStore, notifier Notifier) *Engine {
	return &Engine{
		facilities: facilities,
		bookings:   bookings,
		notifier:   notifier,
		slots:      newKeyedMutex(),
	}
}

// CheckAvailability reports whether [start,end) on the given facility and
// date is free of CONFIRMED bookings.  Back-to-back windows do not conflict.
// Fails with ErrInvalidRange when start >= end and with
// repository.ErrFacilityNotFound for unknown facilities.
func (e *Engine) CheckAvailability(ctx context.Context, facilityID uint64, date string, start, end model.TimeOfDay) (bool, error) {
	if start >= end {
		return false, ErrInvalidRange
	}
	date, err := normalizeDate(date)
	if err != nil {
		return false, err
	}
	if _, err := e.facilities.GetByID(ctx, facilityID); err != nil {
		return false, err
	}
	conflicts, err := e.bookings.FindOverlapping(ctx, facilityID, date, start, end)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

// Create validates the request, runs the conflict scan and persists a new
// CONFIRMED booking.  The facility existence check, the scan and the insert
// are one atomic unit under the facility/date lock.
func (e *Engine) Create(ctx context.Context, req Request) (*model.Booking, error) {
	date, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	unlock := e.slots.lock(slotKey(req.FacilityID, date))
	defer unlock()

	facility, err := e.facilities.GetByID(ctx, req.FacilityID)
	if err != nil {
		return nil, err
	}
	conflicts, err := e.bookings.FindOverlapping(ctx, req.FacilityID, date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		c := conflicts[0]
		return nil, &ConflictError{BookingID: c.ID, Start: c.StartTime, End: c.EndTime}
	}

	b := &model.Booking{
		Reference:   uuid.NewString(),
		FacilityID:  req.FacilityID,
		RequesterID: req.RequesterID,
		Date:        date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      model.StatusConfirmed,
		Notes:       req.Notes,
	}
	if err := e.bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	if e.notifier != nil {
		e.notifier.BookingConfirmed(ctx, b, facility)
	}
	return b, nil
}

// Update applies the same validation as Create but excludes the booking being
// updated from the conflict scan, so an unchanged window never self-conflicts.
// A non-empty req.Status is an administrative override, normalized to upper
// case.
func (e *Engine) Update(ctx context.Context, id uint64, req Request) (*model.Booking, error) {
	date, err := validateRequest(req)
	if err != nil {
		return nil, err
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status != "" && !model.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	unlock := e.slots.lock(slotKey(req.FacilityID, date))
	defer unlock()

	b, err := e.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := e.facilities.GetByID(ctx, req.FacilityID); err != nil {
		return nil, err
	}
	conflicts, err := e.bookings.FindOverlappingExcluding(ctx, req.FacilityID, date, req.StartTime, req.EndTime, id)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		c := conflicts[0]
		return nil, &ConflictError{BookingID: c.ID, Start: c.StartTime, End: c.EndTime}
	}

	b.FacilityID = req.FacilityID
	if req.RequesterID != "" {
		b.RequesterID = req.RequesterID
	}
	b.Date = date
	b.StartTime = req.StartTime
	b.EndTime = req.EndTime
	b.Notes = req.Notes
	if status != "" {
		b.Status = status
	}
	if err := e.bookings.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Cancel soft-deletes: the booking flips to CANCELLED and its window becomes
// free, but the row is retained for history.  Cancelling an already-cancelled
// booking is a no-op success.  Unknown ids fail with
// repository.ErrBookingNotFound.
func (e *Engine) Cancel(ctx context.Context, id uint64) (*model.Booking, error) {
	if err := e.bookings.SetStatus(ctx, id, model.StatusCancelled); err != nil {
		return nil, err
	}
	return e.bookings.GetByID(ctx, id)
}

// Delete permanently removes the booking row.
func (e *Engine) Delete(ctx context.Context, id uint64) error {
	return e.bookings.Delete(ctx, id)
}

// Get returns a single booking by id.
func (e *Engine) Get(ctx context.Context, id uint64) (*model.Booking, error) {
	return e.bookings.GetByID(ctx, id)
}

// ListAll returns every booking, all statuses, most recent first.
func (e *Engine) ListAll(ctx context.Context) ([]model.Booking, error) {
	return e.bookings.ListAll(ctx)
}

// ListByRequester returns one requester's history, most recent first.
func (e *Engine) ListByRequester(ctx context.Context, requesterID string) ([]model.Booking, error) {
	return e.bookings.ListByRequester(ctx, requesterID)
}

// validateRequest checks range, operating hours and date shape, in that
// order, and returns the normalized date.
func validateRequest(req Request) (string, error) {
	if req.StartTime >= req.EndTime {
		return "", ErrInvalidRange
	}
	if req.StartTime < model.OpenTime || req.EndTime > model.CloseTime {
		return "", ErrOutOfHours
	}
	return normalizeDate(req.Date)
}

func normalizeDate(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", ErrInvalidDate
	}
	return t.Format("2006-01-02"), nil
}

func slotKey(facilityID uint64, date string) string {
	return date + "/" + strconv.FormatUint(facilityID, 10)
}
