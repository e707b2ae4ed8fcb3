package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/campusbook/facility-reservation/internal/model"
	"github.com/campusbook/facility-reservation/internal/repository"
)

// fakeFacilityStore serves a fixed set of facilities.
type fakeFacilityStore struct {
	facilities map[uint64]*model.Facility
}

func (f *fakeFacilityStore) GetByID(_ context.Context, id uint64) (*model.Facility, error) {
	if fac, ok := f.facilities[id]; ok {
		return fac, nil
	}
	return nil, repository.ErrFacilityNotFound
}

// memBookingStore is an in-memory BookingStore with the same overlap and
// status semantics as the MySQL repository.
type memBookingStore struct {
	mu       sync.Mutex
	nextID   uint64
	bookings map[uint64]*model.Booking
}

func newMemBookingStore() *memBookingStore {
	return &memBookingStore{nextID: 1, bookings: make(map[uint64]*model.Booking)}
}

func (s *memBookingStore) Create(_ context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.nextID
	s.nextID++
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *memBookingStore) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.bookings[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, repository.ErrBookingNotFound
}

func (s *memBookingStore) Update(_ context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ID]; !ok {
		return repository.ErrBookingNotFound
	}
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *memBookingStore) SetStatus(_ context.Context, id uint64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.Status = status
	return nil
}

func (s *memBookingStore) Delete(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return repository.ErrBookingNotFound
	}
	delete(s.bookings, id)
	return nil
}

func (s *memBookingStore) ListAll(_ context.Context) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Booking{}
	for _, b := range s.bookings {
		out = append(out, *b)
	}
	return out, nil
}

func (s *memBookingStore) ListByRequester(_ context.Context, requesterID string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Booking{}
	for _, b := range s.bookings {
		if b.RequesterID == requesterID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *memBookingStore) ListConfirmedForDate(_ context.Context, facilityID uint64, date string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Booking{}
	for _, b := range s.bookings {
		if b.FacilityID == facilityID && b.Date == date && b.Status == model.StatusConfirmed {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *memBookingStore) FindOverlapping(ctx context.Context, facilityID uint64, date string, start, end model.TimeOfDay) ([]model.Booking, error) {
	return s.FindOverlappingExcluding(ctx, facilityID, date, start, end, 0)
}

func (s *memBookingStore) FindOverlappingExcluding(_ context.Context, facilityID uint64, date string, start, end model.TimeOfDay, excludeID uint64) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Booking{}
	for _, b := range s.bookings {
		if b.ID == excludeID || b.FacilityID != facilityID || b.Date != date {
			continue
		}
		if b.Status != model.StatusConfirmed {
			continue
		}
		if model.Overlaps(start, end, b.StartTime, b.EndTime) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func testEngine() (*Engine, *memBookingStore) {
	facilities := &fakeFacilityStore{facilities: map[uint64]*model.Facility{
		1: {ID: 1, Name: "Court A", Capacity: 4},
		2: {ID: 2, Name: "Lab 3", Capacity: 20},
	}}
	store := newMemBookingStore()
	return NewEngine(facilities, store, nil), store
}

func mustTime(t *testing.T, s string) model.TimeOfDay {
	t.Helper()
	v, err := model.ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

func req(t *testing.T, facility uint64, date, start, end string) Request {
	t.Helper()
	return Request{
		FacilityID:  facility,
		RequesterID: "u-1",
		Date:        date,
		StartTime:   mustTime(t, start),
		EndTime:     mustTime(t, end),
	}
}

func TestCheckAvailability(t *testing.T) {
	e, _ := testEngine()
	ctx := context.Background()

	free, err := e.CheckAvailability(ctx, 1, "2026-09-01", mustTime(t, "10:00"), mustTime(t, "11:00"))
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if !free {
		t.Fatal("expected empty facility to be available")
	}

	if _, err := e.Create(ctx, req(t, 1, "2026-09-01", "10:00", "11:00")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	free, err = e.CheckAvailability(ctx, 1, "2026-09-01", mustTime(t, "10:30"), mustTime(t, "11:30"))
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if free {
		t.Fatal("expected overlapping window to be unavailable")
	}

	// Different facility and different date are unaffected.
	for _, c := range []struct {
		facility uint64
		date     string
	}{{2, "2026-09-01"}, {1, "2026-09-02"}} {
		free, err = e.CheckAvailability(ctx, c.facility, c.date, mustTime(t, "10:00"), mustTime(t, "11:00"))
		if err != nil {
			t.Fatalf("CheckAvailability facility=%d date=%s: %v", c.facility, c.date, err)
		}
		if !free {
			t.Errorf("facility=%d date=%s: expected available", c.facility, c.date)
		}
	}
}

func TestCheckAvailabilityRejectsInvertedRange(t *testing.T) {
	e, _ := testEngine()
	_, err := e.CheckAvailability(context.Background(), 1, "2026-09-01", mustTime(t, "10:00"), mustTime(t, "09:00"))
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestCheckAvailabilityUnknownFacility(t *testing.T) {
	e, _ := testEngine()
	_, err := e.CheckAvailability(context.Background(), 99, "2026-09-01", mustTime(t, "10:00"), mustTime(t, "11:00"))
	if !errors.Is(err, repository.ErrFacilityNotFound) {
		t.Fatalf("expected ErrFacilityNotFound, got %v", err)
	}
}

func TestCreateBackToBack(t *testing.T) {
	e, _ := testEngine()
	ctx := context.Background()

	if _, err := e.Create(ctx, req(t, 1, "2026-09-01", "09:00", "10:00")); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	// End == next start does not overlap on half-open intervals.
	b, err := e.Create(ctx, req(t, 1, "2026-09-01", "10:00", "11:00"))
	if err != nil {
		t.Fatalf("back-to-back booking: %v", err)
	}
	if b.Status != model.StatusConfirmed {
		t.Fatalf("status = %q, want %q", b.Status, model.StatusConfirmed)
	}
	if b.Reference == "" {
		t.Fatal("expected a reference code")
	}
}

func TestCreateConflict(t *testing.T) {
	e, _ := testEngine()
	ctx := context.Background()

	first, err := e.Create(ctx, req(t, 1, "2026-09-01", "10:00", "11:00"))
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err = e.Create(ctx, req(t, 1, "2026-09-01", "10:30", "11:30"))
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConflictError, got %T", err)
	}
	if ce.BookingID != first.ID || ce.Start != first.StartTime || ce.End != first.EndTime {
		t.Fatalf("conflict detail = %+v, want booking %d %s-%s", ce, first.ID, first.StartTime, first.EndTime)
	}
}

func TestCreateValidation(t *testing.T) {
	e, _ := testEngine()
	ctx := context.Background()

	cases := []struct {
		name    string
		request Request
		want    error
	}{
		{"inverted range", req(t, 1, "2026-09-01", "10:00", "09:00"), ErrInvalidRange},
		{"zero length", req(t, 1, "2026-09-01", "10:00", "10:00"), ErrInvalidRange},
		{"before opening", req(t, 1, "2026-09-01", "05:30", "07:00"), ErrOutOfHours},
		{"past closing", req(t, 1, "2026-09-01", "18:30", "19:30"), ErrOutOfHours},
		{"bad date", req(t, 1, "not-a-date", "10:00", "11:00"), ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := e.Create(ctx, tc.request); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}

	// Exactly the full operating window is legal.
	if _, err := e.Create(ctx, req(t, 1, "2026-09-01", "06:00", "19:00")); err != nil {
		t.Fatalf("full-day booking: %v", err)
	}
}

func TestUpdateSelfExclusion(t *testing.T) {
	e, _ := testEngine()
	ctx := context.Background()

	b, err := e.Create(ctx, req(t, 1, "2026-09-01", "10:00", "11:00"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Extending the same booking must not conflict with itself.
	updated, err := e.Update(ctx, b.ID, req(t, 1, "2026-09-01", "10:00", "12:00"))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.EndTime != mustTime(t, "12:00") {
		t.Fatalf("end = %s, want 12:00", updated.EndTime)
	}

	// But it must still conflict with other bookings.
	other, err := e.Create(ctx, req(t, 1, "2026-09-01", "13:00", "14:00"))
	if err != nil {
		t.Fatalf("second booking: %v", err)
	}
	if _, err := e.Update(ctx, b.ID, req(t, 1, "2026-09-01", "13:30", "15:00")); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict with booking %d, got %v", other.ID, err)
	}
}

func TestUpdateStatusOverride(t *testing.T) {
	e, _ := testEngine()
	ctx := context.Background()

	b, err := e.Create(ctx, req(t, 1, "2026-09-01", "10:00", "11:00"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	r := req(t, 1, "2026-09-01", "10:00", "11:00")
	r.Status = "completed"
	updated, err := e.Update(ctx, b.ID, r)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != model.StatusCompleted {
		t.Fatalf("status = %q, want %q", updated.Status, model.StatusCompleted)
	}

	r.Status = "BOGUS"
	if _, err := e.Update(ctx, b.ID, r); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestCancelFreesWindow(t *testing.T) {
	e, _ := testEngine()
	ctx := context.Background()

	b, err := e.Create(ctx, req(t, 1, "2026-09-01", "10:00", "11:00"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	cancelled, err := e.Cancel(ctx, b.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != model.StatusCancelled {
		t.Fatalf("status = %q, want %q", cancelled.Status, model.StatusCancelled)
	}

	// Cancelling again is a no-op success.
	if _, err := e.Cancel(ctx, b.ID); err != nil {
		t.Fatalf("repeat Cancel: %v", err)
	}

	// The window is free again and the row still exists for history.
	if _, err := e.Create(ctx, req(t, 1, "2026-09-01", "10:00", "11:00")); err != nil {
		t.Fatalf("rebooking cancelled window: %v", err)
	}
	if _, err := e.Get(ctx, b.ID); err != nil {
		t.Fatalf("cancelled booking should remain readable: %v", err)
	}
}

func TestCancelUnknownBooking(t *testing.T) {
	e, _ := testEngine()
	if _, err := e.Cancel(context.Background(), 42); !errors.Is(err, repository.ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	e, store := testEngine()
	ctx := context.Background()

	const workers = 16
	request := req(t, 1, "2026-09-01", "10:00", "11:00")
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Create(ctx, request)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != workers-1 {
		t.Fatalf("wins=%d conflicts=%d, want 1 and %d", wins, conflicts, workers-1)
	}

	confirmed, err := store.ListConfirmedForDate(ctx, 1, "2026-09-01")
	if err != nil {
		t.Fatalf("ListConfirmedForDate: %v", err)
	}
	if len(confirmed) != 1 {
		t.Fatalf("persisted %d confirmed bookings, want 1", len(confirmed))
	}
}
