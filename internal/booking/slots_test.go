package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/campusbook/facility-reservation/internal/model"
	"github.com/campusbook/facility-reservation/internal/repository"
)

func TestSlotsGrid(t *testing.T) {
	e, _ := testEngine()
	ctx := context.Background()

	if _, err := e.Create(ctx, req(t, 1, "2026-09-01", "10:00", "11:00")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	slots, err := e.Slots(ctx, 1, "2026-09-01", 30)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	// 06:00-19:00 at 30 minutes is 26 slots.
	if len(slots) != 26 {
		t.Fatalf("len(slots) = %d, want 26", len(slots))
	}
	if slots[0].Start != model.OpenTime {
		t.Fatalf("first slot starts %s, want %s", slots[0].Start, model.OpenTime)
	}
	if last := slots[len(slots)-1]; last.End != model.CloseTime {
		t.Fatalf("last slot ends %s, want %s", last.End, model.CloseTime)
	}

	booked := map[string]bool{}
	for _, s := range slots {
		if s.Booked {
			booked[s.Start.String()] = true
		}
	}
	if len(booked) != 2 || !booked["10:00"] || !booked["10:30"] {
		t.Fatalf("booked slots = %v, want exactly 10:00 and 10:30", booked)
	}
}

func TestSlotsIgnoreCancelled(t *testing.T) {
	e, _ := testEngine()
	ctx := context.Background()

	b, err := e.Create(ctx, req(t, 1, "2026-09-01", "10:00", "11:00"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := e.Cancel(ctx, b.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	slots, err := e.Slots(ctx, 1, "2026-09-01", 30)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	for _, s := range slots {
		if s.Booked {
			t.Fatalf("slot %s-%s marked booked after cancellation", s.Start, s.End)
		}
	}
}

func TestSlotsGranularity(t *testing.T) {
	e, _ := testEngine()
	ctx := context.Background()

	// 60-minute slots over a 13-hour day.
	slots, err := e.Slots(ctx, 1, "2026-09-01", 60)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	if len(slots) != 13 {
		t.Fatalf("len(slots) = %d, want 13", len(slots))
	}

	// A width that does not divide the day evenly truncates the trailing
	// partial slot rather than spilling past closing time.
	slots, err = e.Slots(ctx, 1, "2026-09-01", 120)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	if len(slots) != 6 {
		t.Fatalf("len(slots) = %d, want 6", len(slots))
	}
	if last := slots[len(slots)-1]; last.End > model.CloseTime {
		t.Fatalf("last slot ends %s, past closing", last.End)
	}

	// Zero falls back to the default width.
	slots, err = e.Slots(ctx, 1, "2026-09-01", 0)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	if len(slots) != 26 {
		t.Fatalf("default granularity produced %d slots, want 26", len(slots))
	}
}

func TestSlotsUnknownFacility(t *testing.T) {
	e, _ := testEngine()
	if _, err := e.Slots(context.Background(), 99, "2026-09-01", 30); !errors.Is(err, repository.ErrFacilityNotFound) {
		t.Fatalf("expected ErrFacilityNotFound, got %v", err)
	}
}
