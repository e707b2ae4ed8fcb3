package booking

import (
	"context"

	"github.com/campusbook/facility-reservation/internal/model"
)

// DefaultGranularityMinutes is the slot width used when a caller does not ask
// for a specific one.
const DefaultGranularityMinutes = 30

// Slots derives the availability grid for a facility on a date: consecutive
// non-overlapping windows of the given width starting at opening time, with
// the last slot ending no later than closing time.  A slot is booked when any
// CONFIRMED booking overlaps it.  The day's confirmed bookings are fetched
// once up front rather than running one conflict query per slot.
func (e *Engine) Slots(ctx context.Context, facilityID uint64, date string, granularityMinutes int) ([]model.Slot, error) {
	if granularityMinutes <= 0 {
		granularityMinutes = DefaultGranularityMinutes
	}
	date, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}
	if _, err := e.facilities.GetByID(ctx, facilityID); err != nil {
		return nil, err
	}
	confirmed, err := e.bookings.ListConfirmedForDate(ctx, facilityID, date)
	if err != nil {
		return nil, err
	}

	grid := []model.Slot{}
	for cursor := model.OpenTime; cursor < model.CloseTime; cursor = cursor.Add(granularityMinutes) {
		end := cursor.Add(granularityMinutes)
		if end > model.CloseTime {
			break
		}
		booked := false
		for _, b := range confirmed {
			if model.Overlaps(cursor, end, b.StartTime, b.EndTime) {
				booked = true
				break
			}
		}
		grid = append(grid, model.Slot{Start: cursor, End: end, Booked: booked})
	}
	return grid, nil
}
