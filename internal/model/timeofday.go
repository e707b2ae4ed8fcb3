package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// TimeOfDay is a clock time within a single calendar day, stored as minutes
// since midnight.  Bookings use half-open [start,end) intervals of TimeOfDay
// values, so two back-to-back intervals (one ending exactly when the next
// starts) do not overlap.
type TimeOfDay int

// Campus operating hours.  Bookings must fall entirely within
// [OpenTime, CloseTime).  These bounds are fixed and not configurable at
// runtime.
const (
	OpenTime  TimeOfDay = 6 * 60  // 06:00
	CloseTime TimeOfDay = 19 * 60 // 19:00
)

// ParseTimeOfDay parses a "HH:MM" string (seconds, if present, are ignored)
// into a TimeOfDay.  Values outside 00:00–23:59 are rejected.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	// MySQL TIME columns scan as "HH:MM:SS"; clients send "HH:MM".
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// String renders the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Add returns the time shifted forward by the given number of minutes.
func (t TimeOfDay) Add(minutes int) TimeOfDay { return t + TimeOfDay(minutes) }

// MarshalJSON encodes the time as a quoted "HH:MM" string.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON decodes a quoted "HH:MM" string.
func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid time %s: expected string", string(b))
	}
	v, err := ParseTimeOfDay(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Value implements driver.Valuer so TimeOfDay can be bound directly to a
// MySQL TIME column.
func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String() + ":00", nil
}

// Scan implements sql.Scanner for TIME columns.  The MySQL driver returns
// TIME values as []byte.
func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case time.Time:
		*t = TimeOfDay(v.Hour()*60 + v.Minute())
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

// Overlaps reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) share any instant: aStart < bEnd && bStart < aEnd.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}
