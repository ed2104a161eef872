package booking

import (
	"strings"
	"time"
)

// SlotDurationMinutes is the fixed appointment length.
const SlotDurationMinutes = 30

// TimeRange is one coarse time-of-day bucket offered before individual slot
// selection. Hours are half-open: [StartHour, EndHour).
type TimeRange struct {
	ID        string
	Label     string
	StartHour int
	EndHour   int
}

// Ranges is the fixed set of bookable time-of-day buckets, in display order.
var Ranges = []TimeRange{
	{ID: "morning", Label: "Morning (9 AM - 12 PM)", StartHour: 9, EndHour: 12},
	{ID: "afternoon", Label: "Afternoon (12 PM - 4 PM)", StartHour: 12, EndHour: 16},
	{ID: "evening", Label: "Evening (4 PM - 9 PM)", StartHour: 16, EndHour: 21},
}

// RangeByID looks up a range by its bare id ("morning") or its prefixed
// selection id ("range_morning").
func RangeByID(id string) (TimeRange, bool) {
	id = strings.TrimPrefix(id, "range_")
	for _, r := range Ranges {
		if r.ID == id {
			return r, true
		}
	}
	return TimeRange{}, false
}

// SelectionID returns the option id rendered into the channel list.
func (r TimeRange) SelectionID() string {
	return "range_" + r.ID
}

// endOn returns the instant the range closes on the given calendar date.
func (r TimeRange) endOn(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), r.EndHour, 0, 0, 0, Location)
}

// OpenRanges returns the ranges still worth offering for the given date.
// For today, ranges that have fully elapsed are dropped; for future dates all
// ranges qualify.
func OpenRanges(date, now time.Time) []TimeRange {
	if !SameDay(date, now) {
		return Ranges
	}
	open := []TimeRange{}
	for _, r := range Ranges {
		if now.Before(r.endOn(date)) {
			open = append(open, r)
		}
	}
	return open
}

// SameDay reports whether two instants fall on the same calendar date in
// salon local time.
func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.In(Location).Date()
	y2, m2, d2 := b.In(Location).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
