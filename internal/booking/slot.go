package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Slot is a fixed 30-minute appointment interval, identified by its hour and
// half-hour marker. Label is the human-readable form stored on bookings
// (e.g. "9:30 AM").
type Slot struct {
	ID    string
	Label string
}

// NewSlot builds the slot for the given 24h hour and minute (0 or 30).
func NewSlot(hour, minute int) Slot {
	return Slot{
		ID:    fmt.Sprintf("slot_%d_%02d", hour, minute),
		Label: SlotLabel(hour, minute),
	}
}

// SlotLabel formats an (hour, minute) pair as a 12-hour clock label.
func SlotLabel(hour, minute int) string {
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, minute, ampm)
}

// ParseSlotID extracts the (hour, minute) pair from a selection id of the
// form "slot_<hour>_<minute>".
func ParseSlotID(id string) (hour, minute int, ok bool) {
	rest, found := strings.CutPrefix(id, "slot_")
	if !found {
		return 0, 0, false
	}
	parts := strings.Split(rest, "_")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || (minute != 0 && minute != 30) {
		return 0, 0, false
	}
	return hour, minute, true
}

// ParseSlotLabel converts a stored appointment label ("2:30 PM") back to its
// (hour, minute) pair. Unparseable labels report ok=false and are treated as
// occupying no slot.
func ParseSlotLabel(label string) (hour, minute int, ok bool) {
	t, err := time.Parse("3:04 PM", label)
	if err != nil {
		return 0, 0, false
	}
	return t.Hour(), t.Minute(), true
}
