package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/bookmycut/booking-server-go/internal/repository"
)

// Calculator computes which 30-minute slots are still open for a date. It is
// read-only and advisory: it reflects a point-in-time snapshot of the booking
// set, and the Allocator is the sole enforcement point for uniqueness.
type Calculator struct {
	bookings repository.BookingRepository
	clock    Clock
}

func NewCalculator(bookings repository.BookingRepository, clock Clock) *Calculator {
	return &Calculator{bookings: bookings, clock: clock}
}

// AvailableSlots returns the open slots for the date within the named range,
// in chronological order. Already-booked slots are excluded; when the date is
// today, slots whose start time is not strictly in the future are excluded as
// well. An empty result means no availability, not an error.
func (c *Calculator) AvailableSlots(ctx context.Context, date time.Time, rangeID string) ([]Slot, error) {
	rng, ok := RangeByID(rangeID)
	if !ok {
		return nil, ErrUnknownRange
	}

	occupied, err := c.occupiedSlots(ctx, date)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	isToday := SameDay(date, now)

	slots := []Slot{}
	for h := rng.StartHour; h < rng.EndHour; h++ {
		for _, m := range []int{0, 30} {
			if occupied[slotKey{h, m}] {
				continue
			}
			if isToday {
				start := time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, Location)
				if !start.After(now) {
					continue
				}
			}
			slots = append(slots, NewSlot(h, m))
		}
	}

	return slots, nil
}

type slotKey struct {
	hour   int
	minute int
}

func (c *Calculator) occupiedSlots(ctx context.Context, date time.Time) (map[slotKey]bool, error) {
	active, err := c.bookings.FindActiveByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("find bookings for date: %w", err)
	}

	occupied := make(map[slotKey]bool, len(active))
	for _, b := range active {
		if h, m, ok := ParseSlotLabel(b.AppointmentTime); ok {
			occupied[slotKey{h, m}] = true
		}
	}
	return occupied, nil
}
