package repository

import "errors"

var (
	// ErrSlotTaken is returned when a booking insert loses the race for a
	// (date, time) slot: the partial unique index on non-cancelled bookings
	// rejected the row. Callers treat this as a recoverable conflict.
	ErrSlotTaken = errors.New("repository: slot already booked")

	// ErrDuplicateReference is returned when a generated booking reference
	// collides with an existing one.
	ErrDuplicateReference = errors.New("repository: duplicate booking reference")
)
