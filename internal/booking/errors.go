package booking

import "errors"

var (
	// ErrSlotTaken reports that the requested slot was booked by someone else
	// between presentation and commit. The caller decides the user-facing
	// messaging; no automatic retry happens here.
	ErrSlotTaken = errors.New("booking: slot already taken")

	// ErrUnknownRange reports a range id outside the fixed set.
	ErrUnknownRange = errors.New("booking: unknown time range")
)
