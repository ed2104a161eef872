package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bookmycut/booking-server-go/internal/model"
	"github.com/bookmycut/booking-server-go/internal/repository"
)

// Allocator commits bookings. It performs a fresh occupied-slot check
// immediately before insertion, and the insert itself is guarded by the
// storage-level uniqueness constraint, so two concurrent attempts for the
// same (date, slot) cannot both succeed.
type Allocator struct {
	bookings repository.BookingRepository
}

func NewAllocator(bookings repository.BookingRepository) *Allocator {
	return &Allocator{bookings: bookings}
}

// CreateBooking books the slot identified by its label for the given date.
// Returns ErrSlotTaken when the slot was claimed by a concurrent booking;
// the caller is responsible for user-facing messaging and must not retry
// automatically.
func (a *Allocator) CreateBooking(ctx context.Context, customerID, serviceID string, date time.Time, slotLabel string) (*model.Booking, error) {
	active, err := a.bookings.FindActiveByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("check slot availability: %w", err)
	}
	for _, b := range active {
		if b.AppointmentTime == slotLabel {
			return nil, ErrSlotTaken
		}
	}

	params := model.CreateBookingParams{
		BookingReference: NewReference(),
		CustomerID:       customerID,
		ServiceID:        serviceID,
		AppointmentDate:  date,
		AppointmentTime:  slotLabel,
	}

	created, err := a.bookings.InsertIfFree(ctx, params)
	if errors.Is(err, repository.ErrDuplicateReference) {
		// retry once with a fresh reference on token collision
		params.BookingReference = NewReference()
		created, err = a.bookings.InsertIfFree(ctx, params)
	}
	if errors.Is(err, repository.ErrSlotTaken) {
		return nil, ErrSlotTaken
	}
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	log.Info().
		Str("bookingReference", created.BookingReference).
		Str("customerId", created.CustomerID).
		Str("date", created.AppointmentDate.Format("2006-01-02")).
		Str("time", created.AppointmentTime).
		Msg("booking created")

	return created, nil
}
