package model

// BookingStatus is the lifecycle state of a booking. Bookings are never
// deleted, only cancelled.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid
}

// Step is the dialogue position of an in-progress booking conversation.
type Step string

const (
	StepInitial            Step = "initial"
	StepSelectingService   Step = "selecting_service"
	StepSelectingDate      Step = "selecting_date"
	StepSelectingTimeRange Step = "selecting_time_range"
	StepSelectingTime      Step = "selecting_time"
)
