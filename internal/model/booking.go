package model

import "time"

type Booking struct {
	ID                    string        `db:"id" json:"id"`
	BookingReference      string        `db:"booking_reference" json:"bookingReference"`
	CustomerID            string        `db:"customer_id" json:"customerId"`
	ServiceID             string        `db:"service_id" json:"serviceId"`
	Status                BookingStatus `db:"status" json:"status"`
	PaymentStatus         PaymentStatus `db:"payment_status" json:"paymentStatus"`
	AppointmentDate       time.Time     `db:"appointment_date" json:"appointmentDate"`
	AppointmentTime       string        `db:"appointment_time" json:"appointmentTime"`
	LoyaltyPointsAwarded  bool          `db:"loyalty_points_awarded" json:"loyaltyPointsAwarded"`
	ConfirmationMessageID *string       `db:"confirmation_message_id" json:"confirmationMessageId,omitempty"`
	CreatedAt             time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time     `db:"updated_at" json:"updatedAt"`
}

type CreateBookingParams struct {
	BookingReference string
	CustomerID       string
	ServiceID        string
	AppointmentDate  time.Time
	AppointmentTime  string
}

// AwardedBooking is a paid, points-awarded booking joined with its service,
// used for the loyalty points history reply.
type AwardedBooking struct {
	AppointmentDate      time.Time `db:"appointment_date"`
	ServiceTitle         string    `db:"service_title"`
	ServiceLoyaltyPoints int       `db:"service_loyalty_points"`
}
