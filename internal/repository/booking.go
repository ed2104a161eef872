package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/bookmycut/booking-server-go/internal/database"
	"github.com/bookmycut/booking-server-go/internal/model"
)

const (
	pqUniqueViolation  = "23505"
	slotConstraintName = "bookings_slot_key"
	refConstraintName  = "bookings_booking_reference_key"
)

type BookingRepository interface {
	// FindActiveByDate returns all non-cancelled bookings whose appointment
	// falls on the given calendar date.
	FindActiveByDate(ctx context.Context, date time.Time) ([]model.Booking, error)
	// InsertIfFree inserts a booking, relying on the partial unique index on
	// (appointment_date, appointment_time) among non-cancelled rows. A
	// conflicting concurrent insert surfaces as ErrSlotTaken.
	InsertIfFree(ctx context.Context, params model.CreateBookingParams) (*model.Booking, error)
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByReference(ctx context.Context, reference string) (*model.Booking, error)
	SetConfirmationMessageID(ctx context.Context, id, messageID string) error
	UpdateStatus(ctx context.Context, id string, status model.BookingStatus, paymentStatus model.PaymentStatus) error
	MarkLoyaltyPointsAwarded(ctx context.Context, id string) error
	// FindRecentAwarded returns the customer's most recent paid,
	// points-awarded bookings joined with their service.
	FindRecentAwarded(ctx context.Context, customerID string, limit int) ([]model.AwardedBooking, error)
	ListByCustomer(ctx context.Context, customerID string) ([]model.Booking, error)
	List(ctx context.Context, date *time.Time) ([]model.Booking, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) BookingRepository
}

type bookingRepo struct {
	db database.DBTX
}

func NewBookingRepository(db *sqlx.DB) BookingRepository {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) WithTx(tx *sqlx.Tx) BookingRepository {
	return &bookingRepo{db: tx}
}

func (r *bookingRepo) FindActiveByDate(ctx context.Context, date time.Time) ([]model.Booking, error) {
	bookings := []model.Booking{}
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT * FROM bookings
		WHERE appointment_date = $1
		AND status <> 'CANCELLED'
	`, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepo) InsertIfFree(ctx context.Context, params model.CreateBookingParams) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, `
		INSERT INTO bookings (booking_reference, customer_id, service_id, appointment_date, appointment_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, params.BookingReference, params.CustomerID, params.ServiceID,
		params.AppointmentDate.Format("2006-01-02"), params.AppointmentTime)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			switch pqErr.Constraint {
			case slotConstraintName:
				return nil, ErrSlotTaken
			case refConstraintName:
				return nil, ErrDuplicateReference
			}
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, `
		SELECT * FROM bookings WHERE id = $1
	`, id)
	return HandleNotFound(&booking, err)
}

func (r *bookingRepo) FindByReference(ctx context.Context, reference string) (*model.Booking, error) {
	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, `
		SELECT * FROM bookings WHERE booking_reference = $1
	`, reference)
	return HandleNotFound(&booking, err)
}

func (r *bookingRepo) SetConfirmationMessageID(ctx context.Context, id, messageID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE bookings SET
			confirmation_message_id = $2,
			updated_at = NOW()
		WHERE id = $1
	`, id, messageID)
	return err
}

func (r *bookingRepo) UpdateStatus(ctx context.Context, id string, status model.BookingStatus, paymentStatus model.PaymentStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE bookings SET
			status = $2,
			payment_status = $3,
			updated_at = NOW()
		WHERE id = $1
	`, id, status, paymentStatus)
	return err
}

func (r *bookingRepo) MarkLoyaltyPointsAwarded(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE bookings SET
			loyalty_points_awarded = TRUE,
			updated_at = NOW()
		WHERE id = $1
	`, id)
	return err
}

func (r *bookingRepo) FindRecentAwarded(ctx context.Context, customerID string, limit int) ([]model.AwardedBooking, error) {
	bookings := []model.AwardedBooking{}
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT b.appointment_date,
			s.title AS service_title,
			s.loyalty_points AS service_loyalty_points
		FROM bookings b
		JOIN services s ON s.id = b.service_id
		WHERE b.customer_id = $1
		AND b.payment_status = 'PAID'
		AND b.loyalty_points_awarded = TRUE
		ORDER BY b.created_at DESC
		LIMIT $2
	`, customerID, limit)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepo) ListByCustomer(ctx context.Context, customerID string) ([]model.Booking, error) {
	bookings := []model.Booking{}
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT * FROM bookings
		WHERE customer_id = $1
		ORDER BY appointment_date DESC, created_at DESC
	`, customerID)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepo) List(ctx context.Context, date *time.Time) ([]model.Booking, error) {
	bookings := []model.Booking{}
	if date != nil {
		err := r.db.SelectContext(ctx, &bookings, `
			SELECT * FROM bookings
			WHERE appointment_date = $1
			ORDER BY appointment_time
		`, date.Format("2006-01-02"))
		if err != nil {
			return nil, err
		}
		return bookings, nil
	}
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT * FROM bookings
		ORDER BY appointment_date DESC, appointment_time
	`)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}
