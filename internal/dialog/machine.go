package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/bookmycut/booking-server-go/internal/booking"
	"github.com/bookmycut/booking-server-go/internal/model"
	"github.com/bookmycut/booking-server-go/internal/repository"
	"github.com/bookmycut/booking-server-go/internal/session"
)

// Machine drives the booking conversation. Each inbound event is handled
// independently: the machine reconstructs context from the session store,
// interprets the event against the current step, and emits at most one
// prompt. Selections that do not match the current step are ignored, which
// makes duplicate and out-of-order webhook deliveries harmless.
type Machine struct {
	customers repository.CustomerRepository
	services  repository.ServiceRepository
	bookings  repository.BookingRepository
	sessions  *session.Store
	calc      *booking.Calculator
	alloc     *booking.Allocator
	clock     booking.Clock
}

func NewMachine(
	customers repository.CustomerRepository,
	services repository.ServiceRepository,
	bookings repository.BookingRepository,
	sessions *session.Store,
	calc *booking.Calculator,
	alloc *booking.Allocator,
	clock booking.Clock,
) *Machine {
	return &Machine{
		customers: customers,
		services:  services,
		bookings:  bookings,
		sessions:  sessions,
		calc:      calc,
		alloc:     alloc,
		clock:     clock,
	}
}

// HandleEvent processes one normalized inbound event. Collaborator failures
// are returned to the caller; ignored events return nil.
func (m *Machine) HandleEvent(ctx context.Context, ev model.Event, sender Sender) error {
	name := ev.DisplayName
	if name == "" {
		name = "there"
	}

	customer, err := m.customers.Upsert(ctx, ev.From, name)
	if err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}

	switch ev.Kind {
	case model.EventKindText:
		return m.handleText(ctx, ev, name, sender)
	case model.EventKindSelection:
		return m.handleSelection(ctx, ev, customer, sender)
	}
	return nil
}

// handleText starts or restarts the conversation on a greeting; any other
// text is ignored.
func (m *Machine) handleText(ctx context.Context, ev model.Event, name string, sender Sender) error {
	if !greetings[strings.ToLower(strings.TrimSpace(ev.Text))] {
		return nil
	}

	if _, err := m.sessions.Create(ctx, ev.From, name); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	_, err := sender.SendButtons(ctx, ev.From, welcomeMessage(name), welcomeButtons(), ev.MessageID)
	if err != nil {
		return fmt.Errorf("send welcome: %w", err)
	}
	return nil
}

func (m *Machine) handleSelection(ctx context.Context, ev model.Event, customer *model.Customer, sender Sender) error {
	switch ev.SelectionID {
	case actionChooseService:
		return m.startServiceSelection(ctx, ev, sender)
	case actionMyReservations:
		_, err := sender.SendText(ctx, ev.From, msgReservations, ev.MessageID)
		return err
	case actionLoyaltyPoints:
		return m.sendLoyaltyPoints(ctx, ev, sender)
	}

	// Step-bound selections need a live session; a raw selection with no
	// session is a no-op.
	sess, err := m.sessions.Find(ctx, ev.From)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}
	if sess == nil {
		return nil
	}

	switch {
	case sess.Step == model.StepSelectingService:
		return m.selectService(ctx, ev, sess, sender)
	case sess.Step == model.StepSelectingDate && strings.HasPrefix(ev.SelectionID, "date_"):
		return m.selectDate(ctx, ev, sess, sender)
	case sess.Step == model.StepSelectingTimeRange && strings.HasPrefix(ev.SelectionID, "range_"):
		return m.selectTimeRange(ctx, ev, sess, sender)
	case sess.Step == model.StepSelectingTime && strings.HasPrefix(ev.SelectionID, "slot_"):
		return m.selectSlot(ctx, ev, sess, customer, sender)
	}

	log.Debug().
		Str("phoneNumber", ev.From).
		Str("selectionId", ev.SelectionID).
		Str("step", string(sess.Step)).
		Msg("selection does not match current step, ignoring")
	return nil
}

// startServiceSelection renders the categorized catalog. It works from any
// step and creates the session when none exists.
func (m *Machine) startServiceSelection(ctx context.Context, ev model.Event, sender Sender) error {
	sess, err := m.sessions.Find(ctx, ev.From)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}
	if sess == nil {
		name := ev.DisplayName
		if name == "" {
			name = "there"
		}
		sess, err = m.sessions.Create(ctx, ev.From, name)
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
	}

	services, err := m.services.FindActive(ctx)
	if err != nil {
		return fmt.Errorf("load services: %w", err)
	}

	if _, err := sender.SendList(ctx, ev.From, "Our Services", msgChooseService, serviceSections(services), ev.MessageID); err != nil {
		return fmt.Errorf("send service list: %w", err)
	}

	sess.Step = model.StepSelectingService
	if err := m.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// sendLoyaltyPoints replies with the current balance and recent points
// history. It never changes the dialogue step.
func (m *Machine) sendLoyaltyPoints(ctx context.Context, ev model.Event, sender Sender) error {
	customer, err := m.customers.FindByPhone(ctx, ev.From)
	if err != nil {
		return fmt.Errorf("find customer: %w", err)
	}
	if customer == nil {
		_, err := sender.SendText(ctx, ev.From, msgNoPoints, ev.MessageID)
		return err
	}

	recent, err := m.bookings.FindRecentAwarded(ctx, customer.ID, 5)
	if err != nil {
		return fmt.Errorf("load points history: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "💫 Your Current Points: %d\n\n", customer.LoyaltyPoints)
	if len(recent) > 0 {
		sb.WriteString("📝 Recent Points History:\n")
		for _, b := range recent {
			fmt.Fprintf(&sb, "%s - %s: +%d points\n",
				b.AppointmentDate.Format("Jan 2"), b.ServiceTitle, b.ServiceLoyaltyPoints)
		}
	}
	sb.WriteString("\n💡 Points are awarded after service completion and payment.")

	_, err = sender.SendText(ctx, ev.From, sb.String(), ev.MessageID)
	return err
}

// selectService snapshots the chosen service into the session and prompts
// for a date. Unknown or inactive service ids are ignored.
func (m *Machine) selectService(ctx context.Context, ev model.Event, sess *model.Session, sender Sender) error {
	svc, err := m.services.FindActiveByServiceID(ctx, ev.SelectionID)
	if err != nil {
		return fmt.Errorf("find service: %w", err)
	}
	if svc == nil {
		return nil
	}

	sess.Step = model.StepSelectingDate
	sess.SelectedService = svc
	if err := m.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	_, err = sender.SendList(ctx, ev.From, "Select Date", msgChooseDate, dateSections(m.clock.Now()), ev.MessageID)
	if err != nil {
		return fmt.Errorf("send date list: %w", err)
	}
	return nil
}

// selectDate parses the chosen date and prompts for a time range, omitting
// ranges that have fully elapsed when the date is today.
func (m *Machine) selectDate(ctx context.Context, ev model.Event, sess *model.Session, sender Sender) error {
	raw := strings.TrimPrefix(ev.SelectionID, "date_")
	date, err := time.ParseInLocation("2006-01-02", raw, booking.Location)
	if err != nil {
		log.Debug().Str("selectionId", ev.SelectionID).Msg("unparseable date selection, ignoring")
		return nil
	}

	sess.Step = model.StepSelectingTimeRange
	sess.SelectedDate = &date
	if err := m.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	_, err = sender.SendList(ctx, ev.From, "Select Time", msgChooseTimeRange, rangeSections(date, m.clock.Now()), ev.MessageID)
	if err != nil {
		return fmt.Errorf("send time range list: %w", err)
	}
	return nil
}

// selectTimeRange computes availability for the chosen range and prompts for
// a slot. With nothing open the customer is told so and stays on the slot
// step to restart range or date selection.
func (m *Machine) selectTimeRange(ctx context.Context, ev model.Event, sess *model.Session, sender Sender) error {
	rng, ok := booking.RangeByID(ev.SelectionID)
	if !ok || sess.SelectedDate == nil {
		return nil
	}

	sess.Step = model.StepSelectingTime
	sess.SelectedTimeRange = ev.SelectionID
	if err := m.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	slots, err := m.calc.AvailableSlots(ctx, *sess.SelectedDate, rng.ID)
	if err != nil {
		return fmt.Errorf("compute availability: %w", err)
	}

	if len(slots) == 0 {
		_, err := sender.SendText(ctx, ev.From, msgNoSlots, ev.MessageID)
		return err
	}

	_, err = sender.SendList(ctx, ev.From, "Select Time", msgChooseTime, slotSections(rng.Label, slots), ev.MessageID)
	if err != nil {
		return fmt.Errorf("send slot list: %w", err)
	}
	return nil
}

// selectSlot re-validates the chosen slot against live availability, commits
// the booking, and clears the session. Losing the race leaves the session on
// the slot step with a conflict message so the customer can pick again.
func (m *Machine) selectSlot(ctx context.Context, ev model.Event, sess *model.Session, customer *model.Customer, sender Sender) error {
	if sess.SelectedService == nil || sess.SelectedDate == nil || sess.SelectedTimeRange == "" {
		return nil
	}

	hour, minute, ok := booking.ParseSlotID(ev.SelectionID)
	if !ok {
		return nil
	}
	rng, ok := booking.RangeByID(sess.SelectedTimeRange)
	if !ok || hour < rng.StartHour || hour >= rng.EndHour {
		// stale selection from an earlier prompt
		return nil
	}

	date := *sess.SelectedDate
	if booking.SameDay(date, m.clock.Now()) {
		start := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, booking.Location)
		if !start.After(m.clock.Now()) {
			return nil
		}
	}

	// Close the race window as far as possible before committing; the
	// storage constraint inside the allocator is the real guard.
	slots, err := m.calc.AvailableSlots(ctx, date, rng.ID)
	if err != nil {
		return fmt.Errorf("re-check availability: %w", err)
	}
	if !containsSlot(slots, ev.SelectionID) {
		_, err := sender.SendText(ctx, ev.From, msgSlotTaken, ev.MessageID)
		return err
	}

	label := booking.SlotLabel(hour, minute)
	created, err := m.alloc.CreateBooking(ctx, customer.ID, sess.SelectedService.ID, date, label)
	if errors.Is(err, booking.ErrSlotTaken) {
		_, err := sender.SendText(ctx, ev.From, msgSlotTaken, ev.MessageID)
		return err
	}
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	confirmation := confirmationMessage(
		sess.UserName,
		sess.SelectedService.Title,
		formatAppointmentDate(date),
		label,
		created.BookingReference,
	)
	msgID, err := sender.SendText(ctx, ev.From, confirmation, ev.MessageID)
	if err != nil {
		return fmt.Errorf("send confirmation: %w", err)
	}

	if msgID != "" {
		if err := m.bookings.SetConfirmationMessageID(ctx, created.ID, msgID); err != nil {
			log.Warn().Err(err).Str("bookingReference", created.BookingReference).
				Msg("failed to store confirmation message id")
		}
	}

	if err := m.sessions.Delete(ctx, ev.From); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func containsSlot(slots []booking.Slot, id string) bool {
	for _, s := range slots {
		if s.ID == id {
			return true
		}
	}
	return false
}
