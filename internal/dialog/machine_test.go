package dialog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmycut/booking-server-go/internal/booking"
	"github.com/bookmycut/booking-server-go/internal/model"
	"github.com/bookmycut/booking-server-go/internal/repository"
	"github.com/bookmycut/booking-server-go/internal/session"
	"github.com/bookmycut/booking-server-go/internal/whatsapp"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type sentMessage struct {
	kind     string
	to       string
	body     string
	header   string
	buttons  []whatsapp.Button
	sections []whatsapp.Section
	replyTo  string
}

// fakeSender records every outbound prompt.
type fakeSender struct {
	sent []sentMessage
	next int
}

func (f *fakeSender) messageID() string {
	f.next++
	return fmt.Sprintf("wamid.%d", f.next)
}

func (f *fakeSender) SendText(ctx context.Context, to, body, replyTo string) (string, error) {
	f.sent = append(f.sent, sentMessage{kind: "text", to: to, body: body, replyTo: replyTo})
	return f.messageID(), nil
}

func (f *fakeSender) SendButtons(ctx context.Context, to, body string, buttons []whatsapp.Button, replyTo string) (string, error) {
	f.sent = append(f.sent, sentMessage{kind: "buttons", to: to, body: body, buttons: buttons, replyTo: replyTo})
	return f.messageID(), nil
}

func (f *fakeSender) SendList(ctx context.Context, to, header, body string, sections []whatsapp.Section, replyTo string) (string, error) {
	f.sent = append(f.sent, sentMessage{kind: "list", to: to, header: header, body: body, sections: sections, replyTo: replyTo})
	return f.messageID(), nil
}

func (f *fakeSender) MarkRead(ctx context.Context, messageID string) error {
	return nil
}

func (f *fakeSender) last(t *testing.T) sentMessage {
	t.Helper()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

type fakeCustomerRepo struct {
	customers map[string]*model.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: map[string]*model.Customer{}}
}

func (f *fakeCustomerRepo) FindByPhone(ctx context.Context, phoneNumber string) (*model.Customer, error) {
	return f.customers[phoneNumber], nil
}

func (f *fakeCustomerRepo) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	for _, c := range f.customers {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeCustomerRepo) Upsert(ctx context.Context, phoneNumber, name string) (*model.Customer, error) {
	if c, ok := f.customers[phoneNumber]; ok {
		c.Name = name
		return c, nil
	}
	c := &model.Customer{
		ID:          fmt.Sprintf("cust-%d", len(f.customers)+1),
		PhoneNumber: phoneNumber,
		Name:        name,
	}
	f.customers[phoneNumber] = c
	return c, nil
}

func (f *fakeCustomerRepo) AddLoyaltyPoints(ctx context.Context, id string, points int, visitedAt time.Time) error {
	return nil
}

func (f *fakeCustomerRepo) List(ctx context.Context) ([]model.Customer, error) {
	return nil, nil
}

func (f *fakeCustomerRepo) WithTx(tx *sqlx.Tx) repository.CustomerRepository {
	return f
}

type fakeServiceRepo struct {
	services []model.Service
}

func (f *fakeServiceRepo) FindActive(ctx context.Context) ([]model.Service, error) {
	active := []model.Service{}
	for _, s := range f.services {
		if s.IsActive {
			active = append(active, s)
		}
	}
	return active, nil
}

func (f *fakeServiceRepo) FindActiveByServiceID(ctx context.Context, serviceID string) (*model.Service, error) {
	for i := range f.services {
		if f.services[i].ServiceID == serviceID && f.services[i].IsActive {
			return &f.services[i], nil
		}
	}
	return nil, nil
}

func (f *fakeServiceRepo) FindByID(ctx context.Context, id string) (*model.Service, error) {
	for i := range f.services {
		if f.services[i].ID == id {
			return &f.services[i], nil
		}
	}
	return nil, nil
}

func (f *fakeServiceRepo) Create(ctx context.Context, params model.CreateServiceParams) (*model.Service, error) {
	return nil, nil
}

func (f *fakeServiceRepo) List(ctx context.Context) ([]model.Service, error) {
	return f.services, nil
}

type fakeBookingRepo struct {
	bookings []model.Booking
	recent   []model.AwardedBooking
}

func (f *fakeBookingRepo) FindActiveByDate(ctx context.Context, date time.Time) ([]model.Booking, error) {
	active := []model.Booking{}
	for _, b := range f.bookings {
		if b.Status != model.BookingStatusCancelled && booking.SameDay(b.AppointmentDate, date) {
			active = append(active, b)
		}
	}
	return active, nil
}

func (f *fakeBookingRepo) InsertIfFree(ctx context.Context, params model.CreateBookingParams) (*model.Booking, error) {
	for _, b := range f.bookings {
		if b.Status != model.BookingStatusCancelled &&
			booking.SameDay(b.AppointmentDate, params.AppointmentDate) &&
			b.AppointmentTime == params.AppointmentTime {
			return nil, repository.ErrSlotTaken
		}
	}
	created := model.Booking{
		ID:               fmt.Sprintf("booking-%d", len(f.bookings)+1),
		BookingReference: params.BookingReference,
		CustomerID:       params.CustomerID,
		ServiceID:        params.ServiceID,
		Status:           model.BookingStatusConfirmed,
		PaymentStatus:    model.PaymentStatusPending,
		AppointmentDate:  params.AppointmentDate,
		AppointmentTime:  params.AppointmentTime,
	}
	f.bookings = append(f.bookings, created)
	return &created, nil
}

func (f *fakeBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			return &f.bookings[i], nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) FindByReference(ctx context.Context, reference string) (*model.Booking, error) {
	for i := range f.bookings {
		if f.bookings[i].BookingReference == reference {
			return &f.bookings[i], nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) SetConfirmationMessageID(ctx context.Context, id, messageID string) error {
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			f.bookings[i].ConfirmationMessageID = &messageID
		}
	}
	return nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id string, status model.BookingStatus, paymentStatus model.PaymentStatus) error {
	return nil
}

func (f *fakeBookingRepo) MarkLoyaltyPointsAwarded(ctx context.Context, id string) error {
	return nil
}

func (f *fakeBookingRepo) FindRecentAwarded(ctx context.Context, customerID string, limit int) ([]model.AwardedBooking, error) {
	return f.recent, nil
}

func (f *fakeBookingRepo) ListByCustomer(ctx context.Context, customerID string) ([]model.Booking, error) {
	return f.bookings, nil
}

func (f *fakeBookingRepo) List(ctx context.Context, date *time.Time) ([]model.Booking, error) {
	return f.bookings, nil
}

func (f *fakeBookingRepo) WithTx(tx *sqlx.Tx) repository.BookingRepository {
	return f
}

type testEnv struct {
	machine   *Machine
	sender    *fakeSender
	customers *fakeCustomerRepo
	services  *fakeServiceRepo
	bookings  *fakeBookingRepo
	sessions  *session.Store
	now       time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, booking.Location)
	clock := fixedClock{now}

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	customers := newFakeCustomerRepo()
	services := &fakeServiceRepo{services: []model.Service{
		{ID: "svc-1", ServiceID: "haircut_men", Category: "HAIR", Title: "Mens Haircut",
			Description: "Professional haircut for men", DurationMinutes: 30, Price: 300,
			LoyaltyPoints: 30, IsActive: true},
		{ID: "svc-2", ServiceID: "facial", Category: "SKIN", Title: "Facial",
			Description: "Relaxing facial treatment", DurationMinutes: 60, Price: 800,
			LoyaltyPoints: 80, IsActive: true},
		{ID: "svc-3", ServiceID: "retired", Category: "HAIR", Title: "Retired", IsActive: false},
	}}
	bookings := &fakeBookingRepo{}
	sessions := session.NewStore(client, clock)
	calc := booking.NewCalculator(bookings, clock)
	alloc := booking.NewAllocator(bookings)

	return &testEnv{
		machine:   NewMachine(customers, services, bookings, sessions, calc, alloc, clock),
		sender:    &fakeSender{},
		customers: customers,
		services:  services,
		bookings:  bookings,
		sessions:  sessions,
		now:       now,
	}
}

func (e *testEnv) text(t *testing.T, from, body string) {
	t.Helper()
	err := e.machine.HandleEvent(context.Background(), model.Event{
		From: from, DisplayName: "Priya", Kind: model.EventKindText,
		Text: body, MessageID: "wamid.in",
	}, e.sender)
	require.NoError(t, err)
}

func (e *testEnv) selection(t *testing.T, from, id string) {
	t.Helper()
	err := e.machine.HandleEvent(context.Background(), model.Event{
		From: from, DisplayName: "Priya", Kind: model.EventKindSelection,
		SelectionID: id, MessageID: "wamid.in",
	}, e.sender)
	require.NoError(t, err)
}

const phone = "919876543210"

func TestGreetingStartsSession(t *testing.T) {
	env := newTestEnv(t)

	env.text(t, phone, "hi")

	msg := env.sender.last(t)
	assert.Equal(t, "buttons", msg.kind)
	assert.Contains(t, msg.body, "Priya")
	require.Len(t, msg.buttons, 3)
	assert.Equal(t, actionChooseService, msg.buttons[0].ID)
	assert.Equal(t, actionMyReservations, msg.buttons[1].ID)
	assert.Equal(t, actionLoyaltyPoints, msg.buttons[2].ID)

	sess, err := env.sessions.Find(context.Background(), phone)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, model.StepInitial, sess.Step)
}

func TestGreetingVariants(t *testing.T) {
	for _, greeting := range []string{"Hello", "MENU", "  start  ", "help", "hey"} {
		t.Run(greeting, func(t *testing.T) {
			env := newTestEnv(t)
			env.text(t, phone, greeting)
			assert.Len(t, env.sender.sent, 1)
		})
	}
}

func TestNonGreetingTextIgnored(t *testing.T) {
	env := newTestEnv(t)

	env.text(t, phone, "can I book something?")

	assert.Empty(t, env.sender.sent)
	sess, err := env.sessions.Find(context.Background(), phone)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestInboundEventUpsertsCustomer(t *testing.T) {
	env := newTestEnv(t)

	env.text(t, phone, "random text")

	customer := env.customers.customers[phone]
	require.NotNil(t, customer)
	assert.Equal(t, "Priya", customer.Name)
}

func TestFullBookingFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.text(t, phone, "hi")
	env.selection(t, phone, actionChooseService)

	msg := env.sender.last(t)
	assert.Equal(t, "list", msg.kind)
	require.Len(t, msg.sections, 2)
	assert.Equal(t, "HAIR", msg.sections[0].Title)
	assert.Equal(t, "SKIN", msg.sections[1].Title)

	env.selection(t, phone, "haircut_men")
	msg = env.sender.last(t)
	assert.Equal(t, "list", msg.kind)
	assert.Equal(t, "Select Date", msg.header)
	require.Len(t, msg.sections, 1)
	assert.Len(t, msg.sections[0].Rows, 7)
	assert.Equal(t, "date_2026-03-10", msg.sections[0].Rows[0].ID)

	env.selection(t, phone, "date_2026-03-12")
	msg = env.sender.last(t)
	assert.Equal(t, "list", msg.kind)
	require.Len(t, msg.sections, 1)
	assert.Len(t, msg.sections[0].Rows, 3)

	env.selection(t, phone, "range_morning")
	msg = env.sender.last(t)
	assert.Equal(t, "list", msg.kind)
	require.Len(t, msg.sections, 1)
	assert.Len(t, msg.sections[0].Rows, 6)
	assert.Equal(t, "slot_9_00", msg.sections[0].Rows[0].ID)

	env.selection(t, phone, "slot_9_30")
	msg = env.sender.last(t)
	assert.Equal(t, "text", msg.kind)
	assert.Contains(t, msg.body, "Mens Haircut")
	assert.Contains(t, msg.body, "9:30 AM")
	assert.Contains(t, msg.body, "Thursday, Mar 12")
	assert.Contains(t, msg.body, "BMC-")

	require.Len(t, env.bookings.bookings, 1)
	created := env.bookings.bookings[0]
	assert.Equal(t, "svc-1", created.ServiceID)
	assert.Equal(t, "9:30 AM", created.AppointmentTime)
	require.NotNil(t, created.ConfirmationMessageID)

	sess, err := env.sessions.Find(ctx, phone)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestChooseServiceWithoutSessionCreatesOne(t *testing.T) {
	env := newTestEnv(t)

	env.selection(t, phone, actionChooseService)

	msg := env.sender.last(t)
	assert.Equal(t, "list", msg.kind)

	sess, err := env.sessions.Find(context.Background(), phone)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, model.StepSelectingService, sess.Step)
}

func TestStepBoundSelectionWithoutSessionIgnored(t *testing.T) {
	env := newTestEnv(t)

	env.selection(t, phone, "slot_9_30")
	env.selection(t, phone, "date_2026-03-12")
	env.selection(t, phone, "range_morning")

	assert.Empty(t, env.sender.sent)
	assert.Empty(t, env.bookings.bookings)
}

func TestMismatchedStepIgnored(t *testing.T) {
	env := newTestEnv(t)

	env.text(t, phone, "hi")
	env.selection(t, phone, actionChooseService)

	// slot selection while still on service selection
	sent := len(env.sender.sent)
	env.selection(t, phone, "slot_9_30")
	assert.Len(t, env.sender.sent, sent)
	assert.Empty(t, env.bookings.bookings)
}

func TestUnknownServiceIgnored(t *testing.T) {
	env := newTestEnv(t)

	env.selection(t, phone, actionChooseService)
	sent := len(env.sender.sent)

	env.selection(t, phone, "massage")
	assert.Len(t, env.sender.sent, sent)

	sess, err := env.sessions.Find(context.Background(), phone)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, model.StepSelectingService, sess.Step)
}

func TestInactiveServiceIgnored(t *testing.T) {
	env := newTestEnv(t)

	env.selection(t, phone, actionChooseService)
	sent := len(env.sender.sent)

	env.selection(t, phone, "retired")
	assert.Len(t, env.sender.sent, sent)
}

func TestNoSlotsInRange(t *testing.T) {
	env := newTestEnv(t)
	date := time.Date(2026, 3, 12, 0, 0, 0, 0, booking.Location)
	for h := 9; h < 12; h++ {
		for _, m := range []int{0, 30} {
			env.bookings.bookings = append(env.bookings.bookings, model.Booking{
				ID:              fmt.Sprintf("b-%d-%d", h, m),
				Status:          model.BookingStatusConfirmed,
				AppointmentDate: date,
				AppointmentTime: booking.SlotLabel(h, m),
			})
		}
	}

	env.selection(t, phone, actionChooseService)
	env.selection(t, phone, "haircut_men")
	env.selection(t, phone, "date_2026-03-12")
	env.selection(t, phone, "range_morning")

	msg := env.sender.last(t)
	assert.Equal(t, "text", msg.kind)
	assert.Equal(t, msgNoSlots, msg.body)

	// the customer stays on the slot step and can reselect a range or date
	sess, err := env.sessions.Find(context.Background(), phone)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, model.StepSelectingTime, sess.Step)
}

func TestSlotConflictKeepsSession(t *testing.T) {
	env := newTestEnv(t)
	date := time.Date(2026, 3, 12, 0, 0, 0, 0, booking.Location)

	env.selection(t, phone, actionChooseService)
	env.selection(t, phone, "haircut_men")
	env.selection(t, phone, "date_2026-03-12")
	env.selection(t, phone, "range_morning")

	// another customer grabs the slot between prompt and reply
	env.bookings.bookings = append(env.bookings.bookings, model.Booking{
		ID:              "b-race",
		Status:          model.BookingStatusConfirmed,
		AppointmentDate: date,
		AppointmentTime: "9:30 AM",
	})

	env.selection(t, phone, "slot_9_30")

	msg := env.sender.last(t)
	assert.Equal(t, "text", msg.kind)
	assert.Equal(t, msgSlotTaken, msg.body)

	sess, err := env.sessions.Find(context.Background(), phone)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, model.StepSelectingTime, sess.Step)
	assert.Len(t, env.bookings.bookings, 1)
}

func TestStaleSlotFromEarlierRangeIgnored(t *testing.T) {
	env := newTestEnv(t)

	env.selection(t, phone, actionChooseService)
	env.selection(t, phone, "haircut_men")
	env.selection(t, phone, "date_2026-03-12")
	env.selection(t, phone, "range_evening")

	// slot id from a prompt rendered for the morning range
	sent := len(env.sender.sent)
	env.selection(t, phone, "slot_9_30")

	assert.Len(t, env.sender.sent, sent)
	assert.Empty(t, env.bookings.bookings)
}

func TestTodayElapsedSlotIgnored(t *testing.T) {
	env := newTestEnv(t)

	env.selection(t, phone, actionChooseService)
	env.selection(t, phone, "haircut_men")
	env.selection(t, phone, "date_2026-03-10")
	env.selection(t, phone, "range_morning")

	// it is 10:00 now; a 9:30 slot can only come from a stale prompt
	sent := len(env.sender.sent)
	env.selection(t, phone, "slot_9_30")

	assert.Len(t, env.sender.sent, sent)
	assert.Empty(t, env.bookings.bookings)
}

func TestMyReservations(t *testing.T) {
	env := newTestEnv(t)

	env.selection(t, phone, actionMyReservations)

	msg := env.sender.last(t)
	assert.Equal(t, "text", msg.kind)
	assert.Equal(t, msgReservations, msg.body)
}

func TestLoyaltyPointsWithHistory(t *testing.T) {
	env := newTestEnv(t)
	env.customers.customers[phone] = &model.Customer{
		ID: "cust-1", PhoneNumber: phone, Name: "Priya", LoyaltyPoints: 110,
	}
	env.bookings.recent = []model.AwardedBooking{
		{AppointmentDate: time.Date(2026, 3, 1, 0, 0, 0, 0, booking.Location),
			ServiceTitle: "Mens Haircut", ServiceLoyaltyPoints: 30},
		{AppointmentDate: time.Date(2026, 2, 20, 0, 0, 0, 0, booking.Location),
			ServiceTitle: "Facial", ServiceLoyaltyPoints: 80},
	}

	env.selection(t, phone, actionLoyaltyPoints)

	msg := env.sender.last(t)
	assert.Equal(t, "text", msg.kind)
	assert.Contains(t, msg.body, "Your Current Points: 110")
	assert.Contains(t, msg.body, "Mar 1 - Mens Haircut: +30 points")
	assert.Contains(t, msg.body, "Feb 20 - Facial: +80 points")
}

func TestLoyaltyPointsNoHistory(t *testing.T) {
	env := newTestEnv(t)
	env.customers.customers[phone] = &model.Customer{
		ID: "cust-1", PhoneNumber: phone, Name: "Priya",
	}

	env.selection(t, phone, actionLoyaltyPoints)

	msg := env.sender.last(t)
	assert.Contains(t, msg.body, "Your Current Points: 0")
	assert.NotContains(t, msg.body, "Recent Points History")
}

func TestGreetingRestartsMidFlow(t *testing.T) {
	env := newTestEnv(t)

	env.selection(t, phone, actionChooseService)
	env.selection(t, phone, "haircut_men")

	env.text(t, phone, "hi")

	sess, err := env.sessions.Find(context.Background(), phone)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, model.StepInitial, sess.Step)
	assert.Nil(t, sess.SelectedService)
}
