package dialog

import "fmt"

// Top-level action ids offered on the welcome buttons.
const (
	actionChooseService  = "choose_service"
	actionMyReservations = "my_reservations"
	actionLoyaltyPoints  = "loyalty_points"
)

// greetings is the fixed vocabulary that (re)starts a conversation.
var greetings = map[string]bool{
	"hi":    true,
	"hey":   true,
	"hello": true,
	"menu":  true,
	"start": true,
	"help":  true,
}

const (
	msgChooseService   = "Please choose a service you'd like to book."
	msgChooseDate      = "Choose a date for your appointment:"
	msgChooseTimeRange = "Choose a time range that works best for you:"
	msgChooseTime      = "Choose your preferred appointment time:"
	msgNoSlots         = "Sorry, no available time slots in this range. Please select a different time range or date."
	msgSlotTaken       = "Sorry, this time slot was just booked by someone else. Please select a different time."
	msgReservations    = "Coming soon: You'll be able to view and manage your reservations here."
	msgNoPoints        = "No loyalty points found. Book a service to start earning points! 🎁"
)

func welcomeMessage(name string) string {
	return fmt.Sprintf("Hi %s, welcome to GlamStudio! What would you like to do today?", name)
}

func confirmationMessage(name, service, date, slot, reference string) string {
	return fmt.Sprintf(
		"✅ Awesome %s! Your appointment for %s is booked on %s at %s.\nBooking reference: %s\nWe'll see you soon! 💇‍♀️",
		name, service, date, slot, reference,
	)
}
