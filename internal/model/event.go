package model

type EventKind string

const (
	EventKindText      EventKind = "text"
	EventKindSelection EventKind = "selection"
)

// Event is a normalized inbound channel event. The webhook handler produces
// one Event per delivered message; the dialogue state machine consumes it.
// Events arrive at least once and in no guaranteed order.
type Event struct {
	From        string
	DisplayName string
	Kind        EventKind
	Text        string
	SelectionID string
	// MessageID is the provider message id, used for reply linkage and
	// read receipts.
	MessageID string
}
