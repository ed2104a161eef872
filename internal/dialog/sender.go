package dialog

import (
	"context"

	"github.com/bookmycut/booking-server-go/internal/whatsapp"
)

// Sender renders prompts back into the channel. Each send returns the
// provider message id of the delivered message.
type Sender interface {
	SendText(ctx context.Context, to, body, replyTo string) (string, error)
	SendButtons(ctx context.Context, to, body string, buttons []whatsapp.Button, replyTo string) (string, error)
	SendList(ctx context.Context, to, header, body string, sections []whatsapp.Section, replyTo string) (string, error)
	MarkRead(ctx context.Context, messageID string) error
}

var _ Sender = (*whatsapp.NumberClient)(nil)
