package whatsapp

// Channel-imposed limits on interactive list messages.
const (
	MaxRowTitleLen       = 24
	MaxRowDescriptionLen = 72
	MaxSections          = 10
)

// Button is one quick-reply option on an interactive button message.
type Button struct {
	ID    string
	Title string
}

// Row is one selectable entry inside a list section.
type Row struct {
	ID          string
	Title       string
	Description string
}

// Section is one titled group of rows in an interactive list message.
type Section struct {
	Title string
	Rows  []Row
}

// Truncate trims s to at most max runes. Titles and descriptions must fit
// the channel limits before a send call.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// WebhookPayload is the envelope delivered by the Graph API webhook.
type WebhookPayload struct {
	Entry []Entry `json:"entry"`
}

type Entry struct {
	Changes []Change `json:"changes"`
}

type Change struct {
	Value Value `json:"value"`
}

type Value struct {
	Metadata Metadata  `json:"metadata"`
	Contacts []Contact `json:"contacts"`
	Messages []Message `json:"messages"`
}

type Metadata struct {
	PhoneNumberID string `json:"phone_number_id"`
}

type Contact struct {
	Profile Profile `json:"profile"`
}

type Profile struct {
	Name string `json:"name"`
}

type Message struct {
	ID          string       `json:"id"`
	From        string       `json:"from"`
	Type        string       `json:"type"`
	Text        *TextBody    `json:"text,omitempty"`
	Interactive *Interactive `json:"interactive,omitempty"`
}

type TextBody struct {
	Body string `json:"body"`
}

type Interactive struct {
	Type        string `json:"type"`
	ButtonReply *Reply `json:"button_reply,omitempty"`
	ListReply   *Reply `json:"list_reply,omitempty"`
}

type Reply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ReplyID returns the selected option id regardless of whether the user
// tapped a button or a list row.
func (i *Interactive) ReplyID() string {
	if i.ButtonReply != nil {
		return i.ButtonReply.ID
	}
	if i.ListReply != nil {
		return i.ListReply.ID
	}
	return ""
}

// FirstMessage extracts the first delivered message, its contact, and the
// receiving phone number id. Status-only webhook deliveries carry no message.
func (p *WebhookPayload) FirstMessage() (msg *Message, contact *Contact, phoneNumberID string) {
	if len(p.Entry) == 0 || len(p.Entry[0].Changes) == 0 {
		return nil, nil, ""
	}
	value := p.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 {
		return nil, nil, value.Metadata.PhoneNumberID
	}
	msg = &value.Messages[0]
	if len(value.Contacts) > 0 {
		contact = &value.Contacts[0]
	}
	return msg, contact, value.Metadata.PhoneNumberID
}
