package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/bookmycut/booking-server-go/internal/dialog"
	"github.com/bookmycut/booking-server-go/internal/model"
	"github.com/bookmycut/booking-server-go/internal/whatsapp"
)

type WebhookHandler struct {
	machine     *dialog.Machine
	client      *whatsapp.Client
	verifyToken string
}

func NewWebhookHandler(machine *dialog.Machine, client *whatsapp.Client, verifyToken string) *WebhookHandler {
	return &WebhookHandler{
		machine:     machine,
		client:      client,
		verifyToken: verifyToken,
	}
}

// Verify answers the channel's subscription handshake by echoing the
// challenge when the verify token matches.
func (h *WebhookHandler) Verify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && h.verifyToken != "" && token == h.verifyToken {
		log.Info().Msg("webhook verified")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	log.Warn().Str("mode", mode).Msg("webhook verification failed")
	w.WriteHeader(http.StatusForbidden)
}

// Receive handles one webhook delivery. Deliveries arrive at least once and
// unordered; the state machine is responsible for ignoring what does not fit.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var payload whatsapp.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Warn().Err(err).Msg("invalid webhook request body")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg, contact, phoneNumberID := payload.FirstMessage()
	if msg == nil {
		// status update or empty delivery
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	if phoneNumberID == "" {
		log.Warn().Msg("webhook payload missing phone number id")
		writeError(w, http.StatusBadRequest, "Missing phone number id")
		return
	}

	ev, ok := normalizeEvent(msg, contact)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	sender := h.client.ForNumber(phoneNumberID)

	if err := h.machine.HandleEvent(r.Context(), ev, sender); err != nil {
		log.Error().Err(err).Str("from", ev.From).Msg("failed to handle inbound event")
		writeError(w, http.StatusInternalServerError, "Failed to process message")
		return
	}

	if err := sender.MarkRead(r.Context(), msg.ID); err != nil {
		log.Warn().Err(err).Str("messageId", msg.ID).Msg("failed to mark message as read")
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// normalizeEvent converts a raw channel message into the event shape the
// state machine consumes. Unsupported message types report ok=false.
func normalizeEvent(msg *whatsapp.Message, contact *whatsapp.Contact) (model.Event, bool) {
	ev := model.Event{
		From:      msg.From,
		MessageID: msg.ID,
	}
	if contact != nil {
		ev.DisplayName = contact.Profile.Name
	}

	switch msg.Type {
	case "text":
		if msg.Text == nil {
			return ev, false
		}
		ev.Kind = model.EventKindText
		ev.Text = msg.Text.Body
	case "interactive":
		if msg.Interactive == nil {
			return ev, false
		}
		id := msg.Interactive.ReplyID()
		if id == "" {
			return ev, false
		}
		ev.Kind = model.EventKindSelection
		ev.SelectionID = id
	default:
		return ev, false
	}

	return ev, true
}
