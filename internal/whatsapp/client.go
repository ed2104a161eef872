package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://graph.facebook.com"

// Client talks to the WhatsApp Cloud (Graph) API. It is safe for concurrent
// use; bind it to the receiving number of a webhook delivery with ForNumber.
type Client struct {
	httpClient *http.Client
	baseURL    string
	version    string
	token      string
}

func NewClient(version, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		version:    version,
		token:      token,
	}
}

// WithBaseURL overrides the API endpoint (tests).
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// ForNumber binds the client to a business phone number id, yielding the
// sender used for one webhook delivery.
func (c *Client) ForNumber(phoneNumberID string) *NumberClient {
	return &NumberClient{client: c, phoneNumberID: phoneNumberID}
}

// NumberClient sends messages from one business phone number.
type NumberClient struct {
	client        *Client
	phoneNumberID string
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func (n *NumberClient) SendText(ctx context.Context, to, body, replyTo string) (string, error) {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"text":              map[string]string{"body": body},
	}
	return n.send(ctx, payload, replyTo)
}

func (n *NumberClient) SendButtons(ctx context.Context, to, body string, buttons []Button, replyTo string) (string, error) {
	actions := make([]map[string]any, len(buttons))
	for i, b := range buttons {
		actions[i] = map[string]any{
			"type":  "reply",
			"reply": map[string]string{"id": b.ID, "title": b.Title},
		}
	}
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]any{
			"type":   "button",
			"body":   map[string]string{"text": body},
			"action": map[string]any{"buttons": actions},
		},
	}
	return n.send(ctx, payload, replyTo)
}

func (n *NumberClient) SendList(ctx context.Context, to, header, body string, sections []Section, replyTo string) (string, error) {
	out := make([]map[string]any, len(sections))
	for i, s := range sections {
		rows := make([]map[string]string, len(s.Rows))
		for j, r := range s.Rows {
			rows[j] = map[string]string{
				"id":          r.ID,
				"title":       r.Title,
				"description": r.Description,
			}
		}
		out[i] = map[string]any{"title": s.Title, "rows": rows}
	}
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]any{
			"type":   "list",
			"header": map[string]string{"type": "text", "text": header},
			"body":   map[string]string{"text": body},
			"action": map[string]any{"sections": out},
		},
	}
	return n.send(ctx, payload, replyTo)
}

func (n *NumberClient) MarkRead(ctx context.Context, messageID string) error {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"status":            "read",
		"message_id":        messageID,
	}
	if _, err := n.post(ctx, payload); err != nil {
		return err
	}
	return nil
}

func (n *NumberClient) send(ctx context.Context, payload map[string]any, replyTo string) (string, error) {
	if replyTo != "" {
		payload["context"] = map[string]string{"message_id": replyTo}
	}

	resp, err := n.post(ctx, payload)
	if err != nil {
		return "", err
	}

	if len(resp.Messages) == 0 {
		return "", nil
	}
	return resp.Messages[0].ID, nil
}

func (n *NumberClient) post(ctx context.Context, payload map[string]any) (*sendResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal message payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", n.client.baseURL, n.client.version, n.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.client.token)

	resp, err := n.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Warn().
			Int("status", resp.StatusCode).
			Str("phoneNumberId", n.phoneNumberID).
			Msg("graph api request rejected")
		return nil, fmt.Errorf("graph api status %d: %s", resp.StatusCode, detail)
	}

	var parsed sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode graph api response: %w", err)
	}
	return &parsed, nil
}
