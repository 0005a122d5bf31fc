package messaging

import (
	"context"
	"fmt"
	"time"

	"surcan_assistant_backend/internal/models"
)

// WhatsAppClient sends through the WhatsApp Cloud API. Product results go
// out as an interactive list; plain replies as a text message.
type WhatsAppClient struct {
	graphClient
	phoneNumberID string
}

// NewWhatsAppClient creates a new WhatsAppClient
func NewWhatsAppClient(accessToken, phoneNumberID string, timeout time.Duration) *WhatsAppClient {
	return &WhatsAppClient{
		graphClient:   newGraphClient(accessToken, timeout),
		phoneNumberID: phoneNumberID,
	}
}

type whatsAppMessage struct {
	MessagingProduct string               `json:"messaging_product"`
	To               string               `json:"to"`
	Type             string               `json:"type"`
	Text             *whatsAppText        `json:"text,omitempty"`
	Interactive      *whatsAppInteractive `json:"interactive,omitempty"`
}

type whatsAppText struct {
	Body string `json:"body"`
}

type whatsAppInteractive struct {
	Type   string         `json:"type"`
	Body   whatsAppText   `json:"body"`
	Action whatsAppAction `json:"action"`
}

type whatsAppAction struct {
	Button   string            `json:"button"`
	Sections []whatsAppSection `json:"sections"`
}

type whatsAppSection struct {
	Title string        `json:"title"`
	Rows  []whatsAppRow `json:"rows"`
}

type whatsAppRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func (c *WhatsAppClient) SendText(ctx context.Context, to, text string) error {
	return c.post(ctx, c.phoneNumberID+"/messages", whatsAppTextMessage(to, text))
}

func (c *WhatsAppClient) SendProducts(ctx context.Context, to, text string, products []models.Product) error {
	if len(products) == 0 {
		return c.SendText(ctx, to, text)
	}
	return c.post(ctx, c.phoneNumberID+"/messages", whatsAppListMessage(to, text, products))
}

func whatsAppTextMessage(to, text string) whatsAppMessage {
	return whatsAppMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             &whatsAppText{Body: text},
	}
}

func whatsAppListMessage(to, text string, products []models.Product) whatsAppMessage {
	// The list UI caps out at ten rows.
	if len(products) > 10 {
		products = products[:10]
	}
	rows := make([]whatsAppRow, 0, len(products))
	for i, p := range products {
		rows = append(rows, whatsAppRow{
			ID:          fmt.Sprintf("product_%d", i),
			Title:       truncate(p.Title, 24),
			Description: truncate(p.Price, 72),
		})
	}
	return whatsAppMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "interactive",
		Interactive: &whatsAppInteractive{
			Type: "list",
			Body: whatsAppText{Body: text},
			Action: whatsAppAction{
				Button:   "Ver productos",
				Sections: []whatsAppSection{{Title: "Productos", Rows: rows}},
			},
		},
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
