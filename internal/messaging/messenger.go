package messaging

import (
	"context"
	"time"

	"surcan_assistant_backend/internal/models"
)

// MessengerClient sends through the /me/messages Graph endpoint, which
// covers both Messenger and Instagram Direct. Product results go out as a
// generic template carousel with a "Ver más" button per item.
type MessengerClient struct {
	graphClient
}

// NewMessengerClient creates a new MessengerClient
func NewMessengerClient(accessToken string, timeout time.Duration) *MessengerClient {
	return &MessengerClient{graphClient: newGraphClient(accessToken, timeout)}
}

type messengerMessage struct {
	Recipient messengerRecipient `json:"recipient"`
	Message   messengerContent   `json:"message"`
}

type messengerRecipient struct {
	ID string `json:"id"`
}

type messengerContent struct {
	Text       string               `json:"text,omitempty"`
	Attachment *messengerAttachment `json:"attachment,omitempty"`
}

type messengerAttachment struct {
	Type    string           `json:"type"`
	Payload messengerPayload `json:"payload"`
}

type messengerPayload struct {
	TemplateType string             `json:"template_type"`
	Elements     []messengerElement `json:"elements"`
}

type messengerElement struct {
	Title    string            `json:"title"`
	Subtitle string            `json:"subtitle,omitempty"`
	ImageURL string            `json:"image_url,omitempty"`
	Buttons  []messengerButton `json:"buttons,omitempty"`
}

type messengerButton struct {
	Type  string `json:"type"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

func (c *MessengerClient) SendText(ctx context.Context, to, text string) error {
	return c.post(ctx, "me/messages", messengerMessage{
		Recipient: messengerRecipient{ID: to},
		Message:   messengerContent{Text: text},
	})
}

func (c *MessengerClient) SendProducts(ctx context.Context, to, text string, products []models.Product) error {
	if len(products) == 0 {
		return c.SendText(ctx, to, text)
	}
	return c.post(ctx, "me/messages", messengerCarousel(to, products))
}

func messengerCarousel(to string, products []models.Product) messengerMessage {
	// Generic templates carry at most ten elements.
	if len(products) > 10 {
		products = products[:10]
	}
	elements := make([]messengerElement, 0, len(products))
	for _, p := range products {
		elements = append(elements, messengerElement{
			Title:    p.Title,
			Subtitle: p.Price,
			ImageURL: p.Image,
			Buttons: []messengerButton{{
				Type:  "web_url",
				URL:   p.Link,
				Title: "Ver más",
			}},
		})
	}
	return messengerMessage{
		Recipient: messengerRecipient{ID: to},
		Message: messengerContent{
			Attachment: &messengerAttachment{
				Type:    "template",
				Payload: messengerPayload{TemplateType: "generic", Elements: elements},
			},
		},
	}
}
