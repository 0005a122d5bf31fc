package api

// Webhook payload shapes for the three Meta platforms. WhatsApp Business
// nests messages under entry[].changes[].value.messages, Instagram under
// entry[].changes[].value.messaging, Messenger pages directly under
// entry[].messaging.

const (
	ObjectWhatsApp  = "whatsapp_business_account"
	ObjectInstagram = "instagram"
	ObjectMessenger = "page"
)

type WebhookEvent struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID        string           `json:"id"`
	Changes   []WebhookChange  `json:"changes,omitempty"`
	Messaging []MessagingEvent `json:"messaging,omitempty"`
}

type WebhookChange struct {
	Field string             `json:"field"`
	Value WebhookChangeValue `json:"value"`
}

type WebhookChangeValue struct {
	Messages  []WhatsAppMessage `json:"messages,omitempty"`
	Messaging []MessagingEvent  `json:"messaging,omitempty"`
}

type WhatsAppMessage struct {
	From      string        `json:"from"`
	ID        string        `json:"id"`
	Timestamp string        `json:"timestamp"`
	Type      string        `json:"type"`
	Text      *WhatsAppText `json:"text,omitempty"`
}

type WhatsAppText struct {
	Body string `json:"body"`
}

type MessagingEvent struct {
	Sender  MessagingParty    `json:"sender"`
	Message *MessagingMessage `json:"message,omitempty"`
}

type MessagingParty struct {
	ID string `json:"id"`
}

type MessagingMessage struct {
	Mid    string `json:"mid,omitempty"`
	Text   string `json:"text"`
	IsEcho bool   `json:"is_echo,omitempty"`
}

// InboundMessage is one platform message reduced to what the pipeline
// needs.
type InboundMessage struct {
	Platform string
	UserID   string
	Text     string
}

// Inbound flattens the event into the text messages it carries; echoes and
// non-text entries are dropped.
func (e *WebhookEvent) Inbound() []InboundMessage {
	var inbound []InboundMessage
	switch e.Object {
	case ObjectWhatsApp:
		for _, entry := range e.Entry {
			for _, change := range entry.Changes {
				for _, msg := range change.Value.Messages {
					if msg.Text == nil || msg.Text.Body == "" {
						continue
					}
					inbound = append(inbound, InboundMessage{
						Platform: e.Object,
						UserID:   msg.From,
						Text:     msg.Text.Body,
					})
				}
			}
		}
	case ObjectInstagram:
		for _, entry := range e.Entry {
			for _, change := range entry.Changes {
				inbound = append(inbound, messagingInbound(e.Object, change.Value.Messaging)...)
			}
		}
	case ObjectMessenger:
		for _, entry := range e.Entry {
			inbound = append(inbound, messagingInbound(e.Object, entry.Messaging)...)
		}
	}
	return inbound
}

func messagingInbound(platform string, events []MessagingEvent) []InboundMessage {
	var inbound []InboundMessage
	for _, ev := range events {
		if ev.Message == nil || ev.Message.IsEcho || ev.Message.Text == "" {
			continue
		}
		inbound = append(inbound, InboundMessage{
			Platform: platform,
			UserID:   ev.Sender.ID,
			Text:     ev.Message.Text,
		})
	}
	return inbound
}
