package wsocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"surcan_assistant_backend/internal/models"
	"surcan_assistant_backend/internal/services"

	"github.com/gorilla/websocket"
)

const apologyText = "Lo siento, hubo un problema al procesar tu solicitud."

// Handler relays the embedded web widget's chat over a websocket. Strictly
// request/reply: one inbound turn, one outbound frame.
type Handler struct {
	tracker   *services.ConversationTracker
	assistant services.Assistant
	history   services.HistoryStore
	upgrader  websocket.Upgrader
}

type Message struct {
	Type     string           `json:"type"`
	Content  string           `json:"content,omitempty"`
	Products []models.Product `json:"products,omitempty"`
}

func NewHandler(tracker *services.ConversationTracker, assistant services.Assistant, history services.HistoryStore, upgrader websocket.Upgrader) *Handler {
	return &Handler{
		tracker:   tracker,
		assistant: assistant,
		history:   history,
		upgrader:  upgrader,
	}
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading connection: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		switch msg.Type {
		case "message":
			h.handleChatMessage(ctx, conn, userID, msg.Content)
		case "reset":
			if err := h.history.Reset(ctx, userID); err != nil {
				log.Printf("Error resetting history: %v", err)
				conn.WriteJSON(Message{Type: "error", Content: apologyText})
				continue
			}
			conn.WriteJSON(Message{Type: "info", Content: "session reset"})
		default:
			log.Printf("Unknown message type: %s", msg.Type)
		}
	}
}

func (h *Handler) handleChatMessage(ctx context.Context, conn *websocket.Conn, userID, content string) {
	if content == "" {
		conn.WriteJSON(Message{Type: "error", Content: "No message provided"})
		return
	}

	if _, err := h.tracker.ResolveConversation(ctx, userID, time.Now()); err != nil {
		log.Printf("Error resolving conversation: %v", err)
		conn.WriteJSON(Message{Type: "error", Content: apologyText})
		return
	}

	reply, err := h.assistant.Reply(ctx, userID, content)
	if err != nil {
		log.Printf("Error generating reply: %v", err)
		conn.WriteJSON(Message{Type: "error", Content: apologyText})
		return
	}

	if len(reply.Products) > 0 {
		conn.WriteJSON(Message{Type: "products", Content: reply.Text, Products: reply.Products})
		return
	}
	conn.WriteJSON(Message{Type: "reply", Content: reply.Text})
}
