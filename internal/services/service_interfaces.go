package services

import (
	"context"
	"time"

	"surcan_assistant_backend/internal/models"

	"github.com/google/generative-ai-go/genai"
)

// ConversationStore is the persistence accessor for conversation rows.
// WithTx runs fn against a store bound to a single transaction, so the
// tracker's read-decide-write sequence holds one lock on the user's open
// conversation from lookup to write.
type ConversationStore interface {
	WithTx(ctx context.Context, fn func(tx ConversationStore) error) error
	FindOpenForUpdate(ctx context.Context, userID string) (*models.Conversation, error)
	Create(ctx context.Context, userID string, start time.Time) (*models.Conversation, error)
	Close(ctx context.Context, conversationID uint, end time.Time) error
}

// UsageCounter upserts the daily and monthly conversation tallies for the
// period containing now; Counts reads them back, missing rows as zero.
type UsageCounter interface {
	Increment(ctx context.Context, now time.Time) error
	Counts(ctx context.Context, now time.Time) (daily int, monthly int, err error)
}

// HistoryStore persists per-user chat turns.
type HistoryStore interface {
	Turns(ctx context.Context, userID string) ([]models.Turn, error)
	Append(ctx context.Context, userID string, turns ...models.Turn) error
	Reset(ctx context.Context, userID string) error
}

// ProductSearcher looks a product name up on the storefront.
type ProductSearcher interface {
	Search(ctx context.Context, productName string) ([]models.Product, error)
}

// ChatModel is the slice of *genai.GenerativeModel the assistant needs.
type ChatModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Assistant turns one user message into a reply: either plain text or a
// text plus a product carousel.
type Assistant interface {
	Reply(ctx context.Context, userID, message string) (Reply, error)
}

// Reply is the assistant's answer to a single message.
type Reply struct {
	Text     string
	Products []models.Product
}
