package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// ConversationTracker decides, for each inbound message, whether the user's
// open conversation continues or a new one starts. A new conversation — on
// first contact or after the session timeout — is a boundary event, the only
// moment the usage counters move.
type ConversationTracker struct {
	store          ConversationStore
	usage          UsageCounter
	sessionTimeout time.Duration
}

// NewConversationTracker creates a new ConversationTracker
func NewConversationTracker(store ConversationStore, usage UsageCounter, sessionTimeout time.Duration) *ConversationTracker {
	return &ConversationTracker{
		store:          store,
		usage:          usage,
		sessionTimeout: sessionTimeout,
	}
}

// ResolveConversation returns the id of the conversation the message at now
// belongs to, creating and closing rows as needed. The lookup, decision and
// writes run in one transaction holding a lock on the user's open row, so
// two near-simultaneous messages from the same user resolve to the same
// conversation.
func (t *ConversationTracker) ResolveConversation(ctx context.Context, userID string, now time.Time) (uint, error) {
	now = now.UTC()

	var conversationID uint
	boundary := false

	err := t.store.WithTx(ctx, func(tx ConversationStore) error {
		open, err := tx.FindOpenForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if open != nil {
			// Stored start times are written in UTC; .UTC() here covers
			// rows that predate that convention.
			if now.Sub(open.StartedAt.UTC()) <= t.sessionTimeout {
				conversationID = open.ID
				return nil
			}
			if err := tx.Close(ctx, open.ID, now); err != nil {
				return err
			}
		}

		created, err := tx.Create(ctx, userID, now)
		if err != nil {
			return err
		}
		conversationID = created.ID
		boundary = true
		return nil
	})
	if err != nil {
		return 0, err
	}

	if boundary {
		if err := t.usage.Increment(ctx, now); err != nil {
			return 0, err
		}
		log.Info().
			Str("user_id", userID).
			Uint("conversation_id", conversationID).
			Msg("conversation started")
	}

	return conversationID, nil
}
