package services

import (
	"context"
	"errors"
	"time"

	"surcan_assistant_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultConversationStore implements ConversationStore on GORM.
type DefaultConversationStore struct {
	db *gorm.DB
}

// NewConversationStoreDB creates a new DefaultConversationStore
func NewConversationStoreDB(db *gorm.DB) ConversationStore {
	return &DefaultConversationStore{db: db}
}

func (s *DefaultConversationStore) WithTx(ctx context.Context, fn func(tx ConversationStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DefaultConversationStore{db: tx})
	})
}

// FindOpenForUpdate returns the most recent open conversation for the user,
// or nil when none exists. Inside a transaction the row is locked until
// commit so a near-simultaneous message from the same user cannot open a
// second conversation.
func (s *DefaultConversationStore) FindOpenForUpdate(ctx context.Context, userID string) (*models.Conversation, error) {
	q := s.db.WithContext(ctx)
	if s.db.Dialector.Name() == "postgres" {
		// sqlite (tests) has no SELECT ... FOR UPDATE
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var conv models.Conversation
	err := q.Where("user_id = ? AND ended_at IS NULL", userID).
		Order("started_at DESC").
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *DefaultConversationStore) Create(ctx context.Context, userID string, start time.Time) (*models.Conversation, error) {
	conv := &models.Conversation{
		UserID:    userID,
		StartedAt: start.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(conv).Error; err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *DefaultConversationStore) Close(ctx context.Context, conversationID uint, end time.Time) error {
	end = end.UTC()
	return s.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("ended_at", &end).Error
}
