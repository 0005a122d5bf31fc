package services_test

import (
	"context"
	"time"

	"surcan_assistant_backend/internal/models"
	"surcan_assistant_backend/internal/services"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/mock"
)

type MockConversationStore struct {
	mock.Mock
}

// WithTx runs fn against the mock itself so tracker expectations can be
// asserted without a real transaction.
func (m *MockConversationStore) WithTx(ctx context.Context, fn func(tx services.ConversationStore) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m)
}

func (m *MockConversationStore) FindOpenForUpdate(ctx context.Context, userID string) (*models.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockConversationStore) Create(ctx context.Context, userID string, start time.Time) (*models.Conversation, error) {
	args := m.Called(ctx, userID, start)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockConversationStore) Close(ctx context.Context, conversationID uint, end time.Time) error {
	args := m.Called(ctx, conversationID, end)
	return args.Error(0)
}

type MockUsageCounter struct {
	mock.Mock
}

func (m *MockUsageCounter) Increment(ctx context.Context, now time.Time) error {
	args := m.Called(ctx, now)
	return args.Error(0)
}

func (m *MockUsageCounter) Counts(ctx context.Context, now time.Time) (int, int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Int(1), args.Error(2)
}

type MockHistoryStore struct {
	mock.Mock
}

func (m *MockHistoryStore) Turns(ctx context.Context, userID string) ([]models.Turn, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Turn), args.Error(1)
}

func (m *MockHistoryStore) Append(ctx context.Context, userID string, turns ...models.Turn) error {
	args := m.Called(ctx, userID, turns)
	return args.Error(0)
}

func (m *MockHistoryStore) Reset(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockProductSearcher struct {
	mock.Mock
}

func (m *MockProductSearcher) Search(ctx context.Context, productName string) ([]models.Product, error) {
	args := m.Called(ctx, productName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

type MockChatModel struct {
	mock.Mock
}

func (m *MockChatModel) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, parts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*genai.GenerateContentResponse), args.Error(1)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(text)}}},
		},
	}
}
