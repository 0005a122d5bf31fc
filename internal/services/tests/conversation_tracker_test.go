package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"surcan_assistant_backend/internal/models"
	"surcan_assistant_backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const sessionTimeout = 5 * time.Minute

func TestResolveConversation(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 10, 14, 0, 0, 0, time.UTC)

	t.Run("First contact creates a conversation and counts it", func(t *testing.T) {
		mockStore := new(MockConversationStore)
		mockUsage := new(MockUsageCounter)
		tracker := services.NewConversationTracker(mockStore, mockUsage, sessionTimeout)

		mockStore.On("WithTx", mock.Anything).Return(nil).Once()
		mockStore.On("FindOpenForUpdate", mock.Anything, "user-1").Return(nil, nil).Once()
		mockStore.On("Create", mock.Anything, "user-1", now).
			Return(&models.Conversation{ID: 1, UserID: "user-1", StartedAt: now}, nil).Once()
		mockUsage.On("Increment", mock.Anything, now).Return(nil).Once()

		conversationID, err := tracker.ResolveConversation(ctx, "user-1", now)

		assert.NoError(t, err)
		assert.Equal(t, uint(1), conversationID)
		mockStore.AssertNotCalled(t, "Close", mock.Anything, mock.Anything, mock.Anything)
		mockStore.AssertExpectations(t)
		mockUsage.AssertExpectations(t)
	})

	t.Run("Message within the timeout continues the open conversation", func(t *testing.T) {
		mockStore := new(MockConversationStore)
		mockUsage := new(MockUsageCounter)
		tracker := services.NewConversationTracker(mockStore, mockUsage, sessionTimeout)

		open := &models.Conversation{ID: 7, UserID: "user-1", StartedAt: now.Add(-2 * time.Minute)}
		mockStore.On("WithTx", mock.Anything).Return(nil).Once()
		mockStore.On("FindOpenForUpdate", mock.Anything, "user-1").Return(open, nil).Once()

		conversationID, err := tracker.ResolveConversation(ctx, "user-1", now)

		assert.NoError(t, err)
		assert.Equal(t, uint(7), conversationID)
		mockStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
		mockStore.AssertNotCalled(t, "Close", mock.Anything, mock.Anything, mock.Anything)
		mockUsage.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything)
		mockStore.AssertExpectations(t)
	})

	t.Run("Gap equal to the timeout still continues", func(t *testing.T) {
		mockStore := new(MockConversationStore)
		mockUsage := new(MockUsageCounter)
		tracker := services.NewConversationTracker(mockStore, mockUsage, sessionTimeout)

		open := &models.Conversation{ID: 7, UserID: "user-1", StartedAt: now.Add(-sessionTimeout)}
		mockStore.On("WithTx", mock.Anything).Return(nil).Once()
		mockStore.On("FindOpenForUpdate", mock.Anything, "user-1").Return(open, nil).Once()

		conversationID, err := tracker.ResolveConversation(ctx, "user-1", now)

		assert.NoError(t, err)
		assert.Equal(t, uint(7), conversationID)
		mockUsage.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything)
	})

	t.Run("Message past the timeout closes and supersedes", func(t *testing.T) {
		mockStore := new(MockConversationStore)
		mockUsage := new(MockUsageCounter)
		tracker := services.NewConversationTracker(mockStore, mockUsage, sessionTimeout)

		open := &models.Conversation{ID: 7, UserID: "user-1", StartedAt: now.Add(-8 * time.Minute)}
		mockStore.On("WithTx", mock.Anything).Return(nil).Once()
		mockStore.On("FindOpenForUpdate", mock.Anything, "user-1").Return(open, nil).Once()
		mockStore.On("Close", mock.Anything, uint(7), now).Return(nil).Once()
		mockStore.On("Create", mock.Anything, "user-1", now).
			Return(&models.Conversation{ID: 8, UserID: "user-1", StartedAt: now}, nil).Once()
		mockUsage.On("Increment", mock.Anything, now).Return(nil).Once()

		conversationID, err := tracker.ResolveConversation(ctx, "user-1", now)

		assert.NoError(t, err)
		assert.Equal(t, uint(8), conversationID)
		mockStore.AssertExpectations(t)
		mockUsage.AssertExpectations(t)
	})

	t.Run("Naive stored start time is compared as UTC", func(t *testing.T) {
		mockStore := new(MockConversationStore)
		mockUsage := new(MockUsageCounter)
		tracker := services.NewConversationTracker(mockStore, mockUsage, sessionTimeout)

		// Same instant as now.Add(-2m) but expressed in another zone.
		zone := time.FixedZone("ART", -3*60*60)
		open := &models.Conversation{ID: 7, UserID: "user-1", StartedAt: now.Add(-2 * time.Minute).In(zone)}
		mockStore.On("WithTx", mock.Anything).Return(nil).Once()
		mockStore.On("FindOpenForUpdate", mock.Anything, "user-1").Return(open, nil).Once()

		conversationID, err := tracker.ResolveConversation(ctx, "user-1", now)

		assert.NoError(t, err)
		assert.Equal(t, uint(7), conversationID)
		mockUsage.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything)
	})

	t.Run("Store failure propagates", func(t *testing.T) {
		mockStore := new(MockConversationStore)
		mockUsage := new(MockUsageCounter)
		tracker := services.NewConversationTracker(mockStore, mockUsage, sessionTimeout)

		expectedErr := fmt.Errorf("connection refused")
		mockStore.On("WithTx", mock.Anything).Return(nil).Once()
		mockStore.On("FindOpenForUpdate", mock.Anything, "user-1").Return(nil, expectedErr).Once()

		_, err := tracker.ResolveConversation(ctx, "user-1", now)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), expectedErr.Error())
		mockUsage.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything)
	})

	t.Run("Counter failure propagates", func(t *testing.T) {
		mockStore := new(MockConversationStore)
		mockUsage := new(MockUsageCounter)
		tracker := services.NewConversationTracker(mockStore, mockUsage, sessionTimeout)

		mockStore.On("WithTx", mock.Anything).Return(nil).Once()
		mockStore.On("FindOpenForUpdate", mock.Anything, "user-1").Return(nil, nil).Once()
		mockStore.On("Create", mock.Anything, "user-1", now).
			Return(&models.Conversation{ID: 1, UserID: "user-1", StartedAt: now}, nil).Once()
		mockUsage.On("Increment", mock.Anything, now).Return(fmt.Errorf("constraint violation")).Once()

		_, err := tracker.ResolveConversation(ctx, "user-1", now)

		assert.Error(t, err)
	})
}
