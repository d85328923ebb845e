package service

import (
	"errors"
	"testing"
	"time"

	"github.com/fitlink/fitlink-backend/internal/common"
	"github.com/fitlink/fitlink-backend/internal/domain"
	"github.com/fitlink/fitlink-backend/internal/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestResolveExisting_NoConversation(t *testing.T) {
	convRepo := new(MockConversationRepository)
	convRepo.On("FindSharedChatID", "alice", "bob").Return("", nil)

	svc := NewResolverService(convRepo, feed.NewFeed(nil))

	chatID, err := svc.ResolveExisting("alice", "bob")
	assert.NoError(t, err)
	assert.Empty(t, chatID)
}

// Both directions of the same pair must resolve to the same conversation
func TestResolveExisting_Symmetric(t *testing.T) {
	convRepo := new(MockConversationRepository)
	convRepo.On("FindSharedChatID", "alice", "bob").Return("chat-1", nil)
	convRepo.On("FindSharedChatID", "bob", "alice").Return("chat-1", nil)

	svc := NewResolverService(convRepo, feed.NewFeed(nil))

	fromAlice, err := svc.ResolveExisting("alice", "bob")
	assert.NoError(t, err)
	fromBob, err := svc.ResolveExisting("bob", "alice")
	assert.NoError(t, err)
	assert.Equal(t, fromAlice, fromBob)
}

func TestResolveExisting_SelfPair(t *testing.T) {
	svc := NewResolverService(new(MockConversationRepository), feed.NewFeed(nil))

	_, err := svc.ResolveExisting("alice", "alice")
	assert.ErrorIs(t, err, common.ErrSelfConversation)
}

func TestResolveOrCreate_ExistingWins(t *testing.T) {
	convRepo := new(MockConversationRepository)
	convRepo.On("FindSharedChatID", "alice", "bob").Return("chat-1", nil)

	svc := NewResolverService(convRepo, feed.NewFeed(nil))

	chatID, created, err := svc.ResolveOrCreate("alice", "bob", "hello")
	assert.NoError(t, err)
	assert.Equal(t, "chat-1", chatID)
	assert.False(t, created)
	convRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestResolveOrCreate_FirstContact(t *testing.T) {
	convRepo := new(MockConversationRepository)
	convRepo.On("FindSharedChatID", "alice", "bob").Return("", nil)
	convRepo.On("Create", "hello").Return(&domain.Conversation{
		ID:          "chat-new",
		LastMessage: "hello",
		CreatedAt:   time.Now(),
	}, nil)
	convRepo.On("AddParticipants", "chat-new", []string{"alice", "bob"}).Return(nil)

	changeFeed := feed.NewFeed(nil)
	var got *feed.ConversationEvent
	sub := changeFeed.SubscribeConversations(func(ev *feed.ConversationEvent) {
		got = ev
	})
	defer sub.Cancel()

	svc := NewResolverService(convRepo, changeFeed)

	chatID, created, err := svc.ResolveOrCreate("alice", "bob", "hello")
	assert.NoError(t, err)
	assert.Equal(t, "chat-new", chatID)
	assert.True(t, created)
	convRepo.AssertExpectations(t)

	// Both participants are announced so the other side's inbox picks it up
	if assert.NotNil(t, got) {
		assert.Equal(t, "chat-new", got.ChatID)
		assert.ElementsMatch(t, []string{"alice", "bob"}, got.ParticipantIDs)
	}
}

func TestResolveOrCreate_ParticipantInsertFails(t *testing.T) {
	convRepo := new(MockConversationRepository)
	convRepo.On("FindSharedChatID", "alice", "bob").Return("", nil)
	convRepo.On("Create", "hi").Return(&domain.Conversation{ID: "chat-orphan"}, nil)
	convRepo.On("AddParticipants", "chat-orphan", []string{"alice", "bob"}).
		Return(errors.New("duplicate entry"))

	changeFeed := feed.NewFeed(nil)
	notified := false
	sub := changeFeed.SubscribeConversations(func(*feed.ConversationEvent) { notified = true })
	defer sub.Cancel()

	svc := NewResolverService(convRepo, changeFeed)

	chatID, created, err := svc.ResolveOrCreate("alice", "bob", "hi")
	assert.ErrorIs(t, err, common.ErrResolutionFailed)
	assert.Empty(t, chatID)
	assert.False(t, created)
	assert.False(t, notified)
}

func TestResolveOrCreate_LookupFails(t *testing.T) {
	convRepo := new(MockConversationRepository)
	convRepo.On("FindSharedChatID", "alice", "bob").Return("", errors.New("timeout"))

	svc := NewResolverService(convRepo, feed.NewFeed(nil))

	_, _, err := svc.ResolveOrCreate("alice", "bob", "hello")
	assert.ErrorIs(t, err, common.ErrResolutionFailed)
}
