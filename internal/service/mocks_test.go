package service

import (
	"github.com/fitlink/fitlink-backend/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockMemberRepository is a mock implementation of MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) FindByID(id string) (*domain.Member, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByUsername(username string) (*domain.Member, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByIDs(ids []string) ([]*domain.Member, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Member), args.Error(1)
}

// MockBlockRepository is a mock implementation of BlockRepository
type MockBlockRepository struct {
	mock.Mock
}

func (m *MockBlockRepository) Create(blockerID string, blockedID string) (*domain.MemberBlock, error) {
	args := m.Called(blockerID, blockedID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MemberBlock), args.Error(1)
}

func (m *MockBlockRepository) Delete(blockerID string, blockedID string) error {
	args := m.Called(blockerID, blockedID)
	return args.Error(0)
}

func (m *MockBlockRepository) FindByMember(blockerID string) ([]*domain.MemberBlock, error) {
	args := m.Called(blockerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MemberBlock), args.Error(1)
}

func (m *MockBlockRepository) Exists(blockerID string, blockedID string) (bool, error) {
	args := m.Called(blockerID, blockedID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBlockRepository) GetBlockedUserIDs(blockerID string) ([]string, error) {
	args := m.Called(blockerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockBlockRepository) GetBlockingUserIDs(blockedID string) ([]string, error) {
	args := m.Called(blockedID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockConversationRepository is a mock implementation of ConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) Create(preview string) (*domain.Conversation, error) {
	args := m.Called(preview)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepository) FindByID(id string) (*domain.Conversation, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepository) FindChatIDsForUser(userID string) ([]string, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockConversationRepository) FindSharedChatID(userID, otherID string) (string, error) {
	args := m.Called(userID, otherID)
	return args.String(0), args.Error(1)
}

func (m *MockConversationRepository) FindConversationsForUser(userID string) ([]*domain.Conversation, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepository) AddParticipants(chatID string, userIDs []string) error {
	args := m.Called(chatID, userIDs)
	return args.Error(0)
}

func (m *MockConversationRepository) FindOtherParticipantID(chatID, selfID string) (string, error) {
	args := m.Called(chatID, selfID)
	return args.String(0), args.Error(1)
}

func (m *MockConversationRepository) UpdatePreview(chatID, text string) error {
	args := m.Called(chatID, text)
	return args.Error(0)
}

// MockMessageRepository is a mock implementation of MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(chatID, senderID, body string) (*domain.Message, error) {
	args := m.Called(chatID, senderID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) FindByChat(chatID string) ([]*domain.Message, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) FindLatestByChat(chatID string) (*domain.Message, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}
