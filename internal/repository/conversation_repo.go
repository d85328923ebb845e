package repository

import (
	"errors"
	"time"

	"github.com/fitlink/fitlink-backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversationRepository conversation and participant data access interface
type ConversationRepository interface {
	Create(preview string) (*domain.Conversation, error)
	FindByID(id string) (*domain.Conversation, error)
	FindChatIDsForUser(userID string) ([]string, error)
	FindSharedChatID(userID, otherID string) (string, error)
	FindConversationsForUser(userID string) ([]*domain.Conversation, error)
	AddParticipants(chatID string, userIDs []string) error
	FindOtherParticipantID(chatID, selfID string) (string, error)
	UpdatePreview(chatID, text string) error
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// Create inserts a new conversation with a server-assigned UUID
func (r *conversationRepository) Create(preview string) (*domain.Conversation, error) {
	conv := &domain.Conversation{
		ID:          uuid.NewString(),
		LastMessage: preview,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := r.db.Create(conv).Error; err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *conversationRepository) FindByID(id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := r.db.Where("id = ?", id).First(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindChatIDsForUser returns ids of every conversation the user belongs to
func (r *conversationRepository) FindChatIDsForUser(userID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&domain.Participant{}).
		Where("user_id = ?", userID).
		Pluck("chat_id", &ids).Error
	return ids, err
}

// FindSharedChatID returns the id of a conversation both users participate in,
// or "" if none exists. If the race in the create path ever produced more than
// one, the oldest row wins so both sides keep resolving to the same id.
func (r *conversationRepository) FindSharedChatID(userID, otherID string) (string, error) {
	chatIDs, err := r.FindChatIDsForUser(userID)
	if err != nil {
		return "", err
	}
	if len(chatIDs) == 0 {
		return "", nil
	}

	var shared domain.Participant
	err = r.db.Where("user_id = ? AND chat_id IN ?", otherID, chatIDs).
		Order("id ASC").
		First(&shared).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return shared.ChatID, nil
}

// FindConversationsForUser returns all conversations the user belongs to,
// newest first by last update
func (r *conversationRepository) FindConversationsForUser(userID string) ([]*domain.Conversation, error) {
	chatIDs, err := r.FindChatIDsForUser(userID)
	if err != nil {
		return nil, err
	}
	var convs []*domain.Conversation
	if len(chatIDs) == 0 {
		return convs, nil
	}
	err = r.db.Where("id IN ?", chatIDs).Order("updated_at DESC").Find(&convs).Error
	return convs, err
}

// AddParticipants inserts one participant row per user as a single batch.
// Row ids are database-assigned.
func (r *conversationRepository) AddParticipants(chatID string, userIDs []string) error {
	participants := make([]*domain.Participant, len(userIDs))
	for i, userID := range userIDs {
		participants[i] = &domain.Participant{
			ChatID: chatID,
			UserID: userID,
		}
	}
	return r.db.Create(&participants).Error
}

// FindOtherParticipantID returns the user id of the other side of a 1:1 chat
func (r *conversationRepository) FindOtherParticipantID(chatID, selfID string) (string, error) {
	var participant domain.Participant
	err := r.db.Where("chat_id = ? AND user_id <> ?", chatID, selfID).
		First(&participant).Error
	if err != nil {
		return "", err
	}
	return participant.UserID, nil
}

// UpdatePreview updates the denormalized last-message text
func (r *conversationRepository) UpdatePreview(chatID, text string) error {
	return r.db.Model(&domain.Conversation{}).
		Where("id = ?", chatID).
		Updates(map[string]interface{}{"last_message": text, "updated_at": time.Now()}).Error
}
