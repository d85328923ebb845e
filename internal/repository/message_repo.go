package repository

import (
	"errors"
	"time"

	"github.com/fitlink/fitlink-backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageRepository message data access interface
type MessageRepository interface {
	Create(chatID, senderID, body string) (*domain.Message, error)
	FindByChat(chatID string) ([]*domain.Message, error)
	FindLatestByChat(chatID string) (*domain.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create appends a message. The id and creation timestamp are server-assigned.
func (r *messageRepository) Create(chatID, senderID, body string) (*domain.Message, error) {
	msg := &domain.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		UserID:    senderID,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := r.db.Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// FindByChat returns a conversation's messages ordered by creation time
// ascending. The id tiebreak keeps the order stable across repeated calls.
func (r *messageRepository) FindByChat(chatID string) ([]*domain.Message, error) {
	var messages []*domain.Message
	err := r.db.Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	return messages, err
}

// FindLatestByChat returns the most recent message, or nil if the
// conversation has none
func (r *messageRepository) FindLatestByChat(chatID string) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.Where("chat_id = ?", chatID).
		Order("created_at DESC").
		Order("id DESC").
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}
