package domain

import "time"

// MaxMessageLength is the upper bound for a message body, in characters
const MaxMessageLength = 2000

// Conversation represents a 1:1 channel (a_chat table).
// LastMessage is a denormalized preview for fast inbox rendering; message
// ordering is always derived from the message rows, never from this field.
type Conversation struct {
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	ID          string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	LastMessage string    `gorm:"column:last_message;type:text" json:"last_message"`
}

func (Conversation) TableName() string {
	return "a_chat"
}

// Participant links a member to a conversation (a_chat_users table).
// A (chat_id, user_id) pair appears at most once; a 1:1 conversation has
// exactly two rows.
type Participant struct {
	ID     uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ChatID string `gorm:"column:chat_id;index;uniqueIndex:idx_chat_user;type:varchar(36)" json:"chat_id"`
	UserID string `gorm:"column:user_id;index;uniqueIndex:idx_chat_user;type:varchar(36)" json:"user_id"`
}

func (Participant) TableName() string {
	return "a_chat_users"
}

// Message represents a single chat message (a_chat_messages table).
// Immutable once created. CreatedAt is server-assigned and defines display
// order within a conversation.
type Message struct {
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	ID        string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	ChatID    string    `gorm:"column:chat_id;index" json:"chat_id"`
	UserID    string    `gorm:"column:user_id;index" json:"user_id"`
	Body      string    `gorm:"column:message;type:text" json:"message"`
}

func (Message) TableName() string {
	return "a_chat_messages"
}

// PairKey returns a direction-independent key for a pair of member ids.
// Used when tracing conversations for a pair, where who initiated is noise.
func PairKey(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}

// SendMessageRequest represents a send message request
type SendMessageRequest struct {
	Body string `json:"message" binding:"required"`
}

// MessageResponse represents a message in API responses
type MessageResponse struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	SenderID  string    `json:"sender_id"`
	Body      string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts Message to MessageResponse
func (m *Message) ToResponse() *MessageResponse {
	return &MessageResponse{
		ID:        m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.UserID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

// ChatPreview is one inbox entry: a conversation annotated with the other
// participant and its most recent message
type ChatPreview struct {
	ChatID      string          `json:"chat_id"`
	Participant *MemberResponse `json:"participant"`
	Preview     string          `json:"preview"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ThreadResponse is the full view of an open conversation
type ThreadResponse struct {
	ChatID      string             `json:"chat_id,omitempty"`
	Participant *MemberResponse    `json:"participant"`
	Messages    []*MessageResponse `json:"messages"`
	State       string             `json:"state"`
	BlockedBy   string             `json:"blocked_by,omitempty"`
}
