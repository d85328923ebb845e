package domain

import "time"

// Member represents a user profile (profiles table).
// Profiles are owned by the auth platform; this service only reads them.
type Member struct {
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	ID         string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Username   string    `gorm:"column:username;uniqueIndex" json:"username"`
	AvatarURL  *string   `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	IsVerified bool      `gorm:"column:is_verified" json:"is_verified"`
}

func (Member) TableName() string {
	return "profiles"
}

// MemberResponse represents a public profile in API responses
type MemberResponse struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	AvatarURL  *string `json:"avatar_url,omitempty"`
	IsVerified bool    `json:"is_verified"`
}

// ToResponse converts Member to MemberResponse
func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:         m.ID,
		Username:   m.Username,
		AvatarURL:  m.AvatarURL,
		IsVerified: m.IsVerified,
	}
}
