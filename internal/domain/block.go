package domain

import "time"

// MemberBlock represents a member block record (blocked_users table).
// The pair is ordered: BlockerID blocked BlockedID.
type MemberBlock struct {
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	BlockerID string    `gorm:"column:blocker_id;index;type:varchar(36)" json:"blocker_id"`
	BlockedID string    `gorm:"column:blocked_id;index;type:varchar(36)" json:"blocked_id"`
	ID        int       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
}

func (MemberBlock) TableName() string {
	return "blocked_users"
}

// Gate denial reasons. An allowed verdict carries no reason.
const (
	GateBlockedBySelf  = "blocked_by_self"
	GateBlockedByOther = "blocked_by_other"
)

// GateVerdict is the result of a may-message check between two users
type GateVerdict struct {
	Allowed   bool   `json:"allowed"`
	BlockedBy string `json:"blocked_by,omitempty"` // "blocked_by_self" or "blocked_by_other"
}

// BlockResponse represents a block item in API responses
type BlockResponse struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	BlockedAt string `json:"blocked_at"`
	BlockID   int    `json:"block_id"`
}
