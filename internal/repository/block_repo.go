package repository

import (
	"time"

	"github.com/fitlink/fitlink-backend/internal/common"
	"github.com/fitlink/fitlink-backend/internal/domain"
	"gorm.io/gorm"
)

// BlockRepository block data access interface
type BlockRepository interface {
	Create(blockerID string, blockedID string) (*domain.MemberBlock, error)
	Delete(blockerID string, blockedID string) error
	FindByMember(blockerID string) ([]*domain.MemberBlock, error)
	Exists(blockerID string, blockedID string) (bool, error)
	GetBlockedUserIDs(blockerID string) ([]string, error)
	GetBlockingUserIDs(blockedID string) ([]string, error)
}

type blockRepository struct {
	db *gorm.DB
}

// NewBlockRepository creates a new BlockRepository
func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

// Create adds a block
func (r *blockRepository) Create(blockerID string, blockedID string) (*domain.MemberBlock, error) {
	block := &domain.MemberBlock{
		BlockerID: blockerID,
		BlockedID: blockedID,
		CreatedAt: time.Now(),
	}
	if err := r.db.Create(block).Error; err != nil {
		return nil, err
	}
	return block, nil
}

// Delete removes a block
func (r *blockRepository) Delete(blockerID string, blockedID string) error {
	result := r.db.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&domain.MemberBlock{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrBlockNotFound
	}
	return nil
}

// FindByMember returns all blocks created by a member
func (r *blockRepository) FindByMember(blockerID string) ([]*domain.MemberBlock, error) {
	var blocks []*domain.MemberBlock
	err := r.db.Where("blocker_id = ?", blockerID).Order("id DESC").Find(&blocks).Error
	return blocks, err
}

// Exists reports whether blockerID has blocked blockedID
func (r *blockRepository) Exists(blockerID string, blockedID string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.MemberBlock{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error
	return count > 0, err
}

// GetBlockedUserIDs returns all user IDs blocked by a member
func (r *blockRepository) GetBlockedUserIDs(blockerID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&domain.MemberBlock{}).
		Where("blocker_id = ?", blockerID).
		Pluck("blocked_id", &ids).Error
	return ids, err
}

// GetBlockingUserIDs returns all user IDs that have blocked a member
func (r *blockRepository) GetBlockingUserIDs(blockedID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&domain.MemberBlock{}).
		Where("blocked_id = ?", blockedID).
		Pluck("blocker_id", &ids).Error
	return ids, err
}
