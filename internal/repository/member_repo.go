package repository

import (
	"errors"

	"github.com/fitlink/fitlink-backend/internal/common"
	"github.com/fitlink/fitlink-backend/internal/domain"
	"gorm.io/gorm"
)

// MemberRepository profile directory data access interface
type MemberRepository interface {
	FindByID(id string) (*domain.Member, error)
	FindByUsername(username string) (*domain.Member, error)
	FindByIDs(ids []string) ([]*domain.Member, error)
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) FindByID(id string) (*domain.Member, error) {
	var member domain.Member
	if err := r.db.Where("id = ?", id).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) FindByUsername(username string) (*domain.Member, error) {
	var member domain.Member
	if err := r.db.Where("username = ?", username).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) FindByIDs(ids []string) ([]*domain.Member, error) {
	var members []*domain.Member
	if len(ids) == 0 {
		return members, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&members).Error
	return members, err
}
