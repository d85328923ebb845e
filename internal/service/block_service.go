package service

import (
	"context"
	"fmt"

	"github.com/fitlink/fitlink-backend/internal/common"
	"github.com/fitlink/fitlink-backend/internal/domain"
	"github.com/fitlink/fitlink-backend/internal/repository"
	"github.com/fitlink/fitlink-backend/pkg/cache"
)

// BlockService business logic for member blocking
type BlockService interface {
	BlockMember(ctx context.Context, selfID string, targetID string) (*domain.BlockResponse, error)
	UnblockMember(ctx context.Context, selfID string, targetID string) error
	ListBlocks(selfID string) ([]*domain.BlockResponse, error)
}

type blockService struct {
	blockRepo  repository.BlockRepository
	memberRepo repository.MemberRepository
	cache      cache.Service
}

// NewBlockService creates a new BlockService
func NewBlockService(blockRepo repository.BlockRepository, memberRepo repository.MemberRepository, cacheSvc cache.Service) BlockService {
	return &blockService{
		blockRepo:  blockRepo,
		memberRepo: memberRepo,
		cache:      cacheSvc,
	}
}

// BlockMember blocks a member and drops any cached gate verdicts for the pair
func (s *blockService) BlockMember(ctx context.Context, selfID string, targetID string) (*domain.BlockResponse, error) {
	if selfID == targetID {
		return nil, fmt.Errorf("cannot block yourself")
	}

	target, err := s.memberRepo.FindByID(targetID)
	if err != nil {
		return nil, common.ErrMemberNotFound
	}

	exists, err := s.blockRepo.Exists(selfID, targetID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrAlreadyBlocked
	}

	block, err := s.blockRepo.Create(selfID, targetID)
	if err != nil {
		return nil, err
	}

	_ = s.cache.InvalidateGate(ctx, selfID, targetID)

	return &domain.BlockResponse{
		BlockID:   block.ID,
		UserID:    targetID,
		Username:  target.Username,
		BlockedAt: block.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// UnblockMember removes a block and drops cached gate verdicts for the pair
func (s *blockService) UnblockMember(ctx context.Context, selfID string, targetID string) error {
	if err := s.blockRepo.Delete(selfID, targetID); err != nil {
		return err
	}
	_ = s.cache.InvalidateGate(ctx, selfID, targetID)
	return nil
}

// ListBlocks returns all blocked members
func (s *blockService) ListBlocks(selfID string) ([]*domain.BlockResponse, error) {
	blocks, err := s.blockRepo.FindByMember(selfID)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.BlockResponse, len(blocks))
	for i, b := range blocks {
		username := ""
		if member, err := s.memberRepo.FindByID(b.BlockedID); err == nil {
			username = member.Username
		}
		responses[i] = &domain.BlockResponse{
			BlockID:   b.ID,
			UserID:    b.BlockedID,
			Username:  username,
			BlockedAt: b.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}

	return responses, nil
}
