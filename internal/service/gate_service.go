package service

import (
	"context"

	"github.com/fitlink/fitlink-backend/internal/common"
	"github.com/fitlink/fitlink-backend/internal/domain"
	"github.com/fitlink/fitlink-backend/internal/repository"
	"github.com/fitlink/fitlink-backend/pkg/cache"
)

// GateService answers whether two members may exchange messages.
// Verdicts are derived from the block list in both directions and cached
// briefly; callers re-check before every send.
type GateService interface {
	CanMessage(ctx context.Context, selfID, otherID string) (*domain.GateVerdict, error)
}

type gateService struct {
	blockRepo repository.BlockRepository
	cache     cache.Service
}

// NewGateService creates a new GateService
func NewGateService(blockRepo repository.BlockRepository, cacheSvc cache.Service) GateService {
	return &gateService{
		blockRepo: blockRepo,
		cache:     cacheSvc,
	}
}

// CanMessage evaluates the block list in both directions. A block by the
// caller reports blocked_by_self; a block by the target reports
// blocked_by_other. Self-blocked wins when both hold, since the caller can
// act on it directly.
func (s *gateService) CanMessage(ctx context.Context, selfID, otherID string) (*domain.GateVerdict, error) {
	if selfID == otherID {
		return nil, common.ErrSelfConversation
	}

	var cached domain.GateVerdict
	if err := s.cache.GetGateVerdict(ctx, selfID, otherID, &cached); err == nil {
		return &cached, nil
	}

	blockedBySelf, err := s.blockRepo.Exists(selfID, otherID)
	if err != nil {
		return nil, err
	}
	if blockedBySelf {
		return s.store(ctx, selfID, otherID, &domain.GateVerdict{
			Allowed:   false,
			BlockedBy: domain.GateBlockedBySelf,
		}), nil
	}

	blockedByOther, err := s.blockRepo.Exists(otherID, selfID)
	if err != nil {
		return nil, err
	}
	if blockedByOther {
		return s.store(ctx, selfID, otherID, &domain.GateVerdict{
			Allowed:   false,
			BlockedBy: domain.GateBlockedByOther,
		}), nil
	}

	return s.store(ctx, selfID, otherID, &domain.GateVerdict{Allowed: true}), nil
}

func (s *gateService) store(ctx context.Context, selfID, otherID string, verdict *domain.GateVerdict) *domain.GateVerdict {
	// Cache write failures are invisible to callers; the verdict stands
	_ = s.cache.SetGateVerdict(ctx, selfID, otherID, verdict)
	return verdict
}
