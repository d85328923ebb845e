package service

import (
	"fmt"

	"github.com/fitlink/fitlink-backend/internal/common"
	"github.com/fitlink/fitlink-backend/internal/domain"
	"github.com/fitlink/fitlink-backend/internal/feed"
	"github.com/fitlink/fitlink-backend/internal/repository"
	"github.com/fitlink/fitlink-backend/pkg/logger"
)

// ResolverService maps a pair of member ids to a single conversation id.
//
// Resolution is read-then-create without a cross-row lock: two first-contact
// sends racing from both ends of a pair can each miss the other's write and
// create two conversations. The duplicate is rare and non-corrupting — both
// rows are valid 1:1 conversations — and lookups order by participant row id
// so both sides converge on the older one afterwards.
type ResolverService interface {
	// ResolveExisting returns the shared conversation id, or "" when the
	// pair has never exchanged messages. Never creates.
	ResolveExisting(selfID, otherID string) (string, error)

	// ResolveOrCreate returns the shared conversation id, creating the
	// conversation and both participant rows on first contact. The second
	// return reports whether a conversation was created.
	ResolveOrCreate(selfID, otherID string, preview string) (string, bool, error)
}

type resolverService struct {
	convRepo repository.ConversationRepository
	feed     *feed.Feed
}

// NewResolverService creates a new ResolverService
func NewResolverService(convRepo repository.ConversationRepository, changeFeed *feed.Feed) ResolverService {
	return &resolverService{
		convRepo: convRepo,
		feed:     changeFeed,
	}
}

func (s *resolverService) ResolveExisting(selfID, otherID string) (string, error) {
	if selfID == otherID {
		return "", common.ErrSelfConversation
	}

	chatID, err := s.convRepo.FindSharedChatID(selfID, otherID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrResolutionFailed, err)
	}
	return chatID, nil
}

func (s *resolverService) ResolveOrCreate(selfID, otherID string, preview string) (string, bool, error) {
	chatID, err := s.ResolveExisting(selfID, otherID)
	if err != nil {
		return "", false, err
	}
	if chatID != "" {
		return chatID, false, nil
	}

	conv, err := s.convRepo.Create(preview)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", common.ErrResolutionFailed, err)
	}

	if err := s.convRepo.AddParticipants(conv.ID, []string{selfID, otherID}); err != nil {
		// The conversation row is now an orphan: it has no participants, so
		// no lookup will ever return it. Left in place; not reconciled here.
		logger.Errorf("orphaned conversation %s after participant insert failure: %v", conv.ID, err)
		return "", false, fmt.Errorf("%w: %v", common.ErrResolutionFailed, err)
	}

	convLog := logger.WithConversationID(conv.ID)
	convLog.Info().
		Msgf("resolver: created conversation for pair %s", domain.PairKey(selfID, otherID))

	s.feed.PublishConversationChanged(&feed.ConversationEvent{
		ChatID:         conv.ID,
		ParticipantIDs: []string{selfID, otherID},
	})

	return conv.ID, true, nil
}
