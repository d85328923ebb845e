package service

import (
	"sort"
	"sync"

	"github.com/fitlink/fitlink-backend/internal/domain"
	"github.com/fitlink/fitlink-backend/internal/feed"
	"github.com/fitlink/fitlink-backend/internal/repository"
	"github.com/fitlink/fitlink-backend/pkg/logger"
)

// PreviewPlaceholder is shown for a conversation with no messages and no
// denormalized preview
const PreviewPlaceholder = "No messages yet"

// InboxService builds the conversation list: one entry per conversation the
// member belongs to, annotated with the other participant and the most
// recent message
type InboxService interface {
	// BuildInbox returns the member's inbox entries, newest activity first.
	// Conversations with a blocked counterpart (either direction) are
	// excluded.
	BuildInbox(selfID string) ([]*domain.ChatPreview, error)

	// OpenView returns a live inbox kept current by the change feed.
	// Callers own the view and must Close it.
	OpenView(selfID string) (*InboxView, error)
}

type inboxService struct {
	convRepo   repository.ConversationRepository
	msgRepo    repository.MessageRepository
	memberRepo repository.MemberRepository
	blockRepo  repository.BlockRepository
	feed       *feed.Feed
}

// NewInboxService creates a new InboxService
func NewInboxService(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	memberRepo repository.MemberRepository,
	blockRepo repository.BlockRepository,
	changeFeed *feed.Feed,
) InboxService {
	return &inboxService{
		convRepo:   convRepo,
		msgRepo:    msgRepo,
		memberRepo: memberRepo,
		blockRepo:  blockRepo,
		feed:       changeFeed,
	}
}

func (s *inboxService) BuildInbox(selfID string) ([]*domain.ChatPreview, error) {
	convs, err := s.convRepo.FindConversationsForUser(selfID)
	if err != nil {
		return nil, err
	}

	// The block filter is re-applied on every build, not just the first
	excluded, err := s.excludedUserIDs(selfID)
	if err != nil {
		return nil, err
	}

	type row struct {
		conv    *domain.Conversation
		otherID string
	}
	rows := make([]row, 0, len(convs))
	otherIDs := make([]string, 0, len(convs))
	for _, conv := range convs {
		otherID, err := s.convRepo.FindOtherParticipantID(conv.ID, selfID)
		if err != nil {
			logger.Warnf("inbox: no counterpart for conversation %s: %v", conv.ID, err)
			continue
		}
		if excluded[otherID] {
			continue
		}
		rows = append(rows, row{conv: conv, otherID: otherID})
		otherIDs = append(otherIDs, otherID)
	}

	members, err := s.memberRepo.FindByIDs(otherIDs)
	if err != nil {
		return nil, err
	}
	profiles := make(map[string]*domain.Member, len(members))
	for _, m := range members {
		profiles[m.ID] = m
	}

	entries := make([]*domain.ChatPreview, 0, len(rows))
	for _, r := range rows {
		profile, ok := profiles[r.otherID]
		if !ok {
			logger.Warnf("inbox: missing profile %s for conversation %s", r.otherID, r.conv.ID)
			continue
		}

		entry := &domain.ChatPreview{
			ChatID:      r.conv.ID,
			Participant: profile.ToResponse(),
			Preview:     r.conv.LastMessage,
			UpdatedAt:   r.conv.CreatedAt,
		}

		// A failure fetching one conversation's latest message degrades
		// that entry to the denormalized preview, never the whole list
		latest, err := s.msgRepo.FindLatestByChat(r.conv.ID)
		if err != nil {
			logger.Warnf("inbox: latest message fetch failed for %s: %v", r.conv.ID, err)
		} else if latest != nil {
			entry.Preview = latest.Body
			entry.UpdatedAt = latest.CreatedAt
		}
		if entry.Preview == "" {
			entry.Preview = PreviewPlaceholder
		}

		entries = append(entries, entry)
	}

	sortInbox(entries)
	return entries, nil
}

// excludedUserIDs collects counterparts blocked in either direction
func (s *inboxService) excludedUserIDs(selfID string) (map[string]bool, error) {
	blocked, err := s.blockRepo.GetBlockedUserIDs(selfID)
	if err != nil {
		return nil, err
	}
	blocking, err := s.blockRepo.GetBlockingUserIDs(selfID)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(blocked)+len(blocking))
	for _, id := range blocked {
		excluded[id] = true
	}
	for _, id := range blocking {
		excluded[id] = true
	}
	return excluded, nil
}

func sortInbox(entries []*domain.ChatPreview) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
}

func (s *inboxService) OpenView(selfID string) (*InboxView, error) {
	entries, err := s.BuildInbox(selfID)
	if err != nil {
		return nil, err
	}

	view := &InboxView{
		svc:     s,
		selfID:  selfID,
		entries: entries,
	}
	view.msgSub = s.feed.SubscribeAllMessages(view.onMessageInserted)
	view.convSub = s.feed.SubscribeConversations(view.onConversationChanged)
	return view, nil
}

// InboxView is a live inbox. Message-insert events update the matching entry
// in place and re-sort; conversation-level events trigger a full rebuild,
// which also re-applies the block filter.
type InboxView struct {
	mu      sync.Mutex
	svc     *inboxService
	selfID  string
	entries []*domain.ChatPreview
	msgSub  *feed.Subscription
	convSub *feed.Subscription
}

// Entries returns a snapshot of the current inbox
func (v *InboxView) Entries() []*domain.ChatPreview {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]*domain.ChatPreview, len(v.entries))
	copy(out, v.entries)
	return out
}

// Refresh rebuilds the inbox from the store
func (v *InboxView) Refresh() error {
	entries, err := v.svc.BuildInbox(v.selfID)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.entries = entries
	v.mu.Unlock()
	return nil
}

// Close releases the view's feed subscriptions. No entry mutation happens
// after Close returns.
func (v *InboxView) Close() {
	v.msgSub.Cancel()
	v.convSub.Cancel()
}

func (v *InboxView) onMessageInserted(ev *feed.MessageEvent) {
	v.mu.Lock()
	defer v.mu.Unlock()

	// Entries absent from the list are either filtered (blocked counterpart)
	// or unknown conversations; the latter surface via a conversation event
	for _, entry := range v.entries {
		if entry.ChatID == ev.ChatID {
			entry.Preview = ev.Body
			entry.UpdatedAt = ev.CreatedAt
			sortInbox(v.entries)
			return
		}
	}
}

func (v *InboxView) onConversationChanged(_ *feed.ConversationEvent) {
	// Conversation-level changes are rare; a full rebuild keeps this simple
	if err := v.Refresh(); err != nil {
		logger.Warnf("inbox: reload after conversation change failed: %v", err)
	}
}
