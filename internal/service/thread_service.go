package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fitlink/fitlink-backend/internal/common"
	"github.com/fitlink/fitlink-backend/internal/domain"
	"github.com/fitlink/fitlink-backend/internal/feed"
	"github.com/fitlink/fitlink-backend/internal/repository"
	"github.com/fitlink/fitlink-backend/pkg/logger"
)

// ThreadState is the lifecycle state of an open thread
type ThreadState string

// Thread states. Blocked is terminal for composing; Sending always returns
// to Ready.
const (
	StateUninitialized ThreadState = "uninitialized"
	StateResolving     ThreadState = "resolving"
	StateBlocked       ThreadState = "blocked"
	StateReady         ThreadState = "ready"
	StateSending       ThreadState = "sending"
)

// ThreadService opens per-conversation threads
type ThreadService interface {
	// Open resolves the target handle, evaluates the gate and loads any
	// existing history. The returned thread must be Closed by the caller.
	Open(ctx context.Context, selfID, targetUsername string) (*Thread, error)
}

type threadService struct {
	memberRepo repository.MemberRepository
	convRepo   repository.ConversationRepository
	msgRepo    repository.MessageRepository
	gate       GateService
	resolver   ResolverService
	feed       *feed.Feed
}

// NewThreadService creates a new ThreadService
func NewThreadService(
	memberRepo repository.MemberRepository,
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	gate GateService,
	resolver ResolverService,
	changeFeed *feed.Feed,
) ThreadService {
	return &threadService{
		memberRepo: memberRepo,
		convRepo:   convRepo,
		msgRepo:    msgRepo,
		gate:       gate,
		resolver:   resolver,
		feed:       changeFeed,
	}
}

func (s *threadService) Open(ctx context.Context, selfID, targetUsername string) (*Thread, error) {
	if selfID == "" {
		return nil, common.ErrUnauthorized
	}

	t := &Thread{
		svc:    s,
		selfID: selfID,
		state:  StateUninitialized,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateResolving

	other, err := s.memberRepo.FindByUsername(targetUsername)
	if err != nil {
		return nil, err
	}
	if other.ID == selfID {
		return nil, common.ErrSelfConversation
	}
	t.other = other

	verdict, err := s.gate.CanMessage(ctx, selfID, other.ID)
	if err != nil {
		// Fail closed: an unverifiable gate never permits composing. The
		// thread still resolves and shows history read-only; only sending
		// is refused, and with a distinct error so the caller does not
		// mistake a gate outage for an actual block.
		logger.Errorf("thread: gate check failed for %s -> %s: %v", selfID, other.ID, err)
		t.state = StateBlocked
		t.gateUnverified = true
		if chatID, rerr := s.resolver.ResolveExisting(selfID, other.ID); rerr == nil && chatID != "" {
			t.chatID = chatID
			t.loadHistoryLocked()
		}
		return t, nil
	}

	// Read-only lookup: no conversation is created before the first send
	chatID, err := s.resolver.ResolveExisting(selfID, other.ID)
	if err != nil {
		return nil, err
	}
	t.chatID = chatID

	if !verdict.Allowed {
		// History of an existing conversation stays visible read-only
		t.state = StateBlocked
		t.blockedBy = verdict.BlockedBy
		if chatID != "" {
			t.loadHistoryLocked()
		}
		return t, nil
	}

	t.state = StateReady
	if chatID != "" {
		t.loadHistoryLocked()
		t.subscribeLocked()
	}
	return t, nil
}

// Thread is the per-conversation state machine behind an open chat screen.
// All mutation happens under mu; the feed callback shares it, so a late
// event can never interleave with a send.
type Thread struct {
	svc            *threadService
	selfID         string
	other          *domain.Member
	chatID         string
	state          ThreadState
	blockedBy      string
	gateUnverified bool
	messages       []*domain.MessageResponse
	histErr        error
	sub            *feed.Subscription
	closed         bool

	mu sync.Mutex
}

// State returns the current state
func (t *Thread) State() ThreadState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// BlockedBy reports which side initiated the block ("blocked_by_self" or
// "blocked_by_other"), or "" when not blocked or the gate was unverifiable
func (t *Thread) BlockedBy() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.blockedBy
}

// ChatID returns the resolved conversation id, or "" before first send
func (t *Thread) ChatID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.chatID
}

// Participant returns the other member's public profile
func (t *Thread) Participant() *domain.MemberResponse {
	return t.other.ToResponse()
}

// Messages returns a snapshot of the local history, oldest first
func (t *Thread) Messages() []*domain.MessageResponse {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*domain.MessageResponse, len(t.messages))
	copy(out, t.messages)
	return out
}

// HistoryError reports a failed history load; Refresh retries it
func (t *Thread) HistoryError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.histErr
}

// Snapshot renders the thread for an API response
func (t *Thread) Snapshot() *domain.ThreadResponse {
	t.mu.Lock()
	defer t.mu.Unlock()
	msgs := make([]*domain.MessageResponse, len(t.messages))
	copy(msgs, t.messages)
	return &domain.ThreadResponse{
		ChatID:      t.chatID,
		Participant: t.other.ToResponse(),
		Messages:    msgs,
		State:       string(t.state),
		BlockedBy:   t.blockedBy,
	}
}

// Send stores a message and appends it locally once the store confirms.
// The gate is re-evaluated on every call; a verdict gone stale since Open
// must not let a message through.
func (t *Thread) Send(ctx context.Context, body string) (*domain.MessageResponse, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, common.ErrEmptyMessage
	}
	if len([]rune(body)) > domain.MaxMessageLength {
		return nil, common.ErrMessageTooLong
	}

	t.mu.Lock()

	switch t.state {
	case StateBlocked:
		t.mu.Unlock()
		return nil, t.blockedErrLocked()
	case StateReady:
		// proceed
	default:
		t.mu.Unlock()
		return nil, common.ErrSendFailed
	}

	t.state = StateSending

	verdict, err := t.svc.gate.CanMessage(ctx, t.selfID, t.other.ID)
	if err != nil {
		t.state = StateReady
		t.mu.Unlock()
		return nil, common.ErrGateUnavailable
	}
	if !verdict.Allowed {
		// Abort without sending; the compose box keeps its draft
		t.state = StateReady
		t.blockedBy = verdict.BlockedBy
		t.mu.Unlock()
		if verdict.BlockedBy == domain.GateBlockedBySelf {
			return nil, common.ErrBlockedBySelf
		}
		return nil, common.ErrBlockedByOther
	}

	created := false
	if t.chatID == "" {
		chatID, didCreate, err := t.svc.resolver.ResolveOrCreate(t.selfID, t.other.ID, body)
		if err != nil {
			t.state = StateReady
			t.mu.Unlock()
			return nil, err
		}
		t.chatID = chatID
		created = didCreate
		t.subscribeLocked()
	}

	msg, err := t.svc.msgRepo.Create(t.chatID, t.selfID, body)
	if err != nil {
		// Transient: the caller may retry with the same draft
		t.state = StateReady
		t.mu.Unlock()
		return nil, common.ErrSendFailed
	}

	if !created {
		// The message itself is durable; a stale preview is only a
		// cosmetic cache, so this failure is logged and swallowed
		if err := t.svc.convRepo.UpdatePreview(t.chatID, body); err != nil {
			logger.Warnf("thread: preview update failed for %s: %v", t.chatID, err)
		}
	}

	resp := msg.ToResponse()
	t.appendLocked(resp)
	t.state = StateReady

	chatID := t.chatID
	t.mu.Unlock()

	// Published outside the lock: dispatch is synchronous and the echo of
	// this event re-enters the thread via its own subscription
	t.svc.feed.PublishMessageInserted(&feed.MessageEvent{
		ChatID:      chatID,
		MessageID:   resp.ID,
		SenderID:    resp.SenderID,
		RecipientID: t.other.ID,
		Body:        resp.Body,
		CreatedAt:   resp.CreatedAt,
	})

	return resp, nil
}

// Refresh reloads history from the store
func (t *Thread) Refresh() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.chatID == "" {
		return nil
	}
	t.loadHistoryLocked()
	return t.histErr
}

// Close releases the thread's feed subscription. After Close returns no
// further local-state mutation occurs.
func (t *Thread) Close() {
	t.mu.Lock()
	t.closed = true
	sub := t.sub
	t.sub = nil
	t.mu.Unlock()

	// Cancelled outside the lock: an in-flight event callback needs the
	// lock to finish before Cancel can return
	if sub != nil {
		sub.Cancel()
	}
}

func (t *Thread) blockedErrLocked() error {
	if t.gateUnverified {
		return common.ErrGateUnavailable
	}
	if t.blockedBy == domain.GateBlockedBySelf {
		return common.ErrBlockedBySelf
	}
	return common.ErrBlockedByOther
}

func (t *Thread) loadHistoryLocked() {
	msgs, err := t.svc.msgRepo.FindByChat(t.chatID)
	if err != nil {
		t.histErr = common.ErrHistoryLoadFailed
		return
	}
	t.histErr = nil
	t.messages = t.messages[:0]
	for _, m := range msgs {
		t.messages = append(t.messages, m.ToResponse())
	}
}

func (t *Thread) subscribeLocked() {
	if t.sub != nil || t.chatID == "" {
		return
	}
	t.sub = t.svc.feed.SubscribeMessages(t.chatID, t.onMessageInserted)
}

// onMessageInserted reconciles a push event against local state. The same
// message can arrive via history load, the local send echo and the feed;
// the id is the dedupe key.
func (t *Thread) onMessageInserted(ev *feed.MessageEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || ev.ChatID != t.chatID {
		return
	}
	t.appendLocked(&domain.MessageResponse{
		ID:        ev.MessageID,
		ChatID:    ev.ChatID,
		SenderID:  ev.SenderID,
		Body:      ev.Body,
		CreatedAt: ev.CreatedAt,
	})
}

// appendLocked inserts a message if unseen and restores creation-time order
func (t *Thread) appendLocked(msg *domain.MessageResponse) {
	for _, existing := range t.messages {
		if existing.ID == msg.ID {
			return
		}
	}
	t.messages = append(t.messages, msg)
	sort.SliceStable(t.messages, func(i, j int) bool {
		if t.messages[i].CreatedAt.Equal(t.messages[j].CreatedAt) {
			return t.messages[i].ID < t.messages[j].ID
		}
		return t.messages[i].CreatedAt.Before(t.messages[j].CreatedAt)
	})
}
