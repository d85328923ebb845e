package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPubSubChannel = "chat_events"

// allChats is the wildcard subscription key
const allChats = "*"

// Event kinds carried over the feed
const (
	KindMessageInserted     = "message_inserted"
	KindConversationChanged = "conversation_changed"
)

// MessageEvent is a row-level insert notification for a chat message.
// RecipientID lets push transports route the event without a participant
// lookup.
type MessageEvent struct {
	CreatedAt   time.Time `json:"created_at"`
	ChatID      string    `json:"chat_id"`
	MessageID   string    `json:"message_id"`
	SenderID    string    `json:"sender_id"`
	RecipientID string    `json:"recipient_id"`
	Body        string    `json:"message"`
}

// ConversationEvent is a change notification for a conversation row
type ConversationEvent struct {
	ChatID         string   `json:"chat_id"`
	ParticipantIDs []string `json:"participant_ids,omitempty"`
}

// Subscription is a live feed registration. Cancel releases it; after Cancel
// returns, the callback is never invoked again.
type Subscription struct {
	mu     sync.Mutex
	closed bool
	remove func()
}

// Cancel releases the subscription. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.remove()
}

// deliver runs fn unless the subscription has been cancelled. Holding the
// lock across the callback makes Cancel a barrier: once it returns, no
// callback is running or will run.
func (s *Subscription) deliver(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	fn()
}

type messageSub struct {
	sub *Subscription
	fn  func(*MessageEvent)
}

type conversationSub struct {
	sub *Subscription
	fn  func(*ConversationEvent)
}

// Feed dispatches row-level chat change events to in-process subscribers and
// fans them out across instances via Redis pub/sub. A nil Redis client keeps
// the feed fully functional within a single instance.
type Feed struct {
	mu          sync.RWMutex
	messageSubs map[string]map[*messageSub]bool // keyed by chat id
	convSubs    map[*conversationSub]bool

	redisClient *redis.Client
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewFeed creates a new Feed
func NewFeed(redisClient *redis.Client) *Feed {
	ctx, cancel := context.WithCancel(context.Background())
	return &Feed{
		messageSubs: make(map[string]map[*messageSub]bool),
		convSubs:    make(map[*conversationSub]bool),
		redisClient: redisClient,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Run starts the cross-instance Redis subscriber. Blocks until Stop.
func (f *Feed) Run() {
	if f.redisClient == nil {
		<-f.ctx.Done()
		return
	}

	pubsub := f.redisClient.Subscribe(f.ctx, redisPubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				continue
			}
			// Local dispatch only; never re-publish what arrived via Redis
			f.dispatch(&env)
		case <-f.ctx.Done():
			return
		}
	}
}

// Stop shuts the feed down
func (f *Feed) Stop() {
	f.cancel()
}

// SubscribeMessages registers a callback for message inserts in one
// conversation
func (f *Feed) SubscribeMessages(chatID string, fn func(*MessageEvent)) *Subscription {
	ms := &messageSub{fn: fn}
	ms.sub = &Subscription{remove: func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if subs, ok := f.messageSubs[chatID]; ok {
			delete(subs, ms)
			if len(subs) == 0 {
				delete(f.messageSubs, chatID)
			}
		}
	}}

	f.mu.Lock()
	if f.messageSubs[chatID] == nil {
		f.messageSubs[chatID] = make(map[*messageSub]bool)
	}
	f.messageSubs[chatID][ms] = true
	f.mu.Unlock()

	return ms.sub
}

// SubscribeAllMessages registers a callback for message inserts in every
// conversation. Used by inbox views, which span conversations.
func (f *Feed) SubscribeAllMessages(fn func(*MessageEvent)) *Subscription {
	return f.SubscribeMessages(allChats, fn)
}

// SubscribeConversations registers a callback for conversation-level changes
func (f *Feed) SubscribeConversations(fn func(*ConversationEvent)) *Subscription {
	cs := &conversationSub{fn: fn}
	cs.sub = &Subscription{remove: func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.convSubs, cs)
	}}

	f.mu.Lock()
	f.convSubs[cs] = true
	f.mu.Unlock()

	return cs.sub
}

// PublishMessageInserted notifies subscribers of a stored message
func (f *Feed) PublishMessageInserted(ev *MessageEvent) {
	env := &envelope{Kind: KindMessageInserted, Message: ev}
	f.dispatch(env)
	f.publishRedis(env)
}

// PublishConversationChanged notifies subscribers of a conversation change
func (f *Feed) PublishConversationChanged(ev *ConversationEvent) {
	env := &envelope{Kind: KindConversationChanged, Conversation: ev}
	f.dispatch(env)
	f.publishRedis(env)
}

type envelope struct {
	Kind         string             `json:"kind"`
	Message      *MessageEvent      `json:"message,omitempty"`
	Conversation *ConversationEvent `json:"conversation,omitempty"`
}

func (f *Feed) dispatch(env *envelope) {
	switch env.Kind {
	case KindMessageInserted:
		if env.Message == nil {
			return
		}
		f.mu.RLock()
		targets := make([]*messageSub, 0, len(f.messageSubs[env.Message.ChatID])+len(f.messageSubs[allChats]))
		for ms := range f.messageSubs[env.Message.ChatID] {
			targets = append(targets, ms)
		}
		for ms := range f.messageSubs[allChats] {
			targets = append(targets, ms)
		}
		f.mu.RUnlock()
		for _, ms := range targets {
			ev := env.Message
			ms.sub.deliver(func() { ms.fn(ev) })
		}
	case KindConversationChanged:
		if env.Conversation == nil {
			return
		}
		f.mu.RLock()
		targets := make([]*conversationSub, 0, len(f.convSubs))
		for cs := range f.convSubs {
			targets = append(targets, cs)
		}
		f.mu.RUnlock()
		for _, cs := range targets {
			ev := env.Conversation
			cs.sub.deliver(func() { cs.fn(ev) })
		}
	}
}

func (f *Feed) publishRedis(env *envelope) {
	if f.redisClient == nil {
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	f.redisClient.Publish(f.ctx, redisPubSubChannel, data) //nolint:errcheck
}
