package feed

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFeed_SubscribeMessages(t *testing.T) {
	f := NewFeed(nil)

	var got []*MessageEvent
	sub := f.SubscribeMessages("chat-1", func(ev *MessageEvent) {
		got = append(got, ev)
	})
	defer sub.Cancel()

	f.PublishMessageInserted(&MessageEvent{ChatID: "chat-1", MessageID: "m-1"})
	f.PublishMessageInserted(&MessageEvent{ChatID: "chat-2", MessageID: "m-2"})

	// Only the subscribed conversation is delivered
	if assert.Len(t, got, 1) {
		assert.Equal(t, "m-1", got[0].MessageID)
	}
}

func TestFeed_SubscribeAllMessages(t *testing.T) {
	f := NewFeed(nil)

	var got []string
	sub := f.SubscribeAllMessages(func(ev *MessageEvent) {
		got = append(got, ev.MessageID)
	})
	defer sub.Cancel()

	f.PublishMessageInserted(&MessageEvent{ChatID: "chat-1", MessageID: "m-1"})
	f.PublishMessageInserted(&MessageEvent{ChatID: "chat-2", MessageID: "m-2"})

	assert.Equal(t, []string{"m-1", "m-2"}, got)
}

func TestFeed_SubscribeConversations(t *testing.T) {
	f := NewFeed(nil)

	var got *ConversationEvent
	sub := f.SubscribeConversations(func(ev *ConversationEvent) {
		got = ev
	})
	defer sub.Cancel()

	f.PublishConversationChanged(&ConversationEvent{ChatID: "chat-1", ParticipantIDs: []string{"a", "b"}})

	if assert.NotNil(t, got) {
		assert.Equal(t, "chat-1", got.ChatID)
	}
}

func TestFeed_CancelStopsDelivery(t *testing.T) {
	f := NewFeed(nil)

	count := 0
	sub := f.SubscribeMessages("chat-1", func(*MessageEvent) { count++ })

	f.PublishMessageInserted(&MessageEvent{ChatID: "chat-1", MessageID: "m-1"})
	sub.Cancel()
	f.PublishMessageInserted(&MessageEvent{ChatID: "chat-1", MessageID: "m-2"})

	assert.Equal(t, 1, count)
}

func TestFeed_CancelIdempotent(t *testing.T) {
	f := NewFeed(nil)

	sub := f.SubscribeMessages("chat-1", func(*MessageEvent) {})
	sub.Cancel()
	assert.NotPanics(t, func() { sub.Cancel() })
}

// Cancel must be a barrier: once it returns, the callback is never invoked
// again, even with publishers racing on other goroutines.
func TestFeed_CancelBarrier(t *testing.T) {
	f := NewFeed(nil)

	var mu sync.Mutex
	cancelled := false

	sub := f.SubscribeMessages("chat-1", func(*MessageEvent) {
		mu.Lock()
		defer mu.Unlock()
		assert.False(t, cancelled, "callback ran after Cancel returned")
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			f.PublishMessageInserted(&MessageEvent{ChatID: "chat-1", MessageID: "m"})
		}
	}()

	time.Sleep(time.Millisecond)
	sub.Cancel()
	mu.Lock()
	cancelled = true
	mu.Unlock()

	<-done
}

func TestFeed_MultipleSubscribersSameChat(t *testing.T) {
	f := NewFeed(nil)

	a, b := 0, 0
	subA := f.SubscribeMessages("chat-1", func(*MessageEvent) { a++ })
	subB := f.SubscribeMessages("chat-1", func(*MessageEvent) { b++ })
	defer subA.Cancel()
	defer subB.Cancel()

	f.PublishMessageInserted(&MessageEvent{ChatID: "chat-1", MessageID: "m-1"})

	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
}

func TestFeed_StopUnblocksRun(t *testing.T) {
	f := NewFeed(nil)

	done := make(chan struct{})
	go func() {
		f.Run()
		close(done)
	}()

	f.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}
