package ws

import (
	"encoding/json"
	"sync"

	"github.com/fitlink/fitlink-backend/internal/feed"
)

// Event is a realtime notification pushed to a connected client
type Event struct {
	Type    string      `json:"type"`    // "message_inserted", "conversation_changed"
	Payload interface{} `json:"payload"` // event-specific data
}

// Hub manages WebSocket clients and forwards change-feed events to the
// members they concern
type Hub struct {
	// Registered clients grouped by member ID
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	// Targeted push to a specific member
	push chan *targetedEvent

	msgSub  *feed.Subscription
	convSub *feed.Subscription

	mu   sync.RWMutex
	done chan struct{}
	once sync.Once
}

type targetedEvent struct {
	MemberID string
	Event    *Event
}

// NewHub creates a new Hub wired to the change feed. Feed subscriptions
// are taken here, before Run's goroutine exists, so Stop can cancel them
// without racing the loop.
func NewHub(changeFeed *feed.Feed) *Hub {
	h := &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		push:       make(chan *targetedEvent, 256),
		done:       make(chan struct{}),
	}
	h.msgSub = changeFeed.SubscribeAllMessages(h.onMessageInserted)
	h.convSub = changeFeed.SubscribeConversations(h.onConversationChanged)
	return h
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.memberID] == nil {
				h.clients[client.memberID] = make(map[*Client]bool)
			}
			h.clients[client.memberID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.memberID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.memberID)
					}
				}
			}
			h.mu.Unlock()

		case msg := <-h.push:
			h.mu.RLock()
			if clients, ok := h.clients[msg.MemberID]; ok {
				data, err := json.Marshal(msg.Event)
				if err == nil {
					for client := range clients {
						select {
						case client.send <- data:
						default:
							close(client.send)
							delete(clients, client)
						}
					}
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			return
		}
	}
}

// Stop gracefully shuts down the hub
func (h *Hub) Stop() {
	h.once.Do(func() {
		h.msgSub.Cancel()
		h.convSub.Cancel()
		close(h.done)
	})
}

// onMessageInserted pushes a message event to both ends of the conversation
func (h *Hub) onMessageInserted(ev *feed.MessageEvent) {
	event := &Event{Type: feed.KindMessageInserted, Payload: ev}
	h.sendToMember(ev.SenderID, event)
	h.sendToMember(ev.RecipientID, event)
}

// onConversationChanged pushes a conversation event to its participants
func (h *Hub) onConversationChanged(ev *feed.ConversationEvent) {
	event := &Event{Type: feed.KindConversationChanged, Payload: ev}
	for _, memberID := range ev.ParticipantIDs {
		h.sendToMember(memberID, event)
	}
}

func (h *Hub) sendToMember(memberID string, event *Event) {
	if memberID == "" {
		return
	}
	select {
	case h.push <- &targetedEvent{MemberID: memberID, Event: event}:
	case <-h.done:
	}
}
