package ws

import (
	"time"

	"github.com/fitlink/fitlink-backend/pkg/logger"
	"github.com/gorilla/websocket"
)

const (
	// Deadline for a single outbound frame
	writeTimeout = 10 * time.Second

	// Connection is dropped when no pong arrives within this window
	pongTimeout  = 60 * time.Second
	pingInterval = (pongTimeout * 9) / 10

	// The chat stream is server-push; clients send through the REST API.
	// The read limit only needs to fit control frames and stray noise.
	inboundLimit = 512
)

// Client is one member's WebSocket connection to the chat event stream
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	memberID string
}

// NewClient creates a client for a connected member
func NewClient(hub *Hub, conn *websocket.Conn, memberID string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		memberID: memberID,
	}
}

// ReadPump drains the connection for pong and close handling. Data frames
// are discarded: messages travel over REST, the socket only pushes events.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(inboundLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongTimeout)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongTimeout)) //nolint:errcheck
		return nil
	})

	warned := false
	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warnf("ws: connection for member %s closed unexpectedly: %v", c.memberID, err)
			}
			break
		}
		if !warned {
			// Logged once per connection; a chatty client does not get to
			// fill the logs
			logger.Warnf("ws: discarding inbound frame from member %s on push-only stream", c.memberID)
			warned = true
		}
	}
}

// WritePump forwards hub events to the connection and keeps it alive with
// pings. One writer goroutine per connection; the hub never writes directly.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			if !ok {
				// Hub closed the channel: the member was unregistered
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(event) //nolint:errcheck
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
