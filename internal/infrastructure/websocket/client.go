package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is one live event-channel session. SessionID tags the connection so
// a late disconnect from a replaced session cannot unregister its successor.
type Client struct {
	SessionID string
	UserID    string
	Conn      *websocket.Conn
	Send      chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		SessionID: uuid.New().String(),
		UserID:    userID,
		Conn:      conn,
		Send:      make(chan []byte, 256),
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// trySend enqueues a payload without blocking. It reports false once the
// session is closed or its buffer is full.
func (c *Client) trySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// ReadPump consumes join/leave commands until the connection drops, then
// unregisters the session.
func (c *Client) ReadPump(h *Hub) {
	defer func() {
		h.Unregister(c)
		c.Conn.Close()
	}()

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket: read error for user %s: %v", c.UserID, err)
			}
			break
		}

		var cmd clientCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			log.Printf("WebSocket: invalid command from user %s: %v", c.UserID, err)
			continue
		}

		switch cmd.Type {
		case CommandJoinRoom:
			if cmd.RoomID != "" {
				h.JoinRoom(context.Background(), c, cmd.RoomID)
			}
		case CommandLeaveRoom:
			if cmd.RoomID != "" {
				h.LeaveRoom(context.Background(), c, cmd.RoomID)
			}
		default:
			log.Printf("WebSocket: unknown command type %q from user %s", cmd.Type, c.UserID)
		}
	}
}

// WritePump drains the send channel onto the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket: write error for user %s: %v", c.UserID, err)
			return
		}
	}
}
