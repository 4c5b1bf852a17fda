package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// EventHandler binds inbound frames to the orchestration layer. Each decoded
// envelope maps to exactly one handler call.
type EventHandler interface {
	HandleEvent(client *Client, envelope *Envelope)
	HandleDisconnect(client *Client)
}

// Client is one live connection. ID doubles as the session identifier, so a
// reconnecting user shows up as a new Client carrying the old ID.
type Client struct {
	conn    *connWrapper
	Message chan *WSMessage
	ID      string

	roomID string
	mu     sync.RWMutex

	closeOnce sync.Once
	closed    chan struct{}
}

func NewClient(conn *websocket.Conn, id, roomID string) *Client {
	return &Client{
		conn:    newConnWrapper(conn),
		Message: make(chan *WSMessage, 64),
		ID:      id,
		roomID:  roomID,
		closed:  make(chan struct{}),
	}
}

func (c *Client) RoomID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

func (c *Client) SetRoomID(roomID string) {
	c.mu.Lock()
	c.roomID = roomID
	c.mu.Unlock()
}

// Close signals shutdown and closes the connection. The Message channel is
// never closed: Send may race with Close, and a send on a closed channel
// panics, so closing is signalled through the closed channel instead.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

func (c *Client) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Send queues an outbound frame without blocking; a full buffer means the
// client is too slow and the frame is dropped.
func (c *Client) Send(msg *WSMessage) {
	if c.IsClosed() {
		return
	}

	select {
	case c.Message <- msg:
	default:
		log.Printf("client %s buffer full, dropping message", c.ID)
	}
}

func (c *Client) ReadPump(handler EventHandler) {
	defer func() {
		handler.HandleDisconnect(c)
		c.Close()
	}()

	_ = c.conn.conn.SetReadDeadline(time.Now().Add(60 * time.Second))

	c.conn.conn.SetPongHandler(func(string) error {
		_ = c.conn.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		select {
		case <-c.closed:
			return
		default:
		}

		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws read error (client %s): %v", c.ID, err)
			}
			return
		}

		if len(raw) == 0 {
			continue
		}

		if len(raw) > 32768 { // 32KB max frame size
			log.Printf("message too large from client %s: %d bytes", c.ID, len(raw))
			continue
		}

		var envelope Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			log.Printf("malformed frame from client %s: %v", c.ID, err)
			continue
		}

		if envelope.Event == "" {
			continue
		}

		handler.HandleEvent(c, &envelope)
	}
}

func (c *Client) WritePump() {
	defer c.Close()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.Message:
			_ = c.conn.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error (client %s): %v", c.ID, err)
				return
			}

		case <-ticker.C:
			_ = c.conn.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closed:
			_ = c.conn.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
