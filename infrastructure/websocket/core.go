package websocket

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/billychen0894/spareTalk-chat-app/infrastructure/logger"
)

// RoomBroadcast is a frame addressed to every client in a room, optionally
// excluding the sender.
type RoomBroadcast struct {
	RoomID    string
	Message   *WSMessage
	ExcludeID string
}

type Core struct {
	roomMgr    *RoomManager
	register   chan *Client
	unregister chan *Client
	broadcast  chan *RoomBroadcast
	logger     *logger.Logger

	shutdown chan struct{}
	once     sync.Once
}

func NewCore(log *logger.Logger) *Core {
	return &Core{
		roomMgr:    NewRoomManager(),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *RoomBroadcast, 256),
		logger:     log,
		shutdown:   make(chan struct{}),
	}
}

func (c *Core) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("websocket core shutting down")
			c.Shutdown()
			return

		case <-c.shutdown:
			return

		case cl := <-c.register:
			c.roomMgr.AddClient(cl)

		case cl := <-c.unregister:
			c.roomMgr.RemoveClient(cl)

		case b := <-c.broadcast:
			if err := c.roomMgr.BroadcastToRoom(b.RoomID, b.Message, b.ExcludeID); err != nil {
				c.logger.Warn("broadcast failed",
					zap.String("chatRoomId", b.RoomID),
					zap.Error(err))
			}
		}
	}
}

func (c *Core) Rooms() *RoomManager {
	return c.roomMgr
}

func (c *Core) Register() chan<- *Client {
	return c.register
}

func (c *Core) Unregister() chan<- *Client {
	return c.unregister
}

func (c *Core) Broadcast() chan<- *RoomBroadcast {
	return c.broadcast
}

func (c *Core) Shutdown() {
	c.once.Do(func() {
		close(c.shutdown)
		c.roomMgr.DisconnectAll()
	})
}
