package websocket

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrClientNotFound = errors.New("client not found")

	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
)

// RoomManager is the per-instance fanout index: which connections are live
// and which room each one is in. Durable room state lives in the store, not
// here.
type RoomManager struct {
	clients map[string]*Client
	rooms   map[string]map[string]*Client
	mu      sync.RWMutex
}

func NewRoomManager() *RoomManager {
	return &RoomManager{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
	}
}

func (rm *RoomManager) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (rm *RoomManager) AddClient(cl *Client) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.clients[cl.ID] = cl

	if roomID := cl.RoomID(); roomID != "" {
		rm.joinLocked(cl, roomID)
	}
}

func (rm *RoomManager) RemoveClient(cl *Client) {
	rm.mu.Lock()

	if existing, ok := rm.clients[cl.ID]; ok && existing == cl {
		delete(rm.clients, cl.ID)
	}
	rm.leaveLocked(cl)

	rm.mu.Unlock()

	cl.Close()
}

// JoinRoom moves the client into roomID, leaving any previous room first.
func (rm *RoomManager) JoinRoom(cl *Client, roomID string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.leaveLocked(cl)
	cl.SetRoomID(roomID)
	rm.joinLocked(cl, roomID)
}

func (rm *RoomManager) LeaveRoom(cl *Client) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.leaveLocked(cl)
	cl.SetRoomID("")
}

func (rm *RoomManager) joinLocked(cl *Client, roomID string) {
	room, ok := rm.rooms[roomID]
	if !ok {
		room = make(map[string]*Client)
		rm.rooms[roomID] = room
	}
	room[cl.ID] = cl
}

func (rm *RoomManager) leaveLocked(cl *Client) {
	roomID := cl.RoomID()
	if roomID == "" {
		return
	}

	room, ok := rm.rooms[roomID]
	if !ok {
		return
	}

	delete(room, cl.ID)
	if len(room) == 0 {
		delete(rm.rooms, roomID)
	}
}

func (rm *RoomManager) GetClient(clientID string) (*Client, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	cl, ok := rm.clients[clientID]
	return cl, ok
}

// SendToClient delivers a frame to one connection, when it is on this
// instance.
func (rm *RoomManager) SendToClient(clientID string, msg *WSMessage) error {
	cl, ok := rm.GetClient(clientID)
	if !ok {
		return ErrClientNotFound
	}

	cl.Send(msg)
	return nil
}

// BroadcastToRoom fans a frame out to every connection in the room except
// excludeID (pass "" to include everyone).
func (rm *RoomManager) BroadcastToRoom(roomID string, msg *WSMessage, excludeID string) error {
	rm.mu.RLock()
	room, ok := rm.rooms[roomID]
	if !ok {
		rm.mu.RUnlock()
		return ErrRoomNotFound
	}

	clients := make([]*Client, 0, len(room))
	for _, cl := range room {
		clients = append(clients, cl)
	}
	rm.mu.RUnlock()

	for _, cl := range clients {
		if cl.ID == excludeID || cl.IsClosed() {
			continue
		}
		cl.Send(msg)
	}

	return nil
}

func (rm *RoomManager) DisconnectAll() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for _, cl := range rm.clients {
		cl.Close()
	}

	rm.clients = make(map[string]*Client)
	rm.rooms = make(map[string]map[string]*Client)
}

func (rm *RoomManager) RoomSize(roomID string) int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	return len(rm.rooms[roomID])
}
