package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(id, roomID string) *Client {
	return &Client{
		Message: make(chan *WSMessage, 64),
		ID:      id,
		roomID:  roomID,
		closed:  make(chan struct{}),
	}
}

func TestAddClient_IndexesByIDAndRoom(t *testing.T) {
	rm := NewRoomManager()
	cl := newTestClient("session-1", "room-1")

	rm.AddClient(cl)

	got, ok := rm.GetClient("session-1")
	require.True(t, ok)
	assert.Same(t, cl, got)
	assert.Equal(t, 1, rm.RoomSize("room-1"))
}

func TestJoinRoom_MovesClientBetweenRooms(t *testing.T) {
	rm := NewRoomManager()
	cl := newTestClient("session-1", "room-1")
	rm.AddClient(cl)

	rm.JoinRoom(cl, "room-2")

	assert.Equal(t, 0, rm.RoomSize("room-1"))
	assert.Equal(t, 1, rm.RoomSize("room-2"))
	assert.Equal(t, "room-2", cl.RoomID())
}

func TestLeaveRoom_ClearsRoomAssignment(t *testing.T) {
	rm := NewRoomManager()
	cl := newTestClient("session-1", "room-1")
	rm.AddClient(cl)

	rm.LeaveRoom(cl)

	assert.Equal(t, 0, rm.RoomSize("room-1"))
	assert.Empty(t, cl.RoomID())

	_, ok := rm.GetClient("session-1")
	assert.True(t, ok, "leaving a room must not disconnect the client")
}

func TestBroadcastToRoom_ExcludesSender(t *testing.T) {
	rm := NewRoomManager()
	sender := newTestClient("session-1", "room-1")
	receiver := newTestClient("session-2", "room-1")
	rm.AddClient(sender)
	rm.AddClient(receiver)

	msg := &WSMessage{Event: ReceiveMessage}
	require.NoError(t, rm.BroadcastToRoom("room-1", msg, "session-1"))

	select {
	case got := <-receiver.Message:
		assert.Same(t, msg, got)
	default:
		t.Fatal("receiver should have gotten the broadcast")
	}

	select {
	case <-sender.Message:
		t.Fatal("sender must not receive its own broadcast")
	default:
	}
}

func TestBroadcastToRoom_UnknownRoom(t *testing.T) {
	rm := NewRoomManager()

	err := rm.BroadcastToRoom("missing", &WSMessage{Event: ChatHistory}, "")

	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestSendToClient_DeliversFrame(t *testing.T) {
	rm := NewRoomManager()
	cl := newTestClient("session-1", "")
	rm.AddClient(cl)

	msg := &WSMessage{Event: ChatRoomCreated}
	require.NoError(t, rm.SendToClient("session-1", msg))

	select {
	case got := <-cl.Message:
		assert.Same(t, msg, got)
	default:
		t.Fatal("client should have gotten the frame")
	}
}

func TestSendToClient_UnknownClient(t *testing.T) {
	rm := NewRoomManager()

	err := rm.SendToClient("missing", &WSMessage{Event: SessionEvent})

	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestSend_DropsWhenBufferFull(t *testing.T) {
	cl := &Client{
		Message: make(chan *WSMessage, 1),
		ID:      "session-1",
		closed:  make(chan struct{}),
	}

	cl.Send(&WSMessage{Event: ReceiveMessage})
	cl.Send(&WSMessage{Event: ReceiveMessage}) // dropped, must not block

	assert.Len(t, cl.Message, 1)
}
