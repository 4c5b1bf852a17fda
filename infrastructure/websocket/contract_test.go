package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billychen0894/spareTalk-chat-app/domain/model"
)

func TestEnvelopeDecode(t *testing.T) {
	raw := []byte(`{"event":"send-message","eventId":"evt-1","data":{"chatRoomId":"room-1"}}`)

	var envelope Envelope
	require.NoError(t, json.Unmarshal(raw, &envelope))

	assert.Equal(t, "send-message", envelope.Event)
	assert.Equal(t, "evt-1", envelope.EventID)
	assert.JSONEq(t, `{"chatRoomId":"room-1"}`, string(envelope.Data))
}

func TestEnvelopeDecode_MissingEventID(t *testing.T) {
	var envelope Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"event":"start-chat"}`), &envelope))

	assert.Equal(t, "start-chat", envelope.Event)
	assert.Empty(t, envelope.EventID)
	assert.Nil(t, envelope.Data)
}

func TestNewSessionEvent_Serialization(t *testing.T) {
	msg := NewSessionEvent("session-1", "room-1")

	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"session","data":{"sessionId":"session-1","chatRoomId":"room-1"}}`, string(raw))
}

func TestNewSessionEvent_OmitsEmptyChatRoom(t *testing.T) {
	raw, err := json.Marshal(NewSessionEvent("session-1", ""))
	require.NoError(t, err)

	assert.JSONEq(t, `{"event":"session","data":{"sessionId":"session-1"}}`, string(raw))
}

func TestNewReceiveChatRoomSession_NilRoomEncodesNull(t *testing.T) {
	raw, err := json.Marshal(NewReceiveChatRoomSession(nil))
	require.NoError(t, err)

	assert.JSONEq(t, `{"event":"receive-chatRoom-session","data":null}`, string(raw))
}

func TestNewChatError_DefaultsDetails(t *testing.T) {
	msg := NewChatError(500, "A Redis error occurred", nil)

	payload, ok := msg.Data.(ChatErrorPayload)
	require.True(t, ok)
	assert.Equal(t, "error", payload.Status)
	assert.Equal(t, 500, payload.ErrorCode)
	assert.NotNil(t, payload.Details, "details must serialize as {} rather than null")
}

func TestNewAck_CarriesEventID(t *testing.T) {
	raw, err := json.Marshal(NewAck("evt-1"))
	require.NoError(t, err)

	assert.JSONEq(t, `{"event":"ack","data":{"status":"ok","eventId":"evt-1"}}`, string(raw))
}

func TestNewChatRoomCreated_CarriesRoom(t *testing.T) {
	room := &model.ChatRoom{
		ID:           "room-1",
		State:        model.RoomStateOccupied,
		Participants: []string{"user-1", "user-2"},
	}

	raw, err := json.Marshal(NewChatRoomCreated(room))
	require.NoError(t, err)

	assert.JSONEq(t, `{"event":"chatRoom-created","data":{"id":"room-1","state":"occupied","participants":["user-1","user-2"]}}`, string(raw))
}

// The frontend switches on these names; they are part of the wire contract.
func TestOutboundEventNames(t *testing.T) {
	assert.Equal(t, "session", SessionEvent)
	assert.Equal(t, "chatRoom-created", ChatRoomCreated)
	assert.Equal(t, "receive-message", ReceiveMessage)
	assert.Equal(t, "left-chat", LeftChat)
	assert.Equal(t, "chat-history", ChatHistory)
	assert.Equal(t, "receive-chatRoom-session", ReceiveChatRoomSession)
	assert.Equal(t, "missed-messages", MissedMessages)
	assert.Equal(t, "inactive-chatRoom", InactiveChatRoom)
	assert.Equal(t, "chat-error", ChatError)
	assert.Equal(t, "ack", Ack)
}
