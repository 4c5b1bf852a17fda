package websocket

import (
	"encoding/json"

	"github.com/billychen0894/spareTalk-chat-app/domain/model"
)

// Envelope is the inbound frame. Every client-initiated event carries an
// eventId so the server can suppress retransmitted duplicates.
type Envelope struct {
	Event   string          `json:"event"`
	EventID string          `json:"eventId,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// WSMessage is the outbound frame.
type WSMessage struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type SessionPayload struct {
	SessionID  string `json:"sessionId"`
	ChatRoomID string `json:"chatRoomId,omitempty"`
}

type AckPayload struct {
	Status  string `json:"status"`
	EventID string `json:"eventId,omitempty"`
}

type ChatErrorPayload struct {
	Status    string         `json:"status"`
	ErrorCode int            `json:"errorCode"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details"`
}

func NewSessionEvent(sessionID, chatRoomID string) *WSMessage {
	return &WSMessage{
		Event: SessionEvent,
		Data: SessionPayload{
			SessionID:  sessionID,
			ChatRoomID: chatRoomID,
		},
	}
}

func NewChatRoomCreated(chatRoom *model.ChatRoom) *WSMessage {
	return &WSMessage{
		Event: ChatRoomCreated,
		Data:  chatRoom,
	}
}

func NewReceiveMessage(message *model.ChatMessage) *WSMessage {
	return &WSMessage{
		Event: ReceiveMessage,
		Data:  message,
	}
}

func NewLeftChat(sessionID string) *WSMessage {
	return &WSMessage{
		Event: LeftChat,
		Data:  sessionID,
	}
}

func NewChatHistory(messages []model.ChatMessage) *WSMessage {
	return &WSMessage{
		Event: ChatHistory,
		Data:  messages,
	}
}

func NewReceiveChatRoomSession(chatRoom *model.ChatRoom) *WSMessage {
	return &WSMessage{
		Event: ReceiveChatRoomSession,
		Data:  chatRoom,
	}
}

func NewMissedMessages(messages []model.ChatMessage) *WSMessage {
	return &WSMessage{
		Event: MissedMessages,
		Data:  messages,
	}
}

func NewInactiveChatRoom(chatRoom *model.ChatRoom) *WSMessage {
	return &WSMessage{
		Event: InactiveChatRoom,
		Data:  chatRoom,
	}
}

func NewChatError(errorCode int, message string, details map[string]any) *WSMessage {
	if details == nil {
		details = map[string]any{}
	}
	return &WSMessage{
		Event: ChatError,
		Data: ChatErrorPayload{
			Status:    "error",
			ErrorCode: errorCode,
			Message:   message,
			Details:   details,
		},
	}
}

func NewAck(eventID string) *WSMessage {
	return &WSMessage{
		Event: Ack,
		Data: AckPayload{
			Status:  "ok",
			EventID: eventID,
		},
	}
}
