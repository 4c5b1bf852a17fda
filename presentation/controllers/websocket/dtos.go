package websocket

import "github.com/billychen0894/spareTalk-chat-app/domain/model"

type StartChatData struct {
	UserID string `json:"userId"`
}

type SendMessageData struct {
	ChatRoomID string            `json:"chatRoomId"`
	Message    model.ChatMessage `json:"message"`
}

type LeaveChatData struct {
	ChatRoomID string `json:"chatRoomId"`
}

type RetrieveChatMessagesData struct {
	ChatRoomID string `json:"chatRoomId"`
}

type CheckChatRoomSessionData struct {
	ChatRoomID string `json:"chatRoomId"`
	SessionID  string `json:"sessionId"`
}
