package chat

import "github.com/billychen0894/spareTalk-chat-app/domain/model"

type ChatRoomResponse struct {
	Data *model.ChatRoom `json:"data"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
