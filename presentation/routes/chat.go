package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/billychen0894/spareTalk-chat-app/presentation/controllers/chat"
)

func ChatRoutes(router *gin.RouterGroup, controller chat.ChatController) {
	chats := router.Group("/chats")
	{
		chats.GET("/:chatRoomId", controller.GetChatRoomByID)
	}
}
