package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/billychen0894/spareTalk-chat-app/presentation/controllers/websocket"
)

func WebsocketRoutes(router *gin.RouterGroup, controller *websocket.ChatSocketController) {
	router.GET("/chat", controller.HandleConnection)
}
