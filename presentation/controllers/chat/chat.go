package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"

	chatUseCase "github.com/billychen0894/spareTalk-chat-app/application/usecases/chat"
	"github.com/billychen0894/spareTalk-chat-app/domain/apperrors"
)

type ChatController interface {
	GetChatRoomByID(ctx *gin.Context)
}

type chatController struct {
	usecase chatUseCase.ChatUseCase
}

func NewChatController(usecase chatUseCase.ChatUseCase) ChatController {
	return &chatController{
		usecase: usecase,
	}
}

// GetChatRoomByID is the read-side check clients poll before rejoining. A
// missing room answers 409 so the frontend drops its stale session instead
// of retrying.
func (c *chatController) GetChatRoomByID(ctx *gin.Context) {
	chatRoomID := ctx.Param("chatRoomId")
	if chatRoomID == "" {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "chat room ID is required",
		})
		return
	}

	chatRoom, err := c.usecase.FindChatRoomByID(ctx.Request.Context(), chatRoomID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			ctx.JSON(http.StatusConflict, ErrorResponse{
				Error:   "chat_room_not_found",
				Message: "Chat room doesn't exist",
			})
			return
		}

		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "store_error",
			Message: "failed to look up chat room",
		})
		return
	}

	ctx.JSON(http.StatusOK, ChatRoomResponse{Data: chatRoom})
}
