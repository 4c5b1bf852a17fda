package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/billychen0894/spareTalk-chat-app/application/usecases/chat"
	"github.com/billychen0894/spareTalk-chat-app/domain/apperrors"
	"github.com/billychen0894/spareTalk-chat-app/domain/model"
	"github.com/billychen0894/spareTalk-chat-app/infrastructure/logger"
	"github.com/billychen0894/spareTalk-chat-app/infrastructure/metrics"
	"github.com/billychen0894/spareTalk-chat-app/infrastructure/websocket"
)

const eventTimeout = 10 * time.Second

// ChatSocketController owns the websocket surface: it upgrades connections,
// decodes inbound envelopes into usecase calls, and fans results back out as
// wire events. It also receives reaper notifications so dead rooms can tell
// their remaining listeners.
type ChatSocketController struct {
	chatUseCase chat.ChatUseCase
	wsCore      *websocket.Core
	metrics     metrics.Manager
	logger      *logger.Logger
}

func NewChatSocketController(
	chatUseCase chat.ChatUseCase,
	wsCore *websocket.Core,
	metricsManager metrics.Manager,
	log *logger.Logger,
) *ChatSocketController {
	return &ChatSocketController{
		chatUseCase: chatUseCase,
		wsCore:      wsCore,
		metrics:     metricsManager,
		logger:      log,
	}
}

// HandleConnection performs the session handshake and hands the connection
// over to the read/write pumps. A returning client supplies sessionId and
// chatRoomId as query params; anyone else gets a fresh session id.
func (c *ChatSocketController) HandleConnection(ctx *gin.Context) {
	sessionID := ctx.Query("sessionId")
	chatRoomID := ctx.Query("chatRoomId")

	reqCtx := ctx.Request.Context()

	known := false
	if sessionID != "" && chatRoomID != "" {
		stored, err := c.chatUseCase.CheckUserSession(reqCtx, sessionID)
		if err != nil {
			c.logger.Error("session lookup failed during handshake",
				zap.String("sessionId", sessionID), zap.Error(err))
		}
		known = stored != ""
	}

	if !known {
		sessionID = uuid.NewString()
		chatRoomID = ""
	}

	if err := c.chatUseCase.StoreUserSession(reqCtx, sessionID); err != nil {
		c.logger.Error("failed to store user session",
			zap.String("sessionId", sessionID), zap.Error(err))
	}

	conn, err := c.wsCore.Rooms().Upgrade(ctx.Writer, ctx.Request)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		c.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := websocket.NewClient(conn, sessionID, chatRoomID)
	c.wsCore.Register() <- client
	c.metrics.IncCounter("chat_connections_total")

	go client.WritePump()
	go client.ReadPump(c)

	client.Send(websocket.NewSessionEvent(sessionID, chatRoomID))

	if known {
		go c.recoverChatRoom(client)
	}
}

// HandleEvent dispatches one decoded envelope to exactly one usecase call.
func (c *ChatSocketController) HandleEvent(client *websocket.Client, envelope *websocket.Envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	switch envelope.Event {
	case chat.EventStartChat:
		c.handleStartChat(ctx, client, envelope)
	case chat.EventSendMessage:
		c.handleSendMessage(ctx, client, envelope)
	case chat.EventLeaveChat:
		c.handleLeaveChat(ctx, client, envelope)
	case chat.EventRetrieveChatMessages:
		c.handleRetrieveChatMessages(ctx, client, envelope)
	case chat.EventCheckChatRoomSession:
		c.handleCheckChatRoomSession(ctx, client, envelope)
	default:
		c.logger.Debug("ignoring unknown event",
			zap.String("event", envelope.Event), zap.String("sessionId", client.ID))
	}
}

func (c *ChatSocketController) HandleDisconnect(client *websocket.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	if err := c.chatUseCase.Disconnect(ctx, client.ID); err != nil {
		c.logger.Error("disconnect cleanup failed",
			zap.String("sessionId", client.ID), zap.Error(err))
	}

	c.wsCore.Unregister() <- client
}

// NotifyInactiveChatRoom tells whoever is still connected to a reclaimed
// room that it is gone.
func (c *ChatSocketController) NotifyInactiveChatRoom(chatRoom *model.ChatRoom) {
	c.wsCore.Broadcast() <- &websocket.RoomBroadcast{
		RoomID:  chatRoom.ID,
		Message: websocket.NewInactiveChatRoom(chatRoom),
	}
}

func (c *ChatSocketController) handleStartChat(ctx context.Context, client *websocket.Client, envelope *websocket.Envelope) {
	var data StartChatData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		c.logger.Warn("malformed start-chat payload", zap.String("sessionId", client.ID), zap.Error(err))
		return
	}

	status, chatRoom, err := c.chatUseCase.StartChat(ctx, data.UserID, client.ID, client.RoomID(), envelope.EventID)
	if err != nil {
		c.handleError(client, err)
		return
	}

	switch status {
	case chat.StatusInChat:
		// Recovery path: rejoin the surviving room.
		c.wsCore.Rooms().JoinRoom(client, chatRoom.ID)
		client.Send(websocket.NewChatRoomCreated(chatRoom))

	case chat.StatusChatRoomCreated:
		c.metrics.IncCounter("chat_rooms_created_total")
		c.wsCore.Rooms().JoinRoom(client, chatRoom.ID)
		client.Send(websocket.NewSessionEvent(client.ID, chatRoom.ID))
		client.Send(websocket.NewChatRoomCreated(chatRoom))

		for _, participant := range chatRoom.Participants {
			if participant == data.UserID {
				continue
			}

			other, ok := c.wsCore.Rooms().GetClient(participant)
			if !ok {
				c.logger.Warn("paired user not connected to this instance",
					zap.String("userId", participant), zap.String("chatRoomId", chatRoom.ID))
				continue
			}

			c.wsCore.Rooms().JoinRoom(other, chatRoom.ID)
			if err := c.wsCore.Rooms().SendToClient(other.ID, websocket.NewSessionEvent(other.ID, chatRoom.ID)); err != nil {
				c.logger.Warn("failed to notify paired user",
					zap.String("userId", other.ID), zap.Error(err))
				continue
			}
			if err := c.wsCore.Rooms().SendToClient(other.ID, websocket.NewChatRoomCreated(chatRoom)); err != nil {
				c.logger.Warn("failed to notify paired user",
					zap.String("userId", other.ID), zap.Error(err))
			}
		}
	}

	client.Send(websocket.NewAck(envelope.EventID))
}

func (c *ChatSocketController) handleSendMessage(ctx context.Context, client *websocket.Client, envelope *websocket.Envelope) {
	var data SendMessageData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		c.logger.Warn("malformed send-message payload", zap.String("sessionId", client.ID), zap.Error(err))
		return
	}

	status, err := c.chatUseCase.SendMessage(ctx, data.ChatRoomID, &data.Message, envelope.EventID)
	if err != nil {
		c.handleError(client, err)
		return
	}

	if status == chat.StatusMessageSent {
		c.metrics.IncCounter("chat_messages_total")
		c.wsCore.Broadcast() <- &websocket.RoomBroadcast{
			RoomID:    data.ChatRoomID,
			Message:   websocket.NewReceiveMessage(&data.Message),
			ExcludeID: client.ID,
		}
	}

	client.Send(websocket.NewAck(envelope.EventID))
}

func (c *ChatSocketController) handleLeaveChat(ctx context.Context, client *websocket.Client, envelope *websocket.Envelope) {
	var data LeaveChatData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		c.logger.Warn("malformed leave-chat payload", zap.String("sessionId", client.ID), zap.Error(err))
		return
	}

	status, err := c.chatUseCase.LeaveChatRoom(ctx, data.ChatRoomID, client.ID, envelope.EventID)
	if err != nil {
		c.handleError(client, err)
		return
	}

	switch status {
	case chat.StatusLeftChatRoom:
		c.wsCore.Broadcast() <- &websocket.RoomBroadcast{
			RoomID:    data.ChatRoomID,
			Message:   websocket.NewLeftChat(client.ID),
			ExcludeID: client.ID,
		}
		c.wsCore.Rooms().LeaveRoom(client)

	case chat.StatusNoChatRoom:
		c.logger.Warn("leave-chat without a chat room", zap.String("sessionId", client.ID))
		return
	}

	client.Send(websocket.NewAck(envelope.EventID))
}

func (c *ChatSocketController) handleRetrieveChatMessages(ctx context.Context, client *websocket.Client, envelope *websocket.Envelope) {
	var data RetrieveChatMessagesData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		c.logger.Warn("malformed retrieve-chat-messages payload", zap.String("sessionId", client.ID), zap.Error(err))
		return
	}

	status, messages, err := c.chatUseCase.RetrieveChatMessages(ctx, data.ChatRoomID, envelope.EventID)
	if err != nil {
		c.handleError(client, err)
		return
	}

	switch status {
	case chat.StatusMessagesRetrieved:
		c.wsCore.Broadcast() <- &websocket.RoomBroadcast{
			RoomID:  data.ChatRoomID,
			Message: websocket.NewChatHistory(messages),
		}

	case chat.StatusNoMessages:
		c.logger.Debug("no messages to retrieve", zap.String("chatRoomId", data.ChatRoomID))
		return
	}

	client.Send(websocket.NewAck(envelope.EventID))
}

func (c *ChatSocketController) handleCheckChatRoomSession(ctx context.Context, client *websocket.Client, envelope *websocket.Envelope) {
	var data CheckChatRoomSessionData
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		c.logger.Warn("malformed check-chatRoom-session payload", zap.String("sessionId", client.ID), zap.Error(err))
		return
	}

	status, chatRoom, err := c.chatUseCase.CheckChatRoomSession(ctx, data.ChatRoomID, data.SessionID, envelope.EventID)
	if err != nil {
		c.handleError(client, err)
		return
	}

	switch status {
	case chat.StatusOk:
		client.Send(websocket.NewReceiveChatRoomSession(chatRoom))
	case chat.StatusNoSession:
		// Explicit null tells the client to drop its stale session.
		client.Send(websocket.NewReceiveChatRoomSession(nil))
	}

	client.Send(websocket.NewAck(envelope.EventID))
}

// recoverChatRoom replays what a returning session missed while it was away.
func (c *ChatSocketController) recoverChatRoom(client *websocket.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	chatRoomID := client.RoomID()
	if chatRoomID == "" {
		return
	}

	chatRoom, err := c.chatUseCase.FindChatRoomByID(ctx, chatRoomID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return
		}
		c.handleError(client, err)
		return
	}

	if chatRoom.State != model.RoomStateOccupied {
		return
	}

	client.Send(websocket.NewSessionEvent(client.ID, chatRoomID))

	missed, err := c.chatUseCase.RecoverChatRoomMessages(ctx, client.ID, chatRoomID)
	if err != nil {
		c.handleError(client, err)
		return
	}

	if len(missed) > 0 {
		c.wsCore.Broadcast() <- &websocket.RoomBroadcast{
			RoomID:    chatRoomID,
			Message:   websocket.NewMissedMessages(missed),
			ExcludeID: client.ID,
		}
	}
}

func (c *ChatSocketController) handleError(client *websocket.Client, err error) {
	var notFound *apperrors.NotFoundError
	if errors.As(err, &notFound) {
		client.Send(websocket.NewChatError(notFound.Code(), notFound.Message, notFound.Details))
		return
	}

	var storeErr *apperrors.StoreError
	if errors.As(err, &storeErr) {
		client.Send(websocket.NewChatError(storeErr.Code(), "A Redis error occurred", storeErr.Details))
		return
	}

	client.Send(websocket.NewChatError(500, "An unexpected error occurred", nil))
}
