package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/billychen0894/spareTalk-chat-app/domain/apperrors"
	"github.com/billychen0894/spareTalk-chat-app/domain/model"
	"github.com/billychen0894/spareTalk-chat-app/domain/repository"
	"github.com/billychen0894/spareTalk-chat-app/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client-initiated event names. Part of the wire contract, do not rename.
const (
	EventStartChat            = "start-chat"
	EventSendMessage          = "send-message"
	EventLeaveChat            = "leave-chat"
	EventRetrieveChatMessages = "retrieve-chat-messages"
	EventCheckChatRoomSession = "check-chatRoom-session"
)

// Status values mirror the result statuses the wire contract grew around.
type Status string

const (
	StatusEventProcessed    Status = "event processed"
	StatusInChat            Status = "in-chat"
	StatusChatRoomCreated   Status = "chat room created"
	StatusWaitingForUser    Status = "waiting for user"
	StatusMessageSent       Status = "message sent"
	StatusLeftChatRoom      Status = "left chat room"
	StatusNoChatRoom        Status = "no chat room"
	StatusMessagesRetrieved Status = "messages retrieved"
	StatusNoMessages        Status = "no messages"
	StatusOk                Status = "ok"
	StatusNoSession         Status = "no session"
)

type ChatUseCase interface {
	StartChat(ctx context.Context, userID, sessionID, chatRoomID, eventID string) (Status, *model.ChatRoom, error)
	SendMessage(ctx context.Context, chatRoomID string, message *model.ChatMessage, eventID string) (Status, error)
	LeaveChatRoom(ctx context.Context, chatRoomID, sessionID, eventID string) (Status, error)
	RetrieveChatMessages(ctx context.Context, chatRoomID, eventID string) (Status, []model.ChatMessage, error)
	CheckChatRoomSession(ctx context.Context, chatRoomID, sessionID, eventID string) (Status, *model.ChatRoom, error)
	Disconnect(ctx context.Context, sessionID string) error

	FindChatRoomByID(ctx context.Context, chatRoomID string) (*model.ChatRoom, error)
	RecoverChatRoomMessages(ctx context.Context, sessionID, chatRoomID string) ([]model.ChatMessage, error)
	CheckUserSession(ctx context.Context, sessionID string) (string, error)
	StoreUserSession(ctx context.Context, sessionID string) error
	CheckInactiveChatRooms(ctx context.Context) ([]*model.ChatRoom, error)
}

type chatUseCase struct {
	chatRoomRepository    repository.ChatRoomRepository
	userQueueRepository   repository.UserQueueRepository
	userRepository        repository.UserRepository
	userSessionRepository repository.UserSessionRepository
	eventRepository       repository.EventRepository
	inactivityThreshold   time.Duration
	logger                *logger.Logger
}

func NewChatUseCase(
	chatRoomRepository repository.ChatRoomRepository,
	userQueueRepository repository.UserQueueRepository,
	userRepository repository.UserRepository,
	userSessionRepository repository.UserSessionRepository,
	eventRepository repository.EventRepository,
	inactivityThreshold time.Duration,
	logger *logger.Logger,
) ChatUseCase {
	return &chatUseCase{
		chatRoomRepository:    chatRoomRepository,
		userQueueRepository:   userQueueRepository,
		userRepository:        userRepository,
		userSessionRepository: userSessionRepository,
		eventRepository:       eventRepository,
		inactivityThreshold:   inactivityThreshold,
		logger:                logger,
	}
}

func (uc *chatUseCase) StartChat(ctx context.Context, userID, sessionID, chatRoomID, eventID string) (Status, *model.ChatRoom, error) {
	processed, err := uc.eventRepository.ProcessOnce(ctx, EventStartChat, eventID)
	if err != nil {
		return "", nil, uc.wrapError(err, "failed to start chat")
	}
	if processed {
		return StatusEventProcessed, nil, nil
	}

	// Recovery path: a returning session rejoins its room without re-queueing.
	if sessionID != "" && chatRoomID != "" {
		status, err := uc.userRepository.CheckStatus(ctx, sessionID)
		if err != nil {
			return "", nil, uc.wrapError(err, "failed to start chat")
		}

		chatRoom, err := uc.chatRoomRepository.GetByID(ctx, chatRoomID)
		if err != nil {
			return "", nil, uc.wrapError(err, "failed to start chat")
		}

		if status == model.UserStatusInChat && chatRoom.IsParticipant(sessionID) {
			return StatusInChat, chatRoom, nil
		}
	}

	if err := uc.userQueueRepository.Enqueue(ctx, userID); err != nil {
		return "", nil, uc.wrapError(err, "failed to start chat")
	}

	chatRoom, err := uc.pairUsers(ctx)
	if err != nil {
		return "", nil, uc.wrapError(err, "failed to start chat")
	}

	if chatRoom != nil {
		return StatusChatRoomCreated, chatRoom, nil
	}

	return StatusWaitingForUser, nil, nil
}

func (uc *chatUseCase) SendMessage(ctx context.Context, chatRoomID string, message *model.ChatMessage, eventID string) (Status, error) {
	processed, err := uc.eventRepository.ProcessOnce(ctx, EventSendMessage, eventID)
	if err != nil {
		return "", uc.wrapError(err, "failed to send message")
	}
	if processed {
		return StatusEventProcessed, nil
	}

	if err := uc.chatRoomRepository.StoreMessage(ctx, chatRoomID, message); err != nil {
		return "", uc.wrapError(err, "failed to send message")
	}

	return StatusMessageSent, nil
}

func (uc *chatUseCase) LeaveChatRoom(ctx context.Context, chatRoomID, sessionID, eventID string) (Status, error) {
	processed, err := uc.eventRepository.ProcessOnce(ctx, EventLeaveChat, eventID)
	if err != nil {
		return "", uc.wrapError(err, "failed to leave chat room")
	}
	if processed {
		return StatusEventProcessed, nil
	}

	if sessionID != "" && chatRoomID != "" {
		if err := uc.clearUser(ctx, sessionID, chatRoomID); err != nil {
			return "", uc.wrapError(err, "failed to leave chat room")
		}
		return StatusLeftChatRoom, nil
	}

	return StatusNoChatRoom, nil
}

func (uc *chatUseCase) RetrieveChatMessages(ctx context.Context, chatRoomID, eventID string) (Status, []model.ChatMessage, error) {
	processed, err := uc.eventRepository.ProcessOnce(ctx, EventRetrieveChatMessages, eventID)
	if err != nil {
		return "", nil, uc.wrapError(err, "failed to retrieve chat messages")
	}
	if processed {
		return StatusEventProcessed, nil, nil
	}

	messages, err := uc.chatRoomRepository.RetrieveMessages(ctx, chatRoomID)
	if err != nil {
		return "", nil, uc.wrapError(err, "failed to retrieve chat messages")
	}

	if len(messages) > 0 {
		return StatusMessagesRetrieved, messages, nil
	}

	return StatusNoMessages, nil, nil
}

func (uc *chatUseCase) CheckChatRoomSession(ctx context.Context, chatRoomID, sessionID, eventID string) (Status, *model.ChatRoom, error) {
	processed, err := uc.eventRepository.ProcessOnce(ctx, EventCheckChatRoomSession, eventID)
	if err != nil {
		return "", nil, uc.wrapError(err, "failed to check chat room session")
	}
	if processed {
		return StatusEventProcessed, nil, nil
	}

	chatRoom, err := uc.chatRoomRepository.GetByID(ctx, chatRoomID)
	if err != nil && !apperrors.IsNotFound(err) {
		return "", nil, uc.wrapError(err, "failed to check chat room session")
	}

	if chatRoom != nil && chatRoom.IsParticipant(sessionID) {
		return StatusOk, chatRoom, nil
	}

	// Stale mapping: the room is gone or no longer lists this session.
	if err := uc.userSessionRepository.Remove(ctx, sessionID); err != nil {
		uc.logger.Error("failed to evict stale session", zap.Error(err), zap.String("sessionID", sessionID))
	}

	return StatusNoSession, nil, nil
}

func (uc *chatUseCase) Disconnect(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	status, err := uc.userRepository.CheckStatus(ctx, sessionID)
	if err != nil {
		return uc.wrapError(err, "failed to disconnect chat")
	}

	switch status {
	case model.UserStatusWaiting:
		if err := uc.userQueueRepository.RemoveAndClear(ctx, sessionID); err != nil {
			return uc.wrapError(err, "failed to disconnect chat")
		}
		if err := uc.userSessionRepository.Remove(ctx, sessionID); err != nil {
			return uc.wrapError(err, "failed to disconnect chat")
		}
	case model.UserStatusInChat:
		// The room stays alive across transient drops; only the reaper or an
		// explicit leave tears it down.
		lastActiveTime := time.Now().UTC().Format(time.RFC3339)
		if err := uc.userRepository.SetLastActive(ctx, sessionID, lastActiveTime); err != nil {
			return uc.wrapError(err, "failed to disconnect chat")
		}
	}

	return nil
}

// pairUsers dequeues two waiting users and opens a room for them. Atomicity
// of the pop is what prevents two instances from pairing the same user.
func (uc *chatUseCase) pairUsers(ctx context.Context) (*model.ChatRoom, error) {
	user1, err := uc.userQueueRepository.Dequeue(ctx)
	if err != nil {
		return nil, err
	}
	user2, err := uc.userQueueRepository.Dequeue(ctx)
	if err != nil {
		return nil, err
	}

	if user1 == "" || user2 == "" {
		// Not enough waiting users; put back whoever was popped.
		if user1 != "" {
			if err := uc.userQueueRepository.Enqueue(ctx, user1); err != nil {
				return nil, err
			}
		}
		if user2 != "" {
			if err := uc.userQueueRepository.Enqueue(ctx, user2); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	chatRoomID := uuid.New().String()

	if err := uc.chatRoomRepository.Create(ctx, chatRoomID, user1, user2); err != nil {
		return nil, err
	}
	if err := uc.userRepository.SetStatus(ctx, user1, model.UserStatusInChat); err != nil {
		return nil, err
	}
	if err := uc.userRepository.SetStatus(ctx, user2, model.UserStatusInChat); err != nil {
		return nil, err
	}

	currentTime := time.Now().UTC().Format(time.RFC3339)
	if err := uc.chatRoomRepository.SetActivity(ctx, chatRoomID, currentTime); err != nil {
		return nil, err
	}

	uc.logger.Info("chat room created",
		zap.String("chatRoomID", chatRoomID),
		zap.String("user1", user1),
		zap.String("user2", user2),
	)

	return &model.ChatRoom{
		ID:           chatRoomID,
		State:        model.RoomStateOccupied,
		Participants: []string{user1, user2},
	}, nil
}

// clearUser runs the departure cleanup fan-out. All five operations are
// attempted concurrently; any store failure fails the whole composite.
func (uc *chatUseCase) clearUser(ctx context.Context, sessionID, chatRoomID string) error {
	cleanups := []func() error{
		func() error { return uc.userRepository.RemoveMessageIDs(ctx, sessionID, chatRoomID) },
		func() error { return uc.chatRoomRepository.Leave(ctx, chatRoomID, sessionID) },
		func() error { return uc.chatRoomRepository.DeleteMessages(ctx, chatRoomID) },
		func() error { return uc.userRepository.DeleteRelatedKeys(ctx, sessionID) },
		func() error { return uc.chatRoomRepository.DeleteActivity(ctx, chatRoomID) },
	}

	var wg sync.WaitGroup
	errs := make([]error, len(cleanups))

	for i, cleanup := range cleanups {
		wg.Add(1)
		go func(i int, cleanup func() error) {
			defer wg.Done()
			errs[i] = cleanup()
		}(i, cleanup)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			if apperrors.IsStoreError(err) {
				return err
			}
			uc.logger.Error("error clearing user data",
				zap.Error(err),
				zap.String("sessionID", sessionID),
				zap.String("chatRoomID", chatRoomID),
			)
			return fmt.Errorf("failed to clear user data")
		}
	}

	return nil
}

func (uc *chatUseCase) FindChatRoomByID(ctx context.Context, chatRoomID string) (*model.ChatRoom, error) {
	chatRoom, err := uc.chatRoomRepository.GetByID(ctx, chatRoomID)
	if err != nil {
		return nil, uc.wrapError(err, "failed to find chat room")
	}

	return chatRoom, nil
}

func (uc *chatUseCase) RecoverChatRoomMessages(ctx context.Context, sessionID, chatRoomID string) ([]model.ChatMessage, error) {
	lastActiveTime, err := uc.userRepository.GetLastActive(ctx, sessionID)
	if err != nil {
		return nil, uc.wrapError(err, "failed to recover chat room messages")
	}

	missedMessages, err := uc.chatRoomRepository.GetMissedMessages(ctx, chatRoomID, lastActiveTime)
	if err != nil {
		return nil, uc.wrapError(err, "failed to recover chat room messages")
	}

	return missedMessages, nil
}

func (uc *chatUseCase) CheckUserSession(ctx context.Context, sessionID string) (string, error) {
	userSessionID, err := uc.userSessionRepository.Get(ctx, sessionID)
	if err != nil {
		return "", uc.wrapError(err, "failed to check user session")
	}

	return userSessionID, nil
}

func (uc *chatUseCase) StoreUserSession(ctx context.Context, sessionID string) error {
	if err := uc.userSessionRepository.Store(ctx, sessionID); err != nil {
		return uc.wrapError(err, "failed to store user session")
	}

	return nil
}

// CheckInactiveChatRooms reclaims every room whose last activity is older
// than the configured threshold and returns the reclaimed rooms so the
// transport can notify affected clients.
func (uc *chatUseCase) CheckInactiveChatRooms(ctx context.Context) ([]*model.ChatRoom, error) {
	chatRooms, err := uc.chatRoomRepository.GetAll(ctx)
	if err != nil {
		return nil, uc.wrapError(err, "failed to check inactive chat rooms")
	}

	var inactiveChatRooms []*model.ChatRoom

	for _, chatRoom := range chatRooms {
		inactive, err := uc.chatRoomRepository.IsInactive(ctx, chatRoom.ID, uc.inactivityThreshold)
		if err != nil {
			if apperrors.IsNotFound(err) {
				// No activity record yet; leave the room for a later sweep.
				continue
			}
			return nil, uc.wrapError(err, "failed to check inactive chat rooms")
		}
		if !inactive {
			continue
		}

		for _, participant := range chatRoom.Participants {
			userSessionID, err := uc.userSessionRepository.Get(ctx, participant)
			if err != nil {
				return nil, uc.wrapError(err, "failed to check inactive chat rooms")
			}
			if userSessionID == "" {
				continue
			}

			if err := uc.clearUser(ctx, userSessionID, chatRoom.ID); err != nil {
				return nil, uc.wrapError(err, "failed to check inactive chat rooms")
			}
		}

		uc.logger.Info("inactive chat room reclaimed", zap.String("chatRoomID", chatRoom.ID))
		inactiveChatRooms = append(inactiveChatRooms, chatRoom)
	}

	return inactiveChatRooms, nil
}

// wrapError passes the two typed errors through untouched and replaces
// anything else with a generic operation error so internals never leak.
func (uc *chatUseCase) wrapError(err error, message string) error {
	if apperrors.IsNotFound(err) || apperrors.IsStoreError(err) {
		return err
	}

	uc.logger.Error(message, zap.Error(err))
	return fmt.Errorf("%s", message)
}
