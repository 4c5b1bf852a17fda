package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/billychen0894/spareTalk-chat-app/domain/apperrors"
	"github.com/billychen0894/spareTalk-chat-app/domain/model"
	"github.com/billychen0894/spareTalk-chat-app/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	chatRoomsKey      = "chatRooms"
	userStatusKey     = "userStatus"
	chatMessageIDsKey = "chatMessageIds"
)

func roomMessagesKey(roomID string) string {
	return fmt.Sprintf("chatRoom:%s:messages", roomID)
}

func roomActivityKey(roomID string) string {
	return fmt.Sprintf("chatRoom:%s:lastActivity", roomID)
}

type chatRoomRepository struct {
	client     *redis.Client
	messageCap int64
	tracer     trace.Tracer
}

func NewChatRoomRepository(client *redis.Client, messageCap int64, tracer trace.Tracer) repository.ChatRoomRepository {
	return &chatRoomRepository{
		client:     client,
		messageCap: messageCap,
		tracer:     tracer,
	}
}

func (r *chatRoomRepository) Create(ctx context.Context, roomID, user1, user2 string) error {
	ctx, span := r.tracer.Start(ctx, "chatRoomRepository.Create")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	room := model.ChatRoom{
		ID:           roomID,
		State:        model.RoomStateOccupied,
		Participants: []string{user1, user2},
	}

	data, err := json.Marshal(room)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal room")
		return apperrors.NewStoreError("Failed to create chat room", err)
	}

	created, err := r.client.HSet(ctx, chatRoomsKey, roomID, data).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write room")
		return apperrors.NewStoreError("Failed to create chat room", err)
	}

	if created == 0 {
		span.SetStatus(codes.Error, "room write rejected")
		return apperrors.NewStoreErrorWithDetails("Failed to create chat room", errors.New("room already exists"), map[string]any{
			"id":           roomID,
			"participants": []string{user1, user2},
		})
	}

	span.SetStatus(codes.Ok, "room created")
	return nil
}

func (r *chatRoomRepository) Leave(ctx context.Context, roomID, userID string) error {
	ctx, span := r.tracer.Start(ctx, "chatRoomRepository.Leave")
	defer span.End()

	span.SetAttributes(
		attribute.String("room.id", roomID),
		attribute.String("user.id", userID),
	)

	room, err := r.GetByID(ctx, roomID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load room")
		return err
	}

	if room.RemoveParticipant(userID) {
		room.State = model.RoomStateIdle

		if err := r.client.HDel(ctx, userStatusKey, userID).Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to clear user status")
			return apperrors.NewStoreError("Failed to leave chat room", err)
		}

		data, err := json.Marshal(room)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to marshal room")
			return apperrors.NewStoreError("Failed to leave chat room", err)
		}

		if err := r.client.HSet(ctx, chatRoomsKey, roomID, data).Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to write room")
			return apperrors.NewStoreError("Failed to leave chat room", err)
		}
	}

	// Two sequential calls: a crash in between leaves an idle zero-participant
	// room behind, which the inactivity sweep reclaims later.
	if room.IsEmpty() {
		if err := r.client.HDel(ctx, chatRoomsKey, roomID).Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to delete empty room")
			return apperrors.NewStoreError("Failed to leave chat room", err)
		}
	}

	span.SetStatus(codes.Ok, "participant left room")
	return nil
}

func (r *chatRoomRepository) GetByID(ctx context.Context, roomID string) (*model.ChatRoom, error) {
	ctx, span := r.tracer.Start(ctx, "chatRoomRepository.GetByID")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	data, err := r.client.HGet(ctx, chatRoomsKey, roomID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			span.SetAttributes(attribute.Bool("room.found", false))
			return nil, apperrors.NewNotFoundError("Chat room not found", map[string]any{"chatRoomId": roomID})
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read room")
		return nil, apperrors.NewStoreError("Failed to get chat room", err)
	}

	var room model.ChatRoom
	if err := json.Unmarshal([]byte(data), &room); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to unmarshal room")
		return nil, apperrors.NewStoreError("Failed to get chat room", err)
	}

	span.SetStatus(codes.Ok, "room retrieved")
	return &room, nil
}

func (r *chatRoomRepository) GetAll(ctx context.Context) ([]*model.ChatRoom, error) {
	ctx, span := r.tracer.Start(ctx, "chatRoomRepository.GetAll")
	defer span.End()

	values, err := r.client.HVals(ctx, chatRoomsKey).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read rooms")
		return nil, apperrors.NewStoreError("Failed to get chat rooms", err)
	}

	rooms := make([]*model.ChatRoom, 0, len(values))
	for _, value := range values {
		var room model.ChatRoom
		if err := json.Unmarshal([]byte(value), &room); err != nil {
			continue
		}
		rooms = append(rooms, &room)
	}

	span.SetAttributes(attribute.Int("room.count", len(rooms)))
	span.SetStatus(codes.Ok, "rooms retrieved")
	return rooms, nil
}

func (r *chatRoomRepository) StoreMessage(ctx context.Context, roomID string, message *model.ChatMessage) error {
	ctx, span := r.tracer.Start(ctx, "chatRoomRepository.StoreMessage")
	defer span.End()

	span.SetAttributes(
		attribute.String("room.id", roomID),
		attribute.String("message.id", message.ID),
	)

	exists, err := r.client.SIsMember(ctx, chatMessageIDsKey, message.ID).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check message id")
		return apperrors.NewStoreError("Failed to store message", err)
	}

	// Already accepted once; a redelivery must not duplicate the entry.
	if exists {
		span.SetAttributes(attribute.Bool("message.duplicate", true))
		span.SetStatus(codes.Ok, "duplicate message ignored")
		return nil
	}

	data, err := json.Marshal(message)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal message")
		return apperrors.NewStoreError("Failed to store message", err)
	}

	key := roomMessagesKey(roomID)

	if err := r.client.SAdd(ctx, chatMessageIDsKey, message.ID).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to record message id")
		return apperrors.NewStoreError("Failed to store message", err)
	}

	if err := r.client.RPush(ctx, key, data).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to append message")
		return apperrors.NewStoreError("Failed to store message", err)
	}

	length, err := r.client.LLen(ctx, key).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check log length")
		return apperrors.NewStoreError("Failed to store message", err)
	}

	if start, stop, needed := trimRange(length, r.messageCap); needed {
		if err := r.client.LTrim(ctx, key, start, stop).Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to trim log")
			return apperrors.NewStoreError("Failed to store message", err)
		}
	}

	currentTime := time.Now().UTC().Format(time.RFC3339)
	if err := r.client.Set(ctx, userActivityKey(message.Sender), currentTime, 0).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to stamp sender activity")
		return apperrors.NewStoreError("Failed to store message", err)
	}
	if err := r.client.Set(ctx, roomActivityKey(roomID), currentTime, 0).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to stamp room activity")
		return apperrors.NewStoreError("Failed to store message", err)
	}

	span.SetStatus(codes.Ok, "message stored")
	return nil
}

func (r *chatRoomRepository) RetrieveMessages(ctx context.Context, roomID string) ([]model.ChatMessage, error) {
	ctx, span := r.tracer.Start(ctx, "chatRoomRepository.RetrieveMessages")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	results, err := r.client.LRange(ctx, roomMessagesKey(roomID), 0, -1).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read log")
		return nil, apperrors.NewStoreError("Failed to retrieve messages", err)
	}

	messages := make([]model.ChatMessage, 0, len(results))
	for _, result := range results {
		var message model.ChatMessage
		if err := json.Unmarshal([]byte(result), &message); err != nil {
			continue
		}
		messages = append(messages, message)
	}

	span.SetAttributes(attribute.Int("message.count", len(messages)))
	span.SetStatus(codes.Ok, "messages retrieved")
	return messages, nil
}

func (r *chatRoomRepository) GetMissedMessages(ctx context.Context, roomID, lastActiveTime string) ([]model.ChatMessage, error) {
	if lastActiveTime == "" {
		return nil, errors.New("no last active time provided")
	}

	since, err := time.Parse(time.RFC3339, lastActiveTime)
	if err != nil {
		return nil, fmt.Errorf("invalid last active time: %w", err)
	}

	messages, err := r.RetrieveMessages(ctx, roomID)
	if err != nil {
		return nil, err
	}

	return filterMessagesSince(messages, since), nil
}

func (r *chatRoomRepository) DeleteMessages(ctx context.Context, roomID string) error {
	ctx, span := r.tracer.Start(ctx, "chatRoomRepository.DeleteMessages")
	defer span.End()

	span.SetAttributes(attribute.String("room.id", roomID))

	room, err := r.GetByID(ctx, roomID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load room")
		return err
	}

	// Only delete history when the room is draining. A room momentarily down
	// to one participant during a race keeps its log.
	if len(room.Participants) != 1 {
		span.SetAttributes(attribute.Bool("room.abandoned", false))
		span.SetStatus(codes.Ok, "room not abandoned, log kept")
		return nil
	}

	if err := r.client.Del(ctx, roomMessagesKey(roomID)).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete log")
		return apperrors.NewStoreError("Failed to delete chat room messages", err)
	}

	span.SetStatus(codes.Ok, "log deleted")
	return nil
}

func (r *chatRoomRepository) SetActivity(ctx context.Context, roomID, timestamp string) error {
	if err := r.client.Set(ctx, roomActivityKey(roomID), timestamp, 0).Err(); err != nil {
		return apperrors.NewStoreError("Failed to set chat room activity", err)
	}
	return nil
}

func (r *chatRoomRepository) IsInactive(ctx context.Context, roomID string, threshold time.Duration) (bool, error) {
	lastActive, err := r.client.Get(ctx, roomActivityKey(roomID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, apperrors.NewNotFoundError("Last active time not found", map[string]any{"chatRoomId": roomID})
		}
		return false, apperrors.NewStoreError("Failed to check inactivity", err)
	}

	lastActiveTime, err := time.Parse(time.RFC3339, lastActive)
	if err != nil {
		return false, apperrors.NewStoreError("Failed to check inactivity", err)
	}

	return time.Since(lastActiveTime) > threshold, nil
}

func (r *chatRoomRepository) DeleteActivity(ctx context.Context, roomID string) error {
	if err := r.client.Del(ctx, roomActivityKey(roomID)).Err(); err != nil {
		return apperrors.NewStoreError("Failed to delete chat room related keys", err)
	}
	return nil
}

// trimRange decides whether a log of the given length needs trimming to the
// limit, and the LTRIM range to apply. The range keeps the newest limit
// entries, dropping the oldest first.
func trimRange(length, limit int64) (start, stop int64, needed bool) {
	if length <= limit {
		return 0, 0, false
	}
	return -limit, -1, true
}

// filterMessagesSince keeps the suffix of the log sent strictly after since.
func filterMessagesSince(messages []model.ChatMessage, since time.Time) []model.ChatMessage {
	missed := make([]model.ChatMessage, 0, len(messages))
	for _, message := range messages {
		if message.SentAfter(since) {
			missed = append(missed, message)
		}
	}
	return missed
}
