package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/billychen0894/spareTalk-chat-app/domain/apperrors"
	"github.com/billychen0894/spareTalk-chat-app/domain/model"
	"github.com/billychen0894/spareTalk-chat-app/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func userActivityKey(userID string) string {
	return fmt.Sprintf("user:%s:lastActivity", userID)
}

func userSessionKey(userID string) string {
	return fmt.Sprintf("user:%s:sessionId", userID)
}

type userRepository struct {
	client *redis.Client
	tracer trace.Tracer
}

func NewUserRepository(client *redis.Client, tracer trace.Tracer) repository.UserRepository {
	return &userRepository{
		client: client,
		tracer: tracer,
	}
}

func (r *userRepository) CheckStatus(ctx context.Context, userID string) (model.UserStatus, error) {
	ctx, span := r.tracer.Start(ctx, "userRepository.CheckStatus")
	defer span.End()

	span.SetAttributes(attribute.String("user.id", userID))

	status, err := r.client.HGet(ctx, userStatusKey, userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			span.SetAttributes(attribute.Bool("user.status.found", false))
			return "", nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read user status")
		return "", apperrors.NewStoreError("Failed to check user status", err)
	}

	span.SetStatus(codes.Ok, "user status retrieved")
	return model.UserStatus(status), nil
}

func (r *userRepository) SetStatus(ctx context.Context, userID string, status model.UserStatus) error {
	ctx, span := r.tracer.Start(ctx, "userRepository.SetStatus")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("user.status", string(status)),
	)

	if err := r.client.HSet(ctx, userStatusKey, userID, string(status)).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write user status")
		return apperrors.NewStoreError("Failed to set user status", err)
	}

	span.SetStatus(codes.Ok, "user status set")
	return nil
}

func (r *userRepository) SetLastActive(ctx context.Context, userID, timestamp string) error {
	ctx, span := r.tracer.Start(ctx, "userRepository.SetLastActive")
	defer span.End()

	span.SetAttributes(attribute.String("user.id", userID))

	if err := r.client.Set(ctx, userActivityKey(userID), timestamp, 0).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to stamp user activity")
		return apperrors.NewStoreError("Failed to set last active time", err)
	}

	span.SetStatus(codes.Ok, "user activity stamped")
	return nil
}

func (r *userRepository) GetLastActive(ctx context.Context, userID string) (string, error) {
	ctx, span := r.tracer.Start(ctx, "userRepository.GetLastActive")
	defer span.End()

	span.SetAttributes(attribute.String("user.id", userID))

	lastActive, err := r.client.Get(ctx, userActivityKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			span.SetAttributes(attribute.Bool("user.activity.found", false))
			return "", nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read user activity")
		return "", apperrors.NewStoreError("Failed to get last active time", err)
	}

	span.SetStatus(codes.Ok, "user activity retrieved")
	return lastActive, nil
}

func (r *userRepository) RemoveMessageIDs(ctx context.Context, userID, roomID string) error {
	ctx, span := r.tracer.Start(ctx, "userRepository.RemoveMessageIDs")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("room.id", roomID),
	)

	results, err := r.client.LRange(ctx, roomMessagesKey(roomID), 0, -1).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read log")
		return apperrors.NewStoreError("Failed to remove user message IDs", err)
	}

	var messageIDs []any
	for _, result := range results {
		var message model.ChatMessage
		if err := json.Unmarshal([]byte(result), &message); err != nil {
			continue
		}
		if message.Sender == userID {
			messageIDs = append(messageIDs, message.ID)
		}
	}

	span.SetAttributes(attribute.Int("message.count", len(messageIDs)))

	if len(messageIDs) == 0 {
		span.SetStatus(codes.Ok, "no message ids to remove")
		return nil
	}

	if err := r.client.SRem(ctx, chatMessageIDsKey, messageIDs...).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to remove message ids")
		return apperrors.NewStoreError("Failed to remove user message IDs", err)
	}

	span.SetStatus(codes.Ok, "message ids removed")
	return nil
}

func (r *userRepository) DeleteRelatedKeys(ctx context.Context, userID string) error {
	ctx, span := r.tracer.Start(ctx, "userRepository.DeleteRelatedKeys")
	defer span.End()

	span.SetAttributes(attribute.String("user.id", userID))

	if err := r.client.Del(ctx, userActivityKey(userID), userSessionKey(userID)).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete user keys")
		return apperrors.NewStoreError("Failed to delete user related keys", err)
	}

	span.SetStatus(codes.Ok, "user keys deleted")
	return nil
}
