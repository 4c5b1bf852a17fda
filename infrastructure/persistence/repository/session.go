package repository

import (
	"context"
	"errors"

	"github.com/billychen0894/spareTalk-chat-app/domain/apperrors"
	"github.com/billychen0894/spareTalk-chat-app/domain/repository"
	"github.com/redis/go-redis/v9"
)

type userSessionRepository struct {
	client *redis.Client
}

func NewUserSessionRepository(client *redis.Client) repository.UserSessionRepository {
	return &userSessionRepository{client: client}
}

func (r *userSessionRepository) Store(ctx context.Context, sessionID string) error {
	if err := r.client.Set(ctx, userSessionKey(sessionID), sessionID, 0).Err(); err != nil {
		return apperrors.NewStoreError("Failed to store user session ID", err)
	}
	return nil
}

func (r *userSessionRepository) Get(ctx context.Context, sessionID string) (string, error) {
	value, err := r.client.Get(ctx, userSessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", apperrors.NewStoreError("Failed to get user session ID", err)
	}

	return value, nil
}

func (r *userSessionRepository) Remove(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, userSessionKey(sessionID)).Err(); err != nil {
		return apperrors.NewStoreError("Failed to remove user session ID", err)
	}
	return nil
}
