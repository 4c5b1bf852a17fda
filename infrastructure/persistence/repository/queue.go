package repository

import (
	"context"
	"errors"

	"github.com/billychen0894/spareTalk-chat-app/domain/apperrors"
	"github.com/billychen0894/spareTalk-chat-app/domain/model"
	"github.com/billychen0894/spareTalk-chat-app/domain/repository"
	"github.com/redis/go-redis/v9"
)

const userQueueKey = "userQueue"

type userQueueRepository struct {
	client *redis.Client
}

func NewUserQueueRepository(client *redis.Client) repository.UserQueueRepository {
	return &userQueueRepository{client: client}
}

func (r *userQueueRepository) Enqueue(ctx context.Context, userID string) error {
	if err := r.client.LPush(ctx, userQueueKey, userID).Err(); err != nil {
		return apperrors.NewStoreError("Failed to add user to queue", err)
	}

	if err := r.client.HSet(ctx, userStatusKey, userID, string(model.UserStatusWaiting)).Err(); err != nil {
		return apperrors.NewStoreError("Failed to add user to queue", err)
	}

	return nil
}

// Dequeue pops from the tail; combined with the head push in Enqueue this is
// FIFO. RPOP is atomic, which is what keeps two instances from pairing the
// same user.
func (r *userQueueRepository) Dequeue(ctx context.Context) (string, error) {
	userID, err := r.client.RPop(ctx, userQueueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", apperrors.NewStoreError("Failed to dequeue user", err)
	}

	return userID, nil
}

func (r *userQueueRepository) RemoveAndClear(ctx context.Context, userID string) error {
	if err := r.client.LRem(ctx, userQueueKey, 0, userID).Err(); err != nil {
		return apperrors.NewStoreError("Failed to remove user from queue", err)
	}

	if err := r.client.HDel(ctx, userStatusKey, userID).Err(); err != nil {
		return apperrors.NewStoreError("Failed to remove user from queue", err)
	}

	return nil
}
