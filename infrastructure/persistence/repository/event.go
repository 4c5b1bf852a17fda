package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/billychen0894/spareTalk-chat-app/domain/apperrors"
	"github.com/billychen0894/spareTalk-chat-app/domain/repository"
	"github.com/redis/go-redis/v9"
)

const processedEventsKey = "processedEvents"

type eventRepository struct {
	client *redis.Client
	window time.Duration
	now    func() time.Time
}

func NewEventRepository(client *redis.Client, window time.Duration) repository.EventRepository {
	return &eventRepository{
		client: client,
		window: window,
		now:    time.Now,
	}
}

func (r *eventRepository) ProcessOnce(ctx context.Context, eventName, eventID string) (bool, error) {
	member := fmt.Sprintf("%s:%s", eventName, eventID)

	score, err := r.client.ZScore(ctx, processedEventsKey, member).Result()
	if err == nil && !r.expired(score) {
		// Seen inside the window: the action must be treated as already done.
		r.pruneOldEvents(ctx)
		return true, nil
	}
	// An expired entry that prune hasn't caught yet counts as unseen and is
	// re-recorded with a fresh score below.
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, apperrors.NewStoreError("Failed to check if event is processed", err)
	}

	entry := redis.Z{Score: float64(r.now().Unix()), Member: member}
	if err := r.client.ZAdd(ctx, processedEventsKey, entry).Err(); err != nil {
		return false, apperrors.NewStoreError("Failed to store event", err)
	}

	r.pruneOldEvents(ctx)
	return false, nil
}

// pruneThreshold is the oldest score still considered live. Scores at or
// below it are pruned, matching the inclusive range ZREMRANGEBYSCORE removes.
func (r *eventRepository) pruneThreshold() int64 {
	return r.now().Add(-r.window).Unix()
}

func (r *eventRepository) expired(score float64) bool {
	return score <= float64(r.pruneThreshold())
}

// pruneOldEvents is opportunistic best-effort maintenance; a failed prune
// never fails the caller's operation.
func (r *eventRepository) pruneOldEvents(ctx context.Context) {
	r.client.ZRemRangeByScore(ctx, processedEventsKey, "-inf", strconv.FormatInt(r.pruneThreshold(), 10))
}
