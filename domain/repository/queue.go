package repository

import "context"

// UserQueueRepository is the FIFO matchmaking pool shared by all instances.
// Dequeue must be atomic per call; two instances pairing concurrently rely on
// the store's single-key pop to never hand out the same user twice.
type UserQueueRepository interface {
	Enqueue(ctx context.Context, userID string) error
	// Dequeue pops the oldest waiting user, or returns "" when the queue is
	// empty.
	Dequeue(ctx context.Context) (string, error)
	RemoveAndClear(ctx context.Context, userID string) error
}
