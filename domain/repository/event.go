package repository

import "context"

// EventRepository makes client-triggered actions idempotent under
// retransmission. Entries expire after the idempotency window.
type EventRepository interface {
	// ProcessOnce returns true when the (eventName, eventID) pair was already
	// recorded inside the window, false when this is the first time. The
	// first-time path records the pair before returning.
	ProcessOnce(ctx context.Context, eventName, eventID string) (bool, error)
}
