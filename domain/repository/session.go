package repository

import "context"

// UserSessionRepository correlates a stable session id across reconnects.
type UserSessionRepository interface {
	Store(ctx context.Context, sessionID string) error
	// Get returns "" when the session is unknown.
	Get(ctx context.Context, sessionID string) (string, error)
	Remove(ctx context.Context, sessionID string) error
}
