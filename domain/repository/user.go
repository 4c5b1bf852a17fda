package repository

import (
	"context"

	"github.com/billychen0894/spareTalk-chat-app/domain/model"
)

type UserRepository interface {
	CheckStatus(ctx context.Context, userID string) (model.UserStatus, error)
	SetStatus(ctx context.Context, userID string, status model.UserStatus) error

	SetLastActive(ctx context.Context, userID, timestamp string) error
	GetLastActive(ctx context.Context, userID string) (string, error)

	// RemoveMessageIDs frees the ids of messages the user authored in the
	// given room from the global message-id set. The messages themselves stay
	// in the room log.
	RemoveMessageIDs(ctx context.Context, userID, roomID string) error
	DeleteRelatedKeys(ctx context.Context, userID string) error
}
