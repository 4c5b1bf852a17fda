package repository

import (
	"context"
	"time"

	"github.com/billychen0894/spareTalk-chat-app/domain/model"
)

type ChatRoomRepository interface {
	Create(ctx context.Context, roomID, user1, user2 string) error
	Leave(ctx context.Context, roomID, userID string) error
	GetByID(ctx context.Context, roomID string) (*model.ChatRoom, error)
	GetAll(ctx context.Context) ([]*model.ChatRoom, error)

	StoreMessage(ctx context.Context, roomID string, message *model.ChatMessage) error
	RetrieveMessages(ctx context.Context, roomID string) ([]model.ChatMessage, error)
	GetMissedMessages(ctx context.Context, roomID, lastActiveTime string) ([]model.ChatMessage, error)
	// DeleteMessages drops the room's message log, but only while the room is
	// draining (exactly one participant left).
	DeleteMessages(ctx context.Context, roomID string) error

	SetActivity(ctx context.Context, roomID, timestamp string) error
	IsInactive(ctx context.Context, roomID string, threshold time.Duration) (bool, error)
	DeleteActivity(ctx context.Context, roomID string) error
}
