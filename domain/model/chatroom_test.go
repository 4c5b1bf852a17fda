package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/billychen0894/spareTalk-chat-app/domain/model"
)

func TestIsParticipant(t *testing.T) {
	room := model.ChatRoom{
		ID:           "room-1",
		State:        model.RoomStateOccupied,
		Participants: []string{"user-1", "user-2"},
	}

	assert.True(t, room.IsParticipant("user-1"))
	assert.True(t, room.IsParticipant("user-2"))
	assert.False(t, room.IsParticipant("user-3"))
}

func TestRemoveParticipant(t *testing.T) {
	room := model.ChatRoom{
		ID:           "room-1",
		State:        model.RoomStateOccupied,
		Participants: []string{"user-1", "user-2"},
	}

	assert.True(t, room.RemoveParticipant("user-1"))
	assert.Equal(t, []string{"user-2"}, room.Participants)
	assert.False(t, room.RemoveParticipant("user-1"), "second removal finds nothing")
	assert.False(t, room.IsEmpty())

	assert.True(t, room.RemoveParticipant("user-2"))
	assert.True(t, room.IsEmpty())
}

func TestSentAfter(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	newer := model.ChatMessage{Timestamp: base.Add(time.Second).Format(time.RFC3339)}
	older := model.ChatMessage{Timestamp: base.Add(-time.Second).Format(time.RFC3339)}
	equal := model.ChatMessage{Timestamp: base.Format(time.RFC3339)}
	garbage := model.ChatMessage{Timestamp: "not-a-timestamp"}

	assert.True(t, newer.SentAfter(base))
	assert.False(t, older.SentAfter(base))
	assert.False(t, equal.SentAfter(base), "boundary is strictly-after")
	assert.False(t, garbage.SentAfter(base))
}
