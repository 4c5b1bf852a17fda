package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/billychen0894/spareTalk-chat-app/domain/model"
)

func TestFilterMessagesSince(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := []model.ChatMessage{
		{ID: "msg-1", Timestamp: base.Add(-time.Minute).Format(time.RFC3339)},
		{ID: "msg-2", Timestamp: base.Format(time.RFC3339)},
		{ID: "msg-3", Timestamp: base.Add(time.Minute).Format(time.RFC3339)},
		{ID: "msg-4", Timestamp: "corrupt"},
	}

	missed := filterMessagesSince(messages, base)

	assert.Len(t, missed, 1)
	assert.Equal(t, "msg-3", missed[0].ID, "only strictly-newer messages count as missed")
}

func TestFilterMessagesSince_Empty(t *testing.T) {
	missed := filterMessagesSince(nil, time.Now())

	assert.NotNil(t, missed)
	assert.Empty(t, missed)
}

func TestTrimRange_AtCap(t *testing.T) {
	_, _, needed := trimRange(10000, 10000)

	assert.False(t, needed, "a log exactly at the cap is left alone")
}

func TestTrimRange_OverCap(t *testing.T) {
	start, stop, needed := trimRange(10001, 10000)

	assert.True(t, needed)
	assert.Equal(t, int64(-10000), start)
	assert.Equal(t, int64(-1), stop)
}

func TestTrimRange_DropsOldestFirst(t *testing.T) {
	log := make([]int, 10001)
	for i := range log {
		log[i] = i
	}

	start, stop, needed := trimRange(int64(len(log)), 10000)
	assert.True(t, needed)

	kept := log[int64(len(log))+start : int64(len(log))+stop+1]

	assert.Len(t, kept, 10000)
	assert.Equal(t, 1, kept[0], "entry 0 is the one evicted")
	assert.Equal(t, 10000, kept[len(kept)-1], "newest entry survives")
}

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "chatRoom:room-1:messages", roomMessagesKey("room-1"))
	assert.Equal(t, "chatRoom:room-1:lastActivity", roomActivityKey("room-1"))
	assert.Equal(t, "user:user-1:lastActivity", userActivityKey("user-1"))
	assert.Equal(t, "user:user-1:sessionId", userSessionKey("user-1"))
}
