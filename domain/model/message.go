package model

import "time"

// ChatMessage is immutable once stored. Timestamp is ISO-8601 because the
// wire contract exposes it verbatim to clients.
type ChatMessage struct {
	ID        string `json:"id"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// SentAfter reports whether the message was sent strictly after the given
// time. Messages with unparseable timestamps are treated as not-after.
func (m ChatMessage) SentAfter(since time.Time) bool {
	ts, err := time.Parse(time.RFC3339, m.Timestamp)
	if err != nil {
		return false
	}

	return ts.After(since)
}

type UserStatus string

const (
	UserStatusWaiting UserStatus = "waiting"
	UserStatusInChat  UserStatus = "in-chat"
)
