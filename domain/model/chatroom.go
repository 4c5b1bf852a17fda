package model

type RoomState string

const (
	RoomStateOccupied RoomState = "occupied"
	RoomStateIdle     RoomState = "idle"
)

// ChatRoom is the two-party conversation unit. An occupied room always has
// exactly two participants; a room drops to idle when one of them leaves.
type ChatRoom struct {
	ID           string    `json:"id"`
	State        RoomState `json:"state"`
	Participants []string  `json:"participants"`
}

func (r ChatRoom) IsParticipant(userID string) bool {
	for _, participant := range r.Participants {
		if participant == userID {
			return true
		}
	}

	return false
}

// RemoveParticipant drops userID from the participant list and returns true
// when an entry was actually removed.
func (r *ChatRoom) RemoveParticipant(userID string) bool {
	for i, participant := range r.Participants {
		if participant == userID {
			r.Participants = append(r.Participants[:i], r.Participants[i+1:]...)
			return true
		}
	}

	return false
}

func (r ChatRoom) IsEmpty() bool {
	return len(r.Participants) == 0
}
