package entity

import "time"

const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"

	MarkX = "X"
	MarkO = "O"

	EmptyCell = ""

	MaxRoomNameLen = 255
)

// Room - is the authoritative state of one match. The host always plays X,
// the guest always plays O. Status only ever moves waiting -> playing -> finished.
type Room struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	HostID      string    `json:"hostId"`
	GuestID     string    `json:"guestId,omitempty"`
	Status      string    `json:"status"`
	CurrentTurn string    `json:"currentTurn"`
	Board       [9]string `json:"board"`
	WinnerID    string    `json:"winnerId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func NewRoom(id, name, hostID string) *Room {
	return &Room{
		ID:          id,
		Name:        name,
		HostID:      hostID,
		Status:      StatusWaiting,
		CurrentTurn: MarkX,
		CreatedAt:   time.Now().UTC(),
	}
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}

// IsParticipant - reports whether userID holds a seat in this room.
func (that *Room) IsParticipant(userID string) bool {
	return userID == that.HostID || (that.GuestID != "" && userID == that.GuestID)
}

// MarkOf - returns the mark userID plays with, or an empty string for strangers.
func (that *Room) MarkOf(userID string) string {
	if userID == that.HostID {
		return MarkX
	}

	if that.GuestID != "" && userID == that.GuestID {
		return MarkO
	}

	return ""
}

// PlayerID - maps a mark back to the seat holding it.
func (that *Room) PlayerID(mark string) string {
	switch mark {
	case MarkX:
		return that.HostID
	case MarkO:
		return that.GuestID
	}

	return ""
}

// Snapshot - returns an independent copy safe to hand to other goroutines.
func (that *Room) Snapshot() *Room {
	copied := *that
	return &copied
}
