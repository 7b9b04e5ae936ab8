package pkg

import "github.com/google/uuid"

// NewRoomID - short, shareable identifier for a game room.
func NewRoomID() string {
	return uuid.New().String()[:8]
}

// NewUserID - identifier for a registered user.
func NewUserID() string {
	return "user_" + uuid.New().String()
}

// NewGameID - identifier for a finished game record.
func NewGameID() string {
	return "game_" + uuid.New().String()
}
