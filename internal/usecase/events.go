package usecase

import "github.com/oakleaf-games/tictactoe-arena/internal/entity"

// Server-to-client actions of the realtime protocol.
const (
	ActionRoomJoined = "roomJoined"
	ActionRoomUpdate = "roomUpdate"
	ActionGameOver   = "gameOver"
	ActionError      = "error"
)

// Event - one outbound protocol event with its typed payload.
type Event struct {
	Action  string `json:"action"`
	Payload any    `json:"payload,omitempty"`
}

type RoomJoinedPayload struct {
	RoomID string `json:"roomId"`
}

type GameOverPayload struct {
	Winner   string `json:"winner"`
	WinnerID string `json:"winnerId,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func roomJoinedEvent(roomID string) Event {
	return Event{Action: ActionRoomJoined, Payload: RoomJoinedPayload{RoomID: roomID}}
}

func roomUpdateEvent(room *entity.Room) Event {
	return Event{Action: ActionRoomUpdate, Payload: room.Snapshot()}
}

func gameOverEvent(winner, winnerID string) Event {
	return Event{Action: ActionGameOver, Payload: GameOverPayload{Winner: winner, WinnerID: winnerID}}
}
