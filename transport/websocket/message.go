package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Client-to-server actions.
const (
	actionJoinRoom  = "joinRoom"
	actionMakeMove  = "makeMove"
	actionLeaveRoom = "leaveRoom"
)

var (
	ErrUnknownAction    = errors.New("unknown action")
	ErrMalformedPayload = errors.New("malformed payload")
)

// Message - is one inbound client frame: a tagged action plus its payload,
// decoded and validated before anything reaches the coordinator.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

type MakeMovePayload struct {
	RoomID string `json:"roomId"`
	Cell   *int   `json:"cellIndex"`
}

type LeaveRoomPayload struct {
	RoomID string `json:"roomId"`
}

func decodeJoinRoom(raw json.RawMessage) (*JoinRoomPayload, error) {
	var payload JoinRoomPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if payload.RoomID == "" {
		return nil, fmt.Errorf("%w: roomId is required", ErrMalformedPayload)
	}

	return &payload, nil
}

func decodeMakeMove(raw json.RawMessage) (*MakeMovePayload, error) {
	var payload MakeMovePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if payload.RoomID == "" {
		return nil, fmt.Errorf("%w: roomId is required", ErrMalformedPayload)
	}

	if payload.Cell == nil {
		return nil, fmt.Errorf("%w: cellIndex is required", ErrMalformedPayload)
	}

	return &payload, nil
}

func decodeLeaveRoom(raw json.RawMessage) (*LeaveRoomPayload, error) {
	var payload LeaveRoomPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if payload.RoomID == "" {
		return nil, fmt.Errorf("%w: roomId is required", ErrMalformedPayload)
	}

	return &payload, nil
}
