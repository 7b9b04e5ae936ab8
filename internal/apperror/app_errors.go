package apperror

import "errors"

// Not found.
var (
	ErrRoomNotFound = errors.New("room not found")
	ErrUserNotFound = errors.New("user not found")
)

// Validation.
var (
	ErrEmptyRoomName   = errors.New("room name is empty")
	ErrRoomNameTooLong = errors.New("room name exceeds 255 characters")
	ErrInvalidCell     = errors.New("invalid cell index")
	ErrCellOccupied    = errors.New("cell is already occupied")
)

// Illegal state transitions.
var (
	ErrRoomFull          = errors.New("room is full")
	ErrGameNotInProgress = errors.New("game is not in progress")
	ErrNotAPlayer        = errors.New("user is not a player in this game")
	ErrNotYourTurn       = errors.New("it's not your turn")
)

// Collaborators.
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
