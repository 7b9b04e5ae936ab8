package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oakleaf-games/tictactoe-arena/internal/apperror"
	"github.com/oakleaf-games/tictactoe-arena/internal/entity"
	"github.com/oakleaf-games/tictactoe-arena/internal/pkg"
	"github.com/oakleaf-games/tictactoe-arena/internal/tictactoe"
)

// Client - is one live, authenticated connection as the coordinator sees it.
// The transport owns the wire; the coordinator only pushes events and tracks
// which room the connection is bound to.
type Client interface {
	UserID() string
	RoomID() string
	BindRoom(roomID string)
	Send(event Event)
}

// RoomGroups - is the room-scoped broadcast registry maintained by the
// realtime transport. Join is idempotent, Leave of a non-member is a no-op,
// Broadcast never blocks on slow receivers.
type RoomGroups interface {
	Join(roomID string, client Client)
	Leave(roomID string, client Client)
	Broadcast(roomID string, event Event)
}

type gameRecorder interface {
	Save(ctx context.Context, record *entity.GameRecord) error
}

// Coordinator - is the protocol state machine: it binds connections to rooms,
// validates and applies moves, decides game termination and fans out state
// changes to everyone watching the room.
//
// Every event runs its whole read-validate-mutate-broadcast sequence inside
// RoomStore.WithRoom, so two events on the same room can never interleave and
// broadcasts always carry the state that produced them, in order.
type Coordinator struct {
	logger *slog.Logger

	rooms  *RoomStore
	games  gameRecorder
	groups RoomGroups
}

func NewCoordinator(logger *slog.Logger, rooms *RoomStore, games gameRecorder, groups RoomGroups) *Coordinator {
	return &Coordinator{
		logger: logger.With("component", "coordinator"),
		rooms:  rooms,
		games:  games,
		groups: groups,
	}
}

// Join - binds client to the room. Host or guest joining again is a
// reconnect; a first distinct guest takes the O seat and starts the game;
// anyone else is turned away with apperror.ErrRoomFull.
func (that *Coordinator) Join(ctx context.Context, client Client, roomID string) error {
	log := that.logger.With("method", "Join", "roomID", roomID, "userID", client.UserID())

	err := that.rooms.WithRoom(ctx, roomID, func(room *entity.Room) (bool, error) {
		userID := client.UserID()
		mutated := false

		switch {
		case room.IsParticipant(userID):
			// reconnect: bind only, no room mutation
		case room.IsWaiting() && room.GuestID == "":
			room.GuestID = userID
			room.Status = entity.StatusPlaying
			mutated = true
		default:
			return false, apperror.ErrRoomFull
		}

		// last join wins: a connection holds at most one room binding
		if prev := client.RoomID(); prev != "" && prev != roomID {
			that.groups.Leave(prev, client)
		}

		that.groups.Join(roomID, client)
		client.BindRoom(roomID)

		client.Send(roomJoinedEvent(roomID))
		that.groups.Broadcast(roomID, roomUpdateEvent(room))

		return mutated, nil
	})
	if err != nil {
		return err
	}

	log.Info("user joined room")

	return nil
}

// Move - validates and applies one move for the client's user. Rejections
// never mutate the room and are reported only to the caller.
func (that *Coordinator) Move(ctx context.Context, client Client, roomID string, cell int) error {
	log := that.logger.With("method", "Move", "roomID", roomID, "userID", client.UserID())

	err := that.rooms.WithRoom(ctx, roomID, func(room *entity.Room) (bool, error) {
		if !room.IsPlaying() {
			return false, apperror.ErrGameNotInProgress
		}

		mark := room.MarkOf(client.UserID())
		if mark == "" {
			return false, apperror.ErrNotAPlayer
		}

		if mark != room.CurrentTurn {
			return false, apperror.ErrNotYourTurn
		}

		if cell < 0 || cell >= len(room.Board) {
			return false, fmt.Errorf("%w: cell %d", apperror.ErrInvalidCell, cell)
		}

		if room.Board[cell] != entity.EmptyCell {
			return false, apperror.ErrCellOccupied
		}

		room.Board[cell] = mark
		room.CurrentTurn = tictactoe.ToggleMark(mark)

		switch outcome := tictactoe.Evaluate(room.Board); outcome {
		case tictactoe.OutcomeXWins, tictactoe.OutcomeOWins:
			room.Status = entity.StatusFinished
			room.WinnerID = room.PlayerID(string(outcome))

			that.recordFinishedGame(ctx, room, string(outcome))
			that.groups.Broadcast(roomID, roomUpdateEvent(room))
			that.groups.Broadcast(roomID, gameOverEvent(string(outcome), room.WinnerID))
		case tictactoe.OutcomeDraw:
			room.Status = entity.StatusFinished

			that.recordFinishedGame(ctx, room, entity.ResultDraw)
			that.groups.Broadcast(roomID, roomUpdateEvent(room))
			that.groups.Broadcast(roomID, gameOverEvent(entity.ResultDraw, ""))
		default:
			that.groups.Broadcast(roomID, roomUpdateEvent(room))
		}

		return true, nil
	})
	if err != nil {
		return err
	}

	log.Info("move applied", "cell", cell)

	return nil
}

// Leave - removes client from the room's broadcast group. The seat stays
// taken: an abandoned room has no recovery path in this design.
func (that *Coordinator) Leave(client Client, roomID string) {
	that.groups.Leave(roomID, client)

	if client.RoomID() == roomID {
		client.BindRoom("")
	}

	that.logger.Info("user left room", "method", "Leave", "roomID", roomID, "userID", client.UserID())
}

// Disconnect - implicit leave for whatever room the connection is bound to.
// A move committed before the disconnect was observed stays committed.
func (that *Coordinator) Disconnect(client Client) {
	roomID := client.RoomID()
	if roomID == "" {
		return
	}

	that.groups.Leave(roomID, client)
	client.BindRoom("")

	that.logger.Info("user disconnected from room", "method", "Disconnect", "roomID", roomID, "userID", client.UserID())
}

// recordFinishedGame - writes the durable result record, exactly once per
// room, at the playing->finished transition. Best effort: live play already
// broadcast the authoritative state, so a storage failure is only logged.
func (that *Coordinator) recordFinishedGame(ctx context.Context, room *entity.Room, result string) {
	record := &entity.GameRecord{
		ID:        pkg.NewGameID(),
		PlayerXID: room.HostID,
		PlayerOID: room.GuestID,
		WinnerID:  room.WinnerID,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}

	if err := that.games.Save(ctx, record); err != nil {
		that.logger.Warn("failed to record finished game",
			"method", "recordFinishedGame",
			"roomID", room.ID,
			"error", fmt.Errorf("%w: %w", apperror.ErrStorageUnavailable, err),
		)
	}
}
