package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoom(t *testing.T) {
	// When: create a new room
	room := NewRoom("r1", "Alice's Game", "u1")

	// Then: the room starts waiting, host seated, board empty, X to move
	require.NotNil(t, room)
	assert.Equal(t, "r1", room.ID)
	assert.Equal(t, "Alice's Game", room.Name)
	assert.Equal(t, "u1", room.HostID)
	assert.Empty(t, room.GuestID)
	assert.Equal(t, StatusWaiting, room.Status)
	assert.Equal(t, MarkX, room.CurrentTurn)
	assert.Equal(t, [9]string{}, room.Board)
	assert.Empty(t, room.WinnerID)
	assert.False(t, room.CreatedAt.IsZero())
}

func TestRoom_MarkOf(t *testing.T) {
	t.Run("host plays X", func(t *testing.T) {
		room := NewRoom("r1", "game", "u1")

		assert.Equal(t, MarkX, room.MarkOf("u1"))
	})

	t.Run("guest plays O", func(t *testing.T) {
		room := NewRoom("r1", "game", "u1")
		room.GuestID = "u2"

		assert.Equal(t, MarkO, room.MarkOf("u2"))
	})

	t.Run("stranger has no mark", func(t *testing.T) {
		room := NewRoom("r1", "game", "u1")
		room.GuestID = "u2"

		assert.Empty(t, room.MarkOf("u3"))
	})

	t.Run("empty guest seat matches nobody", func(t *testing.T) {
		room := NewRoom("r1", "game", "u1")

		assert.Empty(t, room.MarkOf(""))
		assert.False(t, room.IsParticipant(""))
	})
}

func TestRoom_PlayerID(t *testing.T) {
	room := NewRoom("r1", "game", "u1")
	room.GuestID = "u2"

	assert.Equal(t, "u1", room.PlayerID(MarkX))
	assert.Equal(t, "u2", room.PlayerID(MarkO))
	assert.Empty(t, room.PlayerID("?"))
}

func TestRoom_Snapshot(t *testing.T) {
	// Given: a room with one move played
	room := NewRoom("r1", "game", "u1")
	room.Board[0] = MarkX

	// When: a snapshot is taken and the original mutates further
	snapshot := room.Snapshot()
	room.Board[1] = MarkO
	room.Status = StatusPlaying

	// Then: the snapshot is unaffected
	assert.Equal(t, MarkX, snapshot.Board[0])
	assert.Empty(t, snapshot.Board[1])
	assert.Equal(t, StatusWaiting, snapshot.Status)
}
