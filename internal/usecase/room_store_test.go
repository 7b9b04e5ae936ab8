package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakleaf-games/tictactoe-arena/internal/apperror"
	"github.com/oakleaf-games/tictactoe-arena/internal/entity"
)

// fakeRoomRepo - in-memory stand-in for the redis-backed repository.
type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*entity.Room

	failAll bool
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[string]*entity.Room)}
}

func (that *fakeRoomRepo) Create(_ context.Context, room *entity.Room) error {
	return that.store(room)
}

func (that *fakeRoomRepo) Update(_ context.Context, room *entity.Room) error {
	return that.store(room)
}

func (that *fakeRoomRepo) store(room *entity.Room) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.failAll {
		return errors.New("connection refused")
	}

	that.rooms[room.ID] = room.Snapshot()
	return nil
}

func (that *fakeRoomRepo) GetByID(_ context.Context, id string) (*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.failAll {
		return nil, errors.New("connection refused")
	}

	room, ok := that.rooms[id]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return room.Snapshot(), nil
}

func (that *fakeRoomRepo) ListWaiting(_ context.Context) ([]*entity.Room, error) {
	return nil, nil
}

func newTestStore(repo roomRepository) *RoomStore {
	return NewRoomStore(slog.New(slog.NewTextHandler(io.Discard, nil)), repo)
}

func TestRoomStore_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a waiting room", func(t *testing.T) {
		repo := newFakeRoomRepo()
		store := newTestStore(repo)

		// When: a room is created
		room, err := store.Create(ctx, "Alice's Game", "u1")

		// Then: it starts waiting with the host seated and is persisted
		require.NoError(t, err)
		assert.Equal(t, entity.StatusWaiting, room.Status)
		assert.Equal(t, "u1", room.HostID)
		assert.Empty(t, room.GuestID)
		assert.Equal(t, entity.MarkX, room.CurrentTurn)
		assert.Contains(t, repo.rooms, room.ID)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		store := newTestStore(newFakeRoomRepo())

		_, err := store.Create(ctx, "", "u1")

		require.ErrorIs(t, err, apperror.ErrEmptyRoomName)
	})

	t.Run("rejects oversized name", func(t *testing.T) {
		store := newTestStore(newFakeRoomRepo())

		name := make([]byte, entity.MaxRoomNameLen+1)
		for i := range name {
			name[i] = 'a'
		}

		_, err := store.Create(ctx, string(name), "u1")

		require.ErrorIs(t, err, apperror.ErrRoomNameTooLong)
	})

	t.Run("survives a down repository", func(t *testing.T) {
		repo := newFakeRoomRepo()
		repo.failAll = true
		store := newTestStore(repo)

		// When: the repository is unreachable
		room, err := store.Create(ctx, "game", "u1")

		// Then: the in-memory room is still created
		require.NoError(t, err)

		got, err := store.Get(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, room.ID, got.ID)
	})
}

func TestRoomStore_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown id", func(t *testing.T) {
		store := newTestStore(newFakeRoomRepo())

		_, err := store.Get(ctx, "missing")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("rehydrates from the repository", func(t *testing.T) {
		// Given: a room known only to the repository
		repo := newFakeRoomRepo()
		require.NoError(t, repo.Create(ctx, entity.NewRoom("r1", "old game", "u1")))

		store := newTestStore(repo)

		// When: the room is requested
		room, err := store.Get(ctx, "r1")

		// Then: it is served and cached in memory
		require.NoError(t, err)
		assert.Equal(t, "old game", room.Name)
	})

	t.Run("returns independent snapshots", func(t *testing.T) {
		store := newTestStore(newFakeRoomRepo())

		created, err := store.Create(ctx, "game", "u1")
		require.NoError(t, err)

		first, err := store.Get(ctx, created.ID)
		require.NoError(t, err)

		first.Board[0] = entity.MarkX

		second, err := store.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Empty(t, second.Board[0])
	})
}

func TestRoomStore_ListAvailable(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(newFakeRoomRepo())

	// Given: three rooms, the middle one already playing
	first, err := store.Create(ctx, "first", "u1")
	require.NoError(t, err)

	second, err := store.Create(ctx, "second", "u2")
	require.NoError(t, err)

	third, err := store.Create(ctx, "third", "u3")
	require.NoError(t, err)

	_, err = store.Update(ctx, second.ID, func(room *entity.Room) error {
		room.GuestID = "u9"
		room.Status = entity.StatusPlaying
		return nil
	})
	require.NoError(t, err)

	// When: the lobby asks for available rooms
	available := store.ListAvailable(ctx)

	// Then: only waiting rooms come back, in creation order
	require.Len(t, available, 2)
	assert.Equal(t, first.ID, available[0].ID)
	assert.Equal(t, third.ID, available[1].ID)
}

func TestRoomStore_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("applies the mutation and persists", func(t *testing.T) {
		repo := newFakeRoomRepo()
		store := newTestStore(repo)

		created, err := store.Create(ctx, "game", "u1")
		require.NoError(t, err)

		// When: the room is updated
		updated, err := store.Update(ctx, created.ID, func(room *entity.Room) error {
			room.GuestID = "u2"
			room.Status = entity.StatusPlaying
			return nil
		})

		// Then: the snapshot and the repository both carry the change
		require.NoError(t, err)
		assert.Equal(t, entity.StatusPlaying, updated.Status)
		assert.Equal(t, entity.StatusPlaying, repo.rooms[created.ID].Status)
	})

	t.Run("a failed mutation changes nothing", func(t *testing.T) {
		store := newTestStore(newFakeRoomRepo())

		created, err := store.Create(ctx, "game", "u1")
		require.NoError(t, err)

		wantErr := errors.New("rejected")

		_, err = store.Update(ctx, created.ID, func(room *entity.Room) error {
			return wantErr
		})
		require.ErrorIs(t, err, wantErr)

		got, err := store.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusWaiting, got.Status)
	})

	t.Run("unknown room", func(t *testing.T) {
		store := newTestStore(newFakeRoomRepo())

		_, err := store.Update(ctx, "missing", func(*entity.Room) error { return nil })

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}

func TestRoomStore_ConcurrentSameCell(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(newFakeRoomRepo())

	room, err := store.Create(ctx, "game", "u1")
	require.NoError(t, err)

	// Given: many goroutines racing to claim the same cell
	const contenders = 32

	var wg sync.WaitGroup
	var applied int32
	var mu sync.Mutex

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			storeErr := store.WithRoom(ctx, room.ID, func(r *entity.Room) (bool, error) {
				if r.Board[4] != entity.EmptyCell {
					return false, apperror.ErrCellOccupied
				}
				r.Board[4] = entity.MarkX
				return true, nil
			})

			if storeErr == nil {
				mu.Lock()
				applied++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	// Then: exactly one contender wins the cell
	assert.Equal(t, int32(1), applied)

	got, err := store.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MarkX, got.Board[4])
}
