package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/oakleaf-games/tictactoe-arena/internal/apperror"
	"github.com/oakleaf-games/tictactoe-arena/internal/entity"
	"github.com/oakleaf-games/tictactoe-arena/internal/pkg"
)

type roomRepository interface {
	Create(ctx context.Context, room *entity.Room) error
	Update(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	ListWaiting(ctx context.Context) ([]*entity.Room, error)
}

// roomEntry - pairs a room with the mutex serializing every event on it.
type roomEntry struct {
	mu   sync.Mutex
	room *entity.Room
}

// RoomStore - owns the authoritative state of every active room. Live play
// reads and writes the in-memory map; the repository behind it is a
// best-effort durable copy, so a storage failure is logged and never rolls
// back state already applied in memory.
//
// The outer mutex only guards the map itself. Each room carries its own lock,
// so events on different rooms never block each other while the whole
// read-validate-mutate sequence for one room stays atomic.
type RoomStore struct {
	logger *slog.Logger
	repo   roomRepository

	mu    sync.RWMutex
	rooms map[string]*roomEntry
	order []string
}

func NewRoomStore(logger *slog.Logger, repo roomRepository) *RoomStore {
	return &RoomStore{
		logger: logger.With("component", "room_store"),
		repo:   repo,
		rooms:  make(map[string]*roomEntry),
	}
}

// Create - allocates a new waiting room hosted by hostID.
func (that *RoomStore) Create(ctx context.Context, name, hostID string) (*entity.Room, error) {
	if name == "" {
		return nil, apperror.ErrEmptyRoomName
	}

	if len(name) > entity.MaxRoomNameLen {
		return nil, apperror.ErrRoomNameTooLong
	}

	room := entity.NewRoom(pkg.NewRoomID(), name, hostID)

	that.mu.Lock()
	that.rooms[room.ID] = &roomEntry{room: room}
	that.order = append(that.order, room.ID)
	that.mu.Unlock()

	if err := that.repo.Create(ctx, room); err != nil {
		that.warnStorage("Create", room.ID, err)
	}

	return room.Snapshot(), nil
}

// Get - returns a snapshot of the room, or apperror.ErrRoomNotFound.
func (that *RoomStore) Get(ctx context.Context, id string) (*entity.Room, error) {
	entry, err := that.entry(ctx, id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	return entry.room.Snapshot(), nil
}

// ListAvailable - returns snapshots of rooms still waiting for a guest,
// in creation order. Lobby display only, not on the move hot path.
func (that *RoomStore) ListAvailable(_ context.Context) []*entity.Room {
	that.mu.RLock()
	defer that.mu.RUnlock()

	var available []*entity.Room

	for _, id := range that.order {
		entry, ok := that.rooms[id]
		if !ok {
			continue
		}

		entry.mu.Lock()
		if entry.room.IsWaiting() {
			available = append(available, entry.room.Snapshot())
		}
		entry.mu.Unlock()
	}

	return available
}

// Update - applies fn to the room under its lock and persists the result.
// Returns a snapshot of the updated room.
func (that *RoomStore) Update(ctx context.Context, id string, fn func(room *entity.Room) error) (*entity.Room, error) {
	var snapshot *entity.Room

	err := that.WithRoom(ctx, id, func(room *entity.Room) (bool, error) {
		if err := fn(room); err != nil {
			return false, err
		}

		snapshot = room.Snapshot()
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// WithRoom - runs fn while holding the room's lock. When fn reports a
// mutation the room is persisted before the lock is released, keeping
// broadcasts issued inside fn strictly ordered with the state they carry.
func (that *RoomStore) WithRoom(ctx context.Context, id string, fn func(room *entity.Room) (mutated bool, err error)) error {
	entry, err := that.entry(ctx, id)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	mutated, err := fn(entry.room)

	if mutated {
		if persistErr := that.repo.Update(ctx, entry.room); persistErr != nil {
			that.warnStorage("WithRoom", id, persistErr)
		}
	}

	return err
}

// entry - finds the room in memory, falling back to the repository once for
// rooms created before a restart.
func (that *RoomStore) entry(ctx context.Context, id string) (*roomEntry, error) {
	that.mu.RLock()
	entry, ok := that.rooms[id]
	that.mu.RUnlock()

	if ok {
		return entry, nil
	}

	room, err := that.repo.GetByID(ctx, id)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		return nil, apperror.ErrRoomNotFound
	}
	if err != nil {
		that.warnStorage("entry", id, err)
		return nil, apperror.ErrRoomNotFound
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	// another event may have rehydrated the room while we read the repository
	if existing, ok := that.rooms[id]; ok {
		return existing, nil
	}

	entry = &roomEntry{room: room}
	that.rooms[id] = entry
	that.order = append(that.order, id)

	return entry, nil
}

func (that *RoomStore) warnStorage(method, roomID string, err error) {
	that.logger.Warn("room persistence failed, in-memory state stays authoritative",
		"method", method,
		"roomID", roomID,
		"error", fmt.Errorf("%w: %w", apperror.ErrStorageUnavailable, err),
	)
}
